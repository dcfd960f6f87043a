package datatable

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/transitdesk/console/internal/backend"
)

const (
	// MaxLimit caps the page size a request may ask for.
	MaxLimit = 100
	// MaxPage caps the page number a request may ask for.
	MaxPage = 1_000_000
)

// Query is the search, filter and page state of a list request.
type Query struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
}

// ParseQuery reads page, limit, search and the table's filters from r.
// Filter values outside a filter's declared options are ignored.
func ParseQuery(r *http.Request, t Table, defaultLimit int) Query {
	values := r.URL.Query()
	page, _ := strconv.Atoi(values.Get("page"))
	page = min(max(page, 1), MaxPage)
	limit, _ := strconv.Atoi(values.Get("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit < 1 {
		limit = 10
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	q := Query{
		Page:    page,
		Limit:   limit,
		Search:  strings.TrimSpace(values.Get("search")),
		Filters: map[string]string{},
	}
	for _, f := range t.Filters {
		value := strings.TrimSpace(values.Get(f.Key))
		if value != "" && f.allows(value) {
			q.Filters[f.Key] = value
		}
	}
	return q
}

// Params converts the query into backend list parameters.
func (q Query) Params() backend.ListParams {
	filters := make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		filters[k] = v
	}
	return backend.ListParams{Page: q.Page, Limit: q.Limit, Search: q.Search, Filters: filters}
}

// Signature identifies the search and filter selection, ignoring the page.
func (q Query) Signature() string {
	keys := make([]string, 0, len(q.Filters))
	for k, v := range q.Filters {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("search=")
	b.WriteString(q.Search)
	for _, k := range keys {
		b.WriteString("&")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(q.Filters[k])
	}
	return b.String()
}

// StateStore persists per-table list state between requests. *shared.Session
// satisfies it.
type StateStore interface {
	Get(key string) string
	Set(key, value string)
}

// Remember compares q against the selection last seen for the table. When the
// search or filters changed, the page resets to 1 so a narrowed result never
// lands on an out-of-range empty page.
func Remember(store StateStore, tableID string, q Query) Query {
	if store == nil {
		return q
	}
	key := "table:" + tableID
	sig := "v1|" + q.Signature()
	prev := store.Get(key)
	if prev == sig {
		return q
	}
	if prev != "" {
		q.Page = 1
	}
	store.Set(key, sig)
	return q
}
