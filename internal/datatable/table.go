// Package datatable composes column definitions, rows, search, filters and
// pagination into a view model rendered by the list templates.
package datatable

import (
	"net/url"
	"sort"
	"strconv"

	"github.com/transitdesk/console/internal/shared"
	"github.com/transitdesk/console/internal/status"
)

// Row is a reshaped, display-ready backend record. It is immutable: the
// constructor copies values and there are no setters.
type Row struct {
	id     string
	values map[string]string
}

// NewRow builds a Row with a stable identity.
func NewRow(id string, values map[string]string) Row {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Row{id: id, values: copied}
}

// ID returns the row identity.
func (r Row) ID() string { return r.id }

// Value returns the display value stored under key.
func (r Row) Value(key string) string { return r.values[key] }

// Keys lists the stored column keys in sorted order.
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Cell is one rendered table cell.
type Cell struct {
	Text  string
	Badge *status.Badge
}

// Column declares a table column. Render is optional; without it the raw
// value at Key is shown.
type Column struct {
	Key    string
	Header string
	Render func(Row) Cell
}

// StatusColumn renders the value at key as a status badge.
func StatusColumn(key, header string) Column {
	return Column{Key: key, Header: header, Render: func(r Row) Cell {
		badge := status.BadgeFor(r.Value(key))
		return Cell{Text: badge.Label, Badge: &badge}
	}}
}

// Option is one selectable filter value.
type Option struct {
	Label string
	Value string
}

// Filter describes a closed set of values for a filterable column.
type Filter struct {
	Key     string
	Label   string
	Options []Option
}

func (f Filter) allows(value string) bool {
	for _, opt := range f.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// Action is a per-row control. Actions always POST.
type Action struct {
	Label   string
	Path    func(Row) string
	Name    string
	Value   string
	Confirm string
	Visible func(Row) bool
}

// Table is the static definition of a list page.
type Table struct {
	ID       string
	Title    string
	BasePath string
	Columns  []Column
	Filters  []Filter
	RowKey   func(Row) string
	RowLink  func(Row) string
	Actions  []Action
}

// Result is one page of rows and the total row count.
type Result struct {
	Rows  []Row
	Total int
}

// RenderedAction is an Action bound to a row.
type RenderedAction struct {
	Label   string
	Path    string
	Name    string
	Value   string
	Confirm string
}

// RenderedRow is one table row ready for the template.
type RenderedRow struct {
	Key     string
	Link    string
	Cells   []Cell
	Actions []RenderedAction
}

// FilterView is a Filter with the active selection resolved.
type FilterView struct {
	Key      string
	Label    string
	Selected string
	Options  []Option
}

// View is the template model for a table.
type View struct {
	ID         string
	Title      string
	BasePath   string
	Headers    []string
	Rows       []RenderedRow
	Filters    []FilterView
	Query      Query
	Pager      shared.Pagination
	Error      string
	Loading    bool
	HasActions bool
}

// View composes the table with a page of rows. Rows render in input order.
func (t Table) View(res Result, q Query, errMsg string) View {
	headers := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headers[i] = col.Header
	}
	rows := make([]RenderedRow, 0, len(res.Rows))
	for _, row := range res.Rows {
		rows = append(rows, t.renderRow(row))
	}
	filters := make([]FilterView, len(t.Filters))
	for i, f := range t.Filters {
		filters[i] = FilterView{Key: f.Key, Label: f.Label, Selected: q.Filters[f.Key], Options: f.Options}
	}
	return View{
		ID:         t.ID,
		Title:      t.Title,
		BasePath:   t.BasePath,
		Headers:    headers,
		Rows:       rows,
		Filters:    filters,
		Query:      q,
		Pager:      shared.NewPagination(q.Page, q.Limit, res.Total),
		Error:      errMsg,
		HasActions: len(t.Actions) > 0,
	}
}

func (t Table) renderRow(row Row) RenderedRow {
	key := row.ID()
	if t.RowKey != nil {
		key = t.RowKey(row)
	}
	rendered := RenderedRow{Key: key, Cells: make([]Cell, len(t.Columns))}
	if t.RowLink != nil {
		rendered.Link = t.RowLink(row)
	}
	for i, col := range t.Columns {
		if col.Render != nil {
			rendered.Cells[i] = col.Render(row)
			continue
		}
		rendered.Cells[i] = Cell{Text: row.Value(col.Key)}
	}
	rendered.Actions = t.RowActions(row)
	return rendered
}

// RowActions binds the table's visible actions to row.
func (t Table) RowActions(row Row) []RenderedAction {
	var out []RenderedAction
	for _, action := range t.Actions {
		if action.Visible != nil && !action.Visible(row) {
			continue
		}
		out = append(out, RenderedAction{
			Label:   action.Label,
			Path:    action.Path(row),
			Name:    action.Name,
			Value:   action.Value,
			Confirm: action.Confirm,
		})
	}
	return out
}

// PageURL links to page n with the current search and filters.
func (v View) PageURL(n int) string {
	q := v.Query
	q.Page = n
	return v.BasePath + "?" + q.Values().Encode()
}

// ExportURL links to an export of the current query in the given format.
func (v View) ExportURL(format string) string {
	values := v.Query.Values()
	values.Del("page")
	values.Del("limit")
	return v.BasePath + "/export." + format + "?" + values.Encode()
}

// LiveURL is the SSE endpoint that streams refreshed table fragments.
func (v View) LiveURL() string {
	return v.BasePath + "/live?" + v.Query.Values().Encode()
}

// Empty reports whether there is nothing to show and no error to explain why.
func (v View) Empty() bool {
	return len(v.Rows) == 0 && v.Error == ""
}

// Summary describes the visible range, e.g. "21–30 of 95".
func (v View) Summary() string {
	if v.Pager.Total == 0 {
		return "No results"
	}
	return strconv.Itoa(v.Pager.First()) + "–" + strconv.Itoa(v.Pager.Last()) + " of " + strconv.Itoa(v.Pager.Total)
}

// Values encodes the query for links.
func (q Query) Values() url.Values {
	values := url.Values{}
	if q.Page > 1 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	for k, v := range q.Filters {
		if v != "" {
			values.Set(k, v)
		}
	}
	return values
}
