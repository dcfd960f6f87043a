package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ListParams are the pagination query parameters understood by list endpoints.
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
}

// Values encodes the params as page, limit, search and filter. Filters are
// sent as key:value pairs joined by commas, ordered by key.
func (p ListParams) Values() url.Values {
	values := url.Values{}
	page := p.Page
	if page < 1 {
		page = 1
	}
	values.Set("page", strconv.Itoa(page))
	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}
	if search := strings.TrimSpace(p.Search); search != "" {
		values.Set("search", search)
	}
	if filter := encodeFilters(p.Filters); filter != "" {
		values.Set("filter", filter)
	}
	return values
}

func encodeFilters(filters map[string]string) string {
	keys := make([]string, 0, len(filters))
	for key, value := range filters {
		if strings.TrimSpace(value) == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+":"+strings.TrimSpace(filters[key]))
	}
	return strings.Join(pairs, ",")
}

// Page is one decoded page of records plus the server-reported total.
type Page[T any] struct {
	Data  []T
	Total int
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodePage parses a list envelope. Both {data: [...], total: n} and
// {data: {<listKey>: [...], total: n}} are accepted. Every record is
// validated against its `validate` tags.
func DecodePage[T any](path, listKey string, raw []byte) (Page[T], error) {
	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Total *int            `json:"total"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Page[T]{}, &DecodeError{Path: path, Reason: "invalid json", Err: err}
	}
	list, total, err := unwrapList(envelope.Data, envelope.Total, listKey)
	if err != nil {
		return Page[T]{}, &DecodeError{Path: path, Reason: err.Error()}
	}

	var records []T
	if err := json.Unmarshal(list, &records); err != nil {
		return Page[T]{}, &DecodeError{Path: path, Reason: "records do not match model", Err: err}
	}
	for i := range records {
		if err := validateRecord(records[i]); err != nil {
			return Page[T]{}, &DecodeError{Path: fmt.Sprintf("%s[%d]", path, i), Reason: "invalid record", Err: err}
		}
	}
	if records == nil {
		records = []T{}
	}
	if total < 0 {
		return Page[T]{}, &DecodeError{Path: path, Reason: "negative total"}
	}
	return Page[T]{Data: records, Total: total}, nil
}

func unwrapList(data json.RawMessage, outerTotal *int, listKey string) (json.RawMessage, int, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, 0, errors.New("missing data")
	}
	switch trimmed[0] {
	case '[':
		if outerTotal == nil {
			return nil, 0, errors.New("missing total")
		}
		return trimmed, *outerTotal, nil
	case '{':
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &nested); err != nil {
			return nil, 0, err
		}
		list, ok := nested[listKey]
		if !ok {
			return nil, 0, fmt.Errorf("missing data.%s", listKey)
		}
		if rawTotal, ok := nested["total"]; ok {
			var total int
			if err := json.Unmarshal(rawTotal, &total); err != nil {
				return nil, 0, fmt.Errorf("data.total: %w", err)
			}
			return list, total, nil
		}
		if outerTotal == nil {
			return nil, 0, errors.New("missing total")
		}
		return list, *outerTotal, nil
	default:
		return nil, 0, errors.New("data is neither a list nor an object")
	}
}

// DecodeItem parses a single-record envelope {data: {...}} or a bare object.
func DecodeItem[T any](path string, raw []byte) (T, error) {
	var zero T
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	body := bytes.TrimSpace(raw)
	if err := json.Unmarshal(body, &envelope); err == nil && len(bytes.TrimSpace(envelope.Data)) > 0 && envelope.Data[0] == '{' {
		body = envelope.Data
	}
	var record T
	if err := json.Unmarshal(body, &record); err != nil {
		return zero, &DecodeError{Path: path, Reason: "record does not match model", Err: err}
	}
	if err := validateRecord(record); err != nil {
		return zero, &DecodeError{Path: path, Reason: "invalid record", Err: err}
	}
	return record, nil
}

func validateRecord(v any) error {
	err := validate.Struct(v)
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		// Non-struct records carry no tags to check.
		return nil
	}
	return err
}

// FetchPage GETs a list endpoint and decodes it.
func FetchPage[T any](ctx context.Context, c *Client, path, listKey string, params ListParams) (Page[T], error) {
	raw, err := c.Do(ctx, http.MethodGet, path, params.Values(), nil)
	if err != nil {
		return Page[T]{}, err
	}
	return DecodePage[T](path, listKey, raw)
}

// FetchItem GETs a single record and decodes it.
func FetchItem[T any](ctx context.Context, c *Client, path string) (T, error) {
	raw, err := c.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return DecodeItem[T](path, raw)
}
