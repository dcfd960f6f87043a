package shared

import "math"

// DefaultPerPage is used when a listing does not specify a page size.
const DefaultPerPage = 20

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata. Page is clamped to
// [1, max(TotalPages, 1)].
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if total < 0 {
		total = 0
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if page < 1 {
		page = 1
	}
	if last := max(totalPages, 1); page > last {
		page = last
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset returns the zero-based index of the first item on the current page.
func (p Pagination) Offset() int {
	return PageOffset(p.Page, p.PerPage)
}

// PageOffset returns (page-1)*perPage, saturating at math.MaxInt instead of
// wrapping negative. Invalid arguments give 0.
func PageOffset(page, perPage int) int {
	if page < 1 || perPage < 1 {
		return 0
	}
	if page-1 > math.MaxInt/perPage {
		return math.MaxInt
	}
	return (page - 1) * perPage
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// PrevPage returns the previous page number, or 1 on the first page.
func (p Pagination) PrevPage() int {
	if p.HasPrev() {
		return p.Page - 1
	}
	return 1
}

// NextPage returns the next page number, or the current one on the last page.
func (p Pagination) NextPage() int {
	if p.HasNext() {
		return p.Page + 1
	}
	return p.Page
}

// Pages enumerates 1..TotalPages.
func (p Pagination) Pages() []int {
	pages := make([]int, 0, p.TotalPages)
	for i := 1; i <= p.TotalPages; i++ {
		pages = append(pages, i)
	}
	return pages
}

// Visible reports whether navigation controls should render at all.
func (p Pagination) Visible() bool {
	return p.TotalPages > 1
}

// First returns the 1-based index of the first item shown, 0 when empty.
func (p Pagination) First() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// Last returns the 1-based index of the last item shown.
func (p Pagination) Last() int {
	offset := p.Offset()
	if offset >= p.Total {
		return p.Total
	}
	return min(offset+p.PerPage, p.Total)
}

// Paginate slices items to the requested page. It returns an empty slice when
// page is past the end or the arguments are out of range.
func Paginate[T any](items []T, page, perPage int) []T {
	if page < 1 || perPage < 1 {
		return []T{}
	}
	pages := len(items) / perPage
	if len(items)%perPage != 0 {
		pages++
	}
	if page > pages {
		return []T{}
	}
	start := (page - 1) * perPage
	end := min(start+perPage, len(items))
	return items[start:end]
}
