package aggregate

const (
	DefaultPageSize = 10
	windowSize      = 5
)

// Page is one slice of an already fetched collection.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// TotalPages is ceil(count / pageSize), without overflowing on huge sizes.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if count <= 0 {
		return 0
	}
	n := count / pageSize
	if count%pageSize != 0 {
		n++
	}
	return n
}

func clamp(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate returns items[(page-1)*size : page*size]. Out-of-range pages are
// clamped into [1, totalPages]; a non-positive size falls back to the default.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := TotalPages(len(items), pageSize)
	page = clamp(page, total)

	start := (page - 1) * pageSize
	end := start + min(pageSize, len(items)-start)
	out := []T{}
	if start < end {
		out = items[start:end:end]
	}
	return Page[T]{
		Items:      out,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: len(items),
		TotalPages: total,
	}
}

// -----------------------------------------------------------------------------
// Page selector
// -----------------------------------------------------------------------------

// Window is the set of page links a selector shows around the current page.
type Window struct {
	Visible          bool  `json:"visible"`
	Current          int   `json:"current"`
	Pages            []int `json:"pages"`
	ShowFirst        bool  `json:"showFirst"`
	LeadingEllipsis  bool  `json:"leadingEllipsis"`
	ShowLast         bool  `json:"showLast"`
	TrailingEllipsis bool  `json:"trailingEllipsis"`
	HasPrevious      bool  `json:"hasPrevious"`
	HasNext          bool  `json:"hasNext"`
}

// PageWindow centres up to five page numbers on current, sliding the window
// back when it would run past the last page. A single page renders nothing.
func PageWindow(current, totalPages int) Window {
	if totalPages <= 1 {
		return Window{}
	}
	current = clamp(current, totalPages)

	start := max(1, current-windowSize/2)
	end := min(totalPages, start+windowSize-1)
	if end-start+1 < windowSize {
		start = max(1, end-windowSize+1)
	}
	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return Window{
		Visible:          true,
		Current:          current,
		Pages:            pages,
		ShowFirst:        start > 1,
		LeadingEllipsis:  start > 2,
		ShowLast:         end < totalPages,
		TrailingEllipsis: end < totalPages-1,
		HasPrevious:      current > 1,
		HasNext:          current < totalPages,
	}
}

// -----------------------------------------------------------------------------
// Pager
// -----------------------------------------------------------------------------

// Pager walks the pages of a fixed collection. Every move is clamped; with one
// page or none, moves do nothing.
type Pager struct {
	current    int
	totalPages int
}

func NewPager(count, pageSize int) *Pager {
	return &Pager{current: 1, totalPages: TotalPages(count, pageSize)}
}

func (p *Pager) Current() int    { return p.current }
func (p *Pager) TotalPages() int { return p.totalPages }

func (p *Pager) GoTo(k int) int {
	if p.totalPages > 1 {
		p.current = clamp(k, p.totalPages)
	}
	return p.current
}

func (p *Pager) Next() int     { return p.GoTo(p.current + 1) }
func (p *Pager) Previous() int { return p.GoTo(p.current - 1) }
func (p *Pager) First() int    { return p.GoTo(1) }
func (p *Pager) Last() int     { return p.GoTo(p.totalPages) }

func (p *Pager) Window() Window { return PageWindow(p.current, p.totalPages) }
