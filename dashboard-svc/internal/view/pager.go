package view

// DetailPageSize is how many line items the order details show at once.
const DetailPageSize = 3

// Pager is a fixed-size window over a list whose navigation wraps around.
// With one page or none the controls are inert.
type Pager struct {
	length   int
	pageSize int
	current  int
}

type PagerState struct {
	Current    int  `json:"current"`
	TotalPages int  `json:"totalPages"`
	PageSize   int  `json:"pageSize"`
	Disabled   bool `json:"disabled"`
}

func NewPager(length, pageSize int) *Pager {
	if pageSize < 1 {
		pageSize = DetailPageSize
	}
	if length < 0 {
		length = 0
	}
	return &Pager{length: length, pageSize: pageSize}
}

func (p *Pager) TotalPages() int {
	return (p.length + p.pageSize - 1) / p.pageSize
}

func (p *Pager) Current() int {
	return p.current
}

func (p *Pager) Disabled() bool {
	return p.TotalPages() <= 1
}

func (p *Pager) Next() int {
	if !p.Disabled() {
		p.current = (p.current + 1) % p.TotalPages()
	}
	return p.current
}

func (p *Pager) Previous() int {
	if total := p.TotalPages(); !p.Disabled() {
		p.current = (p.current - 1 + total) % total
	}
	return p.current
}

// Go jumps to page, wrapping out-of-range values the same way Next and
// Previous do.
func (p *Pager) Go(page int) int {
	total := p.TotalPages()
	if total == 0 {
		p.current = 0
		return 0
	}
	p.current = ((page % total) + total) % total
	return p.current
}

// Bounds returns the [start, end) slice indices of the current page.
func (p *Pager) Bounds() (int, int) {
	start := p.current * p.pageSize
	if start > p.length {
		start = p.length
	}
	end := start + p.pageSize
	if end > p.length {
		end = p.length
	}
	return start, end
}

func (p *Pager) State() PagerState {
	return PagerState{
		Current:    p.current,
		TotalPages: p.TotalPages(),
		PageSize:   p.pageSize,
		Disabled:   p.Disabled(),
	}
}

func PageOf[T any](list []T, p *Pager) []T {
	start, end := p.Bounds()
	return list[start:end]
}
