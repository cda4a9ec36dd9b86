package library

// Paging defaults.
const (
	DefaultPageSize  = 50
	DefaultThreshold = 20
)

// Window returns the first cursor×pageSize candidates.
func Window(candidates []Item, cursor, pageSize int) []Item {
	if cursor < 1 {
		cursor = 1
	}
	n := cursor * pageSize
	if n > len(candidates) {
		n = len(candidates)
	}
	if n < 0 {
		n = 0
	}
	return candidates[:n]
}

// NearEnd is the proximity signal: true when position (the last consumed
// unit) is within threshold units of end (the extent of the rendered window).
func NearEnd(position, end, threshold int) bool {
	return position >= end-threshold
}

// Advance grows the visible window by one page when near is set. The new
// window and cursor are committed only if the window actually grows, so the
// window never shrinks and triggers past the end of the list are no-ops.
func Advance(candidates []Item, cursor, pageSize int, near bool) ([]Item, int) {
	if cursor < 1 {
		cursor = 1
	}
	current := Window(candidates, cursor, pageSize)
	if !near {
		return current, cursor
	}

	next := cursor + 1
	grown := Window(candidates, next, pageSize)
	if len(grown) > len(current) {
		return grown, next
	}
	return current, cursor
}

// Pager is a cursor over one candidate list.
type Pager struct {
	pageSize   int
	threshold  int
	candidates []Item
	cursor     int
	visible    []Item
}

// NewPager returns a pager with the given page size and proximity threshold.
// A page size below 1 or a negative threshold falls back to the default.
func NewPager(pageSize, threshold int) *Pager {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	return &Pager{pageSize: pageSize, threshold: threshold, cursor: 1}
}

// Reset installs a new candidate list and returns to the first page.
func (p *Pager) Reset(candidates []Item) {
	p.candidates = candidates
	p.cursor = 1
	p.visible = Window(candidates, 1, p.pageSize)
}

// Advance fires the proximity signal directly. It reports whether the window grew.
func (p *Pager) Advance() bool {
	visible, cursor := Advance(p.candidates, p.cursor, p.pageSize, true)
	grew := len(visible) > len(p.visible)
	p.visible, p.cursor = visible, cursor
	return grew
}

// OnScroll reports a consumption position (0-based units into the visible
// window) and advances when it is within the threshold of the window's end.
func (p *Pager) OnScroll(position int) bool {
	if !NearEnd(position, len(p.visible), p.threshold) {
		return false
	}
	return p.Advance()
}

// Visible returns the current window.
func (p *Pager) Visible() []Item {
	return p.visible
}

// Cursor returns the current page cursor (≥ 1).
func (p *Pager) Cursor() int {
	return p.cursor
}

// Candidates returns the full candidate list.
func (p *Pager) Candidates() []Item {
	return p.candidates
}

// PageSize returns the configured page size.
func (p *Pager) PageSize() int {
	return p.pageSize
}

// Exhausted reports whether the window already covers every candidate.
func (p *Pager) Exhausted() bool {
	return len(p.visible) >= len(p.candidates)
}
