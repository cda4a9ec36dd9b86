package library

import "sync"

// ViewState is the consumer-visible state of a View.
type ViewState struct {
	SortStyle   SortStyle
	FilterQuery string
	PageCursor  int
}

// View owns the inputs of one library view and keeps the derived candidate
// list and pager consistent with them. Every input change re-derives from
// scratch and resets the pager; no partially derived state is observable.
type View struct {
	mu sync.Mutex

	raw   []Item
	tags  TagSets
	style SortStyle
	query string

	candidates []Item
	pager      *Pager
}

// NewView returns an empty view. A nil style means AlphaAsc.
func NewView(style SortStyle, pageSize, threshold int) *View {
	if style == nil {
		style = AlphaAsc
	}
	v := &View{
		style: style,
		pager: NewPager(pageSize, threshold),
	}
	v.rederive()
	return v
}

func (v *View) rederive() {
	v.candidates = Derive(v.raw, v.style, v.tags, v.query)
	v.pager.Reset(v.candidates)
}

// SetInventory replaces the raw inventory snapshot.
func (v *View) SetInventory(raw []Item) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.raw = raw
	v.rederive()
}

// SetTags replaces the tag sets.
func (v *View) SetTags(tags TagSets) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tags = tags
	v.rederive()
}

// SetSortStyle changes the sort style. Re-selecting the current style is a no-op.
func (v *View) SetSortStyle(style SortStyle) {
	if style == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if style == v.style {
		return
	}
	v.style = style
	v.rederive()
}

// SetFilter changes the filter query. An unchanged query is a no-op.
func (v *View) SetFilter(query string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if query == v.query {
		return
	}
	v.query = query
	v.rederive()
}

// Advance fires the proximity signal and reports whether the window grew.
func (v *View) Advance() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pager.Advance()
}

// OnScroll reports a consumption position within the visible window.
func (v *View) OnScroll(position int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pager.OnScroll(position)
}

// Candidates returns the full derived list.
func (v *View) Candidates() []Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.candidates
}

// Visible returns the current window.
func (v *View) Visible() []Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pager.Visible()
}

// State returns a snapshot of the view state.
func (v *View) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return ViewState{
		SortStyle:   v.style,
		FilterQuery: v.query,
		PageCursor:  v.pager.Cursor(),
	}
}

// Exhausted reports whether every candidate is visible.
func (v *View) Exhausted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pager.Exhausted()
}
