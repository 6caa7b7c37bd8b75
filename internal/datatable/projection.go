package datatable

import "slices"

// RowView is one row of the current page.
type RowView[R any] struct {
	ID       string
	Original R
	Selected bool
}

// Header describes a column together with its current sort, filter and
// visibility state.
type Header struct {
	ColumnID     string
	Title        string
	Visible      bool
	CanSort      bool
	CanHide      bool
	CanFilter    bool
	HasAccessor  bool
	IsNumeric    bool
	FilterKind   FilterKind
	Sort         Direction
	SortIndex    int
	Filter       Filter
	FilterActive bool
}

// Facet is one distinct value of a column across the filtered rows.
type Facet struct {
	Value Value
	Count int
}

// Projection is the read-only view derived from an Engine's state. A
// Projection is shared between callers and must not be modified.
type Projection[R any] struct {
	Rows []RowView[R]

	// TotalCount is the size of the row source; FilteredCount is the number
	// of rows passing all filters, before pagination.
	TotalCount    int
	FilteredCount int

	SelectedCount         int
	FilteredSelectedCount int

	PageIndex int
	PageSize  int
	PageCount int

	CanPreviousPage bool
	CanNextPage     bool

	Headers []Header

	// Facets maps each visible, filterable column to value -> occurrence
	// count over the filtered (not paged) rows.
	Facets map[string]map[Value]int

	State State
}

// Projection derives the current view. Results are memoized until the next
// state change.
func (e *Engine[R]) Projection() *Projection[R] {
	e.mu.RLock()
	if e.cache != nil && e.cacheVersion == e.version {
		p := e.cache
		e.mu.RUnlock()
		return p
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cache != nil && e.cacheVersion == e.version {
		return e.cache
	}
	e.cache = e.derive(e.state)
	e.cacheVersion = e.version
	return e.cache
}

func (e *Engine[R]) derive(s *State) *Projection[R] {
	filtered := e.filter(s)
	ordered := e.sorted(s, filtered)
	paged := e.page(s, ordered)
	pages := pageCount(len(filtered), s.Pagination.PageSize)

	p := &Projection[R]{
		Rows:          make([]RowView[R], 0, len(paged)),
		TotalCount:    len(e.rows),
		FilteredCount: len(filtered),
		PageIndex:     s.Pagination.PageIndex,
		PageSize:      s.Pagination.PageSize,
		PageCount:     pages,
		Facets:        map[string]map[Value]int{},
		State:         *s.clone(),
	}
	p.CanPreviousPage = p.PageIndex > 0
	p.CanNextPage = p.PageIndex < pages-1

	for _, i := range paged {
		id := e.ids[i]
		p.Rows = append(p.Rows, RowView[R]{ID: id, Original: e.rows[i], Selected: s.RowSelection[id]})
	}
	for id := range s.RowSelection {
		if _, ok := e.rowIdx[id]; ok {
			p.SelectedCount++
		}
	}
	for _, i := range filtered {
		if s.RowSelection[e.ids[i]] {
			p.FilteredSelectedCount++
		}
	}

	for ci := range e.columns {
		c := &e.columns[ci]
		dir, idx := s.SortOf(c.ID)
		f := s.ColumnFilters[c.ID]
		h := Header{
			ColumnID:     c.ID,
			Title:        c.Header,
			Visible:      s.IsVisible(c.ID),
			CanSort:      c.canSort(),
			CanHide:      c.canHide(),
			CanFilter:    c.canFilter(),
			HasAccessor:  c.Accessor != nil,
			IsNumeric:    c.IsNumeric,
			FilterKind:   c.Filter,
			Sort:         dir,
			SortIndex:    idx,
			Filter:       f,
			FilterActive: f != nil,
		}
		if h.Title == "" {
			h.Title = c.ID
		}
		p.Headers = append(p.Headers, h)

		if !h.Visible || !h.CanFilter {
			continue
		}
		counts := map[Value]int{}
		for _, i := range filtered {
			counts[c.Accessor(e.rows[i])]++
		}
		p.Facets[c.ID] = counts
	}
	return p
}

// VisibleHeaders returns the headers of visible columns in column order.
func (p *Projection[R]) VisibleHeaders() []Header {
	out := make([]Header, 0, len(p.Headers))
	for _, h := range p.Headers {
		if h.Visible {
			out = append(out, h)
		}
	}
	return out
}

// HideableHeaders returns the data columns whose visibility can be toggled.
func (p *Projection[R]) HideableHeaders() []Header {
	var out []Header
	for _, h := range p.Headers {
		if h.HasAccessor && h.CanHide {
			out = append(out, h)
		}
	}
	return out
}

// Header returns the header for columnID.
func (p *Projection[R]) Header(columnID string) (Header, bool) {
	for _, h := range p.Headers {
		if h.ColumnID == columnID {
			return h, true
		}
	}
	return Header{}, false
}

// FacetList returns the column's facets ordered by value.
func (p *Projection[R]) FacetList(columnID string) []Facet {
	counts := p.Facets[columnID]
	out := make([]Facet, 0, len(counts))
	for v, n := range counts {
		out = append(out, Facet{Value: v, Count: n})
	}
	slices.SortFunc(out, func(a, b Facet) int { return Compare(a.Value, b.Value) })
	return out
}

// SelectAll is the tri-state of a page's select-all checkbox.
type SelectAll int

const (
	SelectNone SelectAll = iota
	SelectSome
	SelectAllRows
)

// SelectAllState reports whether none, some or all rows of the current page
// are selected. An empty page is SelectNone.
func (p *Projection[R]) SelectAllState() SelectAll {
	n := 0
	for _, r := range p.Rows {
		if r.Selected {
			n++
		}
	}
	switch {
	case n == 0:
		return SelectNone
	case n == len(p.Rows):
		return SelectAllRows
	default:
		return SelectSome
	}
}

// PageRowIDs returns the ids of the rows on the current page.
func (p *Projection[R]) PageRowIDs() []string {
	out := make([]string, len(p.Rows))
	for i, r := range p.Rows {
		out[i] = r.ID
	}
	return out
}
