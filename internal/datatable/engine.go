package datatable

import (
	"fmt"
	"slices"
	"sync"
)

// Options configures an Engine.
type Options[R any] struct {
	// RowID returns the unique, stable identifier of a row.
	RowID func(R) string
	// PageSize is the initial page size (DefaultPageSize when not positive).
	PageSize int
}

// Engine holds the state of one table view over an immutable row source.
// It is safe for concurrent use, but each view should own its own Engine.
type Engine[R any] struct {
	mu sync.RWMutex

	columns []Column[R]
	colIdx  map[string]int
	rowID   func(R) string

	rows   []R
	ids    []string
	rowIdx map[string]int

	state   *State
	version uint64

	cache        *Projection[R]
	cacheVersion uint64
}

// New builds an Engine over rows. The slice is copied; the engine never
// modifies the caller's rows.
func New[R any](rows []R, columns []Column[R], opts Options[R]) (*Engine[R], error) {
	if opts.RowID == nil {
		return nil, ErrNoRowID
	}
	colIdx := make(map[string]int, len(columns))
	for i, c := range columns {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: column %d has no id", ErrInvalidColumn, i)
		}
		if _, dup := colIdx[c.ID]; dup {
			return nil, fmt.Errorf("%w: repeated id %q", ErrInvalidColumn, c.ID)
		}
		colIdx[c.ID] = i
	}
	e := &Engine[R]{
		columns: slices.Clone(columns),
		colIdx:  colIdx,
		rowID:   opts.RowID,
		state:   newState(opts.PageSize),
		version: 1,
	}
	if err := e.loadRows(rows); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine[R]) loadRows(rows []R) error {
	ids := make([]string, len(rows))
	idx := make(map[string]int, len(rows))
	for i, r := range rows {
		id := e.rowID(r)
		if _, dup := idx[id]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateRowID, id)
		}
		ids[i] = id
		idx[id] = i
	}
	e.rows = slices.Clone(rows)
	e.ids = ids
	e.rowIdx = idx
	return nil
}

// Columns returns the column descriptors in declaration order.
func (e *Engine[R]) Columns() []Column[R] {
	return slices.Clone(e.columns)
}

// State returns a copy of the current state.
func (e *Engine[R]) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return *e.state.clone()
}

func (e *Engine[R]) column(id string) (*Column[R], bool) {
	i, ok := e.colIdx[id]
	if !ok {
		return nil, false
	}
	return &e.columns[i], true
}

// update applies fn to a clone of the current state and publishes it when fn
// reports a change.
func (e *Engine[R]) update(fn func(s *State) bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := e.state.clone()
	if !fn(next) {
		return
	}
	e.state = next
	e.version++
}

// reclamp recomputes the page clamp for s against the current row source.
func (e *Engine[R]) reclamp(s *State) {
	pages := pageCount(len(e.filter(s)), s.Pagination.PageSize)
	s.Pagination.PageIndex = clampPage(s.Pagination.PageIndex, pages)
}

// SetSorting replaces the sort order. Keys naming unknown, display-only or
// non-sortable columns, unsorted keys and repeated columns are dropped.
func (e *Engine[R]) SetSorting(keys []SortKey) {
	e.update(func(s *State) bool {
		var out []SortKey
		seen := map[string]bool{}
		for _, k := range keys {
			c, ok := e.column(k.ColumnID)
			if !ok || !c.canSort() || seen[k.ColumnID] {
				continue
			}
			if k.Direction != Ascending && k.Direction != Descending {
				continue
			}
			seen[k.ColumnID] = true
			out = append(out, k)
		}
		s.Sorting = out
		s.Pagination.PageIndex = 0
		return true
	})
}

// ToggleSort advances a column through unsorted -> ascending -> descending ->
// unsorted, replacing any other sort keys.
func (e *Engine[R]) ToggleSort(columnID string) {
	c, ok := e.column(columnID)
	if !ok || !c.canSort() {
		return
	}
	e.update(func(s *State) bool {
		dir, _ := s.SortOf(columnID)
		next := dir.next()
		if next == Unsorted {
			s.Sorting = nil
		} else {
			s.Sorting = []SortKey{{ColumnID: columnID, Direction: next}}
		}
		s.Pagination.PageIndex = 0
		return true
	})
}

// ResetSorting clears the sort order.
func (e *Engine[R]) ResetSorting() { e.SetSorting(nil) }

// SetColumnFilter sets or, for a nil or empty filter, clears the column's
// filter and returns to the first page. Filters of the wrong kind for the
// column are ignored.
func (e *Engine[R]) SetColumnFilter(columnID string, f Filter) {
	c, ok := e.column(columnID)
	if !ok || !c.canFilter() {
		return
	}
	if f != nil && !f.Empty() && f.Kind() != c.Filter {
		return
	}
	e.update(func(s *State) bool {
		if f == nil || f.Empty() {
			delete(s.ColumnFilters, columnID)
		} else {
			s.ColumnFilters[columnID] = f
		}
		s.Pagination.PageIndex = 0
		return true
	})
}

// ResetColumnFilters clears every column filter.
func (e *Engine[R]) ResetColumnFilters() {
	e.update(func(s *State) bool {
		clear(s.ColumnFilters)
		s.Pagination.PageIndex = 0
		return true
	})
}

// SetColumnVisibility shows or hides a column. Columns that disable hiding
// stay visible. Filters, sorting, selection and pagination are untouched.
func (e *Engine[R]) SetColumnVisibility(columnID string, visible bool) {
	c, ok := e.column(columnID)
	if !ok || (!visible && !c.canHide()) {
		return
	}
	e.update(func(s *State) bool {
		s.ColumnVisibility[columnID] = visible
		return true
	})
}

// ToggleRowSelection selects or deselects the row with the given id.
func (e *Engine[R]) ToggleRowSelection(rowID string, selected bool) {
	e.update(func(s *State) bool {
		if _, ok := e.rowIdx[rowID]; !ok {
			return false
		}
		setSelected(s, rowID, selected)
		return true
	})
}

// ToggleAllPageRowsSelected applies selected to the rows of the current page only.
func (e *Engine[R]) ToggleAllPageRowsSelected(selected bool) {
	e.update(func(s *State) bool {
		for _, i := range e.page(s, e.sorted(s, e.filter(s))) {
			setSelected(s, e.ids[i], selected)
		}
		return true
	})
}

// ResetRowSelection deselects every row.
func (e *Engine[R]) ResetRowSelection() {
	e.update(func(s *State) bool {
		clear(s.RowSelection)
		return true
	})
}

// Reset clears filters, sorting and selection and returns to the first page
// in one state change. Visibility and page size are kept.
func (e *Engine[R]) Reset() {
	e.update(func(s *State) bool {
		clear(s.ColumnFilters)
		clear(s.RowSelection)
		s.Sorting = nil
		s.Pagination.PageIndex = 0
		return true
	})
}

func setSelected(s *State, id string, selected bool) {
	if selected {
		s.RowSelection[id] = true
	} else {
		delete(s.RowSelection, id)
	}
}

// SetPageIndex moves to page n, clamped into the valid range.
func (e *Engine[R]) SetPageIndex(n int) {
	e.update(func(s *State) bool {
		s.Pagination.PageIndex = n
		e.reclamp(s)
		return true
	})
}

// FirstPage moves to page 0.
func (e *Engine[R]) FirstPage() { e.SetPageIndex(0) }

// LastPage moves to the last page.
func (e *Engine[R]) LastPage() {
	e.update(func(s *State) bool {
		s.Pagination.PageIndex = pageCount(len(e.filter(s)), s.Pagination.PageSize) - 1
		e.reclamp(s)
		return true
	})
}

// NextPage advances one page when possible.
func (e *Engine[R]) NextPage() {
	e.update(func(s *State) bool {
		s.Pagination.PageIndex++
		e.reclamp(s)
		return true
	})
}

// PreviousPage goes back one page when possible.
func (e *Engine[R]) PreviousPage() {
	e.update(func(s *State) bool {
		s.Pagination.PageIndex--
		e.reclamp(s)
		return true
	})
}

// SetPageSize changes the page size and re-clamps the page index without
// resetting it. Sizes below 1 are rejected.
func (e *Engine[R]) SetPageSize(n int) {
	if n <= 0 {
		return
	}
	e.update(func(s *State) bool {
		s.Pagination.PageSize = n
		e.reclamp(s)
		return true
	})
}

// SetRows replaces the row source. Selected ids that no longer exist are
// dropped and the page index is re-clamped. On error the engine is unchanged.
func (e *Engine[R]) SetRows(rows []R) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	prev := struct {
		rows   []R
		ids    []string
		rowIdx map[string]int
	}{e.rows, e.ids, e.rowIdx}
	if err := e.loadRows(rows); err != nil {
		e.rows, e.ids, e.rowIdx = prev.rows, prev.ids, prev.rowIdx
		return err
	}
	next := e.state.clone()
	for id := range next.RowSelection {
		if _, ok := e.rowIdx[id]; !ok {
			delete(next.RowSelection, id)
		}
	}
	e.reclamp(next)
	e.state = next
	e.version++
	return nil
}

// SelectedRows returns every selected row in source order, regardless of
// filters and pagination.
func (e *Engine[R]) SelectedRows() []R {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []R
	for i, id := range e.ids {
		if e.state.RowSelection[id] {
			out = append(out, e.rows[i])
		}
	}
	return out
}

// filter returns source indices of rows passing every active column filter,
// in source order.
func (e *Engine[R]) filter(s *State) []int {
	type active struct {
		get func(R) Value
		f   Filter
	}
	var preds []active
	for id, f := range s.ColumnFilters {
		c, ok := e.column(id)
		if !ok || !c.canFilter() || f == nil {
			continue
		}
		preds = append(preds, active{get: c.Accessor, f: f})
	}
	out := make([]int, 0, len(e.rows))
rows:
	for i, r := range e.rows {
		for _, p := range preds {
			if !p.f.Match(p.get(r)) {
				continue rows
			}
		}
		out = append(out, i)
	}
	return out
}

// sorted orders idx by the sort keys in s. Ties fall back to source order so
// the result is a total order.
func (e *Engine[R]) sorted(s *State, idx []int) []int {
	type key struct {
		vals []Value
		desc bool
	}
	var keys []key
	for _, k := range s.Sorting {
		c, ok := e.column(k.ColumnID)
		if !ok || !c.canSort() {
			continue
		}
		vals := make([]Value, len(e.rows))
		for _, i := range idx {
			vals[i] = c.Accessor(e.rows[i])
		}
		keys = append(keys, key{vals: vals, desc: k.Direction == Descending})
	}
	if len(keys) == 0 {
		return idx
	}
	out := slices.Clone(idx)
	slices.SortStableFunc(out, func(a, b int) int {
		for _, k := range keys {
			c := Compare(k.vals[a], k.vals[b])
			if k.desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return a - b
	})
	return out
}

// page slices the ordered rows for the active page. Out-of-range pages are empty.
func (e *Engine[R]) page(s *State, ordered []int) []int {
	start := s.Pagination.PageIndex * s.Pagination.PageSize
	if start < 0 || start >= len(ordered) {
		return nil
	}
	end := start + min(s.Pagination.PageSize, len(ordered)-start)
	return ordered[start:end]
}

// OrderedRows returns every row passing the filters in display order,
// ignoring pagination.
func (e *Engine[R]) OrderedRows() []RowView[R] {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.orderedRows(e.state)
}

// Snapshot returns the projection and every filtered row in display order,
// both derived from the same state.
func (e *Engine[R]) Snapshot() (*Projection[R], []RowView[R]) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cache == nil || e.cacheVersion != e.version {
		e.cache = e.derive(e.state)
		e.cacheVersion = e.version
	}
	return e.cache, e.orderedRows(e.state)
}

func (e *Engine[R]) orderedRows(s *State) []RowView[R] {
	ordered := e.sorted(s, e.filter(s))
	out := make([]RowView[R], len(ordered))
	for n, i := range ordered {
		id := e.ids[i]
		out[n] = RowView[R]{ID: id, Original: e.rows[i], Selected: s.RowSelection[id]}
	}
	return out
}
