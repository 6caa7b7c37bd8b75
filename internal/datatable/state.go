package datatable

import "maps"

// DefaultPageSize is used when Options.PageSize is not positive.
const DefaultPageSize = 10

// Pagination is the active page window.
type Pagination struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
}

// State is the complete client-visible state of one table view. The Engine
// never mutates a State in place once published; every operation works on a
// clone that replaces the previous one as a unit.
type State struct {
	Sorting          []SortKey         `json:"sorting"`
	ColumnVisibility map[string]bool   `json:"columnVisibility"`
	RowSelection     map[string]bool   `json:"rowSelection"`
	ColumnFilters    map[string]Filter `json:"-"`
	Pagination       Pagination        `json:"pagination"`
}

func newState(pageSize int) *State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &State{
		ColumnVisibility: map[string]bool{},
		RowSelection:     map[string]bool{},
		ColumnFilters:    map[string]Filter{},
		Pagination:       Pagination{PageSize: pageSize},
	}
}

func (s *State) clone() *State {
	out := &State{
		ColumnVisibility: maps.Clone(s.ColumnVisibility),
		RowSelection:     maps.Clone(s.RowSelection),
		ColumnFilters:    maps.Clone(s.ColumnFilters),
		Pagination:       s.Pagination,
	}
	if len(s.Sorting) > 0 {
		out.Sorting = append([]SortKey(nil), s.Sorting...)
	}
	return out
}

// IsVisible reports whether the column is shown. Columns without an entry are visible.
func (s State) IsVisible(columnID string) bool {
	v, ok := s.ColumnVisibility[columnID]
	return !ok || v
}

// SortOf returns the column's direction and its precedence (0 = primary), or
// Unsorted and -1.
func (s State) SortOf(columnID string) (Direction, int) {
	for i, k := range s.Sorting {
		if k.ColumnID == columnID {
			return k.Direction, i
		}
	}
	return Unsorted, -1
}

// pageCount is ceil(n / size).
func pageCount(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	p := n / size
	if n%size != 0 {
		p++
	}
	return p
}

// clampPage keeps idx inside [0, pages-1], or 0 when there are no pages.
func clampPage(idx, pages int) int {
	if pages <= 0 || idx < 0 {
		return 0
	}
	if idx > pages-1 {
		return pages - 1
	}
	return idx
}
