package datatable

import (
	"fmt"
	"strings"
)

// FilterKind selects which Filter variant a column accepts.
type FilterKind int

const (
	// FilterText accepts TextContains.
	FilterText FilterKind = iota
	// FilterRange accepts NumericRange.
	FilterRange
	// FilterSet accepts SetMembership.
	FilterSet
)

func (k FilterKind) String() string {
	switch k {
	case FilterText:
		return "text"
	case FilterRange:
		return "range"
	case FilterSet:
		return "set"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Column describes one column of a table. The zero value of every Disable*
// flag leaves the capability enabled. A column without an Accessor is
// display-only: it can never be sorted, filtered or faceted.
type Column[R any] struct {
	ID       string
	Header   string
	Accessor func(R) Value

	DisableSorting   bool
	DisableHiding    bool
	DisableFiltering bool

	// IsNumeric is a presentation hint (right alignment) only.
	IsNumeric bool

	Filter FilterKind
}

// Accessor builds a data column reading its value with get.
func Accessor[R any](id, header string, get func(R) Value) Column[R] {
	return Column[R]{ID: id, Header: header, Accessor: get}
}

// Display builds a display-only column (row selection, actions) that cannot
// be sorted, filtered or hidden.
func Display[R any](id string) Column[R] {
	return Column[R]{ID: id, DisableSorting: true, DisableHiding: true, DisableFiltering: true}
}

func (c *Column[R]) canSort() bool   { return c.Accessor != nil && !c.DisableSorting }
func (c *Column[R]) canFilter() bool { return c.Accessor != nil && !c.DisableFiltering }
func (c *Column[R]) canHide() bool   { return !c.DisableHiding }

// Direction is a column's sort direction.
type Direction int

const (
	// Unsorted means the column does not participate in sorting.
	Unsorted Direction = iota
	// Ascending sorts smallest first.
	Ascending
	// Descending sorts largest first.
	Descending
)

func (d Direction) String() string {
	switch d {
	case Unsorted:
		return "none"
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return fmt.Sprintf("unknown(%d)", d)
	}
}

// next is the toggle cycle unsorted -> asc -> desc -> unsorted.
func (d Direction) next() Direction {
	switch d {
	case Unsorted:
		return Ascending
	case Ascending:
		return Descending
	default:
		return Unsorted
	}
}

// SortKey is one entry of a multi-column sort. The first key has the highest
// precedence.
type SortKey struct {
	ColumnID  string    `json:"id"`
	Direction Direction `json:"direction"`
}

// ParseSortKey parses "column" or "column:asc|desc".
func ParseSortKey(s string) (SortKey, error) {
	id, dir, found := strings.Cut(strings.TrimSpace(s), ":")
	if id == "" {
		return SortKey{}, fmt.Errorf("%w: %q", ErrInvalidSort, s)
	}
	if !found {
		return SortKey{ColumnID: id, Direction: Ascending}, nil
	}
	switch strings.ToLower(dir) {
	case "asc", "":
		return SortKey{ColumnID: id, Direction: Ascending}, nil
	case "desc":
		return SortKey{ColumnID: id, Direction: Descending}, nil
	default:
		return SortKey{}, fmt.Errorf("%w: direction %q", ErrInvalidSort, dir)
	}
}

// FormatSortKey is the inverse of ParseSortKey.
func FormatSortKey(k SortKey) string {
	return k.ColumnID + ":" + k.Direction.String()
}
