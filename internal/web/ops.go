package web

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gexx/gexx/internal/datatable"
	"github.com/gexx/gexx/internal/service"
)

// Table operations accepted by the form and JSON endpoints.
const (
	OpSort       = "sort"
	OpFilter     = "filter"
	OpVisibility = "visibility"
	OpSelect     = "select"
	OpSelectPage = "select-page"
	OpPage       = "page"
	OpPageSize   = "page-size"
	OpReset      = "reset"
)

var errBadOp = errors.New("invalid table operation")

// TableOp is one state change of a table view. Which fields apply depends
// on Op.
type TableOp struct {
	Op     string `schema:"op" json:"op"`
	Column string `schema:"column" json:"column,omitempty"`

	// sort: Dir is asc or desc; empty toggles Column. Keys ("col:dir")
	// replace the whole sort order when set.
	Dir  string   `schema:"dir" json:"dir,omitempty"`
	Keys []string `schema:"keys" json:"keys,omitempty"`

	// filter: Value for text columns, Values for set columns and Min/Max
	// for range columns. Blank input clears the filter.
	Value  string   `schema:"value" json:"value,omitempty"`
	Values []string `schema:"values" json:"values,omitempty"`
	Min    string   `schema:"min" json:"min,omitempty"`
	Max    string   `schema:"max" json:"max,omitempty"`

	Visible  bool   `schema:"visible" json:"visible,omitempty"`
	Row      string `schema:"row" json:"row,omitempty"`
	Selected bool   `schema:"selected" json:"selected,omitempty"`

	// page: Nav is first, prev, next or last; otherwise Page is used.
	Nav  string `schema:"nav" json:"nav,omitempty"`
	Page int    `schema:"page" json:"page,omitempty"`
	Size int    `schema:"size" json:"size,omitempty"`

	// reset: filters, sorting, selection or all.
	What string `schema:"what" json:"what,omitempty"`

	// Return is where form posts redirect afterwards.
	Return string `schema:"return" json:"-"`
}

// Apply performs op on e. pageSizes limits the sizes accepted by page-size
// when non-empty.
func Apply(e *datatable.Engine[service.InventoryRow], op TableOp, pageSizes []int) error {
	switch op.Op {
	case OpSort:
		return applySort(e, op)
	case OpFilter:
		return applyFilter(e, op)
	case OpVisibility:
		e.SetColumnVisibility(op.Column, op.Visible)
	case OpSelect:
		if op.Row == "" {
			return fmt.Errorf("%w: row required", errBadOp)
		}
		e.ToggleRowSelection(op.Row, op.Selected)
	case OpSelectPage:
		e.ToggleAllPageRowsSelected(op.Selected)
	case OpPage:
		switch op.Nav {
		case "first":
			e.FirstPage()
		case "prev":
			e.PreviousPage()
		case "next":
			e.NextPage()
		case "last":
			e.LastPage()
		case "":
			e.SetPageIndex(op.Page)
		default:
			return fmt.Errorf("%w: nav %q", errBadOp, op.Nav)
		}
	case OpPageSize:
		if op.Size <= 0 || (len(pageSizes) > 0 && !slices.Contains(pageSizes, op.Size)) {
			return fmt.Errorf("%w: page size %d", errBadOp, op.Size)
		}
		e.SetPageSize(op.Size)
	case OpReset:
		switch op.What {
		case "filters":
			e.ResetColumnFilters()
		case "sorting":
			e.ResetSorting()
		case "selection":
			e.ResetRowSelection()
		case "all", "":
			e.Reset()
		default:
			return fmt.Errorf("%w: reset %q", errBadOp, op.What)
		}
	default:
		return fmt.Errorf("%w: %q", errBadOp, op.Op)
	}
	return nil
}

func applySort(e *datatable.Engine[service.InventoryRow], op TableOp) error {
	if len(op.Keys) > 0 {
		keys := make([]datatable.SortKey, 0, len(op.Keys))
		for _, raw := range op.Keys {
			k, err := datatable.ParseSortKey(raw)
			if err != nil {
				return err
			}
			keys = append(keys, k)
		}
		e.SetSorting(keys)
		return nil
	}
	switch op.Dir {
	case "":
		e.ToggleSort(op.Column)
	case "asc":
		e.SetSorting([]datatable.SortKey{{ColumnID: op.Column, Direction: datatable.Ascending}})
	case "desc":
		e.SetSorting([]datatable.SortKey{{ColumnID: op.Column, Direction: datatable.Descending}})
	case "none":
		e.ResetSorting()
	default:
		return fmt.Errorf("%w: direction %q", errBadOp, op.Dir)
	}
	return nil
}

func applyFilter(e *datatable.Engine[service.InventoryRow], op TableOp) error {
	h, ok := e.Projection().Header(op.Column)
	if !ok || !h.CanFilter {
		return fmt.Errorf("%w: column %q cannot be filtered", errBadOp, op.Column)
	}
	switch h.FilterKind {
	case datatable.FilterText:
		e.SetColumnFilter(op.Column, datatable.TextContains{Needle: strings.TrimSpace(op.Value)})
	case datatable.FilterSet:
		var values []string
		for _, v := range op.Values {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		e.SetColumnFilter(op.Column, datatable.OneOf(values...))
	case datatable.FilterRange:
		lo, err := datatable.ParseBound(op.Min)
		if err != nil {
			return fmt.Errorf("%w: min: %v", errBadOp, err)
		}
		hi, err := datatable.ParseBound(op.Max)
		if err != nil {
			return fmt.Errorf("%w: max: %v", errBadOp, err)
		}
		e.SetColumnFilter(op.Column, datatable.NumericRange{Min: lo, Max: hi})
	}
	return nil
}

