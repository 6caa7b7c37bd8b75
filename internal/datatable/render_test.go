package datatable

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type upperStatus struct{ TextRenderer[stockRow] }

func (upperStatus) RenderCell(_ RowView[stockRow], v Value) string { return strings.ToUpper(v.String()) }

func (upperStatus) RenderFilter(_ Header, facets []Facet) string {
	parts := make([]string, len(facets))
	for i, f := range facets {
		parts[i] = fmt.Sprintf("%s(%d)", f.Value, f.Count)
	}
	return strings.Join(parts, ",")
}

type checkbox struct{ TextRenderer[stockRow] }

func (checkbox) RenderCell(r RowView[stockRow], _ Value) string {
	if r.Selected {
		return "[x]"
	}
	return "[ ]"
}

func TestRenderVisibleColumns(t *testing.T) {
	rows := []stockRow{
		{ID: "a", Name: "Lamp", Status: "low-stock", Qty: 3},
		{ID: "b", Name: "Desk", Status: "in-stock", Qty: 40},
	}
	e := newStockEngine(t, rows, 10)
	e.SetColumnVisibility("category", false)
	e.SetColumnVisibility("name", false)
	e.ToggleRowSelection("b", true)

	g := Render(e.Projection(), e.Columns(), Renderers[stockRow]{
		"status": upperStatus{},
		"select": checkbox{},
	}, TextRenderer[stockRow]{})

	require.Equal(t, []string{"select", "SKU", "Status", "Quantity"}, g.Headers)
	require.Equal(t, []string{"a", "b"}, g.RowIDs)
	require.Equal(t, [][]string{
		{"[ ]", "a", "LOW-STOCK", "3"},
		{"[x]", "b", "IN-STOCK", "40"},
	}, g.Cells)
	require.Equal(t, "in-stock(1),low-stock(1)", g.Filters[2])
	require.Empty(t, g.Filters[1])
}

func TestValueOrdering(t *testing.T) {
	require.Negative(t, Compare(Null(), Bool(false)))
	require.Negative(t, Compare(Bool(true), Number(-1)))
	require.Negative(t, Compare(Number(99), String("0")))
	require.Negative(t, Compare(String("apple"), String("Banana")))
	require.Positive(t, Compare(String("b"), String("B")))
	require.Zero(t, Compare(Int(3), Number(3)))
	require.Equal(t, "89.99", Number(89.99).String())
	require.Equal(t, "", Null().String())
}

func TestFilters(t *testing.T) {
	require.True(t, TextContains{Needle: "WIRE"}.Match(String("Wireless Mouse")))
	require.False(t, TextContains{Needle: "x"}.Match(Null()))
	require.True(t, TextContains{Needle: "4"}.Match(Number(45)))

	r := Between(5, 10)
	require.True(t, r.Match(Number(5)))
	require.True(t, r.Match(Number(10)))
	require.False(t, r.Match(Number(10.01)))
	require.False(t, r.Match(String("7")))
	require.True(t, AtMost(0).Match(Number(0)))
	require.True(t, NumericRange{}.Empty())

	lo, err := ParseBound(" 2.5 ")
	require.NoError(t, err)
	require.Equal(t, 2.5, *lo)
	lo, err = ParseBound("")
	require.NoError(t, err)
	require.Nil(t, lo)
	for _, raw := range []string{"NaN", "nan", "cheap"} {
		_, err = ParseBound(raw)
		require.ErrorIs(t, err, ErrInvalidBound, raw)
	}

	s := OneOf("in-stock", "low-stock")
	require.True(t, s.Match(String("low-stock")))
	require.False(t, s.Match(String("out-of-stock")))
	require.True(t, OneOf().Empty())
}
