package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/gexx/gexx/internal/datatable"
	"github.com/gexx/gexx/internal/service"
)

type row = datatable.RowView[service.InventoryRow]

// textCell is the terminal rendition of a plain column. Headers carry the
// sort arrow and a marker for an active filter.
type textCell struct{}

func (textCell) RenderHeader(h datatable.Header) string {
	title := h.Title
	switch h.Sort {
	case datatable.Ascending:
		title += " ▲"
	case datatable.Descending:
		title += " ▼"
	}
	if h.Sort != datatable.Unsorted && h.SortIndex > 0 {
		title += fmt.Sprint(h.SortIndex + 1)
	}
	if h.FilterActive {
		title += " *"
	}
	return title
}

func (textCell) RenderCell(_ row, v datatable.Value) string { return v.String() }

// RenderFilter lists the active filter, or the facet counts a set filter
// can choose from.
func (textCell) RenderFilter(h datatable.Header, facets []datatable.Facet) string {
	if !h.CanFilter {
		return ""
	}
	if h.FilterActive && h.Filter != nil {
		return h.Filter.String()
	}
	if h.FilterKind != datatable.FilterSet {
		return ""
	}
	parts := make([]string, 0, len(facets))
	for _, f := range facets {
		parts = append(parts, fmt.Sprintf("%s (%d)", f.Value.String(), f.Count))
	}
	return strings.Join(parts, " · ")
}

type selectCell struct {
	textCell
	all datatable.SelectAll
}

func (c selectCell) RenderHeader(datatable.Header) string {
	switch c.all {
	case datatable.SelectAllRows:
		return "[x]"
	case datatable.SelectSome:
		return "[-]"
	default:
		return "[ ]"
	}
}

func (selectCell) RenderCell(r row, _ datatable.Value) string {
	if r.Selected {
		return selectedMark.Render("[x]")
	}
	return "[ ]"
}

type badgeCell struct{ textCell }

func (badgeCell) RenderCell(_ row, v datatable.Value) string {
	switch service.StockStatus(v.String()) {
	case service.InStock:
		return badgeInStock.Render("● in stock")
	case service.LowStock:
		return badgeLowStock.Render("● low stock")
	case service.OutOfStock:
		return badgeOutStock.Render("○ out of stock")
	}
	return v.String()
}

type countCell struct{ textCell }

func (countCell) RenderCell(_ row, v datatable.Value) string {
	return humanize.Comma(int64(v.Num))
}

type moneyCell struct {
	textCell
	currency string
}

func (c moneyCell) RenderCell(_ row, v datatable.Value) string {
	return formatMoney(v.Num, c.currency)
}

// blankCell hides the web-only actions column.
type blankCell struct{ textCell }

func (blankCell) RenderHeader(datatable.Header) string    { return "" }
func (blankCell) RenderCell(row, datatable.Value) string { return "" }

func formatMoney(amount float64, currency string) string {
	s := humanize.FormatFloat("#,###.##", amount)
	switch currency {
	case "", "USD":
		return "$" + s
	case "EUR":
		return "€" + s
	case "GBP":
		return "£" + s
	default:
		return s + " " + currency
	}
}

func renderers(p *datatable.Projection[service.InventoryRow], currency string) datatable.Renderers[service.InventoryRow] {
	return datatable.Renderers[service.InventoryRow]{
		"select":   selectCell{all: p.SelectAllState()},
		"status":   badgeCell{},
		"quantity": countCell{},
		"price":    moneyCell{currency: currency},
		"actions":  blankCell{},
	}
}
