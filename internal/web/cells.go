package web

import (
	"bytes"
	"html/template"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/gexx/gexx/internal/datatable"
	"github.com/gexx/gexx/internal/service"
)

type row = datatable.RowView[service.InventoryRow]

// cellContext carries what the HTML cells need beyond the row: the view they
// post back to, the CSRF field and the page-level selection state.
type cellContext struct {
	tmpl     *template.Template
	View     string
	CSRF     template.HTML
	Return   string
	All      datatable.SelectAll
	Currency string
}

func (c *cellContext) exec(name string, data any) string {
	var buf bytes.Buffer
	if err := c.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return template.HTMLEscapeString(err.Error())
	}
	return buf.String()
}

type headerData struct {
	*cellContext
	H       datatable.Header
	Numeric bool
}

type facetOption struct {
	Value   string
	Count   int
	Checked bool
}

// textCell is the default HTML column: a sort button for sortable columns,
// the escaped value, and a filter control matching the column's filter kind.
type textCell struct{ ctx *cellContext }

func (c textCell) RenderHeader(h datatable.Header) string {
	if !h.CanSort {
		return c.ctx.exec("plain-header", headerData{cellContext: c.ctx, H: h})
	}
	return c.ctx.exec("sort-header", headerData{cellContext: c.ctx, H: h, Numeric: h.IsNumeric})
}

func (textCell) RenderCell(_ row, v datatable.Value) string {
	return template.HTMLEscapeString(v.String())
}

func (c textCell) RenderFilter(h datatable.Header, facets []datatable.Facet) string {
	if !h.CanFilter {
		return ""
	}
	switch h.FilterKind {
	case datatable.FilterSet:
		active := map[string]bool{}
		if f, ok := h.Filter.(datatable.SetMembership); ok {
			for _, v := range f.Values {
				active[v] = true
			}
		}
		opts := make([]facetOption, 0, len(facets))
		for _, f := range facets {
			s := f.Value.String()
			opts = append(opts, facetOption{Value: s, Count: f.Count, Checked: active[s]})
			delete(active, s)
		}
		// Selected values with no remaining rows stay listed so they can be unticked.
		for v := range active {
			opts = append(opts, facetOption{Value: v, Checked: true})
		}
		return c.ctx.exec("filter-set", struct {
			headerData
			Facets []facetOption
		}{headerData{cellContext: c.ctx, H: h}, opts})
	case datatable.FilterRange:
		var lo, hi string
		if f, ok := h.Filter.(datatable.NumericRange); ok {
			if f.Min != nil {
				lo = strconv.FormatFloat(*f.Min, 'f', -1, 64)
			}
			if f.Max != nil {
				hi = strconv.FormatFloat(*f.Max, 'f', -1, 64)
			}
		}
		return c.ctx.exec("filter-range", struct {
			headerData
			Min, Max string
		}{headerData{cellContext: c.ctx, H: h}, lo, hi})
	default:
		var needle string
		if f, ok := h.Filter.(datatable.TextContains); ok {
			needle = f.Needle
		}
		return c.ctx.exec("filter-text", struct {
			headerData
			Needle string
		}{headerData{cellContext: c.ctx, H: h}, needle})
	}
}

type selectCell struct{ textCell }

func (c selectCell) RenderHeader(datatable.Header) string {
	state := "none"
	switch c.ctx.All {
	case datatable.SelectAllRows:
		state = "all"
	case datatable.SelectSome:
		state = "some"
	}
	return c.ctx.exec("select-header", struct {
		*cellContext
		State string
	}{c.ctx, state})
}

func (c selectCell) RenderCell(r row, _ datatable.Value) string {
	return c.ctx.exec("select-cell", struct {
		*cellContext
		Row      string
		Selected bool
	}{c.ctx, r.ID, r.Selected})
}

type badgeCell struct{ textCell }

func (c badgeCell) RenderCell(_ row, v datatable.Value) string {
	return c.ctx.exec("badge", v.String())
}

type countCell struct{ textCell }

func (c countCell) RenderCell(_ row, v datatable.Value) string {
	return c.ctx.exec("number", humanize.Comma(int64(v.Num)))
}

type moneyCell struct{ textCell }

func (c moneyCell) RenderCell(_ row, v datatable.Value) string {
	return c.ctx.exec("number", formatMoney(v.Num, c.ctx.Currency))
}

type actionsCell struct{ textCell }

func (actionsCell) RenderHeader(datatable.Header) string { return "" }

func (c actionsCell) RenderCell(r row, _ datatable.Value) string {
	return c.ctx.exec("stock-form", struct {
		*cellContext
		ID       string
		SKU      string
		Quantity int
	}{c.ctx, r.Original.ID, r.Original.SKU, r.Original.Quantity})
}

// formatMoney renders an amount with thousands separators and two decimals.
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

// renderTable renders a projection's visible columns to HTML fragments.
func renderTable(ctx *cellContext, p *datatable.Projection[service.InventoryRow], cols []datatable.Column[service.InventoryRow]) datatable.Grid {
	ctx.All = p.SelectAllState()
	base := textCell{ctx: ctx}
	return datatable.Render(p, cols, datatable.Renderers[service.InventoryRow]{
		"select":   selectCell{base},
		"status":   badgeCell{base},
		"quantity": countCell{base},
		"price":    moneyCell{base},
		"actions":  actionsCell{base},
	}, base)
}
