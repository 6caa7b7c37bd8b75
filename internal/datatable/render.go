package datatable

// Renderable renders one column in each of its roles. Presentation layers
// (HTML, terminal) implement it per column type; the engine never renders.
type Renderable[R any] interface {
	RenderHeader(h Header) string
	RenderCell(row RowView[R], v Value) string
	RenderFilter(h Header, facets []Facet) string
}

// Renderers maps column ids to their Renderable. Columns without an entry use
// the fallback passed to Render.
type Renderers[R any] map[string]Renderable[R]

// Grid is a rendered page: one header cell and one row of cells per visible column.
type Grid struct {
	Columns []Header
	Headers []string
	Filters []string
	Cells   [][]string
	RowIDs  []string
}

// Render renders the visible columns of p.
func Render[R any](p *Projection[R], columns []Column[R], renderers Renderers[R], fallback Renderable[R]) Grid {
	byID := make(map[string]*Column[R], len(columns))
	for i := range columns {
		byID[columns[i].ID] = &columns[i]
	}
	pick := func(id string) Renderable[R] {
		if r, ok := renderers[id]; ok {
			return r
		}
		return fallback
	}

	g := Grid{Columns: p.VisibleHeaders()}
	for _, h := range g.Columns {
		r := pick(h.ColumnID)
		g.Headers = append(g.Headers, r.RenderHeader(h))
		g.Filters = append(g.Filters, r.RenderFilter(h, p.FacetList(h.ColumnID)))
	}
	for _, row := range p.Rows {
		cells := make([]string, 0, len(g.Columns))
		for _, h := range g.Columns {
			var v Value
			if c := byID[h.ColumnID]; c != nil && c.Accessor != nil {
				v = c.Accessor(row.Original)
			}
			cells = append(cells, pick(h.ColumnID).RenderCell(row, v))
		}
		g.Cells = append(g.Cells, cells)
		g.RowIDs = append(g.RowIDs, row.ID)
	}
	return g
}

// TextRenderer renders plain text: the header title, the value's display
// form and no filter control.
type TextRenderer[R any] struct{}

func (TextRenderer[R]) RenderHeader(h Header) string            { return h.Title }
func (TextRenderer[R]) RenderCell(_ RowView[R], v Value) string { return v.String() }
func (TextRenderer[R]) RenderFilter(Header, []Facet) string     { return "" }
