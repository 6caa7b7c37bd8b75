package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gexx/gexx/internal/datatable"
	"github.com/gexx/gexx/internal/service"
)

type headerJSON struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Visible   bool   `json:"visible"`
	CanSort   bool   `json:"canSort"`
	CanHide   bool   `json:"canHide"`
	CanFilter bool   `json:"canFilter"`
	Numeric   bool   `json:"numeric"`
	Sort      string `json:"sort"`
	SortIndex int    `json:"sortIndex"`
	Filter    string `json:"filter,omitempty"`
}

type facetJSON struct {
	Value interface{} `json:"value"`
	Count int         `json:"count"`
}

type rowJSON struct {
	ID       string                 `json:"id"`
	Selected bool                   `json:"selected"`
	Cells    map[string]interface{} `json:"cells"`
	Item     service.InventoryRow   `json:"item"`
}

type projectionJSON struct {
	View                  string                 `json:"view"`
	Rows                  []rowJSON              `json:"rows"`
	TotalCount            int                    `json:"totalCount"`
	FilteredCount         int                    `json:"filteredCount"`
	SelectedCount         int                    `json:"selectedCount"`
	FilteredSelectedCount int                    `json:"filteredSelectedCount"`
	PageIndex             int                    `json:"pageIndex"`
	PageSize              int                    `json:"pageSize"`
	PageCount             int                    `json:"pageCount"`
	CanPreviousPage       bool                   `json:"canPreviousPage"`
	CanNextPage           bool                   `json:"canNextPage"`
	SelectAll             string                 `json:"selectAll"`
	Headers               []headerJSON           `json:"headers"`
	Facets                map[string][]facetJSON `json:"facets"`
	Sorting               []string               `json:"sorting"`
}

func valueJSON(v datatable.Value) interface{} {
	switch v.Kind {
	case datatable.KindBool:
		return v.Bool
	case datatable.KindNumber:
		return v.Num
	case datatable.KindString:
		return v.Str
	default:
		return nil
	}
}

func toJSON(view string, p *datatable.Projection[service.InventoryRow], cols []datatable.Column[service.InventoryRow]) projectionJSON {
	out := projectionJSON{
		View:                  view,
		Rows:                  make([]rowJSON, 0, len(p.Rows)),
		TotalCount:            p.TotalCount,
		FilteredCount:         p.FilteredCount,
		SelectedCount:         p.SelectedCount,
		FilteredSelectedCount: p.FilteredSelectedCount,
		PageIndex:             p.PageIndex,
		PageSize:              p.PageSize,
		PageCount:             p.PageCount,
		CanPreviousPage:       p.CanPreviousPage,
		CanNextPage:           p.CanNextPage,
		Facets:                map[string][]facetJSON{},
	}
	switch p.SelectAllState() {
	case datatable.SelectAllRows:
		out.SelectAll = "all"
	case datatable.SelectSome:
		out.SelectAll = "some"
	default:
		out.SelectAll = "none"
	}
	for _, h := range p.Headers {
		hj := headerJSON{
			ID: h.ColumnID, Title: h.Title, Visible: h.Visible, CanSort: h.CanSort, CanHide: h.CanHide,
			CanFilter: h.CanFilter, Numeric: h.IsNumeric, Sort: h.Sort.String(), SortIndex: h.SortIndex,
		}
		if h.Filter != nil {
			hj.Filter = h.Filter.String()
		}
		out.Headers = append(out.Headers, hj)
	}
	for id := range p.Facets {
		for _, f := range p.FacetList(id) {
			out.Facets[id] = append(out.Facets[id], facetJSON{Value: valueJSON(f.Value), Count: f.Count})
		}
	}
	for _, k := range p.State.Sorting {
		out.Sorting = append(out.Sorting, datatable.FormatSortKey(k))
	}
	for _, r := range p.Rows {
		cells := map[string]interface{}{}
		for _, c := range cols {
			if c.Accessor != nil && p.State.IsVisible(c.ID) {
				cells[c.ID] = valueJSON(c.Accessor(r.Original))
			}
		}
		out.Rows = append(out.Rows, rowJSON{ID: r.ID, Selected: r.Selected, Cells: cells, Item: r.Original})
	}
	return out
}

func (s *Server) apiTable(c echo.Context) error {
	view := c.Param("view")
	e, err := s.views.Get(c.Request().Context(), sessionID(c), account(c).Team.TeamID, view)
	if errors.Is(err, ErrUnknownView) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJSON(view, e.Projection(), e.Columns()))
}

func (s *Server) apiTableOp(c echo.Context) error {
	var op TableOp
	if err := bindJSON(c, &op); err != nil {
		return err
	}
	if err := s.applyOp(c, c.Param("view"), op); err != nil {
		return err
	}
	return s.apiTable(c)
}

func (s *Server) apiDashboard(c echo.Context) error {
	sum, err := s.dashboard.Summary(c.Request().Context(), account(c).Team.TeamID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sum)
}

// apiUser updates the signed-in user's account. Only PUT is supported.
func (s *Server) apiUser(c echo.Context) error {
	req := c.Request()
	if req.Method != http.MethodPut {
		return c.JSON(http.StatusMethodNotAllowed, map[string]interface{}{
			"ok":    false,
			"error": "Method not supported: " + req.Method,
		})
	}
	var in service.AccountInput
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := bindJSON(c, &in); err != nil {
			return err
		}
	} else if err := s.decodeForm(c, &in); err != nil {
		return err
	}

	acct := account(c)
	_, err := s.auth.UpdateAccount(req.Context(), acct.User.ID, in)
	var verrs service.ValidationErrors
	if errors.As(err, &verrs) {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"ok": false, "errors": verrs})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"ok": true})
}

// bindJSON decodes a JSON request body. Path and query parameters are not
// bound so a body field can never be shadowed by the route.
func bindJSON(c echo.Context, v interface{}) error {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "expected a JSON body")
	}
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	return nil
}
