package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/gexx/gexx/internal/datatable"
	"github.com/gexx/gexx/internal/service"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// tableData is what the table partial renders.
type tableData struct {
	View      string
	Grid      datatable.Grid
	P         *datatable.Projection[service.InventoryRow]
	Hideable  []datatable.Header
	PageSizes []int
	Return    string
	CSRF      template.HTML
}

func (s *Server) table(c echo.Context, view, ret string, csrfField template.HTML) (*tableData, error) {
	acct := account(c)
	e, err := s.views.Get(c.Request().Context(), sessionID(c), acct.Team.TeamID, view)
	if err != nil {
		return nil, err
	}
	p := e.Projection()
	cctx := &cellContext{
		tmpl:     s.tmpl.cells,
		View:     view,
		CSRF:     csrfField,
		Return:   ret,
		Currency: s.cfg.Inventory.Currency,
	}
	return &tableData{
		View:      view,
		Grid:      renderTable(cctx, p, e.Columns()),
		P:         p,
		Hideable:  p.HideableHeaders(),
		PageSizes: s.cfg.Table.PageSizes,
		Return:    ret,
		CSRF:      csrfField,
	}, nil
}

func (s *Server) dashboardPage(c echo.Context) error {
	ctx := c.Request().Context()
	d := s.page(c, "Dashboard")
	sum, err := s.dashboard.Summary(ctx, account(c).Team.TeamID)
	if err != nil {
		return err
	}
	d.Summary = sum
	if d.Table, err = s.table(c, ViewDashboard, "/dashboard", d.CSRF); err != nil {
		return err
	}
	return c.Render(http.StatusOK, "dashboard", d)
}

func (s *Server) inventoryPage(c echo.Context) error {
	return s.renderInventory(c, http.StatusOK, service.CreateItemInput{Status: service.StatusDraft}, nil)
}

func (s *Server) renderInventory(c echo.Context, code int, item service.CreateItemInput, errs service.ValidationErrors) error {
	d := s.page(c, "Inventory")
	d.Item = item
	d.Errors = errs
	d.Categories = s.inventory.KnownCategories(account(c).Team.TeamID)
	d.Statuses = []string{service.StatusActive, service.StatusDraft, service.StatusArchived}
	var err error
	if d.Table, err = s.table(c, ViewInventory, "/inventory", d.CSRF); err != nil {
		return err
	}
	return c.Render(code, "inventory", d)
}

func (s *Server) createItem(c echo.Context) error {
	var in service.CreateItemInput
	if err := s.decodeForm(c, &in); err != nil {
		return err
	}
	_, err := s.inventory.Create(c.Request().Context(), account(c).Team.TeamID, in)
	var verrs service.ValidationErrors
	if errors.As(err, &verrs) {
		return s.renderInventory(c, http.StatusUnprocessableEntity, in, verrs)
	}
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/inventory")
}

func (s *Server) tableOp(c echo.Context) error {
	var op TableOp
	if err := s.decodeForm(c, &op); err != nil {
		return err
	}
	if err := s.applyOp(c, c.Param("view"), op); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, safeRedirect(op.Return, "/"+c.Param("view")))
}

func (s *Server) applyOp(c echo.Context, view string, op TableOp) error {
	e, err := s.views.Get(c.Request().Context(), sessionID(c), account(c).Team.TeamID, view)
	if errors.Is(err, ErrUnknownView) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	if err := Apply(e, op, s.cfg.Table.PageSizes); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.log.WithFields(logrus.Fields{"view": view, "op": op.Op, "column": op.Column}).Debug("table op")
	return nil
}

func (s *Server) updateStock(c echo.Context) error {
	qty, err := strconv.Atoi(strings.TrimSpace(c.FormValue("quantity")))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be an integer")
	}
	err = s.inventory.UpdateStock(c.Request().Context(), account(c).Team.TeamID, c.Param("id"), qty)
	var verrs service.ValidationErrors
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.As(err, &verrs):
		return echo.NewHTTPError(http.StatusBadRequest, verrs["quantity"])
	case err != nil:
		return err
	}
	return c.Redirect(http.StatusSeeOther, safeRedirect(c.FormValue("return"), "/inventory"))
}

func (s *Server) deleteSelected(c echo.Context) error {
	view := c.FormValue("view")
	if view == "" {
		view = ViewInventory
	}
	acct := account(c)
	ctx := c.Request().Context()
	e, err := s.views.Get(ctx, sessionID(c), acct.Team.TeamID, view)
	if errors.Is(err, ErrUnknownView) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	var ids []string
	for _, r := range e.SelectedRows() {
		ids = append(ids, r.ID)
	}
	if _, err := s.inventory.Delete(ctx, acct.Team.TeamID, ids); err != nil {
		return err
	}
	e.ResetRowSelection()
	return c.Redirect(http.StatusSeeOther, safeRedirect(c.FormValue("return"), "/"+view))
}

func (s *Server) exportXLSX(c echo.Context) error {
	view := c.QueryParam("view")
	if view == "" {
		view = ViewInventory
	}
	e, err := s.views.Get(c.Request().Context(), sessionID(c), account(c).Team.TeamID, view)
	if errors.Is(err, ErrUnknownView) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := s.export.WriteXLSX(&buf, e); err != nil {
		return fmt.Errorf("export %s: %w", view, err)
	}
	name := fmt.Sprintf("inventory-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}
