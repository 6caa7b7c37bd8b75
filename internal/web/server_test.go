package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gexx/gexx/internal/config"
	"github.com/gexx/gexx/internal/database"
	"github.com/gexx/gexx/internal/database/repository"
	"github.com/gexx/gexx/internal/logging"
	"github.com/gexx/gexx/internal/service"
)

func testConfig() config.Config {
	var c config.Config
	c.Server.SessionTTL = time.Hour
	c.Table.PageSize = 10
	c.Table.PageSizes = []int{5, 10, 20, 30, 40, 50}
	c.Table.ViewTTL = 5 * time.Minute
	c.Inventory.LowStockThreshold = 15
	c.Inventory.Currency = "USD"
	return c
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logging.Discard()
	cfg := testConfig()
	inv := &service.InventoryService{DB: db, Items: repository.NewItemRepo(db), LowStockThreshold: 15, Log: log}
	srv, err := New(Deps{
		Config: cfg,
		Log:    log,
		Auth: &service.AuthService{
			DB: db, Users: repository.NewUserRepo(db), Teams: repository.NewTeamRepo(db), SeedSample: true, Log: log,
		},
		Inventory:  inv,
		Dashboard:  &service.DashboardService{Inventory: inv},
		SessionKey: []byte("0123456789abcdef0123456789abcdef"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

type client struct {
	t      *testing.T
	srv    *Server
	cookie *http.Cookie
}

func (c *client) do(method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.srv.Handler().ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookie {
			if ck.MaxAge < 0 {
				c.cookie = nil
			} else {
				c.cookie = ck
			}
		}
	}
	return rec
}

func (c *client) form(method, path string, v url.Values) *httptest.ResponseRecorder {
	return c.do(method, path, "application/x-www-form-urlencoded", []byte(v.Encode()))
}

func (c *client) json(method, path string, v any) *httptest.ResponseRecorder {
	c.t.Helper()
	body, err := json.Marshal(v)
	require.NoError(c.t, err)
	return c.do(method, path, "application/json", body)
}

func (c *client) table(view string) projectionJSON {
	c.t.Helper()
	rec := c.do(http.MethodGet, "/api/v1/tables/"+view, "", nil)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	var p projectionJSON
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func signedIn(t *testing.T) *client {
	t.Helper()
	c := &client{t: t, srv: newTestServer(t)}
	rec := c.form(http.MethodPost, "/signup", url.Values{
		"name": {"Ada"}, "email": {"ada@example.com"},
		"password": {"correct horse"}, "confirmPassword": {"correct horse"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	require.NotNil(t, c.cookie)
	return c
}

func TestProtectedPagesRedirect(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}

	rec := c.do(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Log in")

	rec = c.do(http.MethodGet, "/dashboard", "", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login?redirect=%2Fdashboard", rec.Header().Get("Location"))

	rec = c.do(http.MethodGet, "/api/v1/tables/inventory", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	c.cookie = &http.Cookie{Name: sessionCookie, Value: "forged"}
	rec = c.do(http.MethodGet, "/inventory", "", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestSignupLoginLogout(t *testing.T) {
	c := signedIn(t)

	rec := c.do(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = c.do(http.MethodGet, "/dashboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Stock value")
	require.Contains(t, body, "$12,612.58")
	require.Contains(t, body, "INV001")
	require.Contains(t, body, "Ada&#39;s team")

	rec = c.form(http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Nil(t, c.cookie)
	require.Zero(t, c.srv.views.Len())

	rec = c.form(http.MethodPost, "/login?redirect=/inventory", url.Values{"email": {"ada@example.com"}, "password": {"nope"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Credentials are invalid.")

	rec = c.form(http.MethodPost, "/login?redirect=/inventory", url.Values{"email": {"ada@example.com"}, "password": {"correct horse"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/inventory", rec.Header().Get("Location"))

	rec = c.form(http.MethodPost, "/login?redirect=//evil.example", url.Values{"email": {"ada@example.com"}, "password": {"correct horse"}})
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestSignupValidationRerendersForm(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}
	rec := c.form(http.MethodPost, "/signup", url.Values{
		"name": {"Ada"}, "email": {"ada@example.com"}, "password": {"correct horse"}, "confirmPassword": {"different"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "Passwords don&#39;t match")
	require.Nil(t, c.cookie)
}

func TestTableViewsAreIndependent(t *testing.T) {
	c := signedIn(t)

	rec := c.form(http.MethodPost, "/inventory/table/inventory", url.Values{
		"op": {"filter"}, "column": {"status"}, "values": {"low-stock"}, "return": {"/inventory"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/inventory", rec.Header().Get("Location"))

	inv := c.table(ViewInventory)
	require.Equal(t, 10, inv.TotalCount)
	require.Equal(t, 3, inv.FilteredCount)
	for _, h := range inv.Headers {
		if h.ID == "status" {
			require.Equal(t, "one of low-stock", h.Filter)
		}
	}

	dash := c.table(ViewDashboard)
	require.Equal(t, 10, dash.FilteredCount)

	rec = c.do(http.MethodGet, "/inventory", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "INV003")
	require.NotContains(t, rec.Body.String(), "INV001")

	rec = c.form(http.MethodPost, "/inventory/table/elsewhere", url.Values{"op": {"reset"}})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJSONTableOps(t *testing.T) {
	c := signedIn(t)

	rec := c.json(http.MethodPost, "/api/v1/tables/inventory", TableOp{Op: OpPageSize, Size: 5})
	require.Equal(t, http.StatusOK, rec.Code)
	var p projectionJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.Equal(t, 5, p.PageSize)
	require.Equal(t, 2, p.PageCount)

	rec = c.json(http.MethodPost, "/api/v1/tables/inventory", TableOp{Op: OpPageSize, Size: 7})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.json(http.MethodPost, "/api/v1/tables/inventory", TableOp{Op: OpSort, Keys: []string{"price:desc"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.Equal(t, []string{"price:desc"}, p.Sorting)
	require.Equal(t, "INV002", p.Rows[0].Item.SKU)

	c.json(http.MethodPost, "/api/v1/tables/inventory", TableOp{Op: OpPage, Nav: "last"})
	p = c.table(ViewInventory)
	require.Equal(t, 1, p.PageIndex)
	require.False(t, p.CanNextPage)

	c.json(http.MethodPost, "/api/v1/tables/inventory", TableOp{Op: OpVisibility, Column: "price", Visible: false})
	p = c.table(ViewInventory)
	require.NotContains(t, p.Rows[0].Cells, "price")
	require.Contains(t, p.Rows[0].Cells, "quantity")
	require.Equal(t, 1, p.PageIndex, "visibility keeps the page")

	rec = c.do(http.MethodPost, "/api/v1/tables/inventory", "application/json", []byte(`{"op":`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = c.form(http.MethodPost, "/api/v1/tables/inventory", url.Values{"op": {"reset"}})
	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	require.Equal(t, 1, c.table(ViewInventory).PageIndex)
}

func TestSelectAndDelete(t *testing.T) {
	c := signedIn(t)

	rec := c.json(http.MethodPost, "/api/v1/tables/inventory", TableOp{Op: OpSelectPage, Selected: true})
	require.Equal(t, http.StatusOK, rec.Code)
	p := c.table(ViewInventory)
	require.Equal(t, 10, p.SelectedCount)
	require.Equal(t, "all", p.SelectAll)

	target := p.Rows[0].ID
	c.json(http.MethodPost, "/api/v1/tables/inventory", TableOp{Op: OpReset, What: "selection"})
	c.form(http.MethodPost, "/inventory/table/inventory", url.Values{"op": {"select"}, "row": {target}, "selected": {"true"}})
	p = c.table(ViewInventory)
	require.Equal(t, 1, p.SelectedCount)
	require.Equal(t, "some", p.SelectAll)

	rec = c.form(http.MethodPost, "/inventory/delete-selected", url.Values{"view": {"inventory"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	p = c.table(ViewInventory)
	require.Equal(t, 9, p.TotalCount)
	require.Zero(t, p.SelectedCount)
	require.Equal(t, 9, c.table(ViewDashboard).TotalCount)
}

func TestCreateItemAndUpdateStock(t *testing.T) {
	c := signedIn(t)

	rec := c.form(http.MethodPost, "/inventory", url.Values{"title": {"X"}, "status": {"active"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "Product title must be at least 2 characters.")

	rec = c.form(http.MethodPost, "/inventory", url.Values{
		"title": {"Desk Mat"}, "sku": {"MAT-1"}, "price": {"19.99"}, "quantity": {"40"},
		"category": {"Home Ofice"}, "status": {"active"}, "tags": {"desk, felt"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	c.json(http.MethodPost, "/api/v1/tables/inventory", TableOp{Op: OpFilter, Column: "id", Value: "mat"})
	p := c.table(ViewInventory)
	require.Equal(t, 1, p.FilteredCount)
	item := p.Rows[0].Item
	require.Equal(t, "Home Office", item.Category)
	require.Equal(t, []string{"desk", "felt"}, item.Tags)

	rec = c.form(http.MethodPost, "/inventory/"+item.ID+"/stock", url.Values{"quantity": {"0"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	p = c.table(ViewInventory)
	require.Equal(t, "out-of-stock", p.Rows[0].Cells["status"])

	rec = c.form(http.MethodPost, "/inventory/missing/stock", url.Values{"quantity": {"1"}})
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = c.form(http.MethodPost, "/inventory/"+item.ID+"/stock", url.Values{"quantity": {"lots"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIUser(t *testing.T) {
	c := signedIn(t)

	rec := c.do(http.MethodGet, "/api/v1/user", "", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.JSONEq(t, `{"ok":false,"error":"Method not supported: GET"}`, rec.Body.String())

	rec = c.form(http.MethodPut, "/api/v1/user", url.Values{"name": {""}, "email": {"bad"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.form(http.MethodPut, "/api/v1/user", url.Values{"name": {"Ada L."}, "email": {"ada@lovelace.dev"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = c.json(http.MethodPut, "/api/v1/user", service.AccountInput{Name: "Ada", Email: "ada@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIDashboard(t *testing.T) {
	c := signedIn(t)

	rec := c.do(http.MethodGet, "/api/v1/dashboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sum service.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	require.Equal(t, 10, sum.TotalItems)
	require.Equal(t, 174, sum.TotalUnits)
	require.Equal(t, int64(1261258), sum.StockValueCents)
	require.Equal(t, 3, sum.LowStock)
	require.Equal(t, 2, sum.OutOfStock)
}

func TestExportXLSX(t *testing.T) {
	c := signedIn(t)
	c.json(http.MethodPost, "/api/v1/tables/inventory", TableOp{Op: OpFilter, Column: "category", Values: []string{"Stationery"}})

	rec := c.do(http.MethodGet, "/inventory/export.xlsx?view=inventory", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment;"))
	require.Equal(t, xlsxMIME, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Inventory")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "INV004", rows[1][0])
	require.Equal(t, "INV010", rows[2][0])
}
