package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gexx/gexx/internal/config"
	"github.com/gexx/gexx/internal/database"
	"github.com/gexx/gexx/internal/database/repository"
	"github.com/gexx/gexx/internal/datatable"
	"github.com/gexx/gexx/internal/logging"
	"github.com/gexx/gexx/internal/service"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logging.Discard()
	auth := &service.AuthService{
		DB: db, Users: repository.NewUserRepo(db), Teams: repository.NewTeamRepo(db), SeedSample: true, Log: log,
	}
	acct, err := auth.Signup(context.Background(), service.SignupInput{
		Name: "Ada", Email: "ada@example.com", Password: "correct horse", ConfirmPassword: "correct horse",
	})
	require.NoError(t, err)

	inv := &service.InventoryService{DB: db, Items: repository.NewItemRepo(db), LowStockThreshold: 15, Log: log}
	var cfg config.Config
	cfg.Table.PageSize = 10
	cfg.Table.PageSizes = []int{5, 10, 20}
	cfg.Inventory.Currency = "USD"

	a := New(context.Background(), cfg, acct, Services{
		Inventory: inv,
		Ingest:    &service.IngestService{Inventory: inv},
	}, log)
	drain(t, a, a.Init())
	return a
}

// drain feeds cmd results back into the app until nothing is left.
func drain(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil && i < 10; i++ {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = a.Update(msg)
	}
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func press(a *App, keys ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = a.Update(k)
	}
	return cmd
}

func focusColumn(a *App, n int) {
	for i := 0; i < 10; i++ {
		press(a, runes("h"))
	}
	for i := 0; i < n; i++ {
		press(a, runes("l"))
	}
}

func pageSKUs(a *App) []string {
	var out []string
	for _, r := range a.table().Projection().Rows {
		out = append(out, r.Original.SKU)
	}
	return out
}

func TestDashboardView(t *testing.T) {
	a := newTestApp(t)
	require.Len(t, a.tables, 2)

	out := a.View()
	require.Contains(t, out, "Dashboard")
	require.Contains(t, out, "Ada's team")
	require.Contains(t, out, "$12,612.58")
	require.Contains(t, out, "Units by category")
	require.Contains(t, out, "Electronics")
	require.Contains(t, out, "INV001")
	require.Contains(t, out, "Page 1 of 1 · 10 of 10 items · 0 selected · 10 per page")
}

func TestSwitchViewsKeepsStateApart(t *testing.T) {
	a := newTestApp(t)

	press(a, runes("2"))
	require.Equal(t, viewInventory, a.view)
	focusColumn(a, 6)
	press(a, runes("s"))
	require.Equal(t, "INV010", pageSKUs(a)[0])
	press(a, runes("s"))
	require.Equal(t, "INV002", pageSKUs(a)[0])

	press(a, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, viewDashboard, a.view)
	require.Empty(t, a.table().Projection().State.Sorting)
	require.Equal(t, "INV001", pageSKUs(a)[0])

	press(a, runes("1"), runes("2"))
	require.Equal(t, "INV002", pageSKUs(a)[0])
	press(a, runes("S"))
	require.Equal(t, "INV001", pageSKUs(a)[0])
}

func TestFilterPrompt(t *testing.T) {
	a := newTestApp(t)
	press(a, runes("2"))

	focusColumn(a, 3)
	press(a, runes("f"))
	require.NotNil(t, a.prompt)
	require.Equal(t, "Filter Status", a.prompt.title)
	require.Contains(t, a.prompt.hint, "low-stock (3)")

	press(a, runes("low-stock"))
	press(a, tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, a.prompt)
	require.Equal(t, 3, a.table().Projection().FilteredCount)
	require.Equal(t, 10, a.tables[viewDashboard].Projection().FilteredCount)

	focusColumn(a, 6)
	press(a, runes("f"), runes("50.."), tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, []string{"INV006"}, pageSKUs(a))

	press(a, runes("F"))
	require.Equal(t, 10, a.table().Projection().FilteredCount)

	press(a, runes("f"), runes("50.."), tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, 4, a.table().Projection().FilteredCount)

	press(a, runes("f"))
	require.Equal(t, "50..", a.prompt.input.Value())
	press(a, runes("x"), tea.KeyMsg{Type: tea.KeyEnter})
	require.Contains(t, a.status, "error:")
	require.Equal(t, 4, a.table().Projection().FilteredCount)
}

func TestPromptSwallowsGlobalKeys(t *testing.T) {
	a := newTestApp(t)
	press(a, runes("2"), runes("l"), runes("f"))
	require.NotNil(t, a.prompt)

	press(a, runes("q"), runes("2"))
	require.NotNil(t, a.prompt)
	require.Equal(t, "q2", a.prompt.input.Value())

	press(a, tea.KeyMsg{Type: tea.KeyEsc})
	require.Nil(t, a.prompt)
	require.Equal(t, 10, a.table().Projection().FilteredCount)

	cmd := press(a, runes("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestColumnsCannotBeMisused(t *testing.T) {
	a := newTestApp(t)
	press(a, runes("2"))

	focusColumn(a, 0)
	press(a, runes("s"))
	require.Equal(t, "column cannot be sorted", a.status)
	press(a, runes("f"))
	require.Nil(t, a.prompt)

	focusColumn(a, 1)
	press(a, runes("x"))
	require.Equal(t, "column cannot be hidden", a.status)

	focusColumn(a, 2)
	press(a, runes("x"))
	require.False(t, a.table().Projection().State.IsVisible("name"))
	require.NotContains(t, a.View(), "Wireless Headphones")
	press(a, runes("X"))
	require.True(t, a.table().Projection().State.IsVisible("name"))
}

func TestSelectionAndDelete(t *testing.T) {
	a := newTestApp(t)
	press(a, runes("2"))

	press(a, runes("D"))
	require.Equal(t, "nothing selected", a.status)

	press(a, tea.KeyMsg{Type: tea.KeySpace})
	require.Equal(t, 1, a.table().Projection().SelectedCount)
	press(a, runes("a"))
	require.Equal(t, 10, a.table().Projection().SelectedCount)
	press(a, runes("a"))
	require.Zero(t, a.table().Projection().SelectedCount)

	press(a, runes("j"), tea.KeyMsg{Type: tea.KeySpace}, runes("D"))
	require.Equal(t, confirmDelete, a.confirm)
	require.Contains(t, a.View(), "1 items will be removed.")

	press(a, runes("n"))
	require.Equal(t, confirmNone, a.confirm)
	require.Equal(t, 1, a.table().Projection().SelectedCount)

	press(a, runes("D"))
	drain(t, a, press(a, runes("y")))
	p := a.table().Projection()
	require.Equal(t, 9, p.TotalCount)
	require.Zero(t, p.SelectedCount)
	require.NotContains(t, pageSKUs(a), "INV002")
	require.Equal(t, "deleted 1 items", a.status)
	require.Equal(t, 9, a.summary.TotalItems)
}

func TestPaging(t *testing.T) {
	a := newTestApp(t)
	press(a, runes("2"))

	press(a, runes("-"))
	p := a.table().Projection()
	require.Equal(t, 5, p.PageSize)
	require.Equal(t, 2, p.PageCount)

	press(a, runes("G"), runes("j"), runes("j"), runes("j"), runes("j"), runes("j"), runes("j"))
	require.Equal(t, 1, a.table().Projection().PageIndex)
	require.Equal(t, 4, a.cursor)

	press(a, runes("p"))
	require.Zero(t, a.table().Projection().PageIndex)
	press(a, runes("n"), runes("g"))
	require.Zero(t, a.table().Projection().PageIndex)

	press(a, runes("+"), runes("+"), runes("+"))
	require.Equal(t, 20, a.table().Projection().PageSize)
}

func TestEditStock(t *testing.T) {
	a := newTestApp(t)
	press(a, runes("2"), runes("e"))
	require.NotNil(t, a.prompt)
	require.Equal(t, "45", a.prompt.input.Value())

	press(a, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace}, runes("0"))
	drain(t, a, press(a, tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, "stock updated", a.status)
	row := a.table().Projection().Rows[0].Original
	require.Equal(t, "INV001", row.SKU)
	require.Equal(t, service.OutOfStock, row.Stock)
	require.Equal(t, 3, a.summary.OutOfStock)

	press(a, runes("e"), runes("x"))
	drain(t, a, press(a, tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, "error: Quantity must be a positive integer.", a.status)
}

func TestImportAndExport(t *testing.T) {
	a := newTestApp(t)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "items.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"sku,title,category,quantity,price\nINV001,Dup,Electronics,1,1.00\nNEW-1,Label Maker,Home Office,7,24.50\n"), 0o600))

	press(a, runes("2"), runes("i"))
	a.prompt.input.SetValue(csvPath)
	drain(t, a, press(a, tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, "items.csv: imported 1, skipped 1", a.status)
	require.Equal(t, 11, a.table().Projection().TotalCount)

	focusColumn(a, 4)
	press(a, runes("f"), runes("Home Office"), tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, 4, a.table().Projection().FilteredCount)

	out := filepath.Join(dir, "out.xlsx")
	press(a, runes("E"))
	require.Equal(t, "inventory.xlsx", a.prompt.input.Value())
	a.prompt.input.SetValue(out)
	drain(t, a, press(a, tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, "exported 4 rows to "+out, a.status)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Inventory")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	require.Equal(t, "INV003", rows[1][0])
	require.Equal(t, "NEW-1", rows[4][0])
}

func TestParseRange(t *testing.T) {
	f, err := parseRange("10..50")
	require.NoError(t, err)
	require.Equal(t, 10.0, *f.Min)
	require.Equal(t, 50.0, *f.Max)
	require.Equal(t, "10..50", formatRange(f))

	f, err = parseRange("..5")
	require.NoError(t, err)
	require.Nil(t, f.Min)
	require.Equal(t, "..5", formatRange(f))

	f, err = parseRange(" 7 ")
	require.NoError(t, err)
	require.Equal(t, 7.0, *f.Min)
	require.Equal(t, 7.0, *f.Max)

	f, err = parseRange("")
	require.NoError(t, err)
	require.True(t, f.Empty())

	_, err = parseRange("cheap..")
	require.Error(t, err)
	_, err = parseRange("NaN")
	require.ErrorIs(t, err, datatable.ErrInvalidBound)
}

func TestNextPageSize(t *testing.T) {
	a := &App{pageSizes: []int{20, 10, 50}}
	require.Equal(t, 20, a.nextPageSize(10, true))
	require.Equal(t, 50, a.nextPageSize(50, true))
	require.Equal(t, 10, a.nextPageSize(20, false))
	require.Equal(t, 10, a.nextPageSize(10, false))
	require.Equal(t, 10, a.nextPageSize(15, false))

	a.pageSizes = nil
	require.Equal(t, 20, a.nextPageSize(10, true))
	require.Equal(t, 1, a.nextPageSize(1, false))
}
