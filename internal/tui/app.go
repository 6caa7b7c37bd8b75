// Package tui is the terminal front end: a dashboard and an inventory table
// driven by the same table engine as the web views.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/gexx/gexx/internal/config"
	"github.com/gexx/gexx/internal/datatable"
	"github.com/gexx/gexx/internal/service"
)

// App is the bubbletea model.
type App struct {
	ctx      context.Context
	services Services
	account  service.Account
	log      logrus.FieldLogger
	keys     *KeyRegistry
	help     help.Model

	pageSize  int
	pageSizes []int
	currency  string

	view    viewName
	tables  map[viewName]*datatable.Engine[service.InventoryRow]
	summary service.Summary
	loaded  bool

	cursor int // row on the current page
	column int // index into the visible headers

	prompt  *prompt
	confirm confirmState
	status  string

	width, height int
}

// Services are the operations the app drives.
type Services struct {
	Inventory *service.InventoryService
	Ingest    *service.IngestService
	Export    service.ExportService
}

type viewName string

const (
	viewDashboard viewName = "dashboard"
	viewInventory viewName = "inventory"
)

var viewOrder = []viewName{viewDashboard, viewInventory}

type promptKind int

const (
	promptFilter promptKind = iota + 1
	promptStock
	promptImport
	promptExport
)

type prompt struct {
	kind   promptKind
	title  string
	hint   string
	column string
	rowID  string
	input  textinput.Model
}

type confirmState string

const (
	confirmNone   confirmState = ""
	confirmDelete confirmState = "delete"
)

type (
	rowsMsg       []service.InventoryRow
	statusMsg     string
	changedMsg    string
	errMsg        struct{ error }
	ingestDoneMsg struct {
		Path   string
		Result service.IngestResult
	}
)

func New(ctx context.Context, cfg config.Config, acct service.Account, services Services, log logrus.FieldLogger) *App {
	if log == nil {
		log = logrus.StandardLogger()
	}
	pageSize := cfg.Table.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	return &App{
		ctx:       ctx,
		services:  services,
		account:   acct,
		log:       log,
		keys:      NewKeyRegistry(),
		help:      help.New(),
		pageSize:  pageSize,
		pageSizes: cfg.Table.PageSizes,
		currency:  cfg.Inventory.Currency,
		view:      viewDashboard,
		tables:    map[viewName]*datatable.Engine[service.InventoryRow]{},
	}
}

func (a *App) Init() tea.Cmd { return a.loadRows() }

func (a *App) loadRows() tea.Cmd {
	teamID := a.account.Team.TeamID
	return func() tea.Msg {
		rows, err := a.services.Inventory.List(a.ctx, teamID)
		if err != nil {
			return errMsg{err}
		}
		return rowsMsg(rows)
	}
}

func (a *App) table() *datatable.Engine[service.InventoryRow] { return a.tables[a.view] }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.help.Width = m.Width
	case tea.KeyMsg:
		return a.handleKey(m)
	case rowsMsg:
		if err := a.setRows(m); err != nil {
			a.status = "error: " + err.Error()
		}
	case statusMsg:
		a.status = string(m)
	case changedMsg:
		a.status = string(m)
		return a, a.loadRows()
	case errMsg:
		a.log.WithError(m.error).Warn("tui operation failed")
		a.status = "error: " + m.Error()
	case ingestDoneMsg:
		summary := fmt.Sprintf("%s: imported %d, skipped %d", filepath.Base(m.Path), m.Result.Imported, m.Result.Skipped)
		if len(m.Result.Errors) > 0 {
			summary += fmt.Sprintf(", %d errors (first: %v)", len(m.Result.Errors), m.Result.Errors[0])
		}
		a.status = summary
		return a, a.loadRows()
	}
	return a, nil
}

// setRows feeds fresh rows to every view, keeping each view's state.
func (a *App) setRows(rows []service.InventoryRow) error {
	a.summary = service.Summarize(rows)
	a.loaded = true
	for _, v := range viewOrder {
		if e, ok := a.tables[v]; ok {
			if err := e.SetRows(rows); err != nil {
				return err
			}
			continue
		}
		e, err := service.NewTable(rows, a.pageSize)
		if err != nil {
			return err
		}
		a.tables[v] = e
	}
	a.clamp()
	return nil
}

func (a *App) scope() string {
	switch {
	case a.prompt != nil:
		return scopePrompt
	case a.confirm != confirmNone:
		return scopeConfirm
	default:
		return scopeTable
	}
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.String()
	if a.prompt != nil {
		if k == "ctrl+c" {
			return a, tea.Quit
		}
		b := a.keys.lookupInScope(normalizeKeyName(k), scopePrompt)
		if b == nil {
			var cmd tea.Cmd
			a.prompt.input, cmd = a.prompt.input.Update(m)
			return a, cmd
		}
		if b.Action == actionCancel {
			a.prompt = nil
			return a, nil
		}
		p := a.prompt
		a.prompt = nil
		return a, a.submitPrompt(p)
	}

	b := a.keys.Lookup(k, a.scope())
	if b == nil {
		return a, nil
	}
	if a.confirm != confirmNone {
		switch b.Action {
		case actionConfirm:
			return a, a.runConfirm()
		case actionCancel:
			a.confirm = confirmNone
			a.status = ""
		case actionQuit:
			return a, tea.Quit
		}
		return a, nil
	}

	switch b.Action {
	case actionQuit:
		return a, tea.Quit
	case actionNextView:
		i := slices.Index(viewOrder, a.view)
		a.switchView(viewOrder[(i+1)%len(viewOrder)])
	case actionGoDashboard:
		a.switchView(viewDashboard)
	case actionGoInventory:
		a.switchView(viewInventory)
	case actionRefresh:
		a.status = "refreshing..."
		return a, a.loadRows()
	default:
		return a, a.tableAction(b.Action)
	}
	return a, nil
}

func (a *App) switchView(v viewName) {
	if a.view == v {
		return
	}
	a.view = v
	a.cursor, a.column = 0, 0
	a.status = ""
}

func (a *App) focused(p *datatable.Projection[service.InventoryRow]) (datatable.Header, bool) {
	hs := p.VisibleHeaders()
	if a.column < 0 || a.column >= len(hs) {
		return datatable.Header{}, false
	}
	return hs[a.column], true
}

func (a *App) currentRow(p *datatable.Projection[service.InventoryRow]) (datatable.RowView[service.InventoryRow], bool) {
	if a.cursor < 0 || a.cursor >= len(p.Rows) {
		return datatable.RowView[service.InventoryRow]{}, false
	}
	return p.Rows[a.cursor], true
}

func (a *App) tableAction(act Action) tea.Cmd {
	e := a.table()
	if e == nil {
		return nil
	}
	p := e.Projection()
	h, hasColumn := a.focused(p)
	defer a.clamp()

	switch act {
	case actionUp:
		if a.cursor > 0 {
			a.cursor--
		}
	case actionDown:
		a.cursor++
	case actionColumnLeft:
		if a.column > 0 {
			a.column--
		}
	case actionColumnRight:
		if hs := p.VisibleHeaders(); a.column+1 < len(hs) && hs[a.column+1].ColumnID != "actions" {
			a.column++
		}
	case actionSort:
		if !hasColumn || !h.CanSort {
			a.status = "column cannot be sorted"
			return nil
		}
		e.ToggleSort(h.ColumnID)
		a.cursor = 0
	case actionClearSort:
		e.ResetSorting()
	case actionFilter:
		if !hasColumn || !h.CanFilter {
			a.status = "column cannot be filtered"
			return nil
		}
		a.openFilterPrompt(p, h)
		return textinput.Blink
	case actionClearFilters:
		e.ResetColumnFilters()
		a.status = "filters cleared"
	case actionHideColumn:
		if !hasColumn || !h.CanHide {
			a.status = "column cannot be hidden"
			return nil
		}
		e.SetColumnVisibility(h.ColumnID, false)
	case actionShowColumns:
		for _, hh := range p.Headers {
			e.SetColumnVisibility(hh.ColumnID, true)
		}
	case actionToggleSelect:
		if r, ok := a.currentRow(p); ok {
			e.ToggleRowSelection(r.ID, !r.Selected)
		}
	case actionSelectPage:
		e.ToggleAllPageRowsSelected(p.SelectAllState() != datatable.SelectAllRows)
	case actionClearSelect:
		e.ResetRowSelection()
	case actionNextPage:
		e.NextPage()
	case actionPrevPage:
		e.PreviousPage()
	case actionFirstPage:
		e.FirstPage()
	case actionLastPage:
		e.LastPage()
	case actionPageSizeUp, actionPageSizeDown:
		e.SetPageSize(a.nextPageSize(p.PageSize, act == actionPageSizeUp))
	case actionEditStock:
		r, ok := a.currentRow(p)
		if !ok {
			return nil
		}
		a.openPrompt(promptStock, "Stock for "+r.Original.SKU, "whole units", strconv.Itoa(r.Original.Quantity))
		a.prompt.rowID = r.ID
		return textinput.Blink
	case actionDelete:
		if p.SelectedCount == 0 {
			a.status = "nothing selected"
			return nil
		}
		a.confirm = confirmDelete
	case actionImport:
		a.openPrompt(promptImport, "Import CSV", "path to a CSV with sku,title,category,quantity,price columns", "")
		return textinput.Blink
	case actionExport:
		a.openPrompt(promptExport, "Export XLSX", "exports every filtered row in the current order", "inventory.xlsx")
		return textinput.Blink
	}
	return nil
}

// nextPageSize steps through the configured sizes. Without a list it
// doubles or halves.
func (a *App) nextPageSize(cur int, up bool) int {
	sizes := a.pageSizes
	if len(sizes) == 0 {
		if up {
			return cur * 2
		}
		return max(1, cur/2)
	}
	sizes = slices.Clone(sizes)
	slices.Sort(sizes)
	if up {
		for _, s := range sizes {
			if s > cur {
				return s
			}
		}
		return sizes[len(sizes)-1]
	}
	for i := len(sizes) - 1; i >= 0; i-- {
		if sizes[i] < cur {
			return sizes[i]
		}
	}
	return sizes[0]
}

func (a *App) clamp() {
	e := a.table()
	if e == nil {
		a.cursor, a.column = 0, 0
		return
	}
	p := e.Projection()
	if a.cursor >= len(p.Rows) {
		a.cursor = len(p.Rows) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
	if n := len(p.VisibleHeaders()); a.column >= n {
		a.column = n - 1
	}
	if a.column < 0 {
		a.column = 0
	}
}

func (a *App) openPrompt(kind promptKind, title, hint, value string) {
	in := textinput.New()
	in.Prompt = "> "
	in.SetValue(value)
	in.CursorEnd()
	in.Focus()
	a.prompt = &prompt{kind: kind, title: title, hint: hint, input: in}
}

func (a *App) openFilterPrompt(p *datatable.Projection[service.InventoryRow], h datatable.Header) {
	var hint, value string
	switch h.FilterKind {
	case datatable.FilterText:
		hint = "text to search for; empty clears"
		if f, ok := h.Filter.(datatable.TextContains); ok {
			value = f.Needle
		}
	case datatable.FilterSet:
		var opts []string
		for _, f := range p.FacetList(h.ColumnID) {
			opts = append(opts, fmt.Sprintf("%s (%d)", f.Value.String(), f.Count))
		}
		hint = "comma separated values: " + strings.Join(opts, ", ")
		if f, ok := h.Filter.(datatable.SetMembership); ok {
			value = strings.Join(f.Values, ", ")
		}
	case datatable.FilterRange:
		hint = "min..max, either side may be empty"
		if f, ok := h.Filter.(datatable.NumericRange); ok {
			value = formatRange(f)
		}
	}
	a.openPrompt(promptFilter, "Filter "+h.Title, hint, value)
	a.prompt.column = h.ColumnID
}

func (a *App) submitPrompt(p *prompt) tea.Cmd {
	raw := strings.TrimSpace(p.input.Value())
	switch p.kind {
	case promptFilter:
		e := a.table()
		if e == nil {
			return nil
		}
		h, ok := e.Projection().Header(p.column)
		if !ok {
			return nil
		}
		if err := applyFilterInput(e, h, raw); err != nil {
			a.status = "error: " + err.Error()
			return nil
		}
		a.cursor = 0
		a.clamp()
	case promptStock:
		qty, err := strconv.Atoi(raw)
		if err != nil || qty < 0 {
			a.status = "error: Quantity must be a positive integer."
			return nil
		}
		return a.updateStockCmd(p.rowID, qty)
	case promptImport:
		if raw == "" {
			a.status = "enter a CSV path"
			return nil
		}
		return a.importCmd(raw)
	case promptExport:
		if raw == "" {
			a.status = "enter an output path"
			return nil
		}
		return a.exportCmd(raw)
	}
	return nil
}

func (a *App) runConfirm() tea.Cmd {
	state := a.confirm
	a.confirm = confirmNone
	if state != confirmDelete {
		return nil
	}
	e := a.table()
	if e == nil {
		return nil
	}
	var ids []string
	for _, r := range e.SelectedRows() {
		ids = append(ids, r.ID)
	}
	e.ResetRowSelection()
	return a.deleteCmd(ids)
}

// applyFilterInput sets the filter typed for column h. Blank input clears it.
func applyFilterInput(e *datatable.Engine[service.InventoryRow], h datatable.Header, raw string) error {
	switch h.FilterKind {
	case datatable.FilterText:
		e.SetColumnFilter(h.ColumnID, datatable.TextContains{Needle: raw})
	case datatable.FilterSet:
		var values []string
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		e.SetColumnFilter(h.ColumnID, datatable.OneOf(values...))
	case datatable.FilterRange:
		f, err := parseRange(raw)
		if err != nil {
			return err
		}
		e.SetColumnFilter(h.ColumnID, f)
	}
	return nil
}

// parseRange reads "min..max". Either bound may be empty; a single number
// matches exactly that value.
func parseRange(raw string) (datatable.NumericRange, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return datatable.NumericRange{}, nil
	}
	lo, hi, found := strings.Cut(raw, "..")
	if !found {
		hi = lo
	}
	var f datatable.NumericRange
	var err error
	if f.Min, err = datatable.ParseBound(lo); err != nil {
		return f, fmt.Errorf("min: %w", err)
	}
	if f.Max, err = datatable.ParseBound(hi); err != nil {
		return f, fmt.Errorf("max: %w", err)
	}
	return f, nil
}


func formatRange(f datatable.NumericRange) string {
	var lo, hi string
	if f.Min != nil {
		lo = strconv.FormatFloat(*f.Min, 'f', -1, 64)
	}
	if f.Max != nil {
		hi = strconv.FormatFloat(*f.Max, 'f', -1, 64)
	}
	return lo + ".." + hi
}

// commands

func (a *App) updateStockCmd(id string, qty int) tea.Cmd {
	teamID := a.account.Team.TeamID
	return func() tea.Msg {
		if err := a.services.Inventory.UpdateStock(a.ctx, teamID, id, qty); err != nil {
			return errMsg{err}
		}
		return changedMsg("stock updated")
	}
}

func (a *App) deleteCmd(ids []string) tea.Cmd {
	teamID := a.account.Team.TeamID
	return func() tea.Msg {
		n, err := a.services.Inventory.Delete(a.ctx, teamID, ids)
		if err != nil {
			return errMsg{err}
		}
		return changedMsg(fmt.Sprintf("deleted %d items", n))
	}
}

func (a *App) importCmd(path string) tea.Cmd {
	if a.services.Ingest == nil {
		return func() tea.Msg { return errMsg{fmt.Errorf("ingest service not configured")} }
	}
	teamID := a.account.Team.TeamID
	a.status = "importing..."
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return errMsg{fmt.Errorf("open %s: %w", path, err)}
		}
		defer f.Close()
		res, err := a.services.Ingest.ImportCSV(a.ctx, teamID, f)
		if err != nil {
			return errMsg{err}
		}
		return ingestDoneMsg{Path: path, Result: res}
	}
}

func (a *App) exportCmd(path string) tea.Cmd {
	e := a.table()
	if e == nil {
		return nil
	}
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return errMsg{fmt.Errorf("create %s: %w", path, err)}
		}
		n, err := a.services.Export.WriteXLSX(f, e)
		if err != nil {
			_ = f.Close()
			return errMsg{err}
		}
		if err := f.Close(); err != nil {
			return errMsg{err}
		}
		return statusMsg(fmt.Sprintf("exported %d rows to %s", n, path))
	}
}
