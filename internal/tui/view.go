package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/gexx/gexx/internal/datatable"
	"github.com/gexx/gexx/internal/service"
)

func (a *App) View() string {
	var body string
	switch a.view {
	case viewInventory:
		body = a.renderInventory()
	default:
		body = a.renderDashboard()
	}
	switch {
	case a.prompt != nil:
		body += "\n\n" + a.renderPrompt()
	case a.confirm == confirmDelete:
		n := 0
		if e := a.table(); e != nil {
			n = e.Projection().SelectedCount
		}
		body += "\n\n" + modalStyle.Render(titleStyle.Render("Delete selected?")+
			fmt.Sprintf("\n%d items will be removed.\n[y] Yes  [n] No", n))
	}
	if a.status != "" {
		st := labelStyle
		if strings.HasPrefix(a.status, "error:") {
			st = errorStyle
		}
		body += "\n" + st.Render(a.status)
	}
	body += "\n" + a.help.ShortHelpView(a.keys.HelpBindings(a.scope()))
	return lipgloss.JoinHorizontal(lipgloss.Top, a.renderSidebar(), " ", body)
}

func (a *App) renderSidebar() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("gexx"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(a.account.Team.TeamName))
	b.WriteString("\n\n")
	labels := map[viewName]string{viewDashboard: "Dashboard", viewInventory: "Inventory"}
	for i, v := range viewOrder {
		line := fmt.Sprintf("%d %s", i+1, labels[v])
		if v == a.view {
			b.WriteString(navActive.Render("▶ " + line))
		} else {
			b.WriteString(navInactive.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return sidebarStyle.Render(b.String())
}

func (a *App) renderDashboard() string {
	if !a.loaded {
		return titleStyle.Render("Dashboard") + "\nloading..."
	}
	s := a.summary
	card := func(label, value string) string {
		return cardStyle.Render(labelStyle.Render(label) + "\n" + value)
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Items", humanize.Comma(int64(s.TotalItems))),
		card("Units", humanize.Comma(int64(s.TotalUnits))),
		card("Stock value", formatMoney(float64(s.StockValueCents)/100, a.currency)),
		card("Low stock", badgeLowStock.Render(fmt.Sprint(s.LowStock))),
		card("Out of stock", badgeOutStock.Render(fmt.Sprint(s.OutOfStock))),
	)

	var chart strings.Builder
	top := 0
	for _, c := range s.Categories {
		top = max(top, c.Units)
	}
	for _, c := range s.Categories {
		width := 0
		if top > 0 {
			width = c.Units * 24 / top
		}
		fmt.Fprintf(&chart, "%-24s %s %d\n", c.Category, barStyle.Render(strings.Repeat("█", width)), c.Units)
	}

	return strings.Join([]string{
		titleStyle.Render("Dashboard"),
		cards,
		labelStyle.Render("Units by category"),
		strings.TrimRight(chart.String(), "\n"),
		"",
		a.renderTable(),
	}, "\n")
}

func (a *App) renderInventory() string {
	if !a.loaded {
		return titleStyle.Render("Inventory") + "\nloading..."
	}
	return titleStyle.Render("Inventory") + "\n" + a.renderTable()
}

// renderTable lays out the current view's grid. The actions column is a
// web affordance and is skipped.
func (a *App) renderTable() string {
	e := a.table()
	if e == nil {
		return ""
	}
	p := e.Projection()
	g := datatable.Render(p, e.Columns(), renderers(p, a.currency), textCell{})

	var keep []int
	for i, h := range g.Columns {
		if h.ColumnID != "actions" {
			keep = append(keep, i)
		}
	}
	widths := make([]int, len(g.Columns))
	for _, i := range keep {
		widths[i] = lipgloss.Width(g.Headers[i])
		for _, cells := range g.Cells {
			widths[i] = max(widths[i], lipgloss.Width(cells[i]))
		}
	}
	line := func(cells []string, style func(i int, s string) string) string {
		parts := make([]string, 0, len(keep))
		for _, i := range keep {
			parts = append(parts, style(i, pad(cells[i], widths[i], g.Columns[i].IsNumeric)))
		}
		return strings.Join(parts, "  ")
	}

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(line(g.Headers, func(i int, s string) string {
		if i == a.column {
			return focusHeader.Render(s)
		}
		return headerStyle.Render(s)
	}))
	b.WriteString("\n")
	if len(g.Cells) == 0 {
		b.WriteString(mutedStyle.Render("  No results."))
		b.WriteString("\n")
	}
	for r, cells := range g.Cells {
		text := line(cells, func(_ int, s string) string { return s })
		if r == a.cursor {
			b.WriteString(cursorRow.Render("▶ " + text))
		} else {
			b.WriteString("  " + text)
		}
		b.WriteString("\n")
	}

	pages := max(p.PageCount, 1)
	fmt.Fprintf(&b, "%s\n", mutedStyle.Render(fmt.Sprintf(
		"Page %d of %d · %d of %d items · %d selected · %d per page",
		p.PageIndex+1, pages, p.FilteredCount, p.TotalCount, p.SelectedCount, p.PageSize)))
	if a.column >= 0 && a.column < len(g.Columns) && g.Filters[a.column] != "" {
		b.WriteString(labelStyle.Render(g.Columns[a.column].Title+": ") + g.Filters[a.column])
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *App) renderPrompt() string {
	p := a.prompt
	return modalStyle.Render(titleStyle.Render(p.title) + "\n" + mutedStyle.Render(p.hint) + "\n" + p.input.View())
}

func pad(s string, width int, right bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

var _ datatable.Renderable[service.InventoryRow] = textCell{}
