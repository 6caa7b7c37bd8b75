package main

import (
	kingpin "github.com/alecthomas/kingpin/v2"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gexx/gexx/internal/service"
	"github.com/gexx/gexx/internal/tui"
)

var (
	tuiCommand = app.Command("tui", "Browse a team's inventory in the terminal.")
	tuiEmail   = tuiCommand.Flag("email", "Account to open.").Required().String()
)

func doTUI() {
	e := openEnv()
	defer e.Close()

	acct := e.accountFor(*tuiEmail)
	p := tea.NewProgram(tui.New(e.ctx, e.cfg, acct, tui.Services{
		Inventory: e.inventory,
		Ingest:    e.ingest,
		Export:    service.ExportService{},
	}, e.log), tea.WithAltScreen(), tea.WithContext(e.ctx))
	_, err := p.Run()
	kingpin.FatalIfError(err, "tui")
}

func init() {
	commandHandlers = append(commandHandlers, func(command string) bool {
		switch command {
		case tuiCommand.FullCommand():
			doTUI()
		default:
			return false
		}
		return true
	})
}
