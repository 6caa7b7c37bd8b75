package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha, the subset the app uses.
const (
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"
	colorPink     lipgloss.Color = "#f5c2e7"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
)

const (
	colorAccent  = colorPink
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorOverlay0)
	labelStyle    = lipgloss.NewStyle().Foreground(colorSubtext0)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	focusHeader   = lipgloss.NewStyle().Bold(true).Foreground(colorFocus).Underline(true)
	cursorRow     = lipgloss.NewStyle().Background(colorSurface0)
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface1).Padding(0, 1)
	sidebarStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, true, false, false).BorderForeground(colorSurface1).Padding(0, 1).Width(18)
	navActive     = lipgloss.NewStyle().Bold(true).Foreground(colorFocus)
	navInactive   = lipgloss.NewStyle().Foreground(colorSubtext0)
	modalStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFocus).Padding(0, 1)
	badgeInStock  = lipgloss.NewStyle().Foreground(colorSuccess)
	badgeLowStock = lipgloss.NewStyle().Foreground(colorWarning)
	badgeOutStock = lipgloss.NewStyle().Foreground(colorError)
	selectedMark  = lipgloss.NewStyle().Foreground(colorBlue)
	barStyle      = lipgloss.NewStyle().Foreground(colorPeach)
)
