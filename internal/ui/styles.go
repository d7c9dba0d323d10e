package ui

import "github.com/charmbracelet/lipgloss"

// Colors adapt to the terminal background; SetTheme forces one side.
var (
	colorPrimary   = lipgloss.AdaptiveColor{Light: "55", Dark: "62"}   // Purple
	colorSecondary = lipgloss.AdaptiveColor{Light: "245", Dark: "241"} // Gray
	colorMuted     = lipgloss.AdaptiveColor{Light: "250", Dark: "240"} // Darker gray
	colorHighlight = lipgloss.AdaptiveColor{Light: "162", Dark: "212"} // Pink
	colorSuccess   = lipgloss.AdaptiveColor{Light: "28", Dark: "78"}   // Green
	colorText      = lipgloss.AdaptiveColor{Light: "235", Dark: "255"}
	colorBar       = lipgloss.AdaptiveColor{Light: "254", Dark: "236"}
)

// SetTheme picks the light or dark palette.
func SetTheme(name string) {
	lipgloss.SetHasDarkBackground(name != "light")
}

// TabActive style for the current screen tab.
var TabActive = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// TabInactive style for other screen tabs.
var TabInactive = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// UserBadge shows who is signed in.
var UserBadge = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Background(colorBar).
	Padding(0, 1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(colorText).
	Background(colorBar).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)

// NoticeStyle for action results.
var NoticeStyle = lipgloss.NewStyle().
	Foreground(colorSuccess).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(0, 1)

// FilterBarPrompt style for the "/" prompt.
var FilterBarPrompt = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// FilterBarText style for the filter input text.
var FilterBarText = lipgloss.NewStyle().
	Foreground(colorText)

// ConfirmStyle for the delete confirmation overlay.
var ConfirmStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("196")).
	Padding(0, 2)

// SelectedMark is the marker rendered next to selected rows.
var SelectedMark = lipgloss.NewStyle().
	Foreground(colorSuccess).
	Bold(true)

// ActivityPane frames the recent-activity log under the tab bar.
var ActivityPane = lipgloss.NewStyle().
	Foreground(colorSecondary).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(colorMuted).
	Padding(0, 1)
