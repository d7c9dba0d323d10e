package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/stockroom/internal/journal"
	"github.com/abelbrown/stockroom/internal/session"
)

// headerHeight is the tab bar plus its trailing newline.
const headerHeight = 2

// activityRows is how many journal events the activity pane shows.
const activityRows = 6

// screenActivated starts a screen's first fetch from inside Update.
type screenActivated struct {
	index int
}

// App is the root Bubble Tea model. It owns one Screen per resource the
// signed-in role may view and routes messages to them.
type App struct {
	profile session.Profile
	screens []Screen
	started []bool
	active  int
	keys    keyMap

	activity     *journal.Ring
	showActivity bool

	width  int
	height int
	ready  bool
}

// NewApp creates an App showing screens in order.
func NewApp(profile session.Profile, screens ...Screen) App {
	return App{
		profile: profile,
		screens: screens,
		started: make([]bool, len(screens)),
		keys:    defaultKeys(),
	}
}

// WithActivity lets the L key toggle a pane of recent journal events.
func (a App) WithActivity(r *journal.Ring) App {
	a.activity = r
	return a
}

// Init starts the first screen.
func (a App) Init() tea.Cmd {
	if len(a.screens) == 0 {
		return nil
	}
	return func() tea.Msg { return screenActivated{index: 0} }
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		cmd := a.resize()
		return a, cmd

	case screenActivated:
		return a.activate(msg.index)

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case addressed:
		i := a.index(msg.screen())
		if i < 0 {
			return a, nil
		}
		return a.forward(i, msg)
	}

	// Spinner ticks, cursor blinks.
	cmd := a.broadcast(msg)
	return a, cmd
}

func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}
	if len(a.screens) == 0 {
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}
		return a, nil
	}

	if !a.screens[a.active].Capturing() {
		n := len(a.screens)
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.NextScreen):
			return a.activate((a.active + 1) % n)
		case key.Matches(msg, a.keys.PrevScreen):
			return a.activate((a.active - 1 + n) % n)
		case key.Matches(msg, a.keys.Activity) && a.activity != nil:
			a.showActivity = !a.showActivity
			cmd := a.resize()
			return a, cmd
		}
	}
	return a.forward(a.active, msg)
}

// activate shows screen i, starting it on first view.
func (a App) activate(i int) (App, tea.Cmd) {
	if i < 0 || i >= len(a.screens) {
		return a, nil
	}
	a.active = i
	if a.started[i] {
		return a, nil
	}
	a.started = slices.Clone(a.started)
	a.started[i] = true
	a.screens = slices.Clone(a.screens)
	var cmd tea.Cmd
	a.screens[i], cmd = a.screens[i].Start()
	return a, cmd
}

func (a App) forward(i int, msg tea.Msg) (App, tea.Cmd) {
	a.screens = slices.Clone(a.screens)
	var cmd tea.Cmd
	a.screens[i], cmd = a.screens[i].Update(msg)
	return a, cmd
}

// resize tells every screen how much room is left under the header and the
// activity pane.
func (a *App) resize() tea.Cmd {
	if !a.ready {
		return nil
	}
	h := a.height - headerHeight
	if a.showActivity {
		h -= activityRows + 1
	}
	return a.broadcast(tea.WindowSizeMsg{Width: a.width, Height: max(h, 1)})
}

func (a *App) broadcast(msg tea.Msg) tea.Cmd {
	a.screens = slices.Clone(a.screens)
	cmds := make([]tea.Cmd, 0, len(a.screens))
	for i := range a.screens {
		var cmd tea.Cmd
		a.screens[i], cmd = a.screens[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (a App) index(name string) int {
	return slices.IndexFunc(a.screens, func(s Screen) bool { return s.Name() == name })
}

// View renders the tab bar and the active screen.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if len(a.screens) == 0 {
		return HelpStyle.Render("There is nothing your role can view. Press q to quit.")
	}
	out := a.header() + "\n"
	if a.showActivity {
		out += a.activityPane() + "\n"
	}
	return out + a.screens[a.active].View()
}

// activityPane renders the last activityRows events, padded so the pane
// keeps its height.
func (a App) activityPane() string {
	events := a.activity.Last(activityRows)
	lines := make([]string, activityRows)
	if len(events) == 0 {
		lines[0] = "no activity yet"
	}
	for i, e := range events {
		line := journal.Format(e)
		if a.width > 4 {
			line = runewidth.Truncate(line, a.width-4, "…")
		}
		lines[i] = line
	}
	return ActivityPane.Width(max(a.width, 1)).Render(strings.Join(lines, "\n"))
}

func (a App) header() string {
	tabs := make([]string, len(a.screens))
	for i, s := range a.screens {
		if i == a.active {
			tabs[i] = TabActive.Render(s.Title())
		} else {
			tabs[i] = TabInactive.Render(s.Title())
		}
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	who := a.profile.Name
	if who == "" {
		who = a.profile.Email
	}
	right := UserBadge.Render(who + " · " + a.profile.Role.String())

	padding := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", padding) + right
}

// Active returns the name of the screen being shown (for testing).
func (a App) Active() string {
	if len(a.screens) == 0 {
		return ""
	}
	return a.screens[a.active].Name()
}

// Screen returns the named screen (for testing).
func (a App) Screen(name string) Screen {
	if i := a.index(name); i >= 0 {
		return a.screens[i]
	}
	return nil
}
