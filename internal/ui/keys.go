package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextScreen key.Binding
	PrevScreen key.Binding
	Quit       key.Binding
	Activity   key.Binding

	Up         key.Binding
	Down       key.Binding
	Filter     key.Binding
	Sort       key.Binding
	SortDir    key.Binding
	Toggle     key.Binding
	ToggleAll  key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	PageBigger key.Binding
	PageSmall  key.Binding
	Export     key.Binding
	Delete     key.Binding
	Refresh    key.Binding

	Accept key.Binding
	Cancel key.Binding
	Yes    key.Binding
	No     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		NextScreen: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next screen")),
		PrevScreen: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev screen")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Activity:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "activity")),

		Up:         key.NewBinding(key.WithKeys("up", "k")),
		Down:       key.NewBinding(key.WithKeys("down", "j")),
		Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		SortDir:    key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "flip sort")),
		Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		ToggleAll:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		NextPage:   key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next page")),
		PrevPage:   key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "prev page")),
		PageBigger: key.NewBinding(key.WithKeys("+"), key.WithHelp("+/-", "page size")),
		PageSmall:  key.NewBinding(key.WithKeys("-")),
		Export:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),

		Accept: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Yes:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
		No:     key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Filter, k.Sort, k.Toggle, k.ToggleAll, k.NextPage, k.Export, k.Delete, k.NextScreen, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Filter, k.Sort, k.SortDir, k.Refresh},
		{k.Toggle, k.ToggleAll, k.Export, k.Delete},
		{k.NextPage, k.PrevPage, k.PageBigger},
		{k.NextScreen, k.PrevScreen, k.Activity, k.Quit},
	}
}
