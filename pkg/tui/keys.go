package tui

import "github.com/charmbracelet/bubbles/key"

// wizardKeys are the bindings of the test-run wizard.
type wizardKeys struct {
	Up      key.Binding
	Down    key.Binding
	Cycle   key.Binding
	Back    key.Binding
	Pass    key.Binding
	Fail    key.Binding
	Blocked key.Binding
	Edit    key.Binding
	Detail  key.Binding
	Fold    key.Binding
	Next    key.Binding
	Prev    key.Binding
	Jump    key.Binding
	GoTo    key.Binding
	Submit  key.Binding
	Reset   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newWizardKeys() wizardKeys {
	return wizardKeys{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Cycle:   key.NewBinding(key.WithKeys("right", " ", "space"), key.WithHelp("→/space", "next status")),
		Back:    key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous status")),
		Pass:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pass")),
		Fail:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fail")),
		Blocked: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "blocked")),
		Edit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
		Detail:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "details")),
		Fold:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "fold section")),
		Next:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "next step")),
		Prev:    key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "prev step")),
		Jump: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "jump to step")),
		GoTo:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to step #")),
		Submit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
		Reset:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reset")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k wizardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Cycle, k.Edit, k.Next, k.Submit, k.Help, k.Quit}
}

func (k wizardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Fold, k.Detail},
		{k.Cycle, k.Back, k.Pass, k.Fail, k.Blocked, k.Edit},
		{k.Next, k.Prev, k.Jump, k.GoTo, k.Submit},
		{k.Reset, k.Help, k.Quit},
	}
}

// tourKeys drive the walkthrough overlay.
type tourKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Finish key.Binding
}

func newTourKeys() tourKeys {
	return tourKeys{
		Next:   key.NewBinding(key.WithKeys("right", "enter"), key.WithHelp("→", "continue")),
		Prev:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "back")),
		Finish: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "skip tour")),
	}
}

func (k tourKeys) ShortHelp() []key.Binding { return []key.Binding{k.Next, k.Prev, k.Finish} }

func (k tourKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

// analyzerKeys are the bindings of the results dashboard.
type analyzerKeys struct {
	Up     key.Binding
	Down   key.Binding
	Tab    key.Binding
	Prev   key.Binding
	Detail key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func newAnalyzerKeys() analyzerKeys {
	return analyzerKeys{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Tab:    key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next filter")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "prev filter")),
		Detail: key.NewBinding(key.WithKeys("enter", "d"), key.WithHelp("enter", "details")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k analyzerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Tab, k.Detail, k.Quit}
}

func (k analyzerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Detail}, {k.Tab, k.Prev}, {k.Help, k.Quit}}
}
