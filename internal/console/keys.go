package console

import "github.com/charmbracelet/bubbles/key"

type listKeys struct {
	Up, Down       key.Binding
	Prev, Next     key.Binding
	Sort, Flip     key.Binding
	Search, Jump   key.Binding
	Toggle, Page   key.Binding
	All, Clear     key.Binding
	Delete, Reload key.Binding
	Back           key.Binding
}

func (k listKeys) short() []key.Binding {
	return []key.Binding{k.Prev, k.Sort, k.Search, k.Jump, k.Toggle, k.Page, k.All, k.Clear, k.Delete, k.Reload, k.Back}
}

var listKeyMap = listKeys{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Prev:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "page")),
	Next:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next page")),
	Sort:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s/S", "sort")),
	Flip:   key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "flip sort")),
	Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Jump:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to page")),
	Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
	Page:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select page")),
	All:    key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "select all")),
	Clear:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
	Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Back:   key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "menu")),
}

type globalKeys struct {
	Quit   key.Binding
	Logout key.Binding
	Open   key.Binding
}

var globalKeyMap = globalKeys{
	Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	Logout: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "log out")),
	Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
}
