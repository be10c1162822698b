package console

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/client"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/mutation"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/querycache"
)

const defaultFlashDuration = 4 * time.Second

// Options configures the console.
type Options struct {
	Client *client.Client
	Cache  *querycache.Service
	Logger *slog.Logger
	// Account prefills the login form.
	Account        string
	PageSize       int
	SearchDelay    time.Duration
	RequestTimeout time.Duration
	FlashDuration  time.Duration
}

type state int

const (
	stateLogin state = iota
	stateHome
	stateList
)

// Model is the root Bubble Tea model. It owns the login form, the entity menu
// and one list screen per entity.
type Model struct {
	env   *env
	send  func(tea.Msg)
	login *loginScreen
	lists []screen

	state    state
	menu     int
	current  screen
	intended string

	flash    *mutation.Notification
	flashSeq int
	flashFor time.Duration
	width    int
}

// New builds the model. Messages from outside the event loop, such as
// notifications and cache invalidations, are dropped until Attach is called.
func New(opts Options) *Model {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	m := &Model{
		send:     func(tea.Msg) {},
		login:    newLoginScreen(opts.Account),
		flashFor: opts.FlashDuration,
	}
	if m.flashFor <= 0 {
		m.flashFor = defaultFlashDuration
	}
	notifier := mutation.NotifierFunc(func(n mutation.Notification) {
		m.send(flashMsg{note: n})
	})
	m.env = &env{
		client:      opts.Client,
		cache:       opts.Cache,
		bridge:      mutation.NewBridge(opts.Cache, notifier, log),
		log:         log,
		timeout:     opts.RequestTimeout,
		pageSize:    opts.PageSize,
		searchDelay: opts.SearchDelay,
	}
	m.lists = screens(m.env)
	if opts.Client.Token() != "" {
		m.state = stateHome
	}
	return m
}

// Attach routes notifications and cache invalidations into the event loop
// through send, usually tea.Program.Send. The returned function detaches.
func (m *Model) Attach(send func(tea.Msg)) (detach func()) {
	m.send = send
	return m.env.cache.Subscribe("", func(prefix string) {
		go send(invalidatedMsg{prefix: prefix})
	})
}

func (m *Model) Init() tea.Cmd {
	if m.state == stateLogin {
		return tea.Batch(textinput.Blink, m.login.focusFirstEmpty())
	}
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m, m.key(msg)
	case targeted:
		if s := m.screen(msg.target()); s != nil {
			return m, s.update(msg)
		}
		return m, nil
	case invalidatedMsg:
		var cmds []tea.Cmd
		for _, s := range m.lists {
			if s.invalidated(msg.prefix) && m.state == stateList && s == m.current {
				cmds = append(cmds, s.enter())
			}
		}
		return m, tea.Batch(cmds...)
	case loginMsg:
		return m, m.loggedIn(msg.err)
	case sessionExpiredMsg:
		m.env.client.SetToken("")
		m.intended = msg.entity
		m.leave()
		m.state = stateLogin
		return m, tea.Batch(m.login.restart(), m.notify(mutation.Failure, "Session expired", "Sign in again to continue"))
	case forbiddenMsg:
		m.leave()
		m.state = stateHome
		title := msg.entity
		if s := m.screen(msg.entity); s != nil {
			title = s.Title()
		}
		return m, m.notify(mutation.Failure, title, "You do not have access to this list")
	case flashMsg:
		return m, m.setFlash(msg.note)
	case flashExpiredMsg:
		if msg.seq == m.flashSeq {
			m.flash = nil
		}
		return m, nil
	}
	if m.state == stateLogin {
		var cmd tea.Cmd
		if m.login.account.Focused() {
			m.login.account, cmd = m.login.account.Update(msg)
		} else {
			m.login.password, cmd = m.login.password.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) key(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	switch m.state {
	case stateLogin:
		return m.login.update(msg, m.env)
	case stateHome:
		return m.homeKey(msg)
	}

	if m.current.capturing() {
		return m.current.update(msg)
	}
	switch {
	case key.Matches(msg, globalKeyMap.Quit):
		return tea.Quit
	case key.Matches(msg, globalKeyMap.Logout):
		return m.logout()
	case key.Matches(msg, listKeyMap.Back):
		m.leave()
		m.state = stateHome
		return nil
	}
	return m.current.update(msg)
}

func (m *Model) homeKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, globalKeyMap.Quit):
		return tea.Quit
	case key.Matches(msg, globalKeyMap.Logout):
		return m.logout()
	case key.Matches(msg, listKeyMap.Up):
		if m.menu > 0 {
			m.menu--
		}
	case key.Matches(msg, listKeyMap.Down):
		if m.menu < len(m.lists)-1 {
			m.menu++
		}
	case key.Matches(msg, globalKeyMap.Open):
		return m.open(m.lists[m.menu].Name())
	default:
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(m.lists) {
			m.menu = n - 1
			return m.open(m.lists[m.menu].Name())
		}
	}
	return nil
}

func (m *Model) screen(name string) screen {
	for _, s := range m.lists {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

func (m *Model) open(name string) tea.Cmd {
	s := m.screen(name)
	if s == nil {
		m.state = stateHome
		return nil
	}
	for i, l := range m.lists {
		if l == s {
			m.menu = i
		}
	}
	if m.current != s {
		m.leave()
	}
	m.state = stateList
	m.current = s
	return s.enter()
}

// leave closes the current list screen, dropping its selection.
func (m *Model) leave() {
	if m.current != nil {
		m.current.leave()
	}
	m.current = nil
}

func (m *Model) loggedIn(err error) tea.Cmd {
	if err != nil {
		m.login.err = err
		m.env.log.Warn("login failed", "error", err)
		return m.login.restart()
	}
	m.login.busy = false
	m.login.err = nil
	m.login.password.Reset()
	flash := m.notify(mutation.Success, "Signed in", "Welcome back")

	intended := m.intended
	m.intended = ""
	if intended != "" {
		return tea.Batch(flash, m.open(intended))
	}
	m.state = stateHome
	return flash
}

// logout revokes the token, forgets every cached read and resets the lists.
func (m *Model) logout() tea.Cmd {
	c := m.env.client
	token := c.Token()
	c.SetToken("")
	m.env.cache.Invalidate("")
	for _, s := range m.lists {
		s.reset()
	}
	m.state = stateLogin
	m.current = nil
	m.intended = ""

	revoke := func() tea.Msg {
		ctx, cancel := m.env.context()
		defer cancel()
		if err := logoutRequest(ctx, c, token); err != nil {
			m.env.log.Warn("logout failed", "error", err)
		}
		return nil
	}
	return tea.Batch(revoke, m.login.restart())
}

func logoutRequest(ctx context.Context, c *client.Client, token string) error {
	if token == "" {
		return nil
	}
	revoker := client.New(c.BaseURL())
	revoker.SetToken(token)
	return revoker.Do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

func (m *Model) notify(level mutation.Level, title, message string) tea.Cmd {
	return m.setFlash(mutation.Notification{Level: level, Title: title, Message: message})
}

func (m *Model) setFlash(n mutation.Notification) tea.Cmd {
	m.flash = &n
	m.flashSeq++
	seq := m.flashSeq
	return tea.Tick(m.flashFor, func(time.Time) tea.Msg {
		return flashExpiredMsg{seq: seq}
	})
}

func (m *Model) View() string {
	var b strings.Builder
	switch m.state {
	case stateLogin:
		b.WriteString(m.login.view())
	case stateHome:
		b.WriteString(m.homeView())
	case stateList:
		b.WriteString(m.current.render(m.width))
	}
	if m.flash != nil {
		b.WriteString("\n\n")
		b.WriteString(flashView(*m.flash))
	}
	return b.String()
}

func (m *Model) homeView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ERP console"))
	b.WriteString("\n\n")
	for i, s := range m.lists {
		line := fmt.Sprintf("%d  %s", i+1, s.Title())
		if i == m.menu {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ move • enter open • o log out • q quit"))
	return b.String()
}

func flashView(n mutation.Notification) string {
	text := n.Title
	if n.Message != "" {
		text += ": " + n.Message
	}
	if n.Level == mutation.Failure {
		return errorStyle.Render("✗ " + text)
	}
	return successStyle.Render("✓ " + text)
}
