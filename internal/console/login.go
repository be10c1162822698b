package console

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/client"
)

type loginScreen struct {
	account  textinput.Model
	password textinput.Model
	err      error
	busy     bool
}

func newLoginScreen(account string) *loginScreen {
	a := textinput.New()
	a.Prompt = "account:  "
	a.CharLimit = 100
	a.SetValue(account)

	p := textinput.New()
	p.Prompt = "password: "
	p.EchoMode = textinput.EchoPassword
	p.CharLimit = 128

	l := &loginScreen{account: a, password: p}
	l.focusFirstEmpty()
	return l
}

func (l *loginScreen) focusFirstEmpty() tea.Cmd {
	if strings.TrimSpace(l.account.Value()) == "" {
		l.password.Blur()
		return l.account.Focus()
	}
	l.account.Blur()
	return l.password.Focus()
}

func (l *loginScreen) toggleFocus() tea.Cmd {
	if l.account.Focused() {
		l.account.Blur()
		return l.password.Focus()
	}
	l.password.Blur()
	return l.account.Focus()
}

// restart clears the password for a new attempt.
func (l *loginScreen) restart() tea.Cmd {
	l.password.Reset()
	l.busy = false
	return l.focusFirstEmpty()
}

func (l *loginScreen) update(msg tea.KeyMsg, e *env) tea.Cmd {
	if l.busy {
		return nil
	}
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		return l.toggleFocus()
	case tea.KeyEnter:
		if l.account.Focused() && l.password.Value() == "" {
			return l.toggleFocus()
		}
		return l.submit(e)
	}
	var cmd tea.Cmd
	if l.account.Focused() {
		l.account, cmd = l.account.Update(msg)
	} else {
		l.password, cmd = l.password.Update(msg)
	}
	return cmd
}

func (l *loginScreen) submit(e *env) tea.Cmd {
	account := strings.TrimSpace(l.account.Value())
	password := l.password.Value()
	if account == "" || password == "" {
		l.err = errors.New("account and password are required")
		return nil
	}
	l.err = nil
	l.busy = true
	return func() tea.Msg {
		ctx, cancel := e.context()
		defer cancel()
		_, err := e.client.Login(ctx, account, password)
		return loginMsg{err: err}
	}
}

func (l *loginScreen) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sign in"))
	b.WriteString("\n\n")
	b.WriteString(l.account.View() + "\n")
	b.WriteString(l.password.View() + "\n\n")
	switch {
	case l.busy:
		b.WriteString(dimStyle.Render("signing in…"))
	case l.err != nil:
		msg := l.err.Error()
		var ce *client.Error
		if errors.As(l.err, &ce) && ce.Message != "" {
			msg = ce.Message
		}
		b.WriteString(errorStyle.Render(msg))
	default:
		b.WriteString(helpStyle.Render("tab switch field • enter sign in • ctrl+c quit"))
	}
	return b.String()
}
