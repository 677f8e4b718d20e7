package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/folio/pkg/client"
	"github.com/naveenspark/folio/pkg/domain"
)

type loginField int

const (
	loginEmail loginField = iota
	loginPassword
	numLoginFields
)

type loginModel struct {
	client     *client.Client
	email      string
	password   string
	focus      loginField
	submitting bool
	statusMsg  string
	notice     string // shown above the form, e.g. after a 401
	frame      int
}

// loginResultMsg carries the outcome of an admin login.
type loginResultMsg struct {
	resp *client.LoginResponse
	err  error
}

func newLoginModel(c *client.Client, notice string) loginModel {
	return loginModel{client: c, notice: notice}
}

func (m loginModel) Init() tea.Cmd {
	return nil
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case shimmerTickMsg:
		m.frame++
		return m, nil

	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.statusMsg = client.Message(msg.err, "Login failed")
			m.password = ""
			return m, nil
		}
		m.statusMsg = ""
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		m.statusMsg = ""
		switch msg.String() {
		case "tab", "down":
			m.focus = (m.focus + 1) % numLoginFields
		case "shift+tab", "up":
			m.focus = (m.focus - 1 + numLoginFields) % numLoginFields
		case "enter":
			if m.focus == loginEmail {
				m.focus = loginPassword
				return m, nil
			}
			return m.submit()
		default:
			if m.focus == loginEmail {
				m.email = editKey(m.email, msg)
			} else {
				m.password = editKey(m.password, msg)
			}
		}
	}
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	email := strings.TrimSpace(m.email)
	if err := domain.ValidateCredentials(email, m.password); err != nil {
		m.statusMsg = err.Error()
		return m, nil
	}
	m.submitting = true
	c := m.client
	password := m.password
	return m, func() tea.Msg {
		resp, err := c.Login(context.Background(), email, password)
		return loginResultMsg{resp: resp, err: err}
	}
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("ADMIN SIGN IN") + "\n\n")
	if m.notice != "" {
		b.WriteString(" " + warnStyle.Render(m.notice) + "\n\n")
	}
	b.WriteString(renderInput("email   ", m.email, "admin@example.com", m.focus == loginEmail, false, m.frame) + "\n")
	b.WriteString(renderInput("password", m.password, "••••••••", m.focus == loginPassword, true, m.frame) + "\n\n")

	switch {
	case m.submitting:
		b.WriteString(" " + dimStyle.Render("signing in..."))
	case m.statusMsg != "":
		b.WriteString(" " + errorStyle.Render(m.statusMsg))
	}
	return b.String()
}
