// Package tui is a terminal frontend over the sync engine. It only renders
// engine state and forwards key presses; every reconciliation rule lives in
// internal/sync.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskboard/internal/client"
	"taskboard/internal/sync"
)

const requestTimeout = 15 * time.Second

type mode int

const (
	modeAuth mode = iota
	modeList
	modePrompt
)

type promptKind int

const (
	promptNew promptKind = iota
	promptEdit
)

type authDoneMsg struct{ err error }
type refreshDoneMsg struct{ err error }
type opDoneMsg struct{ err error }

// Model is the bubbletea model for the task list client.
type Model struct {
	api    *client.Client
	engine *sync.Engine

	mode mode
	busy bool

	// auth form
	email      string
	password   string
	authField  int // 0 = email, 1 = password
	registerOn bool

	// list view
	cursor int

	// prompt line for new/edit titles
	prompt     promptKind
	promptText string
	promptID   int64

	status string
}

func New(api *client.Client, engine *sync.Engine) *Model {
	return &Model{api: api, engine: engine, mode: modeAuth}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAuth:
			return m.updateAuth(msg)
		case modePrompt:
			return m.updatePrompt(msg)
		default:
			return m.updateList(msg)
		}

	case authDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.mode = modeList
		m.status = ""
		return m, m.refreshCmd()

	case refreshDoneMsg, opDoneMsg:
		m.busy = false
		m.afterOperation()
		return m, nil
	}

	return m, nil
}

// afterOperation pulls the outcome out of the engine once a network command
// settles: a 401 anywhere drops the session back to the auth form.
func (m *Model) afterOperation() {
	if m.engine.LoggedOut() {
		m.mode = modeAuth
		m.password = ""
		m.authField = 0
		m.status = "session expired, please log in again"
		return
	}
	m.status = m.engine.LastError()
	if n := len(m.engine.Visible()); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	}
	if len(m.engine.Visible()) == 0 {
		m.cursor = 0
	}
}

func (m *Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab":
		m.authField = 1 - m.authField
	case "ctrl+r":
		m.registerOn = !m.registerOn
	case "backspace":
		if m.authField == 0 && m.email != "" {
			m.email = m.email[:len(m.email)-1]
		} else if m.authField == 1 && m.password != "" {
			m.password = m.password[:len(m.password)-1]
		}
	case "enter":
		if m.authField == 0 {
			m.authField = 1
			return m, nil
		}
		m.busy = true
		m.status = ""
		return m, m.authCmd()
	default:
		if len(msg.Runes) > 0 {
			if m.authField == 0 {
				m.email += string(msg.Runes)
			} else {
				m.password += string(msg.Runes)
			}
		}
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	visible := m.engine.Visible()

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "r", "f5":
		m.busy = true
		return m, m.refreshCmd()
	case "f":
		m.engine.SetFilter(sync.NextFilter(m.engine.Filter()))
		m.cursor = 0
	case " ":
		if m.cursor < len(visible) {
			id := visible[m.cursor].ID
			m.busy = true
			return m, m.opCmd(func(ctx context.Context) error {
				return m.engine.ToggleCompleted(ctx, id)
			})
		}
	case "d":
		if m.cursor < len(visible) {
			id := visible[m.cursor].ID
			m.busy = true
			return m, m.opCmd(func(ctx context.Context) error {
				return m.engine.Delete(ctx, id)
			})
		}
	case "n":
		m.mode = modePrompt
		m.prompt = promptNew
		m.promptText = ""
	case "e":
		if m.cursor < len(visible) {
			m.mode = modePrompt
			m.prompt = promptEdit
			m.promptID = visible[m.cursor].ID
			m.promptText = visible[m.cursor].Title
		}
	}
	return m, nil
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
	case "backspace":
		if m.promptText != "" {
			m.promptText = m.promptText[:len(m.promptText)-1]
		}
	case "enter":
		title := strings.TrimSpace(m.promptText)
		if title == "" {
			m.status = "title is required"
			m.mode = modeList
			return m, nil
		}
		m.mode = modeList
		m.busy = true
		if m.prompt == promptNew {
			return m, m.opCmd(func(ctx context.Context) error {
				return m.engine.Create(ctx, client.TaskDraft{Title: title})
			})
		}
		id := m.promptID
		return m, m.opCmd(func(ctx context.Context) error {
			return m.engine.Edit(ctx, id, map[string]any{"title": title})
		})
	default:
		if len(msg.Runes) > 0 {
			m.promptText += string(msg.Runes)
		}
	}
	return m, nil
}

func (m *Model) authCmd() tea.Cmd {
	email, password, register := m.email, m.password, m.registerOn
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var err error
		if register {
			_, err = m.api.Register(ctx, email, password)
		} else {
			_, err = m.api.Login(ctx, email, password)
		}
		return authDoneMsg{err: err}
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return refreshDoneMsg{err: m.engine.Refresh(ctx)}
	}
}

func (m *Model) opCmd(op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return opDoneMsg{err: op(ctx)}
	}
}

func (m *Model) View() string {
	var b strings.Builder

	switch m.mode {
	case modeAuth:
		m.viewAuth(&b)
	default:
		m.viewList(&b)
	}

	if m.status != "" {
		fmt.Fprintf(&b, "\n%s\n", m.status)
	}
	return b.String()
}

func (m *Model) viewAuth(b *strings.Builder) {
	action := "Log in"
	if m.registerOn {
		action = "Register"
	}
	fmt.Fprintf(b, "%s (ctrl+r switches, tab moves, enter submits)\n\n", action)

	emailCursor, passCursor := " ", " "
	if m.authField == 0 {
		emailCursor = ">"
	} else {
		passCursor = ">"
	}
	fmt.Fprintf(b, "%s email:    %s\n", emailCursor, m.email)
	fmt.Fprintf(b, "%s password: %s\n", passCursor, strings.Repeat("*", len(m.password)))

	if m.busy {
		b.WriteString("\nworking...\n")
	}
}

func (m *Model) viewList(b *strings.Builder) {
	fmt.Fprintf(b, "tasks [%s]  active: %d\n\n", m.engine.Filter(), m.engine.ActiveCount())

	if m.mode == modePrompt {
		label := "new task title"
		if m.prompt == promptEdit {
			label = "edit title"
		}
		fmt.Fprintf(b, "%s: %s_\n\n", label, m.promptText)
	}

	if m.engine.State() == sync.StateLoading || m.busy {
		b.WriteString("loading...\n")
		return
	}

	visible := m.engine.Visible()
	if len(visible) == 0 {
		if len(m.engine.Tasks()) > 0 {
			fmt.Fprintf(b, "no %s tasks\n", m.engine.Filter())
		} else {
			b.WriteString("no tasks yet (press n to add one)\n")
		}
	}

	for i, t := range visible {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}
		check := " "
		if t.Completed {
			check = "x"
		}
		line := fmt.Sprintf("%s [%s] #%d %s (%s)", cursor, check, t.ID, t.Title, t.Priority)
		if t.Deadline != "" {
			line += " due " + t.Deadline
		}
		if m.engine.Overdue(t) {
			line += " OVERDUE"
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\nspace toggle · n new · e edit · d delete · f filter · r refresh · q quit\n")
}
