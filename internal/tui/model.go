// Package tui is the terminal front end of a paste session: a textarea
// editor with a label line, a notice line and key bindings for the session
// actions.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/pastebin/internal/session"
)

const noticeTTL = 4 * time.Second

// Actions are the session operations bound to keys.
type Actions interface {
	Save()
	NewPaste()
	Duplicate()
	ViewRaw()
	CopyLink()
}

// Navigator moves through the address history.
type Navigator interface {
	Back() bool
	Forward() bool
}

type clearNoticeMsg struct{ seq int }

var (
	labelStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	lockedStyle  = labelStyle.Foreground(lipgloss.Color("6"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
	noticeStyles = map[session.NoticeLevel]lipgloss.Style{
		session.NoticeInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		session.NoticeWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		session.NoticeError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

type model struct {
	editor  textarea.Model
	surface *Surface
	actions Actions
	nav     Navigator
	keys    keyMap

	label     string
	readOnly  bool
	notice    *session.Notice
	noticeSeq int
	width     int
}

func newModel(surface *Surface, actions Actions, nav Navigator) model {
	ta := textarea.New()
	ta.Placeholder = "Paste or type…"
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = true
	ta.SetWidth(80)
	ta.SetHeight(20)
	ta.Focus()

	return model{
		editor:  ta,
		surface: surface,
		actions: actions,
		nav:     nav,
		keys:    defaultKeyMap(),
		label:   session.LabelNew,
	}
}

func (m model) Init() tea.Cmd {
	return textarea.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.editor.SetWidth(msg.Width)
		m.editor.SetHeight(max(msg.Height-3, 3))
		return m, nil

	case setTextMsg:
		m.editor.SetValue(msg.text)
		m.surface.mirror(m.editor.Value())
		return m, nil

	case setReadOnlyMsg:
		m.readOnly = msg.readOnly
		return m, nil

	case setLabelMsg:
		m.label = msg.label
		return m, nil

	case noticeMsg:
		n := msg.notice
		m.notice = &n
		m.noticeSeq++
		seq := m.noticeSeq
		return m, tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearNoticeMsg{seq: seq} })

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = nil
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Save):
			return m, run(m.actions.Save)
		case key.Matches(msg, m.keys.New):
			return m, run(m.actions.NewPaste)
		case key.Matches(msg, m.keys.Duplicate):
			return m, run(m.actions.Duplicate)
		case key.Matches(msg, m.keys.Raw):
			return m, run(m.actions.ViewRaw)
		case key.Matches(msg, m.keys.CopyLink):
			return m, run(m.actions.CopyLink)
		case key.Matches(msg, m.keys.Back):
			return m, run(func() { m.nav.Back() })
		case key.Matches(msg, m.keys.Forward):
			return m, run(func() { m.nav.Forward() })
		}
		if m.readOnly && !isMovement(msg) {
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.surface.mirror(m.editor.Value())
	return m, cmd
}

// run calls fn off the UI loop; session calls may block on the controller,
// which in turn sends view updates to this loop.
func run(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

func isMovement(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyUp, tea.KeyDown, tea.KeyLeft, tea.KeyRight,
		tea.KeyPgUp, tea.KeyPgDown, tea.KeyHome, tea.KeyEnd,
		tea.KeyCtrlHome, tea.KeyCtrlEnd:
		return true
	}
	return false
}

func (m model) View() string {
	var b strings.Builder

	style := labelStyle
	if m.readOnly {
		style = lockedStyle
	}
	b.WriteString(style.Render(m.label))
	b.WriteString("\n")
	b.WriteString(m.editor.View())
	b.WriteString("\n")

	if m.notice != nil {
		b.WriteString(noticeStyles[m.notice.Level].Render(m.notice.Message))
	} else {
		b.WriteString(helpStyle.Render(helpLine(m.keys.help())))
	}
	return b.String()
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, "  ")
}
