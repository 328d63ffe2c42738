package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/pastebin/internal/session"
)

type (
	setTextMsg     struct{ text string }
	setReadOnlyMsg struct{ readOnly bool }
	setLabelMsg    struct{ label string }
	noticeMsg      struct{ notice session.Notice }
)

type sender interface {
	Send(msg tea.Msg)
}

// Surface implements session.View on top of the bubbletea program. Updates
// are forwarded as messages; the editor text is mirrored so Text never has
// to wait on the UI loop.
type Surface struct {
	mu   sync.Mutex
	text string
	out  sender
}

var _ session.View = (*Surface)(nil)

// NewSurface returns a surface that is not yet attached to a program.
func NewSurface() *Surface {
	return &Surface{}
}

// Attach routes updates to p. It must be called before the controller starts.
func (s *Surface) Attach(p sender) {
	s.mu.Lock()
	s.out = p
	s.mu.Unlock()
}

// Text returns the last known editor text.
func (s *Surface) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

func (s *Surface) SetText(text string) {
	s.mirror(text)
	s.send(setTextMsg{text: text})
}

func (s *Surface) SetReadOnly(readOnly bool) {
	s.send(setReadOnlyMsg{readOnly: readOnly})
}

func (s *Surface) SetLabel(label string) {
	s.send(setLabelMsg{label: label})
}

func (s *Surface) Notify(n session.Notice) {
	s.send(noticeMsg{notice: n})
}

// mirror is called by the model whenever the textarea changes.
func (s *Surface) mirror(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
}

func (s *Surface) send(msg tea.Msg) {
	s.mu.Lock()
	out := s.out
	s.mu.Unlock()
	if out != nil {
		out.Send(msg)
	}
}
