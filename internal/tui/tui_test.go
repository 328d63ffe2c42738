package tui

import (
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/pastebin/internal/navigation"
	"github.com/starford/pastebin/internal/session"
)

type fakeActions struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeActions) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeActions) Save()      { f.record("save") }
func (f *fakeActions) NewPaste()  { f.record("new") }
func (f *fakeActions) Duplicate() { f.record("duplicate") }
func (f *fakeActions) ViewRaw()   { f.record("raw") }
func (f *fakeActions) CopyLink()  { f.record("copy") }

type fakeSender struct {
	msgs []tea.Msg
}

func (f *fakeSender) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func newTestModel() (model, *Surface, *fakeActions, *navigation.History) {
	s := NewSurface()
	a := &fakeActions{}
	h := navigation.NewHistory("/")
	return newModel(s, a, h), s, a, h
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return mm, cmd
}

func typeText(t *testing.T, m model, text string) model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func TestKeyBindingsInvokeActions(t *testing.T) {
	cases := []struct {
		msg  tea.KeyMsg
		want string
	}{
		{tea.KeyMsg{Type: tea.KeyCtrlS}, "save"},
		{tea.KeyMsg{Type: tea.KeyCtrlN}, "new"},
		{tea.KeyMsg{Type: tea.KeyCtrlD}, "duplicate"},
		{tea.KeyMsg{Type: tea.KeyCtrlR}, "raw"},
		{tea.KeyMsg{Type: tea.KeyCtrlL}, "copy"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			m, _, a, _ := newTestModel()
			_, cmd := update(t, m, tc.msg)
			if cmd == nil {
				t.Fatal("expected a command")
			}
			cmd()
			if len(a.calls) != 1 || a.calls[0] != tc.want {
				t.Errorf("calls = %v, want [%s]", a.calls, tc.want)
			}
		})
	}
}

func TestBackForwardMoveHistory(t *testing.T) {
	m, _, _, h := newTestModel()
	h.Push("/abc")
	ch := h.Subscribe()

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyLeft, Alt: true})
	cmd()
	if got := <-ch; got != "/" {
		t.Errorf("back notified %q, want /", got)
	}

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRight, Alt: true})
	cmd()
	if got := <-ch; got != "/abc" {
		t.Errorf("forward notified %q, want /abc", got)
	}
}

func TestQuit(t *testing.T) {
	m, _, _, _ := newTestModel()
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc should quit")
	}
}

func TestTypingUpdatesMirror(t *testing.T) {
	m, s, _, _ := newTestModel()
	m = typeText(t, m, "hello")
	if s.Text() != "hello" {
		t.Errorf("mirror = %q, want hello", s.Text())
	}
	if m.editor.Value() != "hello" {
		t.Errorf("editor = %q", m.editor.Value())
	}
}

func TestReadOnlyIgnoresEdits(t *testing.T) {
	m, s, _, _ := newTestModel()
	m, _ = update(t, m, setTextMsg{text: "locked"})
	m, _ = update(t, m, setReadOnlyMsg{readOnly: true})

	m = typeText(t, m, "x")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.editor.Value() != "locked" || s.Text() != "locked" {
		t.Errorf("editor = %q, mirror = %q, want unchanged", m.editor.Value(), s.Text())
	}

	m, _ = update(t, m, setReadOnlyMsg{readOnly: false})
	m = typeText(t, m, "!")
	if !strings.Contains(m.editor.Value(), "!") {
		t.Errorf("editable again but value = %q", m.editor.Value())
	}
}

func TestLabelAndNoticeRendered(t *testing.T) {
	m, _, _, _ := newTestModel()
	if !strings.Contains(m.View(), session.LabelNew) {
		t.Error("initial view should show the new paste label")
	}

	m, _ = update(t, m, setLabelMsg{label: session.LabelFor("k1")})
	m, cmd := update(t, m, noticeMsg{notice: session.Notice{Level: session.NoticeWarning, Message: "Document not found."}})
	if cmd == nil {
		t.Error("notice should schedule its own expiry")
	}
	view := m.View()
	if !strings.Contains(view, "Paste: k1") || !strings.Contains(view, "Document not found.") {
		t.Errorf("view missing label or notice:\n%s", view)
	}

	// An expiry from an older notice does not clear a newer one.
	m, _ = update(t, m, clearNoticeMsg{seq: m.noticeSeq - 1})
	if m.notice == nil {
		t.Fatal("stale expiry cleared the notice")
	}
	m, _ = update(t, m, clearNoticeMsg{seq: m.noticeSeq})
	if m.notice != nil {
		t.Error("notice should be cleared")
	}
	if !strings.Contains(m.View(), "ctrl+s: save") {
		t.Error("help line should return after the notice expires")
	}
}

func TestSurfaceForwardsUpdates(t *testing.T) {
	s := NewSurface()
	s.SetLabel("dropped before attach")

	out := &fakeSender{}
	s.Attach(out)
	s.SetText("abc")
	s.SetReadOnly(true)
	s.SetLabel("Paste: abc")
	s.Notify(session.Notice{Level: session.NoticeInfo, Message: "hi"})

	if s.Text() != "abc" {
		t.Errorf("Text = %q, want abc", s.Text())
	}
	if len(out.msgs) != 4 {
		t.Fatalf("sent %d messages, want 4", len(out.msgs))
	}
	if msg, ok := out.msgs[0].(setTextMsg); !ok || msg.text != "abc" {
		t.Errorf("first message = %#v", out.msgs[0])
	}
	if msg, ok := out.msgs[1].(setReadOnlyMsg); !ok || !msg.readOnly {
		t.Errorf("second message = %#v", out.msgs[1])
	}
}

func TestBrowser(t *testing.T) {
	h := navigation.NewHistory("/")
	b := NewBrowser(h)

	b.PushPath("/abc")
	if h.Current() != "/abc" {
		t.Errorf("current = %q, want /abc", h.Current())
	}

	var copied string
	origClip := clipboardWrite
	clipboardWrite = func(text string) error { copied = text; return nil }
	t.Cleanup(func() { clipboardWrite = origClip })

	if err := b.WriteClipboard("http://x/abc"); err != nil {
		t.Fatalf("WriteClipboard: %v", err)
	}
	if copied != "http://x/abc" {
		t.Errorf("copied = %q", copied)
	}

	clipboardWrite = func(string) error { return errors.New("no display") }
	if err := b.WriteClipboard("x"); err == nil {
		t.Error("expected clipboard error")
	}

	var opened string
	origOpen := openURL
	openURL = func(url string) error { opened = url; return nil }
	t.Cleanup(func() { openURL = origOpen })

	if err := b.Redirect("http://x/raw/abc"); err != nil {
		t.Fatalf("Redirect: %v", err)
	}
	if opened != "http://x/raw/abc" {
		t.Errorf("opened = %q", opened)
	}
}
