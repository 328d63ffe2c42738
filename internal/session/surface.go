package session

import "context"

// NoticeLevel classifies a message shown to the user.
type NoticeLevel int

// Notice levels.
const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeWarning:
		return "warning"
	case NoticeError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a transient message for the user.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// View is the editor surface the controller drives. The controller calls
// it from a single goroutine.
type View interface {
	Text() string
	SetText(text string)
	SetReadOnly(readOnly bool)
	SetLabel(label string)
	Notify(n Notice)
}

// Browser is the platform around the editor: address bar, external
// navigation and clipboard.
type Browser interface {
	// PushPath records path as the current address without triggering navigation.
	PushPath(path string)
	// Redirect leaves the editor for url.
	Redirect(url string) error
	// WriteClipboard copies text to the system clipboard.
	WriteClipboard(text string) error
}

// PathSource delivers paths reached by back/forward navigation.
type PathSource interface {
	Subscribe() chan string
	Unsubscribe(ch chan string)
}

// Links builds user-facing URLs for a key.
type Links interface {
	RawURL(key string) string
	ShareURL(key string) string
}

// Recorder remembers pastes the session has locked.
type Recorder interface {
	RecordPaste(ctx context.Context, key, action, content string) error
}

// Labels shown next to the editor.
const (
	LabelNew    = "New Paste"
	LabelSaving = "Saving…"
)

// LabelFor returns the label of a locked paste.
func LabelFor(key string) string {
	return "Paste: " + key
}

func labelLoading(key string) string {
	return "Loading " + key + "…"
}

// Notices for the link actions.
const (
	NoticeCopied       = "Link copied to clipboard."
	NoticeCopyFailed   = "Could not write to clipboard."
	NoticeRedirectFail = "Could not open the raw view."
)
