package tui

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"

	"github.com/starford/pastebin/internal/navigation"
)

var clipboardWrite = clipboard.WriteAll

var openURL = func(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("tui: open %s: %w", url, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Browser stands in for the web page around the editor: the address is an
// in-memory history, redirects open the system browser.
type Browser struct {
	hist *navigation.History
}

// NewBrowser returns a Browser recording addresses in hist.
func NewBrowser(hist *navigation.History) *Browser {
	return &Browser{hist: hist}
}

// PushPath records path without navigating.
func (b *Browser) PushPath(path string) {
	b.hist.Push(path)
}

// Redirect opens url outside the terminal.
func (b *Browser) Redirect(url string) error {
	return openURL(url)
}

// WriteClipboard copies text to the system clipboard.
func (b *Browser) WriteClipboard(text string) error {
	if err := clipboardWrite(text); err != nil {
		return fmt.Errorf("tui: clipboard: %w", err)
	}
	return nil
}
