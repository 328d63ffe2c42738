package recent

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/starford/pastebin/internal/models"
)

// Recorder is what the session and the CLI need to remember a paste.
// Consumers depend on this rather than *DB so tests can pass a fake.
type Recorder interface {
	RecordPaste(ctx context.Context, key, action, content string) error
}

// Verify *DB satisfies Recorder at compile time.
var _ Recorder = (*DB)(nil)

const previewRunes = 60

// RecordPaste records key with a preview of content.
func (db *DB) RecordPaste(ctx context.Context, key, action, content string) error {
	return db.Record(ctx, models.RecentEntry{
		Key:     key,
		Action:  action,
		Preview: Preview(content),
	})
}

// Preview returns the first non-blank line of content, shortened for listings.
func Preview(content string) string {
	var line string
	for _, l := range strings.Split(content, "\n") {
		if strings.TrimSpace(l) != "" {
			line = strings.TrimSpace(l)
			break
		}
	}
	if utf8.RuneCountInString(line) <= previewRunes {
		return line
	}
	r := []rune(line)
	return string(r[:previewRunes-1]) + "…"
}
