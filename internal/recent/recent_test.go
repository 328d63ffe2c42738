package recent

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/starford/pastebin/internal/apperr"
	"github.com/starford/pastebin/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "pastebin-recent-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM recent`).Scan(&count); err != nil {
		t.Fatalf("recent table missing: %v", err)
	}
}

func TestRecordAndGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.Record(ctx, models.RecentEntry{Key: "abc123", Action: models.ActionSaved, Preview: "hello"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	e, err := db.Get(ctx, "abc123")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if e.Action != models.ActionSaved || e.Preview != "hello" {
		t.Errorf("entry = %+v", e)
	}
	if e.SeenAt.IsZero() {
		t.Error("seen_at should default to now")
	}
}

func TestRecordRefreshesExisting(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	old := time.Now().Add(-time.Hour).UTC()
	_ = db.Record(ctx, models.RecentEntry{Key: "k", Action: models.ActionSaved, SeenAt: old})
	_ = db.Record(ctx, models.RecentEntry{Key: "k", Action: models.ActionLoaded})

	items, err := db.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1", len(items))
	}
	if items[0].Action != models.ActionLoaded {
		t.Errorf("action = %q, want loaded", items[0].Action)
	}
	if !items[0].SeenAt.After(old) {
		t.Errorf("seen_at not refreshed: %v", items[0].SeenAt)
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	base := time.Now().UTC()

	for i, key := range []string{"a", "b", "c"} {
		_ = db.Record(ctx, models.RecentEntry{Key: key, SeenAt: base.Add(time.Duration(i) * time.Minute)})
	}

	items, err := db.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Key != "c" || items[1].Key != "b" {
		t.Errorf("order = %s, %s", items[0].Key, items[1].Key)
	}
}

func TestForget(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_ = db.Record(ctx, models.RecentEntry{Key: "gone"})
	if err := db.Forget(ctx, "gone"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if _, err := db.Get(ctx, "gone"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := db.Forget(ctx, "never-there"); err != nil {
		t.Errorf("Forget missing: %v", err)
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("\n\n  first line  \nsecond"); got != "first line" {
		t.Errorf("Preview = %q", got)
	}
	long := strings.Repeat("é", 100)
	got := Preview(long)
	if n := len([]rune(got)); n != previewRunes {
		t.Errorf("preview runes = %d, want %d", n, previewRunes)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("preview should end with ellipsis: %q", got)
	}
	if Preview("   ") != "" {
		t.Error("blank content should have an empty preview")
	}
}

func TestRecordPasteStoresPreview(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.RecordPaste(ctx, "k1", models.ActionSaved, "\n\n  first line  \nsecond"); err != nil {
		t.Fatalf("RecordPaste: %v", err)
	}
	e, err := db.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if e.Preview != "first line" {
		t.Errorf("preview = %q, want %q", e.Preview, "first line")
	}
	if e.Action != models.ActionSaved {
		t.Errorf("action = %q", e.Action)
	}
}
