// Package testutil provides shared test helpers for stores, databases and
// asynchronous assertions.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/starford/pastebin/internal/recent"
	"github.com/starford/pastebin/internal/storage"
)

// TestDB creates a temporary recent-pastes database that is automatically cleaned up.
func TestDB(t *testing.T) *recent.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "pastebin-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := recent.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary data directory with a storage.Provider.
func TestStore(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Eventually polls fn every tick until it returns true or timeout elapses.
func Eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}
