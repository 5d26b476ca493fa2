// Package testutil provides shared test helpers for setting up databases and blob stores.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/othala/internal/storage"
	"github.com/starford/othala/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "othala-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestBlobs creates a temporary blob root with a storage.Provider.
func TestBlobs(t *testing.T) (string, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	blobs, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, blobs
}
