package cache

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGet(t *testing.T) {
	store := openTestStore(t)

	if _, _, err := store.Get("month:ci-1:2025-03"); !errors.Is(err, ErrMiss) {
		t.Fatalf("Get on empty store = %v, want ErrMiss", err)
	}

	payload := []byte(`{"year":2025}`)
	if err := store.Put("month:ci-1:2025-03", payload); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, fetchedAt, err := store.Get("month:ci-1:2025-03")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload = %s, want %s", got, payload)
	}
	if time.Since(fetchedAt) > time.Minute {
		t.Errorf("fetchedAt = %v, want recent", fetchedAt)
	}
}

func TestPutReplaces(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put("k", []byte("old")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put("k", []byte("new")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, _, err := store.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("payload = %s, want new", got)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Put("k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, _, err := reopened.Get("k")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("payload = %s, want v", got)
	}
}

func TestPrune(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put("fresh", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// a just-written snapshot survives any positive max age
	removed, err := store.Prune(time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed %d snapshots, want 0", removed)
	}

	// a zero max age removes everything written before "now"
	time.Sleep(10 * time.Millisecond)
	removed, err = store.Prune(0)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed %d snapshots, want 1", removed)
	}
	if _, _, err := store.Get("fresh"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get after prune = %v, want ErrMiss", err)
	}
}
