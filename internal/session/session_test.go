package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/peatergripin/ecocommute/internal/models"
)

func openTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.db")
	store, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestStoreRoundTrip(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := store.Put(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := store.Get(ctx, "k")
	if err != nil || !ok || string(v) != "two" {
		t.Fatalf("expected two, got %q %v %v", v, ok, err)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Error("expected key gone after delete")
	}
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store, path := openTestStore(t)

	s := New(store)
	if err := s.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Fatal("expected signed out on first run")
	}

	user := models.User{ID: "7", Username: "ava", Email: "ava@example.com", Password: "secret", Avatar: "/uploads/a.png"}
	if err := s.Save(ctx, user); err != nil {
		t.Fatalf("save: %v", err)
	}
	if s.UserID() != "7" {
		t.Errorf("expected user 7, got %q", s.UserID())
	}

	// A fresh process restores the same user from disk.
	store.Close()
	reopened, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	restored := New(reopened)
	if err := restored.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	got, ok := restored.Current()
	if !ok || got.Username != "ava" || got.Avatar != "/uploads/a.png" {
		t.Fatalf("unexpected restored user %+v", got)
	}
	if got.Password != "" {
		t.Error("expected password not persisted")
	}

	if err := restored.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := restored.Current(); ok {
		t.Error("expected signed out after clear")
	}
	if _, ok, _ := reopened.Get(ctx, StorageKey); ok {
		t.Error("expected record removed from storage")
	}
}

func TestLoadDiscardsCorruptRecord(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	store.Put(ctx, StorageKey, []byte("{not json"))

	s := New(store)
	if err := s.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Error("expected signed out")
	}
	if _, ok, _ := store.Get(ctx, StorageKey); ok {
		t.Error("expected corrupt record deleted")
	}
}
