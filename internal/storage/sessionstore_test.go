package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/valter-silva-au/taskdeck/pkg/models"
)

func testSession(token string) *models.Session {
	return &models.Session{
		Token:      token,
		User:       models.User{ID: 7, Name: "Ada", Email: "ada@example.com"},
		LoggedInAt: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestSessionStore_LoadMissing(t *testing.T) {
	store := NewSessionStoreManager(t.TempDir())

	sess, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess != nil {
		t.Errorf("expected nil session, got %+v", sess)
	}
}

func TestSessionStore_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store := NewSessionStoreManager(dir)

	if err := store.Save(testSession("tok-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A new store instance reads what the first wrote.
	got, err := NewSessionStoreManager(dir).Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected a session")
	}
	if got.Token != "tok-1" || got.User.ID != 7 || got.User.Email != "ada@example.com" {
		t.Errorf("session = %+v", got)
	}
	if !got.LoggedInAt.Equal(testSession("").LoggedInAt) {
		t.Errorf("LoggedInAt = %v", got.LoggedInAt)
	}
}

func TestSessionStore_FilePermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	store := NewSessionStoreManager(dir)

	if err := store.Save(testSession("tok-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("session file mode = %o, want 600", perm)
	}
	if _, err := os.Stat(store.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain")
	}
}

func TestSessionStore_Clear(t *testing.T) {
	store := NewSessionStoreManager(t.TempDir())
	if err := store.Save(testSession("tok-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sess, err := store.Load()
	if err != nil || sess != nil {
		t.Errorf("expected no session after Clear, got %+v, %v", sess, err)
	}

	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}

func TestSessionStore_ClearMissingDirectory(t *testing.T) {
	store := NewSessionStoreManager(filepath.Join(t.TempDir(), "does-not-exist"))
	if err := store.Clear(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSessionStore_Overwrite(t *testing.T) {
	store := NewSessionStoreManager(t.TempDir())
	_ = store.Save(testSession("tok-1"))
	if err := store.Save(testSession("tok-2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := store.Load()
	if got.Token != "tok-2" {
		t.Errorf("Token = %q, want tok-2", got.Token)
	}
}

func TestSessionStore_Malformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, SessionFileName), []byte("token: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewSessionStoreManager(dir).Load(); err == nil {
		t.Error("expected parse error")
	}
}

func TestSessionStore_SaveNil(t *testing.T) {
	if err := NewSessionStoreManager(t.TempDir()).Save(nil); err == nil {
		t.Error("expected error for nil session")
	}
}

func TestSessionStore_ConcurrentSaves(t *testing.T) {
	dir := t.TempDir()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store := NewSessionStoreManager(dir)
			if err := store.Save(testSession("tok-" + string(rune('a'+i)))); err != nil {
				t.Errorf("Save: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := NewSessionStoreManager(dir).Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got.Token) != 5 {
		t.Errorf("session corrupted: %+v", got)
	}
}
