package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/valter-silva-au/taskdeck/pkg/models"
	"gopkg.in/yaml.v3"
)

// SessionFileName is the name of the session file under the base directory.
const SessionFileName = "session.yaml"

// SessionStoreManager persists the local login session between command
// invocations.
type SessionStoreManager interface {
	Load() (*models.Session, error)
	Save(sess *models.Session) error
	Clear() error
	Path() string
}

type fileSessionStore struct {
	basePath string
}

// NewSessionStoreManager creates a SessionStoreManager backed by
// session.yaml in the given base directory.
func NewSessionStoreManager(basePath string) SessionStoreManager {
	return &fileSessionStore{basePath: basePath}
}

func (s *fileSessionStore) Path() string {
	return filepath.Join(s.basePath, SessionFileName)
}

func (s *fileSessionStore) lockPath() string {
	return filepath.Join(s.basePath, ".session.lock")
}

// Load reads the stored session. It returns nil, nil when no session file
// exists.
func (s *fileSessionStore) Load() (*models.Session, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var sess models.Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", s.Path(), err)
	}
	return &sess, nil
}

// Save writes the session atomically with owner-only permissions.
func (s *fileSessionStore) Save(sess *models.Session) error {
	if sess == nil {
		return fmt.Errorf("saving session: session is nil")
	}
	if err := os.MkdirAll(s.basePath, 0o700); err != nil {
		return fmt.Errorf("saving session: creating directory: %w", err)
	}

	unlock, err := s.lock()
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	defer unlock()

	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("saving session: marshaling: %w", err)
	}
	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("saving session: writing: %w", err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("saving session: renaming: %w", err)
	}
	return nil
}

// Clear removes the session file. Clearing a missing session is not an error.
func (s *fileSessionStore) Clear() error {
	if _, err := os.Stat(s.basePath); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	unlock, err := s.lock()
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	defer unlock()

	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// lock acquires an exclusive lock on the session lock file so concurrent
// tdeck processes do not interleave writes.
func (s *fileSessionStore) lock() (unlock func() error, err error) {
	f, err := os.OpenFile(s.lockPath(), os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening session lock file: %w", err)
	}

	// syscall.Flock is Unix-specific.
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("acquiring session lock: %w", err)
	}

	return func() error {
		defer f.Close()
		return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}, nil
}
