// Package session persists the signed-in admin between runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/naveenspark/folio/pkg/domain"
)

const fileName = "session.json"

// Session is the persisted auth state.
type Session struct {
	Token string        `json:"token"`
	Admin *domain.Admin `json:"admin,omitempty"`
}

// Authenticated reports whether a token is held.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Store reads and writes the session file under a directory. The
// envToken, when set, overrides the file's token.
type Store struct {
	dir      string
	envToken string

	mu      sync.Mutex
	current Session
}

// NewStore returns a store rooted at dir.
func NewStore(dir, envToken string) *Store {
	return &Store{dir: dir, envToken: strings.TrimSpace(envToken)}
}

// Path returns the session file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, fileName)
}

// Load reads the session from disk. A missing or unreadable file yields
// an empty session; the environment token still applies.
func (s *Store) Load() (Session, error) {
	var sess Session
	data, err := os.ReadFile(s.Path())
	switch {
	case err == nil:
		if jerr := json.Unmarshal(data, &sess); jerr != nil {
			sess = Session{}
			err = fmt.Errorf("session.Load: corrupt %s: %w", s.Path(), jerr)
		}
	case errors.Is(err, fs.ErrNotExist):
		err = nil
	default:
		err = fmt.Errorf("session.Load: %w", err)
	}
	if s.envToken != "" {
		sess.Token = s.envToken
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	return sess, err
}

// Current returns the last loaded or saved session.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Save writes token and admin to disk with owner-only permissions.
func (s *Store) Save(token string, admin *domain.Admin) error {
	sess := Session{Token: token, Admin: admin}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("session.Save: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("session.Save: create %s: %w", s.dir, err)
	}
	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("session.Save: %w", err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return fmt.Errorf("session.Save: %w", err)
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	return nil
}

// Teardown forgets the session on disk and in memory. It reports whether
// a session file existed.
func (s *Store) Teardown() (bool, error) {
	s.mu.Lock()
	s.current = Session{}
	s.envToken = ""
	s.mu.Unlock()

	err := os.Remove(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("session.Teardown: %w", err)
	}
	return true, nil
}
