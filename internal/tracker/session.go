package tracker

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// tokenFile is the single durable key holding the session token.
const tokenFile = "session.token"

// Store holds the current session: the durable token and the in-memory
// operator identity. The token survives a process restart; the identity is
// re-derived from a fresh login and is never read back from disk.
type Store struct {
	mu       sync.Mutex
	dir      string
	identity string
	token    string
}

// NewStore constructs a session store rooted at dir and restores a
// previously persisted token if one exists.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("tracker: empty session dir")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	s := &Store{dir: dir}
	data, err := os.ReadFile(s.path())
	if err == nil {
		s.token = strings.TrimSpace(string(data))
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return s, nil
}

// Token returns the current session token; empty means unauthenticated.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Identity returns the operator identity of the current session, if any.
func (s *Store) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// SetSession records a fresh session after a successful login. The token is
// persisted durably; the identity stays in memory only.
func (s *Store) SetSession(identity, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path(), []byte(token), 0o600); err != nil {
		return err
	}
	s.identity = identity
	s.token = token
	return nil
}

// Clear erases the session from memory and durable storage. Called on
// explicit logout and on any 401 from the tracking server.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = ""
	s.token = ""
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, tokenFile)
}
