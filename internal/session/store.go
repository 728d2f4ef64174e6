// Package session keeps the bearer token and display identity between runs.
// It is read once at startup and the resulting ports.Session is passed down
// explicitly; nothing else touches the file.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-ini/ini"

	"github.com/Vovarama1992/braille_bridge/internal/ports"
)

// Fixed storage keys
const (
	KeyToken    = "token"
	SectionUser = "user"
	KeyName     = "name"
	KeyEmail    = "email"
)

type FileStore struct {
	path string
}

var _ ports.SessionStore = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath: ~/.braille_bridge/session.ini
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".braille_bridge", "session.ini"), nil
}

func (s *FileStore) Path() string {
	return s.path
}

// Load returns an empty session when the file does not exist yet.
func (s *FileStore) Load() (ports.Session, error) {
	cfg, err := ini.LooseLoad(s.path)
	if err != nil {
		return ports.Session{}, fmt.Errorf("load session %s: %w", s.path, err)
	}

	user := cfg.Section(SectionUser)
	return ports.Session{
		Token: cfg.Section("").Key(KeyToken).String(),
		User: ports.Identity{
			Name:  user.Key(KeyName).String(),
			Email: user.Key(KeyEmail).String(),
		},
	}, nil
}

func (s *FileStore) Save(sess ports.Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session dir: %w", err)
	}

	cfg := ini.Empty()
	cfg.Section("").Key(KeyToken).SetValue(sess.Token)
	user := cfg.Section(SectionUser)
	user.Key(KeyName).SetValue(sess.User.Name)
	user.Key(KeyEmail).SetValue(sess.User.Email)

	if err := cfg.SaveTo(s.path); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return os.Chmod(s.path, 0o600)
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// MemoryStore: process-local store
type MemoryStore struct {
	mu   sync.RWMutex
	sess ports.Session
}

var _ ports.SessionStore = (*MemoryStore)(nil)

func NewMemoryStore(initial ports.Session) *MemoryStore {
	return &MemoryStore{sess: initial}
}

func (m *MemoryStore) Load() (ports.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess, nil
}

func (m *MemoryStore) Save(s ports.Session) error {
	m.mu.Lock()
	m.sess = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	m.sess = ports.Session{}
	m.mu.Unlock()
	return nil
}

type ctxKey struct{}

func WithContext(ctx context.Context, s ports.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (ports.Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(ports.Session)
	return s, ok
}
