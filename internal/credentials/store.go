package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Known token roles. The backend issues a separate bearer token per role and
// the web client keys them the same way in browser storage.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// ErrNoToken is returned when no token is stored for the requested role.
// Callers are expected to pass an empty bearer through rather than fail;
// the server is the enforcement point.
var ErrNoToken = errors.New("no stored token")

// Provider supplies the bearer token for one role. It is injected into the
// API client so view-models and tests never touch ambient storage directly.
type Provider interface {
	Token(role string) (string, error)
}

// StaticProvider returns the same token for every role. Used in tests and
// for one-off invocations with an explicit --token flag.
type StaticProvider string

// Token implements Provider.
func (p StaticProvider) Token(string) (string, error) {
	return string(p), nil
}

// FileStore persists role-keyed tokens as a JSON file in the state
// directory, mirroring the token_teacher/token_student keys the web client
// keeps in browser storage.
type FileStore struct {
	path string

	mu     sync.Mutex
	tokens map[string]string
	loaded bool
}

// NewFileStore creates a store backed by tokens.json under dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, "tokens.json")}
}

// Token returns the stored token for role, or ErrNoToken.
func (s *FileStore) Token(role string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return "", err
	}
	token, ok := s.tokens["token_"+role]
	if !ok || token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Save stores the token for role and persists the file.
func (s *FileStore) Save(role, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	s.tokens["token_"+role] = token
	return s.persist()
}

// Clear removes the token for role and persists the file.
func (s *FileStore) Clear(role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	delete(s.tokens, "token_"+role)
	return s.persist()
}

// load reads the token file once; a missing file is an empty store
func (s *FileStore) load() error {
	if s.loaded {
		return nil
	}
	s.tokens = make(map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.loaded = true
			return nil
		}
		return fmt.Errorf("failed to read token store: %w", err)
	}
	if err := json.Unmarshal(data, &s.tokens); err != nil {
		return fmt.Errorf("failed to parse token store: %w", err)
	}
	s.loaded = true
	return nil
}

// persist writes the token file with owner-only permissions
func (s *FileStore) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	data, err := json.MarshalIndent(s.tokens, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token store: %w", err)
	}
	return nil
}
