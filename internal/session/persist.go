package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FilePersister keeps the session in a YAML file readable by the owner only.
type FilePersister struct {
	path string
}

// NewFilePersister stores the session at path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Load returns false when no session file exists.
func (p *FilePersister) Load() (Session, bool, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, err
	}

	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Session{}, false, fmt.Errorf("parse %s: %w", p.path, err)
	}
	if s.AccessToken == "" {
		return Session{}, false, nil
	}
	return s, true, nil
}

// Save writes the session atomically.
func (p *FilePersister) Save(s Session) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p.path)
}

// Clear removes the session file.
func (p *FilePersister) Clear() error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryPersister keeps the session in memory only.
type MemoryPersister struct {
	mu      sync.Mutex
	session *Session
}

func (p *MemoryPersister) Load() (Session, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return Session{}, false, nil
	}
	return *p.session, true, nil
}

func (p *MemoryPersister) Save(s Session) error {
	p.mu.Lock()
	p.session = &s
	p.mu.Unlock()
	return nil
}

func (p *MemoryPersister) Clear() error {
	p.mu.Lock()
	p.session = nil
	p.mu.Unlock()
	return nil
}
