// Package localstore keeps small string values on the player's machine,
// such as the best score.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/okian/flappyghost/pkg/logger"
)

// ErrClosed is returned by Memory after Close.
var ErrClosed = errors.New("local store closed")

// Durable is key/value storage that survives restarts.
type Durable interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
}

var (
	_ Durable = (*FileStore)(nil)
	_ Durable = (*Memory)(nil)
)

// FileStore is a Durable backed by a flat YAML document. Every Write
// rewrites the whole file through a temp file and rename.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
	loaded bool
	log    logger.Logger
}

// NewFileStore returns a store for path. The file is read lazily and created
// on the first write.
func NewFileStore(path string, opts ...FileOption) *FileStore {
	s := &FileStore{
		path: path,
		log:  logger.Component("localstore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) loadLocked() error {
	if s.loaded {
		return nil
	}
	raw, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.values = map[string]string{}
		s.loaded = true
		return nil
	case err != nil:
		return fmt.Errorf("read %s: %w", s.path, err)
	}

	parsed, err := yaml.Parser().Unmarshal(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	s.values = make(map[string]string, len(parsed))
	for k, v := range parsed {
		switch t := v.(type) {
		case string:
			s.values[k] = t
		case nil:
		default:
			// hand-edited files may hold bare numbers
			s.values[k] = fmt.Sprint(t)
		}
	}
	s.loaded = true
	return nil
}

// Read returns the value stored under key.
func (s *FileStore) Read(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return "", false, err
	}
	v, ok := s.values[key]
	return v, ok, nil
}

// Write stores value under key and flushes the file.
func (s *FileStore) Write(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		// an unreadable file is replaced rather than blocking every write
		s.log.Warn(ctx, "discarding unreadable local store", logger.String("path", s.path), logger.Error(err))
		s.values = map[string]string{}
		s.loaded = true
	}

	prev, had := s.values[key]
	s.values[key] = value
	if err := s.flushLocked(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) flushLocked() error {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	raw, err := yaml.Parser().Marshal(out)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Memory is a process-local Durable for tests and headless players.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
	closed bool
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

func (m *Memory) Read(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Write(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.values[key] = value
	return nil
}

// Close makes further reads and writes fail.
func (m *Memory) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}
