package wordlist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ingredient-scanner/internal/domain"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const listsFile = "wordlists.json"

// watchDebounce is how long the file must be quiet before a change is
// reported.
const watchDebounce = 300 * time.Millisecond

// FileStore keeps every list in one JSON object on disk, keyed by storage
// key. The whole file is rewritten on each save.
type FileStore struct {
	mu          sync.RWMutex
	path        string
	lastWritten []byte
}

// DefaultFilePath returns ~/.config/ingredient-scanner/wordlists.json.
func DefaultFilePath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "ingredient-scanner", listsFile)
}

// NewFileStore creates a store backed by path. An empty path selects
// DefaultFilePath. The file is created on first save.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFilePath()
	}
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(_ context.Context, key string) ([]string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, err := s.readLocked()
	if err != nil {
		return nil, false, err
	}
	raw, ok := values[key]
	if !ok {
		return nil, false, nil
	}
	phrases, err := DecodePhrases(string(raw))
	if err != nil {
		return nil, false, err
	}
	return phrases, true, nil
}

func (s *FileStore) Save(_ context.Context, key string, phrases []string) error {
	raw, err := EncodePhrases(phrases)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.readLocked()
	if err != nil {
		// An unreadable file is replaced rather than blocking every save.
		values = make(map[string]json.RawMessage)
	}
	values[key] = json.RawMessage(raw)
	return s.writeLocked(values)
}

func (s *FileStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.readLocked()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.writeLocked(values)
}

func (s *FileStore) readLocked() (map[string]json.RawMessage, error) {
	values := make(map[string]json.RawMessage)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, domain.StorageFailure("read "+s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, domain.StorageFailure("parse "+s.path, err)
	}
	return values, nil
}

func (s *FileStore) writeLocked(values map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return domain.StorageFailure("encode "+s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.StorageFailure("create "+dir, err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return domain.StorageFailure("write "+s.path, err)
	}
	s.lastWritten = data
	return nil
}

// Watch calls onChange whenever the backing file is modified by another
// process. Writes made through this store are not reported. Watch blocks
// until ctx is cancelled.
func (s *FileStore) Watch(ctx context.Context, logger zerolog.Logger, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Debug().Str("path", s.path).Msg("watching word lists")

	name := filepath.Base(s.path)
	var pending time.Time
	ticker := time.NewTicker(watchDebounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				pending = time.Now()
			}
		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < watchDebounce {
				continue
			}
			pending = time.Time{}
			if s.isOwnWrite() {
				continue
			}
			onChange()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("word list watch error")
		}
	}
}

func (s *FileStore) isOwnWrite() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}
	return s.lastWritten != nil && bytes.Equal(data, s.lastWritten)
}
