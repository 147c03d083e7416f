package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/zhouzirui/life-coach/backend/internal/model/chat"
)

// FileStore persists the log as one human-readable JSON array, rewritten
// wholesale on every mutation. Writes go through a temp file plus rename so a
// crash mid-write never leaves a torn log, and a mutex serializes mutations so
// concurrent appends cannot lose each other's turns.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore opens the store at path, creating an empty log if none exists.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	store := &FileStore{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := store.writeAll(nil); err != nil {
			return nil, fmt.Errorf("failed to initialize history file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat history file: %w", err)
	}

	return store, nil
}

// ReadAll returns the full log in append order.
func (s *FileStore) ReadAll(_ context.Context) ([]chat.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// Append commits one turn at the end of the log.
func (s *FileStore) Append(_ context.Context, turn chat.Turn) error {
	if err := validateTurn(turn); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turns, err := s.readAll()
	if err != nil {
		// A corrupt log must not block new conversations; start over and say so.
		log.Printf("[history] discarding unreadable log before append: %v", err)
		turns = nil
	}

	for _, existing := range turns {
		if existing.Timestamp == turn.Timestamp {
			return ErrDuplicateTimestamp
		}
	}

	return s.writeAll(append(turns, turn))
}

// DeleteByTimestamp filters the matching turn out and rewrites the log.
func (s *FileStore) DeleteByTimestamp(_ context.Context, timestamp string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, err := s.readAll()
	if err != nil {
		return false, err
	}

	kept := make([]chat.Turn, 0, len(turns))
	found := false
	for _, turn := range turns {
		if turn.Timestamp == timestamp {
			found = true
			continue
		}
		kept = append(kept, turn)
	}

	if !found {
		return false, nil
	}

	if err := s.writeAll(kept); err != nil {
		return false, err
	}
	return true, nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) readAll() ([]chat.Turn, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var turns []chat.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("%w: corrupt history file: %v", ErrUnavailable, err)
	}
	return turns, nil
}

// writeAll atomically replaces the backing file with the given log.
func (s *FileStore) writeAll(turns []chat.Turn) error {
	if turns == nil {
		turns = []chat.Turn{}
	}

	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".chat_history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to flush history: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}
