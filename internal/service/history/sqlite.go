package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/zhouzirui/life-coach/backend/internal/model/chat"
)

// SQLiteStore is the embedded-database backend: appends are single-row
// inserts and timestamp lookups are indexed, so it carries none of the
// whole-file rewrite costs of FileStore.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL UNIQUE,
		user_text TEXT NOT NULL,
		assistant_text TEXT NOT NULL,
		emotion TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_timestamp ON turns (timestamp);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// ReadAll returns the full log in append order.
func (s *SQLiteStore) ReadAll(ctx context.Context) ([]chat.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, user_text, assistant_text, emotion FROM turns ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var turns []chat.Turn
	for rows.Next() {
		var turn chat.Turn
		if err := rows.Scan(&turn.Timestamp, &turn.User, &turn.Assistant, &turn.Emotion); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return turns, nil
}

// Append commits one turn at the end of the log.
func (s *SQLiteStore) Append(ctx context.Context, turn chat.Turn) error {
	if err := validateTurn(turn); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (timestamp, user_text, assistant_text, emotion) VALUES (?, ?, ?, ?)`,
		turn.Timestamp, turn.User, turn.Assistant, turn.Emotion)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateTimestamp
		}
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}

// DeleteByTimestamp removes the matching turn, reporting whether one existed.
func (s *SQLiteStore) DeleteByTimestamp(ctx context.Context, timestamp string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM turns WHERE timestamp = ?`, timestamp)
	if err != nil {
		return false, fmt.Errorf("failed to delete turn: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
