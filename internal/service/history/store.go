package history

import (
	"context"
	"errors"

	"github.com/zhouzirui/life-coach/backend/internal/model/chat"
)

var (
	// ErrUnavailable marks a backing store that cannot be read. Readers that
	// only display history may treat it as an empty log; writers must not.
	ErrUnavailable = errors.New("history storage unavailable")

	ErrInvalidTurn        = errors.New("turn is missing timestamp, user or assistant text")
	ErrDuplicateTimestamp = errors.New("turn timestamp already exists in the log")
)

// Store is the single owner of the persisted conversation log. Appends are
// whole-log read-modify-write operations; implementations must serialize
// writers so concurrent appends cannot drop turns.
type Store interface {
	// ReadAll returns the full log in append order.
	ReadAll(ctx context.Context) ([]chat.Turn, error)

	// Append commits one completed turn at the end of the log.
	Append(ctx context.Context, turn chat.Turn) error

	// DeleteByTimestamp removes the turn with the given timestamp, reporting
	// whether a match was found. Relative order of other turns is preserved.
	DeleteByTimestamp(ctx context.Context, timestamp string) (bool, error)

	Close() error
}

func validateTurn(turn chat.Turn) error {
	if turn.Timestamp == "" || turn.User == "" || turn.Assistant == "" {
		return ErrInvalidTurn
	}
	return nil
}
