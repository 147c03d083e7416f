package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/zhouzirui/life-coach/backend/internal/model/chat"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "data", "chat_history.json"))
	if err != nil {
		t.Fatalf("NewFileStore err: %v", err)
	}
	return store
}

func TestFileStoreInitializesEmptyLog(t *testing.T) {
	store := newTestFileStore(t)

	turns, err := store.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll err: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected empty log, got %d turns", len(turns))
	}
}

func TestFileStoreAppendRoundTrip(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	turn := chat.Turn{
		Timestamp: "2024-05-01T10:00:00Z",
		User:      "I feel stuck",
		Assistant: "Let's break the problem down together.",
		Emotion:   "anxious",
	}
	if err := store.Append(ctx, turn); err != nil {
		t.Fatalf("Append err: %v", err)
	}

	turns, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll err: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	if turns[0] != turn {
		t.Fatalf("round-trip mismatch: %+v", turns[0])
	}
}

func TestFileStoreRejectsIncompleteTurn(t *testing.T) {
	store := newTestFileStore(t)

	err := store.Append(context.Background(), chat.Turn{Timestamp: "2024-05-01T10:00:00Z", User: "hi"})
	if !errors.Is(err, ErrInvalidTurn) {
		t.Fatalf("expected ErrInvalidTurn, got %v", err)
	}
}

func TestFileStoreRejectsDuplicateTimestamp(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	turn := chat.Turn{Timestamp: "2024-05-01T10:00:00Z", User: "u", Assistant: "a", Emotion: "calm"}
	if err := store.Append(ctx, turn); err != nil {
		t.Fatalf("Append err: %v", err)
	}
	if err := store.Append(ctx, turn); !errors.Is(err, ErrDuplicateTimestamp) {
		t.Fatalf("expected ErrDuplicateTimestamp, got %v", err)
	}
}

func TestFileStoreDeleteByTimestamp(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		turn := chat.Turn{
			Timestamp: fmt.Sprintf("2024-05-01T10:0%d:00Z", i),
			User:      fmt.Sprintf("u%d", i),
			Assistant: fmt.Sprintf("a%d", i),
			Emotion:   "calm",
		}
		if err := store.Append(ctx, turn); err != nil {
			t.Fatalf("Append err: %v", err)
		}
	}

	found, err := store.DeleteByTimestamp(ctx, "2024-05-01T10:01:00Z")
	if err != nil {
		t.Fatalf("DeleteByTimestamp err: %v", err)
	}
	if !found {
		t.Fatal("expected existing timestamp to report a match")
	}

	turns, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll err: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns after delete, got %d", len(turns))
	}
	if turns[0].User != "u0" || turns[1].User != "u2" {
		t.Fatalf("relative order changed: %+v", turns)
	}

	found, err = store.DeleteByTimestamp(ctx, "2024-05-01T23:59:59Z")
	if err != nil {
		t.Fatalf("DeleteByTimestamp err: %v", err)
	}
	if found {
		t.Fatal("expected no match for unknown timestamp")
	}
	if remaining, _ := store.ReadAll(ctx); len(remaining) != 2 {
		t.Fatalf("log changed by no-match delete: %d turns", len(remaining))
	}
}

func TestFileStoreCorruptFileIsUnavailable(t *testing.T) {
	store := newTestFileStore(t)
	if err := os.WriteFile(store.path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile err: %v", err)
	}

	if _, err := store.ReadAll(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestFileStoreConcurrentAppendsLoseNothing(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			turn := chat.Turn{
				Timestamp: fmt.Sprintf("2024-05-01T10:00:%02dZ", i),
				User:      "u",
				Assistant: "a",
				Emotion:   "calm",
			}
			if err := store.Append(ctx, turn); err != nil {
				t.Errorf("Append err: %v", err)
			}
		}(i)
	}
	wg.Wait()

	turns, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll err: %v", err)
	}
	if len(turns) != writers {
		t.Fatalf("expected %d turns, got %d", writers, len(turns))
	}
}
