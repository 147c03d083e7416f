package history

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/life-coach/backend/internal/model/chat"
	historyservice "github.com/zhouzirui/life-coach/backend/internal/service/history"
)

func setupRouter(t *testing.T) (*chi.Mux, historyservice.Store) {
	t.Helper()
	store, err := historyservice.NewFileStore(filepath.Join(t.TempDir(), "chat_history.json"))
	if err != nil {
		t.Fatalf("NewFileStore err: %v", err)
	}

	seed := []chat.Turn{
		{Timestamp: "2024-05-01T10:00:00Z", User: "I got the job!", Assistant: "Congratulations!", Emotion: "happy"},
		{Timestamp: "2024-05-01T10:01:00Z", User: "I slept badly", Assistant: "Let's talk about sleep routines.", Emotion: "anxious"},
		{Timestamp: "2024-05-01T10:02:00Z", User: "A quiet day", Assistant: "Quiet days help recovering.", Emotion: "calm"},
	}
	for _, turn := range seed {
		if err := store.Append(context.Background(), turn); err != nil {
			t.Fatalf("Append err: %v", err)
		}
	}

	r := chi.NewRouter()
	New(store).RegisterRoutes(r)
	return r, store
}

func postJSON(t *testing.T, r http.Handler, path string, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeTurns(t *testing.T, resp *httptest.ResponseRecorder) []chat.Turn {
	t.Helper()
	var turns []chat.Turn
	if err := json.Unmarshal(resp.Body.Bytes(), &turns); err != nil {
		t.Fatalf("failed to decode turns: %v", err)
	}
	return turns
}

func TestHistoryReturnsFullLog(t *testing.T) {
	r, _ := setupRouter(t)

	resp := postJSON(t, r, "/history", map[string]string{})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if turns := decodeTurns(t, resp); len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
}

func TestHistorySearchIsCaseInsensitive(t *testing.T) {
	r, _ := setupRouter(t)

	resp := postJSON(t, r, "/history", map[string]string{"search": "JOB"})
	turns := decodeTurns(t, resp)
	if len(turns) != 1 || turns[0].Emotion != "happy" {
		t.Fatalf("expected the job turn only, got %+v", turns)
	}
}

func TestHistoryEmotionFilter(t *testing.T) {
	r, _ := setupRouter(t)

	resp := postJSON(t, r, "/history", map[string]string{"emotion": "anxious"})
	turns := decodeTurns(t, resp)
	if len(turns) != 1 || turns[0].User != "I slept badly" {
		t.Fatalf("expected the anxious turn only, got %+v", turns)
	}
}

func TestHistorySearchMatchesAssistantText(t *testing.T) {
	r, _ := setupRouter(t)

	resp := postJSON(t, r, "/history", map[string]string{"search": "sleep routines"})
	if turns := decodeTurns(t, resp); len(turns) != 1 {
		t.Fatalf("expected assistant text to be searchable, got %+v", turns)
	}
}

func TestDeleteExistingTimestamp(t *testing.T) {
	r, store := setupRouter(t)

	resp := postJSON(t, r, "/delete", map[string]string{"timestamp": "2024-05-01T10:01:00Z"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	turns, err := store.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll err: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns after delete, got %d", len(turns))
	}
}

func TestDeleteUnknownTimestampStillSucceeds(t *testing.T) {
	r, store := setupRouter(t)

	resp := postJSON(t, r, "/delete", map[string]string{"timestamp": "1999-01-01T00:00:00Z"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for a no-match delete, got %d", resp.Code)
	}

	var result map[string]bool
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["deleted"] {
		t.Fatal("expected deleted=false for unknown timestamp")
	}
	if turns, _ := store.ReadAll(context.Background()); len(turns) != 3 {
		t.Fatalf("log must be unchanged, got %d turns", len(turns))
	}
}

func TestHistoryInvalidBody(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/history", bytes.NewReader([]byte("{broken")))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
