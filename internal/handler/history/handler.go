package history

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/life-coach/backend/internal/model/chat"
	historyservice "github.com/zhouzirui/life-coach/backend/internal/service/history"
	"github.com/zhouzirui/life-coach/backend/pkg/utils"
)

// Handler 历史记录接口的HTTP处理器
type Handler struct {
	store historyservice.Store
}

// New 创建历史记录处理器
func New(store historyservice.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册历史记录相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/history", h.handleHistory)
	r.Post("/delete", h.handleDelete)
}

// handleHistory 返回历史记录，支持关键词搜索与情绪过滤。
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Search  string `json:"search"`
		Emotion string `json:"emotion"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	turns, err := h.store.ReadAll(r.Context())
	if err != nil {
		log.Printf("[history] read failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to read history")
		return
	}

	utils.RespondJSON(w, http.StatusOK, filterTurns(turns, payload.Search, payload.Emotion))
}

// handleDelete 按时间戳删除一条记录；无匹配也返回成功。
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Timestamp string `json:"timestamp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	found, err := h.store.DeleteByTimestamp(r.Context(), payload.Timestamp)
	if err != nil {
		log.Printf("[history] delete failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete history entry")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]bool{"deleted": found})
}

// filterTurns applies case-insensitive substring search over user and
// assistant text plus an optional exact emotion match.
func filterTurns(turns []chat.Turn, search, emotionFilter string) []chat.Turn {
	result := make([]chat.Turn, 0, len(turns))

	keyword := strings.ToLower(strings.TrimSpace(search))
	for _, turn := range turns {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(turn.User), keyword) &&
			!strings.Contains(strings.ToLower(turn.Assistant), keyword) {
			continue
		}
		if emotionFilter != "" && turn.Emotion != emotionFilter {
			continue
		}
		result = append(result, turn)
	}

	return result
}
