package analyze

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/life-coach/backend/internal/analysis/emotion"
	historyservice "github.com/zhouzirui/life-coach/backend/internal/service/history"
	"github.com/zhouzirui/life-coach/backend/pkg/utils"
)

// Handler 情绪分析接口的HTTP处理器
type Handler struct {
	store historyservice.Store
}

// New 创建情绪分析处理器
func New(store historyservice.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册情绪分析路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.handleAnalyze)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	turns, err := h.store.ReadAll(r.Context())
	if err != nil {
		log.Printf("[analyze] read failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to read history")
		return
	}

	utils.RespondJSON(w, http.StatusOK, emotion.Aggregate(turns))
}
