package chat

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/life-coach/backend/internal/model/chat"
	"github.com/zhouzirui/life-coach/backend/internal/service/history"
	"github.com/zhouzirui/life-coach/backend/internal/service/relay"
	"github.com/zhouzirui/life-coach/backend/pkg/utils"
)

// Handler 聊天接口的HTTP处理器：每个请求对应一次中继会话。
type Handler struct {
	store    history.Store
	upstream relay.Completer
}

// New 创建聊天处理器
func New(store history.Store, upstream relay.Completer) *Handler {
	return &Handler{store: store, upstream: upstream}
}

// RegisterRoutes 注册聊天相关的路由。GET 形式服务于 EventSource 这类
// 无法携带请求体的客户端。
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/chat", h.handleChat)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var message, emotionLabel string
	if r.Method == http.MethodGet {
		query := r.URL.Query()
		message = query.Get("message")
		emotionLabel = query.Get("emotion")
	} else {
		var payload struct {
			Message string `json:"message"`
			Emotion string `json:"emotion"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		message = payload.Message
		emotionLabel = payload.Emotion
	}

	// Reject empty input before the event stream is opened.
	if err := relay.Validate(message); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "message must not be empty")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)

	session := relay.NewSession(h.store, h.upstream, nil)
	if err := session.Run(r.Context(), &sseSink{w: w, flusher: flusher}, message, emotionLabel); err != nil {
		// The client already received an in-band error event.
		log.Printf("[chat] relay session failed: %v", err)
	}
}

// sseSink writes stream events as Server-Sent Events.
type sseSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s *sseSink) Send(event chat.StreamEvent) error {
	return utils.SendSSEChunk(s.w, s.flusher, event)
}
