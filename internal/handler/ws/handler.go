package ws

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/life-coach/backend/internal/model/chat"
	"github.com/zhouzirui/life-coach/backend/internal/service/history"
	"github.com/zhouzirui/life-coach/backend/internal/service/relay"
)

// Handler WebSocket聊天处理器：一个连接上可以连续进行多个回合，
// 每个回合复用与SSE完全相同的事件序列。
type Handler struct {
	store    history.Store
	upstream relay.Completer
	upgrader websocket.Upgrader
}

// New 创建WebSocket处理器
func New(store history.Store, upstream relay.Completer) *Handler {
	return &Handler{
		store:    store,
		upstream: upstream,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Message string `json:"message"`
	Emotion string `json:"emotion,omitempty"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	log.Printf("[ws] connection %s opened", connID)

	sink := &wsSink{conn: conn}
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[ws] connection %s closed unexpectedly: %v", connID, err)
			}
			return
		}

		session := relay.NewSession(h.store, h.upstream, nil)
		if err := session.Run(r.Context(), sink, inbound.Message, inbound.Emotion); err != nil {
			log.Printf("[ws] connection %s session failed: %v", connID, err)
		}
	}
}

// wsSink writes stream events as JSON text frames.
type wsSink struct {
	conn *websocket.Conn
}

func (s *wsSink) Send(event chat.StreamEvent) error {
	return s.conn.WriteJSON(event)
}
