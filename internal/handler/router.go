package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/life-coach/backend/internal/handler/analyze"
	chatHandler "github.com/zhouzirui/life-coach/backend/internal/handler/chat"
	historyHandler "github.com/zhouzirui/life-coach/backend/internal/handler/history"
	"github.com/zhouzirui/life-coach/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/life-coach/backend/internal/middleware"
	historyService "github.com/zhouzirui/life-coach/backend/internal/service/history"
	"github.com/zhouzirui/life-coach/backend/internal/service/relay"
	"github.com/zhouzirui/life-coach/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(store historyService.Store, upstream relay.Completer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		api.NotFound(func(w http.ResponseWriter, r *http.Request) {
			utils.RespondError(w, http.StatusNotFound, "api endpoint not found")
		})
		api.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			utils.RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
		})

		chatHandler.New(store, upstream).RegisterRoutes(api)
		historyHandler.New(store).RegisterRoutes(api)
		analyze.New(store).RegisterRoutes(api)
		ws.New(store, upstream).RegisterRoutes(api)
	})

	return r
}
