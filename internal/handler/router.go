package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/L4Y3R/ai-agent-work-sample/internal/handler/chat"
	"github.com/L4Y3R/ai-agent-work-sample/internal/handler/stream"
	middlewarePkg "github.com/L4Y3R/ai-agent-work-sample/internal/middleware"
	chatService "github.com/L4Y3R/ai-agent-work-sample/internal/service/chat"
	"github.com/L4Y3R/ai-agent-work-sample/internal/web"
	"github.com/L4Y3R/ai-agent-work-sample/pkg/utils"
)

// NewRouter wires HTTP routes to the chat service. agentMode names the
// backend answering questions and is reported by /healthz.
func NewRouter(chatSvc *chatService.Service, agentMode string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chat.New(chatSvc, logger)
	streamHandler := stream.New(chatSvc, logger)

	respond := utils.NewResponder(logger)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"agent":    agentMode,
			"sessions": chatSvc.Len(),
		})
	})

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
	})

	r.Handle("/*", web.Handler())

	return r
}
