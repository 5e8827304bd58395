package http

import (
	"net/http"

	"github.com/SereneMind/SereneMind_Chat/backend/chat-server/internal/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(ws *handlers.WebSocketHandler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/api/v1/healthz", handlers.Health)

	r.Route("/api/v1/chat", func(r chi.Router) {
		// 匿名チャットのWebSocketエンドポイント
		r.Get("/ws", ws.HandleChat)
	})

	return r
}
