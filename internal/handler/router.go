package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/liuwen/deepchat/internal/auth"
	chatHandler "github.com/liuwen/deepchat/internal/handler/chat"
	middlewarePkg "github.com/liuwen/deepchat/internal/middleware"
	chatService "github.com/liuwen/deepchat/internal/service/chat"
	"github.com/liuwen/deepchat/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service, authenticator auth.Authenticator) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)
	r.Use(auth.Middleware(authenticator))

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		chatHandler.New(chatSvc).RegisterRoutes(api)
	})

	return r
}
