package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/juannacho112/multivf-server/internal/auth"
	"github.com/juannacho112/multivf-server/internal/hub"
	"github.com/juannacho112/multivf-server/internal/ws"
)

func SetupRoutes(h *hub.Hub, authSvc *auth.Service, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/matches", CreateMatch(h, authSvc, log))
	r.Post("/matchmaking", JoinMatchmaking(h, authSvc, log))
	r.Get("/ws", ws.Handler(h, authSvc, log))
	r.Get("/healthz", Healthz)
	return r
}
