package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/juannacho112/multivf-server/internal/auth"
	"github.com/juannacho112/multivf-server/internal/hub"
)

type createRequest struct {
	Private bool `json:"private"`
}

type matchResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Seat int    `json:"seat"`
}

// CreateMatch issues a room with the caller pre-seated as host. The caller
// still attaches over /ws with the returned code.
func CreateMatch(h *hub.Hub, authSvc *auth.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := authSvc.FromRequest(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req) // empty body means defaults
		}

		m, seat, err := h.Create(identity, req.Private)
		if err != nil {
			log.Error("create match", zap.Error(err))
			http.Error(w, "failed to create match", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(matchResponse{
			ID:   m.ID().String(),
			Code: m.Code(),
			Seat: int(seat),
		})
	}
}

// JoinMatchmaking blocks until the caller is paired with the oldest waiting
// entry, or the request is canceled (which removes the caller from the pool).
func JoinMatchmaking(h *hub.Hub, authSvc *auth.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := authSvc.FromRequest(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		res, err := h.JoinMatchmaking(r.Context(), identity)
		if errors.Is(err, hub.ErrAlreadyQueued) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		if err != nil {
			// Client went away while waiting; nothing to answer.
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(matchResponse{
			ID:   res.Match.ID().String(),
			Code: res.Match.Code(),
			Seat: int(res.Seat),
		})
	}
}

func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
