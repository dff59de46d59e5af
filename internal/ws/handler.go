package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/juannacho112/multivf-server/internal/auth"
	"github.com/juannacho112/multivf-server/internal/hub"
	"github.com/juannacho112/multivf-server/internal/match"
	"github.com/juannacho112/multivf-server/pkg/types"
)

const (
	writeTimeout = 3 * time.Second
	// readTimeout is the liveness bound: a connection silent for this long
	// is detached and must reconnect.
	readTimeout = 60 * time.Second
)

// Handler upgrades a client to the event channel for one match. The
// handshake requires exactly one of a bearer credential or guest=1; the seat
// is claimed before the upgrade so join failures stay plain HTTP errors.
func Handler(h *hub.Hub, authSvc *auth.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := authSvc.FromRequest(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		m := h.FindByCode(code)
		if m == nil {
			http.Error(w, "match not found", http.StatusNotFound)
			return
		}

		seat, err := m.JoinIdentity(identity)
		switch {
		case errors.Is(err, match.ErrAlreadyJoined):
			// Reconnect: the identity already holds this seat.
		case errors.Is(err, match.ErrMatchFull):
			http.Error(w, "match full", http.StatusConflict)
			return
		case err != nil:
			http.Error(w, "join failed", http.StatusInternalServerError)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		log.Info("client attached",
			zap.String("code", code),
			zap.Int("seat", int(seat)),
			zap.Bool("guest", identity.Guest))

		out := make(chan types.ServerMessage, 8)
		m.Inbox() <- match.Attach{Seat: seat, Outbox: out}
		defer func() { m.Inbox() <- match.Detach{Seat: seat, Outbox: out} }()

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, err := json.Marshal(msg)
				if err != nil {
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}

			reply := make(chan error, 1)
			m.Inbox() <- match.FromClient{Seat: seat, Msg: cm, Reply: reply}
			if err := <-reply; err != nil {
				// Rejections go to the sender only; accepted actions
				// already produced a broadcast.
				writeError(r.Context(), conn, err.Error())
			}
		}
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, msg string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: types.MsgError, Error: msg})
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
