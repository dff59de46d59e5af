package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juannacho112/multivf-server/pkg/types"
)

var (
	ErrNotConnected = errors.New("not connected")
	ErrUnreachable  = errors.New("no endpoint reachable")
)

const (
	// DialTimeout bounds each individual endpoint attempt.
	DialTimeout = 5 * time.Second
	// Reconnect backoff bounds.
	BackoffFloor = time.Second
	BackoffCeil  = 30 * time.Second
)

type Options struct {
	// Endpoint is the explicit production address; Origin is the page/app
	// origin when one exists. Both feed Candidates.
	Endpoint string
	Origin   string
	// Exactly one credential: a bearer Token, or Guest.
	Token string
	Guest bool
	// StateFile persists the preferred endpoint between launches.
	StateFile string
	Logger    *zap.Logger
}

type EventKind string

const (
	EventConnected    EventKind = "connected"
	EventDisconnected EventKind = "disconnected"
	EventError        EventKind = "error"
	EventMessage      EventKind = "message"
)

type Event struct {
	Kind     EventKind
	Endpoint string
	Err      error
	Msg      *types.ServerMessage
}

// Conn is one logical event channel to the session store for one match. It
// discovers a working endpoint, authenticates, reads server events, and
// reconnects forever with bounded backoff after a drop. Sends while
// disconnected are rejected, never buffered.
type Conn struct {
	opts Options
	code string
	log  *zap.Logger
	// guestID is the guest session presented on every dial; keeping it
	// stable is what lets a reconnecting guest reclaim its seat.
	guestID uuid.UUID

	events chan Event

	mu        sync.Mutex
	ws        *websocket.Conn
	connected bool

	rng    *rand.Rand
	ctx    context.Context
	cancel context.CancelFunc
}

// Connect races the candidate endpoints in priority order and returns once
// one completes a handshake; reconnection runs in the background from then
// on. All candidates failing is a hard error.
func Connect(ctx context.Context, opts Options, code string) (*Conn, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	cctx, cancel := context.WithCancel(ctx)
	c := &Conn{
		opts:    opts,
		code:    code,
		log:     opts.Logger,
		guestID: uuid.New(),
		events:  make(chan Event, 32),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		ctx:     cctx,
		cancel:  cancel,
	}

	ws, endpoint, err := c.dialAny(cctx)
	if err != nil {
		cancel()
		return nil, err
	}
	c.setConn(ws)
	c.emit(Event{Kind: EventConnected, Endpoint: endpoint})
	go c.run()
	return c, nil
}

func (c *Conn) Events() <-chan Event { return c.events }

// Send submits one gameplay action. While disconnected it fails immediately
// so the caller can surface the problem instead of desyncing.
func (c *Conn) Send(ctx context.Context, msg types.ClientMessage) error {
	c.mu.Lock()
	ws, ok := c.ws, c.connected
	c.mu.Unlock()
	if !ok || ws == nil {
		return ErrNotConnected
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, payload)
}

func (c *Conn) Close() {
	c.cancel()
	c.mu.Lock()
	if c.ws != nil {
		_ = c.ws.Close(websocket.StatusNormalClosure, "bye")
		c.ws = nil
	}
	c.connected = false
	c.mu.Unlock()
}

// dialAny walks the candidate list, preferred endpoint first, each attempt
// bounded by DialTimeout. A failed attempt is abandoned before the next
// starts, so no half-open connection survives the decision.
func (c *Conn) dialAny(ctx context.Context) (*websocket.Conn, string, error) {
	candidates := Candidates(c.opts.Endpoint, c.opts.Origin)
	if pref := loadPreferred(c.opts.StateFile); pref != "" {
		candidates = append([]string{pref}, removeString(candidates, pref)...)
	}

	var lastErr error
	for _, endpoint := range candidates {
		attemptCtx, cancel := context.WithTimeout(ctx, DialTimeout)
		ws, err := c.dial(attemptCtx, endpoint)
		cancel()
		if err != nil {
			c.log.Debug("endpoint failed", zap.String("endpoint", endpoint), zap.Error(err))
			lastErr = err
			continue
		}
		storePreferred(c.opts.StateFile, endpoint)
		return ws, endpoint, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no candidates")
	}
	return nil, "", fmt.Errorf("%w: %v", ErrUnreachable, lastErr)
}

func (c *Conn) dial(ctx context.Context, endpoint string) (*websocket.Conn, error) {
	target, header, err := c.dialTarget(endpoint)
	if err != nil {
		return nil, err
	}
	ws, _, err := websocket.Dial(ctx, target, &websocket.DialOptions{HTTPHeader: header})
	return ws, err
}

// dialTarget builds the handshake URL and headers. Exactly one of the two
// credentials goes on the wire; the guest session id is repeated verbatim on
// every re-dial.
func (c *Conn) dialTarget(endpoint string) (string, http.Header, error) {
	u, err := url.Parse(endpoint + "/ws")
	if err != nil {
		return "", nil, err
	}
	q := u.Query()
	q.Set("code", c.code)

	header := http.Header{}
	if c.opts.Token != "" {
		header.Set("Authorization", "Bearer "+c.opts.Token)
	} else {
		q.Set("guest", "1")
		q.Set("guest_id", c.guestID.String())
	}
	u.RawQuery = q.Encode()
	return u.String(), header, nil
}

func (c *Conn) run() {
	for {
		c.readLoop()
		if c.ctx.Err() != nil {
			close(c.events)
			return
		}

		c.setDisconnected()
		c.emit(Event{Kind: EventDisconnected})

		// Reconnect forever; the server resends the snapshot on attach
		// so there is nothing to replay from this side.
		delay := BackoffFloor
		for {
			select {
			case <-c.ctx.Done():
				close(c.events)
				return
			case <-time.After(c.jitter(delay)):
			}

			ws, endpoint, err := c.dialAny(c.ctx)
			if err == nil {
				c.setConn(ws)
				c.emit(Event{Kind: EventConnected, Endpoint: endpoint})
				break
			}
			c.emit(Event{Kind: EventError, Err: err})
			delay *= 2
			if delay > BackoffCeil {
				delay = BackoffCeil
			}
		}
	}
}

func (c *Conn) readLoop() {
	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()
	if ws == nil {
		return
	}
	for {
		_, data, err := ws.Read(c.ctx)
		if err != nil {
			return
		}
		var msg types.ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.emit(Event{Kind: EventError, Err: err})
			continue
		}
		c.emit(Event{Kind: EventMessage, Msg: &msg})
	}
}

func (c *Conn) setConn(ws *websocket.Conn) {
	c.mu.Lock()
	c.ws = ws
	c.connected = true
	c.mu.Unlock()
}

func (c *Conn) setDisconnected() {
	c.mu.Lock()
	if c.ws != nil {
		_ = c.ws.Close(websocket.StatusGoingAway, "reconnecting")
		c.ws = nil
	}
	c.connected = false
	c.mu.Unlock()
}

func (c *Conn) emit(ev Event) {
	select {
	case c.events <- ev:
	case <-c.ctx.Done():
	}
}

// jitter spreads reconnect attempts by up to a quarter of the delay.
func (c *Conn) jitter(d time.Duration) time.Duration {
	return d + time.Duration(c.rng.Int63n(int64(d)/4+1))
}

func removeString(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
