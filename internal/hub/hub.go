package hub

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juannacho112/multivf-server/internal/auth"
	"github.com/juannacho112/multivf-server/internal/engine"
	"github.com/juannacho112/multivf-server/internal/match"
	"github.com/juannacho112/multivf-server/internal/storage"
)

var (
	ErrNotFound      = errors.New("match not found")
	ErrAlreadyQueued = errors.New("already in matchmaking queue")
)

type HubMsg interface{ isHubMsg() }

type CreateMatch struct {
	Host    auth.Identity
	Private bool
	Reply   chan CreateReply
}

type CreateReply struct {
	Match *match.Match
	Seat  engine.Seat
	Err   error
}

type GetMatch struct {
	Code  string
	Reply chan *match.Match
}

type RemoveMatch struct {
	Code string
}

type JoinQueue struct {
	Identity auth.Identity
	Reply    chan QueueResult
}

// LeaveQueue replies whether the entry was still waiting. False means the
// entry was already paired (or never present) and its JoinQueue reply stands.
type LeaveQueue struct {
	UserID uuid.UUID
	Reply  chan bool
}

type ShutdownHub struct{}

func (CreateMatch) isHubMsg() {}
func (GetMatch) isHubMsg()    {}
func (RemoveMatch) isHubMsg() {}
func (JoinQueue) isHubMsg()   {}
func (LeaveQueue) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

type QueueResult struct {
	Match *match.Match
	Seat  engine.Seat
	Err   error
}

type entry struct {
	m       *match.Match
	private bool
}

type queueEntry struct {
	identity auth.Identity
	reply    chan QueueResult
}

// Hub owns the match registry and the FIFO matchmaking pool. Like each match,
// it is a single loop over a typed inbox; matches in the registry run their
// own loops and are fully independent of each other.
type Hub struct {
	inbox   chan HubMsg
	matches map[string]entry
	queue   []queueEntry
	repo    storage.Repo
	log     *zap.Logger
	rng     *rand.Rand
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, repo storage.Repo, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		matches: make(map[string]entry),
		repo:    repo,
		log:     log,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateMatch:
				msg.Reply <- h.createMatch(msg.Host, msg.Private)

			case GetMatch:
				if e, ok := h.matches[msg.Code]; ok {
					msg.Reply <- e.m
				} else {
					msg.Reply <- nil
				}

			case RemoveMatch:
				delete(h.matches, msg.Code)

			case JoinQueue:
				h.handleJoinQueue(msg)

			case LeaveQueue:
				msg.Reply <- h.removeFromQueue(msg.UserID)

			case ShutdownHub:
				for _, e := range h.matches {
					e.m.Inbox() <- match.Shutdown{}
				}
				clear(h.matches)
				h.cancel()
			}
		}
	}
}

func (h *Hub) createMatch(host auth.Identity, private bool) CreateReply {
	var code string
	for {
		c, err := GenerateCode()
		if err != nil {
			return CreateReply{Seat: engine.SeatNone, Err: err}
		}
		if _, taken := h.matches[c]; !taken {
			code = c
			break
		}
		h.log.Debug("join code collision, regenerating", zap.String("code", c))
	}

	id := uuid.New()
	initial := engine.NewState(
		engine.BuildDeck(h.rng, engine.DefaultDeckSize),
		engine.BuildDeck(h.rng, engine.DefaultDeckSize),
	)
	m := match.New(h.ctx, id, code, initial, h.repo, h.log, func(closed *match.Match) {
		// Called from the match loop; the inbox send keeps registry
		// mutation on the hub loop.
		h.inbox <- RemoveMatch{Code: closed.Code()}
	})
	h.matches[code] = entry{m: m, private: private}

	seat, err := m.JoinIdentity(host)
	if err != nil {
		return CreateReply{Match: m, Seat: engine.SeatNone, Err: err}
	}
	h.log.Info("match created", zap.String("code", code), zap.Bool("private", private))
	return CreateReply{Match: m, Seat: seat}
}

func (h *Hub) handleJoinQueue(msg JoinQueue) {
	for _, q := range h.queue {
		if q.identity.UserID == msg.Identity.UserID {
			msg.Reply <- QueueResult{Seat: engine.SeatNone, Err: ErrAlreadyQueued}
			return
		}
	}

	if len(h.queue) == 0 {
		h.queue = append(h.queue, queueEntry{identity: msg.Identity, reply: msg.Reply})
		return
	}

	// Pair with the oldest waiting entry.
	head := h.queue[0]
	h.queue = h.queue[1:]

	created := h.createMatch(head.identity, false)
	if created.Err != nil {
		head.reply <- QueueResult{Seat: engine.SeatNone, Err: created.Err}
		msg.Reply <- QueueResult{Seat: engine.SeatNone, Err: created.Err}
		return
	}
	seat, err := created.Match.JoinIdentity(msg.Identity)
	head.reply <- QueueResult{Match: created.Match, Seat: created.Seat}
	msg.Reply <- QueueResult{Match: created.Match, Seat: seat, Err: err}
}

func (h *Hub) removeFromQueue(userID uuid.UUID) bool {
	for i, q := range h.queue {
		if q.identity.UserID == userID {
			h.queue = append(h.queue[:i], h.queue[i+1:]...)
			return true
		}
	}
	return false
}

// FindByCode resolves a join code; nil means unknown.
func (h *Hub) FindByCode(code string) *match.Match {
	reply := make(chan *match.Match, 1)
	h.inbox <- GetMatch{Code: code, Reply: reply}
	return <-reply
}

// Create makes a room with the host pre-seated.
func (h *Hub) Create(host auth.Identity, private bool) (*match.Match, engine.Seat, error) {
	reply := make(chan CreateReply, 1)
	h.inbox <- CreateMatch{Host: host, Private: private, Reply: reply}
	r := <-reply
	return r.Match, r.Seat, r.Err
}

// JoinMatchmaking blocks until the identity is paired or ctx is canceled.
// Cancellation removes the entry from the pool; a pairing that raced the
// cancellation still wins.
func (h *Hub) JoinMatchmaking(ctx context.Context, identity auth.Identity) (QueueResult, error) {
	reply := make(chan QueueResult, 1)
	h.inbox <- JoinQueue{Identity: identity, Reply: reply}

	select {
	case res := <-reply:
		return res, res.Err
	case <-ctx.Done():
		removed := make(chan bool, 1)
		h.inbox <- LeaveQueue{UserID: identity.UserID, Reply: removed}
		if <-removed {
			return QueueResult{Seat: engine.SeatNone}, ctx.Err()
		}
		// The pairing beat the cancellation; its result stands so the
		// opponent is not left seated against a ghost.
		res := <-reply
		return res, res.Err
	}
}
