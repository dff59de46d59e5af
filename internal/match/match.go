package match

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juannacho112/multivf-server/internal/auth"
	"github.com/juannacho112/multivf-server/internal/engine"
	"github.com/juannacho112/multivf-server/internal/storage"
	"github.com/juannacho112/multivf-server/pkg/types"
)

var (
	ErrMatchFull     = errors.New("match is full")
	ErrAlreadyJoined = errors.New("identity already joined")
	ErrIllegalAction = errors.New("illegal action")
	ErrMatchOver     = errors.New("match is over")
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

type player struct {
	identity     auth.Identity
	ready        bool
	everAttached bool
	outbox       chan types.ServerMessage
}

// actionKey identifies the last applied client action for replay detection.
// The transport gives actions no ids, so a duplicate delivered after a
// reconnect is recognized by seat + message type and acknowledged as a no-op.
type actionKey struct {
	seat engine.Seat
	kind string
}

// Match owns the canonical record for one game. All mutation happens inside
// the single loop goroutine, so concurrent actions for the same match are
// serialized in receipt order; late arrivals for an advanced phase are
// rejected, never queued.
type Match struct {
	id      uuid.UUID
	code    string
	inbox   chan Msg
	status  Status
	state   engine.State
	players [2]*player
	winner  engine.Seat
	started bool
	version int

	lastApplied actionKey
	hasApplied  bool

	repo    storage.Repo
	log     *zap.Logger
	onClose func(*Match)

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, id uuid.UUID, code string, initial engine.State, repo storage.Repo, log *zap.Logger, onClose func(*Match)) *Match {
	ctx, cancel := context.WithCancel(parent)
	m := &Match{
		id:      id,
		code:    code,
		inbox:   make(chan Msg, 64),
		status:  StatusWaiting,
		state:   initial,
		winner:  engine.SeatNone,
		repo:    repo,
		log:     log.With(zap.String("match_id", id.String()), zap.String("code", code)),
		onClose: onClose,
		ctx:     ctx,
		cancel:  cancel,
	}
	go m.loop()
	return m
}

func (m *Match) ID() uuid.UUID     { return m.id }
func (m *Match) Code() string      { return m.code }
func (m *Match) Inbox() chan<- Msg { return m.inbox }

// JoinIdentity is a synchronous wrapper used by the HTTP/WS layer and the
// matchmaking pool.
func (m *Match) JoinIdentity(identity auth.Identity) (engine.Seat, error) {
	reply := make(chan JoinReply, 1)
	m.inbox <- Join{Identity: identity, Reply: reply}
	r := <-reply
	return r.Seat, r.Err
}

func (m *Match) loop() {
	for {
		select {
		case <-m.ctx.Done():
			m.shutdown()
			return

		case msg := <-m.inbox:
			switch msg := msg.(type) {
			case Join:
				m.handleJoin(msg)
			case Attach:
				m.handleAttach(msg)
			case Detach:
				m.handleDetach(msg)
			case FromClient:
				m.handleAction(msg)
			case GetSnapshot:
				msg.Reply <- m.snapshotFor(msg.Seat)
			case Shutdown:
				m.shutdown()
				return
			}
		}
	}
}

func (m *Match) handleJoin(msg Join) {
	for seat := engine.SeatOne; seat <= engine.SeatTwo; seat++ {
		if p := m.players[seat]; p != nil && p.identity.UserID == msg.Identity.UserID {
			msg.Reply <- JoinReply{Seat: seat, Err: ErrAlreadyJoined}
			return
		}
	}
	for seat := engine.SeatOne; seat <= engine.SeatTwo; seat++ {
		if m.players[seat] == nil {
			m.players[seat] = &player{identity: msg.Identity}
			if m.players[seat.Other()] != nil && m.status == StatusWaiting {
				// Second seat filled: the room is active regardless of
				// readiness; the draw gate is separate.
				m.status = StatusActive
			}
			m.commit()
			msg.Reply <- JoinReply{Seat: seat}
			return
		}
	}
	msg.Reply <- JoinReply{Seat: engine.SeatNone, Err: ErrMatchFull}
}

func (m *Match) handleAttach(msg Attach) {
	p := m.players[msg.Seat]
	if p == nil {
		close(msg.Outbox)
		return
	}
	if p.outbox != nil && p.outbox != msg.Outbox {
		// Replaced connection: close the old outbox so its writer exits.
		close(p.outbox)
	}
	rejoined := p.everAttached
	p.everAttached = true
	p.outbox = msg.Outbox
	m.sendTo(msg.Seat, types.ServerMessage{Type: types.MsgSnapshot, Version: m.version, Snapshot: m.snapshotFor(msg.Seat)})
	if rejoined {
		m.sendTo(msg.Seat.Other(), types.ServerMessage{Type: types.MsgOpponentReconnected})
	}
}

func (m *Match) handleDetach(msg Detach) {
	p := m.players[msg.Seat]
	if p == nil || p.outbox == nil || p.outbox != msg.Outbox {
		// Already detached, or a newer connection took the seat over.
		return
	}
	close(p.outbox)
	p.outbox = nil
	// Advisory only: a dropped connection never changes phase or forfeits.
	m.sendTo(msg.Seat.Other(), types.ServerMessage{Type: types.MsgOpponentDisconnected})
}

func (m *Match) handleAction(msg FromClient) {
	if m.status == StatusCompleted || m.status == StatusAbandoned {
		msg.Reply <- ErrMatchOver
		return
	}
	p := m.players[msg.Seat]
	if p == nil {
		msg.Reply <- ErrIllegalAction
		return
	}

	switch msg.Msg.Type {
	case types.MsgSetReady:
		if m.started {
			msg.Reply <- ErrIllegalAction
			return
		}
		p.ready = msg.Msg.Ready
		m.commit()
		msg.Reply <- nil

	case types.MsgDrawCards:
		if m.status != StatusActive || !m.bothReady() {
			msg.Reply <- ErrIllegalAction
			return
		}
		m.applyEngine(msg.Seat, msg.Msg.Type, engine.Action{Type: engine.ActionDrawCards, Seat: msg.Seat}, msg.Reply)

	case types.MsgSelectAttribute:
		attr, ok := engine.ParseAttribute(msg.Msg.Attribute)
		if !ok && !msg.Msg.UseTerrificToken {
			msg.Reply <- ErrIllegalAction
			return
		}
		m.applyEngine(msg.Seat, msg.Msg.Type, engine.Action{
			Type:             engine.ActionSelectAttribute,
			Seat:             msg.Seat,
			Attribute:        attr,
			UseTerrificToken: msg.Msg.UseTerrificToken,
		}, msg.Reply)

	case types.MsgRespond:
		m.applyEngine(msg.Seat, msg.Msg.Type, engine.Action{
			Type:   engine.ActionRespond,
			Seat:   msg.Seat,
			Accept: msg.Msg.Accept,
		}, msg.Reply)

	case types.MsgForfeit, types.MsgLeaveMatch:
		m.finish(StatusAbandoned, msg.Seat.Other(), "forfeit")
		msg.Reply <- nil

	default:
		msg.Reply <- ErrIllegalAction
	}
}

// applyEngine runs one action through the rules engine. The reply is sent
// only after the resulting snapshots are queued, so both sides observe the
// new phase before the sender can act again.
func (m *Match) applyEngine(seat engine.Seat, kind string, act engine.Action, reply chan<- error) {
	next, ok := engine.Apply(m.state, act)
	if !ok {
		if m.hasApplied && m.lastApplied == (actionKey{seat: seat, kind: kind}) {
			// Duplicate delivery after a reconnect: idempotent no-op.
			// Resend the snapshot instead of failing.
			m.sendTo(seat, types.ServerMessage{Type: types.MsgSnapshot, Version: m.version, Snapshot: m.snapshotFor(seat)})
			reply <- nil
			return
		}
		reply <- ErrIllegalAction
		return
	}

	m.state = next
	m.lastApplied = actionKey{seat: seat, kind: kind}
	m.hasApplied = true
	if act.Type == engine.ActionDrawCards {
		m.started = true
	}
	m.commit()

	// Resolution is server-driven: whenever a transition lands in the
	// resolve phase the outcome is applied immediately, as its own
	// broadcast so clients can animate the showdown.
	if m.state.Phase == engine.PhaseResolve {
		if resolved, ok := engine.Apply(m.state, engine.Action{Type: engine.ActionResolve}); ok {
			m.state = resolved
			m.commit()
		}
	}

	if m.state.Phase == engine.PhaseGameOver {
		m.finish(StatusCompleted, m.state.Winner, "victory")
	}
	reply <- nil
}

func (m *Match) bothReady() bool {
	return m.players[engine.SeatOne] != nil && m.players[engine.SeatOne].ready &&
		m.players[engine.SeatTwo] != nil && m.players[engine.SeatTwo].ready
}

// closeLinger is how long a finished match keeps its loop running: late
// actions still get ErrMatchOver and clients can drain the final broadcast
// before the outboxes close.
var closeLinger = 30 * time.Second

func (m *Match) finish(status Status, winner engine.Seat, reason string) {
	m.status = status
	m.winner = winner
	m.commit()
	m.broadcastAll(types.ServerMessage{Type: types.MsgMatchEnded, Winner: int(winner), Reason: reason})
	if m.onClose != nil {
		m.onClose(m)
	}
	time.AfterFunc(closeLinger, func() {
		select {
		case m.inbox <- Shutdown{}:
		case <-m.ctx.Done():
		}
	})
}

// commit persists the canonical record and queues snapshots to both seats.
func (m *Match) commit() {
	m.version++
	m.persist()
	for seat := engine.SeatOne; seat <= engine.SeatTwo; seat++ {
		m.sendTo(seat, types.ServerMessage{Type: types.MsgSnapshot, Version: m.version, Snapshot: m.snapshotFor(seat)})
	}
}

func (m *Match) persist() {
	raw, err := json.Marshal(m.state)
	if err != nil {
		m.log.Error("marshal state", zap.Error(err))
		return
	}
	rec := &storage.MatchRecord{
		ID:     m.id,
		Code:   m.code,
		Status: string(m.status),
		Winner: int(m.currentWinner()),
		Round:  m.state.Round,
		State:  raw,
	}
	if err := m.repo.Save(m.ctx, rec); err != nil {
		m.log.Error("persist match", zap.Error(err))
	}
}

func (m *Match) currentWinner() engine.Seat {
	if m.winner != engine.SeatNone {
		return m.winner
	}
	return m.state.Winner
}

func (m *Match) sendTo(seat engine.Seat, msg types.ServerMessage) {
	if !seat.Valid() {
		return
	}
	p := m.players[seat]
	if p == nil || p.outbox == nil {
		return
	}
	select {
	case p.outbox <- msg:
	default:
		// Slow or stuck connection: drop it, the client reconnects and
		// resyncs from the snapshot.
		close(p.outbox)
		p.outbox = nil
	}
}

func (m *Match) broadcastAll(msg types.ServerMessage) {
	for seat := engine.SeatOne; seat <= engine.SeatTwo; seat++ {
		m.sendTo(seat, msg)
	}
}

func (m *Match) shutdown() {
	for seat := engine.SeatOne; seat <= engine.SeatTwo; seat++ {
		if p := m.players[seat]; p != nil && p.outbox != nil {
			close(p.outbox)
			p.outbox = nil
		}
	}
	m.cancel()
}
