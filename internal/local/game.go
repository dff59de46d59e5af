package local

import (
	"context"
	"math/rand"
	"time"

	"github.com/juannacho112/multivf-server/internal/engine"
)

// Game runs an offline duel against the scripted opponent. One loop owns the
// state; user calls and the AI's delayed moves both arrive as inbox messages,
// so engine calls are never concurrent. The AI seat is always SeatTwo.

type msg interface{ isLocalMsg() }

type userAction struct {
	act   engine.Action
	reply chan bool
}

type aiMove struct {
	gen int
}

type getState struct {
	reply chan engine.State
}

func (userAction) isLocalMsg() {}
func (aiMove) isLocalMsg()     {}
func (getState) isLocalMsg()   {}

// StateFunc observes every applied transition.
type StateFunc func(engine.State)

type Game struct {
	inbox   chan msg
	state   engine.State
	think   time.Duration
	rng     *rand.Rand
	onState StateFunc
	// timerGen invalidates AI timers armed for a phase that has advanced.
	timerGen int

	ctx    context.Context
	cancel context.CancelFunc
}

const AISeat = engine.SeatTwo

func NewGame(parent context.Context, playerDeck, aiDeck []engine.Card, think time.Duration, onState StateFunc) *Game {
	ctx, cancel := context.WithCancel(parent)
	g := &Game{
		inbox:   make(chan msg, 16),
		state:   engine.NewState(playerDeck, aiDeck),
		think:   think,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		onState: onState,
		ctx:     ctx,
		cancel:  cancel,
	}
	go g.loop()
	g.inbox <- aiMove{gen: 0} // kick off the first draw
	return g
}

func (g *Game) SelectAttribute(attr engine.Attribute, useToken bool) bool {
	return g.submit(engine.Action{
		Type:             engine.ActionSelectAttribute,
		Seat:             engine.SeatOne,
		Attribute:        attr,
		UseTerrificToken: useToken,
	})
}

func (g *Game) Respond(accept bool) bool {
	return g.submit(engine.Action{Type: engine.ActionRespond, Seat: engine.SeatOne, Accept: accept})
}

func (g *Game) Draw() bool {
	return g.submit(engine.Action{Type: engine.ActionDrawCards, Seat: engine.SeatOne})
}

// Reset re-deals from game over. Only local games support this; online rooms
// close instead.
func (g *Game) Reset(playerDeck, aiDeck []engine.Card) bool {
	return g.submit(engine.Action{Type: engine.ActionReset, Decks: [2][]engine.Card{playerDeck, aiDeck}})
}

func (g *Game) State() engine.State {
	reply := make(chan engine.State, 1)
	g.inbox <- getState{reply: reply}
	return <-reply
}

func (g *Game) Stop() {
	g.cancel()
}

func (g *Game) submit(act engine.Action) bool {
	reply := make(chan bool, 1)
	select {
	case g.inbox <- userAction{act: act, reply: reply}:
		return <-reply
	case <-g.ctx.Done():
		return false
	}
}

func (g *Game) loop() {
	for {
		select {
		case <-g.ctx.Done():
			return

		case m := <-g.inbox:
			switch m := m.(type) {
			case userAction:
				m.reply <- g.apply(m.act)
			case aiMove:
				if m.gen != g.timerGen {
					break // stale timer, the phase already advanced
				}
				if act, ok := nextAIAction(g.state, g.rng); ok {
					g.apply(act)
				}
			case getState:
				m.reply <- g.state
			}
		}
	}
}

func (g *Game) apply(act engine.Action) bool {
	next, ok := engine.Apply(g.state, act)
	if !ok {
		return false
	}
	g.state = next
	g.timerGen++
	g.notify()

	// Resolution runs immediately, same as the authoritative store.
	if g.state.Phase == engine.PhaseResolve {
		if resolved, ok := engine.Apply(g.state, engine.Action{Type: engine.ActionResolve}); ok {
			g.state = resolved
			g.timerGen++
			g.notify()
		}
	}

	g.scheduleAI()
	return true
}

func (g *Game) notify() {
	if g.onState != nil {
		g.onState(g.state)
	}
}

// scheduleAI arms a thinking-time timer whenever the next move belongs to the
// AI. Draws are auto-paced so the round keeps moving between showdowns.
func (g *Game) scheduleAI() {
	if _, ok := nextAIAction(g.state, g.rng); !ok {
		return
	}
	gen := g.timerGen
	time.AfterFunc(g.think, func() {
		select {
		case g.inbox <- aiMove{gen: gen}:
		case <-g.ctx.Done():
		}
	})
}
