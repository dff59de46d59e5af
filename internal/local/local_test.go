package local

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/juannacho112/multivf-server/internal/engine"
)

func newTestRng() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func testDeck(prefix string, n, skill, stamina, aura int) []engine.Card {
	deck := make([]engine.Card, n)
	for i := range deck {
		deck[i] = engine.Card{
			ID: prefix + string(rune('a'+i)), Name: prefix, Character: prefix + string(rune('a'+i)),
			Skill: skill, Stamina: stamina, Aura: aura,
			BaseTotal: skill + stamina + aura, FinalTotal: skill + stamina + aura,
			Rarity: engine.RarityCommon, Unlocked: true,
		}
	}
	return deck
}

// Drive the human seat with a trivial policy and let the zero-delay AI pace
// the rest; the duel must terminate by threshold or deck exhaustion.
func TestLocalGame_PlaysToCompletion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := NewGame(ctx, testDeck("p", 6, 20, 10, 10), testDeck("q", 6, 5, 5, 5), 0, nil)
	defer g.Stop()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("game never finished: %+v", g.State())
		default:
		}

		st := g.State()
		switch st.Phase {
		case engine.PhaseGameOver:
			if st.Winner != engine.SeatOne {
				t.Fatalf("stacked deck should win for seat one, got %v", st.Winner)
			}
			return
		case engine.PhaseChallengerPick:
			if st.Challenger == engine.SeatOne {
				g.SelectAttribute(engine.AttrSkill, false)
			}
		case engine.PhaseAcceptDeny:
			if st.Challenger.Other() == engine.SeatOne {
				g.Respond(true)
			}
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLocalGame_ResetRedealsAfterGameOver(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Empty-ish decks end on the first auto-draw.
	g := NewGame(ctx, testDeck("p", 1, 9, 9, 9), nil, 0, nil)
	defer g.Stop()

	deadline := time.After(2 * time.Second)
	for g.State().Phase != engine.PhaseGameOver {
		select {
		case <-deadline:
			t.Fatalf("exhausted deck should have ended the game")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	if st := g.State(); st.Winner != engine.SeatOne {
		t.Fatalf("opponent deck was empty, want seat one win, got %v", st.Winner)
	}

	if !g.Reset(testDeck("r", 2, 5, 5, 5), testDeck("s", 2, 5, 5, 5)) {
		t.Fatalf("reset from game over should apply")
	}
}

func TestAI_ChallengerPicksStrongestAvailable(t *testing.T) {
	s := engine.NewState(testDeck("p", 1, 1, 1, 1), testDeck("q", 1, 1, 1, 1))
	s, _ = engine.Apply(s, engine.Action{Type: engine.ActionDrawCards})
	s.Challenger = AISeat
	own := engine.Card{ID: "ai", Skill: 5, Stamina: 18, Aura: 7, BaseTotal: 30, FinalTotal: 30}
	opp := engine.Card{ID: "hu", Skill: 6, Stamina: 6, Aura: 6, BaseTotal: 18, FinalTotal: 18}
	s.CardsInPlay = [2]*engine.Card{&opp, &own}

	act, ok := nextAIAction(s, newTestRng())
	if !ok {
		t.Fatalf("AI should act as challenger")
	}
	if act.UseTerrificToken {
		// Margin 12 >= tokenMargin, also acceptable; but with the token
		// spent, later calls must fall back to attributes.
		s.Players[AISeat].TerrificUsed = true
		act, _ = nextAIAction(s, newTestRng())
	}
	if act.Attribute != engine.AttrStamina {
		t.Fatalf("want stamina (18 is strongest), got %v", act.Attribute)
	}
}

func TestAI_ResponderAcceptsOnlyWinningChallenges(t *testing.T) {
	s := engine.NewState(testDeck("p", 1, 1, 1, 1), testDeck("q", 1, 1, 1, 1))
	s, _ = engine.Apply(s, engine.Action{Type: engine.ActionDrawCards})
	s.Phase = engine.PhaseAcceptDeny
	s.Challenger = engine.SeatOne
	human := engine.Card{ID: "hu", Skill: 20, Stamina: 5, Aura: 5, BaseTotal: 30, FinalTotal: 30}
	ai := engine.Card{ID: "ai", Skill: 10, Stamina: 15, Aura: 5, BaseTotal: 30, FinalTotal: 30}
	s.CardsInPlay = [2]*engine.Card{&human, &ai}

	s.ChallengeAttribute = engine.AttrSkill
	act, _ := nextAIAction(s, newTestRng())
	if act.Accept {
		t.Fatalf("AI should deny a losing skill challenge")
	}

	s.ChallengeAttribute = engine.AttrStamina
	act, _ = nextAIAction(s, newTestRng())
	if !act.Accept {
		t.Fatalf("AI should accept a winning stamina challenge")
	}
}
