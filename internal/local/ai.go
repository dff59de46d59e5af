package local

import (
	"math/rand"

	"github.com/juannacho112/multivf-server/internal/engine"
)

// The opponent plays on open information: both in-play cards are public in
// this game, so the heuristics compare real values, not guesses.

// tokenMargin is the final-total lead at which the AI spends its terrific
// token instead of risking a denial cycle.
const tokenMargin = 10

// nextAIAction reports the move the scripted opponent wants to make in the
// current state, if it is its turn to act. Draws are AI-paced.
func nextAIAction(s engine.State, rng *rand.Rand) (engine.Action, bool) {
	switch s.Phase {
	case engine.PhaseDraw:
		return engine.Action{Type: engine.ActionDrawCards, Seat: AISeat}, true

	case engine.PhaseChallengerPick:
		if s.Challenger != AISeat {
			return engine.Action{}, false
		}
		return chooseChallenge(s, rng), true

	case engine.PhaseAcceptDeny:
		if s.Challenger.Other() != AISeat {
			return engine.Action{}, false
		}
		return chooseResponse(s), true

	default:
		return engine.Action{}, false
	}
}

func chooseChallenge(s engine.State, rng *rand.Rand) engine.Action {
	own := s.CardsInPlay[AISeat]
	opp := s.CardsInPlay[AISeat.Other()]

	if !s.Players[AISeat].TerrificUsed && own.FinalTotal-opp.FinalTotal >= tokenMargin {
		return engine.Action{Type: engine.ActionSelectAttribute, Seat: AISeat, UseTerrificToken: true}
	}

	// Strongest available attribute; ties broken at random so repeated
	// rounds don't look scripted.
	best := make([]engine.Attribute, 0, len(s.Available))
	bestVal := -1
	for _, attr := range s.Available {
		v := own.Value(attr)
		switch {
		case v > bestVal:
			bestVal = v
			best = best[:0]
			best = append(best, attr)
		case v == bestVal:
			best = append(best, attr)
		}
	}
	pick := best[rng.Intn(len(best))]
	return engine.Action{Type: engine.ActionSelectAttribute, Seat: AISeat, Attribute: pick}
}

func chooseResponse(s engine.State) engine.Action {
	own := s.CardsInPlay[AISeat]
	opp := s.CardsInPlay[AISeat.Other()]
	accept := own.Value(s.ChallengeAttribute) >= opp.Value(s.ChallengeAttribute)
	return engine.Action{Type: engine.ActionRespond, Seat: AISeat, Accept: accept}
}
