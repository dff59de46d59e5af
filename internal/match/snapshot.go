package match

import (
	"github.com/juannacho112/multivf-server/internal/engine"
	"github.com/juannacho112/multivf-server/pkg/types"
)

// BurnWindow caps how much of the burn pile is materialized for clients.
const BurnWindow = 8

// snapshotFor projects the canonical record for one seat. Deck order never
// leaves the store; there is no other hidden information in this game, so
// both players' public fields are always present.
func (m *Match) snapshotFor(seat engine.Seat) *types.Snapshot {
	s := m.state

	snap := &types.Snapshot{
		MatchID:             m.id.String(),
		Code:                m.code,
		Status:              string(m.status),
		Phase:               string(s.Phase),
		CurrentChallenger:   int(s.Challenger),
		ChallengeAttribute:  string(s.ChallengeAttribute),
		DeniedAttributes:    attrStrings(s.Denied),
		AvailableAttributes: attrStrings(s.Available),
		Round:               s.Round,
		PotSize:             s.PotSize,
		Winner:              int(m.currentWinner()),
		YourSeat:            int(seat),
	}

	snap.CardsInPlay = make([]*types.CardView, 2)
	for i := engine.SeatOne; i <= engine.SeatTwo; i++ {
		if c := s.CardsInPlay[i]; c != nil {
			view := cardView(*c)
			snap.CardsInPlay[i] = &view
		}
	}

	burn := s.BurnPile
	if len(burn) > BurnWindow {
		burn = burn[len(burn)-BurnWindow:]
	}
	snap.BurnPile = make([]types.CardView, 0, len(burn))
	for _, c := range burn {
		snap.BurnPile = append(snap.BurnPile, cardView(c))
	}

	for i := engine.SeatOne; i <= engine.SeatTwo; i++ {
		p := m.players[i]
		if p == nil {
			continue
		}
		ps := s.Players[i]
		view := types.PlayerView{
			Name:      p.identity.Name,
			Guest:     p.identity.Guest,
			Ready:     p.ready,
			Connected: p.outbox != nil,
			Points: types.PointsView{
				Skill:   ps.Points.Skill,
				Stamina: ps.Points.Stamina,
				Aura:    ps.Points.Aura,
			},
			TerrificTokenUsed: ps.TerrificUsed,
			DeckCount:         len(ps.Deck),
		}
		if len(ps.Deck) > 0 {
			top := cardView(ps.Deck[0])
			view.TopOfDeck = &top
		}
		snap.Players = append(snap.Players, view)
	}
	return snap
}

func cardView(c engine.Card) types.CardView {
	return types.CardView{
		ID:         c.ID,
		Name:       c.Name,
		Skill:      c.Skill,
		Stamina:    c.Stamina,
		Aura:       c.Aura,
		BaseTotal:  c.BaseTotal,
		FinalTotal: c.FinalTotal,
		Rarity:     string(c.Rarity),
		Character:  c.Character,
	}
}

func attrStrings(attrs []engine.Attribute) []string {
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, string(a))
	}
	return out
}
