package client

import (
	"github.com/juannacho112/multivf-server/internal/engine"
	"github.com/juannacho112/multivf-server/pkg/types"
)

// Predict optimistically advances a snapshot for an action this client just
// sent, using the same rules engine the server runs. Only pick/respond
// transitions are predicted; draws and resolution are server-driven. Callers
// must overwrite the predicted state with every authoritative snapshot, never
// merge.
func Predict(snap *types.Snapshot, msg types.ClientMessage) *types.Snapshot {
	if snap == nil {
		return nil
	}

	var act engine.Action
	switch msg.Type {
	case types.MsgSelectAttribute:
		attr, _ := engine.ParseAttribute(msg.Attribute)
		act = engine.Action{
			Type:             engine.ActionSelectAttribute,
			Seat:             engine.Seat(snap.YourSeat),
			Attribute:        attr,
			UseTerrificToken: msg.UseTerrificToken,
		}
	case types.MsgRespond:
		act = engine.Action{
			Type:   engine.ActionRespond,
			Seat:   engine.Seat(snap.YourSeat),
			Accept: msg.Accept,
		}
	default:
		return snap
	}

	next, ok := engine.Apply(stateFromSnapshot(snap), act)
	if !ok {
		return snap
	}

	out := *snap
	out.Phase = string(next.Phase)
	out.CurrentChallenger = int(next.Challenger)
	out.ChallengeAttribute = string(next.ChallengeAttribute)
	out.DeniedAttributes = attrStrings(next.Denied)
	out.AvailableAttributes = attrStrings(next.Available)
	return &out
}

// stateFromSnapshot rebuilds just enough engine state to run pick/respond
// transitions. Deck contents are unknown to clients and unused by those
// transitions.
func stateFromSnapshot(snap *types.Snapshot) engine.State {
	s := engine.State{
		Phase:              engine.Phase(snap.Phase),
		Challenger:         engine.Seat(snap.CurrentChallenger),
		ChallengeAttribute: engine.Attribute(snap.ChallengeAttribute),
		Denied:             parseAttrs(snap.DeniedAttributes),
		Available:          parseAttrs(snap.AvailableAttributes),
		Round:              snap.Round,
		PotSize:            snap.PotSize,
		Winner:             engine.SeatNone,
	}
	for i := 0; i < 2 && i < len(snap.CardsInPlay); i++ {
		if v := snap.CardsInPlay[i]; v != nil {
			card := cardFromView(*v)
			s.CardsInPlay[i] = &card
		}
	}
	for i := 0; i < 2 && i < len(snap.Players); i++ {
		s.Players[i].TerrificUsed = snap.Players[i].TerrificTokenUsed
		s.Players[i].Points = engine.Points{
			Skill:   snap.Players[i].Points.Skill,
			Stamina: snap.Players[i].Points.Stamina,
			Aura:    snap.Players[i].Points.Aura,
		}
	}
	return s
}

func cardFromView(v types.CardView) engine.Card {
	return engine.Card{
		ID:         v.ID,
		Name:       v.Name,
		Skill:      v.Skill,
		Stamina:    v.Stamina,
		Aura:       v.Aura,
		BaseTotal:  v.BaseTotal,
		FinalTotal: v.FinalTotal,
		Rarity:     engine.Rarity(v.Rarity),
		Character:  v.Character,
	}
}

func attrStrings(attrs []engine.Attribute) []string {
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, string(a))
	}
	return out
}

func parseAttrs(raw []string) []engine.Attribute {
	out := make([]engine.Attribute, 0, len(raw))
	for _, s := range raw {
		out = append(out, engine.Attribute(s))
	}
	return out
}
