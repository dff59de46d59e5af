package engine

// The duel engine is a pure transition function over State. Apply never
// mutates its input and never fails: a malformed action (wrong phase, wrong
// seat, attribute not available, spent token) is a no-op that returns the
// input state unchanged, with applied=false so the caller can reject it.

type Seat int

const (
	SeatNone Seat = -1
	SeatOne  Seat = 0
	SeatTwo  Seat = 1
)

func (s Seat) Other() Seat {
	switch s {
	case SeatOne:
		return SeatTwo
	case SeatTwo:
		return SeatOne
	default:
		return SeatNone
	}
}

func (s Seat) Valid() bool { return s == SeatOne || s == SeatTwo }

type Phase string

const (
	PhaseDraw           Phase = "draw"
	PhaseChallengerPick Phase = "challengerPick"
	PhaseAcceptDeny     Phase = "acceptDeny"
	PhaseResolve        Phase = "resolve"
	PhaseGameOver       Phase = "gameOver"
)

// WinThreshold ends the match when any single attribute counter reaches it.
const WinThreshold = 7

// Points holds a player's accumulated attribute counters.
type Points struct {
	Skill   int `json:"skill"`
	Stamina int `json:"stamina"`
	Aura    int `json:"aura"`
}

func (p Points) Get(attr Attribute) int {
	switch attr {
	case AttrSkill:
		return p.Skill
	case AttrStamina:
		return p.Stamina
	case AttrAura:
		return p.Aura
	default:
		return 0
	}
}

func (p Points) gain(attr Attribute) Points {
	switch attr {
	case AttrSkill:
		p.Skill++
	case AttrStamina:
		p.Stamina++
	case AttrAura:
		p.Aura++
	}
	return p
}

func (p Points) Sum() int { return p.Skill + p.Stamina + p.Aura }

func (p Points) reachedThreshold() bool {
	return p.Skill >= WinThreshold || p.Stamina >= WinThreshold || p.Aura >= WinThreshold
}

// PlayerState is the engine's view of one seat: a draw pile (front = next
// draw), point counters, and the one-shot terrific token flag. Identity and
// readiness live outside the engine.
type PlayerState struct {
	Deck         []Card `json:"deck"`
	Points       Points `json:"points"`
	TerrificUsed bool   `json:"terrific_used"`
}

type State struct {
	Phase       Phase          `json:"phase"`
	Challenger  Seat           `json:"challenger"`
	Players     [2]PlayerState `json:"players"`
	CardsInPlay [2]*Card       `json:"cards_in_play"`
	// ChallengeAttribute is AttrNone between picks; Denied and Available
	// partition the base attribute set while a round is open.
	ChallengeAttribute Attribute   `json:"challenge_attribute"`
	Denied             []Attribute `json:"denied"`
	Available          []Attribute `json:"available"`
	BurnPile           []Card      `json:"burn_pile"`
	Round              int         `json:"round"`
	PotSize            int         `json:"pot_size"`
	Winner             Seat        `json:"winner"`
}

// NewState deals a fresh match: draw phase, round 1, pot 1, seat one
// challenging first.
func NewState(deckOne, deckTwo []Card) State {
	return State{
		Phase:      PhaseDraw,
		Challenger: SeatOne,
		Players: [2]PlayerState{
			{Deck: deckOne},
			{Deck: deckTwo},
		},
		ChallengeAttribute: AttrNone,
		Round:              1,
		PotSize:            1,
		Winner:             SeatNone,
	}
}

type ActionType string

const (
	ActionDrawCards       ActionType = "DrawCards"
	ActionSelectAttribute ActionType = "SelectAttribute"
	ActionRespond         ActionType = "Respond"
	ActionResolve         ActionType = "Resolve"
	ActionReset           ActionType = "Reset"
)

type Action struct {
	Type             ActionType
	Seat             Seat
	Attribute        Attribute
	UseTerrificToken bool
	Accept           bool
	// Decks is used by Reset only.
	Decks [2][]Card
}

// Apply advances the state machine. The returned bool reports whether the
// action applied; false means the input state is returned untouched.
func Apply(s State, a Action) (State, bool) {
	switch a.Type {
	case ActionDrawCards:
		return applyDraw(s)
	case ActionSelectAttribute:
		return applySelect(s, a)
	case ActionRespond:
		return applyRespond(s, a)
	case ActionResolve:
		return applyResolve(s)
	case ActionReset:
		return applyReset(s, a)
	default:
		return s, false
	}
}

func applyDraw(s State) (State, bool) {
	if s.Phase != PhaseDraw {
		return s, false
	}
	next := clone(s)

	// Deck exhaustion is a win condition, not an error.
	emptyOne := len(s.Players[SeatOne].Deck) == 0
	emptyTwo := len(s.Players[SeatTwo].Deck) == 0
	if emptyOne || emptyTwo {
		next.Phase = PhaseGameOver
		switch {
		case emptyOne && emptyTwo:
			next.Winner = leaderByPoints(s)
		case emptyOne:
			next.Winner = SeatTwo
		default:
			next.Winner = SeatOne
		}
		return next, true
	}

	for seat := SeatOne; seat <= SeatTwo; seat++ {
		card := next.Players[seat].Deck[0]
		next.Players[seat].Deck = next.Players[seat].Deck[1:]
		next.CardsInPlay[seat] = &card
	}
	next.ChallengeAttribute = AttrNone
	next.Denied = []Attribute{}
	next.Available = append([]Attribute{}, BaseAttributes[:]...)
	next.Phase = PhaseChallengerPick
	return next, true
}

func applySelect(s State, a Action) (State, bool) {
	if s.Phase != PhaseChallengerPick || a.Seat != s.Challenger {
		return s, false
	}
	next := clone(s)

	if a.UseTerrificToken {
		// One use per player per match; the opponent has no veto.
		if s.Players[a.Seat].TerrificUsed {
			return s, false
		}
		next.Players[a.Seat].TerrificUsed = true
		next.ChallengeAttribute = AttrTotal
		next.Phase = PhaseResolve
		return next, true
	}

	if !contains(s.Available, a.Attribute) {
		return s, false
	}
	next.ChallengeAttribute = a.Attribute
	next.Phase = PhaseAcceptDeny
	return next, true
}

func applyRespond(s State, a Action) (State, bool) {
	if s.Phase != PhaseAcceptDeny || a.Seat != s.Challenger.Other() {
		return s, false
	}
	if s.ChallengeAttribute == AttrNone {
		return s, false
	}
	next := clone(s)

	if a.Accept {
		next.Phase = PhaseResolve
		return next, true
	}

	// Denial: the attribute leaves the round's pool. Denials never touch
	// the pot.
	next.Denied = append(next.Denied, s.ChallengeAttribute)
	next.Available = remove(next.Available, s.ChallengeAttribute)
	if len(next.Available) == 0 {
		// A fully denied round is forced to a total showdown.
		next.ChallengeAttribute = AttrTotal
		next.Phase = PhaseResolve
		return next, true
	}
	next.Challenger = s.Challenger.Other()
	next.ChallengeAttribute = AttrNone
	next.Phase = PhaseChallengerPick
	return next, true
}

func applyResolve(s State) (State, bool) {
	if s.Phase != PhaseResolve {
		return s, false
	}
	if s.CardsInPlay[SeatOne] == nil || s.CardsInPlay[SeatTwo] == nil || s.ChallengeAttribute == AttrNone {
		return s, false
	}
	next := clone(s)

	attr := s.ChallengeAttribute
	valOne := s.CardsInPlay[SeatOne].Value(attr)
	valTwo := s.CardsInPlay[SeatTwo].Value(attr)

	// Both cards burn regardless of outcome, oldest first.
	next.BurnPile = append(next.BurnPile, *s.CardsInPlay[SeatOne], *s.CardsInPlay[SeatTwo])
	next.CardsInPlay = [2]*Card{}
	next.ChallengeAttribute = AttrNone
	next.Denied = nil
	next.Available = nil
	next.Round++

	if valOne == valTwo {
		// Tie: no points, the pot carries over and grows.
		next.PotSize++
		next.Challenger = s.Challenger.Other()
		next.Phase = PhaseDraw
		return next, true
	}

	winner := SeatOne
	if valTwo > valOne {
		winner = SeatTwo
	}
	if attr == AttrTotal {
		next.Players[winner].Points = next.Players[winner].Points.gain(AttrSkill).gain(AttrStamina).gain(AttrAura)
	} else {
		next.Players[winner].Points = next.Players[winner].Points.gain(attr)
	}

	if next.Players[winner].Points.reachedThreshold() {
		next.Winner = winner
		next.Phase = PhaseGameOver
		return next, true
	}

	next.PotSize = 1
	next.Challenger = s.Challenger.Other()
	next.Phase = PhaseDraw
	return next, true
}

// applyReset re-deals a fresh match. Valid only from game over; the
// authoritative store never issues it (local play only, the server closes the
// room instead).
func applyReset(s State, a Action) (State, bool) {
	if s.Phase != PhaseGameOver {
		return s, false
	}
	if len(a.Decks[SeatOne]) == 0 || len(a.Decks[SeatTwo]) == 0 {
		return s, false
	}
	return NewState(a.Decks[SeatOne], a.Decks[SeatTwo]), true
}

func leaderByPoints(s State) Seat {
	sumOne := s.Players[SeatOne].Points.Sum()
	sumTwo := s.Players[SeatTwo].Points.Sum()
	switch {
	case sumOne > sumTwo:
		return SeatOne
	case sumTwo > sumOne:
		return SeatTwo
	default:
		return SeatNone
	}
}

func clone(s State) State {
	next := s
	for seat := SeatOne; seat <= SeatTwo; seat++ {
		next.Players[seat].Deck = append([]Card{}, s.Players[seat].Deck...)
		if s.CardsInPlay[seat] != nil {
			card := *s.CardsInPlay[seat]
			next.CardsInPlay[seat] = &card
		}
	}
	next.Denied = append([]Attribute{}, s.Denied...)
	next.Available = append([]Attribute{}, s.Available...)
	next.BurnPile = append([]Card{}, s.BurnPile...)
	return next
}

func contains(attrs []Attribute, attr Attribute) bool {
	for _, a := range attrs {
		if a == attr {
			return true
		}
	}
	return false
}

func remove(attrs []Attribute, attr Attribute) []Attribute {
	out := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		if a != attr {
			out = append(out, a)
		}
	}
	return out
}
