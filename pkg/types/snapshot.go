package types

// Snapshot is the read-only projection of a match sent to clients. It never
// carries a player's remaining deck order: only counts, the top-of-deck card
// for the draw animation, and a bounded recent slice of the burn pile.

type CardView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Skill      int    `json:"skill"`
	Stamina    int    `json:"stamina"`
	Aura       int    `json:"aura"`
	BaseTotal  int    `json:"base_total"`
	FinalTotal int    `json:"final_total"`
	Rarity     string `json:"rarity"`
	Character  string `json:"character"`
}

type PointsView struct {
	Skill   int `json:"skill"`
	Stamina int `json:"stamina"`
	Aura    int `json:"aura"`
}

type PlayerView struct {
	Name              string     `json:"name"`
	Guest             bool       `json:"guest"`
	Ready             bool       `json:"ready"`
	Connected         bool       `json:"connected"`
	Points            PointsView `json:"points"`
	TerrificTokenUsed bool       `json:"terrific_token_used"`
	DeckCount         int        `json:"deck_count"`
	TopOfDeck         *CardView  `json:"top_of_deck,omitempty"`
}

type Snapshot struct {
	MatchID             string       `json:"match_id"`
	Code                string       `json:"code"`
	Status              string       `json:"status"`
	Phase               string       `json:"phase"`
	CurrentChallenger   int          `json:"current_challenger"`
	ChallengeAttribute  string       `json:"challenge_attribute,omitempty"`
	DeniedAttributes    []string     `json:"denied_attributes"`
	AvailableAttributes []string     `json:"available_attributes"`
	CardsInPlay         []*CardView  `json:"cards_in_play"`
	BurnPile            []CardView   `json:"burn_pile"`
	Round               int          `json:"round"`
	PotSize             int          `json:"pot_size"`
	Winner              int          `json:"winner"`
	Players             []PlayerView `json:"players"`
	YourSeat            int          `json:"your_seat"`
}
