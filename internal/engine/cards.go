package engine

import (
	"math"
	"math/rand"
)

// Attribute names a comparable stat on a card. AttrTotal is synthetic: it is
// never pickable by a challenger directly, only forced by the terrific token
// or by exhausting every denial.
type Attribute string

const (
	AttrNone    Attribute = ""
	AttrSkill   Attribute = "skill"
	AttrStamina Attribute = "stamina"
	AttrAura    Attribute = "aura"
	AttrTotal   Attribute = "total"
)

// BaseAttributes are the challenger-pickable attributes, in display order.
var BaseAttributes = [...]Attribute{AttrSkill, AttrStamina, AttrAura}

// ParseAttribute maps wire strings to base attributes. Total is rejected on
// purpose: clients request it through the terrific token flag, never by name.
func ParseAttribute(s string) (Attribute, bool) {
	switch Attribute(s) {
	case AttrSkill, AttrStamina, AttrAura:
		return Attribute(s), true
	}
	return AttrNone, false
}

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Multiplier scales a card's base total into its final total. Applied once at
// catalog build time, never during play.
func (r Rarity) Multiplier() float64 {
	switch r {
	case RarityUncommon:
		return 1.1
	case RarityRare:
		return 1.25
	case RarityEpic:
		return 1.4
	case RarityLegendary:
		return 1.6
	default:
		return 1.0
	}
}

// DeckCost is the deck-building weight of the tier.
func (r Rarity) DeckCost() int {
	switch r {
	case RarityUncommon:
		return 2
	case RarityRare:
		return 3
	case RarityEpic:
		return 4
	case RarityLegendary:
		return 5
	default:
		return 1
	}
}

// Card is immutable once built. Skill, stamina and aura each sit in [0, 25];
// FinalTotal is the rarity-scaled BaseTotal and is the value compared in
// total challenges.
type Card struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Skill      int    `json:"skill"`
	Stamina    int    `json:"stamina"`
	Aura       int    `json:"aura"`
	BaseTotal  int    `json:"base_total"`
	FinalTotal int    `json:"final_total"`
	Rarity     Rarity `json:"rarity"`
	Character  string `json:"character"`
	Unlocked   bool   `json:"unlocked"`
}

func (c Card) Value(attr Attribute) int {
	switch attr {
	case AttrSkill:
		return c.Skill
	case AttrStamina:
		return c.Stamina
	case AttrAura:
		return c.Aura
	case AttrTotal:
		return c.FinalTotal
	default:
		return 0
	}
}

func newCard(id, name, character string, skill, stamina, aura int, rarity Rarity, unlocked bool) Card {
	base := skill + stamina + aura
	return Card{
		ID:         id,
		Name:       name,
		Skill:      skill,
		Stamina:    stamina,
		Aura:       aura,
		BaseTotal:  base,
		FinalTotal: int(math.Round(float64(base) * rarity.Multiplier())),
		Rarity:     rarity,
		Character:  character,
		Unlocked:   unlocked,
	}
}

// catalog is the built-in card set. Characters repeat across rarity variants;
// BuildDeck allows at most one card per character in a deck. The legendary
// variants ship locked.
var catalog = []Card{
	newCard("aardvark-c", "Adventurous Aardvark", "Aardvark", 14, 10, 8, RarityCommon, true),
	newCard("aardvark-r", "Adventurous Aardvark", "Aardvark", 18, 13, 11, RarityRare, true),
	newCard("badger-c", "Bold Badger", "Badger", 9, 16, 7, RarityCommon, true),
	newCard("badger-u", "Bold Badger", "Badger", 11, 18, 9, RarityUncommon, true),
	newCard("cheetah-c", "Curious Cheetah", "Cheetah", 17, 8, 9, RarityCommon, true),
	newCard("cheetah-e", "Curious Cheetah", "Cheetah", 21, 12, 13, RarityEpic, true),
	newCard("dolphin-c", "Daring Dolphin", "Dolphin", 10, 12, 13, RarityCommon, true),
	newCard("dolphin-u", "Daring Dolphin", "Dolphin", 12, 14, 15, RarityUncommon, true),
	newCard("eagle-c", "Eager Eagle", "Eagle", 13, 9, 14, RarityCommon, true),
	newCard("eagle-r", "Eager Eagle", "Eagle", 16, 12, 17, RarityRare, true),
	newCard("fox-c", "Fearless Fox", "Fox", 15, 11, 10, RarityCommon, true),
	newCard("fox-u", "Fearless Fox", "Fox", 17, 13, 12, RarityUncommon, true),
	newCard("gecko-c", "Gracious Gecko", "Gecko", 8, 13, 15, RarityCommon, true),
	newCard("gecko-e", "Gracious Gecko", "Gecko", 12, 17, 19, RarityEpic, true),
	newCard("heron-c", "Honest Heron", "Heron", 11, 14, 11, RarityCommon, true),
	newCard("heron-r", "Honest Heron", "Heron", 14, 17, 14, RarityRare, true),
	newCard("ibex-c", "Intrepid Ibex", "Ibex", 12, 15, 9, RarityCommon, true),
	newCard("jaguar-c", "Jovial Jaguar", "Jaguar", 16, 10, 12, RarityCommon, true),
	newCard("tiger-l", "Tenacious Tiger", "Tiger", 22, 20, 21, RarityLegendary, false),
	newCard("octopus-l", "Optimistic Octopus", "Octopus", 20, 19, 24, RarityLegendary, false),
}

// Catalog returns a copy of the built-in card set.
func Catalog() []Card {
	return append([]Card{}, catalog...)
}

// DefaultDeckSize is the draw pile dealt to each seat of a fresh match.
const DefaultDeckSize = 8

// BuildDeck deals a shuffled draw pile from the unlocked catalog, at most one
// card per character. When a character has several unlocked variants one is
// chosen at random.
func BuildDeck(rng *rand.Rand, size int) []Card {
	byCharacter := make(map[string][]Card)
	characters := make([]string, 0, len(catalog))
	for _, c := range catalog {
		if !c.Unlocked {
			continue
		}
		if _, seen := byCharacter[c.Character]; !seen {
			characters = append(characters, c.Character)
		}
		byCharacter[c.Character] = append(byCharacter[c.Character], c)
	}

	rng.Shuffle(len(characters), func(i, j int) {
		characters[i], characters[j] = characters[j], characters[i]
	})
	if size > len(characters) {
		size = len(characters)
	}

	deck := make([]Card, 0, size)
	for _, ch := range characters[:size] {
		variants := byCharacter[ch]
		deck = append(deck, variants[rng.Intn(len(variants))])
	}
	return deck
}
