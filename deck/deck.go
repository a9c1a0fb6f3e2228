/*
Package deck - the ordered card stacks a session plays from. A session owns
two of them, the draw pile and the discard pile, and together with both
hands they always hold the full 32 card set exactly once.
*/
package deck

import (
	"math/rand"

	"github.com/blabu/prsiService/dto"
)

// Deck - a mutable stack of cards, top is the end of the slice
type Deck struct {
	cards []dto.Card
}

// NewShuffled - builds the full 32 card deck in random order
func NewShuffled() *Deck {
	cards := dto.AllCards()
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &Deck{cards: cards}
}

// New - an empty deck
func New() *Deck {
	return &Deck{}
}

// Pop - removes and returns the top card, false on an empty deck
func (d *Deck) Pop() (dto.Card, bool) {
	if len(d.cards) == 0 {
		return dto.Card{}, false
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c, true
}

// Push - places a card on top
func (d *Deck) Push(c dto.Card) {
	d.cards = append(d.cards, c)
}

// Top - peeks at the top card without removing it
func (d *Deck) Top() (dto.Card, bool) {
	if len(d.cards) == 0 {
		return dto.Card{}, false
	}
	return d.cards[len(d.cards)-1], true
}

func (d *Deck) Empty() bool { return len(d.cards) == 0 }

func (d *Deck) Len() int { return len(d.cards) }

// Reset - drops every card
func (d *Deck) Reset() {
	d.cards = d.cards[:0]
}

// RefillFromDiscard - moves every discard card except the topmost into d,
// preserving their relative order. The discard pile keeps only its top
// card. Used when a draw is requested from an empty draw pile.
func (d *Deck) RefillFromDiscard(discard *Deck) {
	if discard.Len() < 2 {
		return
	}
	top := discard.cards[len(discard.cards)-1]
	d.cards = append(d.cards, discard.cards[:len(discard.cards)-1]...)
	discard.cards = discard.cards[:0]
	discard.cards = append(discard.cards, top)
}

// Cards - a copy of the deck content, bottom first. For tests and state dumps.
func (d *Deck) Cards() []dto.Card {
	out := make([]dto.Card, len(d.cards))
	copy(out, d.cards)
	return out
}
