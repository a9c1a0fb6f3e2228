package dto

import (
	"fmt"
	"strings"
)

// Suit - one of the four Prší card suits
type Suit uint8

const (
	SuitAcorn Suit = iota
	SuitBall
	SuitGreen
	SuitHeart
	suitCount
)

var suitNames = [...]string{"acorn", "ball", "green", "heart"}

func (s Suit) String() string {
	if int(s) >= len(suitNames) {
		return "unknown"
	}
	return suitNames[s]
}

// Value - card rank from 7 up to ace
type Value uint8

const (
	Value7 Value = iota
	Value8
	Value9
	Value10
	ValueJack
	ValueQueen
	ValueKing
	ValueAce
	valueCount
)

var valueNames = [...]string{"7", "8", "9", "10", "jack", "queen", "king", "ace"}

func (v Value) String() string {
	if int(v) >= len(valueNames) {
		return "unknown"
	}
	return valueNames[v]
}

// DeckSize - count of distinct cards in a full deck
const DeckSize = int(suitCount) * int(valueCount)

// Card - a single playing card. The wire form "<suit>_<value>" is produced
// and consumed only at the protocol boundary, internal logic compares the
// typed fields.
type Card struct {
	Suit  Suit
	Value Value
}

func (c Card) String() string {
	return c.Suit.String() + "_" + c.Value.String()
}

// ParseSuit - maps a wire suit token to its typed value
func ParseSuit(s string) (Suit, error) {
	for i, n := range suitNames {
		if n == s {
			return Suit(i), nil
		}
	}
	return 0, fmt.Errorf("unknown suit %q", s)
}

// ParseValue - maps a wire value token to its typed value
func ParseValue(s string) (Value, error) {
	for i, n := range valueNames {
		if n == s {
			return Value(i), nil
		}
	}
	return 0, fmt.Errorf("unknown value %q", s)
}

// ParseCard - decodes the "<suit>_<value>" wire form
func ParseCard(id string) (Card, error) {
	parts := strings.SplitN(id, "_", 2)
	if len(parts) != 2 {
		return Card{}, fmt.Errorf("malformed card id %q", id)
	}
	s, err := ParseSuit(parts[0])
	if err != nil {
		return Card{}, err
	}
	v, err := ParseValue(parts[1])
	if err != nil {
		return Card{}, err
	}
	return Card{Suit: s, Value: v}, nil
}

// AllCards - the 32 distinct cards in a fixed suit-major order
func AllCards() []Card {
	cards := make([]Card, 0, DeckSize)
	for s := Suit(0); s < suitCount; s++ {
		for v := Value(0); v < valueCount; v++ {
			cards = append(cards, Card{Suit: s, Value: v})
		}
	}
	return cards
}
