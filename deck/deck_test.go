package deck

import (
	"testing"

	"github.com/blabu/prsiService/dto"

	"github.com/stretchr/testify/assert"
)

func TestNewShuffledHoldsEveryCardOnce(t *testing.T) {
	assert := assert.New(t)
	d := NewShuffled()

	assert.Equal(dto.DeckSize, d.Len())
	seen := make(map[dto.Card]int)
	for _, c := range d.Cards() {
		seen[c]++
	}
	assert.Len(seen, dto.DeckSize)
	for c, n := range seen {
		assert.Equal(1, n, "card %s duplicated", c)
	}
}

func TestPopPushTop(t *testing.T) {
	assert := assert.New(t)
	d := New()

	_, ok := d.Pop()
	assert.False(ok)
	assert.True(d.Empty())

	a := dto.Card{Suit: dto.SuitHeart, Value: dto.Value7}
	b := dto.Card{Suit: dto.SuitBall, Value: dto.ValueAce}
	d.Push(a)
	d.Push(b)

	top, ok := d.Top()
	assert.True(ok)
	assert.Equal(b, top)
	assert.Equal(2, d.Len())

	got, ok := d.Pop()
	assert.True(ok)
	assert.Equal(b, got)
	got, ok = d.Pop()
	assert.True(ok)
	assert.Equal(a, got)
	assert.True(d.Empty())
}

func TestRefillFromDiscard(t *testing.T) {
	assert := assert.New(t)
	draw := New()
	discard := New()

	cards := []dto.Card{
		{Suit: dto.SuitAcorn, Value: dto.Value7},
		{Suit: dto.SuitBall, Value: dto.Value8},
		{Suit: dto.SuitGreen, Value: dto.Value9},
		{Suit: dto.SuitHeart, Value: dto.Value10},
	}
	for _, c := range cards {
		discard.Push(c)
	}
	before := discard.Len()

	draw.RefillFromDiscard(discard)

	// Draw pile got everything except the topmost, relative order kept.
	assert.Equal(before-1, draw.Len())
	assert.Equal(cards[:3], draw.Cards())

	// Discard keeps exactly the card that was on top.
	assert.Equal(1, discard.Len())
	top, _ := discard.Top()
	assert.Equal(cards[3], top)
}

func TestRefillFromDiscardNeedsTwoCards(t *testing.T) {
	assert := assert.New(t)
	draw := New()
	discard := New()
	discard.Push(dto.Card{Suit: dto.SuitHeart, Value: dto.ValueKing})

	draw.RefillFromDiscard(discard)

	assert.True(draw.Empty())
	assert.Equal(1, discard.Len())
}
