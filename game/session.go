package game

import (
	"errors"
	"math/rand"

	"github.com/blabu/prsiService/deck"
	"github.com/blabu/prsiService/dto"
	"github.com/blabu/prsiService/parser"

	"github.com/google/uuid"

	log "github.com/blabu/prsiService/logWrapper"
)

const initialHandSize = 5

// Session - one paired two player game. A slot is free when both player
// references are nil. Every method below expects the registry lock held.
type Session struct {
	ID               uuid.UUID
	Players          [2]*Player
	Draw             *deck.Deck
	Discard          *deck.Deck
	CurrentTurn      int // index into Players
	ActiveSuit       dto.Suit
	ActiveValue      dto.Value
	SkipPending      bool // an ace was played, answer with an ace or forfeit
	ForceDrawPending bool // a 7 was played, answer with a 7 or draw the count
	ForceDrawCount   int
}

func newSession() *Session {
	return &Session{Draw: deck.New(), Discard: deck.New()}
}

// free - true when the slot holds no players
func (s *Session) free() bool {
	return s.Players[0] == nil && s.Players[1] == nil
}

// reset - wipes the session state and returns the slot to the free pool
func (s *Session) reset() {
	s.ID = uuid.Nil
	s.Players[0], s.Players[1] = nil, nil
	s.Draw.Reset()
	s.Discard.Reset()
	s.CurrentTurn = 0
	s.ActiveSuit, s.ActiveValue = 0, 0
	s.SkipPending = false
	s.ForceDrawPending = false
	s.ForceDrawCount = 0
}

// Start - deals a fresh game: shuffled draw pile, one card flipped to seed
// the discard pile and the active suit and value, five cards to each hand,
// random starting turn, full state pushed to both players. An exhausted
// deck during setup is an invariant violation, the deck holds 32 cards and
// dealing consumes 11.
func (s *Session) Start() error {
	s.ID = uuid.New()
	s.Draw = deck.NewShuffled()
	s.Discard.Reset()
	s.SkipPending = false
	s.ForceDrawPending = false
	s.ForceDrawCount = 0

	first, ok := s.Draw.Pop()
	if !ok {
		return errors.New("draw deck empty before dealing")
	}
	s.Discard.Push(first)
	s.ActiveSuit, s.ActiveValue = first.Suit, first.Value

	for _, p := range s.Players {
		p.Hand = p.Hand[:0]
		for j := 0; j < initialHandSize; j++ {
			c, ok := s.Draw.Pop()
			if !ok {
				return errors.New("draw deck exhausted while dealing initial hands")
			}
			p.Hand = append(p.Hand, c)
		}
	}

	s.CurrentTurn = rand.Intn(2)
	s.broadcastState()
	log.Infof("Session %s started: %q vs %q, %q opens",
		s.ID, s.Players[0].Username, s.Players[1].Username, s.Players[s.CurrentTurn].Username)
	return nil
}

// playCard - validates and applies one card play. Rejections answer the
// player with an invalid response and mutate nothing. Returns true when
// the play emptied the hand; the caller finishes the match, no effect
// processing or turn switch happens after a winning card.
func (s *Session) playCard(p *Player, card dto.Card) (won bool) {
	// Skip is checked before force draw, a 7 is unplayable while an
	// unanswered ace is on the table.
	if s.SkipPending && card.Value != dto.ValueAce {
		p.send(parser.MsgCardPlayedInvalid)
		return false
	}
	if s.ForceDrawPending && card.Value != dto.Value7 {
		p.send(parser.MsgCardPlayedInvalid)
		return false
	}
	if card.Suit != s.ActiveSuit && card.Value != s.ActiveValue {
		p.send(parser.MsgCardPlayedInvalid)
		return false
	}
	if !p.removeFromHand(card) {
		p.send(parser.MsgCardPlayedInvalid)
		return false
	}

	s.ActiveSuit, s.ActiveValue = card.Suit, card.Value
	s.Discard.Push(card)

	won = len(p.Hand) == 0
	p.send(parser.FormCardPlayedValid(card, won))
	opp := s.opponentOf(p)
	if opp != nil {
		opp.send(parser.FormCardPlayedUpdate(card))
	}
	if won {
		return true
	}

	switch card.Value {
	case dto.Value7:
		s.ForceDrawPending = true
		s.ForceDrawCount += 2
		log.Infof("Session %s: force draw count now %d", s.ID, s.ForceDrawCount)
		if opp != nil {
			opp.send(parser.MsgForceDrawPending)
		}
	case dto.ValueAce:
		s.SkipPending = true
		if opp != nil {
			opp.send(parser.MsgSkipPending)
		}
	case dto.ValueQueen:
		// Turn holds until the suit change arrives.
		return false
	}
	s.switchTurn()
	return false
}

// changeSuit - the follow up to a queen play. Sets the active suit,
// notifies both players and hands the turn over.
func (s *Session) changeSuit(p *Player, suit dto.Suit) {
	s.ActiveSuit = suit
	for _, q := range s.Players {
		if q != nil {
			q.send(parser.FormSuitUpdate(suit))
		}
	}
	log.Infof("Session %s: active suit changed to %s by %q", s.ID, suit, p.Username)
	s.switchTurn()
}

// drawCard - pops the top draw card into the hand, reshuffling the discard
// pile in place first when the draw pile is empty. Forced draws pay off a
// pending force draw count and leave the turn switch to the caller.
func (s *Session) drawCard(p *Player, forced bool) error {
	if s.Draw.Empty() {
		s.Draw.RefillFromDiscard(s.Discard)
		log.Infof("Session %s: discard pile reshuffled into draw pile", s.ID)
	}
	c, ok := s.Draw.Pop()
	if !ok {
		return errors.New("no card left to draw after reshuffle")
	}
	p.Hand = append(p.Hand, c)
	p.send(parser.FormDrawSuccess(c))

	if s.ForceDrawPending {
		s.ForceDrawCount--
		if s.ForceDrawCount <= 0 {
			s.ForceDrawPending = false
			s.ForceDrawCount = 0
		}
	}

	if opp := s.opponentOf(p); opp != nil {
		opp.send(parser.MsgCardDrawnUpdate)
	}
	if !forced {
		s.switchTurn()
	}
	return nil
}

// skipTurn - the forfeit answer to a pending skip. Without a pending skip
// the message changes nothing.
func (s *Session) skipTurn(p *Player) {
	if !s.SkipPending {
		return
	}
	s.SkipPending = false
	s.switchTurn()
}

// forceDraw - pays off the whole accumulated force draw count as one batch
// of forced draws, then switches the turn once.
func (s *Session) forceDraw(p *Player) error {
	if !s.ForceDrawPending || s.ForceDrawCount <= 0 {
		return nil
	}
	count := s.ForceDrawCount
	for i := 0; i < count; i++ {
		if err := s.drawCard(p, true); err != nil {
			return err
		}
	}
	s.switchTurn()
	return nil
}

// switchTurn - advances the turn pointer and tells every connected player
// whether the turn is now theirs
func (s *Session) switchTurn() {
	s.CurrentTurn = (s.CurrentTurn + 1) % 2
	for i, p := range s.Players {
		if p == nil || p.Conn == nil {
			continue
		}
		p.send(parser.FormTurnSwitch(i == s.CurrentTurn))
	}
}

// broadcastState - pushes the full state line to both connected players
func (s *Session) broadcastState() {
	for _, p := range s.Players {
		s.sendState(p)
	}
}

// sendState - the full state line for one player: their hand, the active
// discard card, the opponent card count, the turn and any pending effect
func (s *Session) sendState(p *Player) {
	idx := s.playerIndex(p)
	if idx < 0 || p.Conn == nil {
		return
	}
	opp := s.Players[(idx+1)%2]
	opponentCards := 0
	if opp != nil {
		opponentCards = len(opp.Hand)
	}
	marker := ""
	if s.SkipPending {
		marker = "SKIP_PENDING"
	} else if s.ForceDrawCount > 0 {
		marker = "FORCE_DRAW_PENDING"
	}
	discard := dto.Card{Suit: s.ActiveSuit, Value: s.ActiveValue}
	p.send(parser.FormGameState(idx+1, p.Hand, discard, opponentCards, s.CurrentTurn == idx, marker))
}

// opponentOf - the other player reference, may be nil on a torn session
func (s *Session) opponentOf(p *Player) *Player {
	if s.Players[0] == p {
		return s.Players[1]
	}
	return s.Players[0]
}

func (s *Session) playerIndex(p *Player) int {
	for i, q := range s.Players {
		if q == p {
			return i
		}
	}
	return -1
}
