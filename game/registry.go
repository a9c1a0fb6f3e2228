package game

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/blabu/prsiService/dto"
	"github.com/blabu/prsiService/parser"
	"github.com/blabu/prsiService/store"

	log "github.com/blabu/prsiService/logWrapper"
)

// ErrProtocolViolation - the message was malformed for the player's state
// or arrived out of turn. Fatal for the connection, never retried.
var ErrProtocolViolation = errors.New("protocol violation")

// Registry - owns the fixed player and session pools. Connection
// goroutines and the monitor tasks all mutate them through its single lock.
type Registry struct {
	mu       sync.Mutex
	players  []*Player
	sessions []*Session
	db       store.DB // may be nil, results are then not recorded
}

// NewRegistry - allocates the pools. db may be nil when no result ledger
// is configured.
func NewRegistry(maxPlayers, maxSessions int, db store.DB) *Registry {
	r := &Registry{
		players:  make([]*Player, maxPlayers),
		sessions: make([]*Session, maxSessions),
		db:       db,
	}
	for i := range r.players {
		r.players[i] = &Player{}
	}
	for i := range r.sessions {
		r.sessions[i] = newSession()
	}
	return r
}

// Attach - binds a fresh connection to a free player slot. Returns nil
// when the pool is exhausted; nothing is allocated in that case and the
// caller simply closes the connection.
func (r *Registry) Attach(conn net.Conn) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.Conn == nil && p.State == StateIdle && p.Username == "" {
			p.Conn = conn
			return p
		}
	}
	log.Warningf("Player pool exhausted, refusing connection from %s", conn.RemoteAddr())
	return nil
}

// Dispatch - routes one decoded message through the state machine.
// Returns the player the connection now speaks for (reconnection moves a
// connection onto its old slot) and ErrProtocolViolation when the
// connection has to be dropped.
func (r *Registry) Dispatch(p *Player, msg dto.Message) (*Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch msg.Op {
	case dto.OpHeartbeat:
		// Liveness, not gameplay: accepted in any state.
		p.PendingHeartbeat = false
		p.MissedHeartbeats = 0
		return p, nil

	case dto.OpEnterQueue, dto.OpReconnect:
		if rejoined := r.reconnect(p, msg.Username); rejoined != nil {
			return rejoined, nil
		}
		if p.State != StateIdle {
			return p, ErrProtocolViolation
		}
		return p, r.enterQueue(p, msg.Username)

	case dto.OpPlayCard, dto.OpSuitChange, dto.OpDrawCard, dto.OpSkipMove, dto.OpForceDraw:
		if p.State != StatePlaying {
			return p, ErrProtocolViolation
		}
		s := r.sessionOf(p)
		if s == nil {
			return p, ErrProtocolViolation
		}
		if s.Players[s.CurrentTurn] != p {
			// Out of turn gameplay is the sole mutual exclusion
			// enforcement over the session's turn scoped state.
			return p, ErrProtocolViolation
		}
		return p, r.gameplay(s, p, msg)

	default:
		log.Warningf("Unhandled opcode from %q, disconnecting", p.Username)
		return p, ErrProtocolViolation
	}
}

func (r *Registry) gameplay(s *Session, p *Player, msg dto.Message) error {
	switch msg.Op {
	case dto.OpPlayCard:
		if won := s.playCard(p, msg.Card); won {
			r.finishMatch(s, p)
		}
	case dto.OpSuitChange:
		s.changeSuit(p, msg.Suit)
	case dto.OpDrawCard:
		if err := s.drawCard(p, false); err != nil {
			log.Errorf("Session %s: %v", s.ID, err)
			r.terminateSession(s, nil)
		}
	case dto.OpSkipMove:
		s.skipTurn(p)
	case dto.OpForceDraw:
		if err := s.forceDraw(p); err != nil {
			log.Errorf("Session %s: %v", s.ID, err)
			r.terminateSession(s, nil)
		}
	}
	return nil
}

// reconnect - scans the sessions for a disconnected player holding this
// username. On a hit the new connection replaces the stale one, the old
// slot returns to play and the temporary slot is freed.
func (r *Registry) reconnect(p *Player, username string) *Player {
	if username == "" {
		return nil
	}
	for _, s := range r.sessions {
		for i, q := range s.Players {
			if q == nil || q.State != StateDisconnected || q.Username != username {
				continue
			}
			q.Conn = p.Conn
			q.State = StatePlaying
			q.MissedHeartbeats = 0
			q.PendingHeartbeat = false
			q.OpponentDisconnectTime = time.Time{}
			if opp := s.Players[(i+1)%2]; opp != nil {
				opp.OpponentDisconnectTime = time.Time{}
			}
			p.Conn = nil
			p.Clear()
			log.Infof("Player %q reconnected to session %s", username, s.ID)
			s.sendState(q)
			return q
		}
	}
	return nil
}

// enterQueue - records the username on first entry, moves the player into
// the queue and pairs two waiting players into a free session slot.
func (r *Registry) enterQueue(p *Player, username string) error {
	if p.Username == "" {
		if username == "" {
			return ErrProtocolViolation
		}
		for _, q := range r.players {
			if q != p && q.State != StateIdle && q.Username == username {
				log.Warningf("Username %q already active, rejecting", username)
				return ErrProtocolViolation
			}
		}
		p.Username = username
	}
	p.State = StateWaiting
	if r.db != nil {
		if wins, losses, err := r.db.Record(p.Username); err == nil {
			log.Infof("Player %q queued (record %d-%d)", p.Username, wins, losses)
		}
	} else {
		log.Infof("Player %q queued", p.Username)
	}

	var opponent *Player
	for _, q := range r.players {
		if q != p && q.State == StateWaiting {
			opponent = q
			break
		}
	}
	if opponent == nil {
		return nil
	}

	s := r.freeSessionSlot()
	if s == nil {
		// Pool exhausted: both stay queued, a later queue entry retries.
		log.Warningf("Session pool exhausted, %q and %q keep waiting", p.Username, opponent.Username)
		return nil
	}
	s.Players[0] = p
	s.Players[1] = opponent
	p.State = StatePlaying
	opponent.State = StatePlaying
	if err := s.Start(); err != nil {
		log.Errorf("Session start failed: %v", err)
		s.reset()
		p.State = StateWaiting
		opponent.State = StateWaiting
	}
	return nil
}

// ConnectionLost - the read side of conn failed. Ignored when the player
// no longer owns conn (the monitor or a reconnect already replaced it).
func (r *Registry) ConnectionLost(p *Player, conn net.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.Conn != conn {
		return
	}
	log.Infof("Player %q dropped", p.Username)
	r.disconnectLocked(p)
}

// DropViolator - protocol violation: close the connection and run the same
// disconnect handling as a transport failure.
func (r *Registry) DropViolator(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.Warningf("Dropping player %q after protocol violation", p.Username)
	r.disconnectLocked(p)
}

// disconnectLocked - shared disconnect path. In queue and idle drops free
// the slot, in game drops mark the player disconnected and start the
// opponent's grace clock; when both sides are gone the session is cleared.
func (r *Registry) disconnectLocked(p *Player) {
	if p.Conn != nil {
		p.Conn.Close()
		p.Conn = nil
	}
	switch p.State {
	case StatePlaying:
		s := r.sessionOf(p)
		if s == nil {
			p.Clear()
			return
		}
		opp := s.opponentOf(p)
		if opp != nil && opp.State == StatePlaying {
			p.State = StateDisconnected
			opp.send(parser.MsgOpponentDisconnected)
			opp.OpponentDisconnectTime = time.Now()
			log.Infof("Player %q marked disconnected, grace clock started for %q", p.Username, opp.Username)
			return
		}
		// Opponent already gone, nobody left to wait for.
		log.Infof("Both players gone, clearing session %s", s.ID)
		r.clearSession(s)
	case StateDisconnected:
		// Already handled by an earlier drop.
	default:
		p.Clear()
	}
}

// finishMatch - a play emptied the winner's hand. Sends the terminal
// notices, records the result and recycles both slots and the session.
func (r *Registry) finishMatch(s *Session, winner *Player) {
	loser := s.opponentOf(winner)
	winner.send(parser.MsgGameOverVictory)
	if loser != nil {
		loser.send(parser.MsgGameOverDefeat)
	}
	loserName := ""
	if loser != nil {
		loserName = loser.Username
	}
	log.Infof("Session %s: %q won against %q", s.ID, winner.Username, loserName)
	r.recordResult(s, winner.Username, loserName)
	r.recyclePlayer(winner)
	if loser != nil {
		r.recyclePlayer(loser)
	}
	s.reset()
}

// terminateSession - tears a session down on a liveness failure or an
// internal error. blame, when set, names the player who caused it; the
// other side is recorded as the winner and reset for a requeue.
func (r *Registry) terminateSession(s *Session, blame *Player) {
	var survivor *Player
	if blame != nil {
		survivor = s.opponentOf(blame)
	}
	for _, p := range s.Players {
		if p == nil {
			continue
		}
		if p == survivor {
			p.send(parser.MsgSessionTerminated)
		} else if blame == nil {
			p.send(parser.MsgSessionTerminated)
		}
	}
	if survivor != nil && blame != nil {
		r.recordResult(s, survivor.Username, blame.Username)
	}
	for _, p := range s.Players {
		if p == nil {
			continue
		}
		if p == survivor {
			r.recyclePlayer(p)
		} else {
			if p.Conn != nil {
				p.Conn.Close()
			}
			p.Clear()
		}
	}
	log.Infof("Session %s terminated", s.ID)
	s.reset()
}

// recyclePlayer - keeps a connected player around for a requeue; a player
// with no connection left has nothing to preserve and is fully cleared.
func (r *Registry) recyclePlayer(p *Player) {
	if p.Conn != nil {
		p.ResetForRequeue()
	} else {
		p.Clear()
	}
}

// clearSession - both players abandoned the session, wipe everything
func (r *Registry) clearSession(s *Session) {
	for _, p := range s.Players {
		if p == nil {
			continue
		}
		if p.Conn != nil {
			p.Conn.Close()
		}
		p.Clear()
	}
	s.reset()
}

func (r *Registry) recordResult(s *Session, winner, loser string) {
	if r.db == nil || winner == "" || loser == "" {
		return
	}
	err := r.db.SaveResult(store.Result{
		MatchID: s.ID.String(),
		Winner:  winner,
		Loser:   loser,
		When:    time.Now(),
	})
	if err != nil {
		log.Errorf("Can not record result of session %s: %v", s.ID, err)
	}
}

// sessionOf - the live session holding this player reference
func (r *Registry) sessionOf(p *Player) *Session {
	for _, s := range r.sessions {
		if s.Players[0] == p || s.Players[1] == p {
			return s
		}
	}
	return nil
}

func (r *Registry) freeSessionSlot() *Session {
	for _, s := range r.sessions {
		if s.free() {
			return s
		}
	}
	return nil
}
