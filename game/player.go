/*
Package game - the player registry, the session turn engine and the
liveness monitor. All mutable state lives in fixed pools owned by the
Registry and every mutation happens under its lock, whether it comes from
a connection goroutine or from a monitor pass.
*/
package game

import (
	"net"
	"time"

	"github.com/blabu/prsiService/dto"
	log "github.com/blabu/prsiService/logWrapper"
)

// State - player lifecycle state
type State uint8

const (
	StateIdle         State = iota // slot free or connected without a username
	StateWaiting                   // in queue
	StatePlaying                   // in game
	StateDisconnected              // in game, but disconnected
	StateGameOver
)

var stateNames = [...]string{"IDLE", "WAITING", "PLAYING", "DISCONNECTED", "GAMEOVER"}

func (s State) String() string {
	if int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Player - one participant slot. Conn is nil while the player is
// disconnected; Username survives disconnects as long as reconnection is
// still possible.
type Player struct {
	Conn                   net.Conn
	State                  State
	Hand                   []dto.Card
	Username               string
	MissedHeartbeats       int
	PendingHeartbeat       bool
	OpponentDisconnectTime time.Time // zero while the opponent is present
}

// Clear - full reset of the slot, returning it to the free pool.
// Safe to call twice, the second call is a no-op on an already clean slot.
func (p *Player) Clear() {
	p.Conn = nil
	p.State = StateIdle
	p.Hand = nil
	p.Username = ""
	p.MissedHeartbeats = 0
	p.PendingHeartbeat = false
	p.OpponentDisconnectTime = time.Time{}
}

// ResetForRequeue - clears every per game field but preserves the
// connection handle and the username, so the player can enter the queue
// again without reconnecting. Used after a victory and after a graceful
// timeout freed the session.
func (p *Player) ResetForRequeue() {
	conn, username := p.Conn, p.Username
	p.Clear()
	p.Conn = conn
	p.Username = username
}

// writeTimeout - upper bound on one outbound write. Every send happens
// under the registry lock, so a peer that stops reading must not be able
// to hold the lock past this.
var writeTimeout = 5 * time.Second

// write - bounded write of one protocol line. A hit deadline is a
// transport failure like any other write error.
func (p *Player) write(data []byte) error {
	if p.Conn == nil {
		return nil
	}
	p.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err := p.Conn.Write(data)
	return err
}

// send - synchronous write of one protocol line. A write error is only
// logged, the broken transport shows up on the next read or heartbeat.
func (p *Player) send(data []byte) {
	if err := p.write(data); err != nil {
		log.Warningf("Write to player %q failed: %v", p.Username, err)
	}
}

// removeFromHand - takes one card out of the hand, false when absent
func (p *Player) removeFromHand(c dto.Card) bool {
	for i, h := range p.Hand {
		if h == c {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}
