package game

import (
	"time"

	"github.com/blabu/prsiService/parser"

	"go.uber.org/atomic"

	log "github.com/blabu/prsiService/logWrapper"
)

// Monitor - the two periodic liveness tasks. The heartbeat pass pings
// quiet connections and escalates missed pongs, the graceful pass evicts
// sessions whose opponent waited out the reconnect grace window. Both
// mutate the pools under the registry lock, the same discipline the
// connection goroutines follow.
type Monitor struct {
	reg *Registry

	HeartbeatPeriod  time.Duration
	GraceCheckPeriod time.Duration
	GraceWindow      time.Duration
	MaxMissed        int
	EnableHeartbeat  bool

	stopped *atomic.Bool
}

// NewMonitor - builds the monitor for a registry. graceWindow is how long
// a cleanly disconnected player's session survives; maxMissed is the
// missed heartbeat ceiling after which a session is terminated.
func NewMonitor(reg *Registry, heartbeatPeriod, graceCheckPeriod, graceWindow time.Duration, maxMissed int, enableHeartbeat bool) *Monitor {
	return &Monitor{
		reg:              reg,
		HeartbeatPeriod:  heartbeatPeriod,
		GraceCheckPeriod: graceCheckPeriod,
		GraceWindow:      graceWindow,
		MaxMissed:        maxMissed,
		EnableHeartbeat:  enableHeartbeat,
		stopped:          atomic.NewBool(false),
	}
}

// Run - starts the periodic tasks. They stop after Stop is called.
func (m *Monitor) Run() {
	if m.EnableHeartbeat {
		go m.loop(m.HeartbeatPeriod, m.heartbeatPass)
	}
	go m.loop(m.GraceCheckPeriod, m.gracefulPass)
}

// Stop - the running tasks finish their current pass and exit
func (m *Monitor) Stop() {
	m.stopped.Store(true)
}

func (m *Monitor) loop(period time.Duration, pass func()) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for !m.stopped.Load() {
		<-ticker.C
		pass()
	}
}

// heartbeatPass - one sweep over the player pool. An unanswered heartbeat
// counts as a miss: the first miss marks the player disconnected, releases
// the socket and notifies the opponent; reaching the ceiling terminates
// the whole session. Players with no heartbeat outstanding get a new one.
func (m *Monitor) heartbeatPass() {
	m.reg.mu.Lock()
	defer m.reg.mu.Unlock()
	for _, p := range m.reg.players {
		if p.State == StateIdle {
			continue
		}
		if p.Conn == nil && p.State != StateDisconnected {
			continue
		}
		if p.PendingHeartbeat {
			p.MissedHeartbeats++
			if p.MissedHeartbeats == 1 {
				m.firstMiss(p)
				if p.State == StateIdle {
					continue // the slot was freed
				}
			}
			if p.MissedHeartbeats >= m.MaxMissed {
				m.heartbeatCeiling(p)
			}
			continue
		}
		if p.Conn != nil {
			if err := p.write(parser.MsgHeartbeat); err != nil {
				log.Warningf("Heartbeat to %q failed: %v", p.Username, err)
				p.MissedHeartbeats++
			} else {
				p.PendingHeartbeat = true
			}
		}
	}
}

// firstMiss - the player went quiet. In queue drops free the slot, in game
// drops keep the slot for a reconnect and start the opponent's grace clock.
func (m *Monitor) firstMiss(p *Player) {
	log.Infof("Player %q missed a heartbeat", p.Username)
	if p.Conn != nil {
		p.Conn.Close()
		p.Conn = nil
	}
	if p.State != StatePlaying {
		p.Clear()
		return
	}
	s := m.reg.sessionOf(p)
	if s == nil {
		p.Clear()
		return
	}
	p.State = StateDisconnected
	if opp := s.opponentOf(p); opp != nil && opp.State == StatePlaying {
		opp.send(parser.MsgOpponentDisconnected)
		opp.OpponentDisconnectTime = time.Now()
	} else if opp == nil || opp.State == StateDisconnected {
		m.reg.clearSession(s)
	}
}

// heartbeatCeiling - the miss count hit the ceiling, the session dies
func (m *Monitor) heartbeatCeiling(p *Player) {
	log.Infof("Player %q exceeded %d missed heartbeats", p.Username, m.MaxMissed)
	s := m.reg.sessionOf(p)
	if s == nil {
		p.Clear()
		return
	}
	m.reg.terminateSession(s, p)
}

// gracefulPass - evicts sessions whose disconnected player's opponent
// waited past the grace window. The opponent wins by forfeit and is reset
// so they can requeue without reconnecting.
func (m *Monitor) gracefulPass() {
	m.reg.mu.Lock()
	defer m.reg.mu.Unlock()
	for _, p := range m.reg.players {
		if p.State == StateIdle || p.State == StateDisconnected {
			continue
		}
		if p.OpponentDisconnectTime.IsZero() {
			continue
		}
		if time.Since(p.OpponentDisconnectTime) <= m.GraceWindow {
			continue
		}
		s := m.reg.sessionOf(p)
		if s == nil {
			p.OpponentDisconnectTime = time.Time{}
			continue
		}
		opp := s.opponentOf(p)
		log.Infof("Grace window expired in session %s, %q wins by forfeit", s.ID, p.Username)
		m.reg.terminateSession(s, opp)
	}
}
