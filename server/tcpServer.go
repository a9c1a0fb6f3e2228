/*
Package server - the TCP front of the game. The accept loop binds every
new socket to a free player slot; one goroutine per connection reads into
the framing decoder and routes complete messages into the game registry,
which serializes all state behind its lock.
*/
package server

import (
	"net"
	"runtime"

	"github.com/blabu/prsiService/game"
	"github.com/blabu/prsiService/parser"
	"github.com/blabu/prsiService/stat"

	"go.uber.org/atomic"

	log "github.com/blabu/prsiService/logWrapper"
)

const readChunkSize = 512

// GameServer - accepts connections and feeds the registry
type GameServer struct {
	reg           *game.Registry
	st            *stat.Statistics
	maxPerIP      uint32
	maxBufferSize int
	isStoped      *atomic.Bool
}

// NewGameServer - maxPerIP of 0 disables the per IP connection limit,
// maxBufferSize bounds how much one connection may buffer without a
// message terminator.
func NewGameServer(reg *game.Registry, st *stat.Statistics, maxPerIP uint32, maxBufferSize int) *GameServer {
	return &GameServer{
		reg:           reg,
		st:            st,
		maxPerIP:      maxPerIP,
		maxBufferSize: maxBufferSize,
		isStoped:      atomic.NewBool(false),
	}
}

// Stop - makes Serve return after the current accept
func (g *GameServer) Stop() {
	g.isStoped.Store(true)
}

// Serve - the accept loop. Runs until Stop is called and the listener is
// closed.
func (g *GameServer) Serve(listen net.Listener) {
	for !g.isStoped.Load() {
		conn, err := listen.Accept()
		if err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Temporary() {
				log.Warningf("Temporary Accept() failure - %s", err)
				runtime.Gosched()
				continue
			}
			log.Infof("Can not accept connection, %v", err)
			return
		}
		host, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
		count := g.st.AddIPAddres(host)
		if g.maxPerIP != 0 && count > g.maxPerIP {
			log.Warningf("Too many connections from %s, refusing", host)
			conn.Close()
			continue
		}
		log.Info("Create new connection from ", conn.RemoteAddr().String())
		g.st.NewConnection()
		go g.handleConnection(conn)
	}
}

// handleConnection - per connection read loop. A zero or error read runs
// the same disconnect handling as a liveness failure; a decode error or a
// state machine rejection drops the connection as a protocol violation.
func (g *GameServer) handleConnection(conn net.Conn) {
	defer g.st.CloseConnection()
	p := g.reg.Attach(conn)
	if p == nil {
		conn.Close()
		return
	}
	dec := parser.NewDecoder(g.maxBufferSize)
	buf := make([]byte, readChunkSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			if feedErr := dec.Feed(buf[:n]); feedErr != nil {
				log.Warningf("Player %q: %v", p.Username, feedErr)
				g.reg.DropViolator(p)
				return
			}
			if p, err = g.drain(dec, p); err != nil {
				return
			}
		}
		if err != nil {
			g.reg.ConnectionLost(p, conn)
			return
		}
	}
}

// drain - dispatches every complete message sitting in the decoder
func (g *GameServer) drain(dec *parser.Decoder, p *game.Player) (*game.Player, error) {
	for {
		msg, err := dec.Next()
		if err == parser.ErrIncomplete {
			return p, nil
		}
		if err != nil {
			log.Warningf("Invalid packet from %q: %v", p.Username, err)
			g.reg.DropViolator(p)
			return p, err
		}
		next, err := g.reg.Dispatch(p, msg)
		if err != nil {
			g.reg.DropViolator(next)
			return next, err
		}
		p = next
	}
}
