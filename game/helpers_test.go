package game

import (
	"bytes"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blabu/prsiService/dto"
)

// fakeConn - captures everything the server writes so tests can assert on
// the protocol lines a player received.
type fakeConn struct {
	mu     sync.Mutex
	wr     bytes.Buffer
	closed bool
}

func newFakeConn() *fakeConn { return &fakeConn{} }

func (c *fakeConn) Read(b []byte) (int, error) { return 0, net.ErrClosed }

func (c *fakeConn) Write(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, net.ErrClosed
	}
	return c.wr.Write(b)
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) LocalAddr() net.Addr                { return &net.TCPAddr{} }
func (c *fakeConn) RemoteAddr() net.Addr               { return &net.TCPAddr{} }
func (c *fakeConn) SetDeadline(t time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// received - true when some written line contains the given fragment
func (c *fakeConn) received(fragment string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Contains(c.wr.String(), fragment)
}

func (c *fakeConn) lastLine() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := strings.Split(strings.TrimRight(c.wr.String(), "\n"), "\n")
	return lines[len(lines)-1]
}

func (c *fakeConn) resetCapture() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wr.Reset()
}

// startedGame - a registry with alice and bob paired into a running
// session. The caller overrides the dealt state for deterministic play.
func startedGame(t *testing.T) (*Registry, *Session, *Player, *Player, *fakeConn, *fakeConn) {
	t.Helper()
	r := NewRegistry(4, 2, nil)
	c1, c2 := newFakeConn(), newFakeConn()
	p1 := r.Attach(c1)
	p2 := r.Attach(c2)

	var err error
	if p1, err = r.Dispatch(p1, dto.Message{Op: dto.OpEnterQueue, Username: "alice"}); err != nil {
		t.Fatalf("alice can not queue: %v", err)
	}
	if p2, err = r.Dispatch(p2, dto.Message{Op: dto.OpEnterQueue, Username: "bob"}); err != nil {
		t.Fatalf("bob can not queue: %v", err)
	}
	s := r.sessionOf(p1)
	if s == nil {
		t.Fatal("pairing did not start a session")
	}
	c1.resetCapture()
	c2.resetCapture()
	return r, s, p1, p2, c1, c2
}

func card(s dto.Suit, v dto.Value) dto.Card { return dto.Card{Suit: s, Value: v} }

// countCards - how many cards the session tracks across both hands and
// both piles
func countCards(s *Session) map[dto.Card]int {
	seen := make(map[dto.Card]int)
	for _, p := range s.Players {
		if p == nil {
			continue
		}
		for _, c := range p.Hand {
			seen[c]++
		}
	}
	for _, c := range s.Draw.Cards() {
		seen[c]++
	}
	for _, c := range s.Discard.Cards() {
		seen[c]++
	}
	return seen
}
