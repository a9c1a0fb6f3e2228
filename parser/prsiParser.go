package parser

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/blabu/prsiService/dto"
)

// *Protocol.
// *KIVUPSxxxxxxllllffff...llllffff...\n
// *Every message is one newline terminated line of ASCII.
// *KIVUPS - magic tag, start of every packet in both directions
// *xxxxxx - opcode, exactly 6 characters
// *llll   - length of the following field, 4 digit zero padded decimal
// *ffff   - field payload, exactly llll bytes, no inner delimiter
// *
// *Example: KIVUPSplayCa0005alice0007heart_7

const (
	tagSize    = 6
	opcodeSize = 6
	lenSize    = 4
)

var msgTag = []byte("KIVUPS")

// ErrIncomplete - the buffer holds no complete line yet; feed more bytes
// and call Next again.
var ErrIncomplete = errors.New("incomplete message")

var opcodes = map[string]dto.Opcode{
	"enterQ": dto.OpEnterQueue,
	"reConn": dto.OpReconnect,
	"heartB": dto.OpHeartbeat,
	"playCa": dto.OpPlayCard,
	"suitCh": dto.OpSuitChange,
	"drawCa": dto.OpDrawCard,
	"skipMv": dto.OpSkipMove,
	"forceD": dto.OpForceDraw,
}

// Decoder - frames one connection's inbound byte stream into messages.
// Feed appends whatever the socket produced, Next drains complete lines
// one at a time and leaves any trailing partial line buffered.
// A decode error is fatal for the connection, the caller must not retry.
type Decoder struct {
	maxBufferSize int
	buf           []byte
}

// NewDecoder - creates a decoder that refuses to buffer more then maxSize bytes
func NewDecoder(maxSize int) *Decoder {
	return &Decoder{maxBufferSize: maxSize}
}

// Feed - appends received bytes to the accumulation buffer
func (d *Decoder) Feed(p []byte) error {
	if len(d.buf)+len(p) > d.maxBufferSize {
		return fmt.Errorf("inbound buffer overflow, %d bytes without a terminator", len(d.buf)+len(p))
	}
	d.buf = append(d.buf, p...)
	return nil
}

// Next - decodes the next complete message out of the buffer.
// Returns ErrIncomplete when only a partial line remains.
func (d *Decoder) Next() (dto.Message, error) {
	idx := bytes.IndexByte(d.buf, '\n')
	if idx < 0 {
		return dto.Message{}, ErrIncomplete
	}
	line := d.buf[:idx]
	d.buf = d.buf[idx+1:]
	return decodeLine(line)
}

func decodeLine(line []byte) (dto.Message, error) {
	if len(line) < tagSize+opcodeSize {
		return dto.Message{}, fmt.Errorf("message too short: %d bytes", len(line))
	}
	if !bytes.Equal(line[:tagSize], msgTag) {
		return dto.Message{}, fmt.Errorf("packet must start with %s", msgTag)
	}
	op := opcodes[string(line[tagSize:tagSize+opcodeSize])]
	rest := line[tagSize+opcodeSize:]
	msg := dto.Message{Op: op}
	var err error
	switch op {
	case dto.OpEnterQueue, dto.OpReconnect:
		if msg.Username, rest, err = readField(rest); err != nil {
			return dto.Message{}, err
		}
	case dto.OpPlayCard:
		var cardID string
		if msg.Username, rest, err = readField(rest); err != nil {
			return dto.Message{}, err
		}
		if cardID, rest, err = readField(rest); err != nil {
			return dto.Message{}, err
		}
		if msg.Card, err = dto.ParseCard(cardID); err != nil {
			return dto.Message{}, err
		}
	case dto.OpSuitChange:
		var suit string
		if msg.Username, rest, err = readField(rest); err != nil {
			return dto.Message{}, err
		}
		if suit, rest, err = readField(rest); err != nil {
			return dto.Message{}, err
		}
		if msg.Suit, err = dto.ParseSuit(suit); err != nil {
			return dto.Message{}, err
		}
	}
	_ = rest // trailing bytes after the known fields are ignored
	return msg, nil
}

// readField - decodes one length prefixed field. The length is 4 ASCII
// digits and is never trusted past the bytes actually buffered.
func readField(b []byte) (string, []byte, error) {
	if len(b) < lenSize {
		return "", nil, fmt.Errorf("truncated field length: %q", b)
	}
	n := 0
	for _, c := range b[:lenSize] {
		if c < '0' || c > '9' {
			return "", nil, fmt.Errorf("malformed field length %q", b[:lenSize])
		}
		n = n*10 + int(c-'0')
	}
	b = b[lenSize:]
	if len(b) < n {
		return "", nil, fmt.Errorf("field length %d overruns message", n)
	}
	return string(b[:n]), b[n:], nil
}
