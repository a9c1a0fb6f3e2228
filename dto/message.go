package dto

// Opcode - closed set of client commands. Anything the decoder can not map
// stays OpUnknown and the state machine drops the connection.
type Opcode uint8

const (
	OpUnknown Opcode = iota
	OpEnterQueue
	OpReconnect
	OpHeartbeat
	OpPlayCard
	OpSuitChange
	OpDrawCard
	OpSkipMove
	OpForceDraw
)

var opcodeNames = map[Opcode]string{
	OpEnterQueue: "enterQ",
	OpReconnect:  "reConn",
	OpHeartbeat:  "heartB",
	OpPlayCard:   "playCa",
	OpSuitChange: "suitCh",
	OpDrawCard:   "drawCa",
	OpSkipMove:   "skipMv",
	OpForceDraw:  "forceD",
}

func (op Opcode) String() string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return "unknown"
}

// Message - one client command after framing and field validation.
// Username is set for enterQ, reConn, playCa and suitCh; Card only for
// playCa; Suit only for suitCh.
type Message struct {
	Op       Opcode
	Username string
	Card     Card
	Suit     Suit
}
