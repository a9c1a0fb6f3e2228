package parser

import (
	"fmt"
	"strings"

	"github.com/blabu/prsiService/dto"
)

// Server to client lines. Fixed notifications are prebuilt, the rest is
// formed per call. Every line carries the same KIVUPS tag the clients send.

var (
	MsgHeartbeat            = []byte("KIVUPSHEARTBEAT\n")
	MsgCardPlayedInvalid    = []byte("KIVUPSCARD_PLAYED_INVALID\n")
	MsgCardDrawnUpdate      = []byte("KIVUPSCARD_DRAWN_UPDATE\n")
	MsgForceDrawPending     = []byte("KIVUPSFORCEDRAW_PENDING\n")
	MsgSkipPending          = []byte("KIVUPSSKIP_PENDING\n")
	MsgOpponentDisconnected = []byte("KIVUPSOPPONENT_DISCONNECTED\n")
	MsgSessionTerminated    = []byte("KIVUPSSESSION_TERMINATED\n")
	MsgGameOverVictory      = []byte("KIVUPSGAME_OVER|VICTORY\n")
	MsgGameOverDefeat       = []byte("KIVUPSGAME_OVER|DEFEAT\n")
)

// FormTurnSwitch - tells one player whether the turn is now theirs
func FormTurnSwitch(myTurn bool) []byte {
	if myTurn {
		return []byte("KIVUPSTURN_SWITCH|1\n")
	}
	return []byte("KIVUPSTURN_SWITCH|0\n")
}

// FormCardPlayedValid - acknowledges an accepted play, flagging the
// winning card when the hand just emptied
func FormCardPlayedValid(c dto.Card, lastCard bool) []byte {
	if lastCard {
		return []byte(fmt.Sprintf("KIVUPSCARD_PLAYED_VALID|%s|LAST_CARD_PLAYED\n", c))
	}
	return []byte(fmt.Sprintf("KIVUPSCARD_PLAYED_VALID|%s\n", c))
}

// FormCardPlayedUpdate - tells the opponent which card just hit the discard pile
func FormCardPlayedUpdate(c dto.Card) []byte {
	return []byte(fmt.Sprintf("KIVUPSCARD_PLAYED_UPDATE|%s\n", c))
}

// FormSuitUpdate - announces the active suit chosen after a queen
func FormSuitUpdate(s dto.Suit) []byte {
	return []byte(fmt.Sprintf("KIVUPSSUIT_UPDATE|%s\n", s))
}

// FormDrawSuccess - acknowledges a draw with the drawn card
func FormDrawSuccess(c dto.Card) []byte {
	return []byte(fmt.Sprintf("KIVUPSDRAW_SUCCESS|%s\n", c))
}

// FormGameState - the full state line one player receives on session start
// and on reconnection. playerNum is 1 based. The trailing marker names a
// pending effect the receiver still has to answer, or is empty.
func FormGameState(playerNum int, hand []dto.Card, discard dto.Card, opponentCards int, myTurn bool, marker string) []byte {
	handInfo := make([]string, len(hand))
	for i, c := range hand {
		handInfo[i] = c.String()
	}
	turn := 0
	if myTurn {
		turn = 1
	}
	return []byte(fmt.Sprintf("KIVUPSgameSt0000P%d:%s|D:%s|O:%d|T:%d|%s\n",
		playerNum, strings.Join(handInfo, ","), discard, opponentCards, turn, marker))
}
