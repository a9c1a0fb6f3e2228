package parser

import (
	"testing"

	"github.com/blabu/prsiService/dto"

	"github.com/stretchr/testify/assert"
)

func TestDecodeEnterQueue(t *testing.T) {
	assert := assert.New(t)
	d := NewDecoder(1024)

	assert.NoError(d.Feed([]byte("KIVUPSenterQ0005alice\n")))
	msg, err := d.Next()
	assert.NoError(err)
	assert.Equal(dto.OpEnterQueue, msg.Op)
	assert.Equal("alice", msg.Username)

	_, err = d.Next()
	assert.Equal(ErrIncomplete, err)
}

func TestDecodePartialFeeds(t *testing.T) {
	assert := assert.New(t)
	d := NewDecoder(1024)

	assert.NoError(d.Feed([]byte("KIVUPSplayCa0005al")))
	_, err := d.Next()
	assert.Equal(ErrIncomplete, err)

	assert.NoError(d.Feed([]byte("ice0007heart_7\nKIVUPSdrawCa\n")))

	msg, err := d.Next()
	assert.NoError(err)
	assert.Equal(dto.OpPlayCard, msg.Op)
	assert.Equal("alice", msg.Username)
	assert.Equal(dto.Card{Suit: dto.SuitHeart, Value: dto.Value7}, msg.Card)

	msg, err = d.Next()
	assert.NoError(err)
	assert.Equal(dto.OpDrawCard, msg.Op)

	_, err = d.Next()
	assert.Equal(ErrIncomplete, err)
}

func TestDecodeSuitChange(t *testing.T) {
	assert := assert.New(t)
	d := NewDecoder(1024)

	assert.NoError(d.Feed([]byte("KIVUPSsuitCh0003bob0004ball\n")))
	msg, err := d.Next()
	assert.NoError(err)
	assert.Equal(dto.OpSuitChange, msg.Op)
	assert.Equal("bob", msg.Username)
	assert.Equal(dto.SuitBall, msg.Suit)
}

func TestDecodeBadTag(t *testing.T) {
	d := NewDecoder(1024)

	assert.NoError(t, d.Feed([]byte("BOGUSSenterQ0005alice\n")))
	_, err := d.Next()
	assert.Error(t, err)
}

func TestDecodeUnknownOpcode(t *testing.T) {
	d := NewDecoder(1024)

	assert.NoError(t, d.Feed([]byte("KIVUPSnoSuch\n")))
	msg, err := d.Next()
	assert.NoError(t, err)
	assert.Equal(t, dto.OpUnknown, msg.Op)
}

func TestDecodeMalformedLength(t *testing.T) {
	assert := assert.New(t)

	for _, line := range []string{
		"KIVUPSenterQ00xzalice\n", // non numeric length
		"KIVUPSenterQ9999ab\n",    // length overruns the line
		"KIVUPSenterQ00\n",        // truncated length
		"KIVUPSenterQ\n",          // missing field entirely
		"KIVUPSplayCa0005alice0007heart_X\n", // unknown card value
	} {
		d := NewDecoder(1024)
		assert.NoError(d.Feed([]byte(line)))
		_, err := d.Next()
		assert.Error(err, "line %q must not decode", line)
	}
}

func TestFeedOverflow(t *testing.T) {
	d := NewDecoder(16)

	assert.NoError(t, d.Feed([]byte("KIVUPSenterQ")))
	assert.Error(t, d.Feed([]byte("0005alice0005alice")))
}

func TestEmbeddedSeparatorsAreSafe(t *testing.T) {
	assert := assert.New(t)
	d := NewDecoder(1024)

	// A username containing the field separator characters decodes intact
	// thanks to the length prefix.
	assert.NoError(d.Feed([]byte("KIVUPSenterQ0007a|b_c|d\n")))
	msg, err := d.Next()
	assert.NoError(err)
	assert.Equal("a|b_c|d", msg.Username)
}

func TestFormGameState(t *testing.T) {
	hand := []dto.Card{
		{Suit: dto.SuitHeart, Value: dto.Value7},
		{Suit: dto.SuitAcorn, Value: dto.ValueAce},
	}
	got := FormGameState(1, hand, dto.Card{Suit: dto.SuitBall, Value: dto.Value9}, 5, true, "SKIP_PENDING")
	assert.Equal(t, "KIVUPSgameSt0000P1:heart_7,acorn_ace|D:ball_9|O:5|T:1|SKIP_PENDING\n", string(got))
}

func TestFormers(t *testing.T) {
	assert := assert.New(t)
	c := dto.Card{Suit: dto.SuitGreen, Value: dto.ValueQueen}

	assert.Equal("KIVUPSCARD_PLAYED_VALID|green_queen\n", string(FormCardPlayedValid(c, false)))
	assert.Equal("KIVUPSCARD_PLAYED_VALID|green_queen|LAST_CARD_PLAYED\n", string(FormCardPlayedValid(c, true)))
	assert.Equal("KIVUPSCARD_PLAYED_UPDATE|green_queen\n", string(FormCardPlayedUpdate(c)))
	assert.Equal("KIVUPSSUIT_UPDATE|heart\n", string(FormSuitUpdate(dto.SuitHeart)))
	assert.Equal("KIVUPSDRAW_SUCCESS|green_queen\n", string(FormDrawSuccess(c)))
	assert.Equal("KIVUPSTURN_SWITCH|1\n", string(FormTurnSwitch(true)))
	assert.Equal("KIVUPSTURN_SWITCH|0\n", string(FormTurnSwitch(false)))
}
