package discord

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/runeworks/glyphbot/internal/domain"
)

func TestFormatFriendlyError(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{"insufficient funds", "failed to join grumble: " + domain.ErrMsgInsufficientFunds + ": have 5, need 100", MsgInsufficientGlyphs},
		{"engine stopped", domain.ErrMsgEngineStopped, MsgEngineStopped},
		{"already joined", domain.ErrMsgGrumbleAlreadyJoined, MsgGrumbleAlreadyJoined},
		{"grumble not active", domain.ErrMsgGrumbleNotActive, MsgGrumbleNotActive},
		{"grumble already active", domain.ErrMsgGrumbleAlreadyActive, MsgGrumbleAlreadyActive},
		{"no packs", domain.ErrMsgNoPacks, MsgNoPacks},
		{"claim minimum", domain.ErrMsgClaimBelowMinimum + ": have $4, need $10", MsgClaimBelowMinimum},
		{"claim limit", domain.ErrMsgClaimLimitReached, MsgClaimLimitReached},
		{"claim disabled", domain.ErrMsgClaimDisabled, MsgClaimDisabled},
		{"auction missing", domain.ErrMsgAuctionNotFound, MsgAuctionNotFound},
		{"auction ended", domain.ErrMsgAuctionEnded, MsgAuctionEnded},
		{"already bid", domain.ErrMsgAlreadyBid, MsgAlreadyBid},
		{"unknown passes through", "something odd", "❌ something odd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatFriendlyError(tt.msg))
		})
	}
}

func TestFormatGlyphs(t *testing.T) {
	assert.Equal(t, "1,234,567 glyphs", formatGlyphs(1_234_567))
	assert.Equal(t, "0 glyphs", formatGlyphs(0))
	assert.Equal(t, "950", formatAmount(950))
}

func TestSplitCustomID(t *testing.T) {
	prefix, arg := splitCustomID("auction_bid:auction_123_abc")
	assert.Equal(t, "auction_bid", prefix)
	assert.Equal(t, "auction_123_abc", arg)

	prefix, arg = splitCustomID("balance")
	assert.Equal(t, "balance", prefix)
	assert.Empty(t, arg)
}

func TestRuneOptionsCoverAlphabet(t *testing.T) {
	options := runeOptions()
	assert.Len(t, options, len(domain.Symbols))
	for idx, opt := range options {
		assert.Equal(t, domain.Symbols[idx], opt.Value)
	}
}
