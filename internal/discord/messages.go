package discord

// Friendly message constants for Discord responses
const (
	// Ledger
	MsgInsufficientGlyphs = "⚠️ **Not Enough Glyphs!**\nYou don't have enough glyphs for that."

	// Engine
	MsgEngineStopped = "🛑 **Mining Paused**\nThe game is stopped right now. Hang tight!"

	// Grumble
	MsgGrumbleNotActive     = "🤫 **No Grumble Running**\nWait for the next one to start."
	MsgGrumbleAlreadyActive = "📣 **Grumble In Progress**\nFinish this one first."
	MsgGrumbleAlreadyJoined = "🎟️ **One Bet Each**\nYou already placed your bet for this grumble."

	// Market
	MsgNoPacks           = "📦 **No Packs**\nBuy one first!"
	MsgClaimBelowMinimum = "💵 **Keep Saving**\nYou need at least $10 to claim."
	MsgClaimLimitReached = "🚫 **Claim Limit Reached**\nThe claim pool is exhausted for now."
	MsgClaimDisabled     = "🔒 **Claims Closed**\nClaiming is disabled right now."

	// Auction
	MsgAuctionNotFound = "🔍 **Auction Not Found**\nIt may have already ended."
	MsgAuctionEnded    = "🔨 **Auction Closed**\nBidding has ended."
	MsgAlreadyBid      = "🪙 **Bid Locked In**\nSealed bids are final - you already placed yours."

	// Throttle
	MsgCooldownActive = "⏳ **Whoa there!**\nYou need to wait a bit before doing that again."

	MsgGenericError = "❌ Something went wrong."
)
