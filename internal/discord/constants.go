package discord

import "time"

// Component custom IDs. Parameterized IDs append ":<arg>" and are matched
// by prefix.
const (
	ComponentMine          = "mine"
	ComponentRuneSelect    = "rune_select"
	ComponentBalance       = "balance"
	ComponentCheckBet      = "checkbet"
	ComponentLastReward    = "lastreward"
	ComponentRewardRecords = "rewardrecords"
	ComponentLeaderboard   = "leaderboard"

	ComponentBuyPack      = "buy_pack"
	ComponentOpenPack     = "open_pack"
	ComponentClaimDollars = "claim_dollars"

	ComponentGrumbleJoin       = "grumble_join"
	ComponentGrumbleRuneSelect = "grumble_rune_select"
	ComponentGrumbleBetModal   = "grumble_bet_modal"
	ComponentGrumbleBetInput   = "grumble_bet_amount"

	ComponentAuctionBid      = "auction_bid"
	ComponentAuctionBidModal = "auction_bid_modal"
	ComponentAuctionBidInput = "auction_bid_amount"
)

// Embed colors
const (
	ColorPrimary = 0x5865f2
	ColorSuccess = 0x2ecc71
	ColorWarning = 0xf39c12
	ColorDanger  = 0xe74c3c
	ColorNeutral = 0x95a5a6
)

// Throttle windows. Buttons are cheap to spam; panel edits are rate limited
// by Discord, so refreshes coalesce.
const (
	UserActionCooldown   = 2 * time.Second
	PanelRefreshInterval = 5 * time.Second
)

// How many history entries fit in a records embed.
const RecordsPageSize = 5

// Log messages
const (
	LogMsgBotReady            = "Bot is ready"
	LogMsgCommandsChecking    = "Checking Discord commands..."
	LogMsgCommandsUnchanged   = "Commands unchanged, skipping registration"
	LogMsgCommandsUpdated     = "Commands updated successfully"
	LogMsgDeferFailed         = "Failed to send deferred response"
	LogMsgRespondFailed       = "Failed to send response"
	LogMsgEditFailed          = "Failed to edit interaction response"
	LogMsgPanelPostFailed     = "Failed to post panel"
	LogMsgPanelRefreshFailed  = "Failed to refresh panel"
	LogMsgNotifyFailed        = "Failed to send block notification"
	LogMsgMemberRemoveHandled = "Departing member triggered grumble pool preservation"
	LogMsgMemberRemoveFailed  = "Failed to handle member removal"
	LogMsgActionFailed        = "Action failed"
	LogMsgUnknownComponent    = "Unknown component interaction"
	LogMsgPanelRefresherStop  = "Shutting down panel refresher"
	LogMsgPanelRefresherDone  = "Panel refresher shutdown complete"
)
