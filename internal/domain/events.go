package domain

// Event types published on the in-process event bus.
const (
	EventBlockAdvanced   = "block.advanced"
	EventGrumbleStarted  = "grumble.started"
	EventGrumbleResolved = "grumble.resolved"
	EventGrumblePoolKept = "grumble.pool_preserved"
	EventPackOpened      = "pack.opened"
	EventDollarsClaimed  = "dollars.claimed"
	EventAuctionCreated  = "auction.created"
	EventAuctionEnded    = "auction.ended"
)

// BlockAdvancedPayloadV1 is published after every round resolution, once
// state has been committed. Transport subscribers refresh displays from it;
// handlers must not block the engine.
type BlockAdvancedPayloadV1 struct {
	NewBlock         int64  `json:"new_block"`
	SystemChoice     string `json:"system_choice"`
	Participants     int    `json:"participants"`
	TotalRewards     int64  `json:"total_rewards"`
	AutorunRemaining int    `json:"autorun_remaining"` // -1 when autorun is not armed
}

// GrumbleResolvedPayloadV1 describes a settled grumble session.
type GrumbleResolvedPayloadV1 struct {
	SystemChoice   string   `json:"system_choice"`
	PrizePool      int64    `json:"prize_pool"`
	WinnerIDs      []string `json:"winner_ids"`
	PrizePerWinner int64    `json:"prize_per_winner"`
	Participants   int      `json:"participants"`
}

// GrumblePoolPreservedPayloadV1 is published when a would-be winner left
// the guild and the pool was rolled into a fresh session.
type GrumblePoolPreservedPayloadV1 struct {
	DepartedUserID string `json:"departed_user_id"`
	PreservedPool  int64  `json:"preserved_pool"`
	NewBlockAnchor int64  `json:"new_block_anchor"`
}

// AuctionEndedPayloadV1 describes a resolved auction.
type AuctionEndedPayloadV1 struct {
	AuctionID string   `json:"auction_id"`
	WinnerIDs []string `json:"winner_ids"`
	TopBid    int64    `json:"top_bid"`
	BidCount  int      `json:"bid_count"`
}
