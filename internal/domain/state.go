package domain

// MemberResult records one player's outcome in a resolved block.
type MemberResult struct {
	UserID   string `json:"userId"`
	Choice   string `json:"choice"`
	Reward   int64  `json:"reward"`
	Distance int    `json:"distance"`
}

// BlockRecord is one entry of the append-only block history. Records are
// never mutated after append; admin resets replace the history wholesale.
type BlockRecord struct {
	BlockNumber   int64          `json:"blockNumber"`
	SystemChoice  string         `json:"systemChoice"`
	MemberResults []MemberResult `json:"memberResults"`
	Timestamp     int64          `json:"timestamp"` // epoch ms
}

// State is the round-state document. A single process-wide instance is
// owned by the round engine and persisted after every mutation.
type State struct {
	CurrentBlock         int64                    `json:"currentBlock"`
	TotalRewardsPerBlock int64                    `json:"totalRewardsPerBlock"`
	BaseReward           int64                    `json:"baseReward"`
	BlockDurationSec     int64                    `json:"blockDurationSec"`
	NextBlockAt          int64                    `json:"nextBlockAt"` // epoch ms
	LastSystemChoice     string                   `json:"lastSystemChoice,omitempty"`
	BlockHistory         []BlockRecord            `json:"blockHistory"`
	CurrentChoices       map[string]string        `json:"currentChoices"`
	Grumble              *GrumbleState            `json:"grumbleState"`
	MarketPacks          map[string]int           `json:"marketPacks"`
	MarketDollars        map[string]int           `json:"marketDollars"`
	TotalClaimedDollars  int                      `json:"totalClaimedDollars"`
	ClaimLimit           int                      `json:"claimLimit"`
	ClaimButtonDisabled  bool                     `json:"claimButtonDisabled"`
	Auctions             map[string]*AuctionState `json:"auctions"`
}

// Default round configuration applied when the state document is missing
// a field (old documents) or missing entirely (first run).
const (
	DefaultTotalRewardsPerBlock int64 = 700_000
	DefaultBaseReward           int64 = 1_000_000
	DefaultBlockDurationSec     int64 = 30
	DefaultClaimLimit                 = 80
)

// Balances maps user IDs to their glyph balance. Persisted as its own
// document, batched independently from State.
type Balances map[string]int64

// GrumbleBet is a single user's stake in the active grumble.
type GrumbleBet struct {
	Amount int64  `json:"amount"`
	Guess  string `json:"guess"`
}

// GrumbleState is the pari-mutuel side game slice of State. Nil when no
// grumble has ever run or the last one resolved.
type GrumbleState struct {
	PrizePool   int64                 `json:"prizePool"`
	Bets        map[string]GrumbleBet `json:"bets"`
	MessageID   string                `json:"messageId,omitempty"`
	ChannelID   string                `json:"channelId,omitempty"`
	BlockNumber int64                 `json:"blockNumber"`
	IsActive    bool                  `json:"isActive"`
	// Custom countdown overrides block-based expiry when set.
	CustomTimerSec    int64 `json:"customTimerSec,omitempty"`
	CustomTimerEndsAt int64 `json:"customTimerEndsAt,omitempty"` // epoch ms
}

// AuctionState is one sealed-bid auction. Bids are escrowed at placement.
type AuctionState struct {
	ID              string           `json:"id"`
	Description     string           `json:"description"`
	RolesToTag      []string         `json:"rolesToTag"`
	EndTime         int64            `json:"endTime"` // epoch ms
	NumberOfWinners int              `json:"numberOfWinners"`
	Bids            map[string]int64 `json:"bids"`
	MessageID       string           `json:"messageId,omitempty"`
	ChannelID       string           `json:"channelId,omitempty"`
	IsActive        bool             `json:"isActive"`
	Ended           bool             `json:"ended"`
}

// PrizeType discriminates pack prize payouts.
type PrizeType string

const (
	PrizeTypeGlyphs PrizeType = "glyphs"
	PrizeTypeDollar PrizeType = "dollar"
)

// PackPrize is one weighted entry of the pack prize table.
type PackPrize struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Type     PrizeType `json:"type"`
	Amount   int64     `json:"amount"`
	Weight   int       `json:"weight"`
	ImageURL string    `json:"imageUrl"`
}
