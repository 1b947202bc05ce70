package auction

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/event"
	"github.com/runeworks/glyphbot/internal/gamestate"
	"github.com/runeworks/glyphbot/internal/ledger"
	"github.com/runeworks/glyphbot/internal/logger"
	"github.com/runeworks/glyphbot/internal/utils"
)

// Config tunes auction settlement policy.
type Config struct {
	// RefundLosers credits losing bids back at resolution. Off by default:
	// sealed bids are sunk for everyone, winners and losers alike.
	RefundLosers bool
}

// Entry is one row of an auction ranking.
type Entry struct {
	UserID string
	Bid    int64
}

// Service runs sealed-bid auctions. Bids are escrowed the moment they are
// placed; the top N bidders win when the auction ends.
type Service interface {
	Create(ctx context.Context, description string, rolesToTag []string, endTime time.Time, numberOfWinners int) (*domain.AuctionState, error)
	Get(ctx context.Context, auctionID string) (domain.AuctionState, error)
	PlaceBid(ctx context.Context, auctionID, userID string, amount int64) error
	Resolve(ctx context.Context, auctionID string) (*domain.AuctionEndedPayloadV1, error)
	SetMessageRef(ctx context.Context, auctionID, messageID, channelID string) error

	Rankings(ctx context.Context, auctionID string) []Entry
	UserBid(ctx context.Context, auctionID, userID string) (int64, bool)
	UserRank(ctx context.Context, auctionID, userID string) (int, bool)

	Active(ctx context.Context) []domain.AuctionState
	Expired(ctx context.Context) []domain.AuctionState
}

type service struct {
	keeper *gamestate.Keeper
	ledger ledger.Service
	bus    event.Bus
	cfg    Config
}

// NewService creates the auction coordinator.
func NewService(keeper *gamestate.Keeper, led ledger.Service, bus event.Bus, cfg Config) Service {
	return &service{keeper: keeper, ledger: led, bus: bus, cfg: cfg}
}

// newAuctionID builds a sortable, collision-safe auction key.
func newAuctionID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("auction_%d_%s", utils.NowMs(), suffix)
}

func (s *service) Create(ctx context.Context, description string, rolesToTag []string, endTime time.Time, numberOfWinners int) (*domain.AuctionState, error) {
	if numberOfWinners < 1 {
		return nil, fmt.Errorf("%w: winners %d", domain.ErrInvalidAmount, numberOfWinners)
	}
	if !endTime.After(time.Now()) {
		return nil, fmt.Errorf("%w: end time in the past", domain.ErrInvalidDuration)
	}

	auction := &domain.AuctionState{
		ID:              newAuctionID(),
		Description:     description,
		RolesToTag:      rolesToTag,
		EndTime:         endTime.UnixMilli(),
		NumberOfWinners: numberOfWinners,
		Bids:            map[string]int64{},
		IsActive:        true,
	}
	s.keeper.Update(func(st *domain.State) {
		st.Auctions[auction.ID] = auction
	})

	log := logger.FromContext(ctx)
	log.Info(LogMsgCreated, "auction_id", auction.ID, "winners", numberOfWinners, "ends_at", endTime)
	if err := s.bus.Publish(ctx, event.Event{
		Version: event.EventSchemaVersion,
		Type:    event.AuctionCreated,
		Payload: map[string]interface{}{"auction_id": auction.ID},
	}); err != nil {
		log.Error(LogMsgPublishFailed, "error", err)
	}
	return cloneAuction(auction), nil
}

func (s *service) Get(_ context.Context, auctionID string) (domain.AuctionState, error) {
	var (
		out   domain.AuctionState
		found bool
	)
	s.keeper.View(func(st *domain.State) {
		if a, ok := st.Auctions[auctionID]; ok {
			out = *cloneAuction(a)
			found = true
		}
	})
	if !found {
		return domain.AuctionState{}, domain.ErrAuctionNotFound
	}
	return out, nil
}

// PlaceBid escrows the bid immediately. One sealed bid per user; it cannot
// be raised or withdrawn.
func (s *service) PlaceBid(ctx context.Context, auctionID, userID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidAmount, amount)
	}

	var bidErr error
	now := utils.NowMs()
	s.keeper.View(func(st *domain.State) {
		a, ok := st.Auctions[auctionID]
		switch {
		case !ok:
			bidErr = domain.ErrAuctionNotFound
		case a.Ended || !a.IsActive || now >= a.EndTime:
			bidErr = domain.ErrAuctionEnded
		default:
			if _, dup := a.Bids[userID]; dup {
				bidErr = domain.ErrAlreadyBid
			}
		}
	})
	if bidErr != nil {
		return bidErr
	}

	if _, err := s.ledger.Debit(ctx, userID, amount); err != nil {
		return err
	}

	var refund bool
	s.keeper.Update(func(st *domain.State) {
		a, ok := st.Auctions[auctionID]
		// Re-check under the state lock; the auction may have resolved,
		// expired, or taken a duplicate bid while the escrow debit ran.
		switch {
		case !ok:
			bidErr = domain.ErrAuctionNotFound
			refund = true
		case a.Ended || !a.IsActive || utils.NowMs() >= a.EndTime:
			bidErr = domain.ErrAuctionEnded
			refund = true
		default:
			if _, dup := a.Bids[userID]; dup {
				bidErr = domain.ErrAlreadyBid
				refund = true
				return
			}
			a.Bids[userID] = amount
		}
	})
	if refund {
		if _, err := s.ledger.Credit(ctx, userID, amount); err != nil {
			logger.FromContext(ctx).Error(LogMsgRefundFailed, "user_id", userID, "amount", amount, "error", err)
		}
		return bidErr
	}

	logger.FromContext(ctx).Info(LogMsgBidPlaced, "auction_id", auctionID, "user_id", userID, "amount", amount)
	return nil
}

// Resolve ends the auction and settles escrow per policy. Winners' bids are
// always kept as payment.
func (s *service) Resolve(ctx context.Context, auctionID string) (*domain.AuctionEndedPayloadV1, error) {
	var (
		resolveErr error
		rankings   []Entry
		winnerSet  map[string]struct{}
		winners    []string
		losers     map[string]int64
	)
	s.keeper.Update(func(st *domain.State) {
		a, ok := st.Auctions[auctionID]
		if !ok {
			resolveErr = domain.ErrAuctionNotFound
			return
		}
		if a.Ended {
			resolveErr = domain.ErrAuctionEnded
			return
		}
		a.Ended = true
		a.IsActive = false

		rankings = rankBids(a.Bids)
		n := a.NumberOfWinners
		if n > len(rankings) {
			n = len(rankings)
		}
		winnerSet = make(map[string]struct{}, n)
		for _, e := range rankings[:n] {
			winnerSet[e.UserID] = struct{}{}
			winners = append(winners, e.UserID)
		}
		if s.cfg.RefundLosers {
			losers = map[string]int64{}
			for userID, bid := range a.Bids {
				if _, won := winnerSet[userID]; !won {
					losers[userID] = bid
				}
			}
		}
	})
	if resolveErr != nil {
		return nil, resolveErr
	}

	log := logger.FromContext(ctx)
	for userID, bid := range losers {
		if _, err := s.ledger.Credit(ctx, userID, bid); err != nil {
			log.Error(LogMsgRefundFailed, "user_id", userID, "amount", bid, "error", err)
		}
	}

	var topBid int64
	if len(rankings) > 0 {
		topBid = rankings[0].Bid
	}
	payload := &domain.AuctionEndedPayloadV1{
		AuctionID: auctionID,
		WinnerIDs: winners,
		TopBid:    topBid,
		BidCount:  len(rankings),
	}
	log.Info(LogMsgResolved, "auction_id", auctionID, "winners", len(winners), "bids", len(rankings))
	if err := s.bus.Publish(ctx, event.NewAuctionEndedEvent(*payload)); err != nil {
		log.Error(LogMsgPublishFailed, "error", err)
	}
	return payload, nil
}

func (s *service) SetMessageRef(_ context.Context, auctionID, messageID, channelID string) error {
	var found bool
	s.keeper.Update(func(st *domain.State) {
		if a, ok := st.Auctions[auctionID]; ok {
			a.MessageID = messageID
			a.ChannelID = channelID
			found = true
		}
	})
	if !found {
		return domain.ErrAuctionNotFound
	}
	return nil
}

func (s *service) Rankings(_ context.Context, auctionID string) []Entry {
	var out []Entry
	s.keeper.View(func(st *domain.State) {
		if a, ok := st.Auctions[auctionID]; ok {
			out = rankBids(a.Bids)
		}
	})
	return out
}

func (s *service) UserBid(_ context.Context, auctionID, userID string) (int64, bool) {
	var (
		bid int64
		ok  bool
	)
	s.keeper.View(func(st *domain.State) {
		if a, found := st.Auctions[auctionID]; found {
			bid, ok = a.Bids[userID]
		}
	})
	return bid, ok
}

func (s *service) UserRank(ctx context.Context, auctionID, userID string) (int, bool) {
	for i, e := range s.Rankings(ctx, auctionID) {
		if e.UserID == userID {
			return i + 1, true
		}
	}
	return 0, false
}

func (s *service) Active(_ context.Context) []domain.AuctionState {
	return s.filter(func(a *domain.AuctionState, now int64) bool {
		return a.IsActive && !a.Ended && a.EndTime > now
	})
}

// Expired returns live auctions whose deadline has passed, awaiting
// resolution by the expiry worker.
func (s *service) Expired(_ context.Context) []domain.AuctionState {
	return s.filter(func(a *domain.AuctionState, now int64) bool {
		return a.IsActive && !a.Ended && a.EndTime <= now
	})
}

func (s *service) filter(keep func(a *domain.AuctionState, now int64) bool) []domain.AuctionState {
	now := utils.NowMs()
	var out []domain.AuctionState
	s.keeper.View(func(st *domain.State) {
		for _, a := range st.Auctions {
			if keep(a, now) {
				out = append(out, *cloneAuction(a))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].EndTime < out[j].EndTime })
	return out
}

// rankBids sorts bids highest first, ties broken by user ID for stability.
func rankBids(bids map[string]int64) []Entry {
	out := make([]Entry, 0, len(bids))
	for userID, bid := range bids {
		out = append(out, Entry{UserID: userID, Bid: bid})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bid != out[j].Bid {
			return out[i].Bid > out[j].Bid
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func cloneAuction(a *domain.AuctionState) *domain.AuctionState {
	out := *a
	out.Bids = make(map[string]int64, len(a.Bids))
	for k, v := range a.Bids {
		out.Bids[k] = v
	}
	out.RolesToTag = append([]string(nil), a.RolesToTag...)
	return &out
}
