package market

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/event"
	"github.com/runeworks/glyphbot/internal/gamestate"
	"github.com/runeworks/glyphbot/internal/ledger"
	"github.com/runeworks/glyphbot/internal/logger"
	"github.com/runeworks/glyphbot/internal/reward"
)

// Market economy constants.
const (
	PackCost         = 500
	MinClaimDollars  = 10
	MaxDollarBalance = 20

	PurchaseImageURL = "https://i.imgur.com/avZ3tRj.jpeg"
)

// defaultPrizes is the weighted pack prize table.
var defaultPrizes = []domain.PackPrize{
	{ID: "glyphs_250", Label: "250 GLYPHS", Type: domain.PrizeTypeGlyphs, Amount: 250, Weight: 750, ImageURL: "https://i.imgur.com/SwuzzoO.png"},
	{ID: "glyphs_500", Label: "500 GLYPHS", Type: domain.PrizeTypeGlyphs, Amount: 500, Weight: 150, ImageURL: "https://i.imgur.com/WK6QAsK.png"},
	{ID: "glyphs_750", Label: "750 GLYPHS", Type: domain.PrizeTypeGlyphs, Amount: 750, Weight: 60, ImageURL: "https://i.imgur.com/1oBOxsi.png"},
	{ID: "dollar_1", Label: "$1", Type: domain.PrizeTypeDollar, Amount: 1, Weight: 25, ImageURL: "https://i.imgur.com/oyPLjoG.png"},
	{ID: "dollar_2", Label: "$2", Type: domain.PrizeTypeDollar, Amount: 2, Weight: 10, ImageURL: "https://i.imgur.com/UHvsr15.png"},
	{ID: "dollar_3", Label: "$3", Type: domain.PrizeTypeDollar, Amount: 3, Weight: 4, ImageURL: "https://i.imgur.com/Tgrt4ow.png"},
	{ID: "dollar_4", Label: "$4", Type: domain.PrizeTypeDollar, Amount: 4, Weight: 1, ImageURL: "https://i.imgur.com/UOl6uz0.png"},
}

// Roles configures prize eligibility. Holders of AllPrizesRoleID always see
// the full table; holders of LimitedDollarsRoleID (without the former) are
// restricted to the $1 dollar prize.
type Roles struct {
	AllPrizesRoleID      string
	LimitedDollarsRoleID string
}

// DollarUpdate reports the outcome of a dollar credit against the balance cap.
type DollarUpdate struct {
	Added      int
	NewBalance int
	Capped     bool
}

// OpenResult is the outcome of opening one pack.
type OpenResult struct {
	Prize          domain.PackPrize
	PacksRemaining int
	GlyphBalance   int64
	Dollars        *DollarUpdate
}

// Service runs the loot economy: packs bought with glyphs, weighted prize
// draws, and a capped dollar balance claimable once a minimum is reached.
type Service interface {
	PackCount(ctx context.Context, userID string) int
	BuyPack(ctx context.Context, userID string) (packs int, balance int64, err error)
	// AddPacks grants or removes packs; the count never drops below zero.
	AddPacks(ctx context.Context, userID string, count int) int
	Open(ctx context.Context, userID string, roleIDs []string) (*OpenResult, error)

	DollarBalance(ctx context.Context, userID string) int
	AddDollars(ctx context.Context, userID string, amount int) DollarUpdate
	Claim(ctx context.Context, userID string) (int, error)

	EligiblePrizes(roleIDs []string) []domain.PackPrize

	TotalClaimed(ctx context.Context) int
	ClaimLimit(ctx context.Context) int
	ClaimLimitReached(ctx context.Context) bool
	ClaimDisabled(ctx context.Context) bool
	SetClaimLimit(ctx context.Context, limit int) error
	ResetClaimCounter(ctx context.Context)
	SetClaimDisabled(ctx context.Context, disabled bool)
}

type service struct {
	keeper *gamestate.Keeper
	ledger ledger.Service
	bus    event.Bus
	roles  Roles
	rng    reward.IntN
	prizes []domain.PackPrize
}

// NewService creates the market. A nil rng gets a seeded one.
func NewService(keeper *gamestate.Keeper, led ledger.Service, bus event.Bus, roles Roles, rng reward.IntN) Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // game randomness, not crypto
	}
	return &service{
		keeper: keeper,
		ledger: led,
		bus:    bus,
		roles:  roles,
		rng:    rng,
		prizes: defaultPrizes,
	}
}

func (s *service) PackCount(_ context.Context, userID string) int {
	var count int
	s.keeper.View(func(st *domain.State) {
		count = st.MarketPacks[userID]
	})
	return count
}

func (s *service) BuyPack(ctx context.Context, userID string) (int, int64, error) {
	balance, err := s.ledger.Debit(ctx, userID, PackCost)
	if err != nil {
		return 0, balance, err
	}
	packs := s.AddPacks(ctx, userID, 1)
	logger.FromContext(ctx).Info(LogMsgPackBought, "user_id", userID, "packs", packs)
	return packs, balance, nil
}

func (s *service) AddPacks(_ context.Context, userID string, count int) int {
	var updated int
	s.keeper.Update(func(st *domain.State) {
		updated = st.MarketPacks[userID] + count
		if updated <= 0 {
			updated = 0
			delete(st.MarketPacks, userID)
			return
		}
		st.MarketPacks[userID] = updated
	})
	return updated
}

func (s *service) Open(ctx context.Context, userID string, roleIDs []string) (*OpenResult, error) {
	log := logger.FromContext(ctx)

	var (
		remaining int
		noPacks   bool
	)
	s.keeper.Update(func(st *domain.State) {
		current := st.MarketPacks[userID]
		if current <= 0 {
			noPacks = true
			return
		}
		remaining = current - 1
		if remaining == 0 {
			delete(st.MarketPacks, userID)
		} else {
			st.MarketPacks[userID] = remaining
		}
	})
	if noPacks {
		return nil, domain.ErrNoPacks
	}

	prize, err := s.drawPrize(roleIDs)
	if err != nil {
		// Consumed pack is restored; the draw failed before any payout.
		s.AddPacks(ctx, userID, 1)
		return nil, err
	}

	result := &OpenResult{Prize: prize, PacksRemaining: remaining}
	if prize.Type == domain.PrizeTypeGlyphs {
		balance, err := s.ledger.Credit(ctx, userID, prize.Amount)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrContextCreditPrize, err)
		}
		result.GlyphBalance = balance
	} else {
		update := s.AddDollars(ctx, userID, int(prize.Amount))
		result.Dollars = &update
	}

	log.Info(LogMsgPackOpened, "user_id", userID, "prize", prize.ID, "packs_remaining", remaining)
	if err := s.bus.Publish(ctx, event.Event{
		Version: event.EventSchemaVersion,
		Type:    event.PackOpened,
		Payload: result,
	}); err != nil {
		log.Error(LogMsgPublishFailed, "error", err)
	}
	return result, nil
}

func (s *service) DollarBalance(_ context.Context, userID string) int {
	var balance int
	s.keeper.View(func(st *domain.State) {
		balance = st.MarketDollars[userID]
	})
	return balance
}

// AddDollars credits dollars up to the balance cap. Anything above the cap
// is silently dropped and reported as capped.
func (s *service) AddDollars(_ context.Context, userID string, amount int) DollarUpdate {
	var update DollarUpdate
	s.keeper.Update(func(st *domain.State) {
		current := st.MarketDollars[userID]
		room := MaxDollarBalance - current
		if room < 0 {
			room = 0
		}
		added := amount
		if added > room {
			added = room
		}
		if added < 0 {
			added = 0
		}
		newBalance := current + added
		if newBalance <= 0 {
			delete(st.MarketDollars, userID)
		} else {
			st.MarketDollars[userID] = newBalance
		}
		update = DollarUpdate{
			Added:      added,
			NewBalance: newBalance,
			Capped:     added < amount || newBalance >= MaxDollarBalance,
		}
	})
	return update
}

// Claim zeroes the user's dollar balance and counts it against the global
// claim limit. The balance must meet the claim minimum.
func (s *service) Claim(ctx context.Context, userID string) (int, error) {
	var (
		claimed  int
		claimErr error
	)
	s.keeper.Update(func(st *domain.State) {
		switch {
		case st.ClaimButtonDisabled:
			claimErr = domain.ErrClaimDisabled
		case st.TotalClaimedDollars >= st.ClaimLimit:
			claimErr = domain.ErrClaimLimitReached
		case st.MarketDollars[userID] < MinClaimDollars:
			claimErr = fmt.Errorf("%w: have $%d, need $%d",
				domain.ErrClaimBelowMinimum, st.MarketDollars[userID], MinClaimDollars)
		default:
			claimed = st.MarketDollars[userID]
			delete(st.MarketDollars, userID)
			st.TotalClaimedDollars += claimed
		}
	})
	if claimErr != nil {
		return 0, claimErr
	}

	log := logger.FromContext(ctx)
	log.Info(LogMsgDollarsClaimed, "user_id", userID, "claimed", claimed)
	if err := s.bus.Publish(ctx, event.Event{
		Version: event.EventSchemaVersion,
		Type:    event.DollarsClaimed,
		Payload: map[string]interface{}{"user_id": userID, "claimed": claimed},
	}); err != nil {
		log.Error(LogMsgPublishFailed, "error", err)
	}
	return claimed, nil
}

// EligiblePrizes filters the prize table by the user's roles. Dollar prizes
// above $1 require either the all-prizes role or the absence of the
// limited-dollars role.
func (s *service) EligiblePrizes(roleIDs []string) []domain.PackPrize {
	roleSet := make(map[string]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		roleSet[id] = struct{}{}
	}
	_, hasAll := roleSet[s.roles.AllPrizesRoleID]
	_, hasLimited := roleSet[s.roles.LimitedDollarsRoleID]
	allowAllDollars := hasAll || !hasLimited

	out := make([]domain.PackPrize, 0, len(s.prizes))
	for _, prize := range s.prizes {
		if prize.Type == domain.PrizeTypeDollar && !allowAllDollars && prize.Amount > 1 {
			continue
		}
		out = append(out, prize)
	}
	return out
}

// drawPrize picks a weighted random prize among the eligible ones.
func (s *service) drawPrize(roleIDs []string) (domain.PackPrize, error) {
	eligible := s.EligiblePrizes(roleIDs)
	if len(eligible) == 0 {
		return domain.PackPrize{}, domain.ErrNoEligiblePrizes
	}
	totalWeight := 0
	for _, prize := range eligible {
		totalWeight += prize.Weight
	}
	roll := s.rng.Intn(totalWeight) + 1
	cumulative := 0
	for _, prize := range eligible {
		cumulative += prize.Weight
		if roll <= cumulative {
			return prize, nil
		}
	}
	return eligible[len(eligible)-1], nil
}

func (s *service) TotalClaimed(_ context.Context) int {
	var total int
	s.keeper.View(func(st *domain.State) { total = st.TotalClaimedDollars })
	return total
}

func (s *service) ClaimLimit(_ context.Context) int {
	var limit int
	s.keeper.View(func(st *domain.State) { limit = st.ClaimLimit })
	return limit
}

func (s *service) ClaimLimitReached(_ context.Context) bool {
	var reached bool
	s.keeper.View(func(st *domain.State) {
		reached = st.TotalClaimedDollars >= st.ClaimLimit
	})
	return reached
}

func (s *service) ClaimDisabled(_ context.Context) bool {
	var disabled bool
	s.keeper.View(func(st *domain.State) { disabled = st.ClaimButtonDisabled })
	return disabled
}

func (s *service) SetClaimLimit(ctx context.Context, limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidAmount, limit)
	}
	s.keeper.Update(func(st *domain.State) { st.ClaimLimit = limit })
	logger.FromContext(ctx).Info(LogMsgClaimLimitSet, "limit", limit)
	return nil
}

// ResetClaimCounter zeroes the claimed total and re-enables claiming.
func (s *service) ResetClaimCounter(ctx context.Context) {
	s.keeper.Update(func(st *domain.State) {
		st.TotalClaimedDollars = 0
		st.ClaimButtonDisabled = false
	})
	logger.FromContext(ctx).Info(LogMsgClaimCounterReset)
}

func (s *service) SetClaimDisabled(ctx context.Context, disabled bool) {
	s.keeper.Update(func(st *domain.State) { st.ClaimButtonDisabled = disabled })
	logger.FromContext(ctx).Info(LogMsgClaimToggled, "disabled", disabled)
}
