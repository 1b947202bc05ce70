package grumble

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/event"
	"github.com/runeworks/glyphbot/internal/gamestate"
	"github.com/runeworks/glyphbot/internal/ledger"
	"github.com/runeworks/glyphbot/internal/logger"
	"github.com/runeworks/glyphbot/internal/reward"
	"github.com/runeworks/glyphbot/internal/utils"
)

// Service runs the pari-mutuel side game. One session at a time: players
// stake glyphs on a symbol, the pool pays out to the closest guesses when
// the session ends (next block by default, or a custom countdown).
type Service interface {
	Start(ctx context.Context) (*domain.GrumbleState, error)
	// Restart re-anchors the active session to the current block and drops
	// any custom timer. Bets and pool are preserved.
	Restart(ctx context.Context) error
	Join(ctx context.Context, userID, guess string, amount int64) error
	SetTimer(ctx context.Context, seconds int64) error
	SetMessageRef(ctx context.Context, messageID, channelID string) error

	IsActive(ctx context.Context) bool
	UsingCustomTimer(ctx context.Context) bool
	ShouldEnd(ctx context.Context) bool
	TimeLeft(ctx context.Context) time.Duration
	State(ctx context.Context) (domain.GrumbleState, bool)
	UserBet(ctx context.Context, userID string) (domain.GrumbleBet, bool)

	// Resolve settles the active session against the system symbol and
	// clears it. Co-winners at the minimum distance split the pool with
	// floor division; the remainder stays in the house.
	Resolve(ctx context.Context, systemChoice string) (*domain.GrumbleResolvedPayloadV1, error)

	// HandleMemberRemove checks whether the departing user would win the
	// active session against the last system symbol. If so the pool is
	// preserved into a fresh session anchored at the current block.
	// Returns true when a new session was started.
	HandleMemberRemove(ctx context.Context, userID string) (bool, error)
}

type service struct {
	keeper *gamestate.Keeper
	ledger ledger.Service
	bus    event.Bus
}

// NewService creates the grumble coordinator.
func NewService(keeper *gamestate.Keeper, led ledger.Service, bus event.Bus) Service {
	return &service{keeper: keeper, ledger: led, bus: bus}
}

func (s *service) Start(ctx context.Context) (*domain.GrumbleState, error) {
	var (
		created *domain.GrumbleState
		active  bool
	)
	s.keeper.Update(func(st *domain.State) {
		if st.Grumble != nil && st.Grumble.IsActive {
			active = true
			return
		}
		st.Grumble = &domain.GrumbleState{
			PrizePool:   0,
			Bets:        map[string]domain.GrumbleBet{},
			BlockNumber: st.CurrentBlock,
			IsActive:    true,
		}
		created = cloneState(st.Grumble)
	})
	if active {
		return nil, domain.ErrGrumbleAlreadyActive
	}

	logger.FromContext(ctx).Info(LogMsgStarted, "block", created.BlockNumber)
	if err := s.bus.Publish(ctx, event.Event{
		Version: event.EventSchemaVersion,
		Type:    event.GrumbleStarted,
	}); err != nil {
		logger.FromContext(ctx).Error(LogMsgPublishFailed, "error", err)
	}
	return created, nil
}

func (s *service) Restart(ctx context.Context) error {
	var missing bool
	s.keeper.Update(func(st *domain.State) {
		if st.Grumble == nil || !st.Grumble.IsActive {
			missing = true
			return
		}
		st.Grumble.BlockNumber = st.CurrentBlock
		st.Grumble.CustomTimerSec = 0
		st.Grumble.CustomTimerEndsAt = 0
	})
	if missing {
		return domain.ErrGrumbleNotActive
	}
	logger.FromContext(ctx).Info(LogMsgRestarted)
	return nil
}

// Join stakes glyphs on a symbol. One bet per user per session, and the bet
// cannot be changed once placed.
func (s *service) Join(ctx context.Context, userID, guess string, amount int64) error {
	if !domain.IsValidSymbol(guess) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidSymbol, guess)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidAmount, amount)
	}

	var joinErr error
	s.keeper.View(func(st *domain.State) {
		switch {
		case st.Grumble == nil || !st.Grumble.IsActive:
			joinErr = domain.ErrGrumbleNotActive
		default:
			if _, ok := st.Grumble.Bets[userID]; ok {
				joinErr = domain.ErrGrumbleAlreadyJoined
			}
		}
	})
	if joinErr != nil {
		return joinErr
	}

	// Debit first so an insufficient balance never touches the pool.
	if _, err := s.ledger.Debit(ctx, userID, amount); err != nil {
		return err
	}

	var refund bool
	s.keeper.Update(func(st *domain.State) {
		// Re-check under the state lock; the session may have resolved or
		// the user raced a second join between the check and the debit.
		if st.Grumble == nil || !st.Grumble.IsActive {
			joinErr = domain.ErrGrumbleNotActive
			refund = true
			return
		}
		if _, ok := st.Grumble.Bets[userID]; ok {
			joinErr = domain.ErrGrumbleAlreadyJoined
			refund = true
			return
		}
		st.Grumble.PrizePool += amount
		st.Grumble.Bets[userID] = domain.GrumbleBet{Amount: amount, Guess: guess}
	})
	if refund {
		if _, err := s.ledger.Credit(ctx, userID, amount); err != nil {
			logger.FromContext(ctx).Error(LogMsgRefundFailed, "user_id", userID, "amount", amount, "error", err)
		}
		return joinErr
	}

	logger.FromContext(ctx).Info(LogMsgJoined, "user_id", userID, "guess", guess, "amount", amount)
	return nil
}

// SetTimer arms a custom countdown that takes precedence over block expiry.
func (s *service) SetTimer(ctx context.Context, seconds int64) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidDuration, seconds)
	}

	var missing bool
	s.keeper.Update(func(st *domain.State) {
		if st.Grumble == nil || !st.Grumble.IsActive {
			missing = true
			return
		}
		st.Grumble.CustomTimerSec = seconds
		st.Grumble.CustomTimerEndsAt = utils.NowMs() + seconds*1000
	})
	if missing {
		return domain.ErrGrumbleNotActive
	}
	logger.FromContext(ctx).Info(LogMsgTimerSet, "seconds", seconds)
	return nil
}

func (s *service) SetMessageRef(_ context.Context, messageID, channelID string) error {
	var missing bool
	s.keeper.Update(func(st *domain.State) {
		if st.Grumble == nil {
			missing = true
			return
		}
		st.Grumble.MessageID = messageID
		st.Grumble.ChannelID = channelID
	})
	if missing {
		return domain.ErrGrumbleNotActive
	}
	return nil
}

func (s *service) IsActive(_ context.Context) bool {
	var active bool
	s.keeper.View(func(st *domain.State) {
		active = st.Grumble != nil && st.Grumble.IsActive
	})
	return active
}

func (s *service) UsingCustomTimer(_ context.Context) bool {
	var using bool
	s.keeper.View(func(st *domain.State) {
		g := st.Grumble
		using = g != nil && g.IsActive && g.CustomTimerSec > 0 && g.CustomTimerEndsAt > 0
	})
	return using
}

func (s *service) ShouldEnd(_ context.Context) bool {
	var end bool
	now := utils.NowMs()
	s.keeper.View(func(st *domain.State) {
		g := st.Grumble
		if g == nil || !g.IsActive {
			return
		}
		if g.CustomTimerSec > 0 && g.CustomTimerEndsAt > 0 {
			end = now >= g.CustomTimerEndsAt
			return
		}
		end = st.CurrentBlock > g.BlockNumber
	})
	return end
}

func (s *service) TimeLeft(_ context.Context) time.Duration {
	var left int64
	now := utils.NowMs()
	s.keeper.View(func(st *domain.State) {
		g := st.Grumble
		if g == nil || !g.IsActive {
			return
		}
		if g.CustomTimerSec > 0 && g.CustomTimerEndsAt > 0 {
			left = g.CustomTimerEndsAt - now
			return
		}
		left = st.NextBlockAt - now
	})
	if left < 0 {
		left = 0
	}
	return time.Duration(left) * time.Millisecond
}

func (s *service) State(_ context.Context) (domain.GrumbleState, bool) {
	var (
		out domain.GrumbleState
		ok  bool
	)
	s.keeper.View(func(st *domain.State) {
		if st.Grumble == nil {
			return
		}
		out = *cloneState(st.Grumble)
		ok = true
	})
	return out, ok
}

func (s *service) UserBet(_ context.Context, userID string) (domain.GrumbleBet, bool) {
	var (
		bet domain.GrumbleBet
		ok  bool
	)
	s.keeper.View(func(st *domain.State) {
		if st.Grumble == nil || !st.Grumble.IsActive {
			return
		}
		bet, ok = st.Grumble.Bets[userID]
	})
	return bet, ok
}

func (s *service) Resolve(ctx context.Context, systemChoice string) (*domain.GrumbleResolvedPayloadV1, error) {
	if !domain.IsValidSymbol(systemChoice) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSymbol, systemChoice)
	}
	log := logger.FromContext(ctx)

	var (
		missing bool
		pool    int64
		bets    map[string]domain.GrumbleBet
		winners []string
		perEach int64
	)
	s.keeper.Update(func(st *domain.State) {
		g := st.Grumble
		if g == nil || !g.IsActive {
			missing = true
			return
		}
		pool = g.PrizePool
		bets = g.Bets
		winners = closestBettors(bets, systemChoice)
		if len(winners) > 0 {
			perEach = pool / int64(len(winners))
		}
		st.Grumble = nil
	})
	if missing {
		return nil, domain.ErrGrumbleNotActive
	}

	for _, userID := range winners {
		if perEach <= 0 {
			break
		}
		if _, err := s.ledger.Credit(ctx, userID, perEach); err != nil {
			log.Error(LogMsgPayoutFailed, "user_id", userID, "amount", perEach, "error", err)
		}
	}

	payload := &domain.GrumbleResolvedPayloadV1{
		SystemChoice:   systemChoice,
		PrizePool:      pool,
		WinnerIDs:      winners,
		PrizePerWinner: perEach,
		Participants:   len(bets),
	}
	log.Info(LogMsgResolved,
		"system_choice", systemChoice,
		"pool", pool,
		"winners", len(winners),
		"participants", len(bets))
	if err := s.bus.Publish(ctx, event.NewGrumbleResolvedEvent(*payload)); err != nil {
		log.Error(LogMsgPublishFailed, "error", err)
	}
	return payload, nil
}

func (s *service) HandleMemberRemove(ctx context.Context, userID string) (bool, error) {
	var (
		preserved bool
		pool      int64
		anchor    int64
	)
	s.keeper.Update(func(st *domain.State) {
		g := st.Grumble
		if g == nil || !g.IsActive || len(g.Bets) == 0 {
			return
		}
		if _, ok := g.Bets[userID]; !ok {
			return
		}
		if st.LastSystemChoice == "" {
			return
		}
		winners := closestBettors(g.Bets, st.LastSystemChoice)
		for _, w := range winners {
			if w != userID {
				continue
			}
			// The would-be winner rugged. Keep the pool, drop the bets,
			// and run a fresh session from the current block.
			pool = g.PrizePool
			g.Bets = map[string]domain.GrumbleBet{}
			g.BlockNumber = st.CurrentBlock
			g.CustomTimerSec = 0
			g.CustomTimerEndsAt = 0
			anchor = st.CurrentBlock
			preserved = true
			break
		}
	})
	if !preserved {
		return false, nil
	}

	logger.FromContext(ctx).Warn(LogMsgWinnerLeft, "user_id", userID, "pool", pool, "anchor", anchor)
	err := s.bus.Publish(ctx, event.NewGrumblePoolKeptEvent(domain.GrumblePoolPreservedPayloadV1{
		DepartedUserID: userID,
		PreservedPool:  pool,
		NewBlockAnchor: anchor,
	}))
	if err != nil {
		logger.FromContext(ctx).Error(LogMsgPublishFailed, "error", err)
	}
	return true, nil
}

// closestBettors returns every user whose guess ties the minimum ring
// distance to the system symbol, in stable order.
func closestBettors(bets map[string]domain.GrumbleBet, systemChoice string) []string {
	minDist := -1
	var winners []string
	userIDs := make([]string, 0, len(bets))
	for userID := range bets {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)
	for _, userID := range userIDs {
		d := reward.Distance(bets[userID].Guess, systemChoice)
		if d < 0 {
			continue
		}
		switch {
		case minDist < 0 || d < minDist:
			minDist = d
			winners = winners[:0]
			winners = append(winners, userID)
		case d == minDist:
			winners = append(winners, userID)
		}
	}
	return winners
}

func cloneState(g *domain.GrumbleState) *domain.GrumbleState {
	out := *g
	out.Bets = make(map[string]domain.GrumbleBet, len(g.Bets))
	for k, v := range g.Bets {
		out.Bets[k] = v
	}
	return &out
}
