package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/event"
	"github.com/runeworks/glyphbot/internal/gamestate"
	"github.com/runeworks/glyphbot/internal/ledger"
	"github.com/runeworks/glyphbot/internal/logger"
	"github.com/runeworks/glyphbot/internal/reward"
	"github.com/runeworks/glyphbot/internal/utils"
)

// Service drives the round lifecycle: players record symbol picks during a
// block, and when the block expires the engine draws the system symbol,
// pays out by ring distance, appends history, and advances the block.
type Service interface {
	// RecordChoice stores or replaces the user's pick for the current block.
	RecordChoice(ctx context.Context, userID, symbol string) error
	UserChoice(ctx context.Context, userID string) (string, bool)

	// Tick resolves the block when its deadline has passed. Called every
	// second by the scheduler; overlapping ticks are skipped while a
	// resolution is in flight.
	Tick(ctx context.Context)

	TimeLeft(ctx context.Context) time.Duration
	CurrentBlock(ctx context.Context) int64
	LastSystemChoice(ctx context.Context) string
	LastBlockRecord(ctx context.Context) (domain.BlockRecord, bool)
	UserHistory(ctx context.Context, userID string) []domain.BlockRecord

	SetTotalRewards(ctx context.Context, amount int64) error
	SetBaseReward(ctx context.Context, amount int64) error
	SetBlockDuration(ctx context.Context, seconds int64) error
	SetCurrentBlock(ctx context.Context, block int64) error

	// Soft stop: picks are rejected while inactive, but blocks keep
	// advancing so the countdown stays truthful.
	SetActive(ctx context.Context, active bool) bool
	IsActive(ctx context.Context) bool

	// Autorun arms a countdown of blocks after which Done is closed,
	// signalling main to shut the process down.
	StartAutorun(ctx context.Context, blocks int)
	AutorunRemaining(ctx context.Context) int
	AutorunDone() <-chan struct{}

	ResetRecords(ctx context.Context)
	ResetAll(ctx context.Context)
}

type service struct {
	keeper *gamestate.Keeper
	ledger ledger.Service
	model  *reward.Model
	bus    event.Bus

	mu          sync.Mutex
	resolving   bool
	active      bool
	autorunLeft int // -1 when unarmed

	autorunDone chan struct{}
	doneOnce    sync.Once
}

// NewService creates the round engine. A nil reward model gets a seeded one.
func NewService(keeper *gamestate.Keeper, led ledger.Service, model *reward.Model, bus event.Bus) Service {
	if model == nil {
		model = reward.NewModel(nil)
	}
	return &service{
		keeper:      keeper,
		ledger:      led,
		model:       model,
		bus:         bus,
		active:      true,
		autorunLeft: -1,
		autorunDone: make(chan struct{}),
	}
}

func (s *service) RecordChoice(ctx context.Context, userID, symbol string) error {
	if !s.IsActive(ctx) {
		return domain.ErrEngineStopped
	}
	if !domain.IsValidSymbol(symbol) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidSymbol, symbol)
	}

	s.keeper.Update(func(st *domain.State) {
		st.CurrentChoices[userID] = symbol
	})
	logger.FromContext(ctx).Debug(LogMsgChoiceRecorded, "user_id", userID, "symbol", symbol)
	return nil
}

func (s *service) UserChoice(_ context.Context, userID string) (string, bool) {
	var choice string
	var ok bool
	s.keeper.View(func(st *domain.State) {
		choice, ok = st.CurrentChoices[userID]
	})
	return choice, ok
}

func (s *service) Tick(ctx context.Context) {
	var due bool
	now := utils.NowMs()
	s.keeper.View(func(st *domain.State) {
		due = now >= st.NextBlockAt
	})
	if !due {
		return
	}

	s.mu.Lock()
	if s.resolving {
		s.mu.Unlock()
		return
	}
	s.resolving = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.resolving = false
		s.mu.Unlock()
	}()

	s.resolveBlock(ctx)
}

// resolveBlock settles the expiring block and advances to the next one.
// Rounds with no participants advance the block without a history record.
func (s *service) resolveBlock(ctx context.Context) {
	log := logger.FromContext(ctx)
	systemChoice := s.model.PickSymbol()

	var (
		results  []domain.MemberResult
		newBlock int64
		stale    bool
	)
	s.keeper.Update(func(st *domain.State) {
		now := utils.NowMs()
		// Re-check the deadline under the state lock. A tick descheduled
		// between the due check and the resolving guard could arrive here
		// after another tick already advanced the block.
		if now < st.NextBlockAt {
			stale = true
			return
		}
		for userID, choice := range st.CurrentChoices {
			results = append(results, domain.MemberResult{
				UserID:   userID,
				Choice:   choice,
				Reward:   s.model.Compute(st.BaseReward, choice, systemChoice),
				Distance: reward.Distance(choice, systemChoice),
			})
		}
		if len(results) > 0 {
			st.BlockHistory = append(st.BlockHistory, domain.BlockRecord{
				BlockNumber:   st.CurrentBlock,
				SystemChoice:  systemChoice,
				MemberResults: results,
				Timestamp:     now,
			})
		}
		st.LastSystemChoice = systemChoice
		st.CurrentBlock++
		st.NextBlockAt = now + st.BlockDurationSec*1000
		st.CurrentChoices = map[string]string{}
		newBlock = st.CurrentBlock
	})
	if stale {
		return
	}

	var totalPaid int64
	for _, r := range results {
		if r.Reward <= 0 {
			continue
		}
		if _, err := s.ledger.Credit(ctx, r.UserID, r.Reward); err != nil {
			log.Error(LogMsgPayoutFailed, "user_id", r.UserID, "reward", r.Reward, "error", err)
			continue
		}
		totalPaid += r.Reward
	}

	remaining := s.advanceAutorun()

	log.Info(LogMsgBlockResolved,
		"block", newBlock-1,
		"system_choice", systemChoice,
		"participants", len(results),
		"autorun_remaining", remaining)

	ev := event.NewBlockAdvancedEvent(domain.BlockAdvancedPayloadV1{
		NewBlock:         newBlock,
		SystemChoice:     systemChoice,
		Participants:     len(results),
		TotalRewards:     totalPaid,
		AutorunRemaining: remaining,
	})
	if err := s.bus.Publish(ctx, ev); err != nil {
		log.Error(LogMsgPublishFailed, "error", err)
	}
}

// advanceAutorun decrements the countdown and closes the done channel when
// it hits zero. Returns the remaining count, -1 when unarmed.
func (s *service) advanceAutorun() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.autorunLeft < 0 {
		return -1
	}
	if s.autorunLeft > 0 {
		s.autorunLeft--
	}
	if s.autorunLeft == 0 {
		s.doneOnce.Do(func() { close(s.autorunDone) })
	}
	return s.autorunLeft
}

func (s *service) TimeLeft(_ context.Context) time.Duration {
	var left int64
	now := utils.NowMs()
	s.keeper.View(func(st *domain.State) {
		left = st.NextBlockAt - now
	})
	if left < 0 {
		left = 0
	}
	return time.Duration(left) * time.Millisecond
}

func (s *service) CurrentBlock(_ context.Context) int64 {
	var block int64
	s.keeper.View(func(st *domain.State) { block = st.CurrentBlock })
	return block
}

func (s *service) LastSystemChoice(_ context.Context) string {
	var choice string
	s.keeper.View(func(st *domain.State) { choice = st.LastSystemChoice })
	return choice
}

// LastBlockRecord returns the history record of the previous block, if any
// participants played it.
func (s *service) LastBlockRecord(_ context.Context) (domain.BlockRecord, bool) {
	var (
		record domain.BlockRecord
		found  bool
	)
	s.keeper.View(func(st *domain.State) {
		last := st.CurrentBlock - 1
		for i := len(st.BlockHistory) - 1; i >= 0; i-- {
			if st.BlockHistory[i].BlockNumber == last {
				record = st.BlockHistory[i]
				found = true
				return
			}
		}
	})
	return record, found
}

// UserHistory returns the blocks the user participated in, most recent first.
func (s *service) UserHistory(_ context.Context, userID string) []domain.BlockRecord {
	var out []domain.BlockRecord
	s.keeper.View(func(st *domain.State) {
		for _, block := range st.BlockHistory {
			for _, r := range block.MemberResults {
				if r.UserID == userID {
					out = append(out, block)
					break
				}
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].BlockNumber > out[j].BlockNumber })
	return out
}

func (s *service) SetTotalRewards(ctx context.Context, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidAmount, amount)
	}
	s.keeper.Update(func(st *domain.State) { st.TotalRewardsPerBlock = amount })
	logger.FromContext(ctx).Info(LogMsgTotalRewardsSet, "amount", amount)
	return nil
}

func (s *service) SetBaseReward(ctx context.Context, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidAmount, amount)
	}
	s.keeper.Update(func(st *domain.State) { st.BaseReward = amount })
	logger.FromContext(ctx).Info(LogMsgBaseRewardSet, "amount", amount)
	return nil
}

// SetBlockDuration changes the block length and restarts the countdown of
// the current block from now.
func (s *service) SetBlockDuration(ctx context.Context, seconds int64) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidDuration, seconds)
	}
	s.keeper.Update(func(st *domain.State) {
		st.BlockDurationSec = seconds
		st.NextBlockAt = utils.NowMs() + seconds*1000
	})
	logger.FromContext(ctx).Info(LogMsgDurationSet, "seconds", seconds)
	return nil
}

func (s *service) SetCurrentBlock(ctx context.Context, block int64) error {
	if block < 1 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidBlock, block)
	}
	s.keeper.Update(func(st *domain.State) { st.CurrentBlock = block })
	logger.FromContext(ctx).Info(LogMsgBlockSet, "block", block)
	return nil
}

// SetActive flips the soft stop flag. Returns false when already in the
// requested state.
func (s *service) SetActive(ctx context.Context, active bool) bool {
	s.mu.Lock()
	changed := s.active != active
	s.active = active
	s.mu.Unlock()
	if changed {
		logger.FromContext(ctx).Info(LogMsgActiveChanged, "active", active)
	}
	return changed
}

func (s *service) IsActive(_ context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *service) StartAutorun(ctx context.Context, blocks int) {
	s.mu.Lock()
	s.autorunLeft = blocks
	s.mu.Unlock()
	logger.FromContext(ctx).Info(LogMsgAutorunArmed, "blocks", blocks)
}

func (s *service) AutorunRemaining(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autorunLeft
}

func (s *service) AutorunDone() <-chan struct{} {
	return s.autorunDone
}

func (s *service) ResetRecords(ctx context.Context) {
	s.keeper.Update(func(st *domain.State) {
		st.BlockHistory = []domain.BlockRecord{}
	})
	logger.FromContext(ctx).Warn(LogMsgRecordsReset)
}

// ResetAll restores the game to a fresh first block: history, picks, and
// all balances are cleared.
func (s *service) ResetAll(ctx context.Context) {
	s.keeper.Update(func(st *domain.State) {
		st.CurrentBlock = 1
		st.BlockHistory = []domain.BlockRecord{}
		st.CurrentChoices = map[string]string{}
		st.LastSystemChoice = ""
		st.NextBlockAt = utils.NowMs() + st.BlockDurationSec*1000
	})
	s.ledger.ResetAll(ctx)
	logger.FromContext(ctx).Warn(LogMsgFullReset)
}
