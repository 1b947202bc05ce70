package engine

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/event"
	"github.com/runeworks/glyphbot/internal/gamestate"
	"github.com/runeworks/glyphbot/internal/ledger"
	"github.com/runeworks/glyphbot/internal/store"
)

type fixture struct {
	svc    Service
	keeper *gamestate.Keeper
	ledger ledger.Service
	bus    *event.MemoryBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	state, err := st.LoadState(context.Background())
	require.NoError(t, err)

	queue := store.NewWriteQueue(st, 10*time.Millisecond)
	keeper := gamestate.NewKeeper(state, queue)
	led := ledger.NewService(nil, queue)
	bus := event.NewMemoryBus()
	return &fixture{
		svc:    NewService(keeper, led, nil, bus),
		keeper: keeper,
		ledger: led,
		bus:    bus,
	}
}

func (f *fixture) expireBlock() {
	f.keeper.Update(func(s *domain.State) {
		s.NextBlockAt = time.Now().UnixMilli() - 1
	})
}

func TestRecordChoiceValidatesSymbol(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RecordChoice(ctx, "user1", domain.Symbols[3]))
	choice, ok := f.svc.UserChoice(ctx, "user1")
	require.True(t, ok)
	assert.Equal(t, domain.Symbols[3], choice)

	err := f.svc.RecordChoice(ctx, "user1", "Z")
	assert.ErrorIs(t, err, domain.ErrInvalidSymbol)
}

func TestRecordChoiceReplacesPreviousPick(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RecordChoice(ctx, "user1", domain.Symbols[0]))
	require.NoError(t, f.svc.RecordChoice(ctx, "user1", domain.Symbols[5]))

	choice, _ := f.svc.UserChoice(ctx, "user1")
	assert.Equal(t, domain.Symbols[5], choice)
}

func TestRecordChoiceRejectedWhileStopped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.True(t, f.svc.SetActive(ctx, false))
	err := f.svc.RecordChoice(ctx, "user1", domain.Symbols[0])
	assert.ErrorIs(t, err, domain.ErrEngineStopped)

	assert.True(t, f.svc.SetActive(ctx, true))
	assert.False(t, f.svc.SetActive(ctx, true), "second start is a no-op")
	assert.NoError(t, f.svc.RecordChoice(ctx, "user1", domain.Symbols[0]))
}

func TestTickBeforeDeadlineDoesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before := f.svc.CurrentBlock(ctx)
	f.svc.Tick(ctx)
	assert.Equal(t, before, f.svc.CurrentBlock(ctx))
}

func TestTickResolvesExpiredBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var published []domain.BlockAdvancedPayloadV1
	f.bus.Subscribe(event.BlockAdvanced, func(_ context.Context, e event.Event) error {
		p, err := event.DecodePayload[domain.BlockAdvancedPayloadV1](e.Payload)
		require.NoError(t, err)
		published = append(published, p)
		return nil
	})

	require.NoError(t, f.svc.RecordChoice(ctx, "user1", domain.Symbols[0]))
	require.NoError(t, f.svc.RecordChoice(ctx, "user2", domain.Symbols[11]))
	f.expireBlock()
	f.svc.Tick(ctx)

	assert.Equal(t, int64(2), f.svc.CurrentBlock(ctx))
	assert.True(t, domain.IsValidSymbol(f.svc.LastSystemChoice(ctx)))

	record, ok := f.svc.LastBlockRecord(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(1), record.BlockNumber)
	assert.Len(t, record.MemberResults, 2)

	// Every participant earns at least the worst-tier minimum.
	for _, r := range record.MemberResults {
		assert.GreaterOrEqual(t, r.Reward, int64(1))
		assert.Equal(t, r.Reward, f.ledger.Balance(ctx, r.UserID))
	}

	// Picks are cleared for the new block.
	_, ok = f.svc.UserChoice(ctx, "user1")
	assert.False(t, ok)

	require.Len(t, published, 1)
	assert.Equal(t, int64(2), published[0].NewBlock)
	assert.Equal(t, 2, published[0].Participants)
	assert.Equal(t, -1, published[0].AutorunRemaining)
}

func TestConcurrentTicksResolveOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Each expiry must advance the block exactly once no matter how many
	// ticks race it.
	for i := 0; i < 200; i++ {
		before := f.svc.CurrentBlock(ctx)
		f.expireBlock()

		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				f.svc.Tick(ctx)
			}()
		}
		wg.Wait()

		require.Equal(t, before+1, f.svc.CurrentBlock(ctx))
	}
}

func TestEmptyBlockAdvancesWithoutHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.expireBlock()
	f.svc.Tick(ctx)

	assert.Equal(t, int64(2), f.svc.CurrentBlock(ctx))
	_, ok := f.svc.LastBlockRecord(ctx)
	assert.False(t, ok)
}

func TestUserHistoryMostRecentFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, f.svc.RecordChoice(ctx, "user1", domain.Symbols[i]))
		f.expireBlock()
		f.svc.Tick(ctx)
	}

	history := f.svc.UserHistory(ctx, "user1")
	require.Len(t, history, 3)
	assert.Equal(t, int64(3), history[0].BlockNumber)
	assert.Equal(t, int64(1), history[2].BlockNumber)
	assert.Empty(t, f.svc.UserHistory(ctx, "stranger"))
}

func TestSettersValidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.SetTotalRewards(ctx, 0), domain.ErrInvalidAmount)
	assert.ErrorIs(t, f.svc.SetBaseReward(ctx, -1), domain.ErrInvalidAmount)
	assert.ErrorIs(t, f.svc.SetBlockDuration(ctx, 0), domain.ErrInvalidDuration)
	assert.ErrorIs(t, f.svc.SetCurrentBlock(ctx, 0), domain.ErrInvalidBlock)

	require.NoError(t, f.svc.SetBlockDuration(ctx, 120))
	left := f.svc.TimeLeft(ctx)
	assert.Greater(t, left, 115*time.Second)
	assert.LessOrEqual(t, left, 120*time.Second)

	require.NoError(t, f.svc.SetCurrentBlock(ctx, 99))
	assert.Equal(t, int64(99), f.svc.CurrentBlock(ctx))
}

func TestAutorunCountdown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.StartAutorun(ctx, 2)
	assert.Equal(t, 2, f.svc.AutorunRemaining(ctx))

	f.expireBlock()
	f.svc.Tick(ctx)
	assert.Equal(t, 1, f.svc.AutorunRemaining(ctx))
	select {
	case <-f.svc.AutorunDone():
		t.Fatal("done signalled too early")
	default:
	}

	f.expireBlock()
	f.svc.Tick(ctx)
	assert.Equal(t, 0, f.svc.AutorunRemaining(ctx))
	select {
	case <-f.svc.AutorunDone():
	case <-time.After(time.Second):
		t.Fatal("done never signalled")
	}
}

func TestResetAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RecordChoice(ctx, "user1", domain.Symbols[0]))
	f.expireBlock()
	f.svc.Tick(ctx)
	require.Equal(t, int64(2), f.svc.CurrentBlock(ctx))

	f.svc.ResetAll(ctx)
	assert.Equal(t, int64(1), f.svc.CurrentBlock(ctx))
	assert.Empty(t, f.svc.UserHistory(ctx, "user1"))
	assert.Equal(t, int64(0), f.ledger.Balance(ctx, "user1"))
}
