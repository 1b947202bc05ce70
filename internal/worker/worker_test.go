package worker

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runeworks/glyphbot/internal/auction"
	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/event"
	"github.com/runeworks/glyphbot/internal/gamestate"
	"github.com/runeworks/glyphbot/internal/grumble"
	"github.com/runeworks/glyphbot/internal/ledger"
	"github.com/runeworks/glyphbot/internal/store"
)

func TestPoolProcessesJobs(t *testing.T) {
	pool := NewPool(2, 10)
	pool.Start()
	defer pool.Stop()

	var processed atomic.Int32
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		pool.Enqueue(JobFunc(func(context.Context) error {
			if processed.Add(1) == 5 {
				close(done)
			}
			return nil
		}))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs never processed")
	}
}

func TestPoolSurvivesFailingJob(t *testing.T) {
	pool := NewPool(1, 10)
	pool.Start()
	defer pool.Stop()

	pool.Enqueue(JobFunc(func(context.Context) error { return errors.New("boom") }))

	done := make(chan struct{})
	pool.Enqueue(JobFunc(func(context.Context) error {
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after a failing job")
	}
}

type gameFixture struct {
	keeper  *gamestate.Keeper
	ledger  ledger.Service
	bus     *event.MemoryBus
	grumble grumble.Service
	auction auction.Service
}

func newGameFixture(t *testing.T, balances domain.Balances) *gameFixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "worker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	state, err := st.LoadState(context.Background())
	require.NoError(t, err)

	queue := store.NewWriteQueue(st, 10*time.Millisecond)
	keeper := gamestate.NewKeeper(state, queue)
	led := ledger.NewService(balances, queue)
	bus := event.NewMemoryBus()
	return &gameFixture{
		keeper:  keeper,
		ledger:  led,
		bus:     bus,
		grumble: grumble.NewService(keeper, led, bus),
		auction: auction.NewService(keeper, led, bus, auction.Config{}),
	}
}

func TestGrumbleWorkerResolvesOnBlockAdvance(t *testing.T) {
	f := newGameFixture(t, domain.Balances{"user1": 1_000})
	ctx := context.Background()

	w := NewGrumbleWorker(f.grumble, nil)
	w.Subscribe(f.bus)

	_, err := f.grumble.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, f.grumble.Join(ctx, "user1", domain.Symbols[0], 100))

	// Simulate the engine advancing past the session's anchor block.
	f.keeper.Update(func(s *domain.State) { s.CurrentBlock = 2 })
	require.NoError(t, f.bus.Publish(ctx, event.NewBlockAdvancedEvent(domain.BlockAdvancedPayloadV1{
		NewBlock:     2,
		SystemChoice: domain.Symbols[0],
	})))

	assert.False(t, f.grumble.IsActive(ctx))
	assert.Equal(t, int64(1_000), f.ledger.Balance(ctx, "user1"), "sole bettor wins the pool back")
}

func TestGrumbleWorkerIgnoresBlockAdvanceUnderCustomTimer(t *testing.T) {
	f := newGameFixture(t, domain.Balances{"user1": 1_000})
	ctx := context.Background()

	w := NewGrumbleWorker(f.grumble, nil)
	w.Subscribe(f.bus)

	_, err := f.grumble.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, f.grumble.SetTimer(ctx, 3600))

	f.keeper.Update(func(s *domain.State) { s.CurrentBlock = 5 })
	require.NoError(t, f.bus.Publish(ctx, event.NewBlockAdvancedEvent(domain.BlockAdvancedPayloadV1{
		NewBlock:     5,
		SystemChoice: domain.Symbols[0],
	})))

	assert.True(t, f.grumble.IsActive(ctx), "custom timer outlives block expiry")
}

func TestGrumbleWorkerSweepResolvesExpiredTimer(t *testing.T) {
	f := newGameFixture(t, domain.Balances{"user1": 1_000})
	ctx := context.Background()

	w := NewGrumbleWorker(f.grumble, nil)

	_, err := f.grumble.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, f.grumble.SetTimer(ctx, 3600))
	require.NoError(t, w.Sweep(ctx))
	assert.True(t, f.grumble.IsActive(ctx), "timer still running")

	f.keeper.Update(func(s *domain.State) {
		s.Grumble.CustomTimerEndsAt = time.Now().UnixMilli() - 1
	})
	require.NoError(t, w.Sweep(ctx))
	assert.False(t, f.grumble.IsActive(ctx))

	require.NoError(t, w.Shutdown(ctx))
}

func TestAuctionWorkerSweepResolvesExpired(t *testing.T) {
	f := newGameFixture(t, domain.Balances{"user1": 500})
	ctx := context.Background()

	w := NewAuctionWorker(f.auction)

	a, err := f.auction.Create(ctx, "prize", nil, time.Now().Add(time.Hour), 1)
	require.NoError(t, err)
	require.NoError(t, f.auction.PlaceBid(ctx, a.ID, "user1", 200))

	require.NoError(t, w.Sweep(ctx))
	got, err := f.auction.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.Ended, "live auction untouched")

	f.keeper.Update(func(s *domain.State) {
		s.Auctions[a.ID].EndTime = time.Now().UnixMilli() - 1
	})
	require.NoError(t, w.Sweep(ctx))

	got, err = f.auction.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Ended)

	require.NoError(t, w.Shutdown(ctx))
}
