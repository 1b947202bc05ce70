package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runeworks/glyphbot/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "glyphbot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestLoadStateDefaultsWhenMissing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	state, err := s.LoadState(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), state.CurrentBlock)
	assert.Equal(t, domain.DefaultTotalRewardsPerBlock, state.TotalRewardsPerBlock)
	assert.Equal(t, domain.DefaultBaseReward, state.BaseReward)
	assert.Equal(t, domain.DefaultBlockDurationSec, state.BlockDurationSec)
	assert.Equal(t, domain.DefaultClaimLimit, state.ClaimLimit)
	assert.Greater(t, state.NextBlockAt, time.Now().UnixMilli())
	assert.NotNil(t, state.CurrentChoices)
	assert.NotNil(t, state.MarketPacks)
	assert.NotNil(t, state.MarketDollars)
	assert.NotNil(t, state.Auctions)
	assert.Empty(t, state.BlockHistory)
}

func TestLoadStateMergesPartialDocument(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Old document written before market/auction fields existed.
	partial := []byte(`{"currentBlock": 42, "blockDurationSec": 60, "nextBlockAt": 123}`)
	require.NoError(t, s.Put(ctx, DocState, partial))

	state, err := s.LoadState(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(42), state.CurrentBlock)
	assert.Equal(t, int64(60), state.BlockDurationSec)
	assert.Equal(t, int64(123), state.NextBlockAt)
	assert.Equal(t, domain.DefaultBaseReward, state.BaseReward)
	assert.NotNil(t, state.MarketPacks)
	assert.NotNil(t, state.Auctions)
	assert.Equal(t, domain.DefaultClaimLimit, state.ClaimLimit)
}

func TestLoadStateCorruptDocumentFallsBackToDefaults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, DocState, []byte("{not json")))

	state, err := s.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.CurrentBlock)
}

func TestBalancesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	balances := domain.Balances{"user1": 500, "user2": 0}
	data, err := json.Marshal(balances)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, DocBalances, data))

	loaded, err := s.LoadBalances(ctx)
	require.NoError(t, err)
	assert.Equal(t, balances, loaded)
}

func TestWriteQueueCoalescesBurst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var mu sync.Mutex
	writes := 0
	value := 0

	q := NewWriteQueue(s, 50*time.Millisecond)
	q.Register(DocBalances, func() ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		writes++
		return json.Marshal(map[string]int{"v": value})
	})

	for i := 1; i <= 10; i++ {
		mu.Lock()
		value = i
		mu.Unlock()
		q.Schedule(DocBalances)
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return writes == 1
	}, time.Second, 10*time.Millisecond)

	loaded, err := s.LoadBalances(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), loaded["v"])
}

func TestWriteQueueFlushWritesImmediately(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q := NewWriteQueue(s, time.Hour) // window long enough to never fire
	q.Register(DocBalances, func() ([]byte, error) {
		return json.Marshal(domain.Balances{"user1": 7})
	})
	q.Schedule(DocBalances)
	q.Flush(ctx)

	loaded, err := s.LoadBalances(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), loaded["user1"])
}

func TestWriteQueueShutdownFlushesAndStops(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q := NewWriteQueue(s, time.Hour)
	q.Register(DocState, func() ([]byte, error) {
		return []byte(`{"currentBlock": 9}`), nil
	})
	q.Schedule(DocState)

	require.NoError(t, q.Shutdown(ctx))

	state, err := s.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), state.CurrentBlock)

	// Schedules after shutdown are ignored.
	q.Schedule(DocState)
}

func TestPing(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
