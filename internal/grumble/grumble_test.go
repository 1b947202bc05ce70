package grumble

import (
	"context"
	"path/filepath"
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

func newFixture(t *testing.T, balances domain.Balances) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "grumble.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	state, err := st.LoadState(context.Background())
	require.NoError(t, err)

	queue := store.NewWriteQueue(st, 10*time.Millisecond)
	keeper := gamestate.NewKeeper(state, queue)
	led := ledger.NewService(balances, queue)
	bus := event.NewMemoryBus()
	return &fixture{
		svc:    NewService(keeper, led, bus),
		keeper: keeper,
		ledger: led,
		bus:    bus,
	}
}

func TestStartRejectsSecondSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	created, err := f.svc.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.BlockNumber)
	assert.True(t, f.svc.IsActive(ctx))

	_, err = f.svc.Start(ctx)
	assert.ErrorIs(t, err, domain.ErrGrumbleAlreadyActive)
}

func TestJoinDebitsStakeAndGrowsPool(t *testing.T) {
	f := newFixture(t, domain.Balances{"user1": 1_000, "user2": 500})
	ctx := context.Background()

	_, err := f.svc.Start(ctx)
	require.NoError(t, err)

	require.NoError(t, f.svc.Join(ctx, "user1", domain.Symbols[0], 400))
	require.NoError(t, f.svc.Join(ctx, "user2", domain.Symbols[1], 500))

	assert.Equal(t, int64(600), f.ledger.Balance(ctx, "user1"))
	assert.Equal(t, int64(0), f.ledger.Balance(ctx, "user2"))

	state, ok := f.svc.State(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(900), state.PrizePool)

	bet, ok := f.svc.UserBet(ctx, "user1")
	require.True(t, ok)
	assert.Equal(t, int64(400), bet.Amount)
	assert.Equal(t, domain.Symbols[0], bet.Guess)
}

func TestJoinOneBetPerUser(t *testing.T) {
	f := newFixture(t, domain.Balances{"user1": 1_000})
	ctx := context.Background()

	_, err := f.svc.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, f.svc.Join(ctx, "user1", domain.Symbols[0], 100))

	err = f.svc.Join(ctx, "user1", domain.Symbols[1], 100)
	assert.ErrorIs(t, err, domain.ErrGrumbleAlreadyJoined)
	assert.Equal(t, int64(900), f.ledger.Balance(ctx, "user1"), "second bet must not debit")
}

func TestJoinValidation(t *testing.T) {
	f := newFixture(t, domain.Balances{"user1": 50})
	ctx := context.Background()

	err := f.svc.Join(ctx, "user1", domain.Symbols[0], 10)
	assert.ErrorIs(t, err, domain.ErrGrumbleNotActive)

	_, err = f.svc.Start(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Join(ctx, "user1", "bad", 10), domain.ErrInvalidSymbol)
	assert.ErrorIs(t, f.svc.Join(ctx, "user1", domain.Symbols[0], 0), domain.ErrInvalidAmount)
	assert.ErrorIs(t, f.svc.Join(ctx, "user1", domain.Symbols[0], 100), domain.ErrInsufficientFunds)

	state, _ := f.svc.State(ctx)
	assert.Zero(t, state.PrizePool, "failed joins must not grow the pool")
}

func TestShouldEndOnBlockAdvance(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Start(ctx)
	require.NoError(t, err)
	assert.False(t, f.svc.ShouldEnd(ctx))

	f.keeper.Update(func(s *domain.State) { s.CurrentBlock++ })
	assert.True(t, f.svc.ShouldEnd(ctx))
}

func TestCustomTimerTakesPrecedence(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, f.svc.SetTimer(ctx, 3600))
	assert.True(t, f.svc.UsingCustomTimer(ctx))

	// Block advance no longer ends the session while the timer runs.
	f.keeper.Update(func(s *domain.State) { s.CurrentBlock++ })
	assert.False(t, f.svc.ShouldEnd(ctx))
	assert.Greater(t, f.svc.TimeLeft(ctx), 59*time.Minute)

	// Expired timer ends it regardless of blocks.
	f.keeper.Update(func(s *domain.State) {
		s.Grumble.CustomTimerEndsAt = time.Now().UnixMilli() - 1
	})
	assert.True(t, f.svc.ShouldEnd(ctx))
}

func TestRestartReanchorsAndDropsTimer(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Restart(ctx), domain.ErrGrumbleNotActive)

	_, err := f.svc.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, f.svc.SetTimer(ctx, 600))

	f.keeper.Update(func(s *domain.State) { s.CurrentBlock = 5 })
	require.NoError(t, f.svc.Restart(ctx))

	state, _ := f.svc.State(ctx)
	assert.Equal(t, int64(5), state.BlockNumber)
	assert.False(t, f.svc.UsingCustomTimer(ctx))
	assert.False(t, f.svc.ShouldEnd(ctx))
}

func TestResolveSingleWinnerTakesPool(t *testing.T) {
	f := newFixture(t, domain.Balances{"near": 1_000, "far": 1_000})
	ctx := context.Background()

	_, err := f.svc.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, f.svc.Join(ctx, "near", domain.Symbols[1], 300))
	require.NoError(t, f.svc.Join(ctx, "far", domain.Symbols[11], 200))

	payload, err := f.svc.Resolve(ctx, domain.Symbols[0])
	require.NoError(t, err)

	assert.Equal(t, []string{"near"}, payload.WinnerIDs)
	assert.Equal(t, int64(500), payload.PrizePerWinner)
	assert.Equal(t, 2, payload.Participants)
	assert.Equal(t, int64(1_200), f.ledger.Balance(ctx, "near"))
	assert.Equal(t, int64(800), f.ledger.Balance(ctx, "far"))
	assert.False(t, f.svc.IsActive(ctx), "session cleared after resolution")
}

func TestResolveTieSplitsFloorRemainderRetained(t *testing.T) {
	f := newFixture(t, domain.Balances{"a": 100, "b": 100, "c": 100})
	ctx := context.Background()

	_, err := f.svc.Start(ctx)
	require.NoError(t, err)
	// Symbols 1 and 21 are both distance 1 from symbol 0 on the ring.
	require.NoError(t, f.svc.Join(ctx, "a", domain.Symbols[1], 33))
	require.NoError(t, f.svc.Join(ctx, "b", domain.Symbols[21], 33))
	require.NoError(t, f.svc.Join(ctx, "c", domain.Symbols[11], 35))

	payload, err := f.svc.Resolve(ctx, domain.Symbols[0])
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a", "b"}, payload.WinnerIDs)
	assert.Equal(t, int64(50), payload.PrizePerWinner, "101 split by 2 floors to 50")
	assert.Equal(t, int64(117), f.ledger.Balance(ctx, "a"))
	assert.Equal(t, int64(117), f.ledger.Balance(ctx, "b"))
	assert.Equal(t, int64(65), f.ledger.Balance(ctx, "c"))
}

func TestResolveWithoutParticipants(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Start(ctx)
	require.NoError(t, err)

	payload, err := f.svc.Resolve(ctx, domain.Symbols[0])
	require.NoError(t, err)
	assert.Empty(t, payload.WinnerIDs)
	assert.Zero(t, payload.Participants)
	assert.False(t, f.svc.IsActive(ctx))

	_, err = f.svc.Resolve(ctx, domain.Symbols[0])
	assert.ErrorIs(t, err, domain.ErrGrumbleNotActive)
}

func TestHandleMemberRemovePreservesPool(t *testing.T) {
	f := newFixture(t, domain.Balances{"winner": 500, "other": 500})
	ctx := context.Background()

	var kept []domain.GrumblePoolPreservedPayloadV1
	f.bus.Subscribe(event.GrumblePoolKept, func(_ context.Context, e event.Event) error {
		p, err := event.DecodePayload[domain.GrumblePoolPreservedPayloadV1](e.Payload)
		require.NoError(t, err)
		kept = append(kept, p)
		return nil
	})

	_, err := f.svc.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, f.svc.Join(ctx, "winner", domain.Symbols[0], 200))
	require.NoError(t, f.svc.Join(ctx, "other", domain.Symbols[11], 100))

	f.keeper.Update(func(s *domain.State) {
		s.LastSystemChoice = domain.Symbols[0]
		s.CurrentBlock = 7
	})

	preserved, err := f.svc.HandleMemberRemove(ctx, "winner")
	require.NoError(t, err)
	assert.True(t, preserved)

	state, ok := f.svc.State(ctx)
	require.True(t, ok)
	assert.True(t, state.IsActive)
	assert.Equal(t, int64(300), state.PrizePool)
	assert.Empty(t, state.Bets)
	assert.Equal(t, int64(7), state.BlockNumber)

	require.Len(t, kept, 1)
	assert.Equal(t, "winner", kept[0].DepartedUserID)
	assert.Equal(t, int64(300), kept[0].PreservedPool)
}

func TestHandleMemberRemoveIgnoresLosers(t *testing.T) {
	f := newFixture(t, domain.Balances{"winner": 500, "loser": 500})
	ctx := context.Background()

	_, err := f.svc.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, f.svc.Join(ctx, "winner", domain.Symbols[0], 200))
	require.NoError(t, f.svc.Join(ctx, "loser", domain.Symbols[11], 100))

	f.keeper.Update(func(s *domain.State) { s.LastSystemChoice = domain.Symbols[0] })

	preserved, err := f.svc.HandleMemberRemove(ctx, "loser")
	require.NoError(t, err)
	assert.False(t, preserved)

	state, _ := f.svc.State(ctx)
	assert.Len(t, state.Bets, 2, "session untouched when a non-winner leaves")
}
