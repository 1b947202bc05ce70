package auction

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
}

func newFixture(t *testing.T, balances domain.Balances, cfg Config) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "auction.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	state, err := st.LoadState(context.Background())
	require.NoError(t, err)

	queue := store.NewWriteQueue(st, 10*time.Millisecond)
	keeper := gamestate.NewKeeper(state, queue)
	led := ledger.NewService(balances, queue)
	return &fixture{
		svc:    NewService(keeper, led, event.NewMemoryBus(), cfg),
		keeper: keeper,
		ledger: led,
	}
}

func (f *fixture) create(t *testing.T, winners int) string {
	t.Helper()
	a, err := f.svc.Create(context.Background(), "test prize", nil, time.Now().Add(time.Hour), winners)
	require.NoError(t, err)
	return a.ID
}

func TestCreateValidates(t *testing.T) {
	f := newFixture(t, nil, Config{})
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "x", nil, time.Now().Add(time.Hour), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.Create(ctx, "x", nil, time.Now().Add(-time.Minute), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)

	a, err := f.svc.Create(ctx, "signed print", []string{"role1"}, time.Now().Add(time.Hour), 2)
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.True(t, a.IsActive)
	assert.False(t, a.Ended)

	got, err := f.svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "signed print", got.Description)
}

func TestPlaceBidEscrowsImmediately(t *testing.T) {
	f := newFixture(t, domain.Balances{"user1": 1_000}, Config{})
	ctx := context.Background()
	id := f.create(t, 1)

	require.NoError(t, f.svc.PlaceBid(ctx, id, "user1", 400))
	assert.Equal(t, int64(600), f.ledger.Balance(ctx, "user1"))

	bid, ok := f.svc.UserBid(ctx, id, "user1")
	require.True(t, ok)
	assert.Equal(t, int64(400), bid)
}

func TestPlaceBidErrors(t *testing.T) {
	f := newFixture(t, domain.Balances{"user1": 1_000}, Config{})
	ctx := context.Background()
	id := f.create(t, 1)

	assert.ErrorIs(t, f.svc.PlaceBid(ctx, "missing", "user1", 10), domain.ErrAuctionNotFound)
	assert.ErrorIs(t, f.svc.PlaceBid(ctx, id, "user1", 0), domain.ErrInvalidAmount)
	assert.ErrorIs(t, f.svc.PlaceBid(ctx, id, "user1", 2_000), domain.ErrInsufficientFunds)

	require.NoError(t, f.svc.PlaceBid(ctx, id, "user1", 100))
	err := f.svc.PlaceBid(ctx, id, "user1", 200)
	assert.ErrorIs(t, err, domain.ErrAlreadyBid)
	assert.Equal(t, int64(900), f.ledger.Balance(ctx, "user1"), "rejected re-bid must not escrow")

	// Past the deadline the auction no longer takes bids.
	f.keeper.Update(func(s *domain.State) {
		s.Auctions[id].EndTime = time.Now().UnixMilli() - 1
	})
	assert.ErrorIs(t, f.svc.PlaceBid(ctx, id, "user2", 10), domain.ErrAuctionEnded)
}

// deadlineShiftLedger runs a hook before delegating the escrow debit, so
// tests can move an auction deadline while a bid is in flight.
type deadlineShiftLedger struct {
	ledger.Service
	onDebit func()
}

func (l *deadlineShiftLedger) Debit(ctx context.Context, userID string, amount int64) (int64, error) {
	l.onDebit()
	return l.Service.Debit(ctx, userID, amount)
}

func TestPlaceBidExpiringDuringEscrowIsRefunded(t *testing.T) {
	f := newFixture(t, domain.Balances{"user1": 1_000}, Config{})
	ctx := context.Background()
	id := f.create(t, 1)

	shifting := &deadlineShiftLedger{Service: f.ledger, onDebit: func() {
		f.keeper.Update(func(s *domain.State) {
			s.Auctions[id].EndTime = time.Now().UnixMilli() - 1
		})
	}}
	svc := NewService(f.keeper, shifting, event.NewMemoryBus(), Config{})

	err := svc.PlaceBid(ctx, id, "user1", 400)
	assert.ErrorIs(t, err, domain.ErrAuctionEnded)
	assert.Equal(t, int64(1_000), f.ledger.Balance(ctx, "user1"), "escrow must be refunded")

	_, ok := f.svc.UserBid(ctx, id, "user1")
	assert.False(t, ok, "expired auction must not record the bid")
}

func TestResolveTopNWinnersLosersNotRefunded(t *testing.T) {
	f := newFixture(t, domain.Balances{"a": 500, "b": 500, "c": 500}, Config{})
	ctx := context.Background()
	id := f.create(t, 2)

	require.NoError(t, f.svc.PlaceBid(ctx, id, "a", 300))
	require.NoError(t, f.svc.PlaceBid(ctx, id, "b", 200))
	require.NoError(t, f.svc.PlaceBid(ctx, id, "c", 100))

	payload, err := f.svc.Resolve(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, payload.WinnerIDs)
	assert.Equal(t, int64(300), payload.TopBid)
	assert.Equal(t, 3, payload.BidCount)

	// Escrow is sunk for everyone under the default policy.
	assert.Equal(t, int64(200), f.ledger.Balance(ctx, "a"))
	assert.Equal(t, int64(300), f.ledger.Balance(ctx, "b"))
	assert.Equal(t, int64(400), f.ledger.Balance(ctx, "c"))

	_, err = f.svc.Resolve(ctx, id)
	assert.ErrorIs(t, err, domain.ErrAuctionEnded)
}

func TestResolveRefundsLosersWhenConfigured(t *testing.T) {
	f := newFixture(t, domain.Balances{"a": 500, "b": 500}, Config{RefundLosers: true})
	ctx := context.Background()
	id := f.create(t, 1)

	require.NoError(t, f.svc.PlaceBid(ctx, id, "a", 300))
	require.NoError(t, f.svc.PlaceBid(ctx, id, "b", 200))

	_, err := f.svc.Resolve(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, int64(200), f.ledger.Balance(ctx, "a"), "winner pays")
	assert.Equal(t, int64(500), f.ledger.Balance(ctx, "b"), "loser refunded")
}

func TestRankingsAndUserRank(t *testing.T) {
	f := newFixture(t, domain.Balances{"a": 500, "b": 500, "c": 500}, Config{})
	ctx := context.Background()
	id := f.create(t, 1)

	require.NoError(t, f.svc.PlaceBid(ctx, id, "c", 100))
	require.NoError(t, f.svc.PlaceBid(ctx, id, "a", 300))
	require.NoError(t, f.svc.PlaceBid(ctx, id, "b", 200))

	rankings := f.svc.Rankings(ctx, id)
	require.Len(t, rankings, 3)
	assert.Equal(t, "a", rankings[0].UserID)
	assert.Equal(t, "c", rankings[2].UserID)

	rank, ok := f.svc.UserRank(ctx, id, "b")
	require.True(t, ok)
	assert.Equal(t, 2, rank)

	_, ok = f.svc.UserRank(ctx, id, "stranger")
	assert.False(t, ok)
}

func TestActiveAndExpiredPartition(t *testing.T) {
	f := newFixture(t, nil, Config{})
	ctx := context.Background()

	liveID := f.create(t, 1)
	expiredID := f.create(t, 1)
	f.keeper.Update(func(s *domain.State) {
		s.Auctions[expiredID].EndTime = time.Now().UnixMilli() - 1
	})

	active := f.svc.Active(ctx)
	require.Len(t, active, 1)
	assert.Equal(t, liveID, active[0].ID)

	expired := f.svc.Expired(ctx)
	require.Len(t, expired, 1)
	assert.Equal(t, expiredID, expired[0].ID)

	_, err := f.svc.Resolve(ctx, expiredID)
	require.NoError(t, err)
	assert.Empty(t, f.svc.Expired(ctx))
}
