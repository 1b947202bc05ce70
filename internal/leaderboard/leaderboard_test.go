package leaderboard

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/gamestate"
	"github.com/runeworks/glyphbot/internal/ledger"
	"github.com/runeworks/glyphbot/internal/store"
)

type fixture struct {
	svc    Service
	keeper *gamestate.Keeper
	ledger ledger.Service
}

func newFixture(t *testing.T, balances domain.Balances) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "leaderboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	state, err := st.LoadState(context.Background())
	require.NoError(t, err)

	queue := store.NewWriteQueue(st, 10*time.Millisecond)
	keeper := gamestate.NewKeeper(state, queue)
	led := ledger.NewService(balances, queue)
	return &fixture{svc: NewService(keeper, led), keeper: keeper, ledger: led}
}

func record(block int64, results ...domain.MemberResult) domain.BlockRecord {
	return domain.BlockRecord{
		BlockNumber:   block,
		SystemChoice:  domain.Symbols[0],
		MemberResults: results,
		Timestamp:     time.Now().UnixMilli(),
	}
}

func TestStandingsSortExactMatchesThenBalance(t *testing.T) {
	f := newFixture(t, domain.Balances{"rich": 10_000, "sharp": 100, "steady": 5_000})
	ctx := context.Background()

	f.keeper.Update(func(s *domain.State) {
		s.BlockHistory = append(s.BlockHistory,
			record(1,
				domain.MemberResult{UserID: "sharp", Choice: domain.Symbols[0], Reward: 950, Distance: 0},
				domain.MemberResult{UserID: "rich", Choice: domain.Symbols[5], Reward: 400, Distance: 5},
				domain.MemberResult{UserID: "steady", Choice: domain.Symbols[3], Reward: 700, Distance: 3},
			),
		)
	})

	standings := f.svc.Standings(ctx)
	require.Len(t, standings, 3)
	assert.Equal(t, "sharp", standings[0].UserID, "exact matches outrank any balance")
	assert.Equal(t, "rich", standings[1].UserID)
	assert.Equal(t, "steady", standings[2].UserID)
	assert.Equal(t, 1, standings[0].ExactMatches)
}

func TestStandingsIncludeBalanceHoldersAndPickers(t *testing.T) {
	f := newFixture(t, domain.Balances{"holder": 500})
	ctx := context.Background()

	f.keeper.Update(func(s *domain.State) {
		s.CurrentChoices["picker"] = domain.Symbols[2]
	})

	standings := f.svc.Standings(ctx)
	ids := make([]string, 0, len(standings))
	for _, e := range standings {
		ids = append(ids, e.UserID)
	}
	assert.ElementsMatch(t, []string{"holder", "picker"}, ids)
}

func TestMostPickedFolding(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.keeper.Update(func(s *domain.State) {
		s.BlockHistory = append(s.BlockHistory,
			record(1, domain.MemberResult{UserID: "u", Choice: domain.Symbols[4], Distance: 3}),
			record(2, domain.MemberResult{UserID: "u", Choice: domain.Symbols[4], Distance: 2}),
			record(3, domain.MemberResult{UserID: "u", Choice: domain.Symbols[9], Distance: 1}),
		)
	})

	_, stats, ok := f.svc.UserRank(ctx, "u")
	require.True(t, ok)
	assert.Equal(t, domain.Symbols[4], stats.MostPicked)
	assert.Equal(t, 3, stats.TotalParticipations)
	assert.Equal(t, 2, stats.Picks[domain.Symbols[4]])
}

func TestTopTruncates(t *testing.T) {
	balances := domain.Balances{}
	for i := 0; i < 15; i++ {
		balances[string(rune('a'+i))] = int64(i)
	}
	f := newFixture(t, balances)

	assert.Len(t, f.svc.Top(context.Background(), TopSize), TopSize)
	assert.Len(t, f.svc.Top(context.Background(), 100), 15)
}

func TestUserRank(t *testing.T) {
	f := newFixture(t, domain.Balances{"first": 300, "second": 200, "third": 100})
	ctx := context.Background()

	rank, entry, ok := f.svc.UserRank(ctx, "second")
	require.True(t, ok)
	assert.Equal(t, 2, rank)
	assert.Equal(t, int64(200), entry.Balance)

	_, _, ok = f.svc.UserRank(ctx, "stranger")
	assert.False(t, ok)
}

func TestCacheInvalidatedByBalanceChange(t *testing.T) {
	f := newFixture(t, domain.Balances{"a": 100, "b": 200})
	ctx := context.Background()

	first := f.svc.Standings(ctx)
	assert.Equal(t, "b", first[0].UserID)

	// A payout flips the order; the fingerprint key must miss the cache.
	_, err := f.ledger.Credit(ctx, "a", 1_000)
	require.NoError(t, err)

	second := f.svc.Standings(ctx)
	assert.Equal(t, "a", second[0].UserID)
}
