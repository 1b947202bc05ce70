package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/engine"
	"github.com/runeworks/glyphbot/internal/event"
	"github.com/runeworks/glyphbot/internal/gamestate"
	"github.com/runeworks/glyphbot/internal/leaderboard"
	"github.com/runeworks/glyphbot/internal/ledger"
	"github.com/runeworks/glyphbot/internal/store"
)

func TestExportWritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "export.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	ctx := context.Background()
	state, err := st.LoadState(ctx)
	require.NoError(t, err)

	queue := store.NewWriteQueue(st, 10*time.Millisecond)
	keeper := gamestate.NewKeeper(state, queue)
	led := ledger.NewService(domain.Balances{"user1": 1_500, "user2": 500}, queue)
	board := leaderboard.NewService(keeper, led)
	eng := engine.NewService(keeper, led, nil, event.NewMemoryBus())

	keeper.Update(func(s *domain.State) {
		s.MarketPacks["user1"] = 2
		s.MarketDollars["user2"] = 7
	})

	exportDir := filepath.Join(dir, "exports")
	svc := NewService(keeper, led, board, eng, exportDir, "role-1", "chan-1")

	result, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.FileExists(t, result.FilePath)
	assert.Contains(t, filepath.Base(result.FilePath), "glyphs-export-")

	data, err := os.ReadFile(result.FilePath)
	require.NoError(t, err)

	var payload Payload
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, 2, payload.Summary.TotalAccounts)
	assert.Equal(t, int64(2_000), payload.Summary.TotalGlyphs)
	assert.Equal(t, 2, payload.Summary.TotalPacks)
	assert.Equal(t, 7, payload.Summary.TotalDollarBalance)
	assert.Equal(t, int64(1_500), payload.Balances["user1"])
	assert.Equal(t, "role-1", payload.Metadata.NotifyRoleID)
	assert.Equal(t, -1, payload.Metadata.AutorunRemaining)
	assert.Len(t, payload.Leaderboard, 2)
}
