package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/engine"
	"github.com/runeworks/glyphbot/internal/gamestate"
	"github.com/runeworks/glyphbot/internal/leaderboard"
	"github.com/runeworks/glyphbot/internal/ledger"
	"github.com/runeworks/glyphbot/internal/logger"
)

// DefaultDir is where snapshots land, relative to the working directory.
const DefaultDir = "data/exports"

// Metadata captures round configuration at export time.
type Metadata struct {
	CurrentBlock         int64  `json:"currentBlock"`
	TotalRewardsPerBlock int64  `json:"totalRewardsPerBlock"`
	BaseReward           int64  `json:"baseReward"`
	BlockDurationSec     int64  `json:"blockDurationSec"`
	NextBlockAt          int64  `json:"nextBlockAt"`
	LastSystemChoice     string `json:"lastSystemChoice,omitempty"`
	AutorunRemaining     int    `json:"autorunRemaining"`
	NotifyRoleID         string `json:"notifyRoleId,omitempty"`
	NotifyChannelID      string `json:"notifyChannelId,omitempty"`
}

// Summary aggregates headline numbers for quick inspection.
type Summary struct {
	TotalAccounts       int   `json:"totalAccounts"`
	TotalGlyphs         int64 `json:"totalGlyphs"`
	BlockHistoryEntries int   `json:"blockHistoryEntries"`
	LeaderboardEntries  int   `json:"leaderboardEntries"`
	TotalPacks          int   `json:"totalPacks"`
	TotalDollarBalance  int   `json:"totalDollarBalance"`
}

// Payload is the full snapshot document.
type Payload struct {
	GeneratedAt string                  `json:"generatedAt"`
	Metadata    Metadata                `json:"metadata"`
	Summary     Summary                 `json:"summary"`
	Balances    domain.Balances         `json:"balances"`
	Choices     map[string]string       `json:"currentChoices"`
	State       *domain.State           `json:"state"`
	Leaderboard []leaderboard.UserStats `json:"leaderboard"`
	Market      MarketSection           `json:"market"`
}

// MarketSection mirrors the pack and dollar maps for spreadsheet imports.
type MarketSection struct {
	Packs   map[string]int `json:"packs"`
	Dollars map[string]int `json:"dollars"`
}

// Result names the written snapshot.
type Result struct {
	FilePath     string
	RelativePath string
	Payload      *Payload
}

// Service writes point-in-time JSON snapshots of the whole game.
type Service interface {
	Export(ctx context.Context) (*Result, error)
}

type service struct {
	keeper          *gamestate.Keeper
	ledger          ledger.Service
	board           leaderboard.Service
	engine          engine.Service
	dir             string
	notifyRoleID    string
	notifyChannelID string
}

// NewService creates the exporter. An empty dir means DefaultDir.
func NewService(keeper *gamestate.Keeper, led ledger.Service, board leaderboard.Service, eng engine.Service, dir, notifyRoleID, notifyChannelID string) Service {
	if dir == "" {
		dir = DefaultDir
	}
	return &service{
		keeper:          keeper,
		ledger:          led,
		board:           board,
		engine:          eng,
		dir:             dir,
		notifyRoleID:    notifyRoleID,
		notifyChannelID: notifyChannelID,
	}
}

func (s *service) Export(ctx context.Context) (*Result, error) {
	log := logger.FromContext(ctx)

	state, err := s.keeper.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextSnapshot, err)
	}
	balances := s.ledger.All(ctx)
	standings := s.board.Standings(ctx)

	var totalGlyphs int64
	for _, v := range balances {
		totalGlyphs += v
	}
	totalPacks := 0
	for _, v := range state.MarketPacks {
		totalPacks += v
	}
	totalDollars := 0
	for _, v := range state.MarketDollars {
		totalDollars += v
	}

	now := time.Now()
	payload := &Payload{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Metadata: Metadata{
			CurrentBlock:         state.CurrentBlock,
			TotalRewardsPerBlock: state.TotalRewardsPerBlock,
			BaseReward:           state.BaseReward,
			BlockDurationSec:     state.BlockDurationSec,
			NextBlockAt:          state.NextBlockAt,
			LastSystemChoice:     state.LastSystemChoice,
			AutorunRemaining:     s.engine.AutorunRemaining(ctx),
			NotifyRoleID:         s.notifyRoleID,
			NotifyChannelID:      s.notifyChannelID,
		},
		Summary: Summary{
			TotalAccounts:       len(balances),
			TotalGlyphs:         totalGlyphs,
			BlockHistoryEntries: len(state.BlockHistory),
			LeaderboardEntries:  len(standings),
			TotalPacks:          totalPacks,
			TotalDollarBalance:  totalDollars,
		},
		Balances:    balances,
		Choices:     state.CurrentChoices,
		State:       state,
		Leaderboard: standings,
		Market: MarketSection{
			Packs:   state.MarketPacks,
			Dollars: state.MarketDollars,
		},
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextCreateDir, err)
	}

	fileName := fmt.Sprintf("glyphs-export-%s.json", now.Format("2006-01-02T15-04-05"))
	filePath := filepath.Join(s.dir, fileName)
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextMarshal, err)
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextWriteFile, err)
	}

	relative := filePath
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, filePath); err == nil {
			relative = rel
		}
	}

	log.Info(LogMsgExported, "path", filePath, "accounts", len(balances))
	return &Result{FilePath: filePath, RelativePath: relative, Payload: payload}, nil
}
