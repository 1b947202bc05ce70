package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/runeworks/glyphbot/internal/auction"
	"github.com/runeworks/glyphbot/internal/config"
	"github.com/runeworks/glyphbot/internal/discord"
	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/engine"
	"github.com/runeworks/glyphbot/internal/event"
	"github.com/runeworks/glyphbot/internal/export"
	"github.com/runeworks/glyphbot/internal/gamestate"
	"github.com/runeworks/glyphbot/internal/grumble"
	"github.com/runeworks/glyphbot/internal/leaderboard"
	"github.com/runeworks/glyphbot/internal/ledger"
	"github.com/runeworks/glyphbot/internal/logger"
	"github.com/runeworks/glyphbot/internal/market"
	"github.com/runeworks/glyphbot/internal/metrics"
	"github.com/runeworks/glyphbot/internal/scheduler"
	"github.com/runeworks/glyphbot/internal/server"
	"github.com/runeworks/glyphbot/internal/store"
	"github.com/runeworks/glyphbot/internal/worker"
)

const (
	tickInterval    = time.Second
	writeWindow     = 2 * time.Second
	shutdownTimeout = 10 * time.Second
	deadLetterPath  = "data/events.deadletter.jsonl"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}
	logger.Setup(cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("Bot exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage layer.
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}

	state, err := st.LoadState(ctx)
	if err != nil {
		return err
	}
	balances, err := st.LoadBalances(ctx)
	if err != nil {
		return err
	}
	applyConfigDefaults(state, cfg)

	queue := store.NewWriteQueue(st, writeWindow)
	keeper := gamestate.NewKeeper(state, queue)
	led := ledger.NewService(balances, queue)

	// Event bus with retries and a dead letter file, metrics attached.
	bus := event.NewMemoryBus()
	publisher := event.NewResilientPublisher(bus, event.ResilientConfig{
		DeadLetterPath: deadLetterPath,
	})
	collector := metrics.NewEventMetricsCollector()
	if err := collector.Register(bus); err != nil {
		return err
	}

	// Game services.
	eng := engine.NewService(keeper, led, nil, publisher)
	grum := grumble.NewService(keeper, led, publisher)
	mkt := market.NewService(keeper, led, publisher, market.Roles{
		AllPrizesRoleID:      cfg.AllPrizesRoleID,
		LimitedDollarsRoleID: cfg.LimitedDollarsRoleID,
	}, nil)
	auc := auction.NewService(keeper, led, publisher, auction.Config{
		RefundLosers: cfg.RefundAuctionLosers,
	})
	board := leaderboard.NewService(keeper, led)
	exp := export.NewService(keeper, led, board, eng, cfg.ExportDir, cfg.NotifyRoleID, cfg.NotifyChannelID)

	// Transport.
	bot, err := discord.New(discord.Config{
		Token:           cfg.DiscordToken,
		AppID:           cfg.DiscordAppID,
		GuildID:         cfg.GuildID,
		GameChannelID:   cfg.GameChannelID,
		NotifyChannelID: cfg.NotifyChannelID,
		NotifyRoleID:    cfg.NotifyRoleID,
	}, &discord.Deps{
		Engine:      eng,
		Grumble:     grum,
		Market:      mkt,
		Auction:     auc,
		Leaderboard: board,
		Ledger:      led,
		Export:      exp,
		Shutdown:    stop,
	})
	if err != nil {
		return err
	}
	bot.Refresher().Subscribe(bus)

	// Workers and the 1s tick.
	grumbleWorker := worker.NewGrumbleWorker(grum, nil)
	grumbleWorker.Subscribe(bus)
	auctionWorker := worker.NewAuctionWorker(auc)

	pool := worker.NewPool(2, 32)
	pool.Start()
	sched := scheduler.New(pool)
	sched.Schedule(tickInterval, worker.JobFunc(func(ctx context.Context) error {
		eng.Tick(ctx)
		return nil
	}))
	sched.Schedule(tickInterval, worker.JobFunc(grumbleWorker.Sweep))
	sched.Schedule(tickInterval, worker.JobFunc(auctionWorker.Sweep))

	srv := server.NewServer(cfg.Port, st)

	if err := bot.Start(); err != nil {
		return err
	}
	if err := bot.RegisterCommands(os.Getenv("DISCORD_FORCE_COMMAND_UPDATE") == "true"); err != nil {
		// The bot can still run on previously registered commands.
		slog.Error("Failed to register commands", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-eng.AutorunDone():
			slog.Info("Autorun complete, shutting down")
			stop()
		}
		return nil
	})

	<-gctx.Done()
	shutdown(sched, pool, grumbleWorker, auctionWorker, bot, srv, queue, st)
	return g.Wait()
}

// applyConfigDefaults seeds round configuration from the environment on a
// fresh database only. Once a game has run, the persisted document wins and
// admins tune values through slash commands.
func applyConfigDefaults(state *domain.State, cfg *config.Config) {
	fresh := state.CurrentBlock == 1 &&
		len(state.BlockHistory) == 0 &&
		state.LastSystemChoice == ""
	if !fresh {
		return
	}
	state.BlockDurationSec = cfg.BlockDurationSec
	state.BaseReward = cfg.BaseReward
	state.TotalRewardsPerBlock = cfg.TotalRewardsPerBlock
	state.NextBlockAt = time.Now().UnixMilli() + cfg.BlockDurationSec*1000
}

// shutdown drains in the reverse order of startup: stop producing ticks,
// settle workers, close the gateway, flush writes, close the store.
func shutdown(
	sched *scheduler.Scheduler,
	pool *worker.Pool,
	grumbleWorker *worker.GrumbleWorker,
	auctionWorker *worker.AuctionWorker,
	bot *discord.Bot,
	srv *server.Server,
	queue *store.WriteQueue,
	st *store.Store,
) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	sched.Stop()
	pool.Stop()
	if err := grumbleWorker.Shutdown(ctx); err != nil {
		slog.Error("Grumble worker shutdown failed", "error", err)
	}
	if err := auctionWorker.Shutdown(ctx); err != nil {
		slog.Error("Auction worker shutdown failed", "error", err)
	}
	if err := bot.Refresher().Shutdown(ctx); err != nil {
		slog.Error("Panel refresher shutdown failed", "error", err)
	}
	bot.Stop()
	if err := srv.Stop(ctx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}
	if err := queue.Shutdown(ctx); err != nil {
		slog.Error("Write queue shutdown failed", "error", err)
	}
	if err := st.Close(ctx); err != nil {
		slog.Error("Store close failed", "error", err)
	}
}
