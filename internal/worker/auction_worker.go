package worker

import (
	"context"
	"sync"

	"github.com/runeworks/glyphbot/internal/auction"
	"github.com/runeworks/glyphbot/internal/logger"
)

// AuctionWorker resolves auctions whose deadline has passed.
type AuctionWorker struct {
	service auction.Service

	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewAuctionWorker creates a new AuctionWorker
func NewAuctionWorker(service auction.Service) *AuctionWorker {
	return &AuctionWorker{
		service:  service,
		shutdown: make(chan struct{}),
	}
}

// Sweep resolves every expired auction. Run every second by the scheduler;
// the first run after startup also settles auctions that expired while the
// process was down.
func (w *AuctionWorker) Sweep(ctx context.Context) error {
	select {
	case <-w.shutdown:
		return nil
	default:
	}

	expired := w.service.Expired(ctx)
	if len(expired) == 0 {
		return nil
	}

	w.wg.Add(1)
	defer w.wg.Done()
	log := logger.FromContext(ctx)
	for _, a := range expired {
		if _, err := w.service.Resolve(ctx, a.ID); err != nil {
			log.Error(LogMsgAuctionResolveFailed, "auction_id", a.ID, "error", err)
		}
	}
	return nil
}

// Shutdown stops the worker and waits for an in-flight sweep.
func (w *AuctionWorker) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgAuctionWorkerStopping)

	close(w.shutdown)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info(LogMsgAuctionWorkerStopped)
		return nil
	case <-ctx.Done():
		log.Warn(LogMsgAuctionWorkerTimeout)
		return ctx.Err()
	}
}
