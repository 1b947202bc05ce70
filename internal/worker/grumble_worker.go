package worker

import (
	"context"
	"sync"

	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/event"
	"github.com/runeworks/glyphbot/internal/grumble"
	"github.com/runeworks/glyphbot/internal/logger"
	"github.com/runeworks/glyphbot/internal/reward"
)

// GrumbleWorker settles grumble sessions. Block-anchored sessions resolve
// on the block advance that passes their anchor, reusing that block's
// system symbol. Custom-timer sessions are swept every second and resolve
// against a fresh draw.
type GrumbleWorker struct {
	service grumble.Service
	model   *reward.Model

	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewGrumbleWorker creates a new GrumbleWorker. A nil reward model gets a
// seeded one.
func NewGrumbleWorker(service grumble.Service, model *reward.Model) *GrumbleWorker {
	if model == nil {
		model = reward.NewModel(nil)
	}
	return &GrumbleWorker{
		service:  service,
		model:    model,
		shutdown: make(chan struct{}),
	}
}

// Subscribe subscribes the worker to relevant events
func (w *GrumbleWorker) Subscribe(bus event.Bus) {
	bus.Subscribe(event.BlockAdvanced, w.handleBlockAdvanced)
}

func (w *GrumbleWorker) handleBlockAdvanced(ctx context.Context, e event.Event) error {
	select {
	case <-w.shutdown:
		return nil
	default:
	}

	if w.service.UsingCustomTimer(ctx) || !w.service.ShouldEnd(ctx) {
		return nil
	}
	payload, err := event.DecodePayload[domain.BlockAdvancedPayloadV1](e.Payload)
	if err != nil {
		return err
	}
	if _, err := w.service.Resolve(ctx, payload.SystemChoice); err != nil {
		logger.FromContext(ctx).Error(LogMsgGrumbleResolveFailed, "error", err)
	}
	return nil
}

// Sweep resolves custom-timer sessions whose countdown has lapsed. Run every
// second by the scheduler; it also catches timers that expired while the
// process was down.
func (w *GrumbleWorker) Sweep(ctx context.Context) error {
	select {
	case <-w.shutdown:
		return nil
	default:
	}

	if !w.service.UsingCustomTimer(ctx) || !w.service.ShouldEnd(ctx) {
		return nil
	}

	w.wg.Add(1)
	defer w.wg.Done()
	if _, err := w.service.Resolve(ctx, w.model.PickSymbol()); err != nil {
		logger.FromContext(ctx).Error(LogMsgGrumbleResolveFailed, "error", err)
	}
	return nil
}

// Shutdown stops the worker and waits for an in-flight resolution.
func (w *GrumbleWorker) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgGrumbleWorkerStopping)

	close(w.shutdown)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info(LogMsgGrumbleWorkerStopped)
		return nil
	case <-ctx.Done():
		log.Warn(LogMsgGrumbleWorkerTimeout)
		return ctx.Err()
	}
}
