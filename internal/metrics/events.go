package metrics

import (
	"context"

	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/event"
	"github.com/runeworks/glyphbot/internal/logger"
	"github.com/runeworks/glyphbot/internal/market"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		event.BlockAdvanced,
		event.GrumbleResolved,
		event.PackOpened,
		event.DollarsClaimed,
		event.AuctionEnded,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	// Always increment event counter
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.BlockAdvanced:
		payload, err := event.DecodePayload[domain.BlockAdvancedPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgPayloadDecodeFailed, "type", evt.Type, "error", err)
			return nil
		}
		BlocksResolved.Inc()
		BlockParticipants.Add(float64(payload.Participants))
		BlockRewardsPaid.Add(float64(payload.TotalRewards))

	case event.GrumbleResolved:
		payload, err := event.DecodePayload[domain.GrumbleResolvedPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgPayloadDecodeFailed, "type", evt.Type, "error", err)
			return nil
		}
		GrumblesResolved.Inc()
		GrumblePrizesPaid.Add(float64(payload.PrizePerWinner) * float64(len(payload.WinnerIDs)))

	case event.PackOpened:
		payload, err := event.DecodePayload[*market.OpenResult](evt.Payload)
		if err != nil {
			log.Debug(LogMsgPayloadDecodeFailed, "type", evt.Type, "error", err)
			return nil
		}
		PacksOpened.WithLabelValues(payload.Prize.ID).Inc()

	case event.DollarsClaimed:
		if payload, ok := evt.Payload.(map[string]interface{}); ok {
			if claimed, ok := payload["claimed"].(int); ok {
				DollarsClaimed.Add(float64(claimed))
			}
		}

	case event.AuctionEnded:
		AuctionsEnded.Inc()
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
