package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Business Metrics
var (
	BlocksResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBlocksResolved,
			Help: HelpTextBlocksResolved,
		},
	)

	BlockRewardsPaid = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBlockRewardsPaid,
			Help: HelpTextBlockRewardsPaid,
		},
	)

	BlockParticipants = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBlockParticipants,
			Help: HelpTextBlockParticipants,
		},
	)

	GrumblesResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameGrumblesResolved,
			Help: HelpTextGrumblesResolved,
		},
	)

	GrumblePrizesPaid = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameGrumblePrizesPaid,
			Help: HelpTextGrumblePrizesPaid,
		},
	)

	PacksOpened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePacksOpened,
			Help: HelpTextPacksOpened,
		},
		[]string{LabelPrize},
	)

	DollarsClaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameDollarsClaimed,
			Help: HelpTextDollarsClaimed,
		},
	)

	AuctionsEnded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameAuctionsEnded,
			Help: HelpTextAuctionsEnded,
		},
	)
)
