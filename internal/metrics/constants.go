package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Business metric names
const (
	MetricNameBlocksResolved    = "blocks_resolved_total"
	MetricNameBlockRewardsPaid  = "block_rewards_paid_total"
	MetricNameBlockParticipants = "block_participants_total"
	MetricNameGrumblesResolved  = "grumbles_resolved_total"
	MetricNameGrumblePrizesPaid = "grumble_prizes_paid_total"
	MetricNamePacksOpened       = "packs_opened_total"
	MetricNameDollarsClaimed    = "dollars_claimed_total"
	MetricNameAuctionsEnded     = "auctions_ended_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Business metric help text
const (
	HelpTextBlocksResolved    = "Total number of blocks resolved"
	HelpTextBlockRewardsPaid  = "Total glyphs paid out by block resolutions"
	HelpTextBlockParticipants = "Total number of user picks across resolved blocks"
	HelpTextGrumblesResolved  = "Total number of grumble sessions resolved"
	HelpTextGrumblePrizesPaid = "Total glyphs paid out to grumble winners"
	HelpTextPacksOpened       = "Total number of loot packs opened"
	HelpTextDollarsClaimed    = "Total dollars claimed from the market"
	HelpTextAuctionsEnded     = "Total number of auctions resolved"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelType   = "type"
	LabelPrize  = "prize"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgPayloadDecodeFailed = "Failed to decode event payload for metrics"
	LogMsgMetricsRecorded     = "Metrics recorded for event"
)
