package worker

// Log messages
const (
	LogMsgJobFailed = "Worker job failed"

	LogMsgGrumbleResolveFailed  = "Failed to resolve grumble"
	LogMsgGrumbleWorkerStopping = "Shutting down grumble worker"
	LogMsgGrumbleWorkerStopped  = "Grumble worker shutdown complete"
	LogMsgGrumbleWorkerTimeout  = "Grumble worker shutdown timeout"

	LogMsgAuctionResolveFailed  = "Failed to resolve auction"
	LogMsgAuctionWorkerStopping = "Shutting down auction worker"
	LogMsgAuctionWorkerStopped  = "Auction worker shutdown complete"
	LogMsgAuctionWorkerTimeout  = "Auction worker shutdown timeout"
)
