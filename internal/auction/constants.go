package auction

// Log messages
const (
	LogMsgCreated       = "Auction created"
	LogMsgBidPlaced     = "Auction bid escrowed"
	LogMsgResolved      = "Auction resolved"
	LogMsgRefundFailed  = "Failed to refund auction bid"
	LogMsgPublishFailed = "Failed to publish auction event"
)
