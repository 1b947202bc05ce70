package grumble

// Log messages
const (
	LogMsgStarted       = "Grumble started"
	LogMsgRestarted     = "Grumble restarted"
	LogMsgJoined        = "Grumble bet placed"
	LogMsgTimerSet      = "Grumble custom timer set"
	LogMsgResolved      = "Grumble resolved"
	LogMsgWinnerLeft    = "Grumble winner left, pool preserved"
	LogMsgPayoutFailed  = "Failed to credit grumble prize"
	LogMsgRefundFailed  = "Failed to refund grumble stake"
	LogMsgPublishFailed = "Failed to publish grumble event"
)
