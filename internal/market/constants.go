package market

// Error context strings
const (
	ErrContextCreditPrize = "failed to credit pack prize"
)

// Log messages
const (
	LogMsgPackBought        = "Pack purchased"
	LogMsgPackOpened        = "Pack opened"
	LogMsgDollarsClaimed    = "Dollars claimed"
	LogMsgClaimLimitSet     = "Claim limit updated"
	LogMsgClaimCounterReset = "Claim counter reset"
	LogMsgClaimToggled      = "Claim button toggled"
	LogMsgPublishFailed     = "Failed to publish market event"
)
