package engine

// Log messages
const (
	LogMsgChoiceRecorded  = "Choice recorded"
	LogMsgBlockResolved   = "Block resolved"
	LogMsgPayoutFailed    = "Failed to credit block reward"
	LogMsgPublishFailed   = "Failed to publish block advanced event"
	LogMsgTotalRewardsSet = "Total rewards per block updated"
	LogMsgBaseRewardSet   = "Base reward updated"
	LogMsgDurationSet     = "Block duration updated"
	LogMsgBlockSet        = "Current block updated"
	LogMsgActiveChanged   = "Engine active flag changed"
	LogMsgAutorunArmed    = "Autorun armed"
	LogMsgRecordsReset    = "Block history reset"
	LogMsgFullReset       = "Full game reset"
)
