package ledger

// Log messages
const (
	LogMsgCredited      = "Credited glyphs"
	LogMsgDebited       = "Debited glyphs"
	LogMsgBalanceSet    = "Balance set by admin"
	LogMsgTransferred   = "Transferred glyphs"
	LogMsgBalancesReset = "All balances reset"
)
