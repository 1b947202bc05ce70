package leaderboard

// Log messages
const (
	LogMsgRecomputed = "Leaderboard recomputed"
)
