package config

// Environment variable names
const (
	EnvSchemaVersion        = "ENV_SCHEMA_VERSION"
	EnvDiscordToken         = "DISCORD_TOKEN"
	EnvDiscordAppID         = "DISCORD_APP_ID"
	EnvGuildID              = "GUILD_ID"
	EnvGameChannelID        = "GAME_CHANNEL_ID"
	EnvNotifyChannelID      = "NOTIFY_CHANNEL_ID"
	EnvNotifyRoleID         = "NOTIFY_ROLE_ID"
	EnvAllPrizesRoleID      = "ALL_PRIZES_ROLE_ID"
	EnvLimitedDollarsRoleID = "LIMITED_DOLLARS_ROLE_ID"
	EnvDBPath               = "DB_PATH"
	EnvExportDir            = "EXPORT_DIR"
	EnvPort                 = "PORT"
	EnvLogLevel             = "LOG_LEVEL"
	EnvBlockDurationSec     = "BLOCK_DURATION_SEC"
	EnvBaseReward           = "BASE_REWARD"
	EnvTotalRewards         = "TOTAL_REWARDS_PER_BLOCK"
	EnvRefundAuctionLosers  = "REFUND_AUCTION_LOSERS"
)

// Defaults applied when the environment leaves a value unset. The round
// values mirror the domain.Default* constants so a fresh install runs the
// documented economy.
const (
	DefaultDBPath           = "data/glyphbot.db"
	DefaultExportDir        = "data/exports"
	DefaultPort             = "8080"
	DefaultLogLevel         = "INFO"
	DefaultBlockDurationSec = "30"
	DefaultBaseReward       = "1000000"
	DefaultTotalRewards     = "700000"
)
