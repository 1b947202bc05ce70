package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	DiscordToken string `validate:"required"`
	DiscordAppID string `validate:"required"`
	GuildID      string `validate:"required"`

	GameChannelID        string `validate:"required"`
	NotifyChannelID      string
	NotifyRoleID         string
	AllPrizesRoleID      string
	LimitedDollarsRoleID string

	DBPath    string `validate:"required"`
	ExportDir string `validate:"required"`
	Port      int    `validate:"min=1,max=65535"`
	LogLevel  string `validate:"oneof=DEBUG INFO WARN ERROR"`

	BlockDurationSec     int64 `validate:"gt=0"`
	BaseReward           int64 `validate:"gt=0"`
	TotalRewardsPerBlock int64 `validate:"gt=0"`

	RefundAuctionLosers bool
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken:         getEnv(EnvDiscordToken, ""),
		DiscordAppID:         getEnv(EnvDiscordAppID, ""),
		GuildID:              getEnv(EnvGuildID, ""),
		GameChannelID:        getEnv(EnvGameChannelID, ""),
		NotifyChannelID:      getEnv(EnvNotifyChannelID, ""),
		NotifyRoleID:         getEnv(EnvNotifyRoleID, ""),
		AllPrizesRoleID:      getEnv(EnvAllPrizesRoleID, ""),
		LimitedDollarsRoleID: getEnv(EnvLimitedDollarsRoleID, ""),
		DBPath:               getEnv(EnvDBPath, DefaultDBPath),
		ExportDir:            getEnv(EnvExportDir, DefaultExportDir),
		LogLevel:             getEnv(EnvLogLevel, DefaultLogLevel),
		RefundAuctionLosers:  getEnvBool(EnvRefundAuctionLosers, false),
	}

	var err error
	if cfg.Port, err = getEnvInt(EnvPort, DefaultPort); err != nil {
		return nil, err
	}
	if cfg.BlockDurationSec, err = getEnvInt64(EnvBlockDurationSec, DefaultBlockDurationSec); err != nil {
		return nil, err
	}
	if cfg.BaseReward, err = getEnvInt64(EnvBaseReward, DefaultBaseReward); err != nil {
		return nil, err
	}
	if cfg.TotalRewardsPerBlock, err = getEnvInt64(EnvTotalRewards, DefaultTotalRewards); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key, defaultValue string) (int, error) {
	value, err := strconv.Atoi(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return value, nil
}

func getEnvInt64(key, defaultValue string) (int64, error) {
	value, err := strconv.ParseInt(getEnv(key, defaultValue), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return value, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
