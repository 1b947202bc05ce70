package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runeworks/glyphbot/internal/domain"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvDiscordToken, "token")
	t.Setenv(EnvDiscordAppID, "app")
	t.Setenv(EnvGuildID, "guild")
	t.Setenv(EnvGameChannelID, "channel")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.False(t, cfg.RefundAuctionLosers)

	// Out of the box the config must agree with the domain economy.
	assert.Equal(t, domain.DefaultBlockDurationSec, cfg.BlockDurationSec)
	assert.Equal(t, domain.DefaultBaseReward, cfg.BaseReward)
	assert.Equal(t, domain.DefaultTotalRewardsPerBlock, cfg.TotalRewardsPerBlock)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvBlockDurationSec, "600")
	t.Setenv(EnvRefundAuctionLosers, "true")
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, int64(600), cfg.BlockDurationSec)
	assert.True(t, cfg.RefundAuctionLosers)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoadMissingToken(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvDiscordToken, "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	setRequiredEnv(t)

	t.Run("non-numeric port", func(t *testing.T) {
		t.Setenv(EnvPort, "not-a-port")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("zero block duration", func(t *testing.T) {
		t.Setenv(EnvBlockDurationSec, "0")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown log level", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "LOUD")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidateEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvSchemaVersion, ExpectedEnvSchemaVersion)
	assert.NoError(t, ValidateEnv())

	t.Setenv(EnvSchemaVersion, "0.9")
	assert.Error(t, ValidateEnv())

	t.Setenv(EnvSchemaVersion, "")
	assert.Error(t, ValidateEnv())
}
