package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSettings = `
service:
  mining_min_cooldown_in_sec: 50
  mining_max_cooldown_in_sec: 60
retry:
  max_attempts: 3
  initial_delay: 10ms
  max_delay: 1s
api:
  circulation_server_url: https://circulation.example.com
contract:
  from_block: 123
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func setValidEnv(t *testing.T) {
	t.Setenv("NETWORK", "Base")
	t.Setenv("RPC_URL", "https://rpc.example.com")
	t.Setenv("CHAIN_ID", "8453")
	t.Setenv("CUSTODY_ADDRESS", "0x00000000000000000000000000000000000000c0")
	t.Setenv("CUSTODY_ABI_PATH", "config/custody.abi.json")
	t.Setenv("WITHDRAWAL_PRIVATE_KEY", "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	t.Setenv("WITHDRAWAL_ADDRESS", "0xFa1A4998136377DB9b09e24567bd6D17Ad78AaE6")
	t.Setenv("MINING_UNIT", "100000000000000000")
	t.Setenv("MINING_TIMES", "2")
	t.Setenv("DEV_MODE", "true")
}

func TestLoadSettings_OverlaysDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "settings.yaml", testSettings)

	settings, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(50), settings.Service.MiningMinCooldownInSec)
	assert.Equal(t, uint64(60), settings.Service.MiningMaxCooldownInSec)
	assert.Equal(t, 3, settings.Retry.MaxAttempts)
	assert.Equal(t, 10*time.Millisecond, settings.Retry.InitialDelay)
	assert.Equal(t, 2.0, settings.Retry.BackoffFactor)
	assert.Equal(t, uint64(123), settings.Contract.FromBlock)
	assert.Equal(t, "Deposited", settings.Contract.DepositEvent)
	assert.Equal(t, "https://api.github.com", settings.API.GitHubAPIURL)
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLoad_ValidConfig(t *testing.T) {
	setValidEnv(t)
	dir := t.TempDir()
	settingsPath := writeFile(t, dir, "settings.yaml", testSettings)

	cfg, err := Load(settingsPath, filepath.Join(dir, "absent.env"))
	require.NoError(t, err)

	minCooldown, maxCooldown := cfg.CooldownRange()
	assert.Equal(t, uint64(50), minCooldown)
	assert.Equal(t, uint64(60), maxCooldown)
	assert.Equal(t, "base", cfg.Network())
	assert.Equal(t, uint64(8453), cfg.ChainID())
	assert.Equal(t, common.HexToAddress("0xFa1A4998136377DB9b09e24567bd6D17Ad78AaE6"), cfg.WithdrawalAddress())
	assert.Equal(t, "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318", cfg.WithdrawalPrivateKey())
	assert.Equal(t, "100000000000000000", cfg.MiningUnit().String())
	assert.Equal(t, uint64(2), cfg.MiningTimes())
	assert.True(t, cfg.IsDevMode())
	assert.Equal(t, 3, cfg.RetryConfig().MaxRetries)
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	setValidEnv(t)
	// t.Setenv restores the variable after godotenv sets it
	t.Setenv("MINING_TIMES", "")
	require.NoError(t, os.Unsetenv("MINING_TIMES"))
	dir := t.TempDir()
	settingsPath := writeFile(t, dir, "settings.yaml", testSettings)
	envPath := writeFile(t, dir, ".env", "MINING_TIMES=7\n")

	cfg, err := Load(settingsPath, envPath)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), cfg.MiningTimes())
}

func TestLoad_RequiresDeploymentBlock(t *testing.T) {
	setValidEnv(t)
	settingsPath := writeFile(t, t.TempDir(), "settings.yaml", strings.Replace(testSettings, "from_block: 123", "from_block: 0", 1))

	_, err := Load(settingsPath, "")

	assert.ErrorIs(t, err, ErrConfiguration)
	assert.ErrorContains(t, err, "deployment block")
}

func TestLoad_MiningUnitIsCopied(t *testing.T) {
	setValidEnv(t)
	settingsPath := writeFile(t, t.TempDir(), "settings.yaml", testSettings)

	cfg, err := Load(settingsPath, "")
	require.NoError(t, err)

	cfg.MiningUnit().SetInt64(1)
	assert.Equal(t, "100000000000000000", cfg.MiningUnit().String())
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad rpc url", "RPC_URL", "not a url"},
		{"missing chain id", "CHAIN_ID", "0"},
		{"malformed chain id", "CHAIN_ID", "base"},
		{"bad custody address", "CUSTODY_ADDRESS", "0x1234"},
		{"bad withdrawal key", "WITHDRAWAL_PRIVATE_KEY", "0xdeadbeef"},
		{"bad withdrawal address", "WITHDRAWAL_ADDRESS", "nope"},
		{"fractional mining unit", "MINING_UNIT", "0.1"},
		{"zero mining unit", "MINING_UNIT", "0"},
		{"negative mining times", "MINING_TIMES", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setValidEnv(t)
			t.Setenv(tt.key, tt.value)
			settingsPath := writeFile(t, t.TempDir(), "settings.yaml", testSettings)

			_, err := Load(settingsPath, "")
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestValidateSettings(t *testing.T) {
	valid := func() Settings {
		s := DefaultSettings()
		s.API.CirculationServerURL = "https://circulation.example.com"
		s.Contract.FromBlock = 123
		return s
	}

	tests := []struct {
		name        string
		mutate      func(*Settings)
		expectedErr string
	}{
		{"min equals max", func(s *Settings) {
			s.Service.MiningMinCooldownInSec = 60
			s.Service.MiningMaxCooldownInSec = 60
		}, "must be less than"},
		{"min above max", func(s *Settings) {
			s.Service.MiningMinCooldownInSec = 61
			s.Service.MiningMaxCooldownInSec = 60
		}, "must be less than"},
		{"zero attempts", func(s *Settings) { s.Retry.MaxAttempts = 0 }, "retry"},
		{"missing circulation url", func(s *Settings) { s.API.CirculationServerURL = "" }, "circulation server url"},
		{"missing event name", func(s *Settings) { s.Contract.WithdrawalEvent = "" }, "contract.withdrawal_event"},
		{"zero batch size", func(s *Settings) { s.Contract.LogBatchSize = 0 }, "log_batch_size"},
		{"scan from genesis", func(s *Settings) { s.Contract.FromBlock = 0 }, "from_block"},
	}

	require.NoError(t, ValidateSettings(valid()))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := ValidateSettings(s)
			assert.ErrorIs(t, err, ErrConfiguration)
			assert.ErrorContains(t, err, tt.expectedErr)
		})
	}
}
