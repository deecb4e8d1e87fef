package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/trigg3rX/mining-cli/pkg/env"
	"github.com/trigg3rX/mining-cli/pkg/retry"
)

// ErrConfiguration is wrapped by every error caused by invalid settings or env values.
var ErrConfiguration = errors.New("configuration error")

const (
	DefaultSettingsPath = "config/settings.yaml"
	DefaultEnvPath      = ".env"
	DefaultNetwork      = "base"
)

// Config is built once at startup and never modified afterwards.
type Config struct {
	settings Settings

	// Network and RPC
	network string
	rpcURL  string
	chainID uint64

	// Custody contract
	custodyAddress common.Address
	custodyABIPath string

	// Withdrawal account, the counterparty of every deposit account
	withdrawalPrivateKey string
	withdrawalAddress    common.Address

	// Mining
	miningUnit  *big.Int
	miningTimes uint64

	devMode bool
}

// Load reads the settings file and the operator env file. A missing env file is not an
// error: the values may already be in the process environment.
func Load(settingsPath, envPath string) (*Config, error) {
	settings, err := LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	if envPath != "" {
		if _, statErr := os.Stat(envPath); statErr == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("%w: error loading env file %s: %v", ErrConfiguration, envPath, err)
			}
		} else if !errors.Is(statErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: cannot access env file %s: %v", ErrConfiguration, envPath, statErr)
		}
	}

	chainID, err := env.GetEnvUint64("CHAIN_ID", 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	miningTimes, err := env.GetEnvUint64("MINING_TIMES", 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	miningUnitStr := env.GetEnvString("MINING_UNIT", "")
	if !env.IsValidDecimal(miningUnitStr) {
		return nil, fmt.Errorf("%w: invalid mining unit: %q", ErrConfiguration, miningUnitStr)
	}
	miningUnit, _ := new(big.Int).SetString(miningUnitStr, 10)

	cfg := &Config{
		settings:             settings,
		network:              strings.ToLower(env.GetEnvString("NETWORK", DefaultNetwork)),
		rpcURL:               env.GetEnvString("RPC_URL", ""),
		chainID:              chainID,
		custodyABIPath:       env.GetEnvString("CUSTODY_ABI_PATH", "config/custody.abi.json"),
		withdrawalPrivateKey: strings.TrimPrefix(env.GetEnvString("WITHDRAWAL_PRIVATE_KEY", ""), "0x"),
		miningUnit:           miningUnit,
		miningTimes:          miningTimes,
		devMode:              env.GetEnvBool("DEV_MODE", false),
	}

	custodyAddress := env.GetEnvString("CUSTODY_ADDRESS", "")
	if !env.IsValidEthAddress(custodyAddress) {
		return nil, fmt.Errorf("%w: invalid custody address: %q", ErrConfiguration, custodyAddress)
	}
	cfg.custodyAddress = common.HexToAddress(custodyAddress)

	withdrawalAddress := env.GetEnvString("WITHDRAWAL_ADDRESS", "")
	if !env.IsValidEthAddress(withdrawalAddress) {
		return nil, fmt.Errorf("%w: invalid withdrawal address: %q", ErrConfiguration, withdrawalAddress)
	}
	cfg.withdrawalAddress = common.HexToAddress(withdrawalAddress)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if env.IsEmpty(c.network) {
		return fmt.Errorf("%w: network is required", ErrConfiguration)
	}
	if !env.IsValidURL(c.rpcURL, "http", "https", "ws", "wss") {
		return fmt.Errorf("%w: invalid rpc url: %q", ErrConfiguration, c.rpcURL)
	}
	if c.chainID == 0 {
		return fmt.Errorf("%w: chain id is required", ErrConfiguration)
	}
	if env.IsEmpty(c.custodyABIPath) {
		return fmt.Errorf("%w: custody abi path is required", ErrConfiguration)
	}
	// Never echo the key itself
	if !env.IsValidPrivateKey(c.withdrawalPrivateKey) {
		return fmt.Errorf("%w: invalid withdrawal private key", ErrConfiguration)
	}
	if c.miningUnit.Sign() <= 0 {
		return fmt.Errorf("%w: mining unit must be positive", ErrConfiguration)
	}
	return ValidateSettings(c.settings)
}

// ValidateSettings checks the service settings independently of the operator env.
func ValidateSettings(s Settings) error {
	if s.Service.MiningMinCooldownInSec >= s.Service.MiningMaxCooldownInSec {
		return fmt.Errorf("%w: mining_min_cooldown_in_sec (%d) must be less than mining_max_cooldown_in_sec (%d)",
			ErrConfiguration, s.Service.MiningMinCooldownInSec, s.Service.MiningMaxCooldownInSec)
	}
	if err := retryConfigFrom(s.Retry).Validate(); err != nil {
		return fmt.Errorf("%w: retry: %v", ErrConfiguration, err)
	}
	if !env.IsValidURL(s.API.CirculationServerURL) {
		return fmt.Errorf("%w: invalid circulation server url: %q", ErrConfiguration, s.API.CirculationServerURL)
	}
	if !env.IsValidURL(s.API.GitHubAPIURL) {
		return fmt.Errorf("%w: invalid github api url: %q", ErrConfiguration, s.API.GitHubAPIURL)
	}
	if s.API.Timeout <= 0 {
		return fmt.Errorf("%w: api timeout must be positive", ErrConfiguration)
	}
	contract := s.Contract
	for _, field := range []struct{ name, value string }{
		{"deposit_event", contract.DepositEvent},
		{"deposit_address_arg", contract.DepositAddressArg},
		{"withdrawal_event", contract.WithdrawalEvent},
		{"withdrawal_address_arg", contract.WithdrawalAddressArg},
		{"deposit_method", contract.DepositMethod},
		{"withdraw_method", contract.WithdrawMethod},
		{"claim_method", contract.ClaimMethod},
		{"balance_method", contract.BalanceMethod},
	} {
		if env.IsEmpty(field.value) {
			return fmt.Errorf("%w: contract.%s is required", ErrConfiguration, field.name)
		}
	}
	// Scanning from genesis costs one eth_getLogs per batch for every unused account
	if contract.FromBlock == 0 {
		return fmt.Errorf("%w: contract.from_block must be set to the custody contract deployment block", ErrConfiguration)
	}
	if contract.LogBatchSize == 0 {
		return fmt.Errorf("%w: contract.log_batch_size must be positive", ErrConfiguration)
	}
	if contract.MaxDepositAccounts == 0 {
		return fmt.Errorf("%w: contract.max_deposit_accounts must be positive", ErrConfiguration)
	}
	if contract.ConfirmationTimeout <= 0 {
		return fmt.Errorf("%w: contract.confirmation_timeout must be positive", ErrConfiguration)
	}
	return nil
}

func retryConfigFrom(s RetrySettings) *retry.RetryConfig {
	return &retry.RetryConfig{
		MaxRetries:      s.MaxAttempts,
		InitialDelay:    s.InitialDelay,
		MaxDelay:        s.MaxDelay,
		BackoffFactor:   s.BackoffFactor,
		JitterFactor:    s.JitterFactor,
		LogRetryAttempt: true,
	}
}

func (c *Config) Settings() Settings {
	return c.settings
}

// CooldownRange returns the [min, max) cooldown bounds in seconds.
func (c *Config) CooldownRange() (uint64, uint64) {
	return c.settings.Service.MiningMinCooldownInSec, c.settings.Service.MiningMaxCooldownInSec
}

// RetryConfig returns a fresh retry policy; callers may customise their copy.
func (c *Config) RetryConfig() *retry.RetryConfig {
	return retryConfigFrom(c.settings.Retry)
}

func (c *Config) Network() string {
	return c.network
}

func (c *Config) RPCURL() string {
	return c.rpcURL
}

func (c *Config) ChainID() uint64 {
	return c.chainID
}

func (c *Config) CustodyAddress() common.Address {
	return c.custodyAddress
}

func (c *Config) CustodyABIPath() string {
	return c.custodyABIPath
}

func (c *Config) WithdrawalPrivateKey() string {
	return c.withdrawalPrivateKey
}

func (c *Config) WithdrawalAddress() common.Address {
	return c.withdrawalAddress
}

// MiningUnit returns a copy of the per-deposit amount in wei.
func (c *Config) MiningUnit() *big.Int {
	return new(big.Int).Set(c.miningUnit)
}

// MiningTimes is the number of deposit/withdrawal repetitions; 0 means unbounded.
func (c *Config) MiningTimes() uint64 {
	return c.miningTimes
}

func (c *Config) IsDevMode() bool {
	return c.devMode
}
