package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the service-wide part of the configuration, read from a YAML file
// shipped next to the binary. Operator secrets live in the env file instead.
type Settings struct {
	Service  ServiceSettings  `yaml:"service"`
	Retry    RetrySettings    `yaml:"retry"`
	API      APISettings      `yaml:"api"`
	Contract ContractSettings `yaml:"contract"`
	Metrics  MetricsSettings  `yaml:"metrics"`
	Update   UpdateSettings   `yaml:"update"`
}

type ServiceSettings struct {
	MiningMinCooldownInSec uint64 `yaml:"mining_min_cooldown_in_sec"`
	MiningMaxCooldownInSec uint64 `yaml:"mining_max_cooldown_in_sec"`
}

type RetrySettings struct {
	MaxAttempts   int           `yaml:"max_attempts"`
	InitialDelay  time.Duration `yaml:"initial_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	BackoffFactor float64       `yaml:"backoff_factor"`
	JitterFactor  float64       `yaml:"jitter_factor"`
}

type APISettings struct {
	CirculationServerURL string        `yaml:"circulation_server_url"`
	GitHubAPIURL         string        `yaml:"github_api_url"`
	Timeout              time.Duration `yaml:"timeout"`
}

// ContractSettings names the custody contract members the miner talks to.
// Event address arguments must be indexed.
type ContractSettings struct {
	DepositEvent         string        `yaml:"deposit_event"`
	DepositAddressArg    string        `yaml:"deposit_address_arg"`
	WithdrawalEvent      string        `yaml:"withdrawal_event"`
	WithdrawalAddressArg string        `yaml:"withdrawal_address_arg"`
	DepositMethod        string        `yaml:"deposit_method"`
	WithdrawMethod       string        `yaml:"withdraw_method"`
	ClaimMethod          string        `yaml:"claim_method"`
	BalanceMethod        string        `yaml:"balance_method"`
	FromBlock            uint64        `yaml:"from_block"`
	LogBatchSize         uint64        `yaml:"log_batch_size"`
	ConfirmationTimeout  time.Duration `yaml:"confirmation_timeout"`
	MaxDepositAccounts   uint64        `yaml:"max_deposit_accounts"`
}

type MetricsSettings struct {
	// Empty disables the /metrics endpoint
	Addr string `yaml:"addr"`
}

type UpdateSettings struct {
	ReleaseRepo string `yaml:"release_repo"`
}

// DefaultSettings returns the values used for keys missing from the settings file.
func DefaultSettings() Settings {
	return Settings{
		Service: ServiceSettings{
			MiningMinCooldownInSec: 3600,
			MiningMaxCooldownInSec: 10800,
		},
		Retry: RetrySettings{
			MaxAttempts:   5,
			InitialDelay:  time.Second,
			MaxDelay:      30 * time.Second,
			BackoffFactor: 2.0,
			JitterFactor:  0.2,
		},
		API: APISettings{
			GitHubAPIURL: "https://api.github.com",
			Timeout:      10 * time.Second,
		},
		Contract: ContractSettings{
			DepositEvent:         "Deposited",
			DepositAddressArg:    "sender",
			WithdrawalEvent:      "Withdrawn",
			WithdrawalAddressArg: "recipient",
			DepositMethod:        "deposit",
			WithdrawMethod:       "withdraw",
			ClaimMethod:          "claim",
			BalanceMethod:        "balanceOf",
			LogBatchSize:         10000,
			ConfirmationTimeout:  5 * time.Minute,
			MaxDepositAccounts:   1000,
		},
		Update: UpdateSettings{
			ReleaseRepo: "trigg3rX/mining-cli",
		},
	}
}

// LoadSettings reads a YAML settings file over DefaultSettings.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: failed to read settings file %s: %v", ErrConfiguration, path, err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("%w: failed to parse settings file %s: %v", ErrConfiguration, path, err)
	}
	return settings, nil
}
