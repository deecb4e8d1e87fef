package mining

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/trigg3rX/mining-cli/internal/accounts"
	"github.com/trigg3rX/mining-cli/internal/circulation"
	"github.com/trigg3rX/mining-cli/internal/scheduler"
	"github.com/trigg3rX/mining-cli/pkg/logging"
)

var (
	ErrAddressMismatch   = errors.New("withdrawal address does not match the address derived from the private key")
	ErrInsufficientFunds = errors.New("insufficient deposit account balance")
	ErrAccountsExhausted = errors.New("all deposit accounts are used")
)

// Custody submits custody transactions and reads custody balances.
type Custody interface {
	Deposit(ctx context.Context, key *ecdsa.PrivateKey, amount *big.Int) (common.Hash, error)
	Withdraw(ctx context.Context, key *ecdsa.PrivateKey, recipient common.Address) (common.Hash, error)
	Claim(ctx context.Context, key *ecdsa.PrivateKey, recipient common.Address) (common.Hash, error)
	Balance(ctx context.Context, account common.Address) (*big.Int, error)
	NativeBalance(ctx context.Context, account common.Address) (*big.Int, error)
}

// Waiter enforces the cooldown before each half of a cycle.
type Waiter interface {
	WaitBeforeDeposit(ctx context.Context, withdrawalCounterparty common.Address) error
	WaitBeforeWithdrawal(ctx context.Context, depositCounterparty common.Address) error
}

type AccountSource interface {
	WithdrawalAccount() *accounts.Account
	DepositAccount(index uint64) (*accounts.Account, error)
}

type ExclusionChecker interface {
	GetStatus(ctx context.Context, address common.Address) (*circulation.Status, error)
}

type Options struct {
	MiningUnit  *big.Int
	MiningTimes uint64 // 0 means unbounded
	MaxAccounts uint64
	ExportPath  string
}

// Service implements the Mining, Claim, Exit and Export modes.
type Service struct {
	custody    Custody
	history    scheduler.QueryPort
	waiter     Waiter
	exclusion  ExclusionChecker
	accounts   AccountSource
	withdrawal common.Address
	options    Options
	logger     logging.Logger
}

func NewService(
	custody Custody,
	history scheduler.QueryPort,
	waiter Waiter,
	exclusion ExclusionChecker,
	accountSource AccountSource,
	options Options,
	logger logging.Logger,
) (*Service, error) {
	if options.MiningUnit == nil || options.MiningUnit.Sign() <= 0 {
		return nil, fmt.Errorf("mining unit must be positive")
	}
	if options.MaxAccounts == 0 {
		return nil, fmt.Errorf("max accounts must be positive")
	}
	return &Service{
		custody:    custody,
		history:    history,
		waiter:     waiter,
		exclusion:  exclusion,
		accounts:   accountSource,
		withdrawal: accountSource.WithdrawalAccount().Address,
		options:    options,
		logger:     logger,
	}, nil
}

// VerifyWithdrawalAddress checks the configured address against the key's address.
func VerifyWithdrawalAddress(accountSource AccountSource, configured common.Address) error {
	derived := accountSource.WithdrawalAccount().Address
	if derived != configured {
		return fmt.Errorf("%w: configured %s, derived %s", ErrAddressMismatch, configured.Hex(), derived.Hex())
	}
	return nil
}
