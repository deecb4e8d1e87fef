package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/trigg3rX/mining-cli/internal/config"
	"github.com/trigg3rX/mining-cli/pkg/logging"
	"github.com/trigg3rX/mining-cli/pkg/retry"
)

// Custody talks to the custody contract: event lookups for the scheduler and
// the deposit, withdraw and claim calls for the mining actions.
type Custody struct {
	backend     Backend
	address     common.Address
	abi         abi.ABI
	contract    *bind.BoundContract
	chainID     *big.Int
	settings    config.ContractSettings
	retryConfig *retry.RetryConfig
	logger      logging.Logger

	depositFilter    eventFilter
	withdrawalFilter eventFilter
}

// eventFilter locates an event and the topic that carries the address argument.
type eventFilter struct {
	name     string
	id       common.Hash
	topicPos int
}

func NewCustody(
	backend Backend,
	address common.Address,
	contractABI abi.ABI,
	chainID uint64,
	settings config.ContractSettings,
	retryConfig *retry.RetryConfig,
	logger logging.Logger,
) (*Custody, error) {
	if retryConfig == nil {
		retryConfig = retry.DefaultRetryConfig()
	}
	if err := retryConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}

	depositFilter, err := newEventFilter(contractABI, settings.DepositEvent, settings.DepositAddressArg)
	if err != nil {
		return nil, err
	}
	withdrawalFilter, err := newEventFilter(contractABI, settings.WithdrawalEvent, settings.WithdrawalAddressArg)
	if err != nil {
		return nil, err
	}
	for _, method := range []string{settings.DepositMethod, settings.WithdrawMethod, settings.ClaimMethod, settings.BalanceMethod} {
		if _, ok := contractABI.Methods[method]; !ok {
			return nil, fmt.Errorf("%w: method %q not found in custody abi", config.ErrConfiguration, method)
		}
	}

	return &Custody{
		backend:          backend,
		address:          address,
		abi:              contractABI,
		contract:         bind.NewBoundContract(address, contractABI, backend, backend, backend),
		chainID:          new(big.Int).SetUint64(chainID),
		settings:         settings,
		retryConfig:      retryConfig,
		logger:           logger,
		depositFilter:    depositFilter,
		withdrawalFilter: withdrawalFilter,
	}, nil
}

func newEventFilter(contractABI abi.ABI, eventName, argName string) (eventFilter, error) {
	event, ok := contractABI.Events[eventName]
	if !ok {
		return eventFilter{}, fmt.Errorf("%w: event %q not found in custody abi", config.ErrConfiguration, eventName)
	}
	// topic 0 is the event id for non-anonymous events
	pos := 1
	if event.Anonymous {
		pos = 0
	}
	for _, input := range event.Inputs {
		if !input.Indexed {
			continue
		}
		if input.Name == argName {
			if input.Type.T != abi.AddressTy {
				return eventFilter{}, fmt.Errorf("%w: %s.%s is not an address", config.ErrConfiguration, eventName, argName)
			}
			return eventFilter{name: eventName, id: event.ID, topicPos: pos}, nil
		}
		pos++
	}
	return eventFilter{}, fmt.Errorf("%w: %s has no indexed argument %q", config.ErrConfiguration, eventName, argName)
}

func (c *Custody) Address() common.Address {
	return c.address
}

// callRPC runs a read-only RPC under the retry policy. Every RPC failure is treated
// as transient; cancellation is returned as is.
func callRPC[T any](ctx context.Context, c *Custody, op string, fn func() (T, error)) (T, error) {
	return retry.Retry(ctx, func() (T, error) {
		v, err := fn()
		if err != nil {
			if ctx.Err() != nil {
				return v, ctx.Err()
			}
			return v, retry.Transient(fmt.Errorf("%s: %w", op, err))
		}
		return v, nil
	}, c.retryConfig, c.logger)
}
