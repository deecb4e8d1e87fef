package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/trigg3rX/mining-cli/internal/metrics"
)

// ErrTransactionReverted is returned when a mined transaction has a failed status.
var ErrTransactionReverted = errors.New("transaction reverted")

// Deposit sends amount from the key's account into custody.
func (c *Custody) Deposit(ctx context.Context, key *ecdsa.PrivateKey, amount *big.Int) (common.Hash, error) {
	return c.transact(ctx, "deposit", key, amount, c.settings.DepositMethod)
}

// Withdraw moves the key account's custody balance to recipient.
func (c *Custody) Withdraw(ctx context.Context, key *ecdsa.PrivateKey, recipient common.Address) (common.Hash, error) {
	return c.transact(ctx, "withdraw", key, nil, c.settings.WithdrawMethod, recipient)
}

// Claim sends the rewards earned by the key's account to recipient.
func (c *Custody) Claim(ctx context.Context, key *ecdsa.PrivateKey, recipient common.Address) (common.Hash, error) {
	return c.transact(ctx, "claim", key, nil, c.settings.ClaimMethod, recipient)
}

// Balance returns the custody balance held for account.
func (c *Custody) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	return callRPC(ctx, c, "balance", func() (*big.Int, error) {
		var out []interface{}
		if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, c.settings.BalanceMethod, account); err != nil {
			return nil, err
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("%s returned no values", c.settings.BalanceMethod)
		}
		return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
	})
}

// NativeBalance returns the account's balance in wei at the latest block.
func (c *Custody) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	return callRPC(ctx, c, "native balance", func() (*big.Int, error) {
		return c.backend.BalanceAt(ctx, account, nil)
	})
}

// transact is not retried: a resend after an ambiguous failure could submit twice.
func (c *Custody) transact(ctx context.Context, kind string, key *ecdsa.PrivateKey, value *big.Int, method string, args ...interface{}) (common.Hash, error) {
	auth, err := c.createTransactOpts(ctx, key, value)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to create transaction options: %w", err)
	}

	tx, err := c.contract.Transact(auth, method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to send %s transaction: %w", kind, err)
	}
	c.logger.Info("Transaction sent", "kind", kind, "from", auth.From.Hex(), "tx", tx.Hash().Hex())

	waitCtx, cancel := context.WithTimeout(ctx, c.settings.ConfirmationTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, c.backend, tx)
	if err != nil {
		return tx.Hash(), fmt.Errorf("failed to wait for %s transaction %s to be mined: %w", kind, tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx.Hash(), fmt.Errorf("%w: %s transaction %s", ErrTransactionReverted, kind, tx.Hash().Hex())
	}

	metrics.TransactionsTotal.WithLabelValues(kind).Inc()
	c.logger.Info("Transaction confirmed", "kind", kind, "tx", tx.Hash().Hex(), "block", receipt.BlockNumber)
	return tx.Hash(), nil
}

func (c *Custody) createTransactOpts(ctx context.Context, key *ecdsa.PrivateKey, value *big.Int) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor for %s: %w", crypto.PubkeyToAddress(key.PublicKey).Hex(), err)
	}
	auth.Context = ctx
	if value != nil {
		auth.Value = new(big.Int).Set(value)
	}
	return auth, nil
}
