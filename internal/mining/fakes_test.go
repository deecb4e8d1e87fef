package mining

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/trigg3rX/mining-cli/internal/circulation"
)

// chainState is a tiny in-memory custody contract shared by the fakes.
type chainState struct {
	deposited map[common.Address]uint64
	custody   map[common.Address]*big.Int
	native    map[common.Address]*big.Int
	calls     []string
	now       uint64

	depositErr error
}

func newChainState() *chainState {
	return &chainState{
		deposited: make(map[common.Address]uint64),
		custody:   make(map[common.Address]*big.Int),
		native:    make(map[common.Address]*big.Int),
		now:       1000,
	}
}

func (c *chainState) record(format string, args ...interface{}) {
	c.calls = append(c.calls, fmt.Sprintf(format, args...))
}

func keyAddress(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}

func (c *chainState) Deposit(ctx context.Context, key *ecdsa.PrivateKey, amount *big.Int) (common.Hash, error) {
	from := keyAddress(key)
	c.record("deposit %s", from.Hex())
	if c.depositErr != nil {
		return common.Hash{}, c.depositErr
	}
	c.now++
	c.deposited[from] = c.now
	c.custody[from] = new(big.Int).Set(amount)
	return common.Hash{}, nil
}

func (c *chainState) Withdraw(ctx context.Context, key *ecdsa.PrivateKey, recipient common.Address) (common.Hash, error) {
	from := keyAddress(key)
	c.record("withdraw %s -> %s", from.Hex(), recipient.Hex())
	c.custody[from] = new(big.Int)
	return common.Hash{}, nil
}

func (c *chainState) Claim(ctx context.Context, key *ecdsa.PrivateKey, recipient common.Address) (common.Hash, error) {
	c.record("claim %s -> %s", keyAddress(key).Hex(), recipient.Hex())
	return common.Hash{}, nil
}

func (c *chainState) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	if balance, ok := c.custody[account]; ok {
		return new(big.Int).Set(balance), nil
	}
	return new(big.Int), nil
}

func (c *chainState) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	if balance, ok := c.native[account]; ok {
		return balance, nil
	}
	return new(big.Int), nil
}

func (c *chainState) LastDepositTimestamp(ctx context.Context, address common.Address) (uint64, bool, error) {
	ts, ok := c.deposited[address]
	return ts, ok, nil
}

func (c *chainState) LastWithdrawalTimestamp(ctx context.Context, address common.Address) (uint64, bool, error) {
	return 0, false, nil
}

type recordingWaiter struct {
	state *chainState
}

func (w *recordingWaiter) WaitBeforeDeposit(ctx context.Context, withdrawalCounterparty common.Address) error {
	w.state.record("wait-deposit %s", withdrawalCounterparty.Hex())
	return nil
}

func (w *recordingWaiter) WaitBeforeWithdrawal(ctx context.Context, depositCounterparty common.Address) error {
	w.state.record("wait-withdrawal %s", depositCounterparty.Hex())
	return nil
}

type staticExclusion struct {
	excluded bool
	err      error
}

func (e *staticExclusion) GetStatus(ctx context.Context, address common.Address) (*circulation.Status, error) {
	if e.err != nil {
		return nil, e.err
	}
	return &circulation.Status{IsExcluded: e.excluded}, nil
}
