package accounts

import (
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	depositDomain = "deposit"

	// Out-of-range hashes are astronomically rare; the bound only guards the loop.
	maxDerivationAttempts = 16
)

// Account is a key pair used for one mining repetition.
type Account struct {
	Index      uint64
	PrivateKey *ecdsa.PrivateKey
	Address    common.Address
}

func (a *Account) PrivateKeyHex() string {
	return hexutil.Encode(crypto.FromECDSA(a.PrivateKey))
}

// Deriver produces deposit accounts from the withdrawal key, so the same key always
// yields the same sequence of deposit accounts.
type Deriver struct {
	withdrawalKey *ecdsa.PrivateKey
	seed          []byte
}

func NewDeriver(withdrawalPrivateKey string) (*Deriver, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(withdrawalPrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse withdrawal private key: %w", err)
	}
	return &Deriver{withdrawalKey: key, seed: crypto.FromECDSA(key)}, nil
}

// WithdrawalAccount returns the account owning the withdrawal key.
func (d *Deriver) WithdrawalAccount() *Account {
	return &Account{
		PrivateKey: d.withdrawalKey,
		Address:    crypto.PubkeyToAddress(d.withdrawalKey.PublicKey),
	}
}

// DepositAccount returns deposit account i:
// keccak256(withdrawalKey || "deposit" || uint64be(i) [|| uint32be(attempt)]).
func (d *Deriver) DepositAccount(index uint64) (*Account, error) {
	var indexBytes [8]byte
	binary.BigEndian.PutUint64(indexBytes[:], index)

	for attempt := uint32(0); attempt < maxDerivationAttempts; attempt++ {
		parts := [][]byte{d.seed, []byte(depositDomain), indexBytes[:]}
		if attempt > 0 {
			var attemptBytes [4]byte
			binary.BigEndian.PutUint32(attemptBytes[:], attempt)
			parts = append(parts, attemptBytes[:])
		}

		key, err := crypto.ToECDSA(crypto.Keccak256(parts...))
		if err != nil {
			continue
		}
		return &Account{
			Index:      index,
			PrivateKey: key,
			Address:    crypto.PubkeyToAddress(key.PublicKey),
		}, nil
	}
	return nil, fmt.Errorf("failed to derive deposit account %d", index)
}
