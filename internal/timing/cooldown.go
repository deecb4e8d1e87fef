package timing

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/chacha20"

	"github.com/trigg3rX/mining-cli/internal/config"
)

// Role tags the side of the cycle a cooldown is derived for, so the wait before a
// deposit and the wait before a withdrawal differ for the same event.
type Role string

const (
	RoleDeposit    Role = "deposit"
	RoleWithdrawal Role = "withdrawal"
)

// ErrInvalidRange is returned when the cooldown range is empty.
var ErrInvalidRange = fmt.Errorf("%w: cooldown range must satisfy min < max", config.ErrConfiguration)

// Range is a half-open interval [Min, Max) of seconds.
type Range struct {
	Min uint64
	Max uint64
}

func (r Range) Validate() error {
	if r.Min >= r.Max {
		return fmt.Errorf("%w (min=%d, max=%d)", ErrInvalidRange, r.Min, r.Max)
	}
	return nil
}

// Seed builds the string hashed into the generator key: decimal timestamp, lowercase
// 0x-prefixed address, role tag.
func Seed(lastEventTime uint64, counterparty common.Address, role Role) string {
	return fmt.Sprintf("%d%s%s", lastEventTime, strings.ToLower(counterparty.Hex()), role)
}

// DeriveCooldown maps (lastEventTime, counterparty, role) to a cooldown in [r.Min, r.Max).
// The result depends only on its inputs, so a restarted process waits the same amount.
func DeriveCooldown(lastEventTime uint64, counterparty common.Address, role Role, r Range) (uint64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}

	key := crypto.Keccak256([]byte(Seed(lastEventTime, counterparty, role)))
	stream, err := newStream(key)
	if err != nil {
		return 0, err
	}
	return stream.uint64InRange(r.Min, r.Max), nil
}

// keystream draws uint64 values from a ChaCha20 keystream with a zero nonce.
type keystream struct {
	cipher *chacha20.Cipher
	buf    [8]byte
}

func newStream(key []byte) (*keystream, error) {
	cipher, err := chacha20.NewUnauthenticatedCipher(key, make([]byte, chacha20.NonceSize))
	if err != nil {
		return nil, fmt.Errorf("failed to initialise chacha20: %w", err)
	}
	return &keystream{cipher: cipher}, nil
}

func (s *keystream) next() uint64 {
	var zero [8]byte
	s.cipher.XORKeyStream(s.buf[:], zero[:])
	return binary.LittleEndian.Uint64(s.buf[:])
}

// uint64InRange rejects draws from the incomplete top bucket so every value in
// [min, max) is equally likely.
func (s *keystream) uint64InRange(min, max uint64) uint64 {
	span := max - min
	limit := math.MaxUint64 - math.MaxUint64%span
	for {
		v := s.next()
		if v < limit {
			return min + v%span
		}
	}
}
