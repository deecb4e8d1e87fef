package mining

import (
	"context"
	"fmt"
	"math/big"

	"github.com/trigg3rX/mining-cli/internal/accounts"
)

type AccountState int

const (
	// No deposit has ever been made from the account
	Unused AccountState = iota
	// Deposited and still holding a custody balance
	Pending
	// Deposited and fully withdrawn
	Completed
)

func (s AccountState) String() string {
	switch s {
	case Unused:
		return "unused"
	case Pending:
		return "pending"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("AccountState(%d)", int(s))
	}
}

type AccountStatus struct {
	Account *accounts.Account
	State   AccountState
	Balance *big.Int
}

// Summary aggregates the used deposit accounts.
type Summary struct {
	Used           []AccountStatus
	Completed      int
	Pending        int
	PendingBalance *big.Int
	NextIndex      uint64
}

func (s *Service) accountStatus(ctx context.Context, index uint64) (AccountStatus, error) {
	account, err := s.accounts.DepositAccount(index)
	if err != nil {
		return AccountStatus{}, err
	}

	_, deposited, err := s.history.LastDepositTimestamp(ctx, account.Address)
	if err != nil {
		return AccountStatus{}, fmt.Errorf("failed to get deposit history of %s: %w", account.Address.Hex(), err)
	}
	if !deposited {
		return AccountStatus{Account: account, State: Unused, Balance: new(big.Int)}, nil
	}

	balance, err := s.custody.Balance(ctx, account.Address)
	if err != nil {
		return AccountStatus{}, fmt.Errorf("failed to get custody balance of %s: %w", account.Address.Hex(), err)
	}
	state := Completed
	if balance.Sign() > 0 {
		state = Pending
	}
	return AccountStatus{Account: account, State: state, Balance: balance}, nil
}

// Status walks the deposit accounts in order until the first unused one.
func (s *Service) Status(ctx context.Context) (*Summary, error) {
	summary := &Summary{PendingBalance: new(big.Int)}
	for index := uint64(0); index < s.options.MaxAccounts; index++ {
		status, err := s.accountStatus(ctx, index)
		if err != nil {
			return nil, err
		}
		if status.State == Unused {
			break
		}
		summary.Used = append(summary.Used, status)
		switch status.State {
		case Pending:
			summary.Pending++
			summary.PendingBalance.Add(summary.PendingBalance, status.Balance)
		case Completed:
			summary.Completed++
		}
	}
	summary.NextIndex = uint64(len(summary.Used))
	return summary, nil
}

// PrintStatus logs the account summary shown before the mutating modes.
func (s *Service) PrintStatus(ctx context.Context) (*Summary, error) {
	summary, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Deposit accounts status",
		"used", len(summary.Used),
		"completed", summary.Completed,
		"pending", summary.Pending,
		"pending_balance_wei", summary.PendingBalance.String(),
		"mining_times", s.options.MiningTimes,
	)
	for _, status := range summary.Used {
		s.logger.Info("Deposit account",
			"index", status.Account.Index,
			"address", status.Account.Address.Hex(),
			"state", status.State.String(),
			"balance_wei", status.Balance.String(),
		)
	}
	return summary, nil
}
