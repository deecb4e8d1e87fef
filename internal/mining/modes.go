package mining

import (
	"context"
	"fmt"

	"github.com/trigg3rX/mining-cli/internal/accounts"
	"github.com/trigg3rX/mining-cli/internal/circulation"
	"github.com/trigg3rX/mining-cli/internal/metrics"
)

// Mining repeats deposit/withdrawal cycles until MiningTimes cycles are complete.
// Accounts left mid-cycle by an earlier run resume at the withdrawal half.
func (s *Service) Mining(ctx context.Context) error {
	s.warnIfExcluded(ctx)

	summary, err := s.Status(ctx)
	if err != nil {
		return err
	}
	completed := uint64(summary.Completed)

	for _, status := range summary.Used {
		if status.State != Pending {
			continue
		}
		s.logger.Info("Resuming pending withdrawal", "index", status.Account.Index, "address", status.Account.Address.Hex())
		if err := s.withdrawHalf(ctx, status.Account); err != nil {
			return err
		}
		completed++
	}

	next := summary.NextIndex
	for s.options.MiningTimes == 0 || completed < s.options.MiningTimes {
		if next >= s.options.MaxAccounts {
			return fmt.Errorf("%w: %d accounts", ErrAccountsExhausted, s.options.MaxAccounts)
		}
		account, err := s.accounts.DepositAccount(next)
		if err != nil {
			return err
		}

		if err := s.depositHalf(ctx, account); err != nil {
			return err
		}
		if err := s.withdrawHalf(ctx, account); err != nil {
			return err
		}

		completed++
		next++
		s.logger.Info("Mining cycle completed", "completed", completed, "mining_times", s.options.MiningTimes)
	}

	s.logger.Info("Mining finished", "completed", completed)
	return nil
}

func (s *Service) depositHalf(ctx context.Context, account *accounts.Account) error {
	balance, err := s.custody.NativeBalance(ctx, account.Address)
	if err != nil {
		return fmt.Errorf("failed to get balance of %s: %w", account.Address.Hex(), err)
	}
	// The account also pays gas, so an exact mining unit is not enough.
	if balance.Cmp(s.options.MiningUnit) <= 0 {
		return fmt.Errorf("%w: send more than %s wei to deposit account #%d %s",
			ErrInsufficientFunds, s.options.MiningUnit, account.Index, account.Address.Hex())
	}

	// Funding is checked first so an unfunded account fails before a long cooldown.
	if err := s.waiter.WaitBeforeDeposit(ctx, s.withdrawal); err != nil {
		return err
	}

	s.logger.Info("Depositing", "index", account.Index, "address", account.Address.Hex(), "amount_wei", s.options.MiningUnit.String())
	if _, err := s.custody.Deposit(ctx, account.PrivateKey, s.options.MiningUnit); err != nil {
		return err
	}
	return nil
}

func (s *Service) withdrawHalf(ctx context.Context, account *accounts.Account) error {
	if err := s.waiter.WaitBeforeWithdrawal(ctx, account.Address); err != nil {
		return err
	}

	s.logger.Info("Withdrawing", "index", account.Index, "address", account.Address.Hex(), "recipient", s.withdrawal.Hex())
	if _, err := s.custody.Withdraw(ctx, account.PrivateKey, s.withdrawal); err != nil {
		return err
	}
	metrics.MiningCyclesTotal.Inc()
	return nil
}

// Claim sends the rewards of every used deposit account to the withdrawal address.
func (s *Service) Claim(ctx context.Context) error {
	status, err := s.exclusion.GetStatus(ctx, s.withdrawal)
	if err != nil {
		return err
	}
	if status.IsExcluded {
		return fmt.Errorf("%w: %s", circulation.ErrExcluded, s.withdrawal.Hex())
	}

	summary, err := s.Status(ctx)
	if err != nil {
		return err
	}
	if len(summary.Used) == 0 {
		s.logger.Info("No deposit accounts to claim for")
		return nil
	}

	for _, used := range summary.Used {
		s.logger.Info("Claiming", "index", used.Account.Index, "address", used.Account.Address.Hex())
		if _, err := s.custody.Claim(ctx, used.Account.PrivateKey, s.withdrawal); err != nil {
			return err
		}
	}
	s.logger.Info("Claim finished", "accounts", len(summary.Used))
	return nil
}

// Exit withdraws every pending balance at once, without cooldowns.
func (s *Service) Exit(ctx context.Context) error {
	summary, err := s.Status(ctx)
	if err != nil {
		return err
	}

	withdrawn := 0
	for _, used := range summary.Used {
		if used.State != Pending {
			continue
		}
		s.logger.Info("Withdrawing", "index", used.Account.Index, "address", used.Account.Address.Hex(), "balance_wei", used.Balance.String())
		if _, err := s.custody.Withdraw(ctx, used.Account.PrivateKey, s.withdrawal); err != nil {
			return err
		}
		withdrawn++
	}
	s.logger.Info("Exit finished", "withdrawn", withdrawn)
	return nil
}

// Export writes the keys of every used deposit account to the export file.
func (s *Service) Export(ctx context.Context) error {
	summary, err := s.Status(ctx)
	if err != nil {
		return err
	}
	if len(summary.Used) == 0 {
		s.logger.Info("No deposit accounts to export")
		return nil
	}

	used := make([]*accounts.Account, 0, len(summary.Used))
	for _, status := range summary.Used {
		used = append(used, status.Account)
	}
	if err := accounts.ExportFile(s.options.ExportPath, used); err != nil {
		return err
	}
	s.logger.Info("Exported deposit accounts", "count", len(used), "path", s.options.ExportPath)
	return nil
}

// warnIfExcluded never blocks mining: exclusion only affects rewards.
func (s *Service) warnIfExcluded(ctx context.Context) {
	status, err := s.exclusion.GetStatus(ctx, s.withdrawal)
	if err != nil {
		s.logger.Warn("Failed to check circulation status", "error", err)
		return
	}
	if status.IsExcluded {
		s.logger.Warn("Withdrawal address is excluded from circulation; mining will not earn rewards", "address", s.withdrawal.Hex())
	}
}
