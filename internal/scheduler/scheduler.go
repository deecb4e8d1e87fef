package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/trigg3rX/mining-cli/internal/metrics"
	"github.com/trigg3rX/mining-cli/internal/timing"
	"github.com/trigg3rX/mining-cli/pkg/logging"
)

const displayTimeFormat = "2006-01-02 15:04:05"

// QueryPort returns the latest on-chain event time for an address.
// ok is false when the address has no such event.
type QueryPort interface {
	LastDepositTimestamp(ctx context.Context, address common.Address) (ts uint64, ok bool, err error)
	LastWithdrawalTimestamp(ctx context.Context, address common.Address) (ts uint64, ok bool, err error)
}

// Scheduler holds a deposit or withdrawal back until a cooldown derived from the
// counterparty's latest event has elapsed. Nothing is cached between calls.
type Scheduler struct {
	query    QueryPort
	clock    Clock
	cooldown timing.Range
	logger   logging.Logger
}

func NewScheduler(query QueryPort, clock Clock, cooldown timing.Range, logger logging.Logger) (*Scheduler, error) {
	if err := cooldown.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Scheduler{
		query:    query,
		clock:    clock,
		cooldown: cooldown,
		logger:   logger,
	}, nil
}

// WaitBeforeDeposit waits out the cooldown after the latest withdrawal to
// withdrawalCounterparty.
func (s *Scheduler) WaitBeforeDeposit(ctx context.Context, withdrawalCounterparty common.Address) error {
	lastWithdrawal, ok, err := s.query.LastWithdrawalTimestamp(ctx, withdrawalCounterparty)
	if err != nil {
		return fmt.Errorf("failed to get latest withdrawal time: %w", err)
	}
	s.logger.Debug("Latest withdrawal", "address", withdrawalCounterparty.Hex(), "timestamp", lastWithdrawal, "found", ok)
	if !ok {
		return nil
	}
	return s.waitAfter(ctx, lastWithdrawal, withdrawalCounterparty, timing.RoleDeposit)
}

// WaitBeforeWithdrawal waits out the cooldown after the latest deposit from
// depositCounterparty.
func (s *Scheduler) WaitBeforeWithdrawal(ctx context.Context, depositCounterparty common.Address) error {
	lastDeposit, ok, err := s.query.LastDepositTimestamp(ctx, depositCounterparty)
	if err != nil {
		return fmt.Errorf("failed to get latest deposit time: %w", err)
	}
	s.logger.Debug("Latest deposit", "address", depositCounterparty.Hex(), "timestamp", lastDeposit, "found", ok)
	if !ok {
		return nil
	}
	return s.waitAfter(ctx, lastDeposit, depositCounterparty, timing.RoleWithdrawal)
}

func (s *Scheduler) waitAfter(ctx context.Context, lastEvent uint64, counterparty common.Address, role timing.Role) error {
	cooldown, err := timing.DeriveCooldown(lastEvent, counterparty, role, s.cooldown)
	if err != nil {
		return err
	}
	metrics.CooldownSeconds.WithLabelValues(string(role)).Observe(float64(cooldown))

	target := lastEvent + cooldown
	now := uint64(s.clock.Now().Unix())
	if now >= target {
		s.logger.Info("No need to sleep", "role", string(role))
		return nil
	}

	sleepFor := target - now
	deadline := time.Unix(int64(target), 0)
	s.logger.Infof("Next deposit/withdrawal will start at %s. Sleeping for %d seconds...",
		deadline.Local().Format(displayTimeFormat), sleepFor)

	if err := s.clock.SleepUntil(ctx, deadline); err != nil {
		return err
	}
	metrics.SleepSeconds.WithLabelValues(string(role)).Add(float64(sleepFor))
	return nil
}
