package scheduler

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

type mockQueryPort struct {
	mock.Mock
}

func (m *mockQueryPort) LastDepositTimestamp(ctx context.Context, address common.Address) (uint64, bool, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(uint64), args.Bool(1), args.Error(2)
}

func (m *mockQueryPort) LastWithdrawalTimestamp(ctx context.Context, address common.Address) (uint64, bool, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(uint64), args.Bool(1), args.Error(2)
}

// fakeClock records sleeps and advances its own time instead of blocking.
type fakeClock struct {
	now    time.Time
	sleeps []time.Time
	err    error
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) SleepUntil(ctx context.Context, deadline time.Time) error {
	c.sleeps = append(c.sleeps, deadline)
	if c.err != nil {
		return c.err
	}
	c.now = deadline
	return nil
}
