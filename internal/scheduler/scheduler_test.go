package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trigg3rX/mining-cli/internal/config"
	"github.com/trigg3rX/mining-cli/internal/timing"
	"github.com/trigg3rX/mining-cli/pkg/logging"
	"github.com/trigg3rX/mining-cli/pkg/retry"
)

var (
	withdrawalAddress = common.HexToAddress("0xFa1A4998136377DB9b09e24567bd6D17Ad78AaE6")
	depositAddress    = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	testRange         = timing.Range{Min: 50, Max: 60}
)

func newTestScheduler(t *testing.T, query QueryPort, clock Clock) *Scheduler {
	t.Helper()
	s, err := NewScheduler(query, clock, testRange, logging.NewNoOpLogger())
	require.NoError(t, err)
	return s
}

func TestNewScheduler_InvalidRange(t *testing.T) {
	_, err := NewScheduler(&mockQueryPort{}, &fakeClock{}, timing.Range{Min: 60, Max: 60}, logging.NewNoOpLogger())
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestWaitBeforeDeposit_NoHistory_ReturnsImmediately(t *testing.T) {
	query := &mockQueryPort{}
	query.On("LastWithdrawalTimestamp", mock.Anything, withdrawalAddress).Return(uint64(0), false, nil)
	clock := &fakeClock{now: time.Unix(1000, 0)}

	err := newTestScheduler(t, query, clock).WaitBeforeDeposit(context.Background(), withdrawalAddress)

	require.NoError(t, err)
	assert.Empty(t, clock.sleeps)
	query.AssertExpectations(t)
}

func TestWaitBeforeWithdrawal_NoHistory_ReturnsImmediately(t *testing.T) {
	query := &mockQueryPort{}
	query.On("LastDepositTimestamp", mock.Anything, depositAddress).Return(uint64(0), false, nil)
	clock := &fakeClock{now: time.Unix(1000, 0)}

	err := newTestScheduler(t, query, clock).WaitBeforeWithdrawal(context.Background(), depositAddress)

	require.NoError(t, err)
	assert.Empty(t, clock.sleeps)
}

func TestWaitBeforeDeposit_DeadlinePassed_DoesNotSleep(t *testing.T) {
	query := &mockQueryPort{}
	query.On("LastWithdrawalTimestamp", mock.Anything, withdrawalAddress).Return(uint64(1000), true, nil)
	clock := &fakeClock{now: time.Unix(1100, 0)}

	err := newTestScheduler(t, query, clock).WaitBeforeDeposit(context.Background(), withdrawalAddress)

	require.NoError(t, err)
	assert.Empty(t, clock.sleeps)
}

func TestWaitBeforeDeposit_FutureDeadline_SleepsUntilTarget(t *testing.T) {
	query := &mockQueryPort{}
	query.On("LastWithdrawalTimestamp", mock.Anything, withdrawalAddress).Return(uint64(1000), true, nil)
	clock := &fakeClock{now: time.Unix(1000, 0)}

	err := newTestScheduler(t, query, clock).WaitBeforeDeposit(context.Background(), withdrawalAddress)
	require.NoError(t, err)

	cooldown, err := timing.DeriveCooldown(1000, withdrawalAddress, timing.RoleDeposit, testRange)
	require.NoError(t, err)

	require.Len(t, clock.sleeps, 1)
	assert.Equal(t, int64(1000+cooldown), clock.sleeps[0].Unix())
	assert.GreaterOrEqual(t, clock.sleeps[0].Unix(), int64(1050))
	assert.Less(t, clock.sleeps[0].Unix(), int64(1060))
}

func TestWaitBeforeDeposit_DeadlineBoundaries(t *testing.T) {
	cooldown, err := timing.DeriveCooldown(1000, withdrawalAddress, timing.RoleDeposit, testRange)
	require.NoError(t, err)
	target := int64(1000 + cooldown)

	tests := []struct {
		name        string
		now         int64
		expectSleep bool
	}{
		{"before range", 1040, true},
		{"one second before target", target - 1, true},
		{"exactly at target", target, false},
		{"after range", 1060, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := &mockQueryPort{}
			query.On("LastWithdrawalTimestamp", mock.Anything, withdrawalAddress).Return(uint64(1000), true, nil)
			clock := &fakeClock{now: time.Unix(tt.now, 0)}

			err := newTestScheduler(t, query, clock).WaitBeforeDeposit(context.Background(), withdrawalAddress)
			require.NoError(t, err)

			if tt.expectSleep {
				require.Len(t, clock.sleeps, 1)
				assert.Equal(t, target, clock.sleeps[0].Unix())
			} else {
				assert.Empty(t, clock.sleeps)
			}
		})
	}
}

func TestWaitBeforeWithdrawal_UsesWithdrawalRole(t *testing.T) {
	query := &mockQueryPort{}
	query.On("LastDepositTimestamp", mock.Anything, depositAddress).Return(uint64(1000), true, nil)
	clock := &fakeClock{now: time.Unix(1000, 0)}

	err := newTestScheduler(t, query, clock).WaitBeforeWithdrawal(context.Background(), depositAddress)
	require.NoError(t, err)

	cooldown, err := timing.DeriveCooldown(1000, depositAddress, timing.RoleWithdrawal, testRange)
	require.NoError(t, err)

	require.Len(t, clock.sleeps, 1)
	assert.Equal(t, int64(1000+cooldown), clock.sleeps[0].Unix())
}

func TestWait_RestartRederivesSameDeadline(t *testing.T) {
	query := &mockQueryPort{}
	query.On("LastWithdrawalTimestamp", mock.Anything, withdrawalAddress).Return(uint64(1000), true, nil)

	first := &fakeClock{now: time.Unix(1000, 0)}
	require.NoError(t, newTestScheduler(t, query, first).WaitBeforeDeposit(context.Background(), withdrawalAddress))

	restarted := &fakeClock{now: time.Unix(1020, 0)}
	require.NoError(t, newTestScheduler(t, query, restarted).WaitBeforeDeposit(context.Background(), withdrawalAddress))

	require.Len(t, first.sleeps, 1)
	require.Len(t, restarted.sleeps, 1)
	assert.Equal(t, first.sleeps[0], restarted.sleeps[0])
}

func TestWait_QueryFailure_Propagates(t *testing.T) {
	failure := &retry.PersistentFailure{Attempts: 3, Err: retry.Transient(errors.New("rpc down"))}
	query := &mockQueryPort{}
	query.On("LastWithdrawalTimestamp", mock.Anything, withdrawalAddress).Return(uint64(0), false, failure)
	clock := &fakeClock{now: time.Unix(1000, 0)}

	err := newTestScheduler(t, query, clock).WaitBeforeDeposit(context.Background(), withdrawalAddress)

	assert.True(t, retry.IsPersistentFailure(err))
	assert.Empty(t, clock.sleeps)
}

func TestWait_SleepCancelled_ReturnsContextError(t *testing.T) {
	query := &mockQueryPort{}
	query.On("LastDepositTimestamp", mock.Anything, depositAddress).Return(uint64(1000), true, nil)
	clock := &fakeClock{now: time.Unix(1000, 0), err: context.Canceled}

	err := newTestScheduler(t, query, clock).WaitBeforeWithdrawal(context.Background(), depositAddress)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSystemClock_SleepUntil(t *testing.T) {
	clock := SystemClock()

	start := time.Now()
	require.NoError(t, clock.SleepUntil(context.Background(), start.Add(20*time.Millisecond)))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := clock.SleepUntil(ctx, time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, context.Canceled)

	assert.NoError(t, clock.SleepUntil(context.Background(), time.Now().Add(-time.Second)))
}
