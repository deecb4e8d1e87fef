package modeloop

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trigg3rX/mining-cli/pkg/logging"
)

type mockSelector struct {
	mock.Mock
}

func (m *mockSelector) SelectMode() (RunMode, error) {
	args := m.Called()
	return args.Get(0).(RunMode), args.Error(1)
}

type countingPauser struct {
	pauses int
}

func (p *countingPauser) Pause() {
	p.pauses++
}

func recordingActions(calls *[]RunMode) map[RunMode]Action {
	actions := make(map[RunMode]Action)
	for _, mode := range Modes {
		mode := mode
		actions[mode] = func(ctx context.Context) error {
			*calls = append(*calls, mode)
			return nil
		}
	}
	return actions
}

func TestLoop_NonInteractive_RunsOnce(t *testing.T) {
	for _, mode := range Modes {
		t.Run(mode.String(), func(t *testing.T) {
			var calls []RunMode
			selector := &mockSelector{}
			pauser := &countingPauser{}
			loop := &Loop{Actions: recordingActions(&calls), Selector: selector, Pauser: pauser, Logger: logging.NewNoOpLogger()}

			err := loop.Run(context.Background(), mode)

			require.NoError(t, err)
			assert.Equal(t, []RunMode{mode}, calls)
			assert.Zero(t, pauser.pauses)
			selector.AssertNotCalled(t, "SelectMode")
		})
	}
}

func TestLoop_Interactive_PausesAfterNonMiningModes(t *testing.T) {
	var calls []RunMode
	selector := &mockSelector{}
	selector.On("SelectMode").Return(Export, nil).Once()
	selector.On("SelectMode").Return(Mining, nil).Once()
	selector.On("SelectMode").Return(RunMode(0), errors.New("stdin closed")).Once()
	pauser := &countingPauser{}
	loop := &Loop{Actions: recordingActions(&calls), Selector: selector, Pauser: pauser, Interactive: true}

	err := loop.Run(context.Background(), Claim)

	assert.ErrorContains(t, err, "stdin closed")
	assert.Equal(t, []RunMode{Claim, Export, Mining}, calls)
	assert.Equal(t, 2, pauser.pauses)
	selector.AssertExpectations(t)
}

func TestLoop_ActionError_EndsLoopUnchanged(t *testing.T) {
	actionErr := errors.New("deposit reverted")
	selector := &mockSelector{}
	loop := &Loop{
		Actions: map[RunMode]Action{
			Mining: func(ctx context.Context) error { return actionErr },
		},
		Selector:    selector,
		Pauser:      &countingPauser{},
		Interactive: true,
	}

	err := loop.Run(context.Background(), Mining)

	assert.Same(t, actionErr, err)
	selector.AssertNotCalled(t, "SelectMode")
}

func TestLoop_UnboundMode(t *testing.T) {
	loop := &Loop{Actions: map[RunMode]Action{}}

	err := loop.Run(context.Background(), CheckUpdate)

	assert.ErrorContains(t, err, "check-update")
}

func TestLoop_InteractiveRequiresSelector(t *testing.T) {
	var calls []RunMode
	loop := &Loop{Actions: recordingActions(&calls), Interactive: true}

	err := loop.Run(context.Background(), Mining)

	assert.Error(t, err)
	assert.Empty(t, calls)
}

func TestLoop_CancelledContext(t *testing.T) {
	var calls []RunMode
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loop := &Loop{Actions: recordingActions(&calls)}

	err := loop.Run(ctx, Mining)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, calls)
}

func TestParseRunMode(t *testing.T) {
	tests := []struct {
		input    string
		expected RunMode
		wantErr  bool
	}{
		{"mining", Mining, false},
		{"Claim", Claim, false},
		{" exit ", Exit, false},
		{"export", Export, false},
		{"check-update", CheckUpdate, false},
		{"checkupdate", CheckUpdate, false},
		{"mine", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseRunMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestRunMode_Mutates(t *testing.T) {
	assert.True(t, Mining.Mutates())
	assert.True(t, Claim.Mutates())
	assert.True(t, Exit.Mutates())
	assert.False(t, Export.Mutates())
	assert.False(t, CheckUpdate.Mutates())
	assert.Equal(t, "RunMode(9)", RunMode(9).String())
}
