package modeloop

import (
	"context"
	"fmt"

	"github.com/trigg3rX/mining-cli/internal/metrics"
	"github.com/trigg3rX/mining-cli/pkg/logging"
)

// Action runs one mode to completion.
type Action func(ctx context.Context) error

// Selector picks the next mode in interactive sessions.
type Selector interface {
	SelectMode() (RunMode, error)
}

// Pauser blocks until the operator acknowledges the output of a finished mode.
type Pauser interface {
	Pause()
}

// Loop dispatches run modes. A non-interactive loop runs exactly one mode.
type Loop struct {
	Actions     map[RunMode]Action
	Selector    Selector
	Pauser      Pauser
	Interactive bool
	Logger      logging.Logger
}

// Run executes mode and, when interactive, keeps asking for the next one.
// The first action error ends the loop and is returned unchanged.
func (l *Loop) Run(ctx context.Context, mode RunMode) error {
	if l.Interactive && (l.Selector == nil || l.Pauser == nil) {
		return fmt.Errorf("interactive mode loop requires a selector and a pauser")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		action, ok := l.Actions[mode]
		if !ok {
			return fmt.Errorf("no action bound to run mode %s", mode)
		}

		l.logger().Info("Running mode", "mode", mode.String())
		metrics.ActiveMode.WithLabelValues(mode.String()).Set(1)
		err := action(ctx)
		metrics.ActiveMode.WithLabelValues(mode.String()).Set(0)
		if err != nil {
			metrics.ActionFailuresTotal.WithLabelValues(mode.String()).Inc()
			return err
		}

		if !l.Interactive {
			return nil
		}
		// Mining output scrolls continuously; every other mode waits for the operator.
		if mode != Mining {
			l.Pauser.Pause()
		}

		next, err := l.Selector.SelectMode()
		if err != nil {
			return fmt.Errorf("failed to select mode: %w", err)
		}
		mode = next
	}
}

func (l *Loop) logger() logging.Logger {
	if l.Logger == nil {
		return logging.NewNoOpLogger()
	}
	return l.Logger
}
