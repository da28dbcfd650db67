package retry

import (
	"context"
	"time"

	"github.com/vvka-141/flrload/internal/logging"
	"github.com/vvka-141/flrload/pkg/flrload"
)

// Executor runs an operation until it succeeds, fails permanently, runs out
// of attempts or its context ends.
type Executor struct {
	classifier flrload.ErrorClassifier
	strategy   flrload.BackoffStrategy
	logger     flrload.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewExecutor panics if classifier or strategy is nil. A nil logger discards
// retry notices.
func NewExecutor(classifier flrload.ErrorClassifier, strategy flrload.BackoffStrategy, logger flrload.Logger) *Executor {
	if classifier == nil || strategy == nil {
		panic("retry: classifier and strategy are required")
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Executor{classifier: classifier, strategy: strategy, logger: logger, sleep: sleep}
}

// Do runs op. name identifies the operation in log messages.
func (e *Executor) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	err := op(ctx)
	max := e.strategy.MaxAttempts()

	for attempt := 0; err != nil && e.classifier.IsTransient(err) && (max < 0 || attempt < max); attempt++ {
		delay := e.strategy.NextDelay(attempt)
		e.logger.Verbose("%s failed (%v), retry %d in %v", name, err, attempt+1, delay.Round(time.Millisecond))

		if serr := e.sleep(ctx, delay); serr != nil {
			return serr
		}
		err = op(ctx)
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
