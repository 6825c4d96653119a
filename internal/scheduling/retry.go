package scheduling

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Retrier повторяет операцию, упавшую с *TransientError, с экспоненциальной
// задержкой и джиттером. Любой другой результат возвращается сразу.
type Retrier struct {
	attempts  uint64
	baseDelay time.Duration
}

func NewRetrier(attempts int, baseDelay time.Duration) *Retrier {
	if attempts < 1 {
		attempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = time.Millisecond
	}
	return &Retrier{attempts: uint64(attempts), baseDelay: baseDelay}
}

func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	b := retry.NewExponential(r.baseDelay)
	b = retry.WithJitterPercent(20, b)
	b = retry.WithMaxRetries(r.attempts-1, b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if IsTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
