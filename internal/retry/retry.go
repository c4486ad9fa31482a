// Package retry provides bounded, fixed-interval retries for operations that
// depend on state becoming available shortly after page load, such as the
// provider client handle or a freshly persisted session.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy describes how many times an operation is attempted and how long to
// wait between attempts. The worst-case wait is (Attempts-1) * Delay.
type Policy struct {
	Attempts int
	Delay    time.Duration

	// Notify, if set, is called after each failed attempt with the attempt
	// error and the wait before the next attempt.
	Notify func(err error, wait time.Duration)
}

// Budget is the worst-case time Do spends waiting between attempts.
func (p Policy) Budget() time.Duration {
	if p.Attempts <= 1 {
		return 0
	}
	return time.Duration(p.Attempts-1) * p.Delay
}

// Do calls op until it succeeds, returns a Permanent error, the Policy's
// attempts are exhausted, or ctx is done. On exhaustion the last attempt's
// error is returned.
func Do[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error)) (T, error) {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	options := []backoff.RetryOption{
		backoff.WithBackOff(backoff.NewConstantBackOff(policy.Delay)),
		backoff.WithMaxTries(uint(attempts)),
		// attempts bound the elapsed time
		backoff.WithMaxElapsedTime(0),
	}
	if policy.Notify != nil {
		options = append(options, backoff.WithNotify(backoff.Notify(policy.Notify)))
	}

	return backoff.Retry(ctx, func() (T, error) {
		return op(ctx)
	}, options...)
}

// Permanent wraps err so that Do stops retrying and returns err.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
