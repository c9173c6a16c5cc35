// Package retry wraps fallible operations with bounded retries, exponential
// delay and jitter. Callers can abort the retry chain early for failures that
// will never recover (e.g. a remote 404).
package retry

import (
	"context"
	"math/rand/v2"
	"time"
)

const (
	defaultMaxAttempts  = 3
	defaultInitialDelay = time.Second

	// jitterFraction is the upper bound of random delay added on top of the
	// exponential backoff, as a fraction of the computed delay.
	jitterFraction = 0.2
)

// Options controls a retry chain.
type Options struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Defaults to 3.
	MaxAttempts int

	// InitialDelay is the wait before the first retry; each subsequent wait
	// doubles. Defaults to 1s.
	InitialDelay time.Duration

	// RetryIf decides whether a failed attempt may be retried. A nil
	// predicate retries every error.
	RetryIf func(error) bool
}

func (o Options) withDefaults() Options {
	out := o
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = defaultMaxAttempts
	}
	if out.InitialDelay <= 0 {
		out.InitialDelay = defaultInitialDelay
	}
	return out
}

// Do runs op until it succeeds, the attempt budget is exhausted, RetryIf
// rejects the error, or ctx is canceled. The wait before retry n doubles per
// attempt with up to 20% random jitter added; the final failed attempt
// returns its error immediately without waiting. The last error is returned
// unwrapped.
func Do[T any](ctx context.Context, op func(context.Context) (T, error), opts Options) (T, error) {
	opts = opts.withDefaults()

	var zero T
	var lastErr error

	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if opts.RetryIf != nil && !opts.RetryIf(err) {
			return zero, err
		}
		if attempt == opts.MaxAttempts-1 {
			break
		}

		delay := opts.InitialDelay << attempt
		delay += time.Duration(rand.Float64() * jitterFraction * float64(delay))
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
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
