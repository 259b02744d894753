// Package retry provides a bounded retry policy for transient I/O operations.
// Storage and store writes retry once by default, matching the upstream
// ingestion retry behavior; anything beyond that escalates to the caller.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Operation is a retryable unit of work.
type Operation func(ctx context.Context) error

// Policy defines how many total attempts an operation gets and the pause
// between them. A Policy is a value; stages hold their own copy scoped to a run.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Once returns the default policy: one retry after the initial attempt.
func Once(delay time.Duration) Policy {
	return Policy{Attempts: 2, Delay: delay}
}

// Do runs op until it succeeds, the attempt budget is exhausted, or ctx is
// cancelled. The final error wraps the last failure with the attempt count.
func (p Policy) Do(ctx context.Context, op Operation) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == attempts {
			break
		}

		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
