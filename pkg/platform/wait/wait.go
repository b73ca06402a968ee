// Package wait holds the polling primitives shared by the bridge and the
// approval workflow: a bounded predicate poll and an unbounded retry loop.
package wait

import (
	"context"
	"time"

	"loginguard/pkg/platform/clock"
)

// Condition reports whether the awaited state has been reached. A non-nil
// error stops polling immediately.
type Condition func(ctx context.Context) (done bool, err error)

// Never is a Condition that is never satisfied; Until(…, Never) lingers until the deadline.
func Never(context.Context) (bool, error) { return false, nil }

// Until evaluates cond every interval until it reports done, returns an error,
// or the deadline passes. The condition is evaluated before the first sleep.
// It returns true when cond was satisfied and false when the deadline passed.
func Until(ctx context.Context, clk clock.Clock, interval time.Duration, deadline time.Time, cond Condition) (bool, error) {
	for clk.Now().Before(deadline) {
		done, err := cond(ctx)
		if err != nil {
			return false, err
		}
		if done {
			return true, nil
		}

		step := interval
		if remaining := deadline.Sub(clk.Now()); remaining < step {
			step = remaining
		}
		if err := clk.Sleep(ctx, step); err != nil {
			return false, err
		}
	}
	return false, nil
}

// Retry calls op until it succeeds, sleeping interval between attempts.
// onErr, when set, observes every failed attempt (1-based). Retry only gives
// up when ctx is done.
func Retry(ctx context.Context, clk clock.Clock, interval time.Duration, op func(ctx context.Context) error, onErr func(attempt int, err error)) error {
	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if onErr != nil {
			onErr(attempt, err)
		}
		if err := clk.Sleep(ctx, interval); err != nil {
			return err
		}
	}
}
