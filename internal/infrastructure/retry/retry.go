// Package retry provides a small retry combinator with exponential backoff and
// jitter, decoupled from the operations it retries.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
)

// Policy describes how an operation is retried.
type Policy struct {
	MaxAttempts int           // total attempts, including the first
	BaseDelay   time.Duration // delay before the second attempt
	MaxDelay    time.Duration // cap applied to every delay
	Jitter      float64       // randomization factor in [0,1]
	Retryable   func(error) bool
	OnRetry     func(attempt int, err error, next time.Duration)
}

// DefaultPolicy returns three attempts starting at 500ms, capped at 10s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Jitter:      0.5,
	}
}

// Operation is a single attempt.
type Operation func(ctx context.Context) error

// Do runs op until it succeeds, returns a non-retryable error, exhausts the
// policy's attempts, or ctx is done. The last operation error is returned.
func Do(ctx context.Context, policy Policy, op Operation) error {
	if policy.MaxAttempts <= 1 {
		return op(ctx)
	}

	var lastErr error
	attempt := 0
	operation := func() error {
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil || !policy.retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		if policy.OnRetry != nil {
			policy.OnRetry(attempt, err, next)
		}
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(policy.backOff(), uint64(policy.MaxAttempts-1)),
		ctx,
	)
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		if lastErr != nil {
			return lastErr
		}
		return err
	}
	return nil
}

func (p Policy) retryable(err error) bool {
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

func (p Policy) backOff() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if p.BaseDelay > 0 {
		exp.InitialInterval = p.BaseDelay
	}
	if p.MaxDelay > 0 {
		exp.MaxInterval = p.MaxDelay
	}
	if p.Jitter >= 0 && p.Jitter <= 1 {
		exp.RandomizationFactor = p.Jitter
	}
	exp.Multiplier = 2
	// attempts bound the loop, not elapsed time
	exp.MaxElapsedTime = 0
	exp.Reset()
	if p.MaxDelay <= 0 {
		return exp
	}
	return &cappedBackOff{BackOff: exp, max: p.MaxDelay}
}

// cappedBackOff clamps every delay to max. ExponentialBackOff applies its
// randomization after MaxInterval, so the jittered delay can exceed it.
type cappedBackOff struct {
	backoff.BackOff
	max time.Duration
}

func (c *cappedBackOff) NextBackOff() time.Duration {
	next := c.BackOff.NextBackOff()
	if next == backoff.Stop || next <= c.max {
		return next
	}
	return c.max
}
