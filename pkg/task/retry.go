package task

import (
	"context"
	stderrors "errors"
	"math"
	"time"

	"github.com/arthur-debert/tasklines/pkg/errors"
)

// RetryPolicy controls RunWithRetry
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int
	// Exponential doubles BaseDelay on every retry; otherwise Delay is used
	Exponential bool
	BaseDelay   time.Duration
	Delay       time.Duration
	// MaxDelay caps the exponential delay; zero means no cap
	MaxDelay time.Duration
	// OnRetry, when set, is called before each wait
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultRetryPolicy retries three times, 100ms then 200ms then 400ms
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:  3,
		Exponential: true,
		BaseDelay:   100 * time.Millisecond,
		Delay:       time.Second,
	}
}

// Backoff returns the wait before retry number attempt, counting from 1
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if !p.Exponential {
		return p.Delay
	}
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		if (p.MaxDelay > 0 && d >= p.MaxDelay) || d > math.MaxInt64/2 {
			break
		}
		d *= 2
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err so RunWithRetry gives up on it immediately
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retryable reports whether RunWithRetry would try again after err.
// Library errors, cancellation and Permanent errors are final.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var p *permanentError
	if stderrors.As(err, &p) {
		return false
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var coded *errors.Error
	return !stderrors.As(err, &coded)
}

// RunWithRetry runs op on behalf of the task. Every failure is recorded
// with MarkFailed; retryable failures wait out the policy's backoff and
// move the task back to the retry state before the next attempt. The
// task's retry limit is set to the policy's. The last error is returned
// once the retries are used up.
func (h *Handle) RunWithRetry(ctx context.Context, p RetryPolicy, op func(context.Context) error) error {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if err := h.SetMaxRetries(ctx, p.MaxRetries); err != nil {
		return err
	}
	for attempt := 0; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if ferr := h.MarkFailed(ctx, err); ferr != nil {
			return ferr
		}
		if attempt >= p.MaxRetries || !Retryable(err) {
			return err
		}

		delay := p.Backoff(attempt + 1)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, delay, err)
		}
		if werr := wait(ctx, delay); werr != nil {
			return werr
		}
		if rerr := h.Retry(ctx); rerr != nil {
			return rerr
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
