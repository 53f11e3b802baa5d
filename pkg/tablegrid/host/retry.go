package host

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Retrier runs host calls that fail transiently. Attempts are spaced by a
// constant Delay; there is no backoff.
type Retrier struct {
	Attempts int
	Delay    time.Duration
	Logger   *zap.Logger
}

// Do calls fn until it succeeds or the attempts are used up.
func (r Retrier) Do(name string, fn func() error) error {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if r.Delay > 0 {
		limit = rate.Every(r.Delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	var err error
	for i := 1; i <= attempts; i++ {
		if werr := limiter.Wait(context.Background()); werr != nil {
			return werr
		}
		if err = fn(); err == nil {
			return nil
		}
		logger.Debug("host call failed",
			zap.String("call", name),
			zap.Int("attempt", i),
			zap.Int("attempts", attempts),
			zap.Error(err))
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, err)
}

// Retry is Do for calls that return a value.
func Retry[T any](r Retrier, name string, fn func() (T, error)) (T, error) {
	var out T
	err := r.Do(name, func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
