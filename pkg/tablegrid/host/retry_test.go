package host

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrierSucceedsAfterFailures(t *testing.T) {
	calls := 0
	r := Retrier{Attempts: 3, Delay: time.Millisecond}
	err := r.Do("flaky", func() error {
		calls++
		if calls < 3 {
			return errors.New("busy")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetrierGivesUp(t *testing.T) {
	busy := errors.New("busy")
	calls := 0
	err := Retrier{Attempts: 2}.Do("always", func() error {
		calls++
		return busy
	})
	assert.ErrorIs(t, err, busy)
	assert.ErrorContains(t, err, "always failed after 2 attempts")
	assert.Equal(t, 2, calls)
}

func TestRetrierSpacesAttempts(t *testing.T) {
	start := time.Now()
	_ = Retrier{Attempts: 3, Delay: 20 * time.Millisecond}.Do("slow", func() error {
		return errors.New("busy")
	})
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestRetry(t *testing.T) {
	v, err := Retry(Retrier{}, "value", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
