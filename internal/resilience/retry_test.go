package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastBackoff(attempts int) Backoff {
	return Backoff{Attempts: attempts, Initial: time.Millisecond, Max: 5 * time.Millisecond}
}

func TestRetry_FirstTry(t *testing.T) {
	var calls int
	got, err := Retry(context.Background(), fastBackoff(3), "test", func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, calls)
}

func TestRetry_RecoversFromTemporary(t *testing.T) {
	var calls int
	got, err := Retry(context.Background(), fastBackoff(3), "test", func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, &StatusError{Service: "test", Code: 503}
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestRetry_GivesUp(t *testing.T) {
	var calls int
	_, err := Retry(context.Background(), fastBackoff(2), "test", func(context.Context) (int, error) {
		calls++
		return 0, &StatusError{Service: "test", Code: 429}
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 429, se.Code)
}

func TestRetry_PermanentErrorNotRetried(t *testing.T) {
	var calls int
	_, err := Retry(context.Background(), fastBackoff(5), "test", func(context.Context) (int, error) {
		calls++
		return 0, errors.New("malformed")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := Backoff{Attempts: 5, Initial: time.Hour, Max: time.Hour}

	var calls int
	done := make(chan error, 1)
	go func() {
		_, err := Retry(ctx, b, "test", func(context.Context) (int, error) {
			calls++
			return 0, &StatusError{Code: 503}
		})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	case <-time.After(2 * time.Second):
		t.Fatal("Retry did not return after cancel")
	}
}

func TestBackoff_Delay(t *testing.T) {
	b := Backoff{Attempts: 4, Initial: 100 * time.Millisecond, Max: 300 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, b.Delay(0))
	assert.Equal(t, 200*time.Millisecond, b.Delay(1))
	assert.Equal(t, 300*time.Millisecond, b.Delay(2))
	assert.Equal(t, 300*time.Millisecond, b.Delay(5))

	b.Jitter = 0.5
	for i := 0; i < 20; i++ {
		d := b.Delay(0)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestBackoff_Defaults(t *testing.T) {
	b := Backoff{}.normalized()
	assert.Equal(t, DefaultBackoff().Attempts, b.Attempts)
	assert.Equal(t, DefaultBackoff().Initial, b.Initial)
}
