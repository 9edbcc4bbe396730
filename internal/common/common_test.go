package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/thrift/internal/service"
)

var fast = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     2 * time.Millisecond,
	Multiplier:   2,
}

func TestWithRetry(t *testing.T) {
	tests := []struct {
		failures  error
		wantErr   error
		name      string
		failTimes int
		wantCalls int
	}{
		{name: "succeeds first time", wantCalls: 1},
		{name: "recovers after transient failures", failTimes: 2, failures: errors.New("timeout"), wantCalls: 3},
		{name: "gives up after max attempts", failTimes: 5, failures: errors.New("timeout"), wantCalls: 3, wantErr: ErrMaxRetries},
		{name: "rate limit is retried", failTimes: 1, failures: ErrRateLimit, wantCalls: 2},
		{
			name:      "terminal error stops immediately",
			failTimes: 5,
			failures:  &RetryableError{Err: errors.New("bad credentials"), Retryable: false},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				calls++
				if calls <= tt.failTimes {
					return tt.failures
				}
				return nil
			}, fast)

			assert.Equal(t, tt.wantCalls, calls)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.failTimes >= tt.wantCalls && tt.failTimes > 0:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestWithRetry_KeepsLastError(t *testing.T) {
	cause := errors.New("connection reset")
	err := WithRetry(context.Background(), func() error { return cause }, fast)

	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.ErrorIs(t, err, cause)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := WithRetry(ctx, func() error {
		calls++
		cancel()
		return errors.New("boom")
	}, service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Hour})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryableError_Unwrap(t *testing.T) {
	err := fmt.Errorf("fetch: %w", &RetryableError{Err: ErrPlaidConnection, Retryable: true})
	assert.ErrorIs(t, err, ErrPlaidConnection)
	assert.Equal(t, "fetch: plaid connection failed", err.Error())
}

func TestUserError(t *testing.T) {
	err := NewUserError("Plaid is not configured", ErrMissingConfig)
	assert.Equal(t, "Plaid is not configured: missing configuration", err.Error())
	assert.ErrorIs(t, err, ErrMissingConfig)

	assert.Equal(t, "no files found", NewUserError("no files found", nil).Error())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLoggerTo(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	require.NoError(t, SetupLoggerTo(&buf, slog.LevelInfo, "json"))
	slog.Debug("hidden")
	slog.Info("transaction ingested", "merchant", "Zara")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"merchant":"Zara"`)

	buf.Reset()
	require.NoError(t, SetupLoggerTo(&buf, slog.LevelDebug, "console"))
	slog.Debug("cache hit")
	assert.Contains(t, buf.String(), "msg=\"cache hit\"")

	assert.ErrorIs(t, SetupLoggerTo(&buf, slog.LevelInfo, "xml"), ErrInvalidConfig)
}
