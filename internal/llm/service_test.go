package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/thrift/internal/common"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_CompleteCaches(t *testing.T) {
	mock := NewMockClient("first", "second")
	svc, err := NewService(mock, Config{}, testLogger())
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	ctx := context.Background()
	text, err := svc.Complete(ctx, "sys", "user", 0.1)
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	text, err = svc.Complete(ctx, "sys", "user", 0.1)
	require.NoError(t, err)
	assert.Equal(t, "first", text)
	assert.Len(t, mock.Calls(), 1)

	text, err = svc.Complete(ctx, "sys", "other", 0.1)
	require.NoError(t, err)
	assert.Equal(t, "second", text)
	assert.Len(t, mock.Calls(), 2)
}

func TestService_ChatIsNotCached(t *testing.T) {
	mock := NewMockClient("a", "b")
	svc, err := NewService(mock, Config{}, testLogger())
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	msgs := []Message{{Role: RoleUser, Content: "hi"}}
	first, err := svc.Chat(context.Background(), msgs, 0.7)
	require.NoError(t, err)
	second, err := svc.Chat(context.Background(), msgs, 0.7)
	require.NoError(t, err)

	assert.Equal(t, "a", first)
	assert.Equal(t, "b", second)
}

func TestService_SingleAttemptByDefault(t *testing.T) {
	mock := NewFailingMockClient(errors.New("network down"))
	svc, err := NewService(mock, Config{}, testLogger())
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	_, err = svc.Complete(context.Background(), "s", "u", 0.1)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMaxRetries)
	assert.Len(t, mock.Calls(), 1)
}

func TestService_NonRetryableStopsEarly(t *testing.T) {
	mock := NewFailingMockClient(&common.RetryableError{Err: errors.New("bad key"), Retryable: false})
	svc, err := NewService(mock, Config{MaxRetries: 3}, testLogger())
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	_, err = svc.Complete(context.Background(), "s", "u", 0.1)
	require.Error(t, err)
	assert.Len(t, mock.Calls(), 1)
}

func TestService_DiskCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	svc, err := NewService(NewMockClient("cached"), Config{CachePath: path}, testLogger())
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), "s", "u", 0.1)
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	failing := NewFailingMockClient(common.ErrUnavailable)
	svc, err = NewService(failing, Config{CachePath: path}, testLogger())
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	text, err := svc.Complete(context.Background(), "s", "u", 0.1)
	require.NoError(t, err)
	assert.Equal(t, "cached", text)
	assert.Empty(t, failing.Calls())
}

func TestMockClient(t *testing.T) {
	mock := NewMockClient("one", "two")
	ctx := context.Background()

	a, _ := mock.Complete(ctx, "s", "u", 0.1)
	b, _ := mock.Complete(ctx, "s", "u", 0.1)
	c, _ := mock.Complete(ctx, "s", "u", 0.1)
	assert.Equal(t, []string{"one", "two", "two"}, []string{a, b, c})

	_, err := NewMockClient().Complete(ctx, "s", "u", 0)
	assert.ErrorIs(t, err, common.ErrEmptyResponse)
}
