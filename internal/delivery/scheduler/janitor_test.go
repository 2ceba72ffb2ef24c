package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"taskboard/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSessions struct {
	usecase.SessionUsecase

	calls atomic.Int32
	err   error
}

func (s *countingSessions) CleanupExpiredSessions(context.Context) (int64, error) {
	s.calls.Add(1)

	return 2, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSessionJanitor_SweepsUntilStopped(t *testing.T) {
	sessions := &countingSessions{err: errors.New("store down")}
	j := newSessionJanitor(sessions, 5*time.Millisecond, discardLogger())

	done := make(chan error, 1)
	go func() { done <- j.Serve(context.Background()) }()

	// Failures are logged and the loop keeps going.
	assert.Eventually(t, func() bool { return sessions.calls.Load() >= 3 }, time.Second, time.Millisecond)

	require.NoError(t, j.stop(context.Background()))
	require.NoError(t, <-done)
}

func TestSessionJanitor_Disabled(t *testing.T) {
	sessions := &countingSessions{}
	j := newSessionJanitor(sessions, 0, discardLogger())

	require.NoError(t, j.Serve(context.Background()))
	require.NoError(t, j.stop(context.Background()))
	assert.Zero(t, sessions.calls.Load())
}

func TestSessionJanitor_StopsOnContextCancel(t *testing.T) {
	j := newSessionJanitor(&countingSessions{}, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}
