package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"taskboard/internal/domain/service"
	"taskboard/internal/infra/persistence/memory"
	"taskboard/internal/usecase/impl"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// fakeSource hands the callback back to the test.
type fakeSource struct {
	fn     func(ctx context.Context, event *service.AuthEvent) error
	closed bool
}

func (s *fakeSource) Subscribe(_ context.Context, fn func(ctx context.Context, event *service.AuthEvent) error) (io.Closer, error) {
	s.fn = fn

	return closerFunc(func() error {
		s.closed = true

		return nil
	}), nil
}

type failingAudit struct{}

func (failingAudit) Record(context.Context, *service.AuthEvent) error {
	return errors.New("connection refused")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConsumer_RecordsEvents(t *testing.T) {
	store := memory.NewStore()
	audit := impl.NewAuditService(impl.AuditServiceParams{AuditRepo: store.AuditLogs(), Logger: discardLogger()})
	source := &fakeSource{}
	c := newConsumer(source, audit, discardLogger())

	require.NoError(t, c.Serve(context.Background()))
	require.NotNil(t, source.fn)

	event := &service.AuthEvent{EventID: uuid.NewString(), Type: service.AuthEventUserLoggedOut}
	assert.NoError(t, source.fn(context.Background(), event))
	assert.NoError(t, source.fn(context.Background(), event))
	assert.Equal(t, 1, store.AuditLogCount())

	// Malformed events are acknowledged and dropped.
	assert.NoError(t, source.fn(context.Background(), &service.AuthEvent{}))

	require.NoError(t, c.Close())
	assert.True(t, source.closed)
}

func TestConsumer_StoreFailureRequestsRedelivery(t *testing.T) {
	source := &fakeSource{}
	c := newConsumer(source, failingAudit{}, discardLogger())

	require.NoError(t, c.Serve(context.Background()))
	assert.Error(t, source.fn(context.Background(), &service.AuthEvent{EventID: "e", Type: service.AuthEventUserLoggedIn}))
}

func TestConsumer_WithoutSourceIsIdle(t *testing.T) {
	c := newConsumer(nil, failingAudit{}, discardLogger())

	assert.NoError(t, c.Serve(context.Background()))
	assert.NoError(t, c.Close())
}
