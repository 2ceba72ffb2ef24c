package pubsub

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskboard/config"
	"taskboard/internal/domain/constants"
	"taskboard/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/pubsub"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEvent() *service.AuthEvent {
	return &service.AuthEvent{
		RequestID:  "req-1",
		EventID:    "evt-1",
		Type:       service.AuthEventUserLoggedIn,
		UserID:     "6b1f3c1e-2a49-4b0e-9a35-3f0c8a0e9d11",
		OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Metadata:   map[string]string{"email": "ada@example.com"},
	}
}

func TestLocalHTTPPublisher_PushFormat(t *testing.T) {
	var received PubSubPushMessage
	var requestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get("X-Request-Id")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	publisher := NewLocalHTTPPublisher(srv.URL, testLogger())
	require.NoError(t, publisher.PublishAuthEvent(context.Background(), testEvent()))

	assert.Equal(t, "req-1", requestID)
	assert.Equal(t, LocalSubscription, received.Subscription)
	assert.Equal(t, "evt-1", received.Message.MessageID)
	assert.Equal(t, service.AuthEventUserLoggedIn, received.Message.Attributes["type"])

	data, err := base64.StdEncoding.DecodeString(received.Message.Data)
	require.NoError(t, err)
	var decoded service.AuthEvent
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "evt-1", decoded.EventID)
	assert.Equal(t, "ada@example.com", decoded.Metadata["email"])
}

func TestLocalHTTPPublisher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	publisher := NewLocalHTTPPublisher(srv.URL, testLogger())
	err := publisher.PublishAuthEvent(context.Background(), testEvent())
	assert.ErrorContains(t, err, "503")
}

func TestGoCloudPublisher_MemTopic(t *testing.T) {
	ctx := context.Background()
	const url = "mem://auth-events-test"

	publisher, err := NewGoCloudPublisher(ctx, url, testLogger())
	require.NoError(t, err)

	sub, err := pubsub.OpenSubscription(ctx, url)
	require.NoError(t, err)
	defer sub.Shutdown(ctx)

	require.NoError(t, publisher.PublishAuthEvent(ctx, testEvent()))

	recvCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	msg, err := sub.Receive(recvCtx)
	require.NoError(t, err)
	msg.Ack()

	assert.Equal(t, "evt-1", msg.Metadata["event_id"])
	assert.Equal(t, "req-1", msg.Metadata["request_id"])

	var decoded service.AuthEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, service.AuthEventUserLoggedIn, decoded.Type)

	require.NoError(t, publisher.Close())
}

func TestNewPublisher_Selection(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     *config.PubSubConfig
		wantErr string
	}{
		{name: "nil config is noop", cfg: nil},
		{name: "empty provider is noop", cfg: &config.PubSubConfig{}},
		{name: "local needs endpoint", cfg: &config.PubSubConfig{Provider: constants.PubSubProviderLocal}, wantErr: "local endpoint"},
		{name: "local", cfg: &config.PubSubConfig{Provider: constants.PubSubProviderLocal, LocalEndpoint: "http://127.0.0.1:1/push"}},
		{name: "google needs project", cfg: &config.PubSubConfig{Provider: constants.PubSubProviderGoogle}, wantErr: "project ID"},
		{name: "google needs topic", cfg: &config.PubSubConfig{Provider: constants.PubSubProviderGoogle, ProjectID: "p"}, wantErr: "topic ID"},
		{name: "gocloud needs url", cfg: &config.PubSubConfig{Provider: constants.PubSubProviderGoCloud}, wantErr: "topic URL"},
		{name: "gocloud mem", cfg: &config.PubSubConfig{Provider: constants.PubSubProviderGoCloud, TopicURL: "mem://selection-test"}},
		{name: "nats needs url", cfg: &config.PubSubConfig{Provider: constants.PubSubProviderNATS}, wantErr: "NATS URL"},
		{name: "unknown", cfg: &config.PubSubConfig{Provider: "carrier-pigeon"}, wantErr: "unknown pubsub provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher, err := newPublisher(ctx, tt.cfg, testLogger())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}
			require.NoError(t, err)
			require.NotNil(t, publisher)
			assert.NoError(t, publisher.Close())
		})
	}
}

func TestNoopPublisher(t *testing.T) {
	publisher := NewNoopPublisher(testLogger())
	assert.NoError(t, publisher.PublishAuthEvent(context.Background(), testEvent()))
	assert.NoError(t, publisher.Close())
}
