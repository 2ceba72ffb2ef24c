package pubsub

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"taskboard/internal/domain/service"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

// DefaultNATSSubject is used when no subject is configured.
const DefaultNATSSubject = "taskboard.auth.events"

// natsBus wraps a NATS JetStream connection.
type natsBus struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

func dialNATS(url string, opts ...nats.Option) (*natsBus, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to NATS")
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()

		return nil, errors.Wrap(err, "failed to open JetStream context")
	}

	return &natsBus{conn: nc, js: js}, nil
}

func (b *natsBus) close() error {
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()

		return errors.WithStack(err)
	}

	return nil
}

// natsPublisher publishes auth events to a JetStream subject.
type natsPublisher struct {
	bus     *natsBus
	subject string
	logger  *slog.Logger
}

// NewNATSPublisher connects to url and publishes on subject.
func NewNATSPublisher(url, subject string, logger *slog.Logger) (service.EventPublisher, error) {
	bus, err := dialNATS(url, nats.Name("taskboard-publisher"))
	if err != nil {
		return nil, err
	}
	if subject == "" {
		subject = DefaultNATSSubject
	}

	return &natsPublisher{bus: bus, subject: subject, logger: logger}, nil
}

func (p *natsPublisher) PublishAuthEvent(ctx context.Context, event *service.AuthEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.WithStack(err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = data
	for k, v := range eventAttributes(event) {
		msg.Header.Set(k, v)
	}
	// JetStream drops a redelivered publish with the same id inside the dedupe window.
	msg.Header.Set(nats.MsgIdHdr, event.EventID)

	if _, err := p.bus.js.PublishMsg(msg, nats.Context(ctx)); err != nil {
		return errors.Wrap(err, "failed to publish event")
	}

	p.logger.Debug("[NATS] Event published",
		slog.String("event_id", event.EventID),
		slog.String("subject", p.subject),
	)

	return nil
}

func (p *natsPublisher) Close() error {
	return p.bus.close()
}

// NATSSubscriber consumes auth events from a durable JetStream consumer.
type NATSSubscriber struct {
	bus     *natsBus
	subject string
	durable string
}

// NewNATSSubscriber connects to url for consuming subject with the durable consumer name.
func NewNATSSubscriber(url, subject, durable string) (*NATSSubscriber, error) {
	bus, err := dialNATS(url, nats.Name("taskboard-"+durable))
	if err != nil {
		return nil, err
	}
	if subject == "" {
		subject = DefaultNATSSubject
	}

	return &NATSSubscriber{bus: bus, subject: subject, durable: durable}, nil
}

type natsSubscription struct {
	sub    *nats.Subscription
	mu     sync.Mutex
	closed bool
}

func (s *natsSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	return s.sub.Drain()
}

// Subscribe invokes fn for each message. A nil return acks, an error naks for redelivery.
// The subscription drains when ctx is done.
func (s *NATSSubscriber) Subscribe(ctx context.Context, fn func(ctx context.Context, event *service.AuthEvent) error) (io.Closer, error) {
	if fn == nil {
		return nil, errors.New("nil handler")
	}

	handler := func(msg *nats.Msg) {
		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		var event service.AuthEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			// Malformed payloads would be redelivered forever.
			_ = msg.Term()

			return
		}
		if err := fn(handlerCtx, &event); err != nil {
			_ = msg.Nak()

			return
		}
		_ = msg.Ack()
	}

	sub, err := s.bus.js.Subscribe(s.subject, handler, nats.Durable(s.durable), nats.ManualAck(), nats.AckExplicit())
	if err != nil {
		return nil, errors.Wrap(err, "failed to subscribe")
	}

	closer := &natsSubscription{sub: sub}
	go func() {
		<-ctx.Done()
		_ = closer.Close()
	}()

	return closer, nil
}

// Close drains the connection.
func (s *NATSSubscriber) Close() error {
	return s.bus.close()
}
