// Package eventbus connects watermill publishers and subscribers to NATS JetStream.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/RelicDragon/bandeja-sub007/pkg/observability/attr"
)

// EventBus is a watermill publisher and subscriber that can provision its streams.
type EventBus interface {
	message.Publisher
	message.Subscriber
	// CreateStream makes sure a JetStream stream exists for the given subjects.
	CreateStream(ctx context.Context, name string, subjects ...string) error
}

type eventBus struct {
	publisher      message.Publisher
	subscriber     message.Subscriber
	js             jetstream.JetStream
	natsConn       *nc.Conn
	logger         *slog.Logger
	createdStreams map[string]bool
	streamMutex    sync.Mutex
}

// NewEventBus connects to NATS and returns a JetStream backed EventBus. Consumers in the same
// queue group share deliveries.
func NewEventBus(ctx context.Context, natsURL, queueGroup string, logger *slog.Logger) (EventBus, error) {
	natsConn, err := nc.Connect(natsURL, nc.RetryOnFailedConnect(true))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to NATS", attr.Error(err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         natsURL,
			Marshaler:   marshaler,
			NatsOptions: []nc.Option{nc.RetryOnFailedConnect(true)},
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to create watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:              natsURL,
			QueueGroupPrefix: queueGroup,
			Unmarshaler:      marshaler,
			NatsOptions:      []nc.Option{nc.RetryOnFailedConnect(true)},
		},
		watermillLogger,
	)
	if err != nil {
		publisher.Close()
		natsConn.Close()
		return nil, fmt.Errorf("failed to create watermill subscriber: %w", err)
	}

	return &eventBus{
		publisher:      publisher,
		subscriber:     subscriber,
		js:             js,
		natsConn:       natsConn,
		logger:         logger,
		createdStreams: make(map[string]bool),
	}, nil
}

// StreamForTopic maps "round.outcomes.applied.v1" to stream "ROUND" covering "round.>".
func StreamForTopic(topic string) (name string, subject string) {
	prefix, _, _ := strings.Cut(topic, ".")
	return strings.ToUpper(prefix), prefix + ".>"
}

func (eb *eventBus) CreateStream(ctx context.Context, name string, subjects ...string) error {
	eb.streamMutex.Lock()
	defer eb.streamMutex.Unlock()

	if eb.createdStreams[name] {
		return nil
	}

	_, err := eb.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     name,
		Subjects: subjects,
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", name, err)
	}

	eb.createdStreams[name] = true
	eb.logger.InfoContext(ctx, "JetStream stream ready",
		attr.String("stream", name),
		attr.Strings("subjects", subjects),
	)
	return nil
}

func (eb *eventBus) ensureStreamFor(ctx context.Context, topic string) error {
	name, subject := StreamForTopic(topic)
	return eb.CreateStream(ctx, name, subject)
}

func (eb *eventBus) Publish(topic string, messages ...*message.Message) error {
	if err := eb.ensureStreamFor(context.Background(), topic); err != nil {
		return err
	}
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
		eb.logger.Debug("Publishing message",
			attr.String("topic", topic),
			attr.String("message_id", msg.UUID),
			attr.String(attr.CorrelationIDKey, msg.Metadata.Get(attr.CorrelationIDKey)),
		)
	}
	if err := eb.publisher.Publish(topic, messages...); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if err := eb.ensureStreamFor(ctx, topic); err != nil {
		return nil, err
	}
	eb.logger.InfoContext(ctx, "Subscribing to topic", attr.String("topic", topic))
	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	return messages, nil
}

func (eb *eventBus) Close() error {
	var firstErr error
	if err := eb.publisher.Close(); err != nil {
		firstErr = err
	}
	if err := eb.subscriber.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	eb.natsConn.Close()
	return firstErr
}
