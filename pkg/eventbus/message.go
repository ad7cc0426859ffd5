package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/RelicDragon/bandeja-sub007/pkg/observability/attr"
)

// TopicMetadataKey records the topic a message was produced for.
const TopicMetadataKey = "topic"

// NewMessage marshals payload as JSON and copies the correlation id from ctx.
func NewMessage(ctx context.Context, topic string, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for %s: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set(TopicMetadataKey, topic)
	if id := attr.CorrelationID(ctx); id != "" {
		msg.Metadata.Set(attr.CorrelationIDKey, id)
	}
	msg.SetContext(ctx)
	return msg, nil
}

// PublishJSON builds a message with NewMessage and publishes it.
func PublishJSON(ctx context.Context, publisher message.Publisher, topic string, payload any) error {
	msg, err := NewMessage(ctx, topic, payload)
	if err != nil {
		return err
	}
	return publisher.Publish(topic, msg)
}
