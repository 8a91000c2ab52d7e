// Package pubsub carries deployment lifecycle events between the
// deployment store and confirmation waiters.
package pubsub

import (
	"context"
	"time"
)

// Message represents a published event with payload and metadata.
type Message struct {
	Payload   any       // Actual data being transmitted
	Timestamp time.Time // When the message was published
}

// Subscription represents a consumer's connection to a topic.
type Subscription interface {
	Chan() <-chan *Message
	Close() error
}

// PubSub defines a flexible pub/sub interface compatible with Watermill.
type PubSub interface {
	Publish(topic string, message *Message) error
	Subscribe(topic string, consumerID string) (Subscription, error)
	Unsubscribe(topic string, consumerID string) error
	Close() error
}

// SubscriptionImpl implements the Subscription interface.
type SubscriptionImpl struct {
	MsgChan <-chan *Message
	Ctx     context.Context
	Cancel  context.CancelFunc
}

func (s *SubscriptionImpl) Chan() <-chan *Message {
	return s.MsgChan
}

func (s *SubscriptionImpl) Close() error {
	if s.Cancel != nil {
		s.Cancel()
	}
	return nil
}
