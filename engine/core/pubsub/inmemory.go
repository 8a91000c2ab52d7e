package pubsub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// WatermillPubSub wraps Watermill's gochannel transport with an in-memory
// pointer cache so payloads keep their Go types across the bridge and late
// subscribers see events published before they connected. Deployment
// confirmations rely on the replay: a waiter may subscribe after the store
// has already marked every reservation live.
type WatermillPubSub struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	ctx        context.Context
	cancel     context.CancelFunc

	// byID holds the original Message objects keyed by Watermill UUID.
	byID map[string]*Message
	// topicLog keeps publish order per topic for replay.
	topicLog    map[string][]string
	cacheMu     sync.RWMutex
	maxCache    int
	consumerBuf int

	subscriptions map[string]context.CancelFunc
	active        map[string]Subscription
	subMu         sync.Mutex
}

// NewInMemoryPubSub creates a Watermill-backed PubSub with replay support.
func NewInMemoryPubSub() *WatermillPubSub {
	logger := watermill.NewStdLogger(false, false)

	bus := gochannel.NewGoChannel(
		gochannel.Config{
			BlockPublishUntilSubscriberAck: false,
		},
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())

	return &WatermillPubSub{
		publisher:     bus,
		subscriber:    bus,
		ctx:           ctx,
		cancel:        cancel,
		byID:          make(map[string]*Message),
		topicLog:      make(map[string][]string),
		maxCache:      4096,
		consumerBuf:   256,
		subscriptions: make(map[string]context.CancelFunc),
		active:        make(map[string]Subscription),
	}
}

// Publish records the message in the replay cache and forwards its ID
// through Watermill.
func (ps *WatermillPubSub) Publish(topic string, msg *Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	msgID := watermill.NewUUID()

	ps.cacheMu.Lock()
	ps.byID[msgID] = msg
	ps.topicLog[topic] = append(ps.topicLog[topic], msgID)
	if len(ps.topicLog[topic]) > ps.maxCache {
		oldest := ps.topicLog[topic][0]
		ps.topicLog[topic] = ps.topicLog[topic][1:]
		delete(ps.byID, oldest)
	}
	ps.cacheMu.Unlock()

	wMsg := message.NewMessage(msgID, []byte(msgID))
	if err := ps.publisher.Publish(topic, wMsg); err != nil {
		return fmt.Errorf("watermill publish failed: %w", err)
	}
	return nil
}

// Subscribe attaches a consumer to a topic. Cached messages are replayed
// first, then live delivery takes over. Subscribing twice with the same
// consumerID returns the existing subscription.
func (ps *WatermillPubSub) Subscribe(topic string, consumerID string) (Subscription, error) {
	key := consumerID + ":" + topic
	ps.subMu.Lock()
	if sub, exists := ps.active[key]; exists {
		ps.subMu.Unlock()
		return sub, nil
	}
	ps.subMu.Unlock()

	subCtx, subCancel := context.WithCancel(ps.ctx)

	ps.subMu.Lock()
	ps.subscriptions[key] = subCancel
	ps.subMu.Unlock()

	stream, err := ps.subscriber.Subscribe(subCtx, topic)
	if err != nil {
		subCancel()
		ps.subMu.Lock()
		delete(ps.subscriptions, key)
		ps.subMu.Unlock()
		return nil, fmt.Errorf("watermill subscribe failed: %w", err)
	}

	ps.cacheMu.RLock()
	out := make(chan *Message, ps.consumerBuf)
	var replay []*Message
	for _, id := range ps.topicLog[topic] {
		if m, ok := ps.byID[id]; ok {
			replay = append(replay, m)
		}
	}
	ps.cacheMu.RUnlock()

	for _, m := range replay {
		select {
		case out <- m:
		case <-subCtx.Done():
			return nil, subCtx.Err()
		case <-time.After(100 * time.Millisecond):
			// Consumer buffer is full and nobody is reading; skip the
			// remaining replay rather than deadlock the subscriber.
		}
	}

	go func() {
		defer close(out)
		for {
			select {
			case <-subCtx.Done():
				return
			case wMsg, ok := <-stream:
				if !ok {
					return
				}
				ps.cacheMu.RLock()
				orig, found := ps.byID[wMsg.UUID]
				ps.cacheMu.RUnlock()
				if !found {
					wMsg.Ack()
					continue
				}
				select {
				case out <- orig:
					wMsg.Ack()
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	sub := &SubscriptionImpl{
		MsgChan: out,
		Ctx:     subCtx,
		Cancel:  subCancel,
	}

	ps.subMu.Lock()
	ps.active[key] = sub
	ps.subMu.Unlock()

	return sub, nil
}

// Unsubscribe stops a subscription if it exists.
func (ps *WatermillPubSub) Unsubscribe(topic string, consumerID string) error {
	ps.subMu.Lock()
	defer ps.subMu.Unlock()

	key := consumerID + ":" + topic
	if cancel, exists := ps.subscriptions[key]; exists {
		cancel()
		delete(ps.subscriptions, key)
		delete(ps.active, key)
	}
	return nil
}

// Close tears down every subscription and the underlying transport.
func (ps *WatermillPubSub) Close() error {
	ps.cancel()
	return ps.publisher.Close()
}
