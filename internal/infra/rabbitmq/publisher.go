package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher shares one channel between the status, request and DLQ
// publishers. amqp channels are not safe for concurrent publishing, and the
// worker pool publishes from several goroutines.
type Publisher struct {
	mu       sync.Mutex
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(conn *amqp.Connection, exchange string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publisher channel: %w", err)
	}
	return &Publisher{channel: ch, exchange: exchange}, nil
}

func (p *Publisher) Channel() *amqp.Channel {
	return p.channel
}

func (p *Publisher) publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.PublishWithContext(ctx, exchange, key, false, false, msg)
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}

func persistent(body []byte) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
	}
}

type StatusPublisher struct {
	pub        *Publisher
	routingKey string
}

func NewStatusPublisher(pub *Publisher) *StatusPublisher {
	return &StatusPublisher{pub: pub, routingKey: StatusRoutingKey}
}

func (sp *StatusPublisher) PublishStatus(ctx context.Context, msg []byte) error {
	return sp.pub.publish(ctx, sp.pub.exchange, sp.routingKey, persistent(msg))
}

type RequestPublisher struct {
	pub        *Publisher
	routingKey string
}

func NewRequestPublisher(pub *Publisher) *RequestPublisher {
	return &RequestPublisher{pub: pub, routingKey: RequestRoutingKey}
}

func (rp *RequestPublisher) PublishRequest(ctx context.Context, msg []byte) error {
	return rp.pub.publish(ctx, rp.pub.exchange, rp.routingKey, persistent(msg))
}

type DLQPublisher struct {
	pub   *Publisher
	queue string
}

func NewDLQPublisher(pub *Publisher, dlqQueue string) *DLQPublisher {
	return &DLQPublisher{pub: pub, queue: dlqQueue}
}

func (dp *DLQPublisher) PublishToDLQ(ctx context.Context, msg []byte, reason string) error {
	p := persistent(msg)
	p.Headers = amqp.Table{"x-dlq-reason": reason}
	return dp.pub.publish(ctx, "", dp.queue, p)
}
