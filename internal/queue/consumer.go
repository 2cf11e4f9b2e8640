package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/movie-night/internal/logger"
)

// Deliverer hands a decoded event to its final destination.
type Deliverer interface {
	Deliver(ctx context.Context, ev VoteEvent) error
}

// Consumer reads vote events from the queue and passes them to a
// Deliverer. Messages that cannot be decoded or delivered are rejected
// without requeue so a poison message cannot loop.
type Consumer struct {
	url       string
	queue     string
	deliverer Deliverer
	log       logger.Logger
}

func NewConsumer(url, queue string, d Deliverer, log logger.Logger) *Consumer {
	return &Consumer{url: url, queue: queue, deliverer: d, log: log}
}

// Run connects and consumes until ctx is cancelled, reconnecting with
// exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("vote-consumer: failed to dial broker", "err", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("vote-consumer: consume loop ended, reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		c.log.Warn("vote-consumer: set QoS failed", "err", err)
	}
	if err := declareQueue(ch, c.queue); err != nil {
		return err
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.process(ctx, d)
		}
	}
}

// process acks a delivered message or rejects it without requeue. A
// message interrupted by shutdown is requeued so that it is not lost.
func (c *Consumer) process(ctx context.Context, d amqp.Delivery) {
	err := c.handle(ctx, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case ctx.Err() != nil:
		c.log.Warn("vote-consumer: shutdown during delivery, requeueing", "err", err)
		_ = d.Nack(false, true)
	default:
		c.log.BusinessError("vote-consumer: handle message failed", err)
		_ = d.Nack(false, false)
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var ev VoteEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return c.deliverer.Deliver(ctx, ev)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
