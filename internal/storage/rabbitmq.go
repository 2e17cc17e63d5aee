package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/supersokol/workua-resume-toolkit/internal/config"
	"github.com/supersokol/workua-resume-toolkit/internal/logger"
	"github.com/supersokol/workua-resume-toolkit/internal/types"
)

// RabbitMQ consumes scraped payloads and publishes processed-record
// events.
type RabbitMQ struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	cfg  config.RabbitMQConfig
}

// NewRabbitMQ dials the broker and declares the payload queue and the
// processed-events exchange.
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(cfg.PayloadQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", cfg.PayloadQueue, err)
	}
	if err := ch.ExchangeDeclare(cfg.ProcessedExchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.ProcessedExchange, err)
	}

	logger.Info().
		Str("queue", cfg.PayloadQueue).
		Str("exchange", cfg.ProcessedExchange).
		Msg("rabbitmq connected")
	return &RabbitMQ{conn: conn, ch: ch, cfg: *cfg}, nil
}

// Close shuts the channel and connection down.
func (r *RabbitMQ) Close() error {
	if err := r.ch.Close(); err != nil {
		_ = r.conn.Close()
		return err
	}
	return r.conn.Close()
}

// ConsumePayloads delivers payload messages to handler until ctx ends,
// with up to workers handlers running concurrently. A true return acks
// the message; false sends it to a nack without requeue, since a
// payload that failed once will fail again. The handler must be safe
// for concurrent use when workers > 1.
func (r *RabbitMQ) ConsumePayloads(ctx context.Context, workers int, handler func([]byte) bool) error {
	prefetch := r.cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := r.ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	if workers <= 0 {
		workers = 1
	}

	tag := "resume-toolkit-" + uuid.NewString()
	deliveries, err := r.ch.Consume(r.cfg.PayloadQueue, tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", r.cfg.PayloadQueue, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range deliveries {
				if handler(msg.Body) {
					if err := msg.Ack(false); err != nil {
						logger.Error().Err(err).Msg("ack failed")
					}
				} else {
					if err := msg.Nack(false, false); err != nil {
						logger.Error().Err(err).Msg("nack failed")
					}
				}
			}
		}()
	}

	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()

	select {
	case <-ctx.Done():
		// Cancel stops new deliveries; in-flight handlers finish and
		// ack before the delivery channel closes.
		_ = r.ch.Cancel(tag, false)
		<-drained
		return ctx.Err()
	case <-drained:
		return fmt.Errorf("delivery channel closed for %s", r.cfg.PayloadQueue)
	}
}

// processedEvent is the message published after a resume is processed.
type processedEvent struct {
	SourceURL   string                 `json:"source_url"`
	ProcessedAt time.Time              `json:"processed_at"`
	Record      *types.ProcessedResume `json:"record"`
}

// PublishProcessed emits the processed record on the events exchange.
func (r *RabbitMQ) PublishProcessed(ctx context.Context, sourceURL string, record *types.ProcessedResume) error {
	body, err := json.Marshal(processedEvent{
		SourceURL:   sourceURL,
		ProcessedAt: time.Now().UTC(),
		Record:      record,
	})
	if err != nil {
		return fmt.Errorf("marshal processed event: %w", err)
	}

	return r.ch.PublishWithContext(ctx,
		r.cfg.ProcessedExchange,
		r.cfg.ProcessedRoutingKey,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}
