package events

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes stock events to a topic, keyed by product id so a
// product's events stay on one partition. Sends run in the background;
// Close waits for them.
type KafkaPublisher struct {
	w       MessageWriter
	log     *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	return NewKafkaPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  5,
		WriteTimeout: 5 * time.Second,
		ReadTimeout:  5 * time.Second,
		BatchTimeout: 50 * time.Millisecond,
	}, log)
}

func NewKafkaPublisherWithWriter(w MessageWriter, log *zap.Logger) *KafkaPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaPublisher{w: w, log: log, timeout: 10 * time.Second}
}

func (p *KafkaPublisher) Publish(_ context.Context, event StockEvent) {
	b, err := json.Marshal(event)
	if err != nil {
		p.log.Error("marshal stock event", zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.ProductID), 10)),
		Value: b,
		Time:  event.At,
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		// Detached from the request, which has usually finished by now.
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		if err := p.w.WriteMessages(ctx, msg); err != nil {
			p.log.Warn("publish stock event",
				zap.String("action", event.Action),
				zap.Uint("product_id", event.ProductID),
				zap.Error(err))
			return
		}
		p.log.Debug("published stock event", zap.String("action", event.Action), zap.String("id", event.ID))
	}()
}

// Close waits for in-flight sends and releases the writer.
func (p *KafkaPublisher) Close() error {
	p.wg.Wait()
	return p.w.Close()
}
