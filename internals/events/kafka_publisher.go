package events

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
	"github.com/bytedance/sonic"
)

type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Timeout = 5 * time.Second
	return config
}

// NewKafkaPublisher dials the brokers, retrying a few times while Kafka starts.
func NewKafkaPublisher(brokers []string, topic string, attempts int) (*KafkaPublisher, error) {
	if attempts < 1 {
		attempts = 1
	}
	config := NewKafkaConfig()

	var err error
	for i := 1; i <= attempts; i++ {
		var producer sarama.SyncProducer
		producer, err = sarama.NewSyncProducer(brokers, config)
		if err == nil {
			log.Printf("[INFO] Kafka producer ready (topic=%s)", topic)
			return &KafkaPublisher{producer: producer, topic: topic}, nil
		}
		log.Printf("[WARN] Waiting for Kafka... (%d/%d) err=%v", i, attempts, err)
		if i < attempts {
			time.Sleep(2 * time.Second)
		}
	}
	return nil, fmt.Errorf("kafka producer: %w", err)
}

// NewKafkaPublisherWithProducer wraps an existing producer (used by tests with sarama/mocks).
func NewKafkaPublisherWithProducer(p sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev PaymentEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := sonic.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(ev.Key()),
		Value:     sarama.ByteEncoder(data),
		Timestamp: ev.At,
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(ev.Type)},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send %s: %w", ev.Type, err)
	}
	log.Printf("[INFO] published %s payment=%d partition=%d offset=%d", ev.Type, ev.PaymentID, partition, offset)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
