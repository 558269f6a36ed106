package events

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/ntentasd/aggregator-api/pkg/types"
)

const resultsTopic = "processing-results"

var _ Publisher = (*KafkaPublisher)(nil)

// KafkaPublisher writes terminal records to the processing-results
// topic, keyed by file_id so events for one file stay in partition
// order.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(brokers []string) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_8_0_0
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return &KafkaPublisher{
		producer: producer,
		topic:    resultsTopic,
	}, nil
}

func (p *KafkaPublisher) PublishResult(record *types.ProcessingResult) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(record.FileID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish result: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
