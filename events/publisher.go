package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/IBM/sarama"

	"videodub/types"
)

// StageEvent is published after every completed stage transition so
// downstream consumers can follow pipeline progress.
type StageEvent struct {
	SessionID  string             `json:"session_id"`
	State      types.SessionState `json:"state"`
	OccurredAt time.Time          `json:"occurred_at"`
	Detail     map[string]string  `json:"detail,omitempty"`
}

// Publisher emits stage events to Kafka. A nil Publisher is valid and
// publishes nothing.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher connects a sync producer to the given brokers.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, err
	}

	return &Publisher{producer: producer, topic: topic}, nil
}

// StageCompleted publishes one stage event. Failures are logged, not
// returned: event delivery never blocks the pipeline.
func (p *Publisher) StageCompleted(sessionID string, state types.SessionState, detail map[string]string) {
	if p == nil {
		return
	}

	event := StageEvent{
		SessionID:  sessionID,
		State:      state,
		OccurredAt: time.Now().UTC(),
		Detail:     detail,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to encode stage event: %v", err)
		return
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(sessionID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		log.Printf("failed to publish stage event for %s: %v", sessionID, err)
	}
}

// Close shuts down the underlying producer.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}
