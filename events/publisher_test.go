package events

import (
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"videodub/types"
)

func TestStageCompletedPublishesEvent(t *testing.T) {
	config := mocks.NewTestConfig()
	config.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, config)
	defer producer.Close()

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "session-1" {
			t.Fatalf("expected session id key, got %q", key)
		}

		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var event StageEvent
		if err := json.Unmarshal(value, &event); err != nil {
			t.Fatalf("event is not JSON: %v", err)
		}
		if event.SessionID != "session-1" || event.State != types.StateTranscribed {
			t.Fatalf("unexpected event: %+v", event)
		}
		if event.Detail["language"] != "en" {
			t.Fatalf("expected detail preserved, got %v", event.Detail)
		}
		if event.OccurredAt.IsZero() {
			t.Fatal("expected timestamp set")
		}
		return nil
	})

	p := &Publisher{producer: producer, topic: "videodub.stages"}
	p.StageCompleted("session-1", types.StateTranscribed, map[string]string{"language": "en"})
}

func TestStageCompletedNilPublisher(t *testing.T) {
	var p *Publisher
	// Must not panic; a nil publisher is how event publishing is disabled.
	p.StageCompleted("session-1", types.StateSynthesized, nil)
	if err := p.Close(); err != nil {
		t.Fatalf("nil close failed: %v", err)
	}
}

func TestStageCompletedSwallowsSendFailure(t *testing.T) {
	config := mocks.NewTestConfig()
	config.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, config)
	defer producer.Close()

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := &Publisher{producer: producer, topic: "videodub.stages"}
	// Delivery failure is logged, never surfaced to the pipeline.
	p.StageCompleted("session-2", types.StateTranslated, nil)
}
