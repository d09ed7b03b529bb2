package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/okunev/learnhub/internal/core/domain"
	"github.com/okunev/learnhub/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T) (*EventPublisher, *fakeAsyncProducer) {
	t.Helper()

	asyncProducer := newFakeAsyncProducer()
	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "learnhub",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	publisher := NewEventPublisher(producer, config.AppSettings{
		Name: "learnhub-api",
		Env:  "test",
	}, zaptest.NewLogger(t))

	return publisher, asyncProducer
}

func TestPublishOTPIssued(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	issuedAt := time.Date(2025, 11, 2, 9, 30, 0, 0, time.UTC)
	event := domain.OTPIssuedEvent{
		EventID:   "event-123",
		AccountID: "account-456",
		Delivery:  "email",
		Contact:   "alice@example.com",
		Code:      "654321",
		ExpiresAt: issuedAt.Add(10 * time.Minute),
		IssuedAt:  issuedAt,
	}

	if err := publisher.PublishOTPIssued(context.Background(), event); err != nil {
		t.Fatalf("PublishOTPIssued returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "learnhub.account.otp_issued" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_type"]; got != "account.otp_issued" {
			t.Fatalf("unexpected event_type: %v", got)
		}
		if got := envelope["account_id"]; got != event.AccountID {
			t.Fatalf("unexpected account_id: %v", got)
		}
		if got := envelope["event_id"]; got != event.EventID {
			t.Fatalf("unexpected event_id: %v", got)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not a map: %T", envelope["payload"])
		}
		if got := payload["code"]; got != event.Code {
			t.Fatalf("unexpected code: %v", got)
		}
		if got := payload["contact"]; got != event.Contact {
			t.Fatalf("unexpected contact: %v", got)
		}
		if got := payload["delivery"]; got != "email" {
			t.Fatalf("unexpected delivery: %v", got)
		}

		metadata, ok := envelope["metadata"].(map[string]any)
		if !ok {
			t.Fatalf("metadata not a map: %T", envelope["metadata"])
		}
		if got := metadata["service"]; got != "learnhub-api" {
			t.Fatalf("unexpected service: %v", got)
		}
	default:
		t.Fatal("expected a message on the producer input channel")
	}
}

func TestPublishCourseEnrolled(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	enrolledAt := time.Date(2025, 11, 2, 10, 0, 0, 0, time.UTC)
	event := domain.CourseEnrolledEvent{
		EventID:    "event-789",
		AccountID:  "account-456",
		CourseID:   "course-1",
		EnrolledAt: enrolledAt,
	}

	if err := publisher.PublishCourseEnrolled(context.Background(), event); err != nil {
		t.Fatalf("PublishCourseEnrolled returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "learnhub.course.enrolled" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not a map: %T", envelope["payload"])
		}
		if got := payload["course_id"]; got != event.CourseID {
			t.Fatalf("unexpected course_id: %v", got)
		}
		if got, want := payload["enrolled_at"], enrolledAt.Format(time.RFC3339Nano); got != want {
			t.Fatalf("unexpected enrolled_at: %v, want %v", got, want)
		}
	default:
		t.Fatal("expected a message on the producer input channel")
	}
}

func TestPublishGeneratesEventIDWhenMissing(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	event := domain.AccountVerifiedEvent{
		AccountID:  "account-456",
		VerifiedAt: time.Date(2025, 11, 2, 11, 0, 0, 0, time.UTC),
	}

	if err := publisher.PublishAccountVerified(context.Background(), event); err != nil {
		t.Fatalf("PublishAccountVerified returned error: %v", err)
	}

	msg := <-asyncProducer.input
	bytes, err := msg.Value.Encode()
	if err != nil {
		t.Fatalf("Value.Encode returned error: %v", err)
	}

	var envelope map[string]any
	if err := json.Unmarshal(bytes, &envelope); err != nil {
		t.Fatalf("failed to unmarshal envelope: %v", err)
	}

	eventID, ok := envelope["event_id"].(string)
	if !ok || eventID == "" {
		t.Fatalf("expected generated event_id, got %v", envelope["event_id"])
	}
}
