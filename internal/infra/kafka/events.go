package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/okunev/learnhub/internal/core/domain"
	"github.com/okunev/learnhub/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	AccountID string           `json:"account_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, accountID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		AccountID: accountID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAccountRegistered publishes account.registered events.
func (p *EventPublisher) PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error {
	payload := struct {
		AccountID    string    `json:"account_id"`
		Name         string    `json:"name"`
		Email        *string   `json:"email,omitempty"`
		Phone        *string   `json:"phone,omitempty"`
		RegisteredAt time.Time `json:"registered_at"`
	}{
		AccountID:    event.AccountID,
		Name:         event.Name,
		Email:        event.Email,
		Phone:        event.Phone,
		RegisteredAt: event.RegisteredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "account.registered", event.AccountID, event.RegisteredAt, payload)
}

// PublishOTPIssued publishes account.otp_issued events. A downstream relay
// consumes these and delivers the code over the requested channel.
func (p *EventPublisher) PublishOTPIssued(ctx context.Context, event domain.OTPIssuedEvent) error {
	payload := struct {
		AccountID string    `json:"account_id"`
		Delivery  string    `json:"delivery"`
		Contact   string    `json:"contact"`
		Code      string    `json:"code"`
		ExpiresAt time.Time `json:"expires_at"`
		IssuedAt  time.Time `json:"issued_at"`
	}{
		AccountID: event.AccountID,
		Delivery:  event.Delivery,
		Contact:   event.Contact,
		Code:      event.Code,
		ExpiresAt: event.ExpiresAt.UTC(),
		IssuedAt:  event.IssuedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "account.otp_issued", event.AccountID, event.IssuedAt, payload)
}

// PublishAccountVerified publishes account.verified events.
func (p *EventPublisher) PublishAccountVerified(ctx context.Context, event domain.AccountVerifiedEvent) error {
	payload := struct {
		AccountID  string    `json:"account_id"`
		VerifiedAt time.Time `json:"verified_at"`
	}{
		AccountID:  event.AccountID,
		VerifiedAt: event.VerifiedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "account.verified", event.AccountID, event.VerifiedAt, payload)
}

// PublishCourseEnrolled publishes course.enrolled events.
func (p *EventPublisher) PublishCourseEnrolled(ctx context.Context, event domain.CourseEnrolledEvent) error {
	payload := struct {
		AccountID  string    `json:"account_id"`
		CourseID   string    `json:"course_id"`
		EnrolledAt time.Time `json:"enrolled_at"`
	}{
		AccountID:  event.AccountID,
		CourseID:   event.CourseID,
		EnrolledAt: event.EnrolledAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "course.enrolled", event.AccountID, event.EnrolledAt, payload)
}

// PublishLessonCompleted publishes lesson.completed events.
func (p *EventPublisher) PublishLessonCompleted(ctx context.Context, event domain.LessonCompletedEvent) error {
	payload := struct {
		AccountID   string    `json:"account_id"`
		CourseID    string    `json:"course_id"`
		LessonIndex int       `json:"lesson_index"`
		CompletedAt time.Time `json:"completed_at"`
	}{
		AccountID:   event.AccountID,
		CourseID:    event.CourseID,
		LessonIndex: event.LessonIndex,
		CompletedAt: event.CompletedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "lesson.completed", event.AccountID, event.CompletedAt, payload)
}
