package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/okunev/learnhub/internal/core/domain"
	"github.com/okunev/learnhub/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without brokers.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(log *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: log}
}

func (p *StubPublisher) logEvent(eventType, accountID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("account_id", accountID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishAccountRegistered logs account.registered events.
func (p *StubPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	payload := map[string]any{
		"name":          event.Name,
		"registered_at": event.RegisteredAt,
	}
	if event.Email != nil {
		payload["email"] = logger.MaskEmail(*event.Email)
	}
	if event.Phone != nil {
		payload["phone"] = logger.MaskPhone(*event.Phone)
	}
	p.logEvent("account.registered", event.AccountID, event.RegisteredAt, payload)
	return nil
}

// PublishOTPIssued logs account.otp_issued events. The code itself is logged
// so local development can complete the verification flow without a relay.
func (p *StubPublisher) PublishOTPIssued(_ context.Context, event domain.OTPIssuedEvent) error {
	payload := map[string]any{
		"delivery":   event.Delivery,
		"contact":    maskContact(event.Delivery, event.Contact),
		"code":       event.Code,
		"expires_at": event.ExpiresAt,
	}
	p.logEvent("account.otp_issued", event.AccountID, event.IssuedAt, payload)
	return nil
}

// PublishAccountVerified logs account.verified events.
func (p *StubPublisher) PublishAccountVerified(_ context.Context, event domain.AccountVerifiedEvent) error {
	payload := map[string]any{
		"verified_at": event.VerifiedAt,
	}
	p.logEvent("account.verified", event.AccountID, event.VerifiedAt, payload)
	return nil
}

// PublishCourseEnrolled logs course.enrolled events.
func (p *StubPublisher) PublishCourseEnrolled(_ context.Context, event domain.CourseEnrolledEvent) error {
	payload := map[string]any{
		"course_id":   event.CourseID,
		"enrolled_at": event.EnrolledAt,
	}
	p.logEvent("course.enrolled", event.AccountID, event.EnrolledAt, payload)
	return nil
}

// PublishLessonCompleted logs lesson.completed events.
func (p *StubPublisher) PublishLessonCompleted(_ context.Context, event domain.LessonCompletedEvent) error {
	payload := map[string]any{
		"course_id":    event.CourseID,
		"lesson_index": event.LessonIndex,
		"completed_at": event.CompletedAt,
	}
	p.logEvent("lesson.completed", event.AccountID, event.CompletedAt, payload)
	return nil
}

func maskContact(delivery, contact string) string {
	if delivery == "sms" {
		return logger.MaskPhone(contact)
	}
	return logger.MaskEmail(contact)
}
