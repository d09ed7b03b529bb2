package port

import (
	"context"

	"github.com/okunev/learnhub/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error
	PublishOTPIssued(ctx context.Context, event domain.OTPIssuedEvent) error
	PublishAccountVerified(ctx context.Context, event domain.AccountVerifiedEvent) error
	PublishCourseEnrolled(ctx context.Context, event domain.CourseEnrolledEvent) error
	PublishLessonCompleted(ctx context.Context, event domain.LessonCompletedEvent) error
}
