package domain

import "time"

// AccountRegisteredEvent is emitted after a new account is persisted.
type AccountRegisteredEvent struct {
	EventID      string
	AccountID    string
	Name         string
	Email        *string
	Phone        *string
	RegisteredAt time.Time
}

// OTPIssuedEvent carries a freshly generated verification code for delivery.
// A downstream mail/SMS relay consumes these and performs the actual send.
type OTPIssuedEvent struct {
	EventID   string
	AccountID string
	Delivery  string
	Contact   string
	Code      string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// AccountVerifiedEvent is emitted when an account transitions to verified.
type AccountVerifiedEvent struct {
	EventID    string
	AccountID  string
	VerifiedAt time.Time
}

// CourseEnrolledEvent is emitted after a successful enrollment.
type CourseEnrolledEvent struct {
	EventID    string
	AccountID  string
	CourseID   string
	EnrolledAt time.Time
}

// LessonCompletedEvent is emitted when a lesson index is first marked complete.
type LessonCompletedEvent struct {
	EventID     string
	AccountID   string
	CourseID    string
	LessonIndex int
	CompletedAt time.Time
}
