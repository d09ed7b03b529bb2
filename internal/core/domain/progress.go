package domain

import "time"

// Enrollment records that an account joined a course. The (AccountID, CourseID)
// pair is unique in storage.
type Enrollment struct {
	AccountID  string
	CourseID   string
	EnrolledAt time.Time
}

// CourseProgress tracks per-account, per-course lesson completion state.
// CompletedLessons holds distinct lesson indices; insertion is idempotent.
type CourseProgress struct {
	AccountID        string
	CourseID         string
	CompletedLessons []int
	LastAccessed     time.Time
}
