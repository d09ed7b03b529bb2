package port

import (
	"context"
	"time"

	"github.com/okunev/learnhub/internal/core/domain"
)

// ProgressRepository persists enrollments and lesson completion state.
type ProgressRepository interface {
	// AddEnrollment inserts the (account, course) pair if absent and reports
	// whether a row was actually added. The insert is a single conditional
	// statement, so concurrent calls cannot produce duplicates.
	AddEnrollment(ctx context.Context, accountID, courseID string, at time.Time) (added bool, err error)
	IsEnrolled(ctx context.Context, accountID, courseID string) (bool, error)
	ListEnrollments(ctx context.Context, accountID string) ([]domain.Enrollment, error)
	// RecordCompletion upserts the progress row, always refreshing
	// lastAccessed, and adds the lesson index if not already present.
	// It reports whether the index was newly added.
	RecordCompletion(ctx context.Context, accountID, courseID string, lessonIndex int, at time.Time) (added bool, err error)
	GetProgress(ctx context.Context, accountID, courseID string) (*domain.CourseProgress, error)
	ListProgress(ctx context.Context, accountID string) ([]domain.CourseProgress, error)
}
