package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/okunev/learnhub/internal/core/domain"
	"github.com/okunev/learnhub/internal/core/port"
	"github.com/okunev/learnhub/internal/repository"
)

var (
	// ErrAlreadyEnrolled indicates the account is already enrolled in the course.
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	// ErrNotEnrolled indicates the account has no enrollment for the course.
	ErrNotEnrolled = errors.New("not enrolled in this course")
	// ErrInvalidLesson indicates the lesson index is outside the course's lesson sequence.
	ErrInvalidLesson = errors.New("invalid lesson for this course")
)

// EnrollmentService coordinates enrollments and lesson completion tracking.
type EnrollmentService struct {
	courses  port.CourseRepository
	progress port.ProgressRepository
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewEnrollmentService constructs an EnrollmentService instance.
func NewEnrollmentService(
	courses port.CourseRepository,
	progress port.ProgressRepository,
	events port.EventPublisher,
	logger *zap.Logger,
) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		courses:  courses,
		progress: progress,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *EnrollmentService) WithClock(now func() time.Time) *EnrollmentService {
	if now != nil {
		s.now = now
	}
	return s
}

// Enroll adds the account to the course. The underlying insert is
// conditional, so two concurrent calls for the same pair produce exactly one
// enrollment and the loser observes ErrAlreadyEnrolled.
func (s *EnrollmentService) Enroll(ctx context.Context, accountID, courseID string) (domain.Enrollment, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Enrollment{}, ErrCourseNotFound
		}
		return domain.Enrollment{}, fmt.Errorf("get course: %w", err)
	}
	if !course.IsPublished {
		return domain.Enrollment{}, ErrCourseNotFound
	}

	now := s.now().UTC()
	added, err := s.progress.AddEnrollment(ctx, accountID, courseID, now)
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("add enrollment: %w", err)
	}
	if !added {
		return domain.Enrollment{}, ErrAlreadyEnrolled
	}

	// Counter update is separate from the enrollment insert; a failure here
	// leaves the counter stale, never the enrollment missing.
	if err := s.courses.IncrementStudents(ctx, courseID); err != nil {
		s.logger.Warn("increment students counter failed",
			zap.String("course_id", courseID),
			zap.Error(err),
		)
	}

	if s.events != nil {
		event := domain.CourseEnrolledEvent{
			EventID:    uuid.NewString(),
			AccountID:  accountID,
			CourseID:   courseID,
			EnrolledAt: now,
		}
		if err := s.events.PublishCourseEnrolled(ctx, event); err != nil {
			s.logger.Warn("publish course enrolled event failed",
				zap.String("account_id", accountID),
				zap.String("course_id", courseID),
				zap.Error(err),
			)
		}
	}

	return domain.Enrollment{AccountID: accountID, CourseID: courseID, EnrolledAt: now}, nil
}

// CompleteLesson marks a lesson as completed for an enrolled account. Repeat
// submissions are accepted and leave the completion set unchanged, but still
// refresh the last-accessed timestamp.
func (s *EnrollmentService) CompleteLesson(ctx context.Context, accountID, courseID string, lessonIndex int) (*domain.CourseProgress, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}

	enrolled, err := s.progress.IsEnrolled(ctx, accountID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	if lessonIndex < 0 || lessonIndex >= course.LessonCount() {
		return nil, ErrInvalidLesson
	}

	now := s.now().UTC()
	added, err := s.progress.RecordCompletion(ctx, accountID, courseID, lessonIndex, now)
	if err != nil {
		return nil, fmt.Errorf("record completion: %w", err)
	}

	if added && s.events != nil {
		event := domain.LessonCompletedEvent{
			EventID:     uuid.NewString(),
			AccountID:   accountID,
			CourseID:    courseID,
			LessonIndex: lessonIndex,
			CompletedAt: now,
		}
		if err := s.events.PublishLessonCompleted(ctx, event); err != nil {
			s.logger.Warn("publish lesson completed event failed",
				zap.String("account_id", accountID),
				zap.String("course_id", courseID),
				zap.Error(err),
			)
		}
	}

	progress, err := s.progress.GetProgress(ctx, accountID, courseID)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	return progress, nil
}

// ListEnrollments returns the account's enrollments, newest first.
func (s *EnrollmentService) ListEnrollments(ctx context.Context, accountID string) ([]domain.Enrollment, error) {
	enrollments, err := s.progress.ListEnrollments(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListProgress returns per-course completion state for the account.
func (s *EnrollmentService) ListProgress(ctx context.Context, accountID string) ([]domain.CourseProgress, error) {
	progress, err := s.progress.ListProgress(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return progress, nil
}
