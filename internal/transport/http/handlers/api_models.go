package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okunev/learnhub/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse describes the liveness payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse describes the readiness payload with per-dependency state.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// AccountView is the public account projection. Credential and OTP fields
// are never part of it.
type AccountView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      *string   `json:"email,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewAccountView projects a domain account into its public view.
func NewAccountView(account domain.Account) AccountView {
	return AccountView{
		ID:         account.ID,
		Name:       account.Name,
		Email:      account.Email,
		Phone:      account.Phone,
		IsVerified: account.IsVerified,
		CreatedAt:  account.CreatedAt,
	}
}

// RegisterRequest defines the payload for the registration endpoint.
type RegisterRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password" binding:"required"`
	AuthMethod string `json:"authMethod"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password" binding:"required"`
	AuthMethod string `json:"authMethod"`
}

// SessionResponse is returned by login and OTP verification; both mint a
// session token under the same contract.
type SessionResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    AccountView `json:"user"`
}

// VerifyOTPRequest defines the payload for the OTP verification endpoint.
// The contact channel is inferred from whichever field is present.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	OTP   string `json:"otp" binding:"required"`
}

// ResendOTPRequest defines the payload for the OTP resend endpoint.
type ResendOTPRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// LessonView describes one lesson inside a course payload.
type LessonView struct {
	Position    int      `json:"position"`
	Title       string   `json:"title"`
	Duration    string   `json:"duration,omitempty"`
	VideoID     string   `json:"videoId,omitempty"`
	Description string   `json:"description,omitempty"`
	Resources   []string `json:"resources,omitempty"`
}

// CourseView describes a course returned by the catalog endpoints.
type CourseView struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Instructor    string       `json:"instructor"`
	Category      string       `json:"category"`
	Difficulty    string       `json:"difficulty"`
	Duration      string       `json:"duration,omitempty"`
	Thumbnail     string       `json:"thumbnail,omitempty"`
	Price         float64      `json:"price"`
	Rating        float64      `json:"rating"`
	StudentsCount int          `json:"studentsCount"`
	Tags          []string     `json:"tags,omitempty"`
	Lessons       []LessonView `json:"lessons"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// NewCourseView projects a domain course into its API view.
func NewCourseView(course domain.Course) CourseView {
	lessons := make([]LessonView, 0, len(course.Lessons))
	for _, lesson := range course.Lessons {
		lessons = append(lessons, LessonView{
			Position:    lesson.Position,
			Title:       lesson.Title,
			Duration:    lesson.Duration,
			VideoID:     lesson.VideoID,
			Description: lesson.Description,
			Resources:   lesson.Resources,
		})
	}

	return CourseView{
		ID:            course.ID,
		Title:         course.Title,
		Description:   course.Description,
		Instructor:    course.Instructor,
		Category:      course.Category,
		Difficulty:    string(course.Difficulty),
		Duration:      course.Duration,
		Thumbnail:     course.Thumbnail,
		Price:         course.Price,
		Rating:        course.Rating,
		StudentsCount: course.StudentsCount,
		Tags:          course.Tags,
		Lessons:       lessons,
		CreatedAt:     course.CreatedAt,
	}
}

// EnrollmentView describes one enrollment in the profile payload.
type EnrollmentView struct {
	CourseID   string    `json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

// ProgressView describes per-course completion state.
type ProgressView struct {
	CourseID         string    `json:"courseId"`
	CompletedLessons []int     `json:"completedLessons"`
	LastAccessed     time.Time `json:"lastAccessed"`
}

// NewProgressView projects domain progress into its API view.
func NewProgressView(progress domain.CourseProgress) ProgressView {
	completed := progress.CompletedLessons
	if completed == nil {
		completed = []int{}
	}
	return ProgressView{
		CourseID:         progress.CourseID,
		CompletedLessons: completed,
		LastAccessed:     progress.LastAccessed,
	}
}

// ProfileResponse is returned by the profile endpoint.
type ProfileResponse struct {
	User            AccountView      `json:"user"`
	EnrolledCourses []EnrollmentView `json:"enrolledCourses"`
	Progress        []ProgressView   `json:"progress"`
}

// CompleteLessonResponse is returned after a lesson completion call.
type CompleteLessonResponse struct {
	Message  string       `json:"message"`
	Progress ProgressView `json:"progress"`
}
