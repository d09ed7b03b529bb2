package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/okunev/learnhub/internal/transport/http/middleware"
	"github.com/okunev/learnhub/internal/usecase"
)

// CourseHandler serves the catalog and enrollment endpoints.
type CourseHandler struct {
	catalog     *usecase.CatalogService
	enrollments *usecase.EnrollmentService
}

// NewCourseHandler builds a CourseHandler instance.
func NewCourseHandler(catalog *usecase.CatalogService, enrollments *usecase.EnrollmentService) *CourseHandler {
	return &CourseHandler{catalog: catalog, enrollments: enrollments}
}

// List handles GET /api/courses.
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.catalog.ListCourses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Failed to list courses"))
		return
	}

	views := make([]CourseView, 0, len(courses))
	for _, course := range courses {
		views = append(views, NewCourseView(course))
	}

	c.JSON(http.StatusOK, views)
}

// Get handles GET /api/courses/:id.
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.catalog.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrCourseNotFound, Status: http.StatusNotFound, Message: "Course not found"},
		}, http.StatusInternalServerError, "Failed to load course")
		return
	}

	c.JSON(http.StatusOK, NewCourseView(*course))
}

// Enroll handles POST /api/courses/:id/enroll.
func (h *CourseHandler) Enroll(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if _, err := h.enrollments.Enroll(c.Request.Context(), accountID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrCourseNotFound, Status: http.StatusNotFound, Message: "Course not found"},
			{Err: usecase.ErrAlreadyEnrolled, Status: http.StatusBadRequest, Message: "Already enrolled in this course"},
		}, http.StatusInternalServerError, "Enrollment failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Enrolled successfully"})
}

// CompleteLesson handles POST /api/courses/:courseId/lessons/:lessonId/complete.
// The lesson identifier is its zero-based position in the course's lesson
// sequence.
func (h *CourseHandler) CompleteLesson(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	lessonIndex, err := strconv.Atoi(c.Param("lessonId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Invalid lesson for this course"))
		return
	}

	progress, err := h.enrollments.CompleteLesson(c.Request.Context(), accountID, c.Param("courseId"), lessonIndex)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrCourseNotFound, Status: http.StatusNotFound, Message: "Course not found"},
			{Err: usecase.ErrNotEnrolled, Status: http.StatusBadRequest, Message: "Not enrolled in this course"},
			{Err: usecase.ErrInvalidLesson, Status: http.StatusBadRequest, Message: "Invalid lesson for this course"},
		}, http.StatusInternalServerError, "Failed to record progress")
		return
	}

	c.JSON(http.StatusOK, CompleteLessonResponse{
		Message:  "Lesson marked as complete",
		Progress: NewProgressView(*progress),
	})
}
