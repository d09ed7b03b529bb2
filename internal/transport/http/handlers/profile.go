package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okunev/learnhub/internal/transport/http/middleware"
	"github.com/okunev/learnhub/internal/usecase"
)

// ProfileHandler serves the authenticated account projection.
type ProfileHandler struct {
	accounts    *usecase.AccountService
	enrollments *usecase.EnrollmentService
}

// NewProfileHandler builds a ProfileHandler instance.
func NewProfileHandler(accounts *usecase.AccountService, enrollments *usecase.EnrollmentService) *ProfileHandler {
	return &ProfileHandler{accounts: accounts, enrollments: enrollments}
}

// Profile handles GET /api/user/profile.
func (h *ProfileHandler) Profile(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	account, err := h.accounts.Profile(c.Request.Context(), accountID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "User not found"},
		}, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	enrollments, err := h.enrollments.ListEnrollments(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Failed to load profile"))
		return
	}

	progress, err := h.enrollments.ListProgress(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Failed to load profile"))
		return
	}

	enrollmentViews := make([]EnrollmentView, 0, len(enrollments))
	for _, e := range enrollments {
		enrollmentViews = append(enrollmentViews, EnrollmentView{
			CourseID:   e.CourseID,
			EnrolledAt: e.EnrolledAt,
		})
	}

	progressViews := make([]ProgressView, 0, len(progress))
	for _, p := range progress {
		progressViews = append(progressViews, NewProgressView(p))
	}

	c.JSON(http.StatusOK, ProfileResponse{
		User:            NewAccountView(*account),
		EnrolledCourses: enrollmentViews,
		Progress:        progressViews,
	})
}
