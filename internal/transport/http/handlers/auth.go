package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/okunev/learnhub/internal/core/domain"
	"github.com/okunev/learnhub/internal/usecase"
)

// AuthHandler exposes the registration, verification and login endpoints.
type AuthHandler struct {
	accounts *usecase.AccountService
}

// NewAuthHandler builds an AuthHandler instance.
func NewAuthHandler(accounts *usecase.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// resolveContact picks the contact channel from the request payload. An
// explicit authMethod wins; otherwise the populated field decides.
func resolveContact(authMethod, email, phone string) (domain.AuthMethod, string, error) {
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)

	switch domain.AuthMethod(authMethod) {
	case domain.AuthMethodEmail:
		if email == "" {
			return "", "", fmt.Errorf("email is required")
		}
		return domain.AuthMethodEmail, email, nil
	case domain.AuthMethodPhone:
		if phone == "" {
			return "", "", fmt.Errorf("phone is required")
		}
		return domain.AuthMethodPhone, phone, nil
	}

	switch {
	case email != "":
		return domain.AuthMethodEmail, email, nil
	case phone != "":
		return domain.AuthMethodPhone, phone, nil
	default:
		return "", "", fmt.Errorf("email or phone is required")
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	method, contact, err := resolveContact(req.AuthMethod, req.Email, req.Phone)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	account, err := h.accounts.Register(c.Request.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Method:   method,
		Contact:  contact,
		Password: req.Password,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountExists, Status: http.StatusBadRequest, Message: "User already exists"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "Password does not meet the minimum requirements"},
		}, http.StatusInternalServerError, "Registration failed")
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		Message: "User registered successfully. Please verify your account with the OTP sent.",
		UserID:  account.ID,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	method, contact, err := resolveContact(req.AuthMethod, req.Email, req.Phone)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	token, account, err := h.accounts.Login(c.Request.Context(), method, contact, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusBadRequest, Message: "Invalid credentials"},
			{Err: usecase.ErrAccountUnverified, Status: http.StatusBadRequest, Message: "Please verify your account first"},
		}, http.StatusInternalServerError, "Login failed")
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		Message: "Login successful",
		Token:   token,
		User:    NewAccountView(account),
	})
}

// VerifyOTP handles POST /api/auth/verify-otp.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	method, contact, err := resolveContact("", req.Email, req.Phone)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	token, account, err := h.accounts.VerifyOTP(c.Request.Context(), method, contact, req.OTP)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusBadRequest, Message: "User not found"},
			{Err: usecase.ErrOTPInvalid, Status: http.StatusBadRequest, Message: "Invalid or expired OTP"},
			{Err: usecase.ErrOTPExpired, Status: http.StatusBadRequest, Message: "Invalid or expired OTP"},
		}, http.StatusInternalServerError, "Verification failed")
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		Message: "Account verified successfully",
		Token:   token,
		User:    NewAccountView(account),
	})
}

// ResendOTP handles POST /api/auth/resend-otp.
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	method, contact, err := resolveContact("", req.Email, req.Phone)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	if err := h.accounts.ResendOTP(c.Request.Context(), method, contact); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusBadRequest, Message: "User not found"},
			{Err: usecase.ErrAccountVerified, Status: http.StatusBadRequest, Message: "User already verified"},
		}, http.StatusInternalServerError, "Failed to resend OTP")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "OTP sent successfully"})
}
