package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/task-tracker/backend/internal/model"
	"github.com/task-tracker/backend/internal/service"
	"github.com/task-tracker/backend/internal/template"
)

type AuthHandler struct {
	svc         *service.AuthService
	users       *service.UserService
	redirectURL string
}

func NewAuthHandler(svc *service.AuthService, users *service.UserService, redirectURL string) *AuthHandler {
	return &AuthHandler{svc: svc, users: users, redirectURL: redirectURL}
}

// Login godoc
// @Summary Login
// @Description Checks credentials and opens a new refresh-token family.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Email and password"
// @Success 200 {object} model.TokenPair
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Refresh godoc
// @Summary Rotate a refresh token
// @Description Returns a new token pair in the same family; the presented token becomes unusable.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RefreshRequest true "Refresh token"
// @Success 200 {object} model.TokenPair
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Logout godoc
// @Summary Logout
// @Description Revokes the token family. Succeeds for unknown or already revoked tokens.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LogoutRequest true "Refresh token"
// @Success 200 {object} model.MessageResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req model.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.svc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MessageResponse{Message: "logged out"})
}

// VerifyEmail godoc
// @Summary Verify an email address
// @Description Follows the link from the verification email; responds with an HTML result page.
// @Tags auth
// @Produce html
// @Param token query string true "Verification token"
// @Success 200 {string} string "verification page"
// @Failure 400 {string} string "verification page"
// @Router /auth/verify-email [get]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8",
			[]byte(template.VerificationPage(false, "Invalid verification link. Please check your email and try again.", "")))
		return
	}

	if err := h.svc.VerifyEmail(c.Request.Context(), token); err != nil {
		message := "Verification failed. The link may be expired or invalid."
		switch err {
		case service.ErrInvalidToken:
			// keep the generic message
		case service.ErrConflict:
			message = "This email is already verified. You can log in."
		default:
			log.Printf("[Auth] Email verification failed: %v", err)
		}
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8",
			[]byte(template.VerificationPage(false, message, "")))
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8",
		[]byte(template.VerificationPage(true, "Your email has been verified successfully! You can now log in.", h.redirectURL)))
}

// ResendVerification godoc
// @Summary Resend the verification email
// @Description Always responds with the same message, whether or not the email has a pending registration.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.ResendVerificationRequest true "Email"
// @Success 200 {object} model.MessageResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req model.ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.svc.ResendVerificationEmail(c.Request.Context(), req.Email); err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MessageResponse{
		Message: "If your email is registered and unverified, a verification email has been sent",
	})
}

// VerificationStatus godoc
// @Summary Check whether an email is verified
// @Tags auth
// @Produce json
// @Param email query string true "Email"
// @Success 200 {object} model.VerificationStatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /auth/status [get]
func (h *AuthHandler) VerificationStatus(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	verified, err := h.users.IsVerified(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, model.VerificationStatusResponse{Verified: verified})
}

func writeAuthError(c *gin.Context, err error) {
	switch err {
	case service.ErrInvalidInput:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
	case service.ErrInvalidCredentials:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
	case service.ErrInvalidToken, service.ErrTokenExpired, service.ErrUserNotFound:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
	case service.ErrTokenReused:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token reuse detected, all sessions revoked"})
	case service.ErrConflict:
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case service.ErrAlreadyVerified:
		c.JSON(http.StatusConflict, gin.H{"error": "email already verified"})
	default:
		log.Printf("[Auth] Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
