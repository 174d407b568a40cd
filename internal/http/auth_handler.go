package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tutor-hub/internal/domain"
	"tutor-hub/internal/service"
)

// AuthHandler mantiene dependencias para los endpoints de autenticacion.
type AuthHandler struct {
	logger   *zap.Logger
	authSvc  *service.AuthService
	tokenSvc *service.TokenService
	cookies  *CookieManager
}

func NewAuthHandler(logger *zap.Logger, authSvc *service.AuthService, tokenSvc *service.TokenService, cookies *CookieManager) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		authSvc:  authSvc,
		tokenSvc: tokenSvc,
		cookies:  cookies,
	}
}

type registerRequest struct {
	FirstName       string `json:"firstName" binding:"required,min=2,max=50"`
	LastName        string `json:"lastName" binding:"required,min=2,max=50"`
	Email           string `json:"email" binding:"required,email"`
	PhoneNumber     string `json:"phoneNumber" binding:"required"`
	Password        string `json:"password" binding:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,min=8,max=128"`
}

// RegisterStudent maneja POST /auth/register/student.
func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	var req struct {
		registerRequest
		Age *int `json:"age" binding:"required,min=5,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid student register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	user, err := h.authSvc.RegisterStudent(c.Request.Context(), service.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Age:             req.Age,
	})
	if err != nil {
		h.respondAuthError(c, err, "register student failed")
		return
	}

	if !h.issueSession(c, user) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"message": "Student registered successfully",
	})
}

// RegisterTutor maneja POST /auth/register/tutor.
func (h *AuthHandler) RegisterTutor(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid tutor register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	user, err := h.authSvc.RegisterTutor(c.Request.Context(), service.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.respondAuthError(c, err, "register tutor failed")
		return
	}

	if !h.issueSession(c, user) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"message": "Tutor registered successfully",
	})
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	user, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not login"})
		return
	}

	if !h.issueSession(c, user) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"message": "Login successful",
	})
}

// Logout maneja POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookies.ClearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// Refresh maneja POST /auth/refresh: rota el par a partir de la cookie de
// refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := h.cookies.ReadRefreshToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	claims, err := h.tokenSvc.ParseRefreshToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	user, err := h.authSvc.GetUser(c.Request.Context(), claims.Subject)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	if !h.issueSession(c, user) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Token refreshed"})
}

// Me maneja GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	user, err := h.authSvc.GetUser(c.Request.Context(), claims.Subject)
	if err != nil {
		h.respondAuthError(c, err, "get profile failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile maneja PUT /auth/profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	var req struct {
		FirstName   *string `json:"firstName"`
		LastName    *string `json:"lastName"`
		Email       *string `json:"email" binding:"omitempty,email"`
		PhoneNumber *string `json:"phoneNumber"`
		Age         *int    `json:"age" binding:"omitempty,min=1,max=120"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid profile update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	user, err := h.authSvc.UpdateProfile(c.Request.Context(), claims.Subject, service.UpdateProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Age:         req.Age,
	})
	if err != nil {
		h.respondAuthError(c, err, "update profile failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"message": "Profile updated successfully",
	})
}

// ForgotPassword maneja POST /auth/forgot-password. La respuesta es la misma
// exista o no la cuenta.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid forgot password request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	if err := h.authSvc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrEmailSendFailure) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Email delivery unavailable"})
			return
		}
		h.logger.Error("forgot password failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not process request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If an account exists for that email, a reset code has been sent"})
}

// VerifyOTP maneja POST /auth/verify-otp. No consume el codigo.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid otp verify request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "OTP must be 6 digits"})
		return
	}

	if err := h.authSvc.VerifyResetOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		if errors.Is(err, service.ErrOTPInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired OTP"})
			return
		}
		h.logger.Error("verify otp failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not verify OTP"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP verified successfully"})
}

// ResetPassword maneja POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email           string `json:"email" binding:"required,email"`
		OTP             string `json:"otp" binding:"required,len=6"`
		Password        string `json:"password" binding:"required,min=8,max=128"`
		ConfirmPassword string `json:"confirmPassword" binding:"required,min=8,max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid reset password request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	if err := h.authSvc.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.Password, req.ConfirmPassword); err != nil {
		h.respondAuthError(c, err, "reset password failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

// ChangePassword maneja POST /auth/change-password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=8,max=128"`
		ConfirmPassword string `json:"confirmPassword" binding:"required,min=8,max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid change password request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), claims.Subject, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		h.respondAuthError(c, err, "change password failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

func (h *AuthHandler) issueSession(c *gin.Context, user domain.User) bool {
	return issueSession(c, h.logger, h.tokenSvc, h.cookies, user)
}

// issueSession genera el par de tokens y lo deja en cookies. Devuelve false
// si ya respondio con error.
func issueSession(c *gin.Context, logger *zap.Logger, tokenSvc *service.TokenService, cookies *CookieManager, user domain.User) bool {
	pair, err := tokenSvc.GeneratePair(user)
	if err != nil {
		logger.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not issue tokens"})
		return false
	}
	cookies.SetAuthCookies(c, pair)
	return true
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrPasswordMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Passwords do not match"})
	case errors.Is(err, service.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Password must contain at least 1 uppercase letter, 1 lowercase letter, 1 number and 1 special character"})
	case errors.Is(err, service.ErrEmailExists):
		c.JSON(http.StatusConflict, gin.H{"message": "Email already exists"})
	case errors.Is(err, service.ErrPhoneExists):
		c.JSON(http.StatusConflict, gin.H{"message": "Phone number already exists"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
	case errors.Is(err, service.ErrWrongPassword):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Current password is incorrect"})
	case errors.Is(err, service.ErrOTPInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired OTP"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
