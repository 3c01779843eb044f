package handler

import (
	"errors"
	"net/http"

	"auth_service/internal/middleware"
	"auth_service/internal/model"
	"auth_service/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests and owns the session
// cookie lifecycle.
type AuthHandler struct {
	auth         service.AuthService
	otps         service.OtpService
	cookieMaxAge int
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. cookieMaxAge is the session
// cookie lifetime in seconds; secureCookie should be true in production.
func NewAuthHandler(auth service.AuthService, otps service.OtpService, cookieMaxAge int, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		otps:         otps,
		cookieMaxAge: cookieMaxAge,
		secureCookie: secureCookie,
	}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(middleware.SessionCookie, token, h.cookieMaxAge, "/", "", h.secureCookie, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func currentUser(c *gin.Context) *model.User {
	return c.MustGet(middleware.AuthUserKey).(*model.User)
}

// SendOtp handles POST /send-otp
func (h *AuthHandler) SendOtp(c *gin.Context) {
	var req struct {
		Email   string `json:"email" binding:"required,email"`
		Purpose string `json:"purpose" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Email and purpose are required!")
		return
	}
	if !model.ValidPurpose(req.Purpose) {
		respondError(c, http.StatusBadRequest, "Please select a purpose!")
		return
	}

	if err := h.otps.Issue(c.Request.Context(), req.Email, req.Purpose); err != nil {
		var cooldown *service.CooldownError
		switch {
		case errors.As(err, &cooldown):
			respondError(c, http.StatusTooManyRequests, cooldown.Error())
		case errors.Is(err, service.ErrTooManyRequests):
			respondError(c, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, service.ErrAlreadyRegistered):
			respondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "Failed to send OTP. Please try again later!")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "OTP sent successfully. Please check your email!",
	})
}

// Register handles POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
		Otp      string `json:"otp" binding:"required"`
		Purpose  string `json:"purpose" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	user, token, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role, req.Otp, req.Purpose)
	if err != nil {
		var validation *service.ValidationError
		switch {
		case errors.Is(err, service.ErrAlreadyRegistered),
			errors.Is(err, service.ErrOtpInvalid),
			errors.Is(err, service.ErrOtpExpired):
			respondError(c, http.StatusBadRequest, err.Error())
		case errors.As(err, &validation):
			respondError(c, http.StatusBadRequest, validation.Message)
		default:
			respondError(c, http.StatusInternalServerError, "Failed to register user")
		}
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully!",
		"data":    user,
	})
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to login")
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User logged in successfully",
		"data":    user,
	})
}

// Profile handles GET /profile
func (h *AuthHandler) Profile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    currentUser(c),
	})
}

// Logout handles GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User logged out successfully",
	})
}

// UpdateProfile handles PUT /profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), currentUser(c).ID, req.Name)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User profile updated successfully",
		"data":    user,
	})
}

// UpdatePassword handles PUT /password
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"OldPassword" binding:"required"`
		NewPassword string `json:"NewPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	err := h.auth.UpdatePassword(c.Request.Context(), currentUser(c).ID, req.OldPassword, req.NewPassword)
	if err != nil {
		var validation *service.ValidationError
		switch {
		case errors.Is(err, service.ErrOldPasswordInvalid):
			respondError(c, http.StatusUnauthorized, err.Error())
		case errors.As(err, &validation):
			respondError(c, http.StatusBadRequest, validation.Message)
		default:
			respondError(c, http.StatusInternalServerError, "Failed to update password")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User password updated successfully",
	})
}

// ResetPassword handles POST /password/reset
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Otp      string `json:"otp" binding:"required"`
		Purpose  string `json:"purpose" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	err := h.auth.ResetPassword(c.Request.Context(), req.Email, req.Password, req.Otp, req.Purpose)
	if err != nil {
		var validation *service.ValidationError
		switch {
		case errors.Is(err, service.ErrOtpInvalid), errors.Is(err, service.ErrOtpExpired):
			respondError(c, http.StatusBadRequest, "OTP is invalid or is expired. Please request for new one!")
		case errors.As(err, &validation):
			respondError(c, http.StatusBadRequest, validation.Message)
		default:
			respondError(c, http.StatusInternalServerError, "Failed to reset password")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User password reset successfully",
	})
}

// DeleteProfile handles DELETE /profile/delete
func (h *AuthHandler) DeleteProfile(c *gin.Context) {
	if err := h.auth.DeleteAccount(c.Request.Context(), currentUser(c).ID); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete account")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User account deleted successfully",
	})
}

// RegisterAuthRoutes registers all auth routes on the given group
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/send-otp", h.SendOtp)
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/password/reset", h.ResetPassword)

		authGroup.GET("/profile", authMW, h.Profile)
		authGroup.GET("/logout", authMW, h.Logout)
		authGroup.PUT("/profile", authMW, h.UpdateProfile)
		authGroup.PUT("/password", authMW, h.UpdatePassword)
		authGroup.DELETE("/profile/delete", authMW, h.DeleteProfile)
	}
}
