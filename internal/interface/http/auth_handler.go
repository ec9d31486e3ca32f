package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mavrick-auth/internal/application"
	"github.com/oksasatya/mavrick-auth/pkg/helpers"
	"github.com/oksasatya/mavrick-auth/pkg/response"
)

type AuthHandler struct {
	Svc     *application.Service
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.Service, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type signupRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,strongpwd"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,strongpwd"`
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	res, err := h.Svc.Login(requestContext(c), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, "login", err)
		return
	}
	h.Cookies.SetSession(c, res.Token, res.ExpiresAt)
	response.Success(c, http.StatusOK, res, "Login successful")
}

// Signup POST /api/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	res, err := h.Svc.Signup(requestContext(c), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, "signup", err)
		return
	}
	h.Cookies.SetSession(c, res.Token, res.ExpiresAt)
	response.Success(c, http.StatusCreated, res, "User created successfully")
}

// SocialLogin POST /api/auth/:provider
// Stub: no identity is verified with the provider.
func (h *AuthHandler) SocialLogin(c *gin.Context) {
	provider := strings.ToLower(c.Param("provider"))
	res, err := h.Svc.SocialLogin(requestContext(c), provider)
	if err != nil {
		writeError(c, h.Logger, "social_login", err)
		return
	}
	h.Cookies.SetSession(c, res.Token, res.ExpiresAt)
	response.Success(c, http.StatusOK, res, strings.ToUpper(provider[:1])+provider[1:]+" login successful")
}

// ForgotPassword POST /api/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	res, err := h.Svc.ForgotPassword(requestContext(c), req.Email)
	if err != nil {
		writeError(c, h.Logger, "forgot_password", err)
		return
	}
	response.Success(c, http.StatusOK, res, res.Message)
}

// VerifyOTP POST /api/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	res, err := h.Svc.VerifyOTP(requestContext(c), req.Email, req.OTP)
	if err != nil {
		writeError(c, h.Logger, "verify_otp", err)
		return
	}
	response.Success(c, http.StatusOK, res, res.Message)
}

// ResetPassword POST /api/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	res, err := h.Svc.ResetPassword(requestContext(c), req.Token, req.NewPassword)
	if err != nil {
		writeError(c, h.Logger, "reset_password", err)
		return
	}
	response.Success(c, http.StatusOK, res, res.Message)
}

// Logout POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "Logged out")
}
