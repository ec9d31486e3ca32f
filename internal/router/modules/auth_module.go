package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/mavrick-auth/internal/interface/http"
	"github.com/oksasatya/mavrick-auth/internal/interface/middleware"
)

// AuthModule wires the public authentication and password reset routes.
// POST /api/login, /api/signup, /api/auth/:provider, /api/forgot-password,
// /api/verify-otp, /api/reset-password, /api/logout
type AuthModule struct {
	Handler *handlers.AuthHandler
	RDB     *redis.Client
	// Max requests per client IP and route within Window; zero disables limiting
	Max    int
	Window time.Duration
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client, max int, window time.Duration) *AuthModule {
	return &AuthModule{Handler: h, RDB: rdb, Max: max, Window: window}
}

func (m *AuthModule) limiter(max int) gin.HandlerFunc {
	return middleware.RateLimit(m.RDB, max, m.Window, middleware.KeyByIPAndPath(), nil)
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rl := m.limiter(m.Max)
	// code requests are tighter: each one may send an email
	otpRL := m.limiter((m.Max + 3) / 4)

	rg.POST("/login", rl, m.Handler.Login)
	rg.POST("/signup", rl, m.Handler.Signup)
	rg.POST("/auth/:provider", rl, m.Handler.SocialLogin)
	rg.POST("/forgot-password", otpRL, m.Handler.ForgotPassword)
	rg.POST("/verify-otp", rl, m.Handler.VerifyOTP)
	rg.POST("/reset-password", rl, m.Handler.ResetPassword)
	rg.POST("/logout", m.Handler.Logout)
}
