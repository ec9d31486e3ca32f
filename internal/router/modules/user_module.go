package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/mavrick-auth/internal/interface/http"
	"github.com/oksasatya/mavrick-auth/internal/interface/middleware"
	"github.com/oksasatya/mavrick-auth/pkg/helpers"
)

// UserModule serves the signed-in user's profile.
// Protected: GET /api/user
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	{
		auth.GET("/user", m.Handler.GetProfile)
	}
}
