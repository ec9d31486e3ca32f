package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mavrick-auth/internal/application"
	"github.com/oksasatya/mavrick-auth/pkg/response"
)

type UserHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// GetProfile GET /api/user (auth required)
func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.GetInt64("userID")
	if uid == 0 {
		response.Error[any](c, http.StatusUnauthorized, MsgUnauthorized, nil)
		return
	}
	u, err := h.Svc.Profile(requestContext(c), uid)
	if err != nil {
		writeError(c, h.Logger, "profile", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u}, "profile")
}
