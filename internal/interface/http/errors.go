package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mavrick-auth/internal/application"
	"github.com/oksasatya/mavrick-auth/pkg/response"
	"github.com/oksasatya/mavrick-auth/pkg/validation"
)

// Client-facing messages
const (
	MsgValidationFailed   = "Validation failed"
	MsgInvalidCredentials = "Invalid email or password"
	MsgUserExists         = "User already exists with this email"
	MsgInvalidCode        = "Invalid or expired verification code"
	MsgCodeExpired        = "Verification code has expired"
	MsgInvalidToken       = "Invalid or expired token"
	MsgUserNotFound       = "User not found"
	MsgUnknownProvider    = "Unknown login provider"
	MsgUnauthorized       = "Unauthorized"
	MsgInternal           = "Internal server error"
)

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// requestContext carries request id, ip and user agent down to the service.
func requestContext(c *gin.Context) context.Context {
	return application.WithRequestMeta(c.Request.Context(), application.RequestMeta{
		RequestID: c.GetString("request_id"),
		IP:        clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
	})
}

func bindFailed(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, MsgValidationFailed, validation.ToDetails(err))
}

// writeError maps service errors to status codes. Unknown errors are logged
// and hidden behind a generic 500.
func writeError(c *gin.Context, logger *logrus.Logger, flow string, err error) {
	var ve *application.ValidationError
	switch {
	case errors.As(err, &ve):
		details := make([]validation.ValidationsError, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			details = append(details, validation.ValidationsError{Field: f.Field, Message: f.Message})
		}
		response.Error[any](c, http.StatusBadRequest, MsgValidationFailed, details)
	case errors.Is(err, application.ErrUnauthorized):
		response.Error[any](c, http.StatusUnauthorized, MsgInvalidCredentials, nil)
	case errors.Is(err, application.ErrConflict):
		response.Error[any](c, http.StatusConflict, MsgUserExists, nil)
	case errors.Is(err, application.ErrInvalidCode):
		response.Error[any](c, http.StatusBadRequest, MsgInvalidCode, nil)
	case errors.Is(err, application.ErrCodeExpired):
		response.Error[any](c, http.StatusBadRequest, MsgCodeExpired, nil)
	case errors.Is(err, application.ErrInvalidOrExpiredToken):
		response.Error[any](c, http.StatusBadRequest, MsgInvalidToken, nil)
	case errors.Is(err, application.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, MsgUserNotFound, nil)
	case errors.Is(err, application.ErrUnknownProvider):
		response.Error[any](c, http.StatusNotFound, MsgUnknownProvider, nil)
	default:
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"flow":       flow,
				"request_id": c.GetString("request_id"),
			}).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, MsgInternal, nil)
	}
}
