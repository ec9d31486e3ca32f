package audit

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mavrick-auth/internal/application"
)

// LogSink writes audit events as structured log lines.
type LogSink struct {
	Logger *logrus.Logger
}

func NewLogSink(logger *logrus.Logger) *LogSink { return &LogSink{Logger: logger} }

func (s *LogSink) Record(_ context.Context, ev application.AuditEvent) {
	if s.Logger == nil {
		return
	}
	fields := logrus.Fields{
		"audit":   true,
		"action":  ev.Action,
		"outcome": ev.Outcome,
	}
	if ev.Email != "" {
		fields["email"] = ev.Email
	}
	if ev.UserID != 0 {
		fields["user_id"] = ev.UserID
	}
	if ev.Provider != "" {
		fields["provider"] = ev.Provider
	}
	if ev.RequestID != "" {
		fields["request_id"] = ev.RequestID
	}
	if ev.IP != "" {
		fields["ip"] = ev.IP
	}
	s.Logger.WithFields(fields).Info("auth event")
}
