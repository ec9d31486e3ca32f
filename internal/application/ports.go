package application

import (
	"context"
	"time"
)

// OTPDelivery is what a notifier needs to send a reset code out of band.
type OTPDelivery struct {
	Name      string
	Email     string
	Code      string
	ExpiresAt time.Time
	IP        string
	UserAgent string
}

// OTPNotifier delivers reset codes through a side channel such as email.
type OTPNotifier interface {
	SendOTP(ctx context.Context, d OTPDelivery) error
}

// Audit actions
const (
	ActionSignup         = "signup"
	ActionLogin          = "login"
	ActionSocialLogin    = "social_login"
	ActionForgotPassword = "forgot_password"
	ActionVerifyOTP      = "verify_otp"
	ActionResetPassword  = "reset_password"
)

// AuditEvent is one authentication outcome.
type AuditEvent struct {
	Action    string    `json:"action"`
	Outcome   string    `json:"outcome"`
	Email     string    `json:"email,omitempty"`
	UserID    int64     `json:"user_id,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	At        time.Time `json:"at"`
}

// AuditSink records audit events. Implementations must not block the caller for long
// and swallow their own errors.
type AuditSink interface {
	Record(ctx context.Context, ev AuditEvent)
}

// MultiSink fans an event out to several sinks.
type MultiSink []AuditSink

func (m MultiSink) Record(ctx context.Context, ev AuditEvent) {
	for _, s := range m {
		if s != nil {
			s.Record(ctx, ev)
		}
	}
}

// RequestMeta describes the HTTP request behind a service call.
type RequestMeta struct {
	RequestID string
	IP        string
	UserAgent string
}

type requestMetaKey struct{}

// WithRequestMeta attaches request metadata to ctx.
func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, m)
}

// RequestMetaFrom returns the metadata attached by WithRequestMeta, if any.
func RequestMetaFrom(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return m
}
