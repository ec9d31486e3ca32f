package templates

import (
	"time"

	"github.com/oksasatya/mavrick-auth/config"
)

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) { d.Time = t.UTC().Format("02 January 2006, 15:04") }
}

// WithExpiry records both the absolute expiry and the remaining minutes as of now.
func WithExpiry(expiresAt, now time.Time) Option {
	return func(d *EmailData) {
		utc := expiresAt.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 MST")
		d.ExpiresInMinutes = int(expiresAt.Sub(now).Round(time.Minute) / time.Minute)
	}
}

// NewBaseEmailData fills the common fields from config, then applies options
func NewBaseEmailData(cfg *config.Config, typ string, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:  name,
		Email: email,
		Type:  typ,
	}
	if cfg != nil {
		d.CompanyName = cfg.CompanyName
		d.AppName = cfg.AppName
		d.SupportURL = cfg.SupportURL
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewPasswordResetOTPData builds the data map for the password_reset_otp template.
func NewPasswordResetOTPData(cfg *config.Config, name, email, code string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, PasswordResetOTP, name, email, opts...)
	d.Code = code
	return ToMap(d)
}
