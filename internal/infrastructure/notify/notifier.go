package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mavrick-auth/config"
	"github.com/oksasatya/mavrick-auth/internal/application"
	"github.com/oksasatya/mavrick-auth/pkg/mailer"
	tpl "github.com/oksasatya/mavrick-auth/pkg/mailer/templates"
)

// Publisher puts a JSON job on a queue; *helpers.RabbitPublisher satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueNotifier enqueues a password_reset_otp email job for the email worker.
type QueueNotifier struct {
	Pub Publisher
	Cfg *config.Config

	now func() time.Time
}

func NewQueueNotifier(pub Publisher, cfg *config.Config) *QueueNotifier {
	return &QueueNotifier{Pub: pub, Cfg: cfg, now: time.Now}
}

func (n *QueueNotifier) SendOTP(ctx context.Context, d application.OTPDelivery) error {
	now := n.now()
	data := tpl.NewPasswordResetOTPData(
		n.Cfg,
		d.Name,
		d.Email,
		d.Code,
		tpl.WithTime(now),
		tpl.WithExpiry(d.ExpiresAt, now),
		tpl.WithIP(d.IP),
		tpl.WithUserAgent(d.UserAgent),
	)
	job := mailer.EmailJob{To: d.Email, Template: tpl.PasswordResetOTP, Data: data}
	if err := n.Pub.PublishJSON(ctx, job); err != nil {
		return fmt.Errorf("publish otp email: %w", err)
	}
	return nil
}

// LogNotifier is used when mail sending is disabled. The code itself is only
// written at debug level.
type LogNotifier struct {
	Logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) SendOTP(_ context.Context, d application.OTPDelivery) error {
	if n.Logger == nil {
		return nil
	}
	entry := n.Logger.WithFields(logrus.Fields{
		"email":      d.Email,
		"expires_at": d.ExpiresAt.UTC().Format(time.RFC3339),
	})
	entry.Info("password reset code issued; mail sending disabled")
	entry.WithField("code", d.Code).Debug("password reset code")
	return nil
}

var (
	_ application.OTPNotifier = (*QueueNotifier)(nil)
	_ application.OTPNotifier = (*LogNotifier)(nil)
)
