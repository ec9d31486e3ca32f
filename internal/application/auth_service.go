package application

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/mavrick-auth/internal/domain/entity"
	repo "github.com/oksasatya/mavrick-auth/internal/domain/repository"
	"github.com/oksasatya/mavrick-auth/pkg/helpers"
	"github.com/oksasatya/mavrick-auth/pkg/validation"
)

// Messages returned to clients.
const (
	MsgForgotPassword = "If an account exists for this email, a verification code has been sent"
	MsgOTPVerified    = "Verification code verified successfully"
	MsgPasswordReset  = "Password has been reset successfully"
)

const otpLength = 6

// DefaultProviders are the social login providers enabled when none are configured.
var DefaultProviders = []string{"google", "apple", "microsoft"}

type Service struct {
	Repo     repo.UserRepository
	OTPs     *OTPStore
	JWT      *helpers.JWTManager
	Notifier OTPNotifier
	Audit    AuditSink
	Logger   *logrus.Logger

	BcryptCost int
	// ExposeOTP puts the reset code in the forgot-password response. Demo only.
	ExposeOTP bool
	Providers map[string]bool

	now       func() time.Time
	dummyOnce sync.Once
	dummyHash string
}

func NewService(users repo.UserRepository, otps *OTPStore, jwt *helpers.JWTManager, logger *logrus.Logger) *Service {
	s := &Service{
		Repo:       users,
		OTPs:       otps,
		JWT:        jwt,
		Logger:     logger,
		BcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	s.SetProviders(DefaultProviders)
	return s
}

// WithClock replaces the time source used for social login emails and audit timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SetProviders replaces the enabled social login providers.
func (s *Service) SetProviders(names []string) {
	s.Providers = make(map[string]bool, len(names))
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			s.Providers[n] = true
		}
	}
}

type UserView struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

func NewUserView(u *entity.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar()}
}

type AuthResult struct {
	User      UserView  `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"-"`
}

type ForgotPasswordResult struct {
	Message   string `json:"message"`
	OTP       string `json:"otp,omitempty"`
	ExpiresIn int    `json:"expiresIn"`
}

type VerifyOTPResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type ResetPasswordResult struct {
	Message string `json:"message"`
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a password account and starts a session.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	var fe fieldErrors
	if utf8.RuneCountInString(name) < 2 {
		fe.add("name", "name must be at least 2 characters")
	}
	if !validation.ValidEmail(email) {
		fe.add("email", "email must be a valid email address")
	}
	if !validation.StrongPassword(password) {
		fe.add("password", "password must be at least 12 characters and include upper, lower, number and symbol")
	}
	if err := fe.err(); err != nil {
		s.record(ctx, AuditEvent{Action: ActionSignup, Outcome: "invalid", Email: email})
		return nil, err
	}

	if _, err := s.Repo.FindByEmail(ctx, email); err == nil {
		s.record(ctx, AuditEvent{Action: ActionSignup, Outcome: "conflict", Email: email})
		return nil, ErrConflict
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("signup lookup: %w", err)
	}

	hash, err := helpers.HashPassword(password, s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.Repo.Insert(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			s.record(ctx, AuditEvent{Action: ActionSignup, Outcome: "conflict", Email: email})
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.startSession(ctx, ActionSignup, u)
}

// Login checks email and password. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)

	var fe fieldErrors
	if !validation.ValidEmail(email) {
		fe.add("email", "email must be a valid email address")
	}
	if utf8.RuneCountInString(password) < validation.LoginPasswordMinLen {
		fe.add("password", fmt.Sprintf("password must be at least %d characters", validation.LoginPasswordMinLen))
	}
	if err := fe.err(); err != nil {
		s.record(ctx, AuditEvent{Action: ActionLogin, Outcome: "invalid", Email: email})
		return nil, err
	}

	u, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("login lookup: %w", err)
		}
		helpers.CompareHashAndPassword(s.dummy(), password)
		s.record(ctx, AuditEvent{Action: ActionLogin, Outcome: "unauthorized", Email: email})
		return nil, ErrUnauthorized
	}
	hash := u.PasswordHash
	if !u.HasPassword() {
		hash = s.dummy()
	}
	if !helpers.CompareHashAndPassword(hash, password) || !u.HasPassword() {
		s.record(ctx, AuditEvent{Action: ActionLogin, Outcome: "unauthorized", Email: email, UserID: u.ID})
		return nil, ErrUnauthorized
	}
	return s.startSession(ctx, ActionLogin, u)
}

// SocialLogin is a stub: no identity is verified and every call creates a new
// account for the provider.
func (s *Service) SocialLogin(ctx context.Context, provider string) (*AuthResult, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !s.Providers[provider] {
		s.record(ctx, AuditEvent{Action: ActionSocialLogin, Outcome: "unknown_provider", Provider: provider})
		return nil, ErrUnknownProvider
	}
	title := strings.ToUpper(provider[:1]) + provider[1:]
	u := &entity.User{
		Name:     title + " User",
		Email:    fmt.Sprintf("user-%d-%s@%s.com", s.now().UnixNano(), uuid.NewString()[:8], provider),
		Provider: provider,
	}
	if err := s.Repo.Insert(ctx, u); err != nil {
		return nil, fmt.Errorf("insert social user: %w", err)
	}
	return s.startSession(ctx, ActionSocialLogin, u)
}

// ForgotPassword issues a reset code for registered emails. The response is
// the same whether or not the email is registered.
func (s *Service) ForgotPassword(ctx context.Context, email string) (*ForgotPasswordResult, error) {
	email = NormalizeEmail(email)
	if !validation.ValidEmail(email) {
		s.record(ctx, AuditEvent{Action: ActionForgotPassword, Outcome: "invalid", Email: email})
		return nil, &ValidationError{Fields: []FieldError{{Field: "email", Message: "email must be a valid email address"}}}
	}

	res := &ForgotPasswordResult{Message: MsgForgotPassword, ExpiresIn: int(s.OTPs.TTL / time.Second)}

	u, err := s.Repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		s.record(ctx, AuditEvent{Action: ActionForgotPassword, Outcome: "unknown_email", Email: email})
		if s.ExposeOTP {
			decoy, gerr := helpers.GenOTPCode()
			if gerr != nil {
				return nil, fmt.Errorf("generate decoy otp: %w", gerr)
			}
			res.OTP = decoy
		}
		return res, nil
	case err != nil:
		return nil, fmt.Errorf("forgot password lookup: %w", err)
	}

	rec, err := s.OTPs.Issue(ctx, email)
	if err != nil {
		return nil, err
	}
	if s.Notifier != nil {
		meta := RequestMetaFrom(ctx)
		d := OTPDelivery{Name: u.Name, Email: u.Email, Code: rec.Code, ExpiresAt: rec.ExpiresAt, IP: meta.IP, UserAgent: meta.UserAgent}
		if nerr := s.Notifier.SendOTP(ctx, d); nerr != nil {
			helpers.LogError(s.Logger, "otp delivery failed", nerr, logrus.Fields{"user_id": u.ID})
		}
	}
	s.record(ctx, AuditEvent{Action: ActionForgotPassword, Outcome: "issued", Email: email, UserID: u.ID})
	if s.ExposeOTP {
		res.OTP = rec.Code
	}
	return res, nil
}

// VerifyOTP checks a reset code and returns a reset authorization token.
// The code stays stored until the password is reset.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (*VerifyOTPResult, error) {
	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)

	var fe fieldErrors
	if !validation.ValidEmail(email) {
		fe.add("email", "email must be a valid email address")
	}
	if utf8.RuneCountInString(code) != otpLength {
		fe.add("otp", fmt.Sprintf("otp must be exactly %d characters", otpLength))
	}
	if err := fe.err(); err != nil {
		s.record(ctx, AuditEvent{Action: ActionVerifyOTP, Outcome: "invalid", Email: email})
		return nil, err
	}

	rec, err := s.OTPs.Verify(ctx, email, code)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCode):
			s.record(ctx, AuditEvent{Action: ActionVerifyOTP, Outcome: "invalid_code", Email: email})
		case errors.Is(err, ErrCodeExpired):
			s.record(ctx, AuditEvent{Action: ActionVerifyOTP, Outcome: "expired", Email: email})
		}
		return nil, err
	}

	tok, _, err := s.JWT.IssueResetAuthorization(email, rec.Nonce)
	if err != nil {
		return nil, fmt.Errorf("issue reset token: %w", err)
	}
	s.record(ctx, AuditEvent{Action: ActionVerifyOTP, Outcome: "verified", Email: email})
	return &VerifyOTPResult{Message: MsgOTPVerified, Token: tok}, nil
}

// ResetPassword sets a new password using a reset authorization. The
// authorization must belong to the code record currently stored for the
// email, and that record is consumed, so each authorization works once.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) (*ResetPasswordResult, error) {
	var fe fieldErrors
	if strings.TrimSpace(token) == "" {
		fe.add("token", "token is required")
	}
	if !validation.StrongPassword(newPassword) {
		fe.add("newPassword", "password must be at least 12 characters and include upper, lower, number and symbol")
	}
	if err := fe.err(); err != nil {
		s.record(ctx, AuditEvent{Action: ActionResetPassword, Outcome: "invalid"})
		return nil, err
	}

	claims, err := s.JWT.VerifyResetAuthorization(token)
	if err != nil {
		s.record(ctx, AuditEvent{Action: ActionResetPassword, Outcome: "invalid_token"})
		return nil, ErrInvalidOrExpiredToken
	}
	email := claims.Email

	u, err := s.Repo.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		s.record(ctx, AuditEvent{Action: ActionResetPassword, Outcome: "not_found", Email: email})
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reset lookup: %w", err)
	}

	current, err := s.OTPs.Matches(ctx, email, claims.Nonce)
	if err != nil {
		return nil, err
	}
	if !current {
		s.record(ctx, AuditEvent{Action: ActionResetPassword, Outcome: "replayed", Email: email, UserID: u.ID})
		return nil, ErrInvalidOrExpiredToken
	}

	hash, err := helpers.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.Repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update password: %w", err)
	}
	if err := s.OTPs.Consume(ctx, email); err != nil {
		return nil, fmt.Errorf("consume otp: %w", err)
	}
	s.record(ctx, AuditEvent{Action: ActionResetPassword, Outcome: "success", Email: email, UserID: u.ID})
	return &ResetPasswordResult{Message: MsgPasswordReset}, nil
}

// Profile returns the account behind a session.
func (s *Service) Profile(ctx context.Context, userID int64) (*UserView, error) {
	u, err := s.Repo.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profile lookup: %w", err)
	}
	v := NewUserView(u)
	return &v, nil
}

func (s *Service) startSession(ctx context.Context, action string, u *entity.User) (*AuthResult, error) {
	tok, exp, err := s.JWT.IssueSession(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	s.record(ctx, AuditEvent{Action: action, Outcome: "success", Email: u.Email, UserID: u.ID, Provider: u.Provider})
	return &AuthResult{User: NewUserView(u), Token: tok, ExpiresAt: exp}, nil
}

// dummy returns a hash used to spend the same bcrypt work on unknown emails.
func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		b := make([]byte, 16)
		_, _ = rand.Read(b)
		h, err := helpers.HashPassword(fmt.Sprintf("%x", b), s.BcryptCost)
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func (s *Service) record(ctx context.Context, ev AuditEvent) {
	if s.Audit == nil {
		return
	}
	meta := RequestMetaFrom(ctx)
	ev.RequestID, ev.IP, ev.UserAgent = meta.RequestID, meta.IP, meta.UserAgent
	ev.At = s.now().UTC()
	s.Audit.Record(ctx, ev)
}
