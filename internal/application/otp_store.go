package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oksasatya/mavrick-auth/internal/domain/entity"
	"github.com/oksasatya/mavrick-auth/internal/domain/repository"
	"github.com/oksasatya/mavrick-auth/pkg/helpers"
)

// DefaultOTPTTL is how long a reset code stays valid.
const DefaultOTPTTL = 10 * time.Minute

// OTPStore issues and checks reset codes on top of an OTPRepository.
type OTPStore struct {
	Repo repository.OTPRepository
	TTL  time.Duration

	now func() time.Time
	gen func() (string, error)
}

func NewOTPStore(repo repository.OTPRepository, ttl time.Duration) *OTPStore {
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &OTPStore{Repo: repo, TTL: ttl, now: time.Now, gen: helpers.GenOTPCode}
}

// WithClock replaces the time source used for expiry.
func (s *OTPStore) WithClock(now func() time.Time) *OTPStore {
	s.now = now
	return s
}

// Issue stores a fresh code for email, replacing any previous one.
func (s *OTPStore) Issue(ctx context.Context, email string) (entity.OTPRecord, error) {
	code, err := s.gen()
	if err != nil {
		return entity.OTPRecord{}, fmt.Errorf("generate otp: %w", err)
	}
	now := s.now()
	rec := entity.OTPRecord{
		Email:     email,
		Code:      code,
		Nonce:     uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.TTL),
	}
	if err := s.Repo.Save(ctx, rec); err != nil {
		return entity.OTPRecord{}, fmt.Errorf("save otp: %w", err)
	}
	return rec, nil
}

// Verify returns ErrInvalidCode when there is no record or the code differs,
// and ErrCodeExpired (deleting the record) once the code is past its expiry.
// A successful check leaves the record in place and returns it.
func (s *OTPStore) Verify(ctx context.Context, email, code string) (entity.OTPRecord, error) {
	rec, err := s.Repo.Get(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return entity.OTPRecord{}, ErrInvalidCode
	}
	if err != nil {
		return entity.OTPRecord{}, fmt.Errorf("load otp: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		return entity.OTPRecord{}, ErrInvalidCode
	}
	if rec.Expired(s.now()) {
		if err := s.Repo.Delete(ctx, email); err != nil {
			return entity.OTPRecord{}, fmt.Errorf("delete expired otp: %w", err)
		}
		return entity.OTPRecord{}, ErrCodeExpired
	}
	return rec, nil
}

// Matches reports whether the stored record for email is the one nonce was
// issued for. A missing or reissued record does not match.
func (s *OTPStore) Matches(ctx context.Context, email, nonce string) (bool, error) {
	rec, err := s.Repo.Get(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load otp: %w", err)
	}
	if nonce == "" || rec.Nonce == "" {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(rec.Nonce), []byte(nonce)) == 1, nil
}

// Consume deletes the record for email.
func (s *OTPStore) Consume(ctx context.Context, email string) error {
	return s.Repo.Delete(ctx, email)
}
