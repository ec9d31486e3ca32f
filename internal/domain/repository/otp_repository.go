package repository

import (
	"context"

	"github.com/oksasatya/mavrick-auth/internal/domain/entity"
)

// OTPRepository persists at most one OTP record per email.
type OTPRepository interface {
	// Save replaces any record stored for rec.Email.
	Save(ctx context.Context, rec entity.OTPRecord) error
	// Get returns ErrNotFound when no record exists.
	Get(ctx context.Context, email string) (*entity.OTPRecord, error)
	Delete(ctx context.Context, email string) error
}
