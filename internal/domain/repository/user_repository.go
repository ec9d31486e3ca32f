package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/mavrick-auth/internal/domain/entity"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
)

// UserRepository defines the credential store operations.
// Emails are expected in normalized (trimmed, lower-case) form.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	// Insert assigns ID and timestamps. The uniqueness check and the write
	// happen atomically, so concurrent inserts for one email yield ErrEmailTaken.
	Insert(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
}
