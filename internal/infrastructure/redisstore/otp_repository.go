package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/mavrick-auth/internal/domain/entity"
	"github.com/oksasatya/mavrick-auth/internal/domain/repository"
	"github.com/oksasatya/mavrick-auth/pkg/helpers"
)

// expiredRetention keeps a record around after ExpiresAt so that a late
// verification is reported as expired rather than unknown.
const expiredRetention = time.Hour

// OTPRepository stores reset codes in Redis as JSON, one key per email.
type OTPRepository struct {
	rdb *redis.Client
}

func NewOTPRepository(rdb *redis.Client) *OTPRepository {
	return &OTPRepository{rdb: rdb}
}

// KeyResetOTP is the Redis key holding the pending reset code for email
func KeyResetOTP(email string) string {
	return "pwd:reset:otp:" + email
}

func (r *OTPRepository) Save(ctx context.Context, rec entity.OTPRecord) error {
	ttl := time.Until(rec.ExpiresAt) + expiredRetention
	if ttl < time.Second {
		ttl = time.Second
	}
	return helpers.RedisSetJSON(ctx, r.rdb, KeyResetOTP(rec.Email), rec, ttl)
}

func (r *OTPRepository) Get(ctx context.Context, email string) (*entity.OTPRecord, error) {
	var rec entity.OTPRecord
	found, err := helpers.RedisGetJSON(ctx, r.rdb, KeyResetOTP(email), &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (r *OTPRepository) Delete(ctx context.Context, email string) error {
	return helpers.RedisDel(ctx, r.rdb, KeyResetOTP(email))
}

var _ repository.OTPRepository = (*OTPRepository)(nil)
