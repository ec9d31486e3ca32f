package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/mavrick-auth/internal/domain/entity"
	"github.com/oksasatya/mavrick-auth/internal/domain/repository"
)

// OTPRepository keeps reset codes in process memory, keyed by email.
type OTPRepository struct {
	mu      sync.Mutex
	records map[string]entity.OTPRecord
}

func NewOTPRepository() *OTPRepository {
	return &OTPRepository{records: make(map[string]entity.OTPRecord)}
}

func (r *OTPRepository) Save(_ context.Context, rec entity.OTPRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.Email] = rec
	return nil
}

func (r *OTPRepository) Get(_ context.Context, email string) (*entity.OTPRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (r *OTPRepository) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, email)
	return nil
}

var _ repository.OTPRepository = (*OTPRepository)(nil)
