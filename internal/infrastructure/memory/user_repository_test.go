package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/mavrick-auth/internal/domain/entity"
	"github.com/oksasatya/mavrick-auth/internal/domain/repository"
)

func TestUserRepository_InsertAssignsMonotonicIDs(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	a := &entity.User{Name: "Ann", Email: "a@x.com", PasswordHash: "h1"}
	b := &entity.User{Name: "Bob", Email: "b@x.com", PasswordHash: "h2"}
	require.NoError(t, r.Insert(ctx, a))
	require.NoError(t, r.Insert(ctx, b))

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
	assert.False(t, a.CreatedAt.IsZero())

	got, err := r.FindByEmail(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Name)

	got, err = r.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	require.NoError(t, r.Insert(ctx, &entity.User{Name: "Ann", Email: "a@x.com", PasswordHash: "first"}))
	err := r.Insert(ctx, &entity.User{Name: "Imposter", Email: "a@x.com", PasswordHash: "second"})
	require.ErrorIs(t, err, repository.ErrEmailTaken)

	got, err := r.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, "first", got.PasswordHash)
	assert.Equal(t, 1, r.Len())
}

func TestUserRepository_ConcurrentInsertSameEmail(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	const n = 16
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		oks   int
		taken int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.Insert(ctx, &entity.User{Name: "Ann", Email: "race@x.com"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				oks++
			} else if err == repository.ErrEmailTaken {
				taken++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, oks)
	assert.Equal(t, n-1, taken)
	assert.Equal(t, 1, r.Len())
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	u := &entity.User{Name: "Ann", Email: "a@x.com", PasswordHash: "old"}
	require.NoError(t, r.Insert(ctx, u))

	require.NoError(t, r.UpdatePassword(ctx, u.ID, "new"))
	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)

	assert.ErrorIs(t, r.UpdatePassword(ctx, 99, "x"), repository.ErrNotFound)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	require.NoError(t, r.Insert(ctx, &entity.User{Name: "Ann", Email: "a@x.com", PasswordHash: "h"}))

	got, err := r.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	got.PasswordHash = "mutated"

	again, err := r.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "h", again.PasswordHash)
}

func TestUserRepository_NotFound(t *testing.T) {
	r := NewUserRepository()
	_, err := r.FindByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = r.FindByID(context.Background(), 7)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
