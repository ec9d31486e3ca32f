package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/mavrick-auth/internal/infrastructure/memory"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock { return &clock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)} }

func TestOTPStore_IssueAndVerify(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	store := NewOTPStore(memory.NewOTPRepository(), 10*time.Minute).WithClock(clk.Now)

	rec, err := store.Issue(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, rec.Code, 6)
	assert.Equal(t, clk.t.Add(10*time.Minute), rec.ExpiresAt)

	assert.NotEmpty(t, rec.Nonce)

	got, err := store.Verify(ctx, "a@x.com", rec.Code)
	require.NoError(t, err)
	assert.Equal(t, rec.Nonce, got.Nonce)
	// verification does not consume the code
	_, err = store.Verify(ctx, "a@x.com", rec.Code)
	require.NoError(t, err)

	ok, err := store.Matches(ctx, "a@x.com", rec.Nonce)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Consume(ctx, "a@x.com"))
	_, err = store.Verify(ctx, "a@x.com", rec.Code)
	assert.ErrorIs(t, err, ErrInvalidCode)
	ok, err = store.Matches(ctx, "a@x.com", rec.Nonce)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOTPStore_WrongCodeAndUnknownEmail(t *testing.T) {
	ctx := context.Background()
	store := NewOTPStore(memory.NewOTPRepository(), time.Minute)
	store.gen = func() (string, error) { return "123456", nil }

	_, err := store.Issue(ctx, "a@x.com")
	require.NoError(t, err)

	_, err = store.Verify(ctx, "a@x.com", "654321")
	assert.ErrorIs(t, err, ErrInvalidCode)
	_, err = store.Verify(ctx, "b@x.com", "123456")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestOTPStore_ExpiredThenInvalid(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	store := NewOTPStore(memory.NewOTPRepository(), 10*time.Minute).WithClock(clk.Now)

	rec, err := store.Issue(ctx, "a@x.com")
	require.NoError(t, err)

	clk.Advance(10*time.Minute + time.Second)
	_, err = store.Verify(ctx, "a@x.com", rec.Code)
	assert.ErrorIs(t, err, ErrCodeExpired)
	_, err = store.Verify(ctx, "a@x.com", rec.Code)
	assert.ErrorIs(t, err, ErrInvalidCode)

	ok, err := store.Matches(ctx, "a@x.com", rec.Nonce)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOTPStore_ExpiryBoundaryIsInclusive(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	store := NewOTPStore(memory.NewOTPRepository(), time.Minute).WithClock(clk.Now)

	rec, err := store.Issue(ctx, "a@x.com")
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = store.Verify(ctx, "a@x.com", rec.Code)
	assert.NoError(t, err)
}

func TestOTPStore_ReissueReplacesCode(t *testing.T) {
	ctx := context.Background()
	store := NewOTPStore(memory.NewOTPRepository(), time.Minute)
	codes := []string{"111111", "222222"}
	store.gen = func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}

	first, err := store.Issue(ctx, "a@x.com")
	require.NoError(t, err)
	second, err := store.Issue(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, first.Nonce, second.Nonce)

	_, err = store.Verify(ctx, "a@x.com", "111111")
	assert.ErrorIs(t, err, ErrInvalidCode)
	_, err = store.Verify(ctx, "a@x.com", "222222")
	assert.NoError(t, err)

	ok, err := store.Matches(ctx, "a@x.com", first.Nonce)
	require.NoError(t, err)
	assert.False(t, ok, "a reissued code invalidates the old nonce")
	ok, err = store.Matches(ctx, "a@x.com", second.Nonce)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.Matches(ctx, "a@x.com", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewOTPStore_DefaultTTL(t *testing.T) {
	store := NewOTPStore(memory.NewOTPRepository(), 0)
	assert.Equal(t, DefaultOTPTTL, store.TTL)
}
