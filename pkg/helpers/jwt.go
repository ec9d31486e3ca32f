package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. A token is only accepted where its purpose matches.
const (
	PurposeSession       = "session"
	PurposePasswordReset = "password_reset"
)

// ErrInvalidOrExpiredToken is returned for every verification failure so
// callers cannot tell a bad signature from an expired token.
var ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

// JWTManager issues and verifies HS256 tokens signed with a process-wide secret
type JWTManager struct {
	Secret     []byte
	SessionTTL time.Duration
	ResetTTL   time.Duration

	now func() time.Time
}

func NewJWTManager(secret string, sessionTTL, resetTTL time.Duration) *JWTManager {
	return &JWTManager{
		Secret:     []byte(secret),
		SessionTTL: sessionTTL,
		ResetTTL:   resetTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for issuing and validating tokens.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	m.now = now
	return m
}

type Claims struct {
	UserID  int64  `json:"id,omitempty"`
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	Nonce   string `json:"nonce,omitempty"`
	jwt.RegisteredClaims
}

// IssueSession returns a session token carrying the user id and email.
func (m *JWTManager) IssueSession(userID int64, email string) (string, time.Time, error) {
	return m.sign(Claims{UserID: userID, Email: email, Purpose: PurposeSession}, m.SessionTTL)
}

// IssueResetAuthorization returns a token that only the reset-password step
// accepts. nonce binds it to the code record it was verified against.
func (m *JWTManager) IssueResetAuthorization(email, nonce string) (string, time.Time, error) {
	return m.sign(Claims{Email: email, Purpose: PurposePasswordReset, Nonce: nonce}, m.ResetTTL)
}

func (m *JWTManager) sign(claims Claims, ttl time.Duration) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Verify checks signature, algorithm and expiry together.
func (m *JWTManager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidOrExpiredToken
	}
	return claims, nil
}

// VerifySession accepts only session tokens.
func (m *JWTManager) VerifySession(tokenStr string) (*Claims, error) {
	return m.verifyPurpose(tokenStr, PurposeSession)
}

// VerifyResetAuthorization accepts only password reset tokens.
func (m *JWTManager) VerifyResetAuthorization(tokenStr string) (*Claims, error) {
	return m.verifyPurpose(tokenStr, PurposePasswordReset)
}

func (m *JWTManager) verifyPurpose(tokenStr, purpose string) (*Claims, error) {
	claims, err := m.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purpose || claims.Email == "" {
		return nil, ErrInvalidOrExpiredToken
	}
	if purpose == PurposePasswordReset && claims.Nonce == "" {
		return nil, ErrInvalidOrExpiredToken
	}
	return claims, nil
}
