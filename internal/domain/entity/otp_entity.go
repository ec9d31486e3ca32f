package entity

import "time"

// OTPRecord is the pending password reset code for one email. Nonce is
// fresh per issued code and is carried by the reset authorization.
type OTPRecord struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	Nonce     string    `json:"nonce"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the code is past its expiry at now.
func (r OTPRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
