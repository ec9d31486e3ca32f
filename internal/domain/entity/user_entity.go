package entity

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// User is the aggregate root for the credential store.
// PasswordHash holds a bcrypt hash and is empty for social login accounts.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Provider     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Avatar is the upper-cased first letter of the user's name.
func (u *User) Avatar() string {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r))
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool { return u.PasswordHash != "" }
