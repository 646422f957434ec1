package domain

import (
	"strings"
	"time"
)

// DateLayout is the format of Account.CreatedOn.
const DateLayout = "2006-01-02"

// Account is a durable user record keyed by Username.
type Account struct {
	Username     string `json:"username"`      // Login name, immutable
	PasswordHash string `json:"password_hash"` // bcrypt hash of the password
	DisplayName  string `json:"display_name"`  // Shown in the profile header
	Email        string `json:"email"`         // Optional contact address
	CreatedOn    string `json:"created_on"`    // Registration date (DateLayout)
}

// NewAccount creates an account with the registration defaults applied.
func NewAccount(username, passwordHash string, now time.Time) Account {
	return Account{
		Username:     username,
		PasswordHash: passwordHash,
		DisplayName:  username,
		Email:        "",
		CreatedOn:    now.Format(DateLayout),
	}
}

// Backfill sets defaults that older records may lack.
// Returns true if any field changed.
func (a *Account) Backfill(now time.Time) bool {
	changed := false

	if strings.TrimSpace(a.DisplayName) == "" {
		a.DisplayName = a.Username
		changed = true
	}

	if a.CreatedOn == "" {
		a.CreatedOn = now.Format(DateLayout)
		changed = true
	}

	return changed
}
