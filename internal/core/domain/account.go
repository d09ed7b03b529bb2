package domain

import "time"

// AuthMethod identifies which contact field an account registered with.
type AuthMethod string

const (
	AuthMethodEmail AuthMethod = "email"
	AuthMethodPhone AuthMethod = "phone"
)

// Valid reports whether the method is one of the supported contact channels.
func (m AuthMethod) Valid() bool {
	return m == AuthMethodEmail || m == AuthMethodPhone
}

// Account mirrors the persisted representation in the accounts table.
// Exactly one of Email/Phone is set at registration and is immutable afterwards.
type Account struct {
	ID           string
	Name         string
	Email        *string
	Phone        *string
	PasswordHash string
	IsVerified   bool
	OTPHash      *string
	OTPExpiresAt *time.Time
	CreatedAt    time.Time
}

// Contact returns whichever contact field is present.
func (a Account) Contact() string {
	if a.Email != nil {
		return *a.Email
	}
	if a.Phone != nil {
		return *a.Phone
	}
	return ""
}

// HasPendingOTP reports whether an issued code is still stored on the account.
// Expiry is checked lazily at verification time, not here.
func (a Account) HasPendingOTP() bool {
	return a.OTPHash != nil && a.OTPExpiresAt != nil
}
