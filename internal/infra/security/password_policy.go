package security

import (
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

const minPasswordLength = 6

// PasswordValidationError represents a password policy violation.
type PasswordValidationError struct {
	Code    string
	Message string
}

// Error implements error for PasswordValidationError.
func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordPolicy validates and scores candidate passwords at registration.
type PasswordPolicy struct {
	minLength int
}

// NewPasswordPolicy constructs the service password policy.
func NewPasswordPolicy() *PasswordPolicy {
	return &PasswordPolicy{minLength: minPasswordLength}
}

// Validate ensures the password meets the minimum requirements.
func (p *PasswordPolicy) Validate(password string) error {
	if p == nil {
		return fmt.Errorf("password policy not configured")
	}
	if len([]rune(password)) < p.minLength {
		return &PasswordValidationError{
			Code:    "min_length",
			Message: fmt.Sprintf("password must be at least %d characters long", p.minLength),
		}
	}
	return nil
}

// Strength returns the zxcvbn score (0-4) for the password, considering the
// supplied user inputs (name, contact) as weak context. Used for observability;
// weak passwords are accepted but logged.
func (p *PasswordPolicy) Strength(password string, userInputs ...string) int {
	if password == "" {
		return 0
	}
	return zxcvbn.PasswordStrength(password, userInputs).Score
}
