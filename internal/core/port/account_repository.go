package port

import (
	"context"
	"time"

	"github.com/okunev/learnhub/internal/core/domain"
)

// AccountRepository exposes persistence behavior for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByContact(ctx context.Context, method domain.AuthMethod, value string) (*domain.Account, error)
	// MarkVerified flips the account to verified and clears the pending OTP
	// fields in a single update.
	MarkVerified(ctx context.Context, id string) error
	// SetOTP overwrites the pending OTP hash and expiry, invalidating any
	// previously issued code.
	SetOTP(ctx context.Context, id string, otpHash string, expiresAt time.Time) error
}
