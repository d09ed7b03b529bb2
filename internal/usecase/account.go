package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/okunev/learnhub/internal/core/domain"
	"github.com/okunev/learnhub/internal/core/port"
	"github.com/okunev/learnhub/internal/infra/security"
	"github.com/okunev/learnhub/internal/repository"
)

const (
	otpDeliveryEmail = "email"
	otpDeliverySMS   = "sms"

	defaultOTPTTL = 10 * time.Minute
)

var (
	// ErrAccountExists indicates the contact is already registered.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidCredentials indicates the provided contact or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountUnverified indicates the account has not completed OTP verification.
	ErrAccountUnverified = errors.New("account not verified")
	// ErrAccountNotFound indicates no account matches the given identifier.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountVerified indicates the account is already verified.
	ErrAccountVerified = errors.New("account already verified")
	// ErrOTPInvalid indicates the submitted code does not match the pending one.
	ErrOTPInvalid = errors.New("otp invalid")
	// ErrOTPExpired indicates the pending code exists but its window has passed.
	ErrOTPExpired = errors.New("otp expired")
	// ErrPasswordPolicyViolation indicates the password fails the minimum requirements.
	ErrPasswordPolicyViolation = errors.New("password does not meet requirements")
	// ErrInvalidAccessToken indicates the session token is malformed or tampered with.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrExpiredAccessToken indicates the session token has expired.
	ErrExpiredAccessToken = errors.New("access token expired")
)

// AccountService coordinates registration, OTP verification and login.
type AccountService struct {
	accounts port.AccountRepository
	events   port.EventPublisher
	policy   *security.PasswordPolicy
	tokens   *security.TokenIssuer
	otpTTL   time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewAccountService constructs an AccountService instance.
func NewAccountService(
	accounts port.AccountRepository,
	events port.EventPublisher,
	policy *security.PasswordPolicy,
	tokens *security.TokenIssuer,
	otpTTL time.Duration,
	logger *zap.Logger,
) *AccountService {
	if policy == nil {
		policy = security.NewPasswordPolicy()
	}
	if otpTTL <= 0 {
		otpTTL = defaultOTPTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		accounts: accounts,
		events:   events,
		policy:   policy,
		tokens:   tokens,
		otpTTL:   otpTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *AccountService) WithClock(now func() time.Time) *AccountService {
	if now != nil {
		s.now = now
	}
	return s
}

// RegisterInput captures a registration request. Exactly one contact channel
// is used, selected by Method.
type RegisterInput struct {
	Name     string
	Method   domain.AuthMethod
	Contact  string
	Password string
}

// Register creates an unverified account and issues its first OTP. The code
// never leaves the service in plaintext except through the delivery event.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	contact := strings.TrimSpace(input.Contact)

	if name == "" {
		return domain.Account{}, fmt.Errorf("name is required")
	}
	if !input.Method.Valid() {
		return domain.Account{}, fmt.Errorf("auth method must be email or phone")
	}
	if contact == "" {
		return domain.Account{}, fmt.Errorf("%s is required", input.Method)
	}

	if err := s.policy.Validate(input.Password); err != nil {
		return domain.Account{}, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	code, err := security.GenerateOTP()
	if err != nil {
		return domain.Account{}, err
	}

	now := s.now().UTC()
	otpHash := security.HashToken(code)
	otpExpiresAt := now.Add(s.otpTTL)

	account := domain.Account{
		ID:           uuid.NewString(),
		Name:         name,
		PasswordHash: passwordHash,
		IsVerified:   false,
		OTPHash:      &otpHash,
		OTPExpiresAt: &otpExpiresAt,
		CreatedAt:    now,
	}
	if input.Method == domain.AuthMethodEmail {
		account.Email = &contact
	} else {
		account.Phone = &contact
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Account{}, ErrAccountExists
		}
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("account registered",
		zap.String("account_id", account.ID),
		zap.String("auth_method", string(input.Method)),
		zap.Int("password_score", s.policy.Strength(input.Password, name, contact)),
	)

	s.publishRegistered(ctx, account, now)
	s.publishOTP(ctx, account, input.Method, code, otpExpiresAt, now)

	return account, nil
}

// Login validates credentials and mints a session token. Unknown contacts and
// wrong passwords are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, method domain.AuthMethod, contact, password string) (string, domain.Account, error) {
	contact = strings.TrimSpace(contact)
	if !method.Valid() || contact == "" || password == "" {
		return "", domain.Account{}, ErrInvalidCredentials
	}

	account, err := s.accounts.GetByContact(ctx, method, contact)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.Account{}, ErrInvalidCredentials
		}
		return "", domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}

	ok, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return "", domain.Account{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", domain.Account{}, ErrInvalidCredentials
	}

	if !account.IsVerified {
		return "", domain.Account{}, ErrAccountUnverified
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return "", domain.Account{}, fmt.Errorf("issue token: %w", err)
	}

	return token, *account, nil
}

// VerifyOTP checks the submitted code against the pending one and flips the
// account to verified. Verification clears the stored code, so a code is
// single-use. Successful verification doubles as a first login, so a session
// token is minted alongside.
func (s *AccountService) VerifyOTP(ctx context.Context, method domain.AuthMethod, contact, code string) (string, domain.Account, error) {
	contact = strings.TrimSpace(contact)
	code = strings.TrimSpace(code)
	if !method.Valid() || contact == "" {
		return "", domain.Account{}, ErrAccountNotFound
	}
	if code == "" {
		return "", domain.Account{}, ErrOTPInvalid
	}

	account, err := s.accounts.GetByContact(ctx, method, contact)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.Account{}, ErrAccountNotFound
		}
		return "", domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}

	// A verified account has no pending OTP, so replaying a consumed code
	// falls through to the invalid case.
	if !account.HasPendingOTP() {
		return "", domain.Account{}, ErrOTPInvalid
	}
	// A code is invalid from the expiry instant onward.
	if !s.now().UTC().Before(account.OTPExpiresAt.UTC()) {
		return "", domain.Account{}, ErrOTPExpired
	}
	if !security.TokensEqual(security.HashToken(code), *account.OTPHash) {
		return "", domain.Account{}, ErrOTPInvalid
	}

	if err := s.accounts.MarkVerified(ctx, account.ID); err != nil {
		return "", domain.Account{}, fmt.Errorf("mark verified: %w", err)
	}

	account.IsVerified = true
	account.OTPHash = nil
	account.OTPExpiresAt = nil

	verifiedAt := s.now().UTC()
	if s.events != nil {
		event := domain.AccountVerifiedEvent{
			EventID:    uuid.NewString(),
			AccountID:  account.ID,
			VerifiedAt: verifiedAt,
		}
		if err := s.events.PublishAccountVerified(ctx, event); err != nil {
			s.logger.Warn("publish account verified event failed",
				zap.String("account_id", account.ID),
				zap.Error(err),
			)
		}
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return "", domain.Account{}, fmt.Errorf("issue token: %w", err)
	}

	return token, *account, nil
}

// ResendOTP replaces the pending code with a fresh one. The previous code
// stops working immediately.
func (s *AccountService) ResendOTP(ctx context.Context, method domain.AuthMethod, contact string) error {
	contact = strings.TrimSpace(contact)
	if !method.Valid() || contact == "" {
		return ErrAccountNotFound
	}

	account, err := s.accounts.GetByContact(ctx, method, contact)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	if account.IsVerified {
		return ErrAccountVerified
	}

	code, err := security.GenerateOTP()
	if err != nil {
		return err
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.otpTTL)

	if err := s.accounts.SetOTP(ctx, account.ID, security.HashToken(code), expiresAt); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	s.publishOTP(ctx, *account, method, code, expiresAt, now)

	return nil
}

// Profile returns the account for an authenticated subject.
func (s *AccountService) Profile(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	return account, nil
}

// ParseAccessToken validates a session token and returns the account id it
// is bound to.
func (s *AccountService) ParseAccessToken(token string) (string, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, security.ErrExpiredToken) {
			return "", ErrExpiredAccessToken
		}
		return "", ErrInvalidAccessToken
	}
	return claims.AccountID, nil
}

func (s *AccountService) publishRegistered(ctx context.Context, account domain.Account, at time.Time) {
	if s.events == nil {
		return
	}
	event := domain.AccountRegisteredEvent{
		EventID:      uuid.NewString(),
		AccountID:    account.ID,
		Name:         account.Name,
		Email:        account.Email,
		Phone:        account.Phone,
		RegisteredAt: at,
	}
	if err := s.events.PublishAccountRegistered(ctx, event); err != nil {
		s.logger.Warn("publish account registered event failed",
			zap.String("account_id", account.ID),
			zap.Error(err),
		)
	}
}

func (s *AccountService) publishOTP(ctx context.Context, account domain.Account, method domain.AuthMethod, code string, expiresAt, issuedAt time.Time) {
	if s.events == nil {
		return
	}

	delivery := otpDeliveryEmail
	if method == domain.AuthMethodPhone {
		delivery = otpDeliverySMS
	}

	event := domain.OTPIssuedEvent{
		EventID:   uuid.NewString(),
		AccountID: account.ID,
		Delivery:  delivery,
		Contact:   account.Contact(),
		Code:      code,
		ExpiresAt: expiresAt,
		IssuedAt:  issuedAt,
	}
	if err := s.events.PublishOTPIssued(ctx, event); err != nil {
		s.logger.Warn("publish otp issued event failed",
			zap.String("account_id", account.ID),
			zap.Error(err),
		)
	}
}
