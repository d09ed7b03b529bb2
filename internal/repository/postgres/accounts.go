package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okunev/learnhub/internal/core/domain"
	"github.com/okunev/learnhub/internal/repository"
)

// AccountRepository implements port.AccountRepository using PostgreSQL.
type AccountRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository wires a PostgreSQL-backed account repository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithExecutor returns a repository instance operating over the supplied
// executor (a transaction or a mock).
func (r *AccountRepository) WithExecutor(exec pgExecutor) *AccountRepository {
	if exec == nil {
		return r
	}
	return &AccountRepository{
		pool:    r.pool,
		exec:    exec,
		builder: r.builder,
	}
}

// Create inserts a new account row. Sparse unique indexes on email and phone
// surface duplicates as ErrDuplicate.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	var emailValue any
	if account.Email != nil && *account.Email != "" {
		emailValue = *account.Email
	}

	var phoneValue any
	if account.Phone != nil && *account.Phone != "" {
		phoneValue = *account.Phone
	}

	query := r.builder.Insert("accounts").
		Columns(
			"id",
			"name",
			"email",
			"phone",
			"password_hash",
			"is_verified",
			"otp_hash",
			"otp_expires_at",
			"created_at",
		).
		Values(
			account.ID,
			account.Name,
			emailValue,
			phoneValue,
			account.PasswordHash,
			account.IsVerified,
			account.OTPHash,
			account.OTPExpiresAt,
			account.CreatedAt,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	stmt, args, err := r.selectAccounts().
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	return r.scanAccount(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByContact retrieves an account by its unique email or phone field.
func (r *AccountRepository) GetByContact(ctx context.Context, method domain.AuthMethod, value string) (*domain.Account, error) {
	column := "email"
	if method == domain.AuthMethodPhone {
		column = "phone"
	}

	stmt, args, err := r.selectAccounts().
		Where(squirrel.Eq{column: value}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account by contact sql: %w", err)
	}

	return r.scanAccount(r.exec.QueryRow(ctx, stmt, args...))
}

// MarkVerified flips the account to verified and clears the pending OTP in
// one statement, so a consumed code can never match again.
func (r *AccountRepository) MarkVerified(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("accounts").
		Set("is_verified", true).
		Set("otp_hash", nil).
		Set("otp_expires_at", nil).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build verify account sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("verify account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetOTP overwrites the pending OTP hash and expiry. Any previously issued
// code becomes invalid immediately.
func (r *AccountRepository) SetOTP(ctx context.Context, id string, otpHash string, expiresAt time.Time) error {
	stmt, args, err := r.builder.Update("accounts").
		Set("otp_hash", otpHash).
		Set("otp_expires_at", expiresAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set otp sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("set otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *AccountRepository) selectAccounts() squirrel.SelectBuilder {
	return r.builder.Select(
		"id",
		"name",
		"email",
		"phone",
		"password_hash",
		"is_verified",
		"otp_hash",
		"otp_expires_at",
		"created_at",
	).From("accounts")
}

func (r *AccountRepository) scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		email        sql.NullString
		phone        sql.NullString
		otpHash      sql.NullString
		otpExpiresAt *time.Time
		account      domain.Account
	)

	if err := row.Scan(
		&account.ID,
		&account.Name,
		&email,
		&phone,
		&account.PasswordHash,
		&account.IsVerified,
		&otpHash,
		&otpExpiresAt,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	if email.Valid {
		val := email.String
		account.Email = &val
	}
	if phone.Valid {
		val := phone.String
		account.Phone = &val
	}
	if otpHash.Valid {
		val := otpHash.String
		account.OTPHash = &val
	}
	account.OTPExpiresAt = otpExpiresAt

	return &account, nil
}
