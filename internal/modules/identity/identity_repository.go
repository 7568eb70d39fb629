package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fuel-express-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the user repository.
type RepositoryInterface interface {
	Insert(ctx context.Context, u *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, userID string) (*models.User, error)
	MarkVerified(ctx context.Context, userID string) error
	SetOTP(ctx context.Context, userID, code string, expiry time.Time) error
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new user repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const userColumns = `id, username, email, phone, password_hash, role, is_verified, is_active,
	otp_code, otp_expiry, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Phone,
		&u.PasswordHash,
		&u.Role,
		&u.IsVerified,
		&u.IsActive,
		&u.OTPCode,
		&u.OTPExpiry,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// Insert creates a new user. Username and email are unique; a violation maps
// to models.ErrConflict.
func (r *Repository) Insert(ctx context.Context, u *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, phone, password_hash, role, is_verified, is_active, otp_code, otp_expiry)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $8)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRow(ctx, query,
		u.Username, u.Email, u.Phone, u.PasswordHash, u.Role, u.IsVerified, u.OTPCode, u.OTPExpiry,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("repository.Insert: %w", err)
	}
	return created, nil
}

// FindByEmail retrieves a user by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByEmail: %w", err)
	}
	return u, nil
}

// FindByID retrieves a user by ID.
func (r *Repository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return u, nil
}

// MarkVerified flips the verification flag and clears the OTP.
func (r *Repository) MarkVerified(ctx context.Context, userID string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE users SET is_verified = TRUE, otp_code = NULL, otp_expiry = NULL, updated_at = NOW() WHERE id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("repository.MarkVerified: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SetOTP stores a fresh verification code.
func (r *Repository) SetOTP(ctx context.Context, userID, code string, expiry time.Time) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE users SET otp_code = $2, otp_expiry = $3, updated_at = NOW() WHERE id = $1`,
		userID, code, expiry,
	)
	if err != nil {
		return fmt.Errorf("repository.SetOTP: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
