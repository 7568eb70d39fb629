package address

import (
	"context"
	"errors"
	"fmt"

	"fuel-express-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the address repository.
// Default-flag writes are transactional so "at most one default per user"
// holds under concurrent requests.
type RepositoryInterface interface {
	Insert(ctx context.Context, addr *models.Address) (*models.Address, error)
	Update(ctx context.Context, addr *models.Address) (*models.Address, error)
	FindByID(ctx context.Context, addressID string) (*models.Address, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Address, error)
	SetDefault(ctx context.Context, userID, addressID string) error
	Delete(ctx context.Context, addressID string) error
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new address repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const addressColumns = `id, user_id, label, name, phone, address_line1, address_line2, city, state,
	pincode, landmark, is_default, latitude, longitude, created_at, updated_at`

func scanAddress(row pgx.Row) (*models.Address, error) {
	var a models.Address
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Label,
		&a.Name,
		&a.Phone,
		&a.AddressLine1,
		&a.AddressLine2,
		&a.City,
		&a.State,
		&a.Pincode,
		&a.Landmark,
		&a.IsDefault,
		&a.Latitude,
		&a.Longitude,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan address: %w", err)
	}
	return &a, nil
}

// Insert creates an address. When the new address is the default, any prior
// default for the user is cleared in the same transaction.
func (r *Repository) Insert(ctx context.Context, addr *models.Address) (*models.Address, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository.Insert.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if addr.IsDefault {
		_, err = tx.Exec(ctx,
			`UPDATE addresses SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_default`,
			addr.UserID,
		)
		if err != nil {
			return nil, fmt.Errorf("repository.Insert.ClearDefault: %w", err)
		}
	}

	query := `
		INSERT INTO addresses (user_id, label, name, phone, address_line1, address_line2, city, state,
			pincode, landmark, is_default, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + addressColumns

	created, err := scanAddress(tx.QueryRow(ctx, query,
		addr.UserID, addr.Label, addr.Name, addr.Phone, addr.AddressLine1, addr.AddressLine2,
		addr.City, addr.State, addr.Pincode, addr.Landmark, addr.IsDefault, addr.Latitude, addr.Longitude,
	))
	if err != nil {
		return nil, fmt.Errorf("repository.Insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository.Insert.Commit: %w", err)
	}
	return created, nil
}

// Update rewrites an address's fields, clearing any other default in the same
// transaction when this one becomes the default.
func (r *Repository) Update(ctx context.Context, addr *models.Address) (*models.Address, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository.Update.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if addr.IsDefault {
		_, err = tx.Exec(ctx,
			`UPDATE addresses SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_default AND id <> $2`,
			addr.UserID, addr.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("repository.Update.ClearDefault: %w", err)
		}
	}

	query := `
		UPDATE addresses
		SET label = $3, name = $4, phone = $5, address_line1 = $6, address_line2 = $7, city = $8,
		    state = $9, pincode = $10, landmark = $11, is_default = $12, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + addressColumns

	updated, err := scanAddress(tx.QueryRow(ctx, query,
		addr.ID, addr.UserID, addr.Label, addr.Name, addr.Phone, addr.AddressLine1, addr.AddressLine2,
		addr.City, addr.State, addr.Pincode, addr.Landmark, addr.IsDefault,
	))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.Update: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository.Update.Commit: %w", err)
	}
	return updated, nil
}

// FindByID retrieves a single address.
func (r *Repository) FindByID(ctx context.Context, addressID string) (*models.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`
	a, err := scanAddress(r.db.QueryRow(ctx, query, addressID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return a, nil
}

// ListByUser returns the user's addresses, default first, newest next.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*models.Address, error) {
	query := `SELECT ` + addressColumns + `
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListByUser.Query: %w", err)
	}
	defer rows.Close()

	var addresses []*models.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.ListByUser.Scan: %w", err)
		}
		addresses = append(addresses, a)
	}
	return addresses, nil
}

// SetDefault clears every other default for the user and marks this address,
// all in one transaction.
func (r *Repository) SetDefault(ctx context.Context, userID, addressID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.SetDefault.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE addresses SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_default AND id <> $2`,
		userID, addressID,
	)
	if err != nil {
		return fmt.Errorf("repository.SetDefault.Clear: %w", err)
	}

	cmdTag, err := tx.Exec(ctx,
		`UPDATE addresses SET is_default = TRUE, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
		addressID, userID,
	)
	if err != nil {
		return fmt.Errorf("repository.SetDefault: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return tx.Commit(ctx)
}

// Delete removes an address. The foreign key from orders is RESTRICT, so an
// address with historical orders cannot be deleted; that surfaces as
// models.ErrAddressInUse.
func (r *Repository) Delete(ctx context.Context, addressID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, addressID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return models.ErrAddressInUse
		}
		return fmt.Errorf("repository.Delete: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
