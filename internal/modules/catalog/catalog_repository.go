package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fuel-express-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the fuel catalog repository.
type RepositoryInterface interface {
	ListAvailable(ctx context.Context) ([]*models.FuelType, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.FuelType, error)
	FindByID(ctx context.Context, fuelTypeID string) (*models.FuelType, error)
	StationOwner(ctx context.Context, fuelTypeID string) (string, error)
	Update(ctx context.Context, fuelTypeID string, req models.UpdateFuelRequest) (*models.FuelType, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new catalog repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const fuelColumns = `id, name, price_per_liter, is_available, description, station_id, created_at, updated_at`

func scanFuel(row pgx.Row) (*models.FuelType, error) {
	var f models.FuelType
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.PricePerLiter,
		&f.IsAvailable,
		&f.Description,
		&f.StationID,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan fuel type: %w", err)
	}
	return &f, nil
}

// ListAvailable returns all fuel types currently open for ordering, in a
// stable order.
func (r *Repository) ListAvailable(ctx context.Context) ([]*models.FuelType, error) {
	query := `SELECT ` + fuelColumns + ` FROM fuel_types WHERE is_available = TRUE ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository.ListAvailable.Query: %w", err)
	}
	defer rows.Close()

	var fuels []*models.FuelType
	for rows.Next() {
		f, err := scanFuel(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.ListAvailable.Scan: %w", err)
		}
		fuels = append(fuels, f)
	}
	return fuels, nil
}

// ListByOwner returns the fuel types of all stations belonging to an owner.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]*models.FuelType, error) {
	query := `
		SELECT ft.id, ft.name, ft.price_per_liter, ft.is_available, ft.description, ft.station_id, ft.created_at, ft.updated_at
		FROM fuel_types ft
		JOIN fuel_stations fs ON fs.id = ft.station_id
		WHERE fs.owner_id = $1
		ORDER BY ft.name`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListByOwner.Query: %w", err)
	}
	defer rows.Close()

	var fuels []*models.FuelType
	for rows.Next() {
		f, err := scanFuel(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.ListByOwner.Scan: %w", err)
		}
		fuels = append(fuels, f)
	}
	return fuels, nil
}

// FindByID retrieves a single fuel type.
func (r *Repository) FindByID(ctx context.Context, fuelTypeID string) (*models.FuelType, error) {
	query := `SELECT ` + fuelColumns + ` FROM fuel_types WHERE id = $1`
	f, err := scanFuel(r.db.QueryRow(ctx, query, fuelTypeID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return f, nil
}

// StationOwner resolves the owner of the station a fuel type belongs to.
// Fuel types without a station return models.ErrNotFound.
func (r *Repository) StationOwner(ctx context.Context, fuelTypeID string) (string, error) {
	query := `
		SELECT fs.owner_id
		FROM fuel_types ft
		JOIN fuel_stations fs ON fs.id = ft.station_id
		WHERE ft.id = $1`
	var ownerID string
	if err := r.db.QueryRow(ctx, query, fuelTypeID).Scan(&ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("repository.StationOwner: %w", err)
	}
	return ownerID, nil
}

// Update modifies a fuel listing's price, availability or description.
func (r *Repository) Update(ctx context.Context, fuelTypeID string, req models.UpdateFuelRequest) (*models.FuelType, error) {
	var setClauses []string
	var args []interface{}
	argIdx := 1

	if req.PricePerLiter != nil {
		setClauses = append(setClauses, fmt.Sprintf("price_per_liter = $%d", argIdx))
		args = append(args, *req.PricePerLiter)
		argIdx++
	}
	if req.IsAvailable != nil {
		setClauses = append(setClauses, fmt.Sprintf("is_available = $%d", argIdx))
		args = append(args, *req.IsAvailable)
		argIdx++
	}
	if req.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *req.Description)
		argIdx++
	}
	if len(setClauses) == 0 {
		return r.FindByID(ctx, fuelTypeID)
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	query := fmt.Sprintf(
		`UPDATE fuel_types SET %s WHERE id = $%d RETURNING `+fuelColumns,
		strings.Join(setClauses, ", "), argIdx,
	)
	args = append(args, fuelTypeID)

	f, err := scanFuel(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.Update: %w", err)
	}
	return f, nil
}
