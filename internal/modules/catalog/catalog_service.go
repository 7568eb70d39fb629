package catalog

import (
	"context"
	"fmt"

	"fuel-express-backend/internal/models"

	"github.com/shopspring/decimal"
)

// ServiceInterface defines the contract for the fuel catalog service.
type ServiceInterface interface {
	ListAvailable(ctx context.Context) ([]*models.FuelType, error)
	GetFuel(ctx context.Context, fuelTypeID string) (*models.FuelType, error)
	GetPrice(ctx context.Context, fuelTypeID string) (decimal.Decimal, error)
	ListForOwner(ctx context.Context, ownerID string) ([]*models.FuelType, error)
	UpdateFuel(ctx context.Context, actorID string, actorRole models.Role, fuelTypeID string, req models.UpdateFuelRequest) (*models.FuelType, error)
}

// Service implements the fuel catalog logic.
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new catalog service.
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// ListAvailable returns every fuel type open for ordering.
func (s *Service) ListAvailable(ctx context.Context) ([]*models.FuelType, error) {
	return s.repo.ListAvailable(ctx)
}

// GetFuel returns the live fuel record. Order creation snapshots the price
// from here at submission time.
func (s *Service) GetFuel(ctx context.Context, fuelTypeID string) (*models.FuelType, error) {
	return s.repo.FindByID(ctx, fuelTypeID)
}

// GetPrice returns the current price per liter for a fuel type.
func (s *Service) GetPrice(ctx context.Context, fuelTypeID string) (decimal.Decimal, error) {
	fuel, err := s.repo.FindByID(ctx, fuelTypeID)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("service.GetPrice: %w", err)
	}
	return fuel.PricePerLiter, nil
}

// ListForOwner lists the fuel types across the owner's stations.
func (s *Service) ListForOwner(ctx context.Context, ownerID string) ([]*models.FuelType, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// UpdateFuel changes price or availability. Only the owning station's user
// (or an admin) may do this.
func (s *Service) UpdateFuel(ctx context.Context, actorID string, actorRole models.Role, fuelTypeID string, req models.UpdateFuelRequest) (*models.FuelType, error) {
	if actorRole != models.RoleAdmin {
		ownerID, err := s.repo.StationOwner(ctx, fuelTypeID)
		if err != nil {
			return nil, fmt.Errorf("service.UpdateFuel: %w", err)
		}
		if ownerID != actorID {
			return nil, models.ErrForbidden
		}
	}
	fuel, err := s.repo.Update(ctx, fuelTypeID, req)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateFuel: %w", err)
	}
	return fuel, nil
}
