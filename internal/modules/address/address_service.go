package address

import (
	"context"
	"fmt"
	"strings"

	"fuel-express-backend/internal/models"
)

// ServiceInterface defines the contract for the address book service.
type ServiceInterface interface {
	Add(ctx context.Context, userID string, req models.AddressRequest) (*models.Address, error)
	Update(ctx context.Context, userID, addressID string, req models.AddressRequest) (*models.Address, error)
	List(ctx context.Context, userID string) ([]*models.Address, error)
	GetAddress(ctx context.Context, addressID string) (*models.Address, error)
	SetDefault(ctx context.Context, userID, addressID string) error
	Delete(ctx context.Context, userID, addressID string) error
}

// Service implements the address book logic.
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new address service.
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// Add stores a new delivery address. Required fields must be non-empty after
// trimming; a requested default clears the previous one atomically.
func (s *Service) Add(ctx context.Context, userID string, req models.AddressRequest) (*models.Address, error) {
	addr, err := buildAddress(userID, req)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Insert(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("service.Add: %w", err)
	}
	return created, nil
}

// Update rewrites an existing address after verifying ownership.
func (s *Service) Update(ctx context.Context, userID, addressID string, req models.AddressRequest) (*models.Address, error) {
	existing, err := s.repo.FindByID(ctx, addressID)
	if err != nil {
		return nil, fmt.Errorf("service.Update: %w", err)
	}
	if existing.UserID != userID {
		return nil, models.ErrNotFound
	}

	addr, err := buildAddress(userID, req)
	if err != nil {
		return nil, err
	}
	addr.ID = addressID
	updated, err := s.repo.Update(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("service.Update: %w", err)
	}
	return updated, nil
}

// List returns the user's addresses.
func (s *Service) List(ctx context.Context, userID string) ([]*models.Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetAddress resolves an address by ID without an ownership check; callers
// that act on behalf of a user must verify UserID themselves.
func (s *Service) GetAddress(ctx context.Context, addressID string) (*models.Address, error) {
	return s.repo.FindByID(ctx, addressID)
}

// SetDefault designates the address as the user's delivery default.
func (s *Service) SetDefault(ctx context.Context, userID, addressID string) error {
	if err := s.repo.SetDefault(ctx, userID, addressID); err != nil {
		return fmt.Errorf("service.SetDefault: %w", err)
	}
	return nil
}

// Delete removes an address after verifying ownership. Deletion is blocked
// while orders reference the address.
func (s *Service) Delete(ctx context.Context, userID, addressID string) error {
	existing, err := s.repo.FindByID(ctx, addressID)
	if err != nil {
		return fmt.Errorf("service.Delete: %w", err)
	}
	if existing.UserID != userID {
		return models.ErrNotFound
	}
	if err := s.repo.Delete(ctx, addressID); err != nil {
		return fmt.Errorf("service.Delete: %w", err)
	}
	return nil
}

// buildAddress trims and validates the request's textual fields.
func buildAddress(userID string, req models.AddressRequest) (*models.Address, error) {
	addr := &models.Address{
		UserID:       userID,
		Label:        strings.TrimSpace(req.Label),
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		AddressLine1: strings.TrimSpace(req.AddressLine1),
		AddressLine2: strings.TrimSpace(req.AddressLine2),
		City:         strings.TrimSpace(req.City),
		State:        strings.TrimSpace(req.State),
		Pincode:      strings.TrimSpace(req.Pincode),
		Landmark:     strings.TrimSpace(req.Landmark),
		IsDefault:    req.IsDefault,
	}
	if addr.Label == "" {
		addr.Label = "Home"
	}
	for _, required := range []string{addr.Name, addr.Phone, addr.AddressLine1, addr.City, addr.State, addr.Pincode} {
		if required == "" {
			return nil, models.ErrValidation
		}
	}
	return addr, nil
}
