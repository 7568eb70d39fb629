package catalog

import (
	"context"
	"errors"
	"testing"

	"fuel-express-backend/internal/models"

	"github.com/shopspring/decimal"
)

type fakeFuelRepo struct {
	fuels  map[string]*models.FuelType
	owners map[string]string // fuel type id -> station owner id
}

func newFakeFuelRepo() *fakeFuelRepo {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	return &fakeFuelRepo{
		fuels: map[string]*models.FuelType{
			"diesel":   {ID: "diesel", Name: "Diesel", PricePerLiter: price("92.50"), IsAvailable: true},
			"petrol":   {ID: "petrol", Name: "Petrol", PricePerLiter: price("105.00"), IsAvailable: true},
			"kerosene": {ID: "kerosene", Name: "Kerosene", PricePerLiter: price("60.00"), IsAvailable: false},
		},
		owners: map[string]string{"diesel": "owner-1", "petrol": "owner-2"},
	}
}

func (f *fakeFuelRepo) ListAvailable(_ context.Context) ([]*models.FuelType, error) {
	var out []*models.FuelType
	for _, fuel := range f.fuels {
		if fuel.IsAvailable {
			c := *fuel
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeFuelRepo) ListByOwner(_ context.Context, ownerID string) ([]*models.FuelType, error) {
	var out []*models.FuelType
	for id, fuel := range f.fuels {
		if f.owners[id] == ownerID {
			c := *fuel
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeFuelRepo) FindByID(_ context.Context, fuelTypeID string) (*models.FuelType, error) {
	fuel, ok := f.fuels[fuelTypeID]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *fuel
	return &c, nil
}

func (f *fakeFuelRepo) StationOwner(_ context.Context, fuelTypeID string) (string, error) {
	owner, ok := f.owners[fuelTypeID]
	if !ok {
		return "", models.ErrNotFound
	}
	return owner, nil
}

func (f *fakeFuelRepo) Update(_ context.Context, fuelTypeID string, req models.UpdateFuelRequest) (*models.FuelType, error) {
	fuel, ok := f.fuels[fuelTypeID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if req.PricePerLiter != nil {
		fuel.PricePerLiter = decimal.NewFromFloat(*req.PricePerLiter)
	}
	if req.IsAvailable != nil {
		fuel.IsAvailable = *req.IsAvailable
	}
	if req.Description != nil {
		fuel.Description = *req.Description
	}
	c := *fuel
	return &c, nil
}

func TestListAvailableExcludesUnavailable(t *testing.T) {
	svc := NewService(newFakeFuelRepo())

	fuels, err := svc.ListAvailable(context.Background())
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(fuels) != 2 {
		t.Fatalf("got %d fuels, want 2", len(fuels))
	}
	for _, fuel := range fuels {
		if !fuel.IsAvailable {
			t.Errorf("unavailable fuel %s listed", fuel.ID)
		}
	}
}

func TestGetPrice(t *testing.T) {
	svc := NewService(newFakeFuelRepo())

	price, err := svc.GetPrice(context.Background(), "diesel")
	if err != nil {
		t.Fatalf("GetPrice: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("92.50")) {
		t.Errorf("price = %s, want 92.50", price)
	}

	if _, err := svc.GetPrice(context.Background(), "jetfuel"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetPrice unknown fuel = %v, want ErrNotFound", err)
	}
}

func TestUpdateFuelOwnerScoping(t *testing.T) {
	newPrice := 95.0
	req := models.UpdateFuelRequest{PricePerLiter: &newPrice}

	t.Run("owner updates own fuel", func(t *testing.T) {
		svc := NewService(newFakeFuelRepo())
		fuel, err := svc.UpdateFuel(context.Background(), "owner-1", models.RoleStationOwner, "diesel", req)
		if err != nil {
			t.Fatalf("UpdateFuel: %v", err)
		}
		if !fuel.PricePerLiter.Equal(decimal.NewFromFloat(95.0)) {
			t.Errorf("price = %s, want 95", fuel.PricePerLiter)
		}
	})

	t.Run("owner blocked on foreign fuel", func(t *testing.T) {
		svc := NewService(newFakeFuelRepo())
		_, err := svc.UpdateFuel(context.Background(), "owner-1", models.RoleStationOwner, "petrol", req)
		if !errors.Is(err, models.ErrForbidden) {
			t.Errorf("UpdateFuel = %v, want ErrForbidden", err)
		}
	})

	t.Run("admin updates anything", func(t *testing.T) {
		svc := NewService(newFakeFuelRepo())
		if _, err := svc.UpdateFuel(context.Background(), "admin-1", models.RoleAdmin, "petrol", req); err != nil {
			t.Fatalf("UpdateFuel as admin: %v", err)
		}
	})
}

func TestUpdateFuelAvailabilityToggle(t *testing.T) {
	repo := newFakeFuelRepo()
	svc := NewService(repo)

	off := false
	if _, err := svc.UpdateFuel(context.Background(), "owner-1", models.RoleStationOwner, "diesel", models.UpdateFuelRequest{IsAvailable: &off}); err != nil {
		t.Fatalf("UpdateFuel: %v", err)
	}

	fuels, _ := svc.ListAvailable(context.Background())
	for _, fuel := range fuels {
		if fuel.ID == "diesel" {
			t.Error("diesel still listed after being marked unavailable")
		}
	}
}

func TestListForOwner(t *testing.T) {
	svc := NewService(newFakeFuelRepo())

	fuels, err := svc.ListForOwner(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("ListForOwner: %v", err)
	}
	if len(fuels) != 1 || fuels[0].ID != "diesel" {
		t.Errorf("fuels = %+v, want just diesel", fuels)
	}
}
