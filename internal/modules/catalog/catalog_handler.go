package catalog

import (
	"errors"
	"net/http"

	"fuel-express-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for the fuel catalog.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new catalog handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// ListAvailable is the public fuel listing customers order from.
func (h *Handler) ListAvailable(c echo.Context) error {
	fuels, err := h.svc.ListAvailable(c.Request().Context())
	if err != nil {
		c.Logger().Error("Handler.ListAvailable: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list fuels"})
	}
	return c.JSON(http.StatusOK, fuels)
}

// GetPrice returns the live price for one fuel type.
func (h *Handler) GetPrice(c echo.Context) error {
	fuel, err := h.svc.GetFuel(c.Request().Context(), c.Param("fuelId"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Fuel type not found"})
		}
		c.Logger().Error("Handler.GetPrice: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to fetch fuel price"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"name":            fuel.Name,
		"price_per_liter": fuel.PricePerLiter,
		"description":     fuel.Description,
	})
}

// ListMine lists the calling owner's fuel listings.
func (h *Handler) ListMine(c echo.Context) error {
	ownerID := c.Get("userID").(string)

	fuels, err := h.svc.ListForOwner(c.Request().Context(), ownerID)
	if err != nil {
		c.Logger().Error("Handler.ListMine: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list station fuels"})
	}
	return c.JSON(http.StatusOK, fuels)
}

// Update changes a fuel listing's price or availability.
func (h *Handler) Update(c echo.Context) error {
	actorID := c.Get("userID").(string)
	role, _ := models.ParseRole(c.Get("userRole").(string))

	var req models.UpdateFuelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	fuel, err := h.svc.UpdateFuel(c.Request().Context(), actorID, role, c.Param("fuelId"), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Fuel type not found"})
		case errors.Is(err, models.ErrForbidden):
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "You do not manage this fuel listing"})
		}
		c.Logger().Error("Handler.Update: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update fuel"})
	}
	return c.JSON(http.StatusOK, fuel)
}
