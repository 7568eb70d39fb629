package address

import (
	"errors"
	"net/http"

	"fuel-express-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for the address book.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new address handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *Handler) Add(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.AddressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	addr, err := h.svc.Add(c.Request().Context(), userID, req)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "All required fields must be filled"})
		}
		c.Logger().Error("Handler.Add: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to add address"})
	}

	return c.JSON(http.StatusCreated, addr)
}

func (h *Handler) Update(c echo.Context) error {
	userID := c.Get("userID").(string)
	addressID := c.Param("addressId")

	var req models.AddressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	addr, err := h.svc.Update(c.Request().Context(), userID, addressID, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Address not found"})
		case errors.Is(err, models.ErrValidation):
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "All required fields must be filled"})
		}
		c.Logger().Error("Handler.Update: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update address"})
	}

	return c.JSON(http.StatusOK, addr)
}

func (h *Handler) List(c echo.Context) error {
	userID := c.Get("userID").(string)

	addresses, err := h.svc.List(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Error("Handler.List: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list addresses"})
	}

	return c.JSON(http.StatusOK, addresses)
}

func (h *Handler) SetDefault(c echo.Context) error {
	userID := c.Get("userID").(string)
	addressID := c.Param("addressId")

	if err := h.svc.SetDefault(c.Request().Context(), userID, addressID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Address not found"})
		}
		c.Logger().Error("Handler.SetDefault: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to set default address"})
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Delete(c echo.Context) error {
	userID := c.Get("userID").(string)
	addressID := c.Param("addressId")

	if err := h.svc.Delete(c.Request().Context(), userID, addressID); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Address not found"})
		case errors.Is(err, models.ErrAddressInUse):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Cannot delete an address that has associated orders"})
		}
		c.Logger().Error("Handler.Delete: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to delete address"})
	}

	return c.NoContent(http.StatusNoContent)
}
