package orders

import (
	"errors"
	"net/http"
	"strconv"

	"fuel-express-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for orders.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate // For request body validation
}

// NewHandler creates a new order handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *Handler) Create(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	order, err := h.svc.Create(c.Request().Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Fuel type or address not found"})
		case errors.Is(err, models.ErrForbidden):
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Address does not belong to you"})
		case errors.Is(err, models.ErrFuelUnavailable):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Selected fuel is currently unavailable"})
		case errors.Is(err, models.ErrSchedulingTooSoon):
			return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Message: "Delivery must be scheduled at least 2 hours from now"})
		case errors.Is(err, models.ErrValidation):
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid order details"})
		}
		c.Logger().Error("Handler.Create: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to place order"})
	}

	return c.JSON(http.StatusCreated, order)
}

func (h *Handler) ListMine(c echo.Context) error {
	userID := c.Get("userID").(string)
	page, limit := pagination(c)

	orders, total, err := h.svc.ListUserOrders(c.Request().Context(), userID, page, limit)
	if err != nil {
		c.Logger().Error("Handler.ListMine: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve orders"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"orders": orders, "total": total})
}

func (h *Handler) GetDetails(c echo.Context) error {
	userID := c.Get("userID").(string)
	orderID := c.Param("orderId")

	order, err := h.svc.GetDetails(c.Request().Context(), orderID, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		}
		c.Logger().Error("Handler.GetDetails: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve order details"})
	}

	return c.JSON(http.StatusOK, order)
}

// GetByNumber looks an order up by its human-facing order number, the id
// printed on receipts and confirmation mail.
func (h *Handler) GetByNumber(c echo.Context) error {
	userID := c.Get("userID").(string)
	orderNumber := c.Param("orderNumber")

	order, err := h.svc.GetByNumber(c.Request().Context(), orderNumber, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		}
		c.Logger().Error("Handler.GetByNumber: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve order"})
	}

	return c.JSON(http.StatusOK, order)
}

func (h *Handler) Tracking(c echo.Context) error {
	userID := c.Get("userID").(string)
	orderID := c.Param("orderId")

	entries, err := h.svc.Tracking(c.Request().Context(), orderID, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		}
		c.Logger().Error("Handler.Tracking: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve tracking history"})
	}

	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) Cancel(c echo.Context) error {
	userID := c.Get("userID").(string)
	orderID := c.Param("orderId")

	if err := h.svc.Cancel(c.Request().Context(), orderID, userID); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		case errors.Is(err, models.ErrOrderCannotBeCancelled):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Order can no longer be cancelled"})
		}
		c.Logger().Error("Handler.Cancel: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to cancel order"})
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Dashboard(c echo.Context) error {
	userID := c.Get("userID").(string)

	summary, err := h.svc.Dashboard(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Error("Handler.Dashboard: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to load dashboard"})
	}

	return c.JSON(http.StatusOK, summary)
}

// ListStationOrders lists orders against the calling owner's stations.
func (h *Handler) ListStationOrders(c echo.Context) error {
	ownerID := c.Get("userID").(string)
	page, limit := pagination(c)

	orders, total, err := h.svc.ListStationOrders(c.Request().Context(), ownerID, page, limit)
	if err != nil {
		c.Logger().Error("Handler.ListStationOrders: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve station orders"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"orders": orders, "total": total})
}

// UpdateStatus moves an order along its lifecycle (owner or admin).
func (h *Handler) UpdateStatus(c echo.Context) error {
	actorID := c.Get("userID").(string)
	role, _ := models.ParseRole(c.Get("userRole").(string))
	orderID := c.Param("orderId")

	var req models.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	order, err := h.svc.UpdateStatus(c.Request().Context(), orderID, actorID, role, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		case errors.Is(err, models.ErrForbidden):
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Cannot update this order"})
		case errors.Is(err, models.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Illegal status transition"})
		case errors.Is(err, models.ErrValidation):
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Unknown order status"})
		}
		c.Logger().Error("Handler.UpdateStatus: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update order status"})
	}

	return c.JSON(http.StatusOK, order)
}

func pagination(c echo.Context) (int, int) {
	page := 1
	limit := 10
	if pageStr := c.QueryParam("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	return page, limit
}
