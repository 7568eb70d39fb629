package payments

import (
	"errors"
	"net/http"

	"fuel-express-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for payments.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new payment handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// Initiate creates the pending payment record when the customer reaches the
// payment step.
func (h *Handler) Initiate(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.InitiatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	payment, err := h.svc.Initiate(c.Request().Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		case errors.Is(err, models.ErrDuplicatePayment):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "A payment already exists for this order"})
		case errors.Is(err, models.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Order is not awaiting payment"})
		}
		c.Logger().Error("Handler.Initiate: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to initiate payment"})
	}

	return c.JSON(http.StatusCreated, payment)
}

// ConfirmCOD confirms a cash-on-delivery payment, which also confirms the
// order.
func (h *Handler) ConfirmCOD(c echo.Context) error {
	userID := c.Get("userID").(string)
	orderID := c.Param("orderId")

	payment, err := h.svc.ConfirmCOD(c.Request().Context(), userID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order or payment not found"})
		case errors.Is(err, models.ErrValidation):
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Payment is not cash on delivery"})
		case errors.Is(err, models.ErrPaymentNotPending):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Payment has already been settled"})
		case errors.Is(err, models.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Order cannot be confirmed in its current state"})
		}
		c.Logger().Error("Handler.ConfirmCOD: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to confirm payment"})
	}

	return c.JSON(http.StatusOK, payment)
}

// GatewayCallback is the endpoint the payment gateway drives once an online
// payment settles.
func (h *Handler) GatewayCallback(c echo.Context) error {
	var req struct {
		TransactionID string `json:"transaction_id" validate:"required"`
		Status        string `json:"status" validate:"required,oneof=succeeded failed"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	var payment *models.Payment
	var err error
	if req.Status == "failed" {
		payment, err = h.svc.FailOnline(c.Request().Context(), req.TransactionID)
	} else {
		payment, err = h.svc.ConfirmOnline(c.Request().Context(), req.TransactionID)
	}
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Unknown transaction"})
		case errors.Is(err, models.ErrPaymentNotPending):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Payment has already been settled"})
		case errors.Is(err, models.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Order cannot be confirmed in its current state"})
		}
		c.Logger().Error("Handler.GatewayCallback: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to confirm payment"})
	}

	return c.JSON(http.StatusOK, payment)
}

// GetForOrder returns the payment record for one of the caller's orders.
func (h *Handler) GetForOrder(c echo.Context) error {
	userID := c.Get("userID").(string)
	orderID := c.Param("orderId")

	payment, err := h.svc.GetForOrder(c.Request().Context(), userID, orderID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Payment not found"})
		}
		c.Logger().Error("Handler.GetForOrder: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve payment"})
	}

	return c.JSON(http.StatusOK, payment)
}
