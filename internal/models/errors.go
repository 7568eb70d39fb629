package models

import "errors"

var ErrNotFound = errors.New("requested resource not found")
var ErrForbidden = errors.New("user does not have permission to access this resource")
var ErrConflict = errors.New("resource conflict, item already exists")
var ErrValidation = errors.New("invalid or missing input")
var ErrInvalidCredentials = errors.New("invalid credentials") // email or password provided does not match database record
var ErrInvalidToken = errors.New("token not found or expired")
var ErrAccountNotVerified = errors.New("account email has not been verified")

// ErrSchedulingTooSoon indicates the requested delivery slot falls inside the
// minimum lead-time window between order submission and delivery.
var ErrSchedulingTooSoon = errors.New("delivery must be scheduled at least 2 hours from now")

// ErrInvalidTransition indicates a status change that is not part of the
// forward-only order lifecycle.
var ErrInvalidTransition = errors.New("illegal order status transition")

var ErrOrderCannotBeCancelled = errors.New("order can no longer be cancelled")
var ErrFuelUnavailable = errors.New("fuel type is not available for ordering")

// ErrAddressInUse indicates a delete was blocked because orders still
// reference the address.
var ErrAddressInUse = errors.New("address is referenced by existing orders")

var ErrDuplicatePayment = errors.New("a payment already exists for this order")
var ErrPaymentNotPending = errors.New("payment is not in a pending state")
