package models

// ErrorResponse is the JSON body returned on handler errors.
type ErrorResponse struct {
	Message string `json:"message"`
}
