package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FieldError is one entry of the details list on a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Pagination describes a page of a list result.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// APIResponse is the success envelope. Data is always present, even for an
// empty list, so callers can rely on the field existing.
type APIResponse[T any] struct {
	Success    bool        `json:"success"`
	Data       T           `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// APIError is the failure envelope.
type APIError struct {
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// Success writes the success envelope with the given status code.
func Success[T any](c *gin.Context, status int, data T) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, APIResponse[T]{Success: true, Data: data})
}

// SuccessPage writes a 200 success envelope extended with pagination.
func SuccessPage[T any](c *gin.Context, data T, p Pagination) {
	c.JSON(http.StatusOK, APIResponse[T]{Success: true, Data: data, Pagination: &p})
}

// Error writes the failure envelope with the given status code.
func Error(c *gin.Context, status int, message string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, APIError{Success: false, Error: message})
}

// ErrorWithDetails writes the failure envelope with field-level details.
func ErrorWithDetails(c *gin.Context, status int, message string, details []FieldError) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, APIError{Success: false, Error: message, Details: details})
}
