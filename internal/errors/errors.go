package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrCategoryNotFound is returned when a category does not exist for the user.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrExpenseNotFound is returned when an expense does not exist for the user.
	ErrExpenseNotFound = errors.New("expense not found")
	// ErrCategoryExists is returned when the user already has a category with that name.
	ErrCategoryExists = errors.New("category already exists")
	// ErrInvalidAmount is returned when amount is invalid.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidBudget is returned when a budget amount is negative.
	ErrInvalidBudget = errors.New("budget amount must not be negative")
	// ErrInvalidBudgetPeriod is returned for a period outside weekly/monthly/yearly.
	ErrInvalidBudgetPeriod = errors.New("budget period must be weekly, monthly or yearly")
	// ErrInvalidCategoryName is returned for an empty category name.
	ErrInvalidCategoryName = errors.New("category name is required")
	// ErrInvalidTitle is returned for an expense title that is blank after trimming.
	ErrInvalidTitle = errors.New("expense title is required")
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// ToEnvelope converts an HTTPError to a failed Envelope.
func (e *HTTPError) ToEnvelope() Envelope {
	return Envelope{
		Success: false,
		Error:   e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors become an
// opaque 500 so store details never reach the client.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrCategoryNotFound):
		return NewHTTPError(http.StatusNotFound, ErrCategoryNotFound.Error(), "CATEGORY_NOT_FOUND")
	case errors.Is(err, ErrExpenseNotFound):
		return NewHTTPError(http.StatusNotFound, ErrExpenseNotFound.Error(), "EXPENSE_NOT_FOUND")
	case errors.Is(err, ErrCategoryExists):
		return NewHTTPError(http.StatusConflict, ErrCategoryExists.Error(), "CATEGORY_EXISTS")
	case errors.Is(err, ErrInvalidAmount):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidAmount.Error(), "INVALID_AMOUNT")
	case errors.Is(err, ErrInvalidBudget):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidBudget.Error(), "INVALID_BUDGET")
	case errors.Is(err, ErrInvalidBudgetPeriod):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidBudgetPeriod.Error(), "INVALID_BUDGET_PERIOD")
	case errors.Is(err, ErrInvalidCategoryName):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidCategoryName.Error(), "INVALID_CATEGORY_NAME")
	case errors.Is(err, ErrInvalidTitle):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidTitle.Error(), "INVALID_TITLE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
