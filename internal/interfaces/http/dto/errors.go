package dto

import (
	"errors"
	"net/http"
	"sort"

	"github.com/farmadist/backend/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeInternal is used for anything that is not a domain error
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation  = "ERR_VALIDATION"
	ErrCodeBadRequest  = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeDuplicateRequest    = "ERR_DUPLICATE_REQUEST"
)

// Business rule error codes
const (
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	ErrCodeInvalidTransition = "ERR_INVALID_TRANSITION"
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
)

// Limit error codes
const (
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,

	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition: http.StatusUnprocessableEntity,
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodes maps the code of a shared.DomainError to its API code
var domainCodes = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeConflict,
	"INVALID_INPUT":        ErrCodeValidation,
	"VALIDATION_FAILED":    ErrCodeValidation,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"INVALID_STATE":        ErrCodeInvalidState,
	"INVALID_TRANSITION":   ErrCodeInvalidTransition,
	"INSUFFICIENT_STOCK":   ErrCodeInsufficientStock,
	"DUPLICATE_REQUEST":    ErrCodeDuplicateRequest,
}

// InsufficientStockDetails is the structured payload of ERR_INSUFFICIENT_STOCK
type InsufficientStockDetails struct {
	ProductID string `json:"product_id"`
	Available int64  `json:"available"`
	Requested int64  `json:"requested"`
}

// InvalidTransitionDetails is the structured payload of ERR_INVALID_TRANSITION
type InvalidTransitionDetails struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// NotFoundDetails is the structured payload of ERR_NOT_FOUND
type NotFoundDetails struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
}

// MapError classifies an error into an API code, message and optional details.
// Anything that is not a domain error is reported as ERR_INTERNAL with a generic
// message so internals never leak to clients.
func MapError(err error) (code, message string, details any) {
	var (
		notFound     *shared.NotFoundError
		insufficient *shared.InsufficientStockError
		transition   *shared.InvalidTransitionError
		validation   *shared.ValidationError
		domainErr    *shared.DomainError
	)

	switch {
	case errors.As(err, &insufficient):
		return ErrCodeInsufficientStock, insufficient.Error(), InsufficientStockDetails{
			ProductID: insufficient.ProductID,
			Available: insufficient.Available,
			Requested: insufficient.Requested,
		}
	case errors.As(err, &transition):
		return ErrCodeInvalidTransition, transition.Error(), InvalidTransitionDetails{From: transition.From, To: transition.To}
	case errors.As(err, &notFound):
		return ErrCodeNotFound, notFound.Error(), NotFoundDetails{Entity: notFound.Entity, ID: notFound.ID}
	case errors.As(err, &validation):
		return ErrCodeValidation, "Request validation failed", validationDetails(validation)
	case errors.As(err, &domainErr):
		if code, ok := domainCodes[domainErr.Code]; ok {
			return code, domainErr.Message, nil
		}
	}
	return ErrCodeInternal, "An unexpected error occurred", nil
}

func validationDetails(v *shared.ValidationError) []ValidationDetail {
	fields := make([]string, 0, len(v.Fields))
	for f := range v.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	details := make([]ValidationDetail, len(fields))
	for i, f := range fields {
		details[i] = ValidationDetail{Field: f, Message: v.Fields[f]}
	}
	return details
}
