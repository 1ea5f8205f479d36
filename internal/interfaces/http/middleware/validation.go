package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/farmadist/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator makes validation errors report json (or form) field names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
	}
}

func fieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
	}
	if name == "" {
		name = strings.SplitN(fld.Tag.Get("uri"), ",", 2)[0]
	}
	return name
}

// ValidationDetails converts binding errors into per-field details.
// It returns nil when err is not a validator error (malformed JSON, wrong types).
func ValidationDetails(err error) []dto.ValidationDetail {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make([]dto.ValidationDetail, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, dto.ValidationDetail{
			Field:   validationPath(e),
			Message: validationMessage(e),
		})
	}
	return details
}

// HandleBindingError writes a 400 for a failed ShouldBind call
func HandleBindingError(c *gin.Context, err error) {
	requestID := GetRequestID(c)
	if details := ValidationDetails(err); details != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewValidationErrorResponse(requestID, details))
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
		dto.ErrCodeInvalidJSON, "Request body or parameters are malformed", requestID, nil,
	))
}

// validationPath drops the top-level struct name, so "RegisterSaleBody.lines[0].quantity"
// becomes "lines[0].quantity"
func validationPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Kind() == reflect.Slice {
			return "Must contain at least " + e.Param() + " item(s)"
		}
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.Slice {
			return "Must contain at most " + e.Param() + " item(s)"
		}
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "ne":
		return "Must not be " + e.Param()
	case "dive":
		return "Invalid item"
	default:
		return "Invalid value"
	}
}
