package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Validation failures. Every one of them wraps ErrValidation.
var (
	ErrValidation              = errors.New("validation failed")
	ErrMissingRequiredFields   = fmt.Errorf("%w: missing required attributes", ErrValidation)
	ErrTooManyTags             = fmt.Errorf("%w: too many tags have been submitted", ErrValidation)
	ErrBlockedTags             = fmt.Errorf("%w: the following tags are blocked", ErrValidation)
	ErrDescriptionTooLong      = fmt.Errorf("%w: the description is too long", ErrValidation)
	ErrDescriptionTooManyLines = fmt.Errorf("%w: the description has too many lines", ErrValidation)
	ErrUserIDMismatch          = fmt.Errorf("%w: the userId of the bookmark does not match the userId parameter", ErrValidation)
	ErrInvalidTimeRange        = fmt.Errorf("%w: <since> param value must be before <to> parameter value", ErrValidation)
	ErrMissingDeleteFilter     = fmt.Errorf("%w: you can either delete bookmarks by location or userId - at least one of them mandatory", ErrValidation)
	ErrInvalidSearchDomain     = fmt.Errorf("%w: unknown search domain", ErrValidation)
	ErrInvalidRequestBody      = fmt.Errorf("%w: invalid request body", ErrValidation)
)

// Authorization, lookup, conflict and system failures.
var (
	ErrUnauthorized            = errors.New("the userId does not match the subject in the access token")
	ErrForbidden               = errors.New("admin role required")
	ErrBookmarkNotFound        = errors.New("bookmark not found")
	ErrDuplicatePublicLocation = errors.New("a public bookmark with this location is already present")
	ErrDuplicateKey            = errors.New("duplicate key")
	ErrDatabaseOperation       = errors.New("database operation failed")
	ErrSearchUnavailable       = errors.New("search is temporarily unavailable")
)

// BookmarkError carries a caller facing message together with the classified cause
type BookmarkError struct {
	Code    string
	Message string
	Details string
	Cause   error
}

func (e *BookmarkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookmarkError) Unwrap() error {
	return e.Cause
}

// NewBookmarkError creates a new BookmarkError
func NewBookmarkError(code, message string, cause error) *BookmarkError {
	return &BookmarkError{Code: code, Message: message, Cause: cause}
}

// Error codes
const (
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "BOOKMARK_NOT_FOUND"
	CodeDuplicateLocation = "DUPLICATE_PUBLIC_LOCATION"
	CodeDuplicateKey      = "DUPLICATE_KEY"
	CodeInvalidTimeRange  = "INVALID_TIME_RANGE"
	CodeDatabaseOperation = "DATABASE_OPERATION_FAILED"
	CodeSearchUnavailable = "SEARCH_UNAVAILABLE"
	CodeInternalError     = "INTERNAL_ERROR"
)

// ErrorResponse represents the standardized error response format
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Classify returns the HTTP status and error code for err.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidTimeRange):
		return http.StatusBadRequest, CodeInvalidTimeRange
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, CodeValidationFailed
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, ErrBookmarkNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, ErrDuplicatePublicLocation):
		return http.StatusConflict, CodeDuplicateLocation
	case errors.Is(err, ErrDuplicateKey):
		return http.StatusConflict, CodeDuplicateKey
	case errors.Is(err, ErrSearchUnavailable):
		return http.StatusServiceUnavailable, CodeSearchUnavailable
	case errors.Is(err, ErrDatabaseOperation):
		return http.StatusInternalServerError, CodeDatabaseOperation
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}

// HandleServiceError handles service errors and returns appropriate HTTP responses
func HandleServiceError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	status, code := Classify(err)
	message := err.Error()
	var bookmarkErr *BookmarkError
	if errors.As(err, &bookmarkErr) {
		message = bookmarkErr.Message
	}
	if status == http.StatusServiceUnavailable {
		message = ErrSearchUnavailable.Error()
	}
	if status == http.StatusInternalServerError {
		message = "An unexpected error occurred"
	}

	return c.Status(status).JSON(ErrorResponse{
		Code:    code,
		Message: message,
		Details: err.Error(),
	})
}

// HandleUnauthorizedError handles a missing principal with 401
func HandleUnauthorizedError(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusUnauthorized).JSON(ErrorResponse{
		Code:    CodeUnauthorized,
		Message: message,
		Details: message,
	})
}
