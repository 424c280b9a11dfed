// Package errors provides custom error types for the querydesk API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid username or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound      = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateUsername = &AppError{Code: "DUPLICATE_USERNAME", Message: "A user with this username already exists", StatusCode: http.StatusConflict}
)

// Taxonomy errors.
var (
	ErrCategoryNotFound    = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrSubCategoryNotFound = &AppError{Code: "SUBCATEGORY_NOT_FOUND", Message: "Subcategory not found", StatusCode: http.StatusNotFound}
	ErrTemplateNotFound    = &AppError{Code: "TEMPLATE_NOT_FOUND", Message: "Query template not found", StatusCode: http.StatusNotFound}
)

// Query lifecycle errors. The three FORBIDDEN variants share a code but carry
// messages naming the role slot that gates the transition.
var (
	ErrQueryNotFound       = &AppError{Code: "QUERY_NOT_FOUND", Message: "Query not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransition   = &AppError{Code: "INVALID_TRANSITION", Message: "Query status does not permit this action", StatusCode: http.StatusConflict}
	ErrNotQueryAuditor     = &AppError{Code: "FORBIDDEN", Message: "Only the auditor who raised this query may perform this action", StatusCode: http.StatusForbidden}
	ErrNotAssignedEmployee = &AppError{Code: "FORBIDDEN", Message: "Only the employee assigned to this query may perform this action", StatusCode: http.StatusForbidden}
	ErrNotRoutedManager    = &AppError{Code: "FORBIDDEN", Message: "Only the manager this query was routed to may perform this action", StatusCode: http.StatusForbidden}
	ErrInvalidDecision     = &AppError{Code: "INVALID_DECISION", Message: "Decision must be approve or reject", StatusCode: http.StatusBadRequest}
)

// Attachment errors.
var (
	ErrAttachmentNotFound  = &AppError{Code: "ATTACHMENT_NOT_FOUND", Message: "Attachment not found", StatusCode: http.StatusNotFound}
	ErrUnsupportedFileType = &AppError{Code: "UNSUPPORTED_FILE_TYPE", Message: "File type is not allowed", StatusCode: http.StatusUnsupportedMediaType}
	ErrUploadTooLarge      = &AppError{Code: "UPLOAD_TOO_LARGE", Message: "Upload exceeds the maximum allowed size", StatusCode: http.StatusRequestEntityTooLarge}
	ErrStorage             = &AppError{Code: "STORAGE_ERROR", Message: "Failed to store file", StatusCode: http.StatusInternalServerError}
)
