// Package apperr defines the user-facing failure categories shared by the
// company and project flows.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Category classifies a failure for the feedback layer
type Category string

const (
	InvalidInput        Category = "INVALID_INPUT"
	SessionExpired      Category = "SESSION_EXPIRED"
	DuplicateEntity     Category = "DUPLICATE_ENTITY"
	FileTooLarge        Category = "FILE_TOO_LARGE"
	UnsupportedFileType Category = "UNSUPPORTED_FILE_TYPE"
	UploadFailed        Category = "UPLOAD_FAILED"
	Unexpected          Category = "UNEXPECTED"
)

// UniqueViolation is the PostgreSQL SQLSTATE for a unique constraint violation
const UniqueViolation = "23505"

// Error is a categorized failure carrying its user-facing title and message
type Error struct {
	Category Category
	Title    string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by category so sentinel comparisons work
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Category == e.Category && t.Message == "" && t.Title == ""
}

// New creates a categorized error
func New(category Category, title, message string) *Error {
	return &Error{Category: category, Title: title, Message: message}
}

// Wrap creates a categorized error around a cause
func Wrap(category Category, title, message string, err error) *Error {
	return &Error{Category: category, Title: title, Message: message, Err: err}
}

// Kind returns a bare *Error usable as an errors.Is target for a category
func Kind(category Category) *Error {
	return &Error{Category: category}
}

// CategoryOf returns the category of err, or Unexpected for uncategorized errors
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return Unexpected
}

// As extracts the categorized error, wrapping uncategorized ones as Unexpected
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(Unexpected, "Unexpected error", BackendMessage(err), err)
}

// BackendError is a structured error returned by a REST backend
type BackendError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *BackendError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend error %s (status %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Message)
}

// ParseBackendError decodes a REST error body, keeping the raw body as message
// when it is not the structured shape.
func ParseBackendError(status int, body []byte) *BackendError {
	be := &BackendError{StatusCode: status}
	if err := json.Unmarshal(body, be); err != nil || be.Message == "" {
		be.Message = string(body)
	}
	return be
}

// BackendCode extracts a structured backend error code from err, if any
func BackendCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var be *BackendError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// BackendMessage returns the raw message a backend reported for err
func BackendMessage(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Message
	}
	var be *BackendError
	if errors.As(err, &be) {
		return be.Message
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsUniqueViolation reports whether err is a backend uniqueness violation
func IsUniqueViolation(err error) bool {
	return BackendCode(err) == UniqueViolation
}
