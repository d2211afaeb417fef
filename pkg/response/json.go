package response

import (
	"encoding/json"
	"net/http"

	"github.com/fkhayef/ensamble/internal/apperr"
)

// APIResponse is the standard response wrapper
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError represents an error response
type APIError struct {
	Code    string `json:"code"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

// JSON sends a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	json.NewEncoder(w).Encode(response)
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, status int, code, message string) {
	write(w, status, nil, &APIError{Code: code, Message: message})
}

// Failure sends an error response that still carries data, such as the
// feedback outcome of a failed commit
func Failure(w http.ResponseWriter, err error, data interface{}) {
	e := apperr.As(err)
	write(w, Status(e.Category), data, &APIError{
		Code:    string(e.Category),
		Title:   e.Title,
		Message: e.Message,
	})
}

// Problem sends the categorized error as a JSON response
func Problem(w http.ResponseWriter, err error) {
	Failure(w, err, nil)
}

// Status maps an error category to its HTTP status code
func Status(category apperr.Category) int {
	switch category {
	case apperr.InvalidInput:
		return http.StatusBadRequest
	case apperr.FileTooLarge:
		return http.StatusRequestEntityTooLarge
	case apperr.UnsupportedFileType:
		return http.StatusUnsupportedMediaType
	case apperr.SessionExpired:
		return http.StatusUnauthorized
	case apperr.DuplicateEntity:
		return http.StatusConflict
	case apperr.UploadFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func write(w http.ResponseWriter, status int, data interface{}, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Data:    data,
		Error:   apiErr,
	})
}

// Common error responses
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, "NOT_FOUND", message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

