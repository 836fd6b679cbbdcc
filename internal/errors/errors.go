package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// Error codes carried in the error_code extension of problem documents
const (
	CodeInvalidRequest         = "INVALID_REQUEST"
	CodeValidationFailed       = "VALIDATION_FAILED"
	CodeNotFound               = "NOT_FOUND"
	CodeFileNotFound           = "FILE_NOT_FOUND"
	CodeSpreadsheetUnparseable = "SPREADSHEET_UNPARSEABLE"
	CodeColumnNotFound         = "COLUMN_NOT_FOUND"
	CodeRateLimitExceeded      = "RATE_LIMIT_EXCEEDED"
	CodeInternal               = "INTERNAL_SERVER_ERROR"
)

// FileNotFoundMessage is the text shown when the allocation file is missing.
const FileNotFoundMessage = "Excel file not found. Check file name & location."

// APIError is an error that already knows its HTTP status and code.
// ErrorHandler turns it into a problem document.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the details payload for multi-field failures.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// NewWithDetails creates an APIError with a details payload.
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// InvalidRequestWithError reports a request that could not be decoded at all.
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// ErrValidation reports a single invalid field.
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NewValidationErrors reports several invalid fields at once.
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationErrors{Errors: errs})
}

// FileNotFoundError reports a missing data file.
func FileNotFoundError(path string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeFileNotFound, FileNotFoundMessage, map[string]string{"path": path})
}

// SpreadsheetUnparseableError reports a data file that could not be read as a table.
func SpreadsheetUnparseableError(err error) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, CodeSpreadsheetUnparseable, "Excel file could not be read", err.Error())
}

// ColumnNotFoundError reports required columns that could not be resolved.
// message names the missing roles.
func ColumnNotFoundError(message string, columns []string) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, CodeColumnNotFound, message, map[string]interface{}{"columns": columns})
}
