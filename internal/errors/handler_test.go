package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewJSONHandler(io.Discard, nil)), false)
}

func TestErrorToProblem(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
		wantDetail string
	}{
		{
			name:       "missing file",
			err:        FileNotFoundError("/srv/mis.xlsx"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeDataFileNotFound,
			wantCode:   CodeFileNotFound,
			wantDetail: "Excel file not found. Check file name & location.",
		},
		{
			name:       "wrapped missing column",
			err:        fmt.Errorf("dashboard: %w", ColumnNotFoundError("State / DPD column not found in Excel", []string{"A", "B"})),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataColumnNotFound,
			wantCode:   CodeColumnNotFound,
			wantDetail: "State / DPD column not found in Excel",
		},
		{
			name:       "unparseable",
			err:        SpreadsheetUnparseableError(errors.New("zip: not a valid zip file")),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataUnparseable,
			wantCode:   CodeSpreadsheetUnparseable,
		},
		{
			name:       "validation",
			err:        ErrValidation("connect", "connect must be one of: All, Connected, Not Connected"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantCode:   CodeValidationFailed,
		},
		{
			name:       "parsing app error",
			err:        NewParsingError("open workbook", errors.New("bad zip")),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataUnparseable,
			wantCode:   CodeSpreadsheetUnparseable,
			wantDetail: "open workbook",
		},
		{
			name:       "storage app error hides detail",
			err:        NewStorageError("disk on fire", nil),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantCode:   CodeInternal,
			wantDetail: "An unexpected error occurred while processing your request",
		},
		{
			name:       "deadline",
			err:        fmt.Errorf("load: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "unknown",
			err:        errors.New("mystery"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := h.ErrorToProblem(tt.err, req)

			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, tt.wantCode, problem.Code())
			assert.Equal(t, "/api/dashboard", problem.Instance)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, problem.Detail)
			}
		})
	}
}

func TestHandleError_WritesProblemJSON(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-7"))
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, ColumnNotFoundError("DPD column not found in Excel", []string{"State", "Connect"}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "DPD column not found in Excel", body["detail"])
	assert.Equal(t, CodeColumnNotFound, body["error_code"])
	assert.Equal(t, "req-7", body["trace_id"])
	assert.Equal(t, map[string]interface{}{"columns": []interface{}{"State", "Connect"}}, body["details"])
}

func TestHandleError_Nil(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler().HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Zero(t, rec.Body.Len())
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/dashboard", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "Method DELETE is not allowed")
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad Request", "", "/x").
		WithExtension("error_code", CodeValidationFailed).
		WithExtension("type", "ignored")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, TypeValidation, body["type"], "standard fields win over extensions")
	assert.NotContains(t, body, "detail")
	assert.Equal(t, CodeValidationFailed, body["error_code"])

	var nilExt ProblemDetails
	nilExt.WithExtension("k", "v")
	assert.Equal(t, "v", nilExt.Extensions["k"])
}

func TestAppError(t *testing.T) {
	cause := errors.New("zip: not a valid zip file")
	err := NewParsingError("open workbook", cause).WithContext("path", "/srv/mis.xlsx")

	assert.Equal(t, "[PARSING] open workbook: zip: not a valid zip file", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "/srv/mis.xlsx", err.Context["path"])
}
