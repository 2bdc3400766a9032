package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/estatehub/estate-api/internal/errors"
)

const maxJSONBody = 1 << 20

// statusClientClosedRequest is nginx's non-standard code for a request the client abandoned.
const statusClientClosedRequest = 499

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
	Field   string
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	body := map[string]string{"error": p.ErrCode, "message": p.Err.Error()}
	if p.Field != "" {
		body["field"] = p.Field
	}
	WriteJSON(w, p.Code, body)
}

//nolint:gochecknoglobals // static lookup
var statusByCode = map[apperrors.ErrorCode]int{
	apperrors.ErrCodeUnauthenticated:    http.StatusUnauthorized,
	apperrors.ErrCodeInvalidCredentials: http.StatusUnauthorized,
	apperrors.ErrCodeForbidden:          http.StatusForbidden,
	apperrors.ErrCodeRefreshFailed:      http.StatusForbidden,
	apperrors.ErrCodeStoreUnavailable:   http.StatusServiceUnavailable,
	apperrors.ErrCodeValidation:         http.StatusBadRequest,
	apperrors.ErrCodeNotFound:           http.StatusNotFound,
	apperrors.ErrCodeConflict:           http.StatusConflict,
	apperrors.ErrCodeForeignKey:         http.StatusConflict,
	apperrors.ErrCodeTimeout:            http.StatusGatewayTimeout,
	apperrors.ErrCodeCanceled:           statusClientClosedRequest,
	apperrors.ErrCodeInternal:           http.StatusInternalServerError,
}

// StatusForError maps an error to its HTTP status and wire error code.
func StatusForError(err error) (int, apperrors.ErrorCode) {
	code := apperrors.GetCode(err)
	if status, ok := statusByCode[code]; ok {
		return status, code
	}
	return http.StatusInternalServerError, apperrors.ErrCodeInternal
}

// WriteAppError renders err as {"error": code, "message": text}. Server-side
// failures are logged and answered with a generic message.
func WriteAppError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code := StatusForError(err)
	if status >= http.StatusInternalServerError {
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	msg := err
	var appErr *apperrors.AppError
	switch {
	case status == http.StatusInternalServerError:
		msg = errors.New("internal server error")
	case errors.As(err, &appErr):
		msg = errors.New(appErr.Message)
	}
	WriteError(w, ErrorParams{Code: status, ErrCode: string(code), Err: msg, Field: apperrors.GetField(err)})
}
