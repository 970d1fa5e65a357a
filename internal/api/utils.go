package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware" // For RequestID

	"github.com/FACorreiaa/go-simple-crud/internal/types"
)

// ErrorBody is the envelope of every error response.
type ErrorBody struct {
	Success   bool               `json:"success" example:"false"`
	Error     string             `json:"error" example:"authentication required"`
	RequestID string             `json:"request_id,omitempty"`
	Fields    []types.FieldError `json:"fields,omitempty"`
}

// ErrorResponse writes a standard JSON error response including request ID.
func ErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeError(w, r, status, message, nil)
}

// ValidationErrorResponse writes a 400 listing the offending fields.
func ValidationErrorResponse(w http.ResponseWriter, r *http.Request, verr *types.ValidationError) {
	writeError(w, r, http.StatusBadRequest, types.ErrValidation.Error(), verr.Fields)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, fields []types.FieldError) {
	reqID := middleware.GetReqID(r.Context()) // Get request ID if available
	WriteJSONResponse(w, r, status, ErrorBody{
		Success:   false,
		Error:     message,
		RequestID: reqID,
		Fields:    fields,
	})
}

// HandleError maps domain errors to HTTP responses. Anything unrecognised is logged and
// answered with a generic 500 so internals never reach the client.
func HandleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *types.ValidationError
	switch {
	case errors.As(err, &verr):
		ValidationErrorResponse(w, r, verr)
	case errors.Is(err, types.ErrDuplicateEmail):
		ErrorResponse(w, r, http.StatusConflict, types.ErrDuplicateEmail.Error())
	case errors.Is(err, types.ErrAuthenticationFailed):
		ErrorResponse(w, r, http.StatusUnauthorized, types.ErrAuthenticationFailed.Error())
	case errors.Is(err, types.ErrUnauthorized):
		ErrorResponse(w, r, http.StatusUnauthorized, types.ErrUnauthorized.Error())
	case errors.Is(err, types.ErrForbidden):
		ErrorResponse(w, r, http.StatusForbidden, types.ErrForbidden.Error())
	case errors.Is(err, types.ErrNotFound):
		ErrorResponse(w, r, http.StatusNotFound, types.ErrNotFound.Error())
	default:
		logger.ErrorContext(r.Context(), "Unhandled error",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// MaxBodyBytes caps every decoded request body.
const MaxBodyBytes = 1_048_576

// DecodeRequest decodes the body into dst, reporting malformed bodies as a validation error
// on the "body" field.
func DecodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return bodyError(DecodeJSONBody(w, r, dst))
}

// DecodeLenientRequest is DecodeRequest for bodies whose clients send back server-owned keys
// (id, ownerId, timestamps); keys dst does not declare are ignored.
func DecodeLenientRequest(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return bodyError(decodeJSONBody(w, r, dst, false))
}

func bodyError(err error) error {
	if err != nil {
		return types.NewValidationError(types.FieldError{Field: "body", Message: err.Error()})
	}
	return nil
}

// WriteJSONResponse encodes the data to JSON and writes the response header and body.
func WriteJSONResponse(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	// If data is nil and status indicates no content, just write header
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	// Marshal payload
	js, err := json.Marshal(data)
	if err != nil {
		// Log the internal error
		reqID := middleware.GetReqID(r.Context())
		slog.ErrorContext(r.Context(), "Failed to marshal JSON response",
			slog.Any("error", err),
			slog.String("request_id", reqID),
		)
		// Send a generic server error response to the client
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Set headers *before* writing status or body
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status) // Write status code
	_, err = w.Write(js)  // Write JSON body
	if err != nil {
		// Log write error, client already received status code
		reqID := middleware.GetReqID(r.Context())
		slog.ErrorContext(r.Context(), "Failed to write response body",
			slog.Any("error", err),
			slog.String("request_id", reqID),
		)
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush() // Ensure data is sent immediately
	}
}

// DecodeJSONBody reads and decodes a JSON request body safely. Unknown keys are rejected.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return decodeJSONBody(w, r, dst, true)
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}, strict bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes) // Use ResponseWriter for MaxBytesReader

	dec := json.NewDecoder(r.Body)
	if strict {
		dec.DisallowUnknownFields()
	}

	err := dec.Decode(dst)
	if err != nil {
		// Handle various JSON decoding errors gracefully
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError // Check for max bytes error

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)

		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")

		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q (wanted %s)", unmarshalTypeError.Field, unmarshalTypeError.Type)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)

		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")

		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			// Remove surrounding quotes if present
			fieldName = strings.Trim(fieldName, `"`)
			return fmt.Errorf("body contains unknown key %q", fieldName)

		// Check for MaxBytesError explicitly
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)

		case errors.As(err, &invalidUnmarshalError):
			// This usually indicates a programming error (passing non-pointer)
			// Panic might be appropriate here during development
			panic(fmt.Errorf("developer error: invalid argument passed to json.Unmarshal: %w", err))

		default:
			return fmt.Errorf("error decoding JSON body: %w", err)
		}
	}

	// Check for trailing data after the first JSON object
	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}
