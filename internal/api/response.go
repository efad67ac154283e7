package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"coworking/internal/auth"
	"coworking/internal/entities"
	apperrors "coworking/internal/errors"
)

const (
	maxBodyBytes      = int64(1 << 20)
	msgInternalError  = "An unexpected error occurred"
	msgMalformedBody  = "The request body is not valid JSON."
	msgUnauthorized   = "Unauthenticated."
	msgForbidden      = "This action is unauthorized."
	msgInvalidIDParam = "The id must be a positive integer."
)

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeData(w http.ResponseWriter, code int, message string, data any) {
	writeJSON(w, code, entities.Envelope{
		Data:    data,
		Message: message,
		Status:  entities.StatusSuccess,
		Code:    code,
	})
}

func writeList[T any](w http.ResponseWriter, items []T, emptyMsg, msg string) {
	if items == nil {
		items = []T{}
	}
	total := len(items)
	if total == 0 {
		msg = emptyMsg
	}
	writeJSON(w, http.StatusOK, entities.Envelope{
		Data:    items,
		Total:   &total,
		Message: msg,
		Status:  entities.StatusSuccess,
		Code:    http.StatusOK,
	})
}

// writeError renders any error as the error envelope. Unknown errors become 500s.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	he := apperrors.As(err, msgInternalError)
	if he.Code >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "code", he.Code, "error", he.Detail())
	}
	writeJSON(w, he.Code, entities.ErrorEnvelope{
		Message: he.Message,
		Error:   he.Detail(),
		Status:  entities.StatusError,
		Code:    he.Code,
		Errors:  he.Fields,
	})
}

// denyUnauthorized is the rejection writer for the bearer and admin guards.
func denyUnauthorized(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, auth.ErrForbidden) {
		writeError(w, r, apperrors.ErrForbidden(msgForbidden).WithCause(err))
		return
	}
	writeError(w, r, apperrors.ErrUnauthorized(msgUnauthorized).WithCause(err))
}

// decodeJSON reads a single JSON object into dst. An empty body leaves dst zero.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.ErrBadRequest(msgMalformedBody).WithCause(err)
	}
	if dec.More() {
		return apperrors.ErrBadRequest(msgMalformedBody).WithCause(errors.New("unexpected data after JSON object"))
	}
	return nil
}

func badID(err error) error {
	return apperrors.ErrBadRequest(msgInvalidIDParam).WithCause(err)
}
