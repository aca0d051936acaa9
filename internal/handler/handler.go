package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Warn().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps err onto a status code and writes it.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	de := domainErrorOf(err)
	if de == nil {
		logger.Error().Err(err).Int("status", http.StatusInternalServerError).Msg("handler error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrCodeInternalError,
			Message: "internal server error",
		})
		return
	}

	status := statusFor(de.Code)
	if status < http.StatusInternalServerError {
		writeError(w, status, de.Code, de.Message, logger)
		return
	}

	logger.Error().Err(err).Str("code", de.Code).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: de.Code, Message: de.Message})
}

// domainErrorOf returns the most specific domain error in err's chain.
// A transaction abort is only reported when it wraps nothing more specific.
func domainErrorOf(err error) *model.DomainError {
	var outer *model.DomainError
	for e := err; e != nil; e = errors.Unwrap(e) {
		de, ok := e.(*model.DomainError)
		if !ok {
			continue
		}
		if de.Code != model.ErrCodeTransactionAborted {
			return de
		}
		if outer == nil {
			outer = de
		}
	}
	return outer
}

func statusFor(code string) int {
	switch code {
	case model.ErrCodeInvalidJSON, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeInsufficientStock:
		return http.StatusConflict
	case model.ErrCodePaymentGateway:
		return http.StatusBadGateway
	case model.ErrCodePaymentUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the request body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return true
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst interface{}, logger zerolog.Logger) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return true
}

// orderIDParam parses the {id} route parameter, writing a 400 when it is malformed.
func orderIDParam(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "invalid order ID", logger)
		return uuid.Nil, false
	}
	return id, true
}
