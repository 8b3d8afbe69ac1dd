// Package httpx holds the JSON response helpers shared by every
// feature handler.
package httpx

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ringihub/ringihub/internal/app/system/apperr"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError maps err's kind to a status code and writes the error
// body. Server-side kinds get logged with the full cause; the client
// only sees the classified message.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Error(err))
	}

	body := errorBody{
		Error:   apperr.KindOf(err).String(),
		Message: err.Error(),
	}
	if status >= http.StatusInternalServerError {
		body.Message = "internal error"
	}
	WriteJSON(w, status, body)
}

// DecodeJSON decodes the request body into v, rejecting unknown
// fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}
