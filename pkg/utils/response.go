package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

const encodeFailureBody = `{"error":"internal error"}`

// Responder writes JSON response bodies. The payload is encoded before the
// status line goes out, so an unencodable payload becomes a 500 instead of a
// truncated body.
type Responder struct {
	logger *zap.Logger
}

// NewResponder returns a Responder that logs encoding failures to logger.
func NewResponder(logger *zap.Logger) Responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Responder{logger: logger}
}

// JSON writes payload with the given status.
func (r Responder) JSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error("failed to encode response", zap.Int("status", status), zap.Error(err))
		status, body = http.StatusInternalServerError, []byte(encodeFailureBody)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		r.logger.Debug("failed to write response", zap.Error(err))
	}
}

// Error writes {"error": message}.
func (r Responder) Error(w http.ResponseWriter, status int, message string) {
	r.JSON(w, status, map[string]string{"error": message})
}
