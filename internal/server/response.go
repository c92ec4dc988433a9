package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cockroachdb/errors"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return errors.Wrap(err, "failed to encode JSON")
	}
	return nil
}

// errorBody is the shape of every error response.
type errorBody struct {
	Detail string `json:"detail"`
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	_ = writeJSON(w, status, errorBody{Detail: message})
}

// respond writes data, logging encode failures; the status line is
// already sent by then.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	if err := writeJSON(w, status, data); err != nil {
		s.logger.DebugContext(r.Context(), "write response", "error", err)
	}
}

// fail maps err to a status and writes the error body. Server errors are
// logged with the full cause; the client sees a generic detail.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	} else {
		s.logger.DebugContext(r.Context(), "request rejected",
			"status", status,
			slog.String("detail", detail))
	}
	writeError(w, status, detail)
}
