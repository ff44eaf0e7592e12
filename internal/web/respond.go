package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/vbonduro/hbnb/internal/apperror"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError renders a facade error with the status its kind maps to.
// Internal errors are logged and never shown to the client.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	ae := apperror.From(err)
	if ae.Kind == apperror.KindInternal {
		s.logger.Error("request failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, ae.StatusCode(), errorBody{Error: ae.Message, Field: ae.Field})
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperror.NewValidation(typeErr.Field, fmt.Sprintf("must be a %s", typeErr.Type))
		}
		return apperror.NewValidation("body", "invalid JSON: "+err.Error())
	}
	if dec.More() {
		return apperror.NewValidation("body", "must contain a single JSON object")
	}
	return nil
}
