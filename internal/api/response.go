package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/traceback/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

type validationResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// serviceError maps a service error onto an HTTP status. Unexpected errors
// are logged and reported as "failed to <action>".
func serviceError(w http.ResponseWriter, err error, action string) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonResponse(w, http.StatusBadRequest, validationResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, model.ErrValidation):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrConflict), errors.Is(err, model.ErrInvalidState):
		jsonError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "action", action, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
