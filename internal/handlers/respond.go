package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"

	"consultdesk/internal/logger"
	"consultdesk/internal/models"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

const maxBodyBytes = 1 << 20

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", "err", err)
	}
}

func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]interface{}{"success": false, "message": message})
}

func jsonSuccess(w http.ResponseWriter, status int, message string, extra map[string]interface{}) {
	body := map[string]interface{}{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	jsonResponse(w, status, body)
}

// writeError maps a domain error kind to its HTTP status. Unclassified
// errors are logged and reported as 500 without leaking details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr *models.ValidationError
		nErr *models.NotFoundError
		cErr *models.ConflictError
	)
	switch {
	case errors.As(err, &vErr):
		jsonError(w, http.StatusBadRequest, vErr.Message)
	case errors.As(err, &nErr):
		jsonError(w, http.StatusNotFound, nErr.Message)
	case errors.As(err, &cErr):
		jsonError(w, http.StatusConflict, cErr.Message)
	default:
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		jsonError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a JSON body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return models.NewValidationError("Request body is required")
		}
		return models.NewValidationError("Invalid request body: %s", err.Error())
	}
	return nil
}

func uuidParam(ps httprouter.Params, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ps.ByName(name))
	if err != nil {
		return uuid.Nil, models.NewValidationError("Invalid %s", name)
	}
	return id, nil
}

// parseOptionalUUID accepts an empty string as "not set".
func parseOptionalUUID(s, field string) (uuid.NullUUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.NullUUID{}, models.NewValidationError("Invalid %s", field)
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}

func required(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return models.NewValidationError("missing required field: %s", strings.Join(missing, ", "))
}
