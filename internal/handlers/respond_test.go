package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"consultdesk/internal/models"
)

func TestWriteErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", models.NewValidationError("bad input"), http.StatusBadRequest, "bad input"},
		{"not found", models.NewNotFoundError("Lead not found"), http.StatusNotFound, "Lead not found"},
		{"conflict", models.NewConflictError("taken"), http.StatusConflict, "taken"},
		{"wrapped conflict", fmt.Errorf("outer: %w", models.NewConflictError("taken")), http.StatusConflict, "taken"},
		{"storage", &models.StorageError{Op: "insert", Err: errors.New("connection reset")}, http.StatusInternalServerError, "Internal server error"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := decodeBody(t, rec)
			if body["success"] != false || body["message"] != tt.wantMsg {
				t.Errorf("body = %v", body)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"name":"Sara"}`))
	if err := decodeJSON(req, &dst); err != nil || dst.Name != "Sara" {
		t.Fatalf("decodeJSON = %v, name %q", err, dst.Name)
	}

	for _, body := range []string{``, `{"name":`, `{"age":3}`} {
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
		if err := decodeJSON(req, &dst); !models.IsValidation(err) {
			t.Errorf("decodeJSON(%q) = %v, want validation error", body, err)
		}
	}
}

func TestRequired(t *testing.T) {
	if err := required(map[string]string{"a": "x", "b": "y"}); err != nil {
		t.Fatalf("required = %v", err)
	}
	err := required(map[string]string{"phone": " ", "fullName": "", "email": "e"})
	if err == nil || err.Error() != "missing required field: fullName, phone" {
		t.Errorf("required = %v", err)
	}
}

func TestParseOptionalUUID(t *testing.T) {
	id, err := parseOptionalUUID("  ", "hostCounselorId")
	if err != nil || id.Valid {
		t.Errorf("blank = %v, %v", id, err)
	}
	if _, err := parseOptionalUUID("xyz", "hostCounselorId"); !models.IsValidation(err) {
		t.Errorf("invalid = %v, want validation error", err)
	}
}
