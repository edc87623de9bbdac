package handlers

import (
	"database/sql"
	"net/http"
	"net/mail"
	"strings"

	"consultdesk/internal/models"

	"github.com/julienschmidt/httprouter"
)

type CounselorHandler struct {
	db *sql.DB
}

func NewCounselorHandler(conn *sql.DB) *CounselorHandler {
	return &CounselorHandler{db: conn}
}

type counselorRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	UserID   string `json:"userId"`
}

func (req counselorRequest) apply(c *models.Counselor) error {
	if err := required(map[string]string{"fullName": req.FullName, "email": req.Email}); err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return models.NewValidationError("Invalid email address")
	}
	userID, err := parseOptionalUUID(req.UserID, "userId")
	if err != nil {
		return err
	}
	c.FullName = strings.TrimSpace(req.FullName)
	c.Email = email
	c.Phone = models.NullString(strings.TrimSpace(req.Phone))
	if userID.Valid {
		c.UserID = userID
	}
	return nil
}

// GET /counselors?all=true
func (h *CounselorHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	counselors, err := models.ListCounselors(r.Context(), h.db, r.URL.Query().Get("all") == "true")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]counselorResponse, 0, len(counselors))
	for _, c := range counselors {
		out = append(out, toCounselorResponse(c))
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"success": true, "counselors": out})
}

// GET /counselors/:id
func (h *CounselorHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := models.GetCounselorByID(r.Context(), h.db, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"success": true, "counselor": toCounselorResponse(c)})
}

// POST /counselors
func (h *CounselorHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req counselorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c := &models.Counselor{}
	if err := req.apply(c); err != nil {
		writeError(w, r, err)
		return
	}
	if err := models.CreateCounselor(r.Context(), h.db, c); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]interface{}{
		"success":   true,
		"message":   "Counselor created successfully",
		"counselor": toCounselorResponse(c),
	})
}

// PUT /counselors/:id
func (h *CounselorHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req counselorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := models.GetCounselorByID(r.Context(), h.db, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.apply(c); err != nil {
		writeError(w, r, err)
		return
	}
	if err := models.UpdateCounselor(r.Context(), h.db, c); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Counselor updated successfully",
		"counselor": toCounselorResponse(c),
	})
}

// DELETE /counselors/:id deactivates; meeting history is kept.
func (h *CounselorHandler) Deactivate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := models.DeactivateCounselor(r.Context(), h.db, id); err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusOK, "Counselor deactivated", nil)
}
