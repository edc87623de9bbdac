package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"consultdesk/internal/logger"
	"consultdesk/internal/middleware"
	"consultdesk/internal/models"

	"github.com/julienschmidt/httprouter"
)

type LeadHandler struct {
	db *sql.DB
}

func NewLeadHandler(conn *sql.DB) *LeadHandler {
	return &LeadHandler{db: conn}
}

type leadRequest struct {
	FullName          string `json:"fullName"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	Source            string `json:"source"`
	Notes             string `json:"notes"`
	InterestedCountry string `json:"interestedCountry"`
}

func (req leadRequest) validate() error {
	return required(map[string]string{"fullName": req.FullName, "phone": req.Phone})
}

func (req leadRequest) apply(l *models.Lead) {
	l.FullName = strings.TrimSpace(req.FullName)
	l.Phone = strings.TrimSpace(req.Phone)
	l.Email = models.NullString(strings.TrimSpace(req.Email))
	l.Source = models.NullString(strings.TrimSpace(req.Source))
	l.Notes = models.NullString(strings.TrimSpace(req.Notes))
	l.InterestedCountry = models.NullString(strings.ToUpper(strings.TrimSpace(req.InterestedCountry)))
}

// GET /leads?status=&q=
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	status := r.URL.Query().Get("status")
	if status != "" && !models.IsValidLeadStatus(status) {
		jsonError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}
	leads, err := models.ListLeads(r.Context(), h.db, status, strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]leadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, toLeadResponse(l))
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"success": true, "leads": out})
}

// GET /leads/:id
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	lead, err := models.GetLeadByID(r.Context(), h.db, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"success": true, "lead": toLeadResponse(lead)})
}

// POST /leads
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req leadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	lead := &models.Lead{CreatedByUserID: middleware.GetUserUUID(r)}
	req.apply(lead)
	if err := models.CreateLead(r.Context(), h.db, lead); err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("Lead created", "lead", lead.ID, "by", middleware.GetUserEmail(r))
	jsonResponse(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Lead created successfully",
		"lead":    toLeadResponse(lead),
	})
}

// PUT /leads/:id
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req leadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	lead, err := models.GetLeadByID(r.Context(), h.db, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req.apply(lead)
	if err := models.UpdateLead(r.Context(), h.db, lead); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Lead updated successfully",
		"lead":    toLeadResponse(lead),
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

// PATCH /leads/:id/status
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if !models.IsValidLeadStatus(req.Status) {
		jsonError(w, http.StatusBadRequest, "Invalid lead status")
		return
	}
	if req.Status == "converted" {
		jsonError(w, http.StatusBadRequest, "Use the convert endpoint to convert a lead")
		return
	}
	if err := models.UpdateLeadStatus(r.Context(), h.db, id, req.Status); err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusOK, "Lead status updated", nil)
}

// DELETE /leads/:id
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := models.DeleteLead(r.Context(), h.db, id); err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("Lead deleted", "lead", id, "by", middleware.GetUserEmail(r))
	jsonSuccess(w, http.StatusOK, "Lead deleted", nil)
}

// POST /leads/:id/convert
func (h *LeadHandler) Convert(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	student, err := models.ConvertLead(r.Context(), h.db, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("Lead converted", "lead", id, "student", student.DisplayID)
	jsonResponse(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Lead converted to student " + student.DisplayID,
		"student": toStudentResponse(student),
	})
}
