package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"consultdesk/internal/models"
	"consultdesk/internal/util"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

type ApplicationHandler struct {
	db  *sql.DB
	loc *time.Location
}

func NewApplicationHandler(conn *sql.DB, loc *time.Location) *ApplicationHandler {
	return &ApplicationHandler{db: conn, loc: loc}
}

type applicationRequest struct {
	UniversityID string `json:"universityId"`
	IntakeID     string `json:"intakeId"`
	Program      string `json:"program"`
	Notes        string `json:"notes"`
}

// POST /students/:id/applications
func (h *ApplicationHandler) CreateApplication(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	studentID, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req applicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := required(map[string]string{"universityId": req.UniversityID, "program": req.Program}); err != nil {
		writeError(w, r, err)
		return
	}
	universityID, err := uuid.Parse(strings.TrimSpace(req.UniversityID))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid universityId")
		return
	}
	intakeID, err := parseOptionalUUID(req.IntakeID, "intakeId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := models.GetStudentByID(r.Context(), h.db, studentID); err != nil {
		writeError(w, r, err)
		return
	}

	app := &models.Application{
		StudentID:    studentID,
		UniversityID: universityID,
		IntakeID:     intakeID,
		Program:      strings.TrimSpace(req.Program),
		Notes:        models.NullString(strings.TrimSpace(req.Notes)),
	}
	if err := models.CreateApplication(r.Context(), h.db, app); err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusCreated, "Application created", map[string]interface{}{
		"application": toApplicationResponse(app),
	})
}

// GET /students/:id/applications
func (h *ApplicationHandler) ListApplications(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	studentID, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	apps, err := models.ListApplicationsForStudent(r.Context(), h.db, studentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]applicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, toApplicationResponse(a))
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"success": true, "applications": out})
}

// PATCH /applications/:id/status
func (h *ApplicationHandler) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if err := models.UpdateApplicationStatus(r.Context(), h.db, id, status); err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusOK, "Application status updated", map[string]interface{}{"status": status})
}

type visaRequest struct {
	CountryCode string `json:"countryCode"`
	VisaType    string `json:"visaType"`
	SubmittedOn string `json:"submittedOn"`
	Notes       string `json:"notes"`
}

// POST /students/:id/visa-applications
func (h *ApplicationHandler) CreateVisa(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	studentID, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req visaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := required(map[string]string{"countryCode": req.CountryCode, "visaType": req.VisaType}); err != nil {
		writeError(w, r, err)
		return
	}
	if len(strings.TrimSpace(req.CountryCode)) != 2 {
		jsonError(w, http.StatusBadRequest, "Country code must be a 2-letter ISO code")
		return
	}

	visa := &models.VisaApplication{
		StudentID:   studentID,
		CountryCode: strings.TrimSpace(req.CountryCode),
		VisaType:    strings.TrimSpace(req.VisaType),
		Notes:       models.NullString(strings.TrimSpace(req.Notes)),
	}
	if s := strings.TrimSpace(req.SubmittedOn); s != "" {
		submitted, err := util.ParseDate(s)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "submittedOn: "+err.Error())
			return
		}
		if err := util.ValidateNotFutureDate("submittedOn", submitted, h.loc); err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		visa.SubmittedOn = models.NullTime(submitted)
	}
	if _, err := models.GetStudentByID(r.Context(), h.db, studentID); err != nil {
		writeError(w, r, err)
		return
	}

	if err := models.CreateVisaApplication(r.Context(), h.db, visa); err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusCreated, "Visa application created", map[string]interface{}{
		"visaApplication": toVisaResponse(visa),
	})
}

// GET /students/:id/visa-applications
func (h *ApplicationHandler) ListVisas(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	studentID, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	visas, err := models.ListVisaApplicationsForStudent(r.Context(), h.db, studentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]visaResponse, 0, len(visas))
	for _, v := range visas {
		out = append(out, toVisaResponse(v))
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"success": true, "visaApplications": out})
}

// PATCH /visa-applications/:id/status
func (h *ApplicationHandler) UpdateVisaStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if err := models.UpdateVisaStatus(r.Context(), h.db, id, status); err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusOK, "Visa status updated", map[string]interface{}{"status": status})
}
