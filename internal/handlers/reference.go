package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"consultdesk/internal/models"
	"consultdesk/internal/util"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

type ReferenceHandler struct {
	db *sql.DB
}

func NewReferenceHandler(conn *sql.DB) *ReferenceHandler {
	return &ReferenceHandler{db: conn}
}

// GET /countries
func (h *ReferenceHandler) ListCountries(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	countries, err := models.ListCountries(r.Context(), h.db)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]map[string]string, 0, len(countries))
	for _, c := range countries {
		out = append(out, map[string]string{"code": c.Code, "name": c.Name})
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"success": true, "countries": out})
}

type countryRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// POST /countries
func (h *ReferenceHandler) CreateCountry(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req countryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := required(map[string]string{"code": req.Code, "name": req.Name}); err != nil {
		writeError(w, r, err)
		return
	}
	if len(strings.TrimSpace(req.Code)) != 2 {
		jsonError(w, http.StatusBadRequest, "Country code must be a 2-letter ISO code")
		return
	}
	c := &models.Country{Code: req.Code, Name: strings.TrimSpace(req.Name)}
	if err := models.CreateCountry(r.Context(), h.db, c); err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusCreated, "Country created", map[string]interface{}{
		"country": map[string]string{"code": c.Code, "name": c.Name},
	})
}

// DELETE /countries/:code
func (h *ReferenceHandler) DeleteCountry(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := models.DeleteCountry(r.Context(), h.db, ps.ByName("code")); err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusOK, "Country deleted", nil)
}

// GET /universities?country=
func (h *ReferenceHandler) ListUniversities(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	universities, err := models.ListUniversities(r.Context(), h.db, r.URL.Query().Get("country"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]universityResponse, 0, len(universities))
	for _, u := range universities {
		out = append(out, universityResponse{
			ID: u.ID.String(), Name: u.Name, CountryCode: u.CountryCode,
			City: nullStr(u.City), Website: nullStr(u.Website),
		})
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"success": true, "universities": out})
}

type universityRequest struct {
	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
	City        string `json:"city"`
	Website     string `json:"website"`
}

// POST /universities
func (h *ReferenceHandler) CreateUniversity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req universityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := required(map[string]string{"name": req.Name, "countryCode": req.CountryCode}); err != nil {
		writeError(w, r, err)
		return
	}
	u := &models.University{
		Name:        strings.TrimSpace(req.Name),
		CountryCode: strings.TrimSpace(req.CountryCode),
		City:        models.NullString(strings.TrimSpace(req.City)),
		Website:     models.NullString(strings.TrimSpace(req.Website)),
	}
	if err := models.CreateUniversity(r.Context(), h.db, u); err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusCreated, "University created", map[string]interface{}{
		"university": universityResponse{
			ID: u.ID.String(), Name: u.Name, CountryCode: u.CountryCode,
			City: nullStr(u.City), Website: nullStr(u.Website),
		},
	})
}

// DELETE /universities/:id
func (h *ReferenceHandler) DeleteUniversity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := models.DeleteUniversity(r.Context(), h.db, id); err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusOK, "University deleted", nil)
}

func toIntakeResponse(in *models.Intake) intakeResponse {
	return intakeResponse{
		ID:                  in.ID.String(),
		UniversityID:        in.UniversityID.String(),
		Name:                in.Name,
		StartDate:           in.StartDate.Format(util.DateLayout),
		ApplicationDeadline: nullDate(in.ApplicationDeadline),
	}
}

// GET /intakes?university=
func (h *ReferenceHandler) ListIntakes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	universityID, err := parseOptionalUUID(r.URL.Query().Get("university"), "university")
	if err != nil {
		writeError(w, r, err)
		return
	}
	intakes, err := models.ListIntakes(r.Context(), h.db, universityID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]intakeResponse, 0, len(intakes))
	for _, in := range intakes {
		out = append(out, toIntakeResponse(in))
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"success": true, "intakes": out})
}

type intakeRequest struct {
	UniversityID        string `json:"universityId"`
	Name                string `json:"name"`
	StartDate           string `json:"startDate"`
	ApplicationDeadline string `json:"applicationDeadline"`
}

// POST /intakes
func (h *ReferenceHandler) CreateIntake(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req intakeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := required(map[string]string{
		"universityId": req.UniversityID, "name": req.Name, "startDate": req.StartDate,
	}); err != nil {
		writeError(w, r, err)
		return
	}
	universityID, err := uuid.Parse(req.UniversityID)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid universityId")
		return
	}
	start, err := util.ParseDate(req.StartDate)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "startDate: "+err.Error())
		return
	}
	in := &models.Intake{UniversityID: universityID, Name: strings.TrimSpace(req.Name), StartDate: start}
	if req.ApplicationDeadline != "" {
		deadline, err := util.ParseDate(req.ApplicationDeadline)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "applicationDeadline: "+err.Error())
			return
		}
		if deadline.After(start) {
			jsonError(w, http.StatusBadRequest, "applicationDeadline must not be after startDate")
			return
		}
		in.ApplicationDeadline = models.NullTime(deadline)
	}
	if err := models.CreateIntake(r.Context(), h.db, in); err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusCreated, "Intake created", map[string]interface{}{"intake": toIntakeResponse(in)})
}

// DELETE /intakes/:id
func (h *ReferenceHandler) DeleteIntake(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := models.DeleteIntake(r.Context(), h.db, id); err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusOK, "Intake deleted", nil)
}
