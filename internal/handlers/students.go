package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"consultdesk/internal/models"
	"consultdesk/internal/util"

	"github.com/julienschmidt/httprouter"
)

type StudentHandler struct {
	db *sql.DB
}

func NewStudentHandler(conn *sql.DB) *StudentHandler {
	return &StudentHandler{db: conn}
}

type studentRequest struct {
	FullName       string `json:"fullName"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	DateOfBirth    string `json:"dateOfBirth"`
	PassportNumber string `json:"passportNumber"`
	Notes          string `json:"notes"`
}

func (req studentRequest) apply(s *models.Student) error {
	if err := required(map[string]string{"fullName": req.FullName}); err != nil {
		return err
	}
	s.FullName = strings.TrimSpace(req.FullName)
	s.Phone = models.NullString(strings.TrimSpace(req.Phone))
	s.Email = models.NullString(strings.TrimSpace(req.Email))
	s.PassportNumber = models.NullString(strings.ToUpper(strings.TrimSpace(req.PassportNumber)))
	s.Notes = models.NullString(strings.TrimSpace(req.Notes))
	s.DateOfBirth = sql.NullTime{}
	if dob := strings.TrimSpace(req.DateOfBirth); dob != "" {
		t, err := util.ParseDate(dob)
		if err != nil {
			return models.NewValidationError("dateOfBirth: %s", err.Error())
		}
		s.DateOfBirth = models.NullTime(t)
	}
	return nil
}

// GET /students?q=
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	students, err := models.ListStudents(r.Context(), h.db, strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]studentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, toStudentResponse(s))
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"success": true, "students": out})
}

// GET /students/:id
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	student, err := models.GetStudentByID(r.Context(), h.db, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"success": true, "student": toStudentResponse(student)})
}

// POST /students
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req studentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	student := &models.Student{}
	if err := req.apply(student); err != nil {
		writeError(w, r, err)
		return
	}
	if err := models.CreateStudent(r.Context(), h.db, student); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Student created with ID " + student.DisplayID,
		"student": toStudentResponse(student),
	})
}

// PUT /students/:id
func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req studentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	student, err := models.GetStudentByID(r.Context(), h.db, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.apply(student); err != nil {
		writeError(w, r, err)
		return
	}
	if err := models.UpdateStudent(r.Context(), h.db, student); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Student updated successfully",
		"student": toStudentResponse(student),
	})
}

// DELETE /students/:id
func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := models.DeleteStudent(r.Context(), h.db, id); err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusOK, "Student deleted", nil)
}
