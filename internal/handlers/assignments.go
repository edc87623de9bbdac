package handlers

import (
	"database/sql"
	"net/http"

	"consultdesk/internal/models"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

type AssignmentHandler struct {
	db *sql.DB
}

func NewAssignmentHandler(conn *sql.DB) *AssignmentHandler {
	return &AssignmentHandler{db: conn}
}

type assignRequest struct {
	CounselorID string `json:"counselorId"`
}

// subjectFromParams reads the :id param as a lead or student reference.
func subjectFromParams(kind models.SubjectKind, ps httprouter.Params) (models.SubjectRef, error) {
	id, err := uuidParam(ps, "id")
	if err != nil {
		return models.SubjectRef{}, err
	}
	return models.SubjectRef{Kind: kind, ID: id}, nil
}

// Assign returns the handler for POST /leads/:id/assignments or
// POST /students/:id/assignments.
func (h *AssignmentHandler) Assign(kind models.SubjectKind) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		subject, err := subjectFromParams(kind, ps)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req assignRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		counselorID, err := uuid.Parse(req.CounselorID)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "Invalid counselorId")
			return
		}

		if _, err := models.LookupSubjectName(r.Context(), h.db, subject); err != nil {
			writeError(w, r, err)
			return
		}
		counselor, err := models.GetCounselorByID(r.Context(), h.db, counselorID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !counselor.Active {
			jsonError(w, http.StatusBadRequest, "Counselor is inactive")
			return
		}

		a, err := models.AssignCounselor(r.Context(), h.db, counselorID, subject)
		if err != nil {
			writeError(w, r, err)
			return
		}
		jsonResponse(w, http.StatusCreated, map[string]interface{}{
			"success":    true,
			"message":    "Counselor assigned",
			"assignment": toAssignmentResponse(a),
		})
	}
}

// Unassign returns the handler for DELETE /leads/:id/assignments/:counselorId
// and the student equivalent.
func (h *AssignmentHandler) Unassign(kind models.SubjectKind) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		subject, err := subjectFromParams(kind, ps)
		if err != nil {
			writeError(w, r, err)
			return
		}
		counselorID, err := uuidParam(ps, "counselorId")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := models.UnassignCounselor(r.Context(), h.db, counselorID, subject); err != nil {
			writeError(w, r, err)
			return
		}
		jsonSuccess(w, http.StatusOK, "Counselor unassigned", nil)
	}
}

// GET /counselors/:id/assignments
func (h *AssignmentHandler) ListForCounselor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	counselorID, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := models.GetCounselorByID(r.Context(), h.db, counselorID); err != nil {
		writeError(w, r, err)
		return
	}
	assignments, err := models.ListAssignmentsForCounselor(r.Context(), h.db, counselorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]assignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, toAssignmentResponse(a))
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"success": true, "assignments": out})
}
