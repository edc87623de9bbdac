package handlers

import (
	"bytes"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"consultdesk/internal/calendar"
	"consultdesk/internal/logger"
	"consultdesk/internal/models"
	"consultdesk/internal/uploads"
	"consultdesk/internal/util"

	"github.com/julienschmidt/httprouter"
)

type MeetingHandler struct {
	db     *sql.DB
	images *uploads.ImageStore
	loc    *time.Location
}

func NewMeetingHandler(conn *sql.DB, images *uploads.ImageStore, loc *time.Location) *MeetingHandler {
	return &MeetingHandler{db: conn, images: images, loc: loc}
}

// ListForSubject returns the handler for GET /leads/:id/meetings or
// GET /students/:id/meetings.
func (h *MeetingHandler) ListForSubject(kind models.SubjectKind) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		subject, err := subjectFromParams(kind, ps)
		if err != nil {
			writeError(w, r, err)
			return
		}
		meetings, err := models.ListMeetingsForSubject(r.Context(), h.db, subject)
		if err != nil {
			writeError(w, r, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]interface{}{"success": true, "meetings": toMeetingResponses(meetings)})
	}
}

// GET /counselors/:id/meetings?date=
func (h *MeetingHandler) ListForCounselor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	counselorID, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date != "" {
		if _, err := util.ParseDate(date); err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	meetings, err := models.ListMeetingsForCounselor(r.Context(), h.db, counselorID, date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"success": true, "meetings": toMeetingResponses(meetings)})
}

// PATCH /meetings/:id/status
func (h *MeetingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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
	status, ok := models.ParseMeetingStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !ok {
		jsonError(w, http.StatusBadRequest, "Invalid meeting status")
		return
	}

	meeting, err := models.UpdateMeetingStatus(r.Context(), h.db, id, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Meeting marked " + string(status),
		"meeting": toMeetingResponse(meeting),
	})
}

// POST /meetings/:id/notes-image (multipart field "image")
func (h *MeetingHandler) UploadNotesImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := models.GetMeetingByID(r.Context(), h.db, id); err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.images.MaxBytes+(1<<20))
	if err := r.ParseMultipartForm(h.images.MaxBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid multipart upload")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	saved, err := h.images.SaveMeetingImage(file, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := models.SetMeetingNotesImage(r.Context(), h.db, id, saved.Path); err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("Meeting notes image stored", "meeting", id, "path", saved.Path)
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Image uploaded",
		"path":      saved.Path,
		"thumbPath": saved.ThumbPath,
	})
}

// DELETE /meetings/:id
func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := models.DeleteMeeting(r.Context(), h.db, id); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.images.Remove(id); err != nil {
		logger.Warn("Failed to remove meeting image", "meeting", id, "err", err)
	}
	jsonSuccess(w, http.StatusOK, "Meeting deleted", nil)
}

// GET /counselors/:id/calendar.ics
func (h *MeetingHandler) CalendarICS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	counselorID, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	counselor, err := models.GetCounselorByID(r.Context(), h.db, counselorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	meetings, err := models.ListMeetingsForCounselor(r.Context(), h.db, counselorID, "")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := calendar.WriteICS(&buf, counselor, meetings, h.loc); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=counselor-"+counselorID.String()+".ics")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GET /counselors/:id/day-sheet.pdf?date=
func (h *MeetingHandler) DaySheetPDF(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	counselorID, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if _, err := util.ParseDate(date); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	counselor, err := models.GetCounselorByID(r.Context(), h.db, counselorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	meetings, err := models.ListMeetingsForCounselor(r.Context(), h.db, counselorID, date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := calendar.WriteDaySheet(&buf, counselor, date, meetings); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=day-sheet-"+date+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
