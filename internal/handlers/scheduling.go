package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"consultdesk/internal/logger"
	"consultdesk/internal/middleware"
	"consultdesk/internal/models"
	"consultdesk/internal/scheduling"
	"consultdesk/internal/util"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

// CounselorLookup reports NotFound for an unknown counselor.
type CounselorLookup func(ctx context.Context, id uuid.UUID) error

type SchedulingHandler struct {
	scheduler      *scheduling.Scheduler
	availability   *scheduling.Availability
	counselorCheck CounselorLookup
}

func NewSchedulingHandler(store scheduling.Store, check CounselorLookup) *SchedulingHandler {
	return &SchedulingHandler{
		scheduler:      scheduling.NewScheduler(store),
		availability:   scheduling.NewAvailability(store),
		counselorCheck: check,
	}
}

// GET /counselors/:id/available-slots?date=YYYY-MM-DD
func (h *SchedulingHandler) AvailableSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	counselorID, err := uuidParam(ps, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		jsonError(w, http.StatusBadRequest, "date query parameter is required (YYYY-MM-DD)")
		return
	}
	if _, err := util.ParseDate(date); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.counselorCheck != nil {
		if err := h.counselorCheck(r.Context(), counselorID); err != nil {
			writeError(w, r, err)
			return
		}
	}

	slots, err := h.availability.BookedSlots(r.Context(), counselorID, date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"date":        date,
		"bookedSlots": slots,
		"freeSlots":   scheduling.FreeSlots(slots),
	})
}

type meetingRequest struct {
	CounselorID     string `json:"counselorId"`
	MeetingDate     string `json:"meetingDate"`
	MeetingTime     string `json:"meetingTime"`
	DurationMinutes *int   `json:"durationMinutes"`
	Notes           string `json:"notes"`
}

// CreateMeeting returns the handler for POST /leads/:id/meetings or
// POST /students/:id/meetings.
func (h *SchedulingHandler) CreateMeeting(kind models.SubjectKind) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		subject, err := subjectFromParams(kind, ps)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req meetingRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		var counselorID uuid.UUID
		if s := strings.TrimSpace(req.CounselorID); s != "" {
			counselorID, err = uuid.Parse(s)
			if err != nil {
				jsonError(w, http.StatusBadRequest, "Invalid counselorId")
				return
			}
		}

		res, err := h.scheduler.Schedule(r.Context(), scheduling.Request{
			CounselorID:     counselorID,
			Subject:         subject,
			Date:            strings.TrimSpace(req.MeetingDate),
			StartTime:       strings.TrimSpace(req.MeetingTime),
			DurationMinutes: req.DurationMinutes,
			Notes:           req.Notes,
			CreatedBy:       middleware.GetUserUUID(r),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		logger.Info("Meeting scheduled",
			"meeting", res.MeetingID, "counselor", counselorID, "subject", subject.ID,
			"date", req.MeetingDate, "start", res.Interval.Start, "end", res.Interval.End)
		jsonResponse(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"message": fmt.Sprintf("Meeting scheduled with %s on %s at %s",
				res.SubjectName, req.MeetingDate, scheduling.FormatClock(res.Interval.Start)),
			"meetingId":   res.MeetingID.String(),
			"subjectName": res.SubjectName,
		})
	}
}
