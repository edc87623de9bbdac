package scheduling

import (
	"context"
	"strings"

	"consultdesk/internal/logger"
	"consultdesk/internal/models"
	"consultdesk/internal/util"

	"github.com/google/uuid"
)

// Request is a proposed meeting. DurationMinutes is a pointer so an absent
// value can be told apart from zero.
type Request struct {
	CounselorID     uuid.UUID
	Subject         models.SubjectRef
	Date            string
	StartTime       string
	DurationMinutes *int
	Notes           string
	CreatedBy       uuid.NullUUID
}

// Result describes a booked meeting.
type Result struct {
	MeetingID   uuid.UUID
	SubjectName string
	Interval    Interval
}

// Scheduler books meetings so that no two non-cancelled meetings of a
// counselor on the same day overlap, and every meeting sits inside business
// hours.
type Scheduler struct {
	store Store
}

func NewScheduler(store Store) *Scheduler {
	return &Scheduler{store: store}
}

// Schedule validates req and books it. Nothing is written unless every check
// passes; the counselor lock is held from the assignment check through the
// insert.
func (s *Scheduler) Schedule(ctx context.Context, req Request) (*Result, error) {
	if err := checkPresence(req); err != nil {
		return nil, err
	}
	duration := *req.DurationMinutes
	if duration < MinDuration || duration > MaxDuration {
		return nil, models.NewValidationError(
			"duration out of range: %d minutes, must be between %d and %d", duration, MinDuration, MaxDuration)
	}
	if _, err := util.ParseDate(req.Date); err != nil {
		return nil, models.NewValidationError("%s", err.Error())
	}

	var result *Result
	err := s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.LockCounselor(ctx, req.CounselorID); err != nil {
			return err
		}

		assigned, err := tx.IsAssigned(ctx, req.CounselorID, req.Subject)
		if err != nil {
			return err
		}
		if !assigned {
			return models.NewValidationError("counselor not assigned to subject")
		}

		subjectName, err := tx.LookupSubject(ctx, req.Subject)
		if err != nil {
			if models.IsNotFound(err) {
				return models.NewNotFoundError("subject not found: %s %s", req.Subject.Kind, req.Subject.ID)
			}
			return err
		}

		start, err := ParseClock(req.StartTime)
		if err != nil {
			return models.NewValidationError("%s", err.Error())
		}
		proposed := Interval{Start: start, End: start + duration}
		if err := checkBusinessHours(proposed); err != nil {
			return err
		}

		bookings, err := tx.ListBookings(ctx, req.CounselorID, req.Date)
		if err != nil {
			return err
		}
		if err := checkOverlap(proposed, bookings); err != nil {
			logger.Debug("Meeting conflict", "counselor", req.CounselorID, "date", req.Date, "start", req.StartTime)
			return err
		}

		meeting := &models.Meeting{
			CounselorID:     req.CounselorID,
			Subject:         req.Subject,
			SubjectName:     subjectName,
			MeetingDate:     req.Date,
			MeetingTime:     FormatClock(start),
			StartMinute:     start,
			DurationMinutes: duration,
			Notes:           models.NullString(strings.TrimSpace(req.Notes)),
			CreatedByUserID: req.CreatedBy,
		}
		if err := tx.InsertMeeting(ctx, meeting); err != nil {
			return err
		}

		result = &Result{MeetingID: meeting.ID, SubjectName: subjectName, Interval: proposed}
		return nil
	})
	if err != nil {
		return nil, models.Classify("schedule meeting", err)
	}
	return result, nil
}

func checkPresence(req Request) error {
	var missing []string
	if req.CounselorID == uuid.Nil {
		missing = append(missing, "counselorId")
	}
	if !req.Subject.Valid() {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(req.Date) == "" {
		missing = append(missing, "meetingDate")
	}
	if strings.TrimSpace(req.StartTime) == "" {
		missing = append(missing, "meetingTime")
	}
	if req.DurationMinutes == nil {
		missing = append(missing, "durationMinutes")
	}
	if len(missing) > 0 {
		return models.NewValidationError("missing required field: %s", strings.Join(missing, ", "))
	}
	return nil
}

func checkBusinessHours(iv Interval) error {
	if iv.Start < BusinessStart {
		return models.NewValidationError(
			"Meeting time is outside business hours: %s is before business hours (%s-%s)",
			FormatClock(iv.Start), FormatClock(BusinessStart), FormatClock(BusinessEnd))
	}
	if iv.End > BusinessEnd {
		return models.NewValidationError(
			"Meeting time is outside business hours: ends at %s, after business hours (%s-%s)",
			FormatClock(iv.End), FormatClock(BusinessStart), FormatClock(BusinessEnd))
	}
	return nil
}

func checkOverlap(proposed Interval, bookings []models.Booking) error {
	for _, b := range bookings {
		existing := Interval{Start: b.StartMinute, End: b.EndMinute()}
		if proposed.Overlaps(existing) {
			return models.NewConflictError(
				"Counselor already has a meeting at %s for %d minutes on this date",
				FormatClock(b.StartMinute), b.DurationMinutes)
		}
	}
	return nil
}
