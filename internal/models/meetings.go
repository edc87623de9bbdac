package models

import (
	"context"
	"database/sql"
	"time"

	"consultdesk/internal/db"

	"github.com/google/uuid"
)

const meetingColumns = `id, counselor_id, lead_id, student_id, subject_name, meeting_date, meeting_time,
	start_minute, duration_minutes, status, notes, notes_image_path, created_by_user_id,
	created_at, updated_at`

func scanMeeting(row rowScanner) (*Meeting, error) {
	m := &Meeting{}
	var leadID, studentID uuid.NullUUID
	var date time.Time
	var status string
	err := row.Scan(
		&m.ID, &m.CounselorID, &leadID, &studentID, &m.SubjectName, &date, &m.MeetingTime,
		&m.StartMinute, &m.DurationMinutes, &status, &m.Notes, &m.NotesImagePath, &m.CreatedByUserID,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Subject = subjectFromColumns(leadID, studentID)
	m.MeetingDate = date.Format("2006-01-02")
	m.Status = MeetingStatus(status)
	return m, nil
}

func queryMeetings(ctx context.Context, q db.Querier, op, query string, args ...interface{}) ([]*Meeting, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Classify(op, err)
	}
	defer rows.Close()

	meetings := []*Meeting{}
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, Classify("scan meeting", err)
		}
		meetings = append(meetings, m)
	}
	return meetings, Classify(op, rows.Err())
}

// ListBookings returns the non-cancelled meetings of a counselor on a date,
// ordered by start minute.
func ListBookings(ctx context.Context, q db.Querier, counselorID uuid.UUID, date string) ([]Booking, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, meeting_time, start_minute, duration_minutes
		FROM meetings
		WHERE counselor_id = $1 AND meeting_date = $2::date AND status <> 'cancelled'
		ORDER BY start_minute, meeting_time
	`, counselorID, date)
	if err != nil {
		return nil, Classify("list bookings", err)
	}
	defer rows.Close()

	bookings := []Booking{}
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.MeetingID, &b.MeetingTime, &b.StartMinute, &b.DurationMinutes); err != nil {
			return nil, Classify("scan booking", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, Classify("list bookings", rows.Err())
}

// InsertMeeting stores m with status scheduled. Callers are expected to have
// run the overlap check under the counselor lock in the same transaction.
func InsertMeeting(ctx context.Context, q db.Querier, m *Meeting) error {
	now := time.Now()
	m.ID = uuid.New()
	m.Status = MeetingScheduled
	m.CreatedAt = now
	m.UpdatedAt = now
	leadID, studentID := m.Subject.columns()

	_, err := q.ExecContext(ctx, `
		INSERT INTO meetings (id, counselor_id, lead_id, student_id, subject_name, meeting_date,
		                      meeting_time, start_minute, duration_minutes, status, notes,
		                      created_by_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9, $10, $11, $12, $13, $14)
	`, m.ID, m.CounselorID, leadID, studentID, m.SubjectName, m.MeetingDate, m.MeetingTime,
		m.StartMinute, m.DurationMinutes, string(m.Status), m.Notes, m.CreatedByUserID, now, now)
	return Classify("insert meeting", err)
}

func ListMeetingsForSubject(ctx context.Context, q db.Querier, subject SubjectRef) ([]*Meeting, error) {
	column := "lead_id"
	if subject.Kind == SubjectStudent {
		column = "student_id"
	}
	return queryMeetings(ctx, q, "list meetings",
		`SELECT `+meetingColumns+` FROM meetings WHERE `+column+` = $1
		 ORDER BY meeting_date DESC, start_minute DESC`, subject.ID)
}

// ListMeetingsForCounselor lists a counselor's meetings. An empty date
// returns every meeting; otherwise only that day, in start order.
func ListMeetingsForCounselor(ctx context.Context, q db.Querier, counselorID uuid.UUID, date string) ([]*Meeting, error) {
	if date == "" {
		return queryMeetings(ctx, q, "list meetings",
			`SELECT `+meetingColumns+` FROM meetings WHERE counselor_id = $1
			 ORDER BY meeting_date, start_minute`, counselorID)
	}
	return queryMeetings(ctx, q, "list meetings",
		`SELECT `+meetingColumns+` FROM meetings WHERE counselor_id = $1 AND meeting_date = $2::date
		 ORDER BY start_minute`, counselorID, date)
}

// ListActiveMeetingsSince returns every non-cancelled meeting on or after
// date, grouped by counselor and day.
func ListActiveMeetingsSince(ctx context.Context, q db.Querier, date string) ([]*Meeting, error) {
	return queryMeetings(ctx, q, "list active meetings",
		`SELECT `+meetingColumns+` FROM meetings
		 WHERE status <> 'cancelled' AND meeting_date >= $1::date
		 ORDER BY counselor_id, meeting_date, start_minute`, date)
}

func GetMeetingByID(ctx context.Context, q db.Querier, id uuid.UUID) (*Meeting, error) {
	m, err := scanMeeting(q.QueryRowContext(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, NewNotFoundError("Meeting not found")
	}
	if err != nil {
		return nil, Classify("get meeting", err)
	}
	return m, nil
}

// UpdateMeetingStatus moves a scheduled meeting to completed or cancelled.
// The meeting row is locked so two concurrent updates cannot both pass the
// transition check.
func UpdateMeetingStatus(ctx context.Context, conn *sql.DB, id uuid.UUID, to MeetingStatus) (*Meeting, error) {
	var updated *Meeting
	err := db.WithTx(ctx, conn, func(tx *sql.Tx) error {
		m, err := scanMeeting(tx.QueryRowContext(ctx,
			`SELECT `+meetingColumns+` FROM meetings WHERE id = $1 FOR UPDATE`, id))
		if err == sql.ErrNoRows {
			return NewNotFoundError("Meeting not found")
		}
		if err != nil {
			return Classify("get meeting", err)
		}
		if !CanTransitionMeeting(m.Status, to) {
			return NewValidationError("Cannot change meeting status from %s to %s", m.Status, to)
		}

		m.Status = to
		m.UpdatedAt = time.Now()
		if _, err := tx.ExecContext(ctx,
			`UPDATE meetings SET status = $1, updated_at = $2 WHERE id = $3`,
			string(to), m.UpdatedAt, id); err != nil {
			return Classify("update meeting status", err)
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func SetMeetingNotesImage(ctx context.Context, q db.Querier, id uuid.UUID, path string) error {
	res, err := q.ExecContext(ctx, `
		UPDATE meetings SET notes_image_path = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2
	`, path, id)
	return requireAffected(res, err, "set meeting notes image", "Meeting not found")
}

func DeleteMeeting(ctx context.Context, q db.Querier, id uuid.UUID) error {
	res, err := q.ExecContext(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	return requireAffected(res, err, "delete meeting", "Meeting not found")
}
