package models

import (
	"context"
	"database/sql"
	"time"

	"consultdesk/internal/db"

	"github.com/google/uuid"
)

func AssignCounselor(ctx context.Context, q db.Querier, counselorID uuid.UUID, subject SubjectRef) (*Assignment, error) {
	leadID, studentID := subject.columns()
	a := &Assignment{
		ID:          uuid.New(),
		CounselorID: counselorID,
		Subject:     subject,
		AssignedAt:  time.Now(),
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO counselor_assignments (id, counselor_id, lead_id, student_id, assigned_at)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID, counselorID, leadID, studentID, a.AssignedAt)
	if err != nil {
		return nil, Classify("assign counselor", err)
	}
	return a, nil
}

func UnassignCounselor(ctx context.Context, q db.Querier, counselorID uuid.UUID, subject SubjectRef) error {
	leadID, studentID := subject.columns()
	res, err := q.ExecContext(ctx, `
		DELETE FROM counselor_assignments
		WHERE counselor_id = $1
		  AND lead_id IS NOT DISTINCT FROM $2
		  AND student_id IS NOT DISTINCT FROM $3
	`, counselorID, leadID, studentID)
	return requireAffected(res, err, "unassign counselor", "Assignment not found")
}

func IsAssigned(ctx context.Context, q db.Querier, counselorID uuid.UUID, subject SubjectRef) (bool, error) {
	leadID, studentID := subject.columns()
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM counselor_assignments
			WHERE counselor_id = $1
			  AND lead_id IS NOT DISTINCT FROM $2
			  AND student_id IS NOT DISTINCT FROM $3
		)
	`, counselorID, leadID, studentID).Scan(&exists)
	if err != nil {
		return false, Classify("check assignment", err)
	}
	return exists, nil
}

// ListAssignmentsForCounselor returns the counselor's subjects with their
// current display names.
func ListAssignmentsForCounselor(ctx context.Context, q db.Querier, counselorID uuid.UUID) ([]*Assignment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT a.id, a.counselor_id, a.lead_id, a.student_id,
		       COALESCE(l.full_name, s.full_name, ''), a.assigned_at
		FROM counselor_assignments a
		LEFT JOIN leads l ON l.id = a.lead_id
		LEFT JOIN students s ON s.id = a.student_id
		WHERE a.counselor_id = $1
		ORDER BY a.assigned_at DESC
	`, counselorID)
	if err != nil {
		return nil, Classify("list assignments", err)
	}
	defer rows.Close()

	assignments := []*Assignment{}
	for rows.Next() {
		a := &Assignment{}
		var leadID, studentID uuid.NullUUID
		if err := rows.Scan(&a.ID, &a.CounselorID, &leadID, &studentID, &a.SubjectName, &a.AssignedAt); err != nil {
			return nil, Classify("scan assignment", err)
		}
		a.Subject = subjectFromColumns(leadID, studentID)
		assignments = append(assignments, a)
	}
	return assignments, Classify("list assignments", rows.Err())
}

// CopyLeadAssignmentsToStudent gives a freshly converted student the same
// counselors its lead had.
func CopyLeadAssignmentsToStudent(ctx context.Context, q db.Querier, leadID, studentID uuid.UUID) error {
	rows, err := q.QueryContext(ctx, `SELECT counselor_id FROM counselor_assignments WHERE lead_id = $1`, leadID)
	if err != nil {
		return Classify("list lead assignments", err)
	}
	var counselorIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return Classify("scan lead assignment", err)
		}
		counselorIDs = append(counselorIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Classify("list lead assignments", err)
	}

	for _, counselorID := range counselorIDs {
		if _, err := AssignCounselor(ctx, q, counselorID, StudentSubject(studentID)); err != nil {
			return err
		}
	}
	return nil
}

// LookupSubjectName returns the display name of a lead or student.
func LookupSubjectName(ctx context.Context, q db.Querier, subject SubjectRef) (string, error) {
	query := `SELECT full_name FROM leads WHERE id = $1`
	notFound := "Lead not found"
	if subject.Kind == SubjectStudent {
		query = `SELECT full_name FROM students WHERE id = $1`
		notFound = "Student not found"
	}

	var name string
	err := q.QueryRowContext(ctx, query, subject.ID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", NewNotFoundError(notFound)
	}
	if err != nil {
		return "", Classify("lookup subject", err)
	}
	return name, nil
}
