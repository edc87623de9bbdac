package models

import (
	"context"
	"database/sql"
	"time"

	"consultdesk/internal/db"

	"github.com/google/uuid"
)

const visitorColumns = `id, full_name, phone, purpose, host_counselor_id, checked_in_at, checked_out_at`

func scanVisitor(row rowScanner) (*Visitor, error) {
	v := &Visitor{}
	err := row.Scan(&v.ID, &v.FullName, &v.Phone, &v.Purpose, &v.HostCounselorID, &v.CheckedInAt, &v.CheckedOutAt)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func CheckInVisitor(ctx context.Context, q db.Querier, v *Visitor) error {
	v.ID = uuid.New()
	v.CheckedInAt = time.Now()
	_, err := q.ExecContext(ctx, `
		INSERT INTO visitors (id, full_name, phone, purpose, host_counselor_id, checked_in_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, v.ID, v.FullName, v.Phone, v.Purpose, v.HostCounselorID, v.CheckedInAt)
	return Classify("check in visitor", err)
}

// CheckOutVisitor stamps the checkout time. A visitor already checked out is
// a conflict.
func CheckOutVisitor(ctx context.Context, q db.Querier, id uuid.UUID) (*Visitor, error) {
	v, err := scanVisitor(q.QueryRowContext(ctx, `
		UPDATE visitors SET checked_out_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND checked_out_at IS NULL
		RETURNING `+visitorColumns, id))
	if err == nil {
		return v, nil
	}
	if err != sql.ErrNoRows {
		return nil, Classify("check out visitor", err)
	}
	if _, getErr := GetVisitorByID(ctx, q, id); getErr != nil {
		return nil, getErr
	}
	return nil, NewConflictError("Visitor has already checked out")
}

func GetVisitorByID(ctx context.Context, q db.Querier, id uuid.UUID) (*Visitor, error) {
	v, err := scanVisitor(q.QueryRowContext(ctx, `SELECT `+visitorColumns+` FROM visitors WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, NewNotFoundError("Visitor not found")
	}
	if err != nil {
		return nil, Classify("get visitor", err)
	}
	return v, nil
}

// ListVisitorsOn returns visitors who checked in on the given day in loc.
func ListVisitorsOn(ctx context.Context, q db.Querier, day time.Time, loc *time.Location) ([]*Visitor, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	rows, err := q.QueryContext(ctx, `
		SELECT `+visitorColumns+` FROM visitors
		WHERE checked_in_at >= $1 AND checked_in_at < $2
		ORDER BY checked_in_at
	`, start, end)
	if err != nil {
		return nil, Classify("list visitors", err)
	}
	defer rows.Close()

	visitors := []*Visitor{}
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, Classify("scan visitor", err)
		}
		visitors = append(visitors, v)
	}
	return visitors, Classify("list visitors", rows.Err())
}
