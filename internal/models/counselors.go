package models

import (
	"context"
	"database/sql"
	"time"

	"consultdesk/internal/db"

	"github.com/google/uuid"
)

const counselorColumns = `id, full_name, email, phone, user_id, active, created_at, updated_at`

func scanCounselor(row rowScanner) (*Counselor, error) {
	c := &Counselor{}
	err := row.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.UserID, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func CreateCounselor(ctx context.Context, q db.Querier, c *Counselor) error {
	now := time.Now()
	c.ID = uuid.New()
	c.Active = true
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := q.ExecContext(ctx, `
		INSERT INTO counselors (id, full_name, email, phone, user_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7)
	`, c.ID, c.FullName, c.Email, c.Phone, c.UserID, now, now)
	return Classify("create counselor", err)
}

func ListCounselors(ctx context.Context, q db.Querier, includeInactive bool) ([]*Counselor, error) {
	query := `SELECT ` + counselorColumns + ` FROM counselors`
	if !includeInactive {
		query += ` WHERE active`
	}
	query += ` ORDER BY full_name`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, Classify("list counselors", err)
	}
	defer rows.Close()

	counselors := []*Counselor{}
	for rows.Next() {
		c, err := scanCounselor(rows)
		if err != nil {
			return nil, Classify("scan counselor", err)
		}
		counselors = append(counselors, c)
	}
	return counselors, Classify("list counselors", rows.Err())
}

func GetCounselorByID(ctx context.Context, q db.Querier, id uuid.UUID) (*Counselor, error) {
	c, err := scanCounselor(q.QueryRowContext(ctx, `SELECT `+counselorColumns+` FROM counselors WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, NewNotFoundError("Counselor not found")
	}
	if err != nil {
		return nil, Classify("get counselor", err)
	}
	return c, nil
}

func UpdateCounselor(ctx context.Context, q db.Querier, c *Counselor) error {
	c.UpdatedAt = time.Now()
	res, err := q.ExecContext(ctx, `
		UPDATE counselors SET full_name = $1, email = $2, phone = $3, updated_at = $4 WHERE id = $5
	`, c.FullName, c.Email, c.Phone, c.UpdatedAt, c.ID)
	return requireAffected(res, err, "update counselor", "Counselor not found")
}

// DeactivateCounselor hides a counselor from scheduling without losing history.
func DeactivateCounselor(ctx context.Context, q db.Querier, id uuid.UUID) error {
	res, err := q.ExecContext(ctx, `
		UPDATE counselors SET active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = $1
	`, id)
	return requireAffected(res, err, "deactivate counselor", "Counselor not found")
}

// LockCounselor takes a row lock on the counselor that is held until the
// surrounding transaction ends. Every scheduling transaction for the
// counselor queues behind it, which closes the check-then-insert race.
func LockCounselor(ctx context.Context, tx db.Querier, id uuid.UUID) error {
	var active bool
	err := tx.QueryRowContext(ctx, `SELECT active FROM counselors WHERE id = $1 FOR UPDATE`, id).Scan(&active)
	if err == sql.ErrNoRows {
		return NewNotFoundError("Counselor not found")
	}
	if err != nil {
		return Classify("lock counselor", err)
	}
	if !active {
		return NewValidationError("Counselor is inactive")
	}
	return nil
}
