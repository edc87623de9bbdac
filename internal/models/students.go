package models

import (
	"context"
	"database/sql"
	"time"

	"consultdesk/internal/db"

	"github.com/google/uuid"
)

const studentColumns = `id, display_id, lead_id, full_name, phone, email, date_of_birth,
	passport_number, notes, created_at, updated_at`

func scanStudent(row rowScanner) (*Student, error) {
	s := &Student{}
	err := row.Scan(
		&s.ID, &s.DisplayID, &s.LeadID, &s.FullName, &s.Phone, &s.Email, &s.DateOfBirth,
		&s.PassportNumber, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateStudent assigns the next STU-#### display id and inserts the row.
func CreateStudent(ctx context.Context, q db.Querier, s *Student) error {
	displayID, err := NextDisplayID(ctx, q, CounterStudent, "STU", 4)
	if err != nil {
		return err
	}

	now := time.Now()
	s.ID = uuid.New()
	s.DisplayID = displayID
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err = q.ExecContext(ctx, `
		INSERT INTO students (id, display_id, lead_id, full_name, phone, email, date_of_birth,
		                      passport_number, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, s.ID, s.DisplayID, s.LeadID, s.FullName, s.Phone, s.Email, s.DateOfBirth,
		s.PassportNumber, s.Notes, now, now)
	return Classify("create student", err)
}

func ListStudents(ctx context.Context, q db.Querier, search string) ([]*Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE LOWER(full_name) LIKE LOWER($1) OR display_id ILIKE $1 OR phone LIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Classify("list students", err)
	}
	defer rows.Close()

	students := []*Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, Classify("scan student", err)
		}
		students = append(students, s)
	}
	return students, Classify("list students", rows.Err())
}

func GetStudentByID(ctx context.Context, q db.Querier, id uuid.UUID) (*Student, error) {
	s, err := scanStudent(q.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, NewNotFoundError("Student not found")
	}
	if err != nil {
		return nil, Classify("get student", err)
	}
	return s, nil
}

func UpdateStudent(ctx context.Context, q db.Querier, s *Student) error {
	s.UpdatedAt = time.Now()
	res, err := q.ExecContext(ctx, `
		UPDATE students SET full_name = $1, phone = $2, email = $3, date_of_birth = $4,
		                    passport_number = $5, notes = $6, updated_at = $7
		WHERE id = $8
	`, s.FullName, s.Phone, s.Email, s.DateOfBirth, s.PassportNumber, s.Notes, s.UpdatedAt, s.ID)
	return requireAffected(res, err, "update student", "Student not found")
}

func DeleteStudent(ctx context.Context, q db.Querier, id uuid.UUID) error {
	res, err := q.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	return requireAffected(res, err, "delete student", "Student not found")
}
