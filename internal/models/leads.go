package models

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"consultdesk/internal/db"

	"github.com/google/uuid"
)

const leadColumns = `id, full_name, phone, email, source, notes, interested_country, status,
	created_by_user_id, created_at, updated_at`

func scanLead(row rowScanner) (*Lead, error) {
	lead := &Lead{}
	err := row.Scan(
		&lead.ID, &lead.FullName, &lead.Phone, &lead.Email, &lead.Source, &lead.Notes,
		&lead.InterestedCountry, &lead.Status, &lead.CreatedByUserID, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// ListLeads returns leads newest first, optionally filtered by status and a
// case-insensitive name/phone search.
func ListLeads(ctx context.Context, q db.Querier, statusFilter, searchFilter string) ([]*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if statusFilter != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, statusFilter)
		argIndex++
	}
	if searchFilter != "" {
		query += fmt.Sprintf(" AND (LOWER(full_name) LIKE LOWER($%d) OR phone LIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+searchFilter+"%")
		argIndex++
	}
	query += " ORDER BY created_at DESC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Classify("list leads", err)
	}
	defer rows.Close()

	leads := []*Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, Classify("scan lead", err)
		}
		leads = append(leads, lead)
	}
	return leads, Classify("list leads", rows.Err())
}

func GetLeadByID(ctx context.Context, q db.Querier, id uuid.UUID) (*Lead, error) {
	lead, err := scanLead(q.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, NewNotFoundError("Lead not found")
	}
	if err != nil {
		return nil, Classify("get lead", err)
	}
	return lead, nil
}

func CreateLead(ctx context.Context, q db.Querier, lead *Lead) error {
	now := time.Now()
	lead.ID = uuid.New()
	lead.Status = "new"
	lead.CreatedAt = now
	lead.UpdatedAt = now

	_, err := q.ExecContext(ctx, `
		INSERT INTO leads (id, full_name, phone, email, source, notes, interested_country, status,
		                   created_by_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, lead.ID, lead.FullName, lead.Phone, lead.Email, lead.Source, lead.Notes, lead.InterestedCountry,
		lead.Status, lead.CreatedByUserID, now, now)
	return Classify("create lead", err)
}

// UpdateLead rewrites the editable lead fields. Status changes go through
// UpdateLeadStatus.
func UpdateLead(ctx context.Context, q db.Querier, lead *Lead) error {
	lead.UpdatedAt = time.Now()
	res, err := q.ExecContext(ctx, `
		UPDATE leads SET full_name = $1, phone = $2, email = $3, source = $4, notes = $5,
		                 interested_country = $6, updated_at = $7
		WHERE id = $8
	`, lead.FullName, lead.Phone, lead.Email, lead.Source, lead.Notes, lead.InterestedCountry,
		lead.UpdatedAt, lead.ID)
	return requireAffected(res, err, "update lead", "Lead not found")
}

func UpdateLeadStatus(ctx context.Context, q db.Querier, leadID uuid.UUID, status string) error {
	res, err := q.ExecContext(ctx, `
		UPDATE leads SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2
	`, status, leadID)
	return requireAffected(res, err, "update lead status", "Lead not found")
}

// DeleteLead removes a lead. Assignments and meetings cascade at the schema level.
func DeleteLead(ctx context.Context, q db.Querier, leadID uuid.UUID) error {
	res, err := q.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, leadID)
	return requireAffected(res, err, "delete lead", "Lead not found")
}

// ConvertLead turns a lead into a student inside one transaction: the student
// row is created with a fresh display id, the lead's counselor assignments
// are copied over and the lead is marked converted.
func ConvertLead(ctx context.Context, conn *sql.DB, leadID uuid.UUID) (*Student, error) {
	var student *Student
	err := db.WithTx(ctx, conn, func(tx *sql.Tx) error {
		lead, err := scanLead(tx.QueryRowContext(ctx,
			`SELECT `+leadColumns+` FROM leads WHERE id = $1 FOR UPDATE`, leadID))
		if err == sql.ErrNoRows {
			return NewNotFoundError("Lead not found")
		}
		if err != nil {
			return Classify("get lead", err)
		}
		if lead.Status == "converted" {
			return NewConflictError("Lead has already been converted")
		}

		student = &Student{
			LeadID:   uuid.NullUUID{UUID: lead.ID, Valid: true},
			FullName: lead.FullName,
			Phone:    NullString(lead.Phone),
			Email:    lead.Email,
			Notes:    lead.Notes,
		}
		if err := CreateStudent(ctx, tx, student); err != nil {
			return err
		}
		if err := CopyLeadAssignmentsToStudent(ctx, tx, lead.ID, student.ID); err != nil {
			return err
		}
		return UpdateLeadStatus(ctx, tx, lead.ID, "converted")
	})
	if err != nil {
		return nil, err
	}
	return student, nil
}

// requireAffected classifies err and turns a zero-row update into NotFound.
func requireAffected(res sql.Result, err error, op, notFound string) error {
	if err != nil {
		return Classify(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Classify(op, err)
	}
	if n == 0 {
		return NewNotFoundError(notFound)
	}
	return nil
}
