package models

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"consultdesk/internal/db"

	"github.com/google/uuid"
)

const applicationColumns = `id, display_id, student_id, university_id, intake_id, program, status,
	notes, created_at, updated_at`

func scanApplication(row rowScanner) (*Application, error) {
	a := &Application{}
	err := row.Scan(&a.ID, &a.DisplayID, &a.StudentID, &a.UniversityID, &a.IntakeID, &a.Program,
		&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CreateApplication records a university application as a draft with the
// next APP-##### display id.
func CreateApplication(ctx context.Context, conn *sql.DB, a *Application) error {
	return db.WithTx(ctx, conn, func(tx *sql.Tx) error {
		displayID, err := NextDisplayID(ctx, tx, CounterApplication, "APP", 5)
		if err != nil {
			return err
		}
		now := time.Now()
		a.ID = uuid.New()
		a.DisplayID = displayID
		a.Status = "draft"
		a.CreatedAt = now
		a.UpdatedAt = now

		_, err = tx.ExecContext(ctx, `
			INSERT INTO applications (id, display_id, student_id, university_id, intake_id, program,
			                          status, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, a.ID, a.DisplayID, a.StudentID, a.UniversityID, a.IntakeID, a.Program, a.Status, a.Notes, now, now)
		return Classify("create application", err)
	})
}

func ListApplicationsForStudent(ctx context.Context, q db.Querier, studentID uuid.UUID) ([]*Application, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE student_id = $1 ORDER BY created_at DESC`, studentID)
	if err != nil {
		return nil, Classify("list applications", err)
	}
	defer rows.Close()

	apps := []*Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, Classify("scan application", err)
		}
		apps = append(apps, a)
	}
	return apps, Classify("list applications", rows.Err())
}

func UpdateApplicationStatus(ctx context.Context, q db.Querier, id uuid.UUID, status string) error {
	if !IsValidApplicationStatus(status) {
		return NewValidationError("Invalid application status: %s", status)
	}
	res, err := q.ExecContext(ctx, `
		UPDATE applications SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2
	`, status, id)
	return requireAffected(res, err, "update application status", "Application not found")
}

const visaColumns = `id, display_id, student_id, country_code, visa_type, status, submitted_on,
	decision_on, notes, created_at, updated_at`

func scanVisa(row rowScanner) (*VisaApplication, error) {
	v := &VisaApplication{}
	err := row.Scan(&v.ID, &v.DisplayID, &v.StudentID, &v.CountryCode, &v.VisaType, &v.Status,
		&v.SubmittedOn, &v.DecisionOn, &v.Notes, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// CreateVisaApplication records a visa file in the preparing state with the
// next VISA-##### display id.
func CreateVisaApplication(ctx context.Context, conn *sql.DB, v *VisaApplication) error {
	return db.WithTx(ctx, conn, func(tx *sql.Tx) error {
		displayID, err := NextDisplayID(ctx, tx, CounterVisa, "VISA", 5)
		if err != nil {
			return err
		}
		now := time.Now()
		v.ID = uuid.New()
		v.DisplayID = displayID
		v.CountryCode = strings.ToUpper(v.CountryCode)
		v.Status = "preparing"
		v.CreatedAt = now
		v.UpdatedAt = now

		_, err = tx.ExecContext(ctx, `
			INSERT INTO visa_applications (id, display_id, student_id, country_code, visa_type, status,
			                               submitted_on, decision_on, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, v.ID, v.DisplayID, v.StudentID, v.CountryCode, v.VisaType, v.Status,
			v.SubmittedOn, v.DecisionOn, v.Notes, now, now)
		return Classify("create visa application", err)
	})
}

func ListVisaApplicationsForStudent(ctx context.Context, q db.Querier, studentID uuid.UUID) ([]*VisaApplication, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+visaColumns+` FROM visa_applications WHERE student_id = $1 ORDER BY created_at DESC`, studentID)
	if err != nil {
		return nil, Classify("list visa applications", err)
	}
	defer rows.Close()

	visas := []*VisaApplication{}
	for rows.Next() {
		v, err := scanVisa(rows)
		if err != nil {
			return nil, Classify("scan visa application", err)
		}
		visas = append(visas, v)
	}
	return visas, Classify("list visa applications", rows.Err())
}

// UpdateVisaStatus changes the visa status; approved and refused also stamp
// the decision date.
func UpdateVisaStatus(ctx context.Context, q db.Querier, id uuid.UUID, status string) error {
	if !IsValidVisaStatus(status) {
		return NewValidationError("Invalid visa status: %s", status)
	}
	res, err := q.ExecContext(ctx, `
		UPDATE visa_applications
		SET status = $1,
		    submitted_on = CASE WHEN $1 = 'lodged' AND submitted_on IS NULL THEN CURRENT_DATE ELSE submitted_on END,
		    decision_on = CASE WHEN $1 IN ('approved', 'refused') THEN CURRENT_DATE ELSE decision_on END,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, status, id)
	return requireAffected(res, err, "update visa status", "Visa application not found")
}
