package models

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"consultdesk/internal/db"

	"github.com/google/uuid"
)

func ListCountries(ctx context.Context, q db.Querier) ([]Country, error) {
	rows, err := q.QueryContext(ctx, `SELECT code, name FROM countries ORDER BY name`)
	if err != nil {
		return nil, Classify("list countries", err)
	}
	defer rows.Close()

	countries := []Country{}
	for rows.Next() {
		var c Country
		if err := rows.Scan(&c.Code, &c.Name); err != nil {
			return nil, Classify("scan country", err)
		}
		countries = append(countries, c)
	}
	return countries, Classify("list countries", rows.Err())
}

// CreateCountry stores a country under its upper-cased ISO code.
func CreateCountry(ctx context.Context, q db.Querier, c *Country) error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	_, err := q.ExecContext(ctx, `INSERT INTO countries (code, name) VALUES ($1, $2)`, c.Code, c.Name)
	return Classify("create country", err)
}

func DeleteCountry(ctx context.Context, q db.Querier, code string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM countries WHERE code = $1`, strings.ToUpper(code))
	return requireAffected(res, err, "delete country", "Country not found")
}

func ListUniversities(ctx context.Context, q db.Querier, countryCode string) ([]*University, error) {
	query := `SELECT id, name, country_code, city, website, created_at FROM universities`
	args := []interface{}{}
	if countryCode != "" {
		query += ` WHERE country_code = $1`
		args = append(args, strings.ToUpper(countryCode))
	}
	query += ` ORDER BY name`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Classify("list universities", err)
	}
	defer rows.Close()

	universities := []*University{}
	for rows.Next() {
		u := &University{}
		if err := rows.Scan(&u.ID, &u.Name, &u.CountryCode, &u.City, &u.Website, &u.CreatedAt); err != nil {
			return nil, Classify("scan university", err)
		}
		universities = append(universities, u)
	}
	return universities, Classify("list universities", rows.Err())
}

func CreateUniversity(ctx context.Context, q db.Querier, u *University) error {
	u.ID = uuid.New()
	u.CountryCode = strings.ToUpper(u.CountryCode)
	u.CreatedAt = time.Now()
	_, err := q.ExecContext(ctx, `
		INSERT INTO universities (id, name, country_code, city, website, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Name, u.CountryCode, u.City, u.Website, u.CreatedAt)
	return Classify("create university", err)
}

func DeleteUniversity(ctx context.Context, q db.Querier, id uuid.UUID) error {
	res, err := q.ExecContext(ctx, `DELETE FROM universities WHERE id = $1`, id)
	return requireAffected(res, err, "delete university", "University not found")
}

func ListIntakes(ctx context.Context, q db.Querier, universityID uuid.NullUUID) ([]*Intake, error) {
	query := `SELECT id, university_id, name, start_date, application_deadline FROM intakes`
	args := []interface{}{}
	if universityID.Valid {
		query += ` WHERE university_id = $1`
		args = append(args, universityID.UUID)
	}
	query += ` ORDER BY start_date`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Classify("list intakes", err)
	}
	defer rows.Close()

	intakes := []*Intake{}
	for rows.Next() {
		in := &Intake{}
		if err := rows.Scan(&in.ID, &in.UniversityID, &in.Name, &in.StartDate, &in.ApplicationDeadline); err != nil {
			return nil, Classify("scan intake", err)
		}
		intakes = append(intakes, in)
	}
	return intakes, Classify("list intakes", rows.Err())
}

func CreateIntake(ctx context.Context, q db.Querier, in *Intake) error {
	in.ID = uuid.New()
	_, err := q.ExecContext(ctx, `
		INSERT INTO intakes (id, university_id, name, start_date, application_deadline)
		VALUES ($1, $2, $3, $4, $5)
	`, in.ID, in.UniversityID, in.Name, in.StartDate, in.ApplicationDeadline)
	return Classify("create intake", err)
}

func DeleteIntake(ctx context.Context, q db.Querier, id uuid.UUID) error {
	res, err := q.ExecContext(ctx, `DELETE FROM intakes WHERE id = $1`, id)
	return requireAffected(res, err, "delete intake", "Intake not found")
}

// NullTime converts a zero time to a NULL column value.
func NullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
