package models

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ValidationError reports malformed or out-of-policy input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports a referenced record that does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ConflictError reports a collision with existing state, such as an
// overlapping meeting or a duplicate unique key.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// StorageError wraps an unexpected failure of the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// PostgreSQL SQLSTATE codes we translate into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// constraintMessages gives friendly text for named unique constraints.
var constraintMessages = map[string]string{
	"leads_phone_key":                   "Phone number already exists",
	"counselors_email_key":              "Counselor email already exists",
	"users_email_key":                   "Email already exists",
	"assignments_counselor_lead_key":    "Counselor is already assigned to this lead",
	"assignments_counselor_student_key": "Counselor is already assigned to this student",
	"universities_name_country_key":     "University already exists in this country",
	"intakes_university_name_key":       "Intake already exists for this university",
	"countries_pkey":                    "Country code already exists",
}

// Classify converts a driver error into one of the domain error kinds.
// Errors that are already domain errors pass through untouched; nil stays nil.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		vErr *ValidationError
		nErr *NotFoundError
		cErr *ConflictError
		sErr *StorageError
	)
	if errors.As(err, &vErr) || errors.As(err, &nErr) || errors.As(err, &cErr) || errors.As(err, &sErr) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Message: op + ": not found"}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if msg, ok := constraintMessages[pgErr.ConstraintName]; ok {
				return &ConflictError{Message: msg}
			}
			return &ConflictError{Message: "Record already exists"}
		case pgForeignKeyViolation:
			return &NotFoundError{Message: "Referenced record does not exist"}
		case pgCheckViolation:
			return &ValidationError{Message: "Value violates constraint " + pgErr.ConstraintName}
		}
	}

	return &StorageError{Op: op, Err: err}
}
