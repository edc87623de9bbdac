package scheduling

import (
	"context"

	"consultdesk/internal/models"

	"github.com/google/uuid"
)

// Store is the meeting store the scheduler runs against.
type Store interface {
	// InTx runs fn in one all-or-nothing unit of work. Any error from fn
	// discards everything fn wrote.
	InTx(ctx context.Context, fn func(tx Tx) error) error
	// ListBookings is the read-only path used by availability queries.
	ListBookings(ctx context.Context, counselorID uuid.UUID, date string) ([]models.Booking, error)
}

// Tx is the set of operations the scheduler performs inside InTx.
type Tx interface {
	// LockCounselor serializes scheduling for the counselor until the
	// unit of work ends. It fails with NotFound for an unknown counselor.
	LockCounselor(ctx context.Context, counselorID uuid.UUID) error
	IsAssigned(ctx context.Context, counselorID uuid.UUID, subject models.SubjectRef) (bool, error)
	// LookupSubject returns the subject's display name or NotFound.
	LookupSubject(ctx context.Context, subject models.SubjectRef) (string, error)
	ListBookings(ctx context.Context, counselorID uuid.UUID, date string) ([]models.Booking, error)
	InsertMeeting(ctx context.Context, m *models.Meeting) error
}
