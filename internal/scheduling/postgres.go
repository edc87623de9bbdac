package scheduling

import (
	"context"
	"database/sql"

	"consultdesk/internal/db"
	"consultdesk/internal/models"

	"github.com/google/uuid"
)

// PostgresStore backs the scheduler with the meetings table. Each InTx is a
// read-committed transaction whose first statement is a FOR UPDATE lock on
// the counselor row.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(conn *sql.DB) *PostgresStore {
	return &PostgresStore{DB: conn}
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		return fn(pgTx{tx: tx})
	})
}

func (s *PostgresStore) ListBookings(ctx context.Context, counselorID uuid.UUID, date string) ([]models.Booking, error) {
	return models.ListBookings(ctx, s.DB, counselorID, date)
}

type pgTx struct {
	tx *sql.Tx
}

func (t pgTx) LockCounselor(ctx context.Context, counselorID uuid.UUID) error {
	return models.LockCounselor(ctx, t.tx, counselorID)
}

func (t pgTx) IsAssigned(ctx context.Context, counselorID uuid.UUID, subject models.SubjectRef) (bool, error) {
	return models.IsAssigned(ctx, t.tx, counselorID, subject)
}

func (t pgTx) LookupSubject(ctx context.Context, subject models.SubjectRef) (string, error) {
	return models.LookupSubjectName(ctx, t.tx, subject)
}

func (t pgTx) ListBookings(ctx context.Context, counselorID uuid.UUID, date string) ([]models.Booking, error) {
	return models.ListBookings(ctx, t.tx, counselorID, date)
}

func (t pgTx) InsertMeeting(ctx context.Context, m *models.Meeting) error {
	return models.InsertMeeting(ctx, t.tx, m)
}

var _ Store = (*PostgresStore)(nil)
