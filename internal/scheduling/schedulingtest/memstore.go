// Package schedulingtest provides an in-memory scheduling.Store for tests.
package schedulingtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"consultdesk/internal/models"
	"consultdesk/internal/scheduling"

	"github.com/google/uuid"
)

// MemoryStore keeps counselors, subjects, assignments and meetings in maps.
// InTx holds the store mutex for the whole unit of work, which plays the role
// of the counselor row lock, and only publishes writes when fn succeeds.
type MemoryStore struct {
	mu          sync.RWMutex
	counselors  map[uuid.UUID]bool // id -> active
	subjects    map[models.SubjectRef]string
	assignments map[assignmentKey]bool
	meetings    []*models.Meeting

	// FailInsert, when set, is returned by InsertMeeting.
	FailInsert error
}

type assignmentKey struct {
	counselor uuid.UUID
	subject   models.SubjectRef
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counselors:  make(map[uuid.UUID]bool),
		subjects:    make(map[models.SubjectRef]string),
		assignments: make(map[assignmentKey]bool),
	}
}

func (s *MemoryStore) AddCounselor(id uuid.UUID, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counselors[id] = active
}

func (s *MemoryStore) AddSubject(subject models.SubjectRef, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects[subject] = name
}

func (s *MemoryStore) Assign(counselorID uuid.UUID, subject models.SubjectRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[assignmentKey{counselorID, subject}] = true
}

// AddMeeting stores a meeting directly, bypassing every check.
func (s *MemoryStore) AddMeeting(m *models.Meeting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = models.MeetingScheduled
	}
	s.meetings = append(s.meetings, m)
}

// SetStatus changes a stored meeting's status.
func (s *MemoryStore) SetStatus(id uuid.UUID, status models.MeetingStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.meetings {
		if m.ID == id {
			m.Status = status
		}
	}
}

// Meetings returns a copy of every stored meeting.
func (s *MemoryStore) Meetings() []models.Meeting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Meeting, 0, len(s.meetings))
	for _, m := range s.meetings {
		out = append(out, *m)
	}
	return out
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(tx scheduling.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.meetings = append(s.meetings, tx.pending...)
	return nil
}

func (s *MemoryStore) ListBookings(ctx context.Context, counselorID uuid.UUID, date string) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bookingsFor(s.meetings, counselorID, date), nil
}

func bookingsFor(meetings []*models.Meeting, counselorID uuid.UUID, date string) []models.Booking {
	bookings := []models.Booking{}
	for _, m := range meetings {
		if m.CounselorID != counselorID || m.MeetingDate != date || m.Status == models.MeetingCancelled {
			continue
		}
		bookings = append(bookings, models.Booking{
			MeetingID:       m.ID,
			MeetingTime:     m.MeetingTime,
			StartMinute:     m.StartMinute,
			DurationMinutes: m.DurationMinutes,
		})
	}
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].StartMinute < bookings[j].StartMinute
	})
	return bookings
}

// memTx runs with the store mutex already held.
type memTx struct {
	store   *MemoryStore
	pending []*models.Meeting
}

func (t *memTx) LockCounselor(ctx context.Context, counselorID uuid.UUID) error {
	active, ok := t.store.counselors[counselorID]
	if !ok {
		return models.NewNotFoundError("Counselor not found")
	}
	if !active {
		return models.NewValidationError("Counselor is inactive")
	}
	return nil
}

func (t *memTx) IsAssigned(ctx context.Context, counselorID uuid.UUID, subject models.SubjectRef) (bool, error) {
	return t.store.assignments[assignmentKey{counselorID, subject}], nil
}

func (t *memTx) LookupSubject(ctx context.Context, subject models.SubjectRef) (string, error) {
	name, ok := t.store.subjects[subject]
	if !ok {
		return "", models.NewNotFoundError("Subject not found")
	}
	return name, nil
}

func (t *memTx) ListBookings(ctx context.Context, counselorID uuid.UUID, date string) ([]models.Booking, error) {
	all := append(append([]*models.Meeting{}, t.store.meetings...), t.pending...)
	return bookingsFor(all, counselorID, date), nil
}

func (t *memTx) InsertMeeting(ctx context.Context, m *models.Meeting) error {
	if t.store.FailInsert != nil {
		return t.store.FailInsert
	}
	now := time.Now()
	m.ID = uuid.New()
	m.Status = models.MeetingScheduled
	m.CreatedAt = now
	m.UpdatedAt = now
	t.pending = append(t.pending, m)
	return nil
}

var _ scheduling.Store = (*MemoryStore)(nil)
