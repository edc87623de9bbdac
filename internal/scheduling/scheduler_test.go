package scheduling_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"consultdesk/internal/models"
	"consultdesk/internal/scheduling"
	"consultdesk/internal/scheduling/schedulingtest"

	"github.com/google/uuid"
)

const testDate = "2024-06-01"

type fixture struct {
	store     *schedulingtest.MemoryStore
	sched     *scheduling.Scheduler
	avail     *scheduling.Availability
	counselor uuid.UUID
	lead      models.SubjectRef
	student   models.SubjectRef
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     schedulingtest.NewMemoryStore(),
		counselor: uuid.New(),
		lead:      models.LeadSubject(uuid.New()),
		student:   models.StudentSubject(uuid.New()),
	}
	f.store.AddCounselor(f.counselor, true)
	f.store.AddSubject(f.lead, "Amina Yusuf")
	f.store.AddSubject(f.student, "Karim Haddad")
	f.store.Assign(f.counselor, f.lead)
	f.store.Assign(f.counselor, f.student)
	f.sched = scheduling.NewScheduler(f.store)
	f.avail = scheduling.NewAvailability(f.store)
	return f
}

func minutes(n int) *int { return &n }

func (f *fixture) request(start string, duration int) scheduling.Request {
	return scheduling.Request{
		CounselorID:     f.counselor,
		Subject:         f.lead,
		Date:            testDate,
		StartTime:       start,
		DurationMinutes: minutes(duration),
	}
}

func (f *fixture) mustSchedule(t *testing.T, start string, duration int) *scheduling.Result {
	t.Helper()
	res, err := f.sched.Schedule(context.Background(), f.request(start, duration))
	if err != nil {
		t.Fatalf("Schedule(%s, %d) error = %v", start, duration, err)
	}
	return res
}

func TestScheduleScenarioA(t *testing.T) {
	f := newFixture(t)

	res := f.mustSchedule(t, "10:00", 30)
	if res.SubjectName != "Amina Yusuf" {
		t.Errorf("SubjectName = %q, want Amina Yusuf", res.SubjectName)
	}
	if res.MeetingID == uuid.Nil {
		t.Error("MeetingID should be set")
	}

	slots, err := f.avail.BookedSlots(context.Background(), f.counselor, testDate)
	if err != nil {
		t.Fatalf("BookedSlots() error = %v", err)
	}
	want := []scheduling.Interval{{Start: 600, End: 630}}
	if !reflect.DeepEqual(slots, want) {
		t.Errorf("BookedSlots() = %v, want %v", slots, want)
	}
}

func TestScheduleScenarioBConflict(t *testing.T) {
	f := newFixture(t)
	f.mustSchedule(t, "10:00", 30)

	_, err := f.sched.Schedule(context.Background(), f.request("10:15", 30))
	if !models.IsConflict(err) {
		t.Fatalf("Schedule() error = %v, want ConflictError", err)
	}
	if !strings.Contains(err.Error(), "10:00") || !strings.Contains(err.Error(), "30") {
		t.Errorf("conflict message %q should mention 10:00 and 30", err.Error())
	}
	if n := len(f.store.Meetings()); n != 1 {
		t.Errorf("stored meetings = %d, want 1", n)
	}
}

func TestScheduleBusinessHours(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		duration int
		wantErr  string
	}{
		{name: "scenario C before opening", start: "08:30", duration: 30, wantErr: "before business hours"},
		{name: "runs past closing", start: "16:45", duration: 30, wantErr: "after business hours"},
		{name: "starts at closing", start: "17:00", duration: 15, wantErr: "after business hours"},
		{name: "scenario E ends exactly at closing", start: "16:45", duration: 15},
		{name: "starts exactly at opening", start: "09:00", duration: 480},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			res, err := f.sched.Schedule(context.Background(), f.request(tt.start, tt.duration))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Schedule() error = %v", err)
				}
				if res.Interval.Start < scheduling.BusinessStart || res.Interval.End > scheduling.BusinessEnd {
					t.Errorf("interval %v outside business hours", res.Interval)
				}
				return
			}
			if !models.IsValidation(err) {
				t.Fatalf("Schedule() error = %v, want ValidationError", err)
			}
			if !strings.Contains(err.Error(), "outside business hours") || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention outside business hours and %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestScheduleDurationBounds(t *testing.T) {
	starts := []string{"08:00", "09:00", "12:00", "16:59", "23:00", "not-a-time"}
	for _, duration := range []int{-30, 0, 14, 481, 600} {
		for _, start := range starts {
			t.Run(fmt.Sprintf("%d@%s", duration, start), func(t *testing.T) {
				f := newFixture(t)
				_, err := f.sched.Schedule(context.Background(), f.request(start, duration))
				if !models.IsValidation(err) {
					t.Fatalf("Schedule() error = %v, want ValidationError", err)
				}
				if !strings.Contains(err.Error(), "duration out of range") {
					t.Errorf("error %q should mention duration out of range", err.Error())
				}
			})
		}
	}

	for _, duration := range []int{15, 480} {
		f := newFixture(t)
		if _, err := f.sched.Schedule(context.Background(), f.request("09:00", duration)); err != nil {
			t.Errorf("duration %d: Schedule() error = %v", duration, err)
		}
	}
}

func TestScheduleValidation(t *testing.T) {
	f := newFixture(t)
	stranger := models.LeadSubject(uuid.New())
	unassigned := models.StudentSubject(uuid.New())
	f.store.AddSubject(unassigned, "Unassigned Student")
	ghost := models.StudentSubject(uuid.New())
	f.store.Assign(f.counselor, ghost)
	inactive := uuid.New()
	f.store.AddCounselor(inactive, false)

	tests := []struct {
		name   string
		mutate func(r *scheduling.Request)
		check  func(error) bool
		want   string
	}{
		{
			name:   "missing counselor",
			mutate: func(r *scheduling.Request) { r.CounselorID = uuid.Nil },
			check:  models.IsValidation,
			want:   "missing required field",
		},
		{
			name:   "missing date",
			mutate: func(r *scheduling.Request) { r.Date = "" },
			check:  models.IsValidation,
			want:   "meetingDate",
		},
		{
			name:   "missing time",
			mutate: func(r *scheduling.Request) { r.StartTime = " " },
			check:  models.IsValidation,
			want:   "meetingTime",
		},
		{
			name:   "missing duration",
			mutate: func(r *scheduling.Request) { r.DurationMinutes = nil },
			check:  models.IsValidation,
			want:   "durationMinutes",
		},
		{
			name:   "malformed date",
			mutate: func(r *scheduling.Request) { r.Date = "01/06/2024" },
			check:  models.IsValidation,
			want:   "invalid date",
		},
		{
			name:   "malformed time",
			mutate: func(r *scheduling.Request) { r.StartTime = "ten" },
			check:  models.IsValidation,
			want:   "invalid",
		},
		{
			name:   "unknown counselor",
			mutate: func(r *scheduling.Request) { r.CounselorID = uuid.New() },
			check:  models.IsNotFound,
			want:   "Counselor not found",
		},
		{
			name:   "inactive counselor",
			mutate: func(r *scheduling.Request) { r.CounselorID = inactive },
			check:  models.IsValidation,
			want:   "inactive",
		},
		{
			name:   "not assigned and unknown",
			mutate: func(r *scheduling.Request) { r.Subject = stranger },
			check:  models.IsValidation,
			want:   "counselor not assigned to subject",
		},
		{
			name:   "not assigned",
			mutate: func(r *scheduling.Request) { r.Subject = unassigned },
			check:  models.IsValidation,
			want:   "counselor not assigned to subject",
		},
		{
			name:   "assigned but subject gone",
			mutate: func(r *scheduling.Request) { r.Subject = ghost },
			check:  models.IsNotFound,
			want:   "subject not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request("10:00", 30)
			tt.mutate(&req)
			_, err := f.sched.Schedule(context.Background(), req)
			if err == nil || !tt.check(err) {
				t.Fatalf("Schedule() error = %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err.Error(), tt.want)
			}
		})
	}

	if n := len(f.store.Meetings()); n != 0 {
		t.Errorf("stored meetings = %d, want 0", n)
	}
}

func TestScheduleStorageFailureLeavesNothing(t *testing.T) {
	f := newFixture(t)
	f.store.FailInsert = errors.New("connection reset")

	_, err := f.sched.Schedule(context.Background(), f.request("10:00", 30))
	var storageErr *models.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("Schedule() error = %v, want StorageError", err)
	}
	if n := len(f.store.Meetings()); n != 0 {
		t.Errorf("stored meetings = %d, want 0", n)
	}
}

func TestScheduleCancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.sched.Schedule(ctx, f.request("10:00", 30)); err == nil {
		t.Fatal("Schedule() with cancelled context should fail")
	}
	if n := len(f.store.Meetings()); n != 0 {
		t.Errorf("stored meetings = %d, want 0", n)
	}
}

func TestScheduleIgnoresCancelledAndOtherDays(t *testing.T) {
	f := newFixture(t)
	cancelled := &models.Meeting{
		CounselorID: f.counselor, Subject: f.lead, MeetingDate: testDate,
		MeetingTime: "10:00", StartMinute: 600, DurationMinutes: 60, Status: models.MeetingCancelled,
	}
	f.store.AddMeeting(cancelled)
	f.store.AddMeeting(&models.Meeting{
		CounselorID: f.counselor, Subject: f.lead, MeetingDate: "2024-06-02",
		MeetingTime: "10:00", StartMinute: 600, DurationMinutes: 60,
	})
	other := uuid.New()
	f.store.AddCounselor(other, true)
	f.store.AddMeeting(&models.Meeting{
		CounselorID: other, Subject: f.lead, MeetingDate: testDate,
		MeetingTime: "10:00", StartMinute: 600, DurationMinutes: 60,
	})

	f.mustSchedule(t, "10:00", 30)

	// A completed meeting still occupies its slot.
	f.store.SetStatus(cancelled.ID, models.MeetingCompleted)
	if _, err := f.sched.Schedule(context.Background(), f.request("10:45", 15)); !models.IsConflict(err) {
		t.Errorf("Schedule() over completed meeting error = %v, want ConflictError", err)
	}
}

func TestScheduleStudentSubject(t *testing.T) {
	f := newFixture(t)
	req := f.request("11:00", 45)
	req.Subject = f.student
	req.Notes = "  bring transcripts "

	res, err := f.sched.Schedule(context.Background(), req)
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if res.SubjectName != "Karim Haddad" {
		t.Errorf("SubjectName = %q", res.SubjectName)
	}

	stored := f.store.Meetings()
	if len(stored) != 1 {
		t.Fatalf("stored meetings = %d, want 1", len(stored))
	}
	m := stored[0]
	if m.Subject != f.student || m.MeetingTime != "11:00" || m.StartMinute != 660 || m.Status != models.MeetingScheduled {
		t.Errorf("stored meeting = %+v", m)
	}
	if !m.Notes.Valid || m.Notes.String != "bring transcripts" {
		t.Errorf("Notes = %+v", m.Notes)
	}
}

func TestSubjectNameIsFrozen(t *testing.T) {
	f := newFixture(t)
	f.mustSchedule(t, "10:00", 30)
	f.store.AddSubject(f.lead, "Amina Yusuf-Rahman")

	if got := f.store.Meetings()[0].SubjectName; got != "Amina Yusuf" {
		t.Errorf("SubjectName = %q, want the name at booking time", got)
	}
}

// P1: whatever order requests arrive in, accepted meetings never overlap.
func TestScheduleNoDoubleBooking(t *testing.T) {
	f := newFixture(t)
	type slot struct {
		start    string
		duration int
	}
	attempts := []slot{
		{"09:00", 60}, {"09:30", 30}, {"10:00", 15}, {"09:45", 30}, {"10:15", 120},
		{"12:00", 60}, {"11:45", 30}, {"13:00", 15}, {"12:30", 60}, {"16:00", 60},
		{"15:30", 45}, {"14:00", 90}, {"14:15", 15}, {"09:00", 480},
	}
	for _, a := range attempts {
		_, err := f.sched.Schedule(context.Background(), f.request(a.start, a.duration))
		if err != nil && !models.IsConflict(err) {
			t.Fatalf("Schedule(%s, %d) unexpected error %v", a.start, a.duration, err)
		}
	}
	assertDisjoint(t, f)
}

// P1 under concurrency: many goroutines race for the same hour and exactly
// one wins.
func TestScheduleConcurrentRequests(t *testing.T) {
	f := newFixture(t)
	const workers = 32

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, conflicts := 0, 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := scheduling.FormatClock(600 + (i%4)*15)
			_, err := f.sched.Schedule(context.Background(), f.request(start, 60))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case models.IsConflict(err):
				conflicts++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}(i)
	}
	wg.Wait()

	if succeeded != 1 || conflicts != workers-1 {
		t.Errorf("succeeded=%d conflicts=%d, want 1 and %d", succeeded, conflicts, workers-1)
	}
	assertDisjoint(t, f)
}

func assertDisjoint(t *testing.T, f *fixture) {
	t.Helper()
	slots, err := f.avail.BookedSlots(context.Background(), f.counselor, testDate)
	if err != nil {
		t.Fatalf("BookedSlots() error = %v", err)
	}
	for i := range slots {
		if slots[i].Start < scheduling.BusinessStart || slots[i].End > scheduling.BusinessEnd {
			t.Errorf("slot %v outside business hours", slots[i])
		}
		for j := i + 1; j < len(slots); j++ {
			if slots[i].Start < slots[j].End && slots[j].Start < slots[i].End {
				t.Errorf("slots %v and %v overlap", slots[i], slots[j])
			}
		}
	}
}
