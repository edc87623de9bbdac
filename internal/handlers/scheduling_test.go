package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"consultdesk/internal/models"
	"consultdesk/internal/scheduling/schedulingtest"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

type schedulingFixture struct {
	store     *schedulingtest.MemoryStore
	handler   *SchedulingHandler
	counselor uuid.UUID
	lead      models.SubjectRef
}

func newSchedulingFixture(t *testing.T) *schedulingFixture {
	t.Helper()
	f := &schedulingFixture{
		store:     schedulingtest.NewMemoryStore(),
		counselor: uuid.New(),
		lead:      models.LeadSubject(uuid.New()),
	}
	f.store.AddCounselor(f.counselor, true)
	f.store.AddSubject(f.lead, "Amina Yusuf")
	f.store.Assign(f.counselor, f.lead)
	known := f.counselor
	f.handler = NewSchedulingHandler(f.store, func(_ context.Context, id uuid.UUID) error {
		if id != known {
			return models.NewNotFoundError("Counselor not found")
		}
		return nil
	})
	return f
}

func (f *schedulingFixture) book(start string, startMinute, duration int) {
	f.store.AddMeeting(&models.Meeting{
		CounselorID:     f.counselor,
		Subject:         f.lead,
		SubjectName:     "Amina Yusuf",
		MeetingDate:     "2024-06-01",
		MeetingTime:     start,
		StartMinute:     startMinute,
		DurationMinutes: duration,
	})
}

func (f *schedulingFixture) post(t *testing.T, leadID string, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/leads/"+leadID+"/meetings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.CreateMeeting(models.SubjectLead)(rec, req, httprouter.Params{{Key: "id", Value: leadID}})
	return rec, decodeBody(t, rec)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%q)", err, rec.Body.String())
	}
	return body
}

func meetingBody(counselor uuid.UUID, start string, duration int) string {
	return `{"counselorId":"` + counselor.String() + `","meetingDate":"2024-06-01","meetingTime":"` +
		start + `","durationMinutes":` + strconv.Itoa(duration) + `}`
}

func TestCreateMeetingCreated(t *testing.T) {
	f := newSchedulingFixture(t)
	rec, body := f.post(t, f.lead.ID.String(), meetingBody(f.counselor, "10:00", 30))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%v)", rec.Code, body)
	}
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	if body["subjectName"] != "Amina Yusuf" {
		t.Errorf("subjectName = %v", body["subjectName"])
	}
	if _, err := uuid.Parse(body["meetingId"].(string)); err != nil {
		t.Errorf("meetingId = %v: %v", body["meetingId"], err)
	}
	if got := len(f.store.Meetings()); got != 1 {
		t.Errorf("stored meetings = %d, want 1", got)
	}
}

func TestCreateMeetingStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(f *schedulingFixture)
		leadID     func(f *schedulingFixture) string
		body       func(f *schedulingFixture) string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "missing fields",
			body:       func(f *schedulingFixture) string { return `{"counselorId":"` + f.counselor.String() + `"}` },
			wantStatus: http.StatusBadRequest,
			wantMsg:    "missing required field: meetingDate, meetingTime, durationMinutes",
		},
		{
			name:       "duration too short",
			body:       func(f *schedulingFixture) string { return meetingBody(f.counselor, "10:00", 10) },
			wantStatus: http.StatusBadRequest,
			wantMsg:    "duration out of range",
		},
		{
			name:       "before business hours",
			body:       func(f *schedulingFixture) string { return meetingBody(f.counselor, "08:30", 30) },
			wantStatus: http.StatusBadRequest,
			wantMsg:    "outside business hours",
		},
		{
			name:       "unknown counselor",
			body:       func(f *schedulingFixture) string { return meetingBody(uuid.New(), "10:00", 30) },
			wantStatus: http.StatusNotFound,
			wantMsg:    "Counselor not found",
		},
		{
			name: "assigned but subject missing",
			leadID: func(f *schedulingFixture) string {
				ghost := models.LeadSubject(uuid.New())
				f.store.Assign(f.counselor, ghost)
				return ghost.ID.String()
			},
			body:       func(f *schedulingFixture) string { return meetingBody(f.counselor, "10:00", 30) },
			wantStatus: http.StatusNotFound,
			wantMsg:    "subject not found",
		},
		{
			name:       "not assigned",
			leadID:     func(f *schedulingFixture) string { return uuid.NewString() },
			body:       func(f *schedulingFixture) string { return meetingBody(f.counselor, "10:00", 30) },
			wantStatus: http.StatusBadRequest,
			wantMsg:    "counselor not assigned to subject",
		},
		{
			name:       "overlap",
			setup:      func(f *schedulingFixture) { f.book("10:00", 600, 30) },
			body:       func(f *schedulingFixture) string { return meetingBody(f.counselor, "10:15", 30) },
			wantStatus: http.StatusConflict,
			wantMsg:    "Counselor already has a meeting at 10:00 for 30 minutes on this date",
		},
		{
			name:       "bad lead id",
			leadID:     func(f *schedulingFixture) string { return "not-a-uuid" },
			body:       func(f *schedulingFixture) string { return meetingBody(f.counselor, "10:00", 30) },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad counselor id",
			body:       func(f *schedulingFixture) string { return `{"counselorId":"nope"}` },
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid counselorId",
		},
		{
			name:       "unknown json field",
			body:       func(f *schedulingFixture) string { return `{"room":"A"}` },
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid request body",
		},
		{
			name:       "empty body",
			body:       func(f *schedulingFixture) string { return `` },
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Request body is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSchedulingFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			leadID := f.lead.ID.String()
			if tt.leadID != nil {
				leadID = tt.leadID(f)
			}
			before := len(f.store.Meetings())

			rec, body := f.post(t, leadID, tt.body(f))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%v)", rec.Code, tt.wantStatus, body)
			}
			if body["success"] != false {
				t.Errorf("success = %v, want false", body["success"])
			}
			if msg, _ := body["message"].(string); !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", msg, tt.wantMsg)
			}
			if after := len(f.store.Meetings()); after != before {
				t.Errorf("meetings changed from %d to %d on a rejected request", before, after)
			}
		})
	}
}

func TestCreateMeetingBackToBack(t *testing.T) {
	f := newSchedulingFixture(t)
	f.book("10:00", 600, 30)

	rec, body := f.post(t, f.lead.ID.String(), meetingBody(f.counselor, "10:30", 30))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%v)", rec.Code, body)
	}
}

func TestAvailableSlots(t *testing.T) {
	f := newSchedulingFixture(t)
	f.book("14:00", 840, 60)
	f.book("10:00", 600, 30)

	req := httptest.NewRequest(http.MethodGet, "/api/counselors/x/available-slots?date=2024-06-01", nil)
	rec := httptest.NewRecorder()
	f.handler.AvailableSlots(rec, req, httprouter.Params{{Key: "id", Value: f.counselor.String()}})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		Success     bool   `json:"success"`
		Date        string `json:"date"`
		BookedSlots []struct {
			Start int `json:"start"`
			End   int `json:"end"`
		} `json:"bookedSlots"`
		FreeSlots []struct {
			Start int `json:"start"`
			End   int `json:"end"`
		} `json:"freeSlots"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.Date != "2024-06-01" {
		t.Errorf("success=%v date=%q", body.Success, body.Date)
	}
	if len(body.BookedSlots) != 2 ||
		body.BookedSlots[0].Start != 600 || body.BookedSlots[0].End != 630 ||
		body.BookedSlots[1].Start != 840 || body.BookedSlots[1].End != 900 {
		t.Errorf("bookedSlots = %+v", body.BookedSlots)
	}
	if len(body.FreeSlots) != 3 ||
		body.FreeSlots[0].Start != 540 || body.FreeSlots[0].End != 600 ||
		body.FreeSlots[2].Start != 900 || body.FreeSlots[2].End != 1020 {
		t.Errorf("freeSlots = %+v", body.FreeSlots)
	}
}

func TestAvailableSlotsErrors(t *testing.T) {
	tests := []struct {
		name       string
		counselor  func(f *schedulingFixture) string
		query      string
		wantStatus int
	}{
		{"missing date", func(f *schedulingFixture) string { return f.counselor.String() }, "", http.StatusBadRequest},
		{"bad date", func(f *schedulingFixture) string { return f.counselor.String() }, "?date=2024-13-01", http.StatusBadRequest},
		{"bad id", func(f *schedulingFixture) string { return "abc" }, "?date=2024-06-01", http.StatusBadRequest},
		{"unknown counselor", func(f *schedulingFixture) string { return uuid.NewString() }, "?date=2024-06-01", http.StatusNotFound},
		{"unknown counselor bad date", func(f *schedulingFixture) string { return uuid.NewString() }, "?date=2024-13-01", http.StatusBadRequest},
		{"unknown counselor missing date", func(f *schedulingFixture) string { return uuid.NewString() }, "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSchedulingFixture(t)
			req := httptest.NewRequest(http.MethodGet, "/api/counselors/x/available-slots"+tt.query, nil)
			rec := httptest.NewRecorder()
			f.handler.AvailableSlots(rec, req, httprouter.Params{{Key: "id", Value: tt.counselor(f)}})
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}
