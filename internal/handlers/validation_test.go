package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"consultdesk/internal/uploads"
	"consultdesk/internal/visitorpass"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

// These requests are all rejected before any query runs, so the handlers are
// built without a database.
func TestHandlersRejectBadInput(t *testing.T) {
	meetings := NewMeetingHandler(nil, uploads.NewImageStore(t.TempDir()), time.UTC)
	refs := NewReferenceHandler(nil)
	apps := NewApplicationHandler(nil, time.UTC)
	visitors := NewVisitorHandler(nil, visitorpass.NewIssuer("secret"), time.UTC)
	id := httprouter.Params{{Key: "id", Value: uuid.NewString()}}
	tomorrow := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")

	tests := []struct {
		name    string
		handle  httprouter.Handle
		method  string
		target  string
		body    string
		params  httprouter.Params
		wantMsg string
	}{
		{"counselor meetings bad date", meetings.ListForCounselor, http.MethodGet, "/?date=01-06-2024", "", id, "invalid date"},
		{"day sheet missing date", meetings.DaySheetPDF, http.MethodGet, "/", "", id, "invalid date"},
		{"meeting status unknown", meetings.UpdateStatus, http.MethodPatch, "/", `{"status":"postponed"}`, id, "Invalid meeting status"},
		{"meeting status bad id", meetings.UpdateStatus, http.MethodPatch, "/", `{"status":"completed"}`, httprouter.Params{{Key: "id", Value: "x"}}, "Invalid id"},
		{"country code length", refs.CreateCountry, http.MethodPost, "/", `{"code":"GBR","name":"United Kingdom"}`, nil, "2-letter"},
		{"country missing name", refs.CreateCountry, http.MethodPost, "/", `{"code":"GB"}`, nil, "missing required field: name"},
		{"intake deadline after start", refs.CreateIntake, http.MethodPost, "/",
			`{"universityId":"` + uuid.NewString() + `","name":"Fall 2025","startDate":"2025-09-01","applicationDeadline":"2025-10-01"}`,
			nil, "applicationDeadline must not be after startDate"},
		{"intakes bad university filter", refs.ListIntakes, http.MethodGet, "/?university=abc", "", nil, "Invalid university"},
		{"application missing program", apps.CreateApplication, http.MethodPost, "/", `{"universityId":"` + uuid.NewString() + `"}`, id, "missing required field: program"},
		{"visa submitted in future", apps.CreateVisa, http.MethodPost, "/",
			`{"countryCode":"CA","visaType":"study","submittedOn":"` + tomorrow + `"}`, id, "submittedOn cannot be in the future"},
		{"visitor missing purpose", visitors.CheckIn, http.MethodPost, "/", `{"fullName":"Sami"}`, nil, "missing required field: purpose"},
		{"visitor bad host", visitors.CheckIn, http.MethodPost, "/", `{"fullName":"Sami","purpose":"Enquiry","hostCounselorId":"nope"}`, nil, "Invalid hostCounselorId"},
		{"visitors bad date", visitors.List, http.MethodGet, "/?date=yesterday", "", nil, "invalid date"},
		{"forged pass", visitors.VerifyPass, http.MethodPost, "/", `{"payload":"abc|Sami|1|forged"}`, nil, "invalid pass signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			tt.handle(rec, req, tt.params)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (%s)", rec.Code, rec.Body.String())
			}
			body := decodeBody(t, rec)
			if msg, _ := body["message"].(string); !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", msg, tt.wantMsg)
			}
		})
	}
}
