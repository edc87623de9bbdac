package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"consultdesk/internal/middleware"
	"consultdesk/internal/models"
	"consultdesk/internal/scheduling"
	"consultdesk/internal/uploads"
	"consultdesk/internal/visitorpass"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

// Deps is everything the API routes need.
type Deps struct {
	DB       *sql.DB
	Auth     *middleware.Auth
	Limiter  *middleware.RateLimiter
	Images   *uploads.ImageStore
	Passes   *visitorpass.Issuer
	Location *time.Location
	// Store defaults to a PostgresStore over DB.
	Store scheduling.Store
}

// NewRouter registers every API route under /api.
func NewRouter(d Deps) *httprouter.Router {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Store == nil {
		d.Store = scheduling.NewPostgresStore(d.DB)
	}

	guard := func(roles []string, h httprouter.Handle) httprouter.Handle {
		return d.Auth.RequireRole(roles...)(h)
	}
	limit := func(h httprouter.Handle) httprouter.Handle {
		if d.Limiter == nil {
			return h
		}
		return d.Limiter.Limit(h)
	}
	write := func(roles []string, h httprouter.Handle) httprouter.Handle {
		return limit(guard(roles, h))
	}

	authH := NewAuthHandler(d.DB, d.Auth)
	leadH := NewLeadHandler(d.DB)
	studentH := NewStudentHandler(d.DB)
	counselorH := NewCounselorHandler(d.DB)
	assignH := NewAssignmentHandler(d.DB)
	schedH := NewSchedulingHandler(d.Store, func(ctx context.Context, id uuid.UUID) error {
		_, err := models.GetCounselorByID(ctx, d.DB, id)
		return err
	})
	meetingH := NewMeetingHandler(d.DB, d.Images, d.Location)
	refH := NewReferenceHandler(d.DB)
	appH := NewApplicationHandler(d.DB, d.Location)
	visitorH := NewVisitorHandler(d.DB, d.Passes, d.Location)

	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.GET("/api/health", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		jsonResponse(w, http.StatusOK, map[string]interface{}{"success": true, "status": "ok"})
	})

	// Auth
	router.POST("/api/auth/login", limit(authH.Login))
	router.POST("/api/auth/logout", d.Auth.Authenticate(authH.Logout))
	router.GET("/api/auth/me", d.Auth.Authenticate(authH.Me))

	// Leads
	router.GET("/api/leads", guard(allStaff, leadH.List))
	router.POST("/api/leads", write(allStaff, leadH.Create))
	router.GET("/api/leads/:id", guard(allStaff, leadH.Get))
	router.PUT("/api/leads/:id", write(allStaff, leadH.Update))
	router.PATCH("/api/leads/:id/status", write(adminCounsel, leadH.UpdateStatus))
	router.DELETE("/api/leads/:id", write(adminOnly, leadH.Delete))
	router.POST("/api/leads/:id/convert", write(adminCounsel, leadH.Convert))
	router.POST("/api/leads/:id/assignments", write(adminOnly, assignH.Assign(models.SubjectLead)))
	router.DELETE("/api/leads/:id/assignments/:counselorId", write(adminOnly, assignH.Unassign(models.SubjectLead)))
	router.GET("/api/leads/:id/meetings", guard(allStaff, meetingH.ListForSubject(models.SubjectLead)))
	router.POST("/api/leads/:id/meetings", write(allStaff, schedH.CreateMeeting(models.SubjectLead)))

	// Students
	router.GET("/api/students", guard(allStaff, studentH.List))
	router.POST("/api/students", write(adminCounsel, studentH.Create))
	router.GET("/api/students/:id", guard(allStaff, studentH.Get))
	router.PUT("/api/students/:id", write(adminCounsel, studentH.Update))
	router.DELETE("/api/students/:id", write(adminOnly, studentH.Delete))
	router.POST("/api/students/:id/assignments", write(adminOnly, assignH.Assign(models.SubjectStudent)))
	router.DELETE("/api/students/:id/assignments/:counselorId", write(adminOnly, assignH.Unassign(models.SubjectStudent)))
	router.GET("/api/students/:id/meetings", guard(allStaff, meetingH.ListForSubject(models.SubjectStudent)))
	router.POST("/api/students/:id/meetings", write(allStaff, schedH.CreateMeeting(models.SubjectStudent)))
	router.GET("/api/students/:id/applications", guard(adminCounsel, appH.ListApplications))
	router.POST("/api/students/:id/applications", write(adminCounsel, appH.CreateApplication))
	router.GET("/api/students/:id/visa-applications", guard(adminCounsel, appH.ListVisas))
	router.POST("/api/students/:id/visa-applications", write(adminCounsel, appH.CreateVisa))

	// Counselors
	router.GET("/api/counselors", guard(allStaff, counselorH.List))
	router.POST("/api/counselors", write(adminOnly, counselorH.Create))
	router.GET("/api/counselors/:id", guard(allStaff, counselorH.Get))
	router.PUT("/api/counselors/:id", write(adminOnly, counselorH.Update))
	router.DELETE("/api/counselors/:id", write(adminOnly, counselorH.Deactivate))
	router.GET("/api/counselors/:id/assignments", guard(allStaff, assignH.ListForCounselor))
	router.GET("/api/counselors/:id/available-slots", guard(allStaff, schedH.AvailableSlots))
	router.GET("/api/counselors/:id/meetings", guard(allStaff, meetingH.ListForCounselor))
	router.GET("/api/counselors/:id/calendar.ics", guard(allStaff, meetingH.CalendarICS))
	router.GET("/api/counselors/:id/day-sheet.pdf", guard(allStaff, meetingH.DaySheetPDF))

	// Meetings
	router.PATCH("/api/meetings/:id/status", write(adminCounsel, meetingH.UpdateStatus))
	router.POST("/api/meetings/:id/notes-image", write(adminCounsel, meetingH.UploadNotesImage))
	router.DELETE("/api/meetings/:id", write(adminOnly, meetingH.Delete))

	// Applications
	router.PATCH("/api/applications/:id/status", write(adminCounsel, appH.UpdateApplicationStatus))
	router.PATCH("/api/visa-applications/:id/status", write(adminCounsel, appH.UpdateVisaStatus))

	// Reference data
	router.GET("/api/countries", guard(allStaff, refH.ListCountries))
	router.POST("/api/countries", write(adminOnly, refH.CreateCountry))
	router.DELETE("/api/countries/:code", write(adminOnly, refH.DeleteCountry))
	router.GET("/api/universities", guard(allStaff, refH.ListUniversities))
	router.POST("/api/universities", write(adminOnly, refH.CreateUniversity))
	router.DELETE("/api/universities/:id", write(adminOnly, refH.DeleteUniversity))
	router.GET("/api/intakes", guard(allStaff, refH.ListIntakes))
	router.POST("/api/intakes", write(adminOnly, refH.CreateIntake))
	router.DELETE("/api/intakes/:id", write(adminOnly, refH.DeleteIntake))

	// Visitors
	router.GET("/api/visitors", guard(adminFrontDsk, visitorH.List))
	router.POST("/api/visitors", write(adminFrontDsk, visitorH.CheckIn))
	router.POST("/api/visitors/:id/checkout", write(adminFrontDsk, visitorH.CheckOut))
	router.GET("/api/visitors/:id/pass.png", guard(adminFrontDsk, visitorH.PassPNG))
	router.GET("/api/visitors/:id/pass.pdf", guard(adminFrontDsk, visitorH.PassPDF))
	router.POST("/api/visitor-passes/verify", write(adminFrontDsk, visitorH.VerifyPass))

	return router
}
