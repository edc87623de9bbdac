package handlers

import (
	"database/sql"
	"time"

	"consultdesk/internal/models"

	"github.com/google/uuid"
)

func nullStr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullDate(t sql.NullTime) *string {
	if !t.Valid {
		return nil
	}
	s := t.Time.Format("2006-01-02")
	return &s
}

func nullTimestamp(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

func nullID(id uuid.NullUUID) *string {
	if !id.Valid {
		return nil
	}
	s := id.UUID.String()
	return &s
}

type leadResponse struct {
	ID                string    `json:"id"`
	FullName          string    `json:"fullName"`
	Phone             string    `json:"phone"`
	Email             *string   `json:"email"`
	Source            *string   `json:"source"`
	Notes             *string   `json:"notes"`
	InterestedCountry *string   `json:"interestedCountry"`
	Status            string    `json:"status"`
	StatusDisplay     string    `json:"statusDisplay"`
	NextAction        string    `json:"nextAction"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func toLeadResponse(l *models.Lead) leadResponse {
	info := models.GetLeadStatusInfo(l.Status)
	return leadResponse{
		ID:                l.ID.String(),
		FullName:          l.FullName,
		Phone:             l.Phone,
		Email:             nullStr(l.Email),
		Source:            nullStr(l.Source),
		Notes:             nullStr(l.Notes),
		InterestedCountry: nullStr(l.InterestedCountry),
		Status:            l.Status,
		StatusDisplay:     info.DisplayName,
		NextAction:        info.NextAction,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

type studentResponse struct {
	ID             string    `json:"id"`
	DisplayID      string    `json:"displayId"`
	LeadID         *string   `json:"leadId"`
	FullName       string    `json:"fullName"`
	Phone          *string   `json:"phone"`
	Email          *string   `json:"email"`
	DateOfBirth    *string   `json:"dateOfBirth"`
	PassportNumber *string   `json:"passportNumber"`
	Notes          *string   `json:"notes"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toStudentResponse(s *models.Student) studentResponse {
	return studentResponse{
		ID:             s.ID.String(),
		DisplayID:      s.DisplayID,
		LeadID:         nullID(s.LeadID),
		FullName:       s.FullName,
		Phone:          nullStr(s.Phone),
		Email:          nullStr(s.Email),
		DateOfBirth:    nullDate(s.DateOfBirth),
		PassportNumber: nullStr(s.PassportNumber),
		Notes:          nullStr(s.Notes),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

type counselorResponse struct {
	ID       string  `json:"id"`
	FullName string  `json:"fullName"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone"`
	UserID   *string `json:"userId"`
	Active   bool    `json:"active"`
}

func toCounselorResponse(c *models.Counselor) counselorResponse {
	return counselorResponse{
		ID:       c.ID.String(),
		FullName: c.FullName,
		Email:    c.Email,
		Phone:    nullStr(c.Phone),
		UserID:   nullID(c.UserID),
		Active:   c.Active,
	}
}

type assignmentResponse struct {
	ID          string    `json:"id"`
	CounselorID string    `json:"counselorId"`
	SubjectType string    `json:"subjectType"`
	SubjectID   string    `json:"subjectId"`
	SubjectName string    `json:"subjectName,omitempty"`
	AssignedAt  time.Time `json:"assignedAt"`
}

func toAssignmentResponse(a *models.Assignment) assignmentResponse {
	return assignmentResponse{
		ID:          a.ID.String(),
		CounselorID: a.CounselorID.String(),
		SubjectType: string(a.Subject.Kind),
		SubjectID:   a.Subject.ID.String(),
		SubjectName: a.SubjectName,
		AssignedAt:  a.AssignedAt,
	}
}

type meetingResponse struct {
	ID              string  `json:"id"`
	CounselorID     string  `json:"counselorId"`
	SubjectType     string  `json:"subjectType"`
	SubjectID       string  `json:"subjectId"`
	SubjectName     string  `json:"subjectName"`
	MeetingDate     string  `json:"meetingDate"`
	MeetingTime     string  `json:"meetingTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Start           int     `json:"start"`
	End             int     `json:"end"`
	Status          string  `json:"status"`
	Notes           *string `json:"notes"`
	NotesImagePath  *string `json:"notesImagePath"`
}

func toMeetingResponse(m *models.Meeting) meetingResponse {
	return meetingResponse{
		ID:              m.ID.String(),
		CounselorID:     m.CounselorID.String(),
		SubjectType:     string(m.Subject.Kind),
		SubjectID:       m.Subject.ID.String(),
		SubjectName:     m.SubjectName,
		MeetingDate:     m.MeetingDate,
		MeetingTime:     m.MeetingTime,
		DurationMinutes: m.DurationMinutes,
		Start:           m.StartMinute,
		End:             m.EndMinute(),
		Status:          string(m.Status),
		Notes:           nullStr(m.Notes),
		NotesImagePath:  nullStr(m.NotesImagePath),
	}
}

func toMeetingResponses(meetings []*models.Meeting) []meetingResponse {
	out := make([]meetingResponse, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, toMeetingResponse(m))
	}
	return out
}

type universityResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	CountryCode string  `json:"countryCode"`
	City        *string `json:"city"`
	Website     *string `json:"website"`
}

type intakeResponse struct {
	ID                  string  `json:"id"`
	UniversityID        string  `json:"universityId"`
	Name                string  `json:"name"`
	StartDate           string  `json:"startDate"`
	ApplicationDeadline *string `json:"applicationDeadline"`
}

type applicationResponse struct {
	ID           string    `json:"id"`
	DisplayID    string    `json:"displayId"`
	StudentID    string    `json:"studentId"`
	UniversityID string    `json:"universityId"`
	IntakeID     *string   `json:"intakeId"`
	Program      string    `json:"program"`
	Status       string    `json:"status"`
	Notes        *string   `json:"notes"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toApplicationResponse(a *models.Application) applicationResponse {
	return applicationResponse{
		ID:           a.ID.String(),
		DisplayID:    a.DisplayID,
		StudentID:    a.StudentID.String(),
		UniversityID: a.UniversityID.String(),
		IntakeID:     nullID(a.IntakeID),
		Program:      a.Program,
		Status:       a.Status,
		Notes:        nullStr(a.Notes),
		CreatedAt:    a.CreatedAt,
	}
}

type visaResponse struct {
	ID          string    `json:"id"`
	DisplayID   string    `json:"displayId"`
	StudentID   string    `json:"studentId"`
	CountryCode string    `json:"countryCode"`
	VisaType    string    `json:"visaType"`
	Status      string    `json:"status"`
	SubmittedOn *string   `json:"submittedOn"`
	DecisionOn  *string   `json:"decisionOn"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toVisaResponse(v *models.VisaApplication) visaResponse {
	return visaResponse{
		ID:          v.ID.String(),
		DisplayID:   v.DisplayID,
		StudentID:   v.StudentID.String(),
		CountryCode: v.CountryCode,
		VisaType:    v.VisaType,
		Status:      v.Status,
		SubmittedOn: nullDate(v.SubmittedOn),
		DecisionOn:  nullDate(v.DecisionOn),
		Notes:       nullStr(v.Notes),
		CreatedAt:   v.CreatedAt,
	}
}

type visitorResponse struct {
	ID              string     `json:"id"`
	FullName        string     `json:"fullName"`
	Phone           *string    `json:"phone"`
	Purpose         string     `json:"purpose"`
	HostCounselorID *string    `json:"hostCounselorId"`
	CheckedInAt     time.Time  `json:"checkedInAt"`
	CheckedOutAt    *time.Time `json:"checkedOutAt"`
}

func toVisitorResponse(v *models.Visitor) visitorResponse {
	return visitorResponse{
		ID:              v.ID.String(),
		FullName:        v.FullName,
		Phone:           nullStr(v.Phone),
		Purpose:         v.Purpose,
		HostCounselorID: nullID(v.HostCounselorID),
		CheckedInAt:     v.CheckedInAt,
		CheckedOutAt:    nullTimestamp(v.CheckedOutAt),
	}
}
