package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	FullName     string
	CreatedAt    time.Time
}

const (
	RoleAdmin     = "admin"
	RoleCounselor = "counselor"
	RoleFrontDesk = "frontdesk"
)

type Lead struct {
	ID                uuid.UUID
	FullName          string
	Phone             string
	Email             sql.NullString
	Source            sql.NullString
	Notes             sql.NullString
	InterestedCountry sql.NullString
	Status            string
	CreatedByUserID   uuid.NullUUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Student struct {
	ID             uuid.UUID
	DisplayID      string
	LeadID         uuid.NullUUID
	FullName       string
	Phone          sql.NullString
	Email          sql.NullString
	DateOfBirth    sql.NullTime
	PassportNumber sql.NullString
	Notes          sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Counselor struct {
	ID        uuid.UUID
	FullName  string
	Email     string
	Phone     sql.NullString
	UserID    uuid.NullUUID
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SubjectKind string

const (
	SubjectLead    SubjectKind = "lead"
	SubjectStudent SubjectKind = "student"
)

// SubjectRef names the lead or student a meeting or assignment concerns.
type SubjectRef struct {
	Kind SubjectKind
	ID   uuid.UUID
}

func LeadSubject(id uuid.UUID) SubjectRef    { return SubjectRef{Kind: SubjectLead, ID: id} }
func StudentSubject(id uuid.UUID) SubjectRef { return SubjectRef{Kind: SubjectStudent, ID: id} }

func (s SubjectRef) Valid() bool {
	return (s.Kind == SubjectLead || s.Kind == SubjectStudent) && s.ID != uuid.Nil
}

// columns returns the nullable (lead_id, student_id) pair for this subject.
func (s SubjectRef) columns() (uuid.NullUUID, uuid.NullUUID) {
	id := uuid.NullUUID{UUID: s.ID, Valid: true}
	if s.Kind == SubjectLead {
		return id, uuid.NullUUID{}
	}
	return uuid.NullUUID{}, id
}

func subjectFromColumns(leadID, studentID uuid.NullUUID) SubjectRef {
	if leadID.Valid {
		return LeadSubject(leadID.UUID)
	}
	return StudentSubject(studentID.UUID)
}

type Assignment struct {
	ID          uuid.UUID
	CounselorID uuid.UUID
	Subject     SubjectRef
	SubjectName string
	AssignedAt  time.Time
}

type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "scheduled"
	MeetingCompleted MeetingStatus = "completed"
	MeetingCancelled MeetingStatus = "cancelled"
)

type Meeting struct {
	ID              uuid.UUID
	CounselorID     uuid.UUID
	Subject         SubjectRef
	SubjectName     string
	MeetingDate     string // YYYY-MM-DD
	MeetingTime     string // HH:MM
	StartMinute     int
	DurationMinutes int
	Status          MeetingStatus
	Notes           sql.NullString
	NotesImagePath  sql.NullString
	CreatedByUserID uuid.NullUUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (m *Meeting) EndMinute() int {
	return m.StartMinute + m.DurationMinutes
}

// Booking is the slice of a meeting row the overlap check needs.
type Booking struct {
	MeetingID       uuid.UUID
	MeetingTime     string
	StartMinute     int
	DurationMinutes int
}

func (b Booking) EndMinute() int {
	return b.StartMinute + b.DurationMinutes
}

type Country struct {
	Code string
	Name string
}

type University struct {
	ID          uuid.UUID
	Name        string
	CountryCode string
	City        sql.NullString
	Website     sql.NullString
	CreatedAt   time.Time
}

type Intake struct {
	ID                  uuid.UUID
	UniversityID        uuid.UUID
	Name                string
	StartDate           time.Time
	ApplicationDeadline sql.NullTime
}

type Application struct {
	ID           uuid.UUID
	DisplayID    string
	StudentID    uuid.UUID
	UniversityID uuid.UUID
	IntakeID     uuid.NullUUID
	Program      string
	Status       string
	Notes        sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type VisaApplication struct {
	ID          uuid.UUID
	DisplayID   string
	StudentID   uuid.UUID
	CountryCode string
	VisaType    string
	Status      string
	SubmittedOn sql.NullTime
	DecisionOn  sql.NullTime
	Notes       sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Visitor struct {
	ID              uuid.UUID
	FullName        string
	Phone           sql.NullString
	Purpose         string
	HostCounselorID uuid.NullUUID
	CheckedInAt     time.Time
	CheckedOutAt    sql.NullTime
}

// NullString converts an empty string to a NULL column value.
func NullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
