package models

// StatusInfo carries display text for a lead status.
type StatusInfo struct {
	DisplayName string
	NextAction  string
}

var leadStatuses = map[string]StatusInfo{
	"new":       {DisplayName: "New Lead", NextAction: "Make first contact"},
	"contacted": {DisplayName: "Contacted", NextAction: "Book counseling meeting"},
	"qualified": {DisplayName: "Qualified", NextAction: "Convert to student"},
	"converted": {DisplayName: "Converted", NextAction: "Continue on student record"},
	"lost":      {DisplayName: "Lost", NextAction: "Review"},
}

// GetLeadStatusInfo returns display information for a lead status. Unknown
// statuses echo back as their own display name.
func GetLeadStatusInfo(status string) StatusInfo {
	if info, ok := leadStatuses[status]; ok {
		return info
	}
	return StatusInfo{DisplayName: status, NextAction: "Review"}
}

func IsValidLeadStatus(status string) bool {
	_, ok := leadStatuses[status]
	return ok
}

var applicationStatuses = map[string]bool{
	"draft": true, "submitted": true, "offer": true,
	"rejected": true, "enrolled": true, "withdrawn": true,
}

func IsValidApplicationStatus(status string) bool {
	return applicationStatuses[status]
}

var visaStatuses = map[string]bool{
	"preparing": true, "lodged": true, "approved": true, "refused": true,
}

func IsValidVisaStatus(status string) bool {
	return visaStatuses[status]
}

// CanTransitionMeeting reports whether a meeting may move from one status to
// another. Only scheduled meetings change state, and only to a terminal one.
func CanTransitionMeeting(from, to MeetingStatus) bool {
	if from != MeetingScheduled {
		return false
	}
	return to == MeetingCompleted || to == MeetingCancelled
}

func ParseMeetingStatus(s string) (MeetingStatus, bool) {
	switch MeetingStatus(s) {
	case MeetingScheduled, MeetingCompleted, MeetingCancelled:
		return MeetingStatus(s), true
	}
	return "", false
}
