package scheduling

import (
	"fmt"
	"sort"

	"consultdesk/internal/models"

	"github.com/google/uuid"
)

// Violation is a stored meeting that breaks a booking rule.
type Violation struct {
	MeetingID   uuid.UUID
	CounselorID uuid.UUID
	Date        string
	Reason      string
}

type dayKey struct {
	counselor uuid.UUID
	date      string
}

// Audit re-checks stored meetings against the rules Schedule enforces:
// business hours and no overlap between non-cancelled meetings of the same
// counselor on the same day. Rows written around the scheduler show up here.
func Audit(meetings []*models.Meeting) []Violation {
	days := make(map[dayKey][]*models.Meeting)
	var keys []dayKey
	for _, m := range meetings {
		if m.Status == models.MeetingCancelled {
			continue
		}
		k := dayKey{m.CounselorID, m.MeetingDate}
		if _, ok := days[k]; !ok {
			keys = append(keys, k)
		}
		days[k] = append(days[k], m)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].counselor.String() < keys[j].counselor.String()
	})

	var out []Violation
	for _, k := range keys {
		day := days[k]
		sort.SliceStable(day, func(i, j int) bool { return day[i].StartMinute < day[j].StartMinute })
		for i, m := range day {
			iv := Interval{Start: m.StartMinute, End: m.EndMinute()}
			if err := checkBusinessHours(iv); err != nil {
				out = append(out, Violation{m.ID, k.counselor, k.date, err.Error()})
			}
			for _, prev := range day[:i] {
				if iv.Overlaps(Interval{Start: prev.StartMinute, End: prev.EndMinute()}) {
					out = append(out, Violation{m.ID, k.counselor, k.date, fmt.Sprintf(
						"overlaps meeting %s at %s", prev.ID, FormatClock(prev.StartMinute))})
				}
			}
		}
	}
	return out
}
