// Package calendar renders counselor meetings as iCalendar feeds and
// printable day sheets.
package calendar

import (
	"fmt"
	"io"
	"time"

	"consultdesk/internal/models"
	"consultdesk/internal/util"

	"github.com/emersion/go-ical"
)

const productID = "-//consultdesk//meetings//EN"

// meetingStart places a meeting on the wall clock of loc.
func meetingStart(m *models.Meeting, loc *time.Location) (time.Time, error) {
	day, err := util.ParseDateIn(m.MeetingDate, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), m.StartMinute/60, m.StartMinute%60, 0, 0, loc), nil
}

// WriteICS encodes the counselor's non-cancelled meetings as VEVENTs.
func WriteICS(w io.Writer, counselor *models.Counselor, meetings []*models.Meeting, loc *time.Location) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText("X-WR-CALNAME", counselor.FullName+" meetings")

	stamp := time.Now().UTC()
	for _, m := range meetings {
		if m.Status == models.MeetingCancelled {
			continue
		}
		start, err := meetingStart(m, loc)
		if err != nil {
			return fmt.Errorf("meeting %s: %w", m.ID, err)
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, m.ID.String()+"@consultdesk")
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetDateTime(ical.PropDateTimeStart, start)
		event.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(time.Duration(m.DurationMinutes)*time.Minute))
		event.Props.SetText(ical.PropSummary, fmt.Sprintf("Counseling: %s", m.SubjectName))
		event.Props.SetText(ical.PropStatus, "CONFIRMED")
		if m.Notes.Valid {
			event.Props.SetText(ical.PropDescription, m.Notes.String)
		}
		cal.Children = append(cal.Children, event.Component)
	}

	return ical.NewEncoder(w).Encode(cal)
}
