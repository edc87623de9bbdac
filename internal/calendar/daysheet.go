package calendar

import (
	"fmt"
	"io"
	"strings"

	"consultdesk/internal/models"
	"consultdesk/internal/scheduling"

	"github.com/phpdave11/gofpdf"
)

// WriteDaySheet renders a one-page agenda for a counselor's day: the booked
// meetings in start order followed by the free gaps inside business hours.
func WriteDaySheet(w io.Writer, counselor *models.Counselor, date string, meetings []*models.Meeting) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s - %s", counselor.FullName, date), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Counselor Day Sheet")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("%s  |  %s", counselor.FullName, date))
	pdf.Ln(12)

	widths := []float64{25, 25, 65, 30, 45}
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Start", "End", "Subject", "Status", "Notes"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	var booked []scheduling.Interval
	for _, m := range meetings {
		if m.Status == models.MeetingCancelled {
			continue
		}
		iv := scheduling.Interval{Start: m.StartMinute, End: m.EndMinute()}
		booked = append(booked, iv)
		notes := ""
		if m.Notes.Valid {
			notes = truncate(m.Notes.String, 28)
		}
		row := []string{
			scheduling.FormatClock(iv.Start),
			scheduling.FormatClock(iv.End),
			truncate(m.SubjectName, 40),
			statusLabel(m.Status),
			notes,
		}
		for i, v := range row {
			pdf.CellFormat(widths[i], 7, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(booked) == 0 {
		pdf.CellFormat(190, 7, "No meetings booked", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "Free time")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, free := range scheduling.FreeSlots(booked) {
		pdf.Cell(0, 6, fmt.Sprintf("%s - %s (%d min)",
			scheduling.FormatClock(free.Start), scheduling.FormatClock(free.End), free.End-free.Start))
		pdf.Ln(6)
	}

	return pdf.Output(w)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func statusLabel(s models.MeetingStatus) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}
