package scheduling

import (
	"context"
	"sort"

	"consultdesk/internal/models"
	"consultdesk/internal/util"

	"github.com/google/uuid"
)

// Availability reports a counselor's booked intervals for a day.
type Availability struct {
	store Store
}

func NewAvailability(store Store) *Availability {
	return &Availability{store: store}
}

// BookedSlots returns one interval per non-cancelled meeting of the
// counselor on date, ordered by start. The counselor is not checked for
// existence here.
func (a *Availability) BookedSlots(ctx context.Context, counselorID uuid.UUID, date string) ([]Interval, error) {
	if date == "" {
		return nil, models.NewValidationError("date is required")
	}
	if _, err := util.ParseDate(date); err != nil {
		return nil, models.NewValidationError("%s", err.Error())
	}

	bookings, err := a.store.ListBookings(ctx, counselorID, date)
	if err != nil {
		return nil, models.Classify("list bookings", err)
	}
	return bookingIntervals(bookings), nil
}

func bookingIntervals(bookings []models.Booking) []Interval {
	slots := make([]Interval, 0, len(bookings))
	for _, b := range bookings {
		slots = append(slots, Interval{Start: b.StartMinute, End: b.EndMinute()})
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Start < slots[j].Start
	})
	return slots
}

// FreeSlots returns the gaps between booked intervals inside business hours.
// booked must be ordered by start.
func FreeSlots(booked []Interval) []Interval {
	free := []Interval{}
	cursor := BusinessStart
	for _, b := range booked {
		if b.Start > cursor {
			free = append(free, Interval{Start: cursor, End: b.Start})
		}
		if b.End > cursor {
			cursor = b.End
		}
	}
	if cursor < BusinessEnd {
		free = append(free, Interval{Start: cursor, End: BusinessEnd})
	}
	return free
}
