// Package calendar projects bookings into calendar-displayable events.
package calendar

import (
	"familybooking/internal/family"
	"familybooking/internal/models"
)

// Event is one calendar entry, shaped for FullCalendar-style widgets.
type Event struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Start           string        `json:"start"`
	End             string        `json:"end"`
	BackgroundColor string        `json:"backgroundColor"`
	BorderColor     string        `json:"borderColor"`
	ExtendedProps   ExtendedProps `json:"extendedProps"`
}

type ExtendedProps struct {
	Booking    models.Booking `json:"booking"`
	MemberName string         `json:"memberName"`
}

// ToEvents maps every booking to an Event, keeping the input order.
// Unknown members render as "Unknown" in the default color.
func ToEvents(bookings []models.Booking, reg *family.Registry) []Event {
	if reg == nil {
		reg = family.Default()
	}

	out := make([]Event, 0, len(bookings))
	for _, b := range bookings {
		name := reg.DisplayName(b.FamilyMember)
		color := reg.DisplayColor(b.FamilyMember)
		out = append(out, Event{
			ID:              b.ID,
			Title:           Title(name, b.Location),
			Start:           localDateTime(b.Date, b.PickupTime),
			End:             localDateTime(b.Date, b.DropoffTime),
			BackgroundColor: color,
			BorderColor:     color,
			ExtendedProps:   ExtendedProps{Booking: b, MemberName: name},
		})
	}
	return out
}

func Title(memberName, location string) string {
	return memberName + " - " + location
}

func localDateTime(date, hhmm string) string {
	return date + "T" + hhmm + ":00"
}
