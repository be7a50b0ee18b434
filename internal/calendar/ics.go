package calendar

import (
	"fmt"
	"io"
	"time"

	"familybooking/internal/family"
	"familybooking/internal/models"
	"familybooking/internal/timeslot"

	ical "github.com/arran4/golang-ical"
	"github.com/rs/zerolog"
)

const (
	icsProductID = "-//familybooking//Chauffeur Bookings//EN"
	icsFloating  = "20060102T150405"
)

// ICSOptions controls the generated feed.
type ICSOptions struct {
	Name   string
	Logger *zerolog.Logger
}

// WriteICS writes bookings as an iCalendar feed. Times are floating local
// wall-clock values, matching how bookings are stored. Bookings whose date
// or times cannot be parsed are skipped and logged.
func WriteICS(w io.Writer, bookings []models.Booking, reg *family.Registry, opts ICSOptions) error {
	if reg == nil {
		reg = family.Default()
	}
	if opts.Name == "" {
		opts.Name = "Family bookings"
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName(opts.Name)

	for _, b := range bookings {
		start, err := timeslot.CombineDateTime(b.Date, b.PickupTime)
		if err == nil {
			var end time.Time
			end, err = timeslot.CombineDateTime(b.Date, b.DropoffTime)
			if err == nil {
				addEvent(cal, b, start, end, reg)
				continue
			}
		}
		if opts.Logger != nil {
			opts.Logger.Warn().Err(err).Str("booking_id", b.ID).Msg("skipping booking in ics feed")
		}
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("serialize ics: %w", err)
	}
	return nil
}

func addEvent(cal *ical.Calendar, b models.Booking, start, end time.Time, reg *family.Registry) {
	name := reg.DisplayName(b.FamilyMember)

	event := cal.AddEvent(b.ID)
	event.SetSummary(Title(name, b.Location))
	event.SetLocation(b.Location)
	event.SetProperty(ical.ComponentPropertyDtStart, start.Format(icsFloating))
	event.SetProperty(ical.ComponentPropertyDtEnd, end.Format(icsFloating))
	event.SetProperty(ical.ComponentPropertyCategories, name)
	event.SetProperty(ical.ComponentProperty("COLOR"), reg.DisplayColor(b.FamilyMember))
	if !b.CreatedAt.IsZero() {
		event.SetCreatedTime(b.CreatedAt)
	}
	if !b.UpdatedAt.IsZero() {
		event.SetDtStampTime(b.UpdatedAt)
		event.SetModifiedAt(b.UpdatedAt)
	}

	pickup, _ := timeslot.FormatTimeForDisplay(b.PickupTime)
	dropoff, _ := timeslot.FormatTimeForDisplay(b.DropoffTime)
	event.SetDescription(fmt.Sprintf("Pickup %s / Dropoff %s", pickup, dropoff))
}
