package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"familybooking/internal/models"

	ical "github.com/arran4/golang-ical"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBookings() []models.Booking {
	ts := time.Date(2024, 4, 30, 18, 0, 0, 0, time.UTC)
	return []models.Booking{
		{ID: "b1", Date: "2024-05-01", Location: "Airport", FamilyMember: "2", PickupTime: "09:00", DropoffTime: "09:30", CreatedAt: ts, UpdatedAt: ts},
		{ID: "b2", Date: "2024-05-02", Location: "Gym", FamilyMember: "77", PickupTime: "18:15", DropoffTime: "19:00", CreatedAt: ts, UpdatedAt: ts},
	}
}

func TestToEvents(t *testing.T) {
	events := ToEvents(testBookings(), nil)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "b1", first.ID)
	assert.Equal(t, "Dad - Airport", first.Title)
	assert.Equal(t, "2024-05-01T09:00:00", first.Start)
	assert.Equal(t, "2024-05-01T09:30:00", first.End)
	assert.Equal(t, "#3b82f6", first.BackgroundColor)
	assert.Equal(t, first.BackgroundColor, first.BorderColor)
	assert.Equal(t, "b1", first.ExtendedProps.Booking.ID)

	unknown := events[1]
	assert.Equal(t, "Unknown - Gym", unknown.Title)
	assert.Equal(t, models.DefaultMemberColor, unknown.BackgroundColor)
	assert.Equal(t, "Unknown", unknown.ExtendedProps.MemberName)
}

func TestToEventsEmpty(t *testing.T) {
	events := ToEvents(nil, nil)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestWriteICS(t *testing.T) {
	var buf bytes.Buffer
	bookings := append(testBookings(), models.Booking{ID: "broken", Date: "not-a-date", PickupTime: "09:00", DropoffTime: "10:00"})
	logger := zerolog.Nop()

	require.NoError(t, WriteICS(&buf, bookings, nil, ICSOptions{Name: "Household", Logger: &logger}))

	out := buf.String()
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "X-WR-CALNAME:Household")
	assert.Contains(t, out, "DTSTART:20240501T090000")
	assert.Contains(t, out, "DTEND:20240501T093000")
	assert.NotContains(t, out, "broken")

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	parsed := cal.Events()
	require.Len(t, parsed, 2)

	assert.Equal(t, "b1", parsed[0].Id())
	assert.Equal(t, "Dad - Airport", parsed[0].GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "Airport", parsed[0].GetProperty(ical.ComponentPropertyLocation).Value)
	assert.Equal(t, "Pickup 9:00 AM / Dropoff 9:30 AM", parsed[0].GetProperty(ical.ComponentPropertyDescription).Value)
	assert.Equal(t, "Unknown - Gym", parsed[1].GetProperty(ical.ComponentPropertySummary).Value)
}
