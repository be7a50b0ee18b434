// Package timeslot holds the fixed 15-minute slot table and the display
// formatting used for booking times and dates.
package timeslot

import (
	"fmt"
	"strconv"
	"time"

	"familybooking/internal/models"
)

var slots = buildSlots()

var slotIndex = func() map[string]int {
	idx := make(map[string]int, len(slots))
	for i, s := range slots {
		idx[s] = i
	}
	return idx
}()

func buildSlots() []string {
	out := make([]string, 0, models.SlotsPerDay)
	for i := 0; i < models.SlotsPerDay; i++ {
		minutes := i * models.SlotMinutes
		out = append(out, fmt.Sprintf("%02d:%02d", minutes/60, minutes%60))
	}
	return out
}

// GenerateTimeSlots returns the 96 slots from 00:00 to 23:45.
// The returned slice is a fresh copy.
func GenerateTimeSlots() []string {
	return append([]string(nil), slots...)
}

// IsTimeSlot reports whether s is one of the generated slots.
func IsTimeSlot(s string) bool {
	_, ok := slotIndex[s]
	return ok
}

// Slot pairs a slot value with its 12-hour label.
type Slot struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// LabeledSlots returns every slot with its display label, for dropdowns.
func LabeledSlots() []Slot {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		label, _ := FormatTimeForDisplay(s)
		out = append(out, Slot{Value: s, Label: label})
	}
	return out
}

// ParseClock splits an HH:mm string into hour and minute.
func ParseClock(hhmm string) (hour, minute int, err error) {
	if len(hhmm) != 5 || hhmm[2] != ':' || !isDigits(hhmm[:2]) || !isDigits(hhmm[3:]) {
		return 0, 0, fmt.Errorf("invalid time %q: expected HH:mm", hhmm)
	}
	hour, err = strconv.Atoi(hhmm[:2])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid time %q: hour out of range", hhmm)
	}
	minute, err = strconv.Atoi(hhmm[3:])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q: minute out of range", hhmm)
	}
	return hour, minute, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatTimeForDisplay converts "13:05" to "1:05 PM" and "00:00" to "12:00 AM".
func FormatTimeForDisplay(hhmm string) (string, error) {
	hour, minute, err := ParseClock(hhmm)
	if err != nil {
		return "", err
	}
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	displayHour := hour % 12
	if displayHour == 0 {
		displayHour = 12
	}
	return fmt.Sprintf("%d:%02d %s", displayHour, minute, suffix), nil
}

// ParseDate parses a yyyy-MM-dd date as local wall-clock midnight.
func ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(models.DateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// FormatDateForDisplay converts "2024-05-01" to "Wednesday, May 1, 2024".
func FormatDateForDisplay(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.Format(models.DisplayDateLayout), nil
}

// CombineDateTime joins a booking date and an HH:mm time into a local time.
func CombineDateTime(date, hhmm string) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	hour, minute, err := ParseClock(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.Local), nil
}
