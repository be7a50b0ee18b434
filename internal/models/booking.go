package models

import (
	"sort"
	"time"
)

// Booking is a single chauffeur pickup/dropoff for one family member.
type Booking struct {
	ID           string    `json:"id"`
	Date         string    `json:"date"`
	Location     string    `json:"location"`
	FamilyMember string    `json:"familyMember"`
	PickupTime   string    `json:"pickupTime"`
	DropoffTime  string    `json:"dropoffTime"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BookingFormData carries the user-editable fields of a booking.
type BookingFormData struct {
	Date         string `json:"date"`
	Location     string `json:"location"`
	FamilyMember string `json:"familyMember"`
	PickupTime   string `json:"pickupTime"`
	DropoffTime  string `json:"dropoffTime"`
}

// FormData returns the editable part of the booking.
func (b Booking) FormData() BookingFormData {
	return BookingFormData{
		Date:         b.Date,
		Location:     b.Location,
		FamilyMember: b.FamilyMember,
		PickupTime:   b.PickupTime,
		DropoffTime:  b.DropoffTime,
	}
}

// Apply replaces the editable fields with the ones from data.
func (b *Booking) Apply(data BookingFormData) {
	b.Date = data.Date
	b.Location = data.Location
	b.FamilyMember = data.FamilyMember
	b.PickupTime = data.PickupTime
	b.DropoffTime = data.DropoffTime
}

// SortByStart orders bookings by date, then pickup time, then creation.
func SortByStart(bookings []Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		a, b := bookings[i], bookings[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.PickupTime != b.PickupTime {
			return a.PickupTime < b.PickupTime
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
