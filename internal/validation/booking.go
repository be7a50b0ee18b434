// Package validation checks booking form input before it reaches the store.
package validation

import (
	"strings"

	"familybooking/internal/domain"
	"familybooking/internal/family"
	"familybooking/internal/models"
	"familybooking/internal/timeslot"
)

const (
	msgDateRequired        = "Date is required"
	msgDateInvalid         = "Date must be a valid date (YYYY-MM-DD)"
	msgLocationRequired    = "Location is required"
	msgMemberRequired      = "Family member is required"
	msgMemberUnknown       = "Unknown family member"
	msgPickupRequired      = "Pickup time is required"
	msgPickupNotSlot       = "Pickup time must be a 15-minute slot"
	msgDropoffRequired     = "Dropoff time is required"
	msgDropoffNotSlot      = "Dropoff time must be a 15-minute slot"
	msgDropoffBeforePickup = "Dropoff time must be after pickup time"
)

// Normalize trims surrounding whitespace from every field.
func Normalize(data models.BookingFormData) models.BookingFormData {
	return models.BookingFormData{
		Date:         strings.TrimSpace(data.Date),
		Location:     strings.TrimSpace(data.Location),
		FamilyMember: strings.TrimSpace(data.FamilyMember),
		PickupTime:   strings.TrimSpace(data.PickupTime),
		DropoffTime:  strings.TrimSpace(data.DropoffTime),
	}
}

// ValidateForm returns the first invalid field, in form order, as a
// *domain.ValidationError. A nil registry means family.Default().
func ValidateForm(data models.BookingFormData, reg *family.Registry) error {
	if errs := check(data, reg, true); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ValidateAll returns every invalid field as domain.ValidationErrors.
func ValidateAll(data models.BookingFormData, reg *family.Registry) error {
	if errs := check(data, reg, false); len(errs) > 0 {
		return errs
	}
	return nil
}

func check(data models.BookingFormData, reg *family.Registry, firstOnly bool) domain.ValidationErrors {
	if reg == nil {
		reg = family.Default()
	}
	data = Normalize(data)

	var errs domain.ValidationErrors
	fail := func(field, msg string) bool {
		errs = append(errs, &domain.ValidationError{Field: field, Message: msg})
		return firstOnly
	}

	switch {
	case data.Date == "":
		if fail(models.FieldDate, msgDateRequired) {
			return errs
		}
	case !validDate(data.Date):
		if fail(models.FieldDate, msgDateInvalid) {
			return errs
		}
	}

	if data.Location == "" && fail(models.FieldLocation, msgLocationRequired) {
		return errs
	}

	switch {
	case data.FamilyMember == "":
		if fail(models.FieldFamilyMember, msgMemberRequired) {
			return errs
		}
	case !reg.Exists(data.FamilyMember):
		if fail(models.FieldFamilyMember, msgMemberUnknown) {
			return errs
		}
	}

	pickupOK := false
	switch {
	case data.PickupTime == "":
		if fail(models.FieldPickupTime, msgPickupRequired) {
			return errs
		}
	case !timeslot.IsTimeSlot(data.PickupTime):
		if fail(models.FieldPickupTime, msgPickupNotSlot) {
			return errs
		}
	default:
		pickupOK = true
	}

	switch {
	case data.DropoffTime == "":
		fail(models.FieldDropoffTime, msgDropoffRequired)
	case !timeslot.IsTimeSlot(data.DropoffTime):
		fail(models.FieldDropoffTime, msgDropoffNotSlot)
	case pickupOK && data.DropoffTime <= data.PickupTime:
		// Zero-padded HH:mm sorts chronologically within a day.
		fail(models.FieldDropoffTime, msgDropoffBeforePickup)
	}

	return errs
}

func validDate(s string) bool {
	_, err := timeslot.ParseDate(s)
	return err == nil
}
