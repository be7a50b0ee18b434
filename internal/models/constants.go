package models

const (
	// DateLayout is the wire format of Booking.Date.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire format of pickup and dropoff times.
	TimeLayout = "15:04"
	// DisplayDateLayout renders a date as "Wednesday, May 1, 2024".
	DisplayDateLayout = "Monday, January 2, 2006"
)

const (
	// DefaultStorageKey is the key the booking collection is persisted under.
	DefaultStorageKey = "bookings"

	// SlotMinutes is the granularity of pickup and dropoff times.
	SlotMinutes = 15

	// SlotsPerDay is the number of slots between 00:00 and 23:45 inclusive.
	SlotsPerDay = 24 * 60 / SlotMinutes

	// UnknownMemberName is shown for bookings whose member is not registered.
	UnknownMemberName = "Unknown"

	// DefaultMemberColor is used when the member has no registry entry.
	DefaultMemberColor = "#3b82f6"
)

const (
	FieldDate         = "date"
	FieldLocation     = "location"
	FieldFamilyMember = "familyMember"
	FieldPickupTime   = "pickupTime"
	FieldDropoffTime  = "dropoffTime"
)
