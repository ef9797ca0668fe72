package booking

import "time"

// CreateBookingInput is the allocator's contract. Dates are day-granular;
// the service normalizes them to UTC midnight before any comparison.
type CreateBookingInput struct {
	GuestName    string
	GuestEmail   string
	GuestPhone   string
	CheckInDate  time.Time
	CheckOutDate time.Time
	BedIDs       []int64
	ServiceIDs   []int64
	PackID       *int64
	Notes        string
}

// AvailabilityReport answers a room-level availability question. When no
// bed is free, NextAvailableDate carries the first date within a 60-day
// horizon on which the room has capacity again, or nil if none was found.
type AvailabilityReport struct {
	RoomID            int64      `json:"room_id"`
	RoomNumber        string     `json:"room_number"`
	IsAvailable       bool       `json:"is_available"`
	AvailableBeds     int        `json:"available_beds"`
	AvailableBedIDs   []int64    `json:"available_bed_ids"`
	NextAvailableDate *time.Time `json:"next_available_date,omitempty"`
}
