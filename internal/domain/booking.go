package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "PENDING"
	BookingConfirmed  BookingStatus = "CONFIRMED"
	BookingCheckedIn  BookingStatus = "CHECKED_IN"
	BookingCheckedOut BookingStatus = "CHECKED_OUT"
	BookingCancelled  BookingStatus = "CANCELLED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCheckedIn, BookingCheckedOut, BookingCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPartial  PaymentStatus = "PARTIAL"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentUnpaid, PaymentPartial, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

// BedRef, ServiceRef and PackRef are denormalized read views assembled by
// the repository. Bookings never hold live Room/Bed object graphs.
type BedRef struct {
	BedID      int64  `json:"bed_id"`
	BedNumber  string `json:"bed_number"`
	RoomID     int64  `json:"room_id"`
	RoomNumber string `json:"room_number"`
}

type ServiceRef struct {
	ServiceID int64           `json:"service_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	PriceType PriceType       `json:"price_type"`
}

type PackRef struct {
	PackID       int64           `json:"pack_id"`
	Name         string          `json:"name"`
	DurationDays int             `json:"duration_days"`
	PromoPrice   decimal.Decimal `json:"promo_price"`
}

type Booking struct {
	ID               int64           `json:"id"`
	BookingReference string          `json:"booking_reference"`
	AccessCode       string          `json:"access_code"`
	GuestName        string          `json:"guest_name"`
	GuestEmail       string          `json:"guest_email"`
	GuestPhone       string          `json:"guest_phone"`
	CheckInDate      time.Time       `json:"check_in_date"`
	CheckOutDate     time.Time       `json:"check_out_date"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	Status           BookingStatus   `json:"status"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	Beds             []BedRef        `json:"beds"`
	Services         []ServiceRef    `json:"services,omitempty"`
	Pack             *PackRef        `json:"pack,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int64           `json:"version"`
}

// Nights returns the stay length; [check-in, check-out) counts nights, so
// an adjacent booking starting on another's check-out date does not overlap.
func (b *Booking) Nights() int64 {
	return int64(b.CheckOutDate.Sub(b.CheckInDate).Hours() / 24)
}

// IsActive reports whether the booking still occupies its beds. A
// checked-out booking no longer does.
func (b *Booking) IsActive() bool {
	return b.Status != BookingCancelled && b.Status != BookingCheckedOut
}

// CanTransition applies the booking status state machine:
// CANCELLED is terminal, CHECKED_OUT is terminal except an idempotent
// re-set, check-in is only legal from CONFIRMED, everything else is allowed.
func CanTransition(from, to BookingStatus) error {
	if from == BookingCancelled {
		return fmt.Errorf("booking is cancelled: no status change from %s to %s", from, to)
	}
	if from == BookingCheckedOut && to != BookingCheckedOut {
		return fmt.Errorf("booking is checked out: no status change from %s to %s", from, to)
	}
	if to == BookingCheckedIn && from != BookingConfirmed {
		return fmt.Errorf("check-in is only allowed from CONFIRMED, not from %s", from)
	}
	return nil
}

// Overlaps reports whether two [in, out) date ranges intersect.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return !(aOut.Compare(bIn) <= 0 || aIn.Compare(bOut) >= 0)
}

// DateOnly truncates a timestamp to a UTC calendar date. Booking dates are
// day-granular; all comparisons happen on normalized values.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
