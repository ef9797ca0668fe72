package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RoomType string

const (
	RoomDouble  RoomType = "DOUBLE"
	RoomSingle  RoomType = "SINGLE"
	RoomDortoir RoomType = "DORTOIR"
)

// Capacity returns the number of beds a room of this type holds by default.
// A double room has one shared double bed; a single room has two single beds.
func (t RoomType) Capacity() int {
	switch t {
	case RoomDouble:
		return 1
	case RoomSingle:
		return 2
	case RoomDortoir:
		return 8
	default:
		return 0
	}
}

func (t RoomType) Valid() bool {
	return t.Capacity() > 0
}

type Room struct {
	ID            int64           `json:"id"`
	RoomNumber    string          `json:"room_number" validate:"required"`
	RoomType      RoomType        `json:"room_type" validate:"required"`
	Description   string          `json:"description,omitempty"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	IsActive      bool            `json:"is_active"`
	TotalBeds     int             `json:"total_beds"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Bed is the unit of allocation. It references its room by id only; the
// room number needed for display lives on the read views, not here.
type Bed struct {
	ID          int64     `json:"id"`
	RoomID      int64     `json:"room_id"`
	BedNumber   string    `json:"bed_number"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
