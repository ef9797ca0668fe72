package catalog

import (
	"hostel/internal/domain"

	"github.com/shopspring/decimal"
)

type CreateRoomRequest struct {
	RoomNumber    string          `json:"room_number" binding:"required"`
	RoomType      string          `json:"room_type" binding:"required"`
	Description   string          `json:"description"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	// BedCount overrides the room type's default capacity when set.
	BedCount *int `json:"bed_count"`
}

type CreateServiceRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" binding:"required"`
	PriceType   string          `json:"price_type" binding:"required"`
}

type CreatePackRequest struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	DurationDays  int             `json:"duration_days" binding:"required"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	PromoPrice    decimal.Decimal `json:"promo_price"`
	RoomType      string          `json:"room_type" binding:"required"`
	ServiceIDs    []int64         `json:"service_ids"`
}

// Update requests use pointers so an omitted field means "keep".

type UpdateRoomRequest struct {
	Description   *string          `json:"description"`
	PricePerNight *decimal.Decimal `json:"price_per_night"`
}

type UpdateServiceRequest struct {
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

type UpdatePackRequest struct {
	OriginalPrice *decimal.Decimal `json:"original_price"`
	PromoPrice    *decimal.Decimal `json:"promo_price"`
}

// RoomWithBeds is the detail view of a room.
type RoomWithBeds struct {
	Room domain.Room  `json:"room"`
	Beds []domain.Bed `json:"beds"`
}
