package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pack is a flat-priced bundle. When a booking selects a pack, the promo
// price replaces per-bed pricing entirely.
type Pack struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name" validate:"required"`
	Description   string          `json:"description,omitempty"`
	DurationDays  int             `json:"duration_days"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	PromoPrice    decimal.Decimal `json:"promo_price"`
	RoomType      RoomType        `json:"room_type"`
	Services      []Service       `json:"included_services,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
