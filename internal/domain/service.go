package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ServiceCategory string

const (
	ServiceTransport ServiceCategory = "TRANSPORT"
	ServiceMeal      ServiceCategory = "MEAL"
	ServiceActivity  ServiceCategory = "ACTIVITY"
	ServiceOther     ServiceCategory = "OTHER"
)

func (c ServiceCategory) Valid() bool {
	switch c {
	case ServiceTransport, ServiceMeal, ServiceActivity, ServiceOther:
		return true
	}
	return false
}

type PriceType string

const (
	// PriceFixed is charged once for the whole stay.
	PriceFixed PriceType = "FIXED"
	// PricePerNight is multiplied by the number of nights.
	PricePerNight PriceType = "PER_NIGHT"
)

func (p PriceType) Valid() bool {
	return p == PriceFixed || p == PricePerNight
}

type Service struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    ServiceCategory `json:"category" validate:"required"`
	PriceType   PriceType       `json:"price_type"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TotalFor returns the service charge for a stay of the given length.
func (s Service) TotalFor(nights int64) decimal.Decimal {
	if s.PriceType == PricePerNight {
		return s.Price.Mul(decimal.NewFromInt(nights))
	}
	return s.Price
}
