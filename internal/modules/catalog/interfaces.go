package catalog

import (
	"context"

	"github.com/shopspring/decimal"

	"hostel/internal/domain"
)

type RoomStore interface {
	CreateWithBeds(ctx context.Context, room *domain.Room, bedCount int) error
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Room, error)
	RoomNumberExists(ctx context.Context, number string) (bool, error)
	UpdateDetails(ctx context.Context, id int64, description string, price decimal.Decimal) error
	SetActive(ctx context.Context, id int64, active bool) error
	GetBedsByRoomID(ctx context.Context, roomID int64) ([]domain.Bed, error)
}

type ServiceStore interface {
	Create(ctx context.Context, s *domain.Service) error
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Service, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Service, error)
	UpdateDetails(ctx context.Context, id int64, description string, price decimal.Decimal) error
	SetActive(ctx context.Context, id int64, active bool) error
}

type PackStore interface {
	Create(ctx context.Context, p *domain.Pack, serviceIDs []int64) error
	GetByID(ctx context.Context, id int64) (*domain.Pack, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Pack, error)
	UpdatePricing(ctx context.Context, id int64, original, promo decimal.Decimal) error
	SetActive(ctx context.Context, id int64, active bool) error
}
