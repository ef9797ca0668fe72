package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hostel/internal/domain"
	"hostel/internal/logger"
	"hostel/internal/repository"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("not found")
	ErrRoomNumberUsed = errors.New("room number already in use")
)

const maxBedsPerRoom = 20

type Service struct {
	rooms    RoomStore
	services ServiceStore
	packs    PackStore
}

func NewService(rooms RoomStore, services ServiceStore, packs PackStore) *Service {
	return &Service{rooms: rooms, services: services, packs: packs}
}

/* ---------- ROOMS ---------- */

// CreateRoom creates a room together with its beds. The bed count defaults
// to the room type's capacity; an explicit override wins, so an undersized
// dormitory can be modelled without inventing a new type.
func (s *Service) CreateRoom(ctx context.Context, req CreateRoomRequest) (*domain.Room, error) {
	roomType := domain.RoomType(strings.ToUpper(strings.TrimSpace(req.RoomType)))
	if !roomType.Valid() {
		return nil, fmt.Errorf("%w: unknown room type %q", ErrValidation, req.RoomType)
	}
	if req.PricePerNight.IsNegative() {
		return nil, fmt.Errorf("%w: price per night cannot be negative", ErrValidation)
	}

	bedCount := roomType.Capacity()
	if req.BedCount != nil {
		bedCount = *req.BedCount
	}
	if bedCount < 1 || bedCount > maxBedsPerRoom {
		return nil, fmt.Errorf("%w: bed count must be between 1 and %d", ErrValidation, maxBedsPerRoom)
	}

	number := strings.TrimSpace(req.RoomNumber)
	taken, err := s.rooms.RoomNumberExists(ctx, number)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: %s", ErrRoomNumberUsed, number)
	}

	room := &domain.Room{
		RoomNumber:    number,
		RoomType:      roomType,
		Description:   req.Description,
		PricePerNight: req.PricePerNight,
		IsActive:      true,
		TotalBeds:     bedCount,
	}
	if err := s.rooms.CreateWithBeds(ctx, room, bedCount); err != nil {
		if repository.IsUniqueViolation(err, "room_number") {
			return nil, fmt.Errorf("%w: %s", ErrRoomNumberUsed, number)
		}
		return nil, err
	}

	logger.InfoLogger.Infof("room %s created (%s, %d beds)", room.RoomNumber, room.RoomType, bedCount)
	return room, nil
}

func (s *Service) GetRoom(ctx context.Context, id int64) (*RoomWithBeds, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: room %d", ErrNotFound, id)
		}
		return nil, err
	}
	beds, err := s.rooms.GetBedsByRoomID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RoomWithBeds{Room: *room, Beds: beds}, nil
}

func (s *Service) ListRooms(ctx context.Context, activeOnly bool) ([]domain.Room, error) {
	return s.rooms.List(ctx, activeOnly)
}

// DeactivateRoom takes a room off sale. Existing bookings on its beds are
// untouched; only new allocations stop.
func (s *Service) DeactivateRoom(ctx context.Context, id int64) error {
	if err := s.rooms.SetActive(ctx, id, false); err != nil {
		if repository.IsNotFound(err) {
			return fmt.Errorf("%w: room %d", ErrNotFound, id)
		}
		return err
	}
	logger.InfoLogger.Infof("room %d deactivated", id)
	return nil
}

// UpdateRoom edits description and nightly price. Unset fields keep their
// current value.
func (s *Service) UpdateRoom(ctx context.Context, id int64, req UpdateRoomRequest) (*domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: room %d", ErrNotFound, id)
		}
		return nil, err
	}

	if req.Description != nil {
		room.Description = *req.Description
	}
	if req.PricePerNight != nil {
		if req.PricePerNight.IsNegative() {
			return nil, fmt.Errorf("%w: price per night cannot be negative", ErrValidation)
		}
		room.PricePerNight = *req.PricePerNight
	}

	if err := s.rooms.UpdateDetails(ctx, id, room.Description, room.PricePerNight); err != nil {
		return nil, err
	}

	logger.InfoLogger.Infof("room %s updated, price %s/night", room.RoomNumber, room.PricePerNight.StringFixed(2))
	return room, nil
}

/* ---------- SERVICES ---------- */

func (s *Service) CreateService(ctx context.Context, req CreateServiceRequest) (*domain.Service, error) {
	category := domain.ServiceCategory(strings.ToUpper(strings.TrimSpace(req.Category)))
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown service category %q", ErrValidation, req.Category)
	}
	priceType := domain.PriceType(strings.ToUpper(strings.TrimSpace(req.PriceType)))
	if !priceType.Valid() {
		return nil, fmt.Errorf("%w: unknown price type %q", ErrValidation, req.PriceType)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}

	svc := &domain.Service{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Category:    category,
		PriceType:   priceType,
		IsActive:    true,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) ListServices(ctx context.Context, activeOnly bool) ([]domain.Service, error) {
	return s.services.List(ctx, activeOnly)
}

func (s *Service) UpdateService(ctx context.Context, id int64, req UpdateServiceRequest) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: service %d", ErrNotFound, id)
		}
		return nil, err
	}

	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
		}
		svc.Price = *req.Price
	}

	if err := s.services.UpdateDetails(ctx, id, svc.Description, svc.Price); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) DeactivateService(ctx context.Context, id int64) error {
	if err := s.services.SetActive(ctx, id, false); err != nil {
		if repository.IsNotFound(err) {
			return fmt.Errorf("%w: service %d", ErrNotFound, id)
		}
		return err
	}
	return nil
}

/* ---------- PACKS ---------- */

func (s *Service) CreatePack(ctx context.Context, req CreatePackRequest) (*domain.Pack, error) {
	roomType := domain.RoomType(strings.ToUpper(strings.TrimSpace(req.RoomType)))
	if !roomType.Valid() {
		return nil, fmt.Errorf("%w: unknown room type %q", ErrValidation, req.RoomType)
	}
	if req.DurationDays < 1 {
		return nil, fmt.Errorf("%w: duration must be at least one day", ErrValidation)
	}
	if req.PromoPrice.IsNegative() || req.OriginalPrice.IsNegative() {
		return nil, fmt.Errorf("%w: prices cannot be negative", ErrValidation)
	}
	if req.PromoPrice.GreaterThan(req.OriginalPrice) {
		return nil, fmt.Errorf("%w: promo price cannot exceed the original price", ErrValidation)
	}

	if len(req.ServiceIDs) > 0 {
		found, err := s.services.GetByIDs(ctx, req.ServiceIDs)
		if err != nil {
			return nil, err
		}
		if len(found) != len(req.ServiceIDs) {
			return nil, fmt.Errorf("%w: one or more services do not exist", ErrNotFound)
		}
	}

	pack := &domain.Pack{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		DurationDays:  req.DurationDays,
		OriginalPrice: req.OriginalPrice,
		PromoPrice:    req.PromoPrice,
		RoomType:      roomType,
		IsActive:      true,
	}
	if err := s.packs.Create(ctx, pack, req.ServiceIDs); err != nil {
		return nil, err
	}

	logger.InfoLogger.Infof("pack %q created: %d days at %s", pack.Name, pack.DurationDays, pack.PromoPrice.StringFixed(2))
	return pack, nil
}

func (s *Service) GetPack(ctx context.Context, id int64) (*domain.Pack, error) {
	pack, err := s.packs.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: pack %d", ErrNotFound, id)
		}
		return nil, err
	}
	return pack, nil
}

func (s *Service) ListPacks(ctx context.Context, activeOnly bool) ([]domain.Pack, error) {
	return s.packs.List(ctx, activeOnly)
}

// UpdatePack reprices a pack. Already-created bookings keep the price they
// were sold at; only new allocations see the change.
func (s *Service) UpdatePack(ctx context.Context, id int64, req UpdatePackRequest) (*domain.Pack, error) {
	pack, err := s.GetPack(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.OriginalPrice != nil {
		pack.OriginalPrice = *req.OriginalPrice
	}
	if req.PromoPrice != nil {
		pack.PromoPrice = *req.PromoPrice
	}
	if pack.PromoPrice.IsNegative() || pack.OriginalPrice.IsNegative() {
		return nil, fmt.Errorf("%w: prices cannot be negative", ErrValidation)
	}
	if pack.PromoPrice.GreaterThan(pack.OriginalPrice) {
		return nil, fmt.Errorf("%w: promo price cannot exceed the original price", ErrValidation)
	}

	if err := s.packs.UpdatePricing(ctx, id, pack.OriginalPrice, pack.PromoPrice); err != nil {
		return nil, err
	}

	logger.InfoLogger.Infof("pack %q repriced to %s", pack.Name, pack.PromoPrice.StringFixed(2))
	return pack, nil
}

func (s *Service) DeactivatePack(ctx context.Context, id int64) error {
	if err := s.packs.SetActive(ctx, id, false); err != nil {
		if repository.IsNotFound(err) {
			return fmt.Errorf("%w: pack %d", ErrNotFound, id)
		}
		return err
	}
	return nil
}
