package booking

import (
	"context"
	"time"

	"hostel/internal/domain"
	"hostel/internal/repository"
)

// BookingStore is the storage contract of the allocation engine. The
// Serializable callback receives a transaction-scoped store; every read it
// performs is serialized by the underlying database against concurrent
// allocations touching the same beds.
type BookingStore interface {
	OverlappingForBed(ctx context.Context, bedID int64, checkIn, checkOut time.Time) ([]domain.Booking, error)
	OverlappingForBeds(ctx context.Context, bedIDs []int64, checkIn, checkOut time.Time) ([]domain.Booking, error)
	OverlappingForRoom(ctx context.Context, roomID int64, checkIn, checkOut time.Time) ([]domain.Booking, error)
	OccupiedBedIDsForRoom(ctx context.Context, roomID int64, checkIn, checkOut time.Time) ([]int64, error)

	ResolveBeds(ctx context.Context, bedIDs []int64) ([]repository.BedPricing, error)
	GetPack(ctx context.Context, id int64) (*domain.Pack, error)
	GetServices(ctx context.Context, ids []int64) ([]domain.Service, error)

	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	GetByAccessCode(ctx context.Context, code string) (*domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	FindByCheckInDate(ctx context.Context, date time.Time) ([]domain.Booking, error)
	FindByCheckOutDate(ctx context.Context, date time.Time) ([]domain.Booking, error)

	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, expectedVersion int64) error
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, expectedVersion int64) error
	Purge(ctx context.Context, id int64) error

	Serializable(ctx context.Context, fn func(tx BookingStore) error) error
}

// RoomStore is the slice of room storage the availability checker needs.
type RoomStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	GetBedsByRoomID(ctx context.Context, roomID int64) ([]domain.Bed, error)
}

// NotificationSender delivers the post-commit confirmation. It is called
// off the critical path; failures are logged and never affect the booking.
type NotificationSender interface {
	SendBookingConfirmation(ctx context.Context, b *domain.Booking) error
}

// RandomSource abstracts the generator's entropy so tests can seed it.
type RandomSource interface {
	IntN(n int) int
}
