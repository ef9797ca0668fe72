package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hostel/internal/database"
	"hostel/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)

	// every pooled connection opens its own in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db))
	return db
}

func seedBed(t *testing.T, db *gorm.DB) domain.BedRef {
	t.Helper()

	rooms := NewRoomRepository(db)
	room := &domain.Room{
		RoomNumber:    "101",
		RoomType:      domain.RoomDortoir,
		PricePerNight: decimal.NewFromInt(20),
		IsActive:      true,
	}
	require.NoError(t, rooms.CreateWithBeds(context.Background(), room, 2))

	beds, err := rooms.GetBedsByRoomID(context.Background(), room.ID)
	require.NoError(t, err)
	require.NotEmpty(t, beds)

	return domain.BedRef{
		BedID:      beds[0].ID,
		BedNumber:  beds[0].BedNumber,
		RoomID:     room.ID,
		RoomNumber: room.RoomNumber,
	}
}

func seedBooking(t *testing.T, repo *BookingRepository, bed domain.BedRef) *domain.Booking {
	t.Helper()

	checkIn := domain.DateOnly(time.Now().UTC().AddDate(0, 0, 3))
	b := &domain.Booking{
		BookingReference: "BK-20260901-TESTA",
		AccessCode:       "123456",
		GuestName:        "Marta Nunes",
		GuestEmail:       "marta@example.com",
		GuestPhone:       "+351 910 111 222",
		CheckInDate:      checkIn,
		CheckOutDate:     checkIn.AddDate(0, 0, 2),
		TotalPrice:       decimal.NewFromInt(40),
		Status:           domain.BookingConfirmed,
		PaymentStatus:    domain.PaymentUnpaid,
		Beds:             []domain.BedRef{bed},
	}
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

// Status and payment updates go through column maps, so the date-order
// check on the model must not fire on them.
func TestBookingRepository_VersionedUpdates(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	b := seedBooking(t, repo, seedBed(t, db))
	require.EqualValues(t, 0, b.Version)

	require.NoError(t, repo.UpdateStatus(ctx, b.ID, domain.BookingCheckedIn, 0))

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCheckedIn, got.Status)
	assert.EqualValues(t, 1, got.Version)

	require.NoError(t, repo.UpdatePaymentStatus(ctx, b.ID, domain.PaymentPaid, 1))

	got, err = repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
	assert.EqualValues(t, 2, got.Version)
}

func TestBookingRepository_VersionedUpdate_Stale(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	b := seedBooking(t, repo, seedBed(t, db))

	require.NoError(t, repo.UpdateStatus(ctx, b.ID, domain.BookingCheckedIn, 0))

	// a second writer still holding version 0 must not clobber the first
	err := repo.UpdateStatus(ctx, b.ID, domain.BookingCancelled, 0)
	assert.ErrorIs(t, err, ErrStaleVersion)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCheckedIn, got.Status)
}

func TestBookingRepository_VersionedUpdate_Missing(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepository(db)

	err := repo.UpdateStatus(context.Background(), 9999, domain.BookingCheckedIn, 0)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestBookingRepository_CreateRejectsInvertedDates(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepository(db)

	bed := seedBed(t, db)
	date := domain.DateOnly(time.Now().UTC().AddDate(0, 0, 3))

	b := &domain.Booking{
		BookingReference: "BK-20260901-TESTB",
		AccessCode:       "654321",
		GuestName:        "Marta Nunes",
		GuestEmail:       "marta@example.com",
		GuestPhone:       "+351 910 111 222",
		CheckInDate:      date,
		CheckOutDate:     date,
		TotalPrice:       decimal.Zero,
		Status:           domain.BookingConfirmed,
		PaymentStatus:    domain.PaymentUnpaid,
		Beds:             []domain.BedRef{bed},
	}

	err := repo.Create(context.Background(), b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check-out date must be after check-in date")
}
