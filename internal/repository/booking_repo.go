package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hostel/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrStaleVersion is returned by the versioned update methods when the row
// exists but was modified since it was read.
var ErrStaleVersion = errors.New("booking was modified concurrently")

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID               int64           `gorm:"column:id;primaryKey"`
	BookingReference string          `gorm:"column:booking_reference;uniqueIndex:uk_booking_reference;size:20"`
	AccessCode       string          `gorm:"column:access_code;uniqueIndex:uk_access_code;size:10"`
	GuestName        string          `gorm:"column:guest_name;size:100"`
	GuestEmail       string          `gorm:"column:guest_email;size:100;index"`
	GuestPhone       string          `gorm:"column:guest_phone;size:20"`
	CheckInDate      time.Time       `gorm:"column:check_in_date;index:idx_booking_dates"`
	CheckOutDate     time.Time       `gorm:"column:check_out_date;index:idx_booking_dates"`
	TotalPrice       decimal.Decimal `gorm:"column:total_price;type:decimal(10,2)"`
	Status           string          `gorm:"column:status;size:20;index"`
	PaymentStatus    string          `gorm:"column:payment_status;size:20;index"`
	PackID           *int64          `gorm:"column:pack_id"`
	Notes            *string         `gorm:"column:notes;type:text"`
	CreatedAt        time.Time       `gorm:"column:created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at"`
	Version          int64           `gorm:"column:version"`
}

func (bookingModel) TableName() string { return "bookings" }

// BeforeCreate enforces the date-order invariant at the persistence
// boundary, independent of service-layer validation. It must not run on
// updates: status and payment changes go through column maps that leave the
// model's date fields zero.
func (m *bookingModel) BeforeCreate(tx *gorm.DB) error {
	if !m.CheckOutDate.After(m.CheckInDate) {
		return errors.New("check-out date must be after check-in date")
	}
	return nil
}

type bookingBedModel struct {
	BookingID int64 `gorm:"column:booking_id;primaryKey"`
	BedID     int64 `gorm:"column:bed_id;primaryKey"`
}

func (bookingBedModel) TableName() string { return "booking_beds" }

type bookingServiceModel struct {
	BookingID int64 `gorm:"column:booking_id;primaryKey"`
	ServiceID int64 `gorm:"column:service_id;primaryKey"`
}

func (bookingServiceModel) TableName() string { return "booking_services" }

func toDomainBooking(m bookingModel) *domain.Booking {
	var notes string
	if m.Notes != nil {
		notes = *m.Notes
	}
	return &domain.Booking{
		ID:               m.ID,
		BookingReference: m.BookingReference,
		AccessCode:       m.AccessCode,
		GuestName:        m.GuestName,
		GuestEmail:       m.GuestEmail,
		GuestPhone:       m.GuestPhone,
		CheckInDate:      m.CheckInDate,
		CheckOutDate:     m.CheckOutDate,
		TotalPrice:       m.TotalPrice,
		Status:           domain.BookingStatus(m.Status),
		PaymentStatus:    domain.PaymentStatus(m.PaymentStatus),
		Notes:            notes,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		Version:          m.Version,
	}
}

// Serializable runs fn against a transaction-scoped repository at the
// store's strictest isolation level. Concurrent allocations touching the
// same beds are serialized here; one of two conflicting transactions is
// aborted by the store and surfaces as a serialization failure.
func (r *BookingRepository) Serializable(ctx context.Context, fn func(tx *BookingRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingRepository{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

// overlapPredicate matches bookings whose [check_in, check_out) range
// intersects the queried window, skipping bookings that no longer occupy
// their beds. Two ranges [a,b) and [c,d) overlap iff NOT (b<=c OR a>=d).
const overlapPredicate = `
  b.status NOT IN ('CANCELLED', 'CHECKED_OUT')
  AND NOT (b.check_out_date <= ? OR b.check_in_date >= ?)`

func (r *BookingRepository) scanBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	var models []bookingModel
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func (r *BookingRepository) OverlappingForBed(ctx context.Context, bedID int64, checkIn, checkOut time.Time) ([]domain.Booking, error) {
	return r.scanBookings(ctx, `
SELECT DISTINCT b.* FROM bookings b
JOIN booking_beds bb ON bb.booking_id = b.id
WHERE bb.bed_id = ?
  AND`+overlapPredicate, bedID, checkIn, checkOut)
}

func (r *BookingRepository) OverlappingForBeds(ctx context.Context, bedIDs []int64, checkIn, checkOut time.Time) ([]domain.Booking, error) {
	if len(bedIDs) == 0 {
		return nil, nil
	}
	return r.scanBookings(ctx, `
SELECT DISTINCT b.* FROM bookings b
JOIN booking_beds bb ON bb.booking_id = b.id
WHERE bb.bed_id IN ?
  AND`+overlapPredicate, bedIDs, checkIn, checkOut)
}

func (r *BookingRepository) OverlappingForRoom(ctx context.Context, roomID int64, checkIn, checkOut time.Time) ([]domain.Booking, error) {
	return r.scanBookings(ctx, `
SELECT DISTINCT b.* FROM bookings b
JOIN booking_beds bb ON bb.booking_id = b.id
JOIN beds bd ON bd.id = bb.bed_id
WHERE bd.room_id = ?
  AND`+overlapPredicate, roomID, checkIn, checkOut)
}

// OccupiedBedIDsForRoom projects the room-level overlap query down to the
// bed ids an availability report must exclude.
func (r *BookingRepository) OccupiedBedIDsForRoom(ctx context.Context, roomID int64, checkIn, checkOut time.Time) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Raw(`
SELECT DISTINCT bb.bed_id FROM bookings b
JOIN booking_beds bb ON bb.booking_id = b.id
JOIN beds bd ON bd.id = bb.bed_id
WHERE bd.room_id = ?
  AND`+overlapPredicate, roomID, checkIn, checkOut).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// BedPricing is the flat projection the allocator prices bookings from:
// each requested bed pre-joined with its room number and nightly price.
type BedPricing struct {
	BedID         int64           `gorm:"column:bed_id"`
	BedNumber     string          `gorm:"column:bed_number"`
	RoomID        int64           `gorm:"column:room_id"`
	RoomNumber    string          `gorm:"column:room_number"`
	PricePerNight decimal.Decimal `gorm:"column:price_per_night"`
}

// ResolveBeds loads the requested beds. A shorter result than the input
// means at least one id is unknown.
func (r *BookingRepository) ResolveBeds(ctx context.Context, bedIDs []int64) ([]BedPricing, error) {
	if len(bedIDs) == 0 {
		return nil, nil
	}
	var rows []BedPricing
	err := r.db.WithContext(ctx).Raw(`
SELECT bd.id AS bed_id, bd.bed_number, rm.id AS room_id, rm.room_number, rm.price_per_night
FROM beds bd
JOIN rooms rm ON rm.id = bd.room_id
WHERE bd.id IN ?`, bedIDs).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetPack and GetServices delegate to the reference-data repositories over
// the same handle, so allocation resolves them inside its transaction.
func (r *BookingRepository) GetPack(ctx context.Context, id int64) (*domain.Pack, error) {
	return NewPackRepository(r.db).GetByID(ctx, id)
}

func (r *BookingRepository) GetServices(ctx context.Context, ids []int64) ([]domain.Service, error) {
	return NewServiceRepository(r.db).GetByIDs(ctx, ids)
}

// Create persists the booking and its bed/service links. Unique violations
// on access_code or booking_reference propagate to the caller, which
// regenerates and retries.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	now := time.Now().UTC()
	m := bookingModel{
		BookingReference: b.BookingReference,
		AccessCode:       b.AccessCode,
		GuestName:        b.GuestName,
		GuestEmail:       b.GuestEmail,
		GuestPhone:       b.GuestPhone,
		CheckInDate:      b.CheckInDate,
		CheckOutDate:     b.CheckOutDate,
		TotalPrice:       b.TotalPrice,
		Status:           string(b.Status),
		PaymentStatus:    string(b.PaymentStatus),
		CreatedAt:        now,
		UpdatedAt:        now,
		Version:          0,
	}
	if b.Notes != "" {
		v := b.Notes
		m.Notes = &v
	}
	if b.Pack != nil {
		v := b.Pack.PackID
		m.PackID = &v
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		beds := make([]bookingBedModel, 0, len(b.Beds))
		for _, ref := range b.Beds {
			beds = append(beds, bookingBedModel{BookingID: m.ID, BedID: ref.BedID})
		}
		if err := tx.Create(&beds).Error; err != nil {
			return err
		}
		if len(b.Services) > 0 {
			svcs := make([]bookingServiceModel, 0, len(b.Services))
			for _, ref := range b.Services {
				svcs = append(svcs, bookingServiceModel{BookingID: m.ID, ServiceID: ref.ServiceID})
			}
			if err := tx.Create(&svcs).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.ID = m.ID
	b.CreatedAt = m.CreatedAt
	b.UpdatedAt = m.UpdatedAt
	b.Version = m.Version
	return nil
}

func (r *BookingRepository) getPopulated(ctx context.Context, m bookingModel) (*domain.Booking, error) {
	b := toDomainBooking(m)

	var bedRefs []domain.BedRef
	err := r.db.WithContext(ctx).Raw(`
SELECT bd.id AS bed_id, bd.bed_number, rm.id AS room_id, rm.room_number
FROM booking_beds bb
JOIN beds bd ON bd.id = bb.bed_id
JOIN rooms rm ON rm.id = bd.room_id
WHERE bb.booking_id = ?
ORDER BY rm.room_number, bd.bed_number`, m.ID).Scan(&bedRefs).Error
	if err != nil {
		return nil, err
	}
	b.Beds = bedRefs

	var svcRefs []domain.ServiceRef
	err = r.db.WithContext(ctx).Raw(`
SELECT s.id AS service_id, s.name, s.price, s.price_type
FROM booking_services bs
JOIN services s ON s.id = bs.service_id
WHERE bs.booking_id = ?
ORDER BY s.name`, m.ID).Scan(&svcRefs).Error
	if err != nil {
		return nil, err
	}
	b.Services = svcRefs

	if m.PackID != nil {
		var packRef domain.PackRef
		res := r.db.WithContext(ctx).Raw(`
SELECT id AS pack_id, name, duration_days, promo_price
FROM packs WHERE id = ?`, *m.PackID).Scan(&packRef)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			b.Pack = &packRef
		}
	}

	return b, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return r.getPopulated(ctx, m)
}

func (r *BookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).Where("booking_reference = ?", reference).First(&m).Error; err != nil {
		return nil, err
	}
	return r.getPopulated(ctx, m)
}

func (r *BookingRepository) GetByAccessCode(ctx context.Context, code string) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).Where("access_code = ?", code).First(&m).Error; err != nil {
		return nil, err
	}
	return r.getPopulated(ctx, m)
}

func (r *BookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	var models []bookingModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(models))
	for _, m := range models {
		b, err := r.getPopulated(ctx, m)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, nil
}

// FindByCheckInDate returns arrivals for a date in statuses that still
// expect a check-in.
func (r *BookingRepository) FindByCheckInDate(ctx context.Context, date time.Time) ([]domain.Booking, error) {
	return r.scanBookings(ctx, `
SELECT b.* FROM bookings b
WHERE b.check_in_date = ? AND b.status IN ('PENDING', 'CONFIRMED')
ORDER BY b.created_at`, date)
}

// FindByCheckOutDate returns departures for a date among current stays.
func (r *BookingRepository) FindByCheckOutDate(ctx context.Context, date time.Time) ([]domain.Booking, error) {
	return r.scanBookings(ctx, `
SELECT b.* FROM bookings b
WHERE b.check_out_date = ? AND b.status = 'CHECKED_IN'
ORDER BY b.created_at`, date)
}

// UpdateStatus performs an optimistic, version-guarded status change.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, expectedVersion int64) error {
	return r.versionedUpdate(ctx, id, expectedVersion, map[string]any{"status": string(status)})
}

// UpdatePaymentStatus is version-guarded like UpdateStatus but carries no
// transition rules: payment bookkeeping stays free-form.
func (r *BookingRepository) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, expectedVersion int64) error {
	return r.versionedUpdate(ctx, id, expectedVersion, map[string]any{"payment_status": string(status)})
}

func (r *BookingRepository) versionedUpdate(ctx context.Context, id, expectedVersion int64, fields map[string]any) error {
	fields["version"] = gorm.Expr("version + 1")
	fields["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var cnt int64
		if err := r.db.WithContext(ctx).Model(&bookingModel{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrStaleVersion
	}
	return nil
}

// Purge hard-deletes a booking and its link rows. Administrative only; the
// status state machine is deliberately bypassed.
func (r *BookingRepository) Purge(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m bookingModel
		if err := tx.First(&m, id).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM booking_beds WHERE booking_id = ?`, id).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM booking_services WHERE booking_id = ?`, id).Error; err != nil {
			return err
		}
		return tx.Delete(&bookingModel{}, id).Error
	})
}

// ExpireStalePending cancels PENDING bookings created before the cutoff.
// Used by the one-shot cleanup binary.
func (r *BookingRepository) ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
UPDATE bookings
SET status = 'CANCELLED', version = version + 1, updated_at = ?
WHERE status = 'PENDING' AND created_at < ?`, time.Now().UTC(), cutoff)
	return res.RowsAffected, res.Error
}
