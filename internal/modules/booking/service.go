package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hostel/internal/domain"
	"hostel/internal/logger"
	"hostel/internal/repository"
)

const (
	maxBedsPerBooking     = 10
	maxServicesPerBooking = 20

	// A serialization abort or an identifier collision restarts the whole
	// allocation transaction; both are transient and bounded here.
	maxAllocationAttempts = 3

	notifyTimeout = 30 * time.Second
)

type Service struct {
	store   BookingStore
	codegen *CodeGenerator
	notifs  NotificationSender
	now     func() time.Time
}

func NewService(store BookingStore, codegen *CodeGenerator, notifs NotificationSender) *Service {
	return &Service{
		store:   store,
		codegen: codegen,
		notifs:  notifs,
		now:     time.Now,
	}
}

// CreateBooking allocates beds for a date range. The availability re-check,
// price computation and insert run inside one serializable transaction, so
// of two concurrent requests for the same bed and overlapping nights at
// most one commits; the loser is retried and, if it keeps losing, surfaces
// as a conflict.
func (s *Service) CreateBooking(ctx context.Context, in CreateBookingInput) (*domain.Booking, error) {
	checkIn := domain.DateOnly(in.CheckInDate)
	checkOut := domain.DateOnly(in.CheckOutDate)
	today := domain.DateOnly(s.now())

	if checkIn.Before(today) {
		return nil, fmt.Errorf("%w: check-in date cannot be in the past", ErrValidation)
	}
	if !checkOut.After(checkIn) {
		return nil, fmt.Errorf("%w: stay must be at least one night", ErrValidation)
	}
	if checkIn.After(today.AddDate(1, 0, 0)) {
		return nil, fmt.Errorf("%w: bookings open at most one year ahead", ErrValidation)
	}
	if len(in.BedIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one bed must be selected", ErrValidation)
	}
	if len(in.BedIDs) > maxBedsPerBooking {
		return nil, fmt.Errorf("%w: at most %d beds per booking", ErrValidation, maxBedsPerBooking)
	}
	if len(in.ServiceIDs) > maxServicesPerBooking {
		return nil, fmt.Errorf("%w: at most %d services per booking", ErrValidation, maxServicesPerBooking)
	}

	nights := int64(checkOut.Sub(checkIn).Hours() / 24)

	var booking *domain.Booking
	var err error
	for attempt := 1; attempt <= maxAllocationAttempts; attempt++ {
		booking, err = s.allocate(ctx, in, checkIn, checkOut, nights)
		if err == nil {
			break
		}
		if repository.IsSerializationFailure(err) ||
			repository.IsUniqueViolation(err, "access_code") ||
			repository.IsUniqueViolation(err, "booking_reference") {
			logger.InfoLogger.Infof("booking allocation attempt %d/%d retried: %v", attempt, maxAllocationAttempts, err)
			continue
		}
		return nil, err
	}
	if err != nil {
		if repository.IsSerializationFailure(err) {
			// Losing the serialization race repeatedly means someone else
			// holds these beds now.
			return nil, &ConflictError{}
		}
		return nil, err
	}

	logger.InfoLogger.Infof("booking created: %s for %s, %s to %s, total %s",
		booking.BookingReference, booking.GuestEmail,
		checkIn.Format("2006-01-02"), checkOut.Format("2006-01-02"),
		booking.TotalPrice.StringFixed(2))

	if s.notifs != nil {
		go s.notify(booking)
	}

	return booking, nil
}

// allocate is one full attempt: resolve, re-check, price, generate, insert,
// all inside a serializable transaction.
func (s *Service) allocate(ctx context.Context, in CreateBookingInput, checkIn, checkOut time.Time, nights int64) (*domain.Booking, error) {
	var created *domain.Booking

	err := s.store.Serializable(ctx, func(tx BookingStore) error {
		beds, err := tx.ResolveBeds(ctx, in.BedIDs)
		if err != nil {
			return err
		}
		if len(beds) != len(in.BedIDs) {
			return fmt.Errorf("%w: one or more beds do not exist", ErrNotFound)
		}

		// The critical re-check: any booking committed after an earlier
		// advisory availability check must be visible here, or the store
		// aborts this transaction as a serialization failure.
		for _, bed := range beds {
			overlapping, err := tx.OverlappingForBed(ctx, bed.BedID, checkIn, checkOut)
			if err != nil {
				return err
			}
			if len(overlapping) > 0 {
				return &ConflictError{BedNumber: bed.BedNumber, RoomNumber: bed.RoomNumber}
			}
		}

		var pack *domain.Pack
		if in.PackID != nil {
			pack, err = tx.GetPack(ctx, *in.PackID)
			if err != nil {
				if repository.IsNotFound(err) {
					return fmt.Errorf("%w: pack %d", ErrNotFound, *in.PackID)
				}
				return err
			}
			if !pack.IsActive {
				return fmt.Errorf("%w: pack %q is no longer available", ErrValidation, pack.Name)
			}
		}

		var services []domain.Service
		if len(in.ServiceIDs) > 0 {
			services, err = tx.GetServices(ctx, in.ServiceIDs)
			if err != nil {
				return err
			}
			if len(services) != len(in.ServiceIDs) {
				return fmt.Errorf("%w: one or more services do not exist", ErrNotFound)
			}
		}

		total := ComputeTotalPrice(beds, services, pack, nights)

		b := &domain.Booking{
			BookingReference: s.codegen.BookingReference(),
			AccessCode:       s.codegen.AccessCode(),
			GuestName:        strings.TrimSpace(in.GuestName),
			GuestEmail:       strings.ToLower(strings.TrimSpace(in.GuestEmail)),
			GuestPhone:       strings.TrimSpace(in.GuestPhone),
			CheckInDate:      checkIn,
			CheckOutDate:     checkOut,
			TotalPrice:       total,
			Status:           domain.BookingConfirmed,
			PaymentStatus:    domain.PaymentUnpaid,
			Notes:            in.Notes,
		}
		for _, bed := range beds {
			b.Beds = append(b.Beds, domain.BedRef{
				BedID:      bed.BedID,
				BedNumber:  bed.BedNumber,
				RoomID:     bed.RoomID,
				RoomNumber: bed.RoomNumber,
			})
		}
		for _, svc := range services {
			b.Services = append(b.Services, domain.ServiceRef{
				ServiceID: svc.ID,
				Name:      svc.Name,
				Price:     svc.Price,
				PriceType: svc.PriceType,
			})
		}
		if pack != nil {
			b.Pack = &domain.PackRef{
				PackID:       pack.ID,
				Name:         pack.Name,
				DurationDays: pack.DurationDays,
				PromoPrice:   pack.PromoPrice,
			}
		}

		if err := tx.Create(ctx, b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// notify runs after commit on its own context; the caller of CreateBooking
// never waits on it and never sees its failure.
func (s *Service) notify(b *domain.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := s.notifs.SendBookingConfirmation(ctx, b); err != nil {
		logger.ErrorLogger.Errorf("booking confirmation for %s failed: %v", b.BookingReference, err)
	}
}

func (s *Service) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: booking %d", ErrNotFound, id)
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) GetBookingByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	b, err := s.store.GetByReference(ctx, reference)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: no booking with reference %s", ErrNotFound, reference)
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) GetBookingByAccessCode(ctx context.Context, code string) (*domain.Booking, error) {
	b, err := s.store.GetByAccessCode(ctx, code)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: no booking with this access code", ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.store.List(ctx)
}

// CheckInsForDate lists arrivals still expecting a check-in on the date.
func (s *Service) CheckInsForDate(ctx context.Context, date time.Time) ([]domain.Booking, error) {
	return s.store.FindByCheckInDate(ctx, domain.DateOnly(date))
}

// CheckOutsForDate lists current stays due to leave on the date.
func (s *Service) CheckOutsForDate(ctx context.Context, date time.Time) ([]domain.Booking, error) {
	return s.store.FindByCheckOutDate(ctx, domain.DateOnly(date))
}

// UpdateStatus drives the state machine. The version read here guards the
// write: a concurrent admin edit between read and write surfaces as
// ErrConcurrentUpdate instead of a lost update.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := domain.CanTransition(b.Status, status); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalTransition, err)
	}

	if err := s.applyVersioned(s.store.UpdateStatus(ctx, id, status, b.Version)); err != nil {
		return nil, err
	}

	logger.InfoLogger.Infof("booking %s status changed: %s -> %s", b.BookingReference, b.Status, status)
	return s.GetBooking(ctx, id)
}

// UpdatePaymentStatus is deliberately unconstrained by booking status, so
// refunds can be recorded on cancelled bookings.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrValidation, status)
	}

	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.applyVersioned(s.store.UpdatePaymentStatus(ctx, id, status, b.Version)); err != nil {
		return nil, err
	}

	logger.InfoLogger.Infof("booking %s payment status changed: %s -> %s", b.BookingReference, b.PaymentStatus, status)
	return s.GetBooking(ctx, id)
}

// CancelBooking refuses to cancel a stay that has started or finished;
// those can only run their course or be purged administratively.
func (s *Service) CancelBooking(ctx context.Context, id int64) error {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return err
	}

	switch b.Status {
	case domain.BookingCheckedIn:
		return fmt.Errorf("%w: a stay in progress cannot be cancelled", ErrIllegalState)
	case domain.BookingCheckedOut:
		return fmt.Errorf("%w: a finished stay cannot be cancelled", ErrIllegalState)
	}

	if err := s.applyVersioned(s.store.UpdateStatus(ctx, id, domain.BookingCancelled, b.Version)); err != nil {
		return err
	}

	logger.InfoLogger.Infof("booking %s cancelled", b.BookingReference)
	return nil
}

// DeleteBooking is the administrative purge; it bypasses the state machine.
func (s *Service) DeleteBooking(ctx context.Context, id int64) error {
	if err := s.store.Purge(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return fmt.Errorf("%w: booking %d", ErrNotFound, id)
		}
		return err
	}
	logger.InfoLogger.Infof("booking %d purged", id)
	return nil
}

func (s *Service) applyVersioned(err error) error {
	switch {
	case err == nil:
		return nil
	case repository.IsNotFound(err):
		return fmt.Errorf("%w: booking disappeared", ErrNotFound)
	case errors.Is(err, repository.ErrStaleVersion):
		return ErrConcurrentUpdate
	default:
		return err
	}
}
