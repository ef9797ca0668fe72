package booking

import (
	"context"
	"fmt"
	"time"

	"hostel/internal/domain"
	"hostel/internal/repository"
)

// nextDateHorizonDays bounds the forward probe of CheckRoomAvailability.
const nextDateHorizonDays = 60

// Availability answers yes/no and "next free date" questions from the
// overlap queries. It is read-only and safe for concurrent use.
type Availability struct {
	bookings BookingStore
	rooms    RoomStore
}

func NewAvailability(bookings BookingStore, rooms RoomStore) *Availability {
	return &Availability{bookings: bookings, rooms: rooms}
}

// IsBedAvailable reports whether no active booking holds the bed for any
// night of [checkIn, checkOut).
func (a *Availability) IsBedAvailable(ctx context.Context, bedID int64, checkIn, checkOut time.Time) (bool, error) {
	overlapping, err := a.bookings.OverlappingForBed(ctx, bedID, domain.DateOnly(checkIn), domain.DateOnly(checkOut))
	if err != nil {
		return false, err
	}
	return len(overlapping) == 0, nil
}

// AreBedsAvailable is all-or-nothing: one overlapping booking on any of the
// requested beds fails the whole set.
func (a *Availability) AreBedsAvailable(ctx context.Context, bedIDs []int64, checkIn, checkOut time.Time) (bool, error) {
	if len(bedIDs) == 0 {
		return false, fmt.Errorf("%w: at least one bed must be selected", ErrValidation)
	}
	overlapping, err := a.bookings.OverlappingForBeds(ctx, bedIDs, domain.DateOnly(checkIn), domain.DateOnly(checkOut))
	if err != nil {
		return false, err
	}
	return len(overlapping) == 0, nil
}

func (a *Availability) IsRoomAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	overlapping, err := a.bookings.OverlappingForRoom(ctx, roomID, domain.DateOnly(checkIn), domain.DateOnly(checkOut))
	if err != nil {
		return false, err
	}
	return len(overlapping) == 0, nil
}

// CheckRoomAvailability builds the full report: free bed count and ids,
// and, only when the room is full, the next date with capacity.
func (a *Availability) CheckRoomAvailability(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (*AvailabilityReport, error) {
	checkIn = domain.DateOnly(checkIn)
	checkOut = domain.DateOnly(checkOut)
	if !checkOut.After(checkIn) {
		return nil, fmt.Errorf("%w: check-out date must be after check-in date", ErrValidation)
	}

	room, err := a.rooms.GetByID(ctx, roomID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: room %d", ErrNotFound, roomID)
		}
		return nil, err
	}

	allBeds, err := a.rooms.GetBedsByRoomID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	occupiedIDs, err := a.bookings.OccupiedBedIDsForRoom(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	occupied := make(map[int64]bool, len(occupiedIDs))
	for _, id := range occupiedIDs {
		occupied[id] = true
	}

	freeIDs := make([]int64, 0, len(allBeds))
	for _, bed := range allBeds {
		if !occupied[bed.ID] {
			freeIDs = append(freeIDs, bed.ID)
		}
	}

	report := &AvailabilityReport{
		RoomID:          room.ID,
		RoomNumber:      room.RoomNumber,
		IsAvailable:     len(freeIDs) > 0,
		AvailableBeds:   len(freeIDs),
		AvailableBedIDs: freeIDs,
	}

	if !report.IsAvailable {
		next, err := a.findNextAvailableDate(ctx, roomID, checkOut)
		if err != nil {
			return nil, err
		}
		report.NextAvailableDate = next
	}

	return report, nil
}

// findNextAvailableDate probes forward one night at a time, jumping the
// cursor to the latest blocking checkout rather than the next day, so a
// long stay is skipped in one step. Returns nil when nothing frees up
// within the horizon; that is an answer, not an error.
func (a *Availability) findNextAvailableDate(ctx context.Context, roomID int64, from time.Time) (*time.Time, error) {
	search := domain.DateOnly(from)
	limit := search.AddDate(0, 0, nextDateHorizonDays)

	for search.Before(limit) {
		blockers, err := a.bookings.OverlappingForRoom(ctx, roomID, search, search.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		if len(blockers) == 0 {
			d := search
			return &d, nil
		}

		next := search.AddDate(0, 0, 1)
		for _, b := range blockers {
			if b.CheckOutDate.After(next) {
				next = domain.DateOnly(b.CheckOutDate)
			}
		}
		search = next
	}

	return nil, nil
}
