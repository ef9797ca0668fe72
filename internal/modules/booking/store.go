package booking

import (
	"context"

	"hostel/internal/repository"
)

// gormStore adapts the concrete repository to BookingStore. Embedding
// promotes every query method; only Serializable needs rewrapping so the
// transaction-scoped repository is seen through the same interface.
type gormStore struct {
	*repository.BookingRepository
}

// NewGormStore wraps the repository for use by the booking services.
func NewGormStore(r *repository.BookingRepository) BookingStore {
	return gormStore{r}
}

func (g gormStore) Serializable(ctx context.Context, fn func(tx BookingStore) error) error {
	return g.BookingRepository.Serializable(ctx, func(tx *repository.BookingRepository) error {
		return fn(gormStore{tx})
	})
}
