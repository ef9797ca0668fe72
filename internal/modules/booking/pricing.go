package booking

import (
	"hostel/internal/domain"
	"hostel/internal/repository"

	"github.com/shopspring/decimal"
)

// ComputeTotalPrice derives the booking total. A pack's promo price is flat
// and replaces per-bed pricing entirely, regardless of bed count or stay
// length; services are added on top either way. No rounding happens here.
func ComputeTotalPrice(beds []repository.BedPricing, services []domain.Service, pack *domain.Pack, nights int64) decimal.Decimal {
	total := decimal.Zero

	if pack != nil {
		total = total.Add(pack.PromoPrice)
	} else {
		n := decimal.NewFromInt(nights)
		for _, bed := range beds {
			total = total.Add(bed.PricePerNight.Mul(n))
		}
	}

	for _, svc := range services {
		total = total.Add(svc.TotalFor(nights))
	}

	return total
}
