package booking

import (
	"testing"

	"hostel/internal/domain"
	"hostel/internal/repository"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotalPrice_BedsOnly(t *testing.T) {
	beds := []repository.BedPricing{
		{BedID: 1, PricePerNight: price("50.00")},
		{BedID: 2, PricePerNight: price("45.50")},
	}

	total := ComputeTotalPrice(beds, nil, nil, 3)

	// (50.00 + 45.50) x 3
	assert.True(t, total.Equal(price("286.50")), "got %s", total)
}

func TestComputeTotalPrice_ServiceTypes(t *testing.T) {
	beds := []repository.BedPricing{{BedID: 1, PricePerNight: price("40.00")}}
	services := []domain.Service{
		{ID: 1, Name: "Airport pickup", Price: price("25.00"), PriceType: domain.PriceFixed},
		{ID: 2, Name: "Breakfast", Price: price("8.00"), PriceType: domain.PricePerNight},
	}

	total := ComputeTotalPrice(beds, services, nil, 2)

	// 40.00 x 2 + 25.00 + 8.00 x 2
	assert.True(t, total.Equal(price("121.00")), "got %s", total)
}

func TestComputeTotalPrice_PackReplacesBedPricing(t *testing.T) {
	beds := []repository.BedPricing{
		{BedID: 1, PricePerNight: price("60.00")},
		{BedID: 2, PricePerNight: price("60.00")},
	}
	pack := &domain.Pack{ID: 1, PromoPrice: price("199.99")}

	total := ComputeTotalPrice(beds, nil, pack, 7)

	assert.True(t, total.Equal(price("199.99")), "got %s", total)
}

func TestComputeTotalPrice_PackPlusServices(t *testing.T) {
	pack := &domain.Pack{ID: 1, PromoPrice: price("150.00")}
	services := []domain.Service{
		{ID: 1, Price: price("10.00"), PriceType: domain.PricePerNight},
	}

	total := ComputeTotalPrice(nil, services, pack, 4)

	assert.True(t, total.Equal(price("190.00")), "got %s", total)
}
