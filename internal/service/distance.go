package service

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"booking/internal/domain"
)

const (
	// EstimatorRandom draws a placeholder distance until a routing integration exists.
	EstimatorRandom = "random"
	// EstimatorHaversine uses the great-circle distance between pickup and dropoff.
	EstimatorHaversine = "haversine"

	earthRadiusKm = 6371.0
)

var (
	minDistanceKm = decimal.NewFromInt(1)
	maxDistanceKm = decimal.NewFromInt(20)
)

// DistanceEstimator estimates the trip distance in kilometres, rounded to 2 decimal places.
type DistanceEstimator interface {
	Estimate(pickup, dropoff domain.Location) decimal.Decimal
}

// NewDistanceEstimator returns the estimator registered under name.
func NewDistanceEstimator(name string) (DistanceEstimator, error) {
	switch name {
	case "", EstimatorRandom:
		return NewRandomDistance(), nil
	case EstimatorHaversine:
		return HaversineDistance{}, nil
	default:
		return nil, fmt.Errorf("unknown distance estimator %q", name)
	}
}

// RandomDistance returns a uniform value in [1, 20] km regardless of the locations.
type RandomDistance struct {
	next func() float64
}

// NewRandomDistance creates a RandomDistance backed by the global generator.
func NewRandomDistance() *RandomDistance {
	return &RandomDistance{next: rand.Float64}
}

func (e *RandomDistance) Estimate(_, _ domain.Location) decimal.Decimal {
	span := maxDistanceKm.Sub(minDistanceKm)
	km := minDistanceKm.Add(span.Mul(decimal.NewFromFloat(e.next())))
	return km.Round(2)
}

// HaversineDistance returns the great-circle distance, never less than 1 km.
type HaversineDistance struct{}

func (HaversineDistance) Estimate(pickup, dropoff domain.Location) decimal.Decimal {
	km := decimal.NewFromFloat(haversineKm(
		pickup.Latitude, pickup.Longitude,
		dropoff.Latitude, dropoff.Longitude,
	)).Round(2)
	if km.LessThan(minDistanceKm) {
		return minDistanceKm.Round(2)
	}
	return km
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

var (
	_ DistanceEstimator = (*RandomDistance)(nil)
	_ DistanceEstimator = HaversineDistance{}
)
