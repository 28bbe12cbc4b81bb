package domain

import (
	"github.com/shopspring/decimal"
)

// averageSpeedKmh is used to turn a distance into a duration estimate.
const averageSpeedKmh = 30

// FareRate is the pricing of one vehicle class.
type FareRate struct {
	Base  decimal.Decimal
	PerKm decimal.Decimal
}

var fareTable = map[VehicleType]FareRate{
	VehicleTypeAuto:  {Base: decimal.NewFromInt(30), PerKm: decimal.NewFromInt(12)},
	VehicleTypeBike:  {Base: decimal.NewFromInt(20), PerKm: decimal.NewFromInt(8)},
	VehicleTypeSedan: {Base: decimal.NewFromInt(50), PerKm: decimal.NewFromInt(15)},
	VehicleTypeSUV:   {Base: decimal.NewFromInt(70), PerKm: decimal.NewFromInt(20)},
}

// RateFor returns the fare table row for a vehicle class.
func RateFor(vt VehicleType) (FareRate, error) {
	rate, ok := fareTable[vt]
	if !ok {
		return FareRate{}, ErrInvalidVehicleType.WithMessagef("Invalid vehicle type '%s'. Valid types are: AUTO, BIKE, SEDAN, SUV", vt)
	}
	return rate, nil
}

// CalculateFare returns base + distance * perKm, rounded half-up to two decimal places.
func CalculateFare(distanceKm decimal.Decimal, vt VehicleType) (decimal.Decimal, error) {
	rate, err := RateFor(vt)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundMoney(rate.Base.Add(distanceKm.Mul(rate.PerKm))), nil
}

// EstimateDurationMinutes converts a distance to whole minutes at the average city speed.
func EstimateDurationMinutes(distanceKm decimal.Decimal) int {
	minutes := distanceKm.Mul(decimal.NewFromInt(60)).Div(decimal.NewFromInt(averageSpeedKmh))
	return int(minutes.Round(0).IntPart())
}

// RoundMoney rounds an amount half-up to two decimal places.
// Amounts in this domain are never negative, so half-away-from-zero is half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
