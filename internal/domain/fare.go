package domain

import "math"

// FareOptions are the tariff constants of the quote.
type FareOptions struct {
	BaseFare          float64 `json:"baseFare"`
	RatePerKm         float64 `json:"ratePerKm"`
	ServiceFeePercent float64 `json:"serviceFeePercent"`
}

func DefaultFareOptions() FareOptions {
	return FareOptions{
		BaseFare:          100,
		RatePerKm:         15,
		ServiceFeePercent: 5,
	}
}

type FareBreakdown struct {
	BaseFare          float64 `json:"baseFare"`
	DistanceKm        float64 `json:"distanceKm"`
	RatePerKm         float64 `json:"ratePerKm"`
	DistanceCost      float64 `json:"distanceCost"`
	Days              int     `json:"days"`
	DailyRate         float64 `json:"dailyRate"`
	RentalCost        float64 `json:"rentalCost"`
	SubTotal          float64 `json:"subTotal"`
	ServiceFeePercent float64 `json:"serviceFeePercent"`
	ServiceFee        float64 `json:"serviceFee"`
	Total             int64   `json:"total"`
}

// ComputeFare itemizes the price of a rental. serviceFee is kept to two
// decimals and total is the subtotal plus that fee rounded to a whole unit.
// Callers check for a known route and a date range before quoting.
func ComputeFare(opts FareOptions, distanceKm float64, days int, dailyRate float64) (FareBreakdown, error) {
	if math.IsNaN(distanceKm) || distanceKm < 0 {
		return FareBreakdown{}, ValidationError{Field: "distance", Msg: "distance must not be negative"}
	}
	if days <= 0 {
		return FareBreakdown{}, ValidationError{Field: "dates", Msg: "rental must span at least one day"}
	}
	if math.IsNaN(dailyRate) || dailyRate < 0 {
		return FareBreakdown{}, ValidationError{Field: "dailyRate", Msg: "daily rate must not be negative"}
	}

	distanceCost := distanceKm * opts.RatePerKm
	rentalCost := dailyRate * float64(days)
	subTotal := opts.BaseFare + distanceCost + rentalCost
	serviceFee := round2(subTotal * opts.ServiceFeePercent / 100)

	return FareBreakdown{
		BaseFare:          opts.BaseFare,
		DistanceKm:        distanceKm,
		RatePerKm:         opts.RatePerKm,
		DistanceCost:      distanceCost,
		Days:              days,
		DailyRate:         dailyRate,
		RentalCost:        rentalCost,
		SubTotal:          subTotal,
		ServiceFeePercent: opts.ServiceFeePercent,
		ServiceFee:        serviceFee,
		Total:             roundMoney(subTotal + serviceFee),
	}, nil
}

func roundMoney(x float64) int64 {
	return int64(math.Round(x))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
