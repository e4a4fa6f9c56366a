package predictor

import (
	"fmt"
	"time"

	"TripBroker/internal/calculator"
	"TripBroker/internal/model"
)

// Hotel forecasts a hotel ask price linearly in elapsed game time.
type Hotel struct {
	poly calculator.Polynomial
}

// NewHotel fits a line through the ask history of one hotel auction.
func NewHotel(points []model.PricePoint) (*Hotel, error) {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Seconds()
		ys[i] = p.Ask
	}
	poly, err := calculator.FitPolynomial(xs, ys, 1)
	if err != nil {
		return nil, fmt.Errorf("fit hotel prices: %w", err)
	}
	return &Hotel{poly: poly}, nil
}

// Predict returns the forecast ask at the given game time, truncated to an
// integer price.
func (h *Hotel) Predict(at time.Duration) int {
	return int(h.poly.Eval(at.Seconds()))
}

// NextBoundary rounds a game time up to the next whole minute. A time
// already on a boundary is returned unchanged.
func NextBoundary(now time.Duration) time.Duration {
	if now%time.Minute == 0 {
		return now
	}
	return (now/time.Minute + 1) * time.Minute
}
