package predictor

import (
	"fmt"
	"math"

	"TripBroker/internal/calculator"
)

// FlightHorizon is the number of flight quote samples in a full game
// (one sample every 10 seconds over 9 minutes).
const FlightHorizon = 54

// FlightDegree picks the polynomial degree from the number of samples:
// below 42 a line, 42-47 a quadratic, 48 and above a cubic.
func FlightDegree(samples int) int {
	switch tier := samples / 6; {
	case tier < 7:
		return 1
	case tier < 8:
		return 2
	default:
		return 3
	}
}

// Flight forecasts a flight ask series indexed by sample number.
type Flight struct {
	samples int
	horizon int
	poly    calculator.Polynomial
}

// NewFlight fits the ask history of one flight auction.
func NewFlight(prices []float64) (*Flight, error) {
	return NewFlightWithHorizon(prices, FlightHorizon)
}

// NewFlightWithHorizon is NewFlight with a custom number of total samples.
func NewFlightWithHorizon(prices []float64, horizon int) (*Flight, error) {
	degree := FlightDegree(len(prices))
	xs := make([]float64, len(prices))
	for i := range xs {
		xs[i] = float64(i)
	}
	poly, err := calculator.FitPolynomial(xs, prices, degree)
	if err != nil {
		return nil, fmt.Errorf("fit flight prices (degree %d): %w", degree, err)
	}
	return &Flight{samples: len(prices), horizon: horizon, poly: poly}, nil
}

// Degree returns the degree of the fitted polynomial.
func (f *Flight) Degree() int { return f.poly.Degree() }

// Predict evaluates the fit at a sample index.
func (f *Flight) Predict(index int) float64 { return f.poly.Eval(float64(index)) }

// ShouldBuy reports whether the lowest forecast over the remaining samples
// falls on the next sample. With no samples left it always buys.
func (f *Flight) ShouldBuy() bool {
	best := math.Inf(1)
	bestAt := f.samples
	for x := f.samples; x < f.horizon; x++ {
		if y := f.Predict(x); y < best {
			best = y
			bestAt = x
		}
	}
	return bestAt == f.samples
}
