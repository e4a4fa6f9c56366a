package predictor

import (
	"errors"
	"testing"
	"time"

	"TripBroker/internal/calculator"
	"TripBroker/internal/model"
)

func TestFlightDegreeBoundaries(t *testing.T) {
	tests := []struct {
		samples int
		want    int
	}{
		{0, 1}, {1, 1}, {2, 1}, {41, 1},
		{42, 2}, {47, 2},
		{48, 3}, {53, 3}, {54, 3},
	}
	for _, tt := range tests {
		if got := FlightDegree(tt.samples); got != tt.want {
			t.Errorf("FlightDegree(%d) = %d, want %d", tt.samples, got, tt.want)
		}
	}
}

func series(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func TestShouldBuyDecreasing(t *testing.T) {
	for n := 2; n < FlightHorizon; n++ {
		prices := series(n, func(i int) float64 { return 400 - 3*float64(i) })
		p, err := NewFlight(prices)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		want := n == FlightHorizon-1
		if got := p.ShouldBuy(); got != want {
			t.Errorf("n=%d: ShouldBuy() = %v, want %v", n, got, want)
		}
	}
}

func TestShouldBuyIncreasing(t *testing.T) {
	prices := series(2, func(i int) float64 { return 250 + 5*float64(i) })
	p, err := NewFlight(prices)
	if err != nil {
		t.Fatal(err)
	}
	if !p.ShouldBuy() {
		t.Error("increasing series should buy at the first call")
	}
}

func TestShouldBuyPastHorizon(t *testing.T) {
	prices := series(FlightHorizon, func(i int) float64 { return 500 - float64(i) })
	p, err := NewFlight(prices)
	if err != nil {
		t.Fatal(err)
	}
	if !p.ShouldBuy() {
		t.Error("no samples left: expected buy")
	}
}

func TestNewFlightTooFewSamples(t *testing.T) {
	_, err := NewFlight([]float64{320})
	if !errors.Is(err, calculator.ErrTooFewSamples) {
		t.Errorf("expected ErrTooFewSamples, got %v", err)
	}
}

func TestShouldBuyValley(t *testing.T) {
	// Parabola with its minimum at index 30, sampled 42 times (degree 2).
	prices := series(42, func(i int) float64 {
		d := float64(i - 30)
		return 200 + d*d
	})
	p, err := NewFlight(prices)
	if err != nil {
		t.Fatal(err)
	}
	if p.Degree() != 2 {
		t.Fatalf("degree = %d", p.Degree())
	}
	// Past the valley the curve rises, so the next sample is the cheapest.
	if !p.ShouldBuy() {
		t.Error("expected buy after the valley")
	}
}

func TestHotelPredict(t *testing.T) {
	points := []model.PricePoint{
		{Ask: 50, Elapsed: 30 * time.Second},
		{Ask: 70, Elapsed: 60 * time.Second},
		{Ask: 90, Elapsed: 90 * time.Second},
	}
	h, err := NewHotel(points)
	if err != nil {
		t.Fatal(err)
	}
	// 30 + 2/3*121 = 110.67, truncated.
	if got := h.Predict(121 * time.Second); got != 110 {
		t.Errorf("Predict(121s) = %d, want 110", got)
	}
}

func TestHotelSameTimestamp(t *testing.T) {
	points := []model.PricePoint{{Ask: 10, Elapsed: time.Second}, {Ask: 20, Elapsed: time.Second}}
	if _, err := NewHotel(points); err == nil {
		t.Error("expected singular fit error")
	}
}

func TestNextBoundary(t *testing.T) {
	tests := []struct {
		now, want time.Duration
	}{
		{0, 0},
		{time.Millisecond, time.Minute},
		{59 * time.Second, time.Minute},
		{time.Minute, time.Minute},
		{61 * time.Second, 2 * time.Minute},
	}
	for _, tt := range tests {
		if got := NextBoundary(tt.now); got != tt.want {
			t.Errorf("NextBoundary(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}
}
