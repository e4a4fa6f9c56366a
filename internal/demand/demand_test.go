package demand

import (
	"math"
	"testing"
)

func TestComputeIsPure(t *testing.T) {
	in := [4]float64{280, 310, 345, 390}
	out := [4]float64{300, 260, 330, 355}
	a := Compute(in, out)
	b := Compute(in, out)
	if a != b {
		t.Errorf("repeated calls differ: %+v vs %+v", a, b)
	}
}

func TestComputeSumsPerDirection(t *testing.T) {
	tests := []struct {
		name    string
		in, out [4]float64
	}{
		{"uniform", [4]float64{300, 300, 300, 300}, [4]float64{300, 300, 300, 300}},
		{"uniform low", [4]float64{250, 250, 250, 250}, [4]float64{250, 250, 250, 250}},
		{"mixed", [4]float64{280, 310, 345, 390}, [4]float64{300, 260, 330, 355}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := Compute(tt.in, tt.out)
			var in, out float64
			for i := 0; i < 4; i++ {
				in += est.Flight[i]
				out += est.Flight[i+4]
			}
			if math.Abs(in-Scale) > 1e-9 || math.Abs(out-Scale) > 1e-9 {
				t.Errorf("inbound sum %.6f, outbound sum %.6f, want %d", in, out, Scale)
			}
		})
	}
}

func TestComputeUniformValues(t *testing.T) {
	// With uniform prices the elasticity cancels and only the ramps remain:
	// inbound 0.4,0.3,0.2,0.1 and outbound 0.1,0.2,0.3,0.4 (each sums to 1).
	est := Compute([4]float64{300, 300, 300, 300}, [4]float64{300, 300, 300, 300})
	wantFlight := [8]float64{25.6, 19.2, 12.8, 6.4, 6.4, 12.8, 19.2, 25.6}
	for i, w := range wantFlight {
		if math.Abs(est.Flight[i]-w) > 1e-9 {
			t.Errorf("flight[%d] = %.6f, want %.6f", i, est.Flight[i], w)
		}
	}
	wantHotel := [4]float64{
		25.6,
		25.6 + 19.2 - 6.4,
		-6.4 + 19.2 + 25.6,
		25.6,
	}
	for i, w := range wantHotel {
		if math.Abs(est.Hotel[i]-w) > 1e-9 {
			t.Errorf("hotel[%d] = %.6f, want %.6f", i, est.Hotel[i], w)
		}
	}
	if est.Night(1) != est.Hotel[0] || est.Night(5) != 0 {
		t.Error("Night lookup mismatch")
	}
}
