// Package demand forecasts flight and hotel demand from the opening flight prices.
package demand

// Scale is the total number of travellers per direction across all agents.
const Scale = 64

// Estimate holds demand per flight auction (4 inbound then 4 outbound) and
// per hotel night.
type Estimate struct {
	Flight [8]float64 `json:"flight"`
	Hotel  [4]float64 `json:"hotel"`
}

// hotelTransform maps the 8 flight demands onto the 4 hotel nights.
var hotelTransform = [4][8]float64{
	{1, 0, 0, 0, 0, 0, 0, 0},
	{1, 1, 0, 0, -1, 0, 0, 0},
	{0, 0, 0, -1, 0, 0, 1, 1},
	{0, 0, 0, 0, 0, 0, 0, 1},
}

// Compute derives the demand estimate from the first observed ask price of
// each inbound (days 1-4) and outbound (days 2-5) flight.
func Compute(inbound, outbound [4]float64) Estimate {
	var in, out [4]float64
	for i := 0; i < 4; i++ {
		sIn := 0.5 - 0.1*float64(i+1)
		sOut := 0.1*float64(i+2) - 0.1
		in[i] = sIn * elasticity(inbound[i])
		out[i] = sOut * elasticity(outbound[i])
	}

	var est Estimate
	totalIn, totalOut := sum(in), sum(out)
	for i := 0; i < 4; i++ {
		est.Flight[i] = Scale * in[i] / totalIn
		est.Flight[i+4] = Scale * out[i] / totalOut
	}
	for day, row := range hotelTransform {
		for j, w := range row {
			est.Hotel[day] += w * est.Flight[j]
		}
	}
	return est
}

// Night returns the hotel demand for a 1-based night, or 0 when out of range.
func (e Estimate) Night(night int) float64 {
	if night < 1 || night > len(e.Hotel) {
		return 0
	}
	return e.Hotel[night-1]
}

func elasticity(price float64) float64 { return (400 - price) / 150 }

func sum(v [4]float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s
}
