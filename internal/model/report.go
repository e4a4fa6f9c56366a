package model

import "time"

// Outcome says how a client's package ended.
type Outcome string

const (
	OutcomeKept     Outcome = "KEPT"
	OutcomeReshaped Outcome = "RESHAPED"
	OutcomeDropped  Outcome = "DROPPED"
)

// FlightResult compares what the agent paid for a flight with the prices the
// auction showed over the game.
type FlightResult struct {
	Auction AuctionID `json:"auction"`
	Samples int       `json:"samples"`
	Paid    float64   `json:"paid"`
	Low     float64   `json:"low"`
	High    float64   `json:"high"`
	// Position of Paid within [Low, High]; 0 is the cheapest observed ask.
	Position float64 `json:"position"`
}

// HotelResult is the end state of one hotel auction for the agent.
type HotelResult struct {
	Auction    AuctionID     `json:"auction"`
	Allocation int           `json:"allocation"`
	Own        int           `json:"own"`
	BidPrice   float64       `json:"bid_price"`
	AskPrice   float64       `json:"ask_price"`
	ClosedAt   time.Duration `json:"closed_at"`
}

// Won reports whether every wanted room was won.
func (h HotelResult) Won() bool { return h.Own >= h.Allocation }

// ClientOutcome is the final package of one client.
type ClientOutcome struct {
	Client           int     `json:"client"`
	InitialArrival   int     `json:"initial_arrival"`
	InitialDeparture int     `json:"initial_departure"`
	Arrival          int     `json:"arrival"`
	Departure        int     `json:"departure"`
	Tier             string  `json:"tier"`
	Outcome          Outcome `json:"outcome"`
	Reason           string  `json:"reason,omitempty"`
}

// GameReport is the end-of-game summary the agent records and reports.
type GameReport struct {
	GameID    string        `json:"game_id"`
	StartedAt time.Time     `json:"started_at"`
	Length    time.Duration `json:"length"`
	FinalMode string        `json:"final_mode"`

	Flights []FlightResult  `json:"flights"`
	Hotels  []HotelResult   `json:"hotels"`
	Clients []ClientOutcome `json:"clients"`

	Transactions int     `json:"transactions"`
	Spent        float64 `json:"spent"`
	Earned       float64 `json:"earned"`
	Losses       int     `json:"losses"`
	Repairs      int     `json:"repairs"`
}

// HotelWinRatio is the share of hotel auctions where every wanted room was won.
func (r *GameReport) HotelWinRatio() float64 {
	if len(r.Hotels) == 0 {
		return 0
	}
	won := 0
	for _, h := range r.Hotels {
		if h.Won() {
			won++
		}
	}
	return float64(won) / float64(len(r.Hotels))
}

// Count returns the number of clients with the given outcome.
func (r *GameReport) Count(o Outcome) int {
	n := 0
	for _, c := range r.Clients {
		if c.Outcome == o {
			n++
		}
	}
	return n
}
