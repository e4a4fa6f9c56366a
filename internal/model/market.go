package model

import "time"

// QuoteStatus is the lifecycle state of an auction as reported by the market.
type QuoteStatus int

const (
	QuoteInitializing QuoteStatus = iota
	QuoteOpen
	QuoteClosed
)

func (s QuoteStatus) String() string {
	switch s {
	case QuoteOpen:
		return "open"
	case QuoteClosed:
		return "closed"
	default:
		return "initializing"
	}
}

// Quote is a snapshot of one auction's prices and status.
type Quote struct {
	Auction AuctionID   `json:"auction"`
	Ask     float64     `json:"ask"`
	Bid     float64     `json:"bid"` // entertainment only
	Status  QuoteStatus `json:"status"`
}

// Open reports whether the auction accepts bids.
func (q Quote) Open() bool { return q.Status == QuoteOpen }

// Closed reports whether the auction has cleared for good.
func (q Quote) Closed() bool { return q.Status == QuoteClosed }

// PricePoint is one observed sample of an auction's prices.
type PricePoint struct {
	Ask     float64       `json:"ask"`
	Bid     float64       `json:"bid,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

// Seconds returns the elapsed game time of the sample in seconds.
func (p PricePoint) Seconds() float64 { return p.Elapsed.Seconds() }

// Asks extracts the ask series of a history.
func Asks(points []PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Ask
	}
	return out
}
