package bidding

import (
	"testing"
	"time"

	"TripBroker/internal/model"
	"TripBroker/internal/state"
)

func flightGame(samples int, step float64) (*state.Game, model.AuctionID) {
	g := state.New()
	id := model.MustFlight(model.Inbound, 2)
	for i := 0; i < samples; i++ {
		g.RecordQuote(model.Quote{Auction: id, Ask: 300 + step*float64(i), Status: model.QuoteOpen}, time.Duration(i)*10*time.Second)
	}
	g.Auction(id).Allocation = 2
	return g, id
}

func TestFlightDeadline(t *testing.T) {
	f := NewFlight(nil, DefaultFlightPolicy())
	tests := []struct {
		elapsed, left time.Duration
		want          bool
	}{
		{0, 9 * time.Minute, true},
		{119 * time.Second, 7 * time.Minute, true},
		{2 * time.Minute, 7 * time.Minute, false},
		{8 * time.Minute, 11 * time.Second, false},
		{8*time.Minute + 50*time.Second, 10 * time.Second, true},
	}
	for _, tt := range tests {
		if got := f.Deadline(tt.elapsed, tt.left); got != tt.want {
			t.Errorf("Deadline(%v, %v) = %v, want %v", tt.elapsed, tt.left, got, tt.want)
		}
	}
}

func TestFlightProcess(t *testing.T) {
	tests := []struct {
		name    string
		samples int
		step    float64
		elapsed time.Duration
		wantBid bool
	}{
		{"deadline buys a falling price", 20, -2, 30 * time.Second, true},
		{"rising price bought now", 20, 2, 4 * time.Minute, true},
		{"falling price waits", 20, -2, 4 * time.Minute, false},
		{"single sample buys", 1, 0, 4 * time.Minute, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, id := flightGame(tt.samples, tt.step)
			ask := g.Auction(id).Quote.Ask

			got := NewFlight(nil, DefaultFlightPolicy()).Process(g, tt.elapsed, 9*time.Minute-tt.elapsed)
			if !tt.wantBid {
				if len(got) != 0 || g.Auction(id).Allocation != 2 {
					t.Fatalf("actions = %v, allocation = %d", got, g.Auction(id).Allocation)
				}
				return
			}
			if len(got) != 1 {
				t.Fatalf("actions = %v, want one", got)
			}
			if got[0].Kind != Submit || got[0].Order.Quantity != 2 || got[0].Order.Price != ask {
				t.Errorf("action = %v", got[0])
			}
			if a := g.Auction(id); a.Allocation != 0 || a.LastBuyPrice != ask {
				t.Errorf("allocation = %d, last = %v", a.Allocation, a.LastBuyPrice)
			}
		})
	}
}

func TestFlightRollback(t *testing.T) {
	g, id := flightGame(3, 1)
	acts := NewFlight(nil, DefaultFlightPolicy()).Process(g, 0, 9*time.Minute)
	if len(acts) != 1 {
		t.Fatalf("actions = %v", acts)
	}
	Rollback(g, acts[0])
	a := g.Auction(id)
	if a.Allocation != 2 || a.Buy != nil || a.LastBuyPrice != 0 {
		t.Errorf("rollback left allocation=%d buy=%+v last=%v", a.Allocation, a.Buy, a.LastBuyPrice)
	}
}

func TestTrack(t *testing.T) {
	g := state.New()
	id := cheap(1)
	g.Auction(id).Buy = &state.BidRecord{ID: "b7", State: model.BidPending}

	rec := Track(g, model.BidUpdate{ID: "b7", Auction: id, State: model.BidRejected, Reason: model.RejectPriceNotBeaten})
	if rec == nil || rec.State != model.BidRejected || rec.Reason != model.RejectPriceNotBeaten {
		t.Errorf("tracked record = %+v", rec)
	}
	if Track(g, model.BidUpdate{ID: "other", Auction: id, State: model.BidValid}) != nil {
		t.Error("unknown bid id matched")
	}
	if Track(g, model.BidUpdate{ID: "b7", Auction: -1}) != nil {
		t.Error("invalid auction matched")
	}
}
