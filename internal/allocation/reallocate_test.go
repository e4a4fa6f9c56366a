package allocation

import (
	"slices"
	"testing"
	"time"

	"TripBroker/internal/model"
)

func openQuote(id model.AuctionID) model.Quote {
	return model.Quote{Auction: id, Ask: 50, Status: model.QuoteOpen}
}

func TestReallocateHotelShiftsBoundary(t *testing.T) {
	tests := []struct {
		name        string
		closed      int
		open        []int
		wantArrival int
		wantDepart  int
		wantAlloc   [4]int
	}{
		{"first night, next night open", 1, []int{2, 3}, 2, 4, [4]int{0, 1, 1, 0}},
		{"first night, skip to third", 1, []int{3}, 3, 4, [4]int{0, 0, 1, 0}},
		{"last night", 3, []int{1, 2}, 1, 3, [4]int{1, 1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGame(model.Client{Arrival: 1, Departure: 4, HotelValue: 10})
			a := New(nil, TieTypeOrder)
			a.SetHotelAllocations(g)
			for _, n := range tt.open {
				g.SetQuote(openQuote(cheap(n)))
			}
			g.SetQuote(model.Quote{Auction: cheap(tt.closed), Status: model.QuoteClosed})

			res := a.ReallocateHotel(g, cheap(tt.closed), 4*time.Minute)
			if !slices.Equal(res.Shifted, []int{0}) || res.Lost != 0 {
				t.Fatalf("result = %+v", res)
			}
			c := g.Clients[0]
			if c.Arrival != tt.wantArrival || c.Departure != tt.wantDepart {
				t.Errorf("stay = %d-%d, want %d-%d", c.Arrival, c.Departure, tt.wantArrival, tt.wantDepart)
			}
			for n := 1; n <= 4; n++ {
				if got := g.Auction(cheap(n)).Allocation; got != tt.wantAlloc[n-1] {
					t.Errorf("night %d allocation = %d, want %d", n, got, tt.wantAlloc[n-1])
				}
			}
			if len(g.Repairs) != 1 || g.Repairs[0].Cause != "hotel closed" {
				t.Errorf("repairs = %+v", g.Repairs)
			}
		})
	}
}

func TestReallocateHotelLosesWhenNothingOpen(t *testing.T) {
	g := newGame(model.Client{Arrival: 1, Departure: 4, HotelValue: 10})
	a := New(nil, TieTypeOrder)
	a.SetHotelAllocations(g)

	res := a.ReallocateHotel(g, cheap(1), 4*time.Minute)
	if res.Lost != 1 || len(res.Shifted) != 0 {
		t.Fatalf("result = %+v", res)
	}
	if got := g.Auction(cheap(1)).Allocation; got != 0 {
		t.Errorf("closed auction allocation = %d, want 0", got)
	}
	if len(g.Losses) != 1 || g.Losses[0].Auction != cheap(1) {
		t.Errorf("losses = %+v", g.Losses)
	}
	if c := g.Clients[0]; c.Arrival != 1 || c.Departure != 4 {
		t.Errorf("stay changed to %d-%d", c.Arrival, c.Departure)
	}
}

func TestReallocateHotelMiddleNight(t *testing.T) {
	g := newGame(model.Client{Arrival: 1, Departure: 4, HotelValue: 10})
	a := New(nil, TieTypeOrder)
	a.SetHotelAllocations(g)
	g.SetQuote(openQuote(cheap(3)))

	res := a.ReallocateHotel(g, cheap(2), 4*time.Minute)
	if res.Lost != 1 || len(res.Shifted) != 0 {
		t.Fatalf("result = %+v", res)
	}
	if len(g.Losses) != 1 || g.Losses[0].Reason != "middle night closed unfilled" {
		t.Errorf("losses = %+v", g.Losses)
	}
}

func TestReallocateHotelUnmatchedUnitsAreCleared(t *testing.T) {
	g := newGame(model.Client{Arrival: 1, Departure: 2, HotelValue: 10})
	g.Auction(cheap(4)).Allocation = 2

	res := New(nil, TieTypeOrder).ReallocateHotel(g, cheap(4), time.Minute)
	if res.Lost != 2 {
		t.Errorf("lost = %d, want 2", res.Lost)
	}
	if got := g.Auction(cheap(4)).Allocation; got != 0 {
		t.Errorf("allocation = %d, want 0", got)
	}
}

func TestReallocateHotelIgnoresOtherTier(t *testing.T) {
	g := newGame(
		model.Client{Arrival: 1, Departure: 3, HotelValue: 100},
		model.Client{Arrival: 1, Departure: 3, HotelValue: 10},
	)
	a := New(nil, TieTypeOrder)
	a.SetHotelAllocations(g)
	g.SetQuote(openQuote(cheap(2)))
	g.SetQuote(openQuote(model.MustHotel(model.GoodHotel, 2)))

	res := a.ReallocateHotel(g, cheap(1), time.Minute)
	if !slices.Equal(res.Shifted, []int{1}) {
		t.Errorf("shifted = %v, want [1]", res.Shifted)
	}
	if c := g.Clients[0]; c.Arrival != 1 {
		t.Errorf("good-tier client reshaped to arrival %d", c.Arrival)
	}
}
