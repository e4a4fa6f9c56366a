package allocation

import (
	"testing"
	"time"

	"TripBroker/internal/model"
	"TripBroker/internal/state"
)

type holdings map[model.AuctionID]int

func (h holdings) Own(id model.AuctionID) int { return h[id] }

func newGame(clients ...model.Client) *state.Game {
	for i := range clients {
		clients[i].ID = i
		if clients[i].Fun == [3]int{} {
			clients[i].Fun = [3]int{30, 20, 10}
		}
	}
	g := state.New()
	g.Start(clients)
	return g
}

func cheap(n int) model.AuctionID { return model.MustHotel(model.CheapHotel, n) }
func in(d int) model.AuctionID    { return model.MustFlight(model.Inbound, d) }
func out(d int) model.AuctionID   { return model.MustFlight(model.Outbound, d) }

func flightUnits(g *state.Game) int {
	total := 0
	for _, a := range g.Category(model.CategoryFlight) {
		total += a.Allocation
	}
	return total
}

func TestSetHotelAllocations(t *testing.T) {
	g := newGame(
		model.Client{Arrival: 1, Departure: 4, HotelValue: 50},
		model.Client{Arrival: 2, Departure: 3, HotelValue: 120},
	)
	New(nil, TieTypeOrder).SetHotelAllocations(g)

	for n := 1; n <= 3; n++ {
		if got := g.Auction(cheap(n)).Allocation; got != 1 {
			t.Errorf("cheap night %d allocation = %d, want 1", n, got)
		}
	}
	if got := g.Auction(cheap(4)).Allocation; got != 0 {
		t.Errorf("cheap night 4 allocation = %d, want 0", got)
	}
	if got := g.Auction(model.MustHotel(model.GoodHotel, 2)).Allocation; got != 1 {
		t.Errorf("good night 2 allocation = %d, want 1", got)
	}
	if g.InitialHotel[0] != 1 || g.InitialHotel[5] != 1 {
		t.Errorf("initial hotel allocations = %v", g.InitialHotel)
	}
}

func TestEndToEndAllNightsOwned(t *testing.T) {
	g := newGame(
		model.Client{Arrival: 1, Departure: 2, HotelValue: 40},
		model.Client{Arrival: 1, Departure: 5, HotelValue: 90},
		model.Client{Arrival: 2, Departure: 4, HotelValue: 60},
		model.Client{Arrival: 3, Departure: 5, HotelValue: 100},
		model.Client{Arrival: 2, Departure: 3, HotelValue: 75},
		model.Client{Arrival: 1, Departure: 3, HotelValue: 20},
		model.Client{Arrival: 4, Departure: 5, HotelValue: 65},
		model.Client{Arrival: 3, Departure: 4, HotelValue: 110},
	)
	a := New(nil, TieTypeOrder)
	a.SetHotelAllocations(g)

	h := holdings{}
	for _, id := range model.Auctions(model.CategoryHotel) {
		h[id] = g.Auction(id).Allocation
	}

	if got := a.FlightNormalPass(g, h); got != 16 {
		t.Fatalf("FlightNormalPass added %d units, want 16", got)
	}
	if got := flightUnits(g); got != 16 {
		t.Errorf("flight allocation total = %d, want 16", got)
	}
	for _, c := range g.Clients {
		if g.Auction(in(c.Arrival)).Allocation == 0 || g.Auction(out(c.Departure)).Allocation == 0 {
			t.Errorf("client %d missing a boundary flight", c.ID)
		}
	}
	if len(g.Repairs) != 0 || len(g.Losses) != 0 {
		t.Errorf("unexpected repairs %v or losses %v", g.Repairs, g.Losses)
	}

	// A second pass sees the allocations and adds nothing.
	if got := a.FlightNormalPass(g, h); got != 0 {
		t.Errorf("second pass added %d units", got)
	}
}

func TestFlightNormalPassAnchors(t *testing.T) {
	tests := []struct {
		name     string
		own      holdings
		wantIn   int
		wantOut  int
		wantNone bool
	}{
		{"first night only", holdings{cheap(1): 1}, 1, 0, false},
		{"last night only", holdings{cheap(3): 1}, 0, 1, false},
		{"no boundary", holdings{cheap(2): 1}, 0, 0, true},
		{"complete", holdings{cheap(1): 1, cheap(2): 1, cheap(3): 1}, 1, 1, false},
		{"inbound already owned", holdings{cheap(1): 1, in(1): 1}, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGame(model.Client{Arrival: 1, Departure: 4, HotelValue: 10})
			n := New(nil, TieTypeOrder).FlightNormalPass(g, tt.own)
			if tt.wantNone && n != 0 {
				t.Errorf("added %d units, want none", n)
			}
			if got := g.Auction(in(1)).Allocation; got != tt.wantIn {
				t.Errorf("inbound allocation = %d, want %d", got, tt.wantIn)
			}
			if got := g.Auction(out(4)).Allocation; got != tt.wantOut {
				t.Errorf("outbound allocation = %d, want %d", got, tt.wantOut)
			}
		})
	}
}

func TestFlightNormalPassSplitStayUsesForecast(t *testing.T) {
	g := newGame(model.Client{Arrival: 1, Departure: 4, HotelValue: 10})
	for i := 0; i < 5; i++ {
		at := time.Duration(i) * 10 * time.Second
		// inbound is rising (buy now), outbound is falling (wait)
		g.RecordQuote(model.Quote{Auction: in(1), Ask: 300 + 10*float64(i), Status: model.QuoteOpen}, at)
		g.RecordQuote(model.Quote{Auction: out(4), Ask: 250 - 10*float64(i), Status: model.QuoteOpen}, at)
	}
	own := holdings{cheap(1): 1, cheap(3): 1}

	if n := New(nil, TieTypeOrder).FlightNormalPass(g, own); n != 1 {
		t.Fatalf("added %d units, want 1", n)
	}
	if g.Auction(in(1)).Allocation != 1 || g.Auction(out(4)).Allocation != 0 {
		t.Errorf("expected the inbound flight to be chosen")
	}
}

func TestFlightNormalPassSplitStayCheaperWhenForecastsAgree(t *testing.T) {
	g := newGame(model.Client{Arrival: 1, Departure: 4, HotelValue: 10})
	// single samples: no forecast for either side
	g.RecordQuote(model.Quote{Auction: in(1), Ask: 380, Status: model.QuoteOpen}, 0)
	g.RecordQuote(model.Quote{Auction: out(4), Ask: 290, Status: model.QuoteOpen}, 0)

	New(nil, TieTypeOrder).FlightNormalPass(g, holdings{cheap(1): 1, cheap(3): 1})
	if g.Auction(in(1)).Allocation != 0 || g.Auction(out(4)).Allocation != 1 {
		t.Errorf("expected the cheaper outbound flight to be chosen")
	}
}

func TestFlightFinalPassTier1(t *testing.T) {
	g := newGame(model.Client{Arrival: 1, Departure: 4, HotelValue: 10})
	own := holdings{cheap(1): 1, cheap(2): 1, cheap(3): 1}

	if n := New(nil, TieTypeOrder).FlightFinalPass(g, own, 8*time.Minute); n != 2 {
		t.Fatalf("added %d units, want 2", n)
	}
	if g.Auction(in(1)).Allocation != 1 || g.Auction(out(4)).Allocation != 1 {
		t.Error("expected inbound day 1 and outbound day 4")
	}
	if len(g.Repairs) != 0 {
		t.Errorf("complete stay should not be reshaped: %v", g.Repairs)
	}
}

func TestFlightFinalPassTier2(t *testing.T) {
	tests := []struct {
		name         string
		own          holdings
		wantArrival  int
		wantDeparture int
	}{
		{"anchored on first night", holdings{cheap(1): 1, cheap(2): 1, cheap(4): 1}, 1, 3},
		{"anchored on last night", holdings{cheap(3): 1, cheap(4): 1}, 3, 5},
		{"both anchors prefer first", holdings{cheap(1): 1, cheap(3): 1, cheap(4): 1}, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGame(model.Client{Arrival: 1, Departure: 5, HotelValue: 10})
			if n := New(nil, TieTypeOrder).FlightFinalPass(g, tt.own, 8*time.Minute); n != 2 {
				t.Fatalf("added %d units, want 2", n)
			}
			c := g.Clients[0]
			if c.Arrival != tt.wantArrival || c.Departure != tt.wantDeparture {
				t.Errorf("stay = %d-%d, want %d-%d", c.Arrival, c.Departure, tt.wantArrival, tt.wantDeparture)
			}
			if g.Auction(in(tt.wantArrival)).Allocation != 1 || g.Auction(out(tt.wantDeparture)).Allocation != 1 {
				t.Error("flights do not match the shortened stay")
			}
		})
	}
}

func TestFlightFinalPassTier3SingleInnerNight(t *testing.T) {
	g := newGame(model.Client{Arrival: 1, Departure: 5, HotelValue: 10})

	if n := New(nil, TieTypeOrder).FlightFinalPass(g, holdings{cheap(3): 1}, 8*time.Minute); n != 2 {
		t.Fatalf("added %d units, want 2", n)
	}
	if g.Auction(in(3)).Allocation != 1 || g.Auction(out(4)).Allocation != 1 {
		t.Error("expected inbound day 3 and outbound day 4")
	}
	c := g.Clients[0]
	if c.Arrival != 3 || c.Departure != 4 {
		t.Errorf("stay = %d-%d, want 3-4", c.Arrival, c.Departure)
	}
	if len(g.Repairs) != 1 {
		t.Errorf("repairs = %d, want 1", len(g.Repairs))
	}
}

func TestFlightFinalPassDropsClientWithoutRooms(t *testing.T) {
	g := newGame(
		model.Client{Arrival: 1, Departure: 3, HotelValue: 10},
		model.Client{Arrival: 2, Departure: 3, HotelValue: 10},
	)
	a := New(nil, TieTypeOrder)
	// The single night 2 room completes client 1 in the first tier, which
	// leaves client 0 with nothing.
	n := a.FlightFinalPass(g, holdings{cheap(2): 1}, 8*time.Minute)
	if n != 2 {
		t.Fatalf("added %d units, want 2", n)
	}
	if !g.Dropped(0) || g.Dropped(1) {
		t.Errorf("dropped = [%v %v], want [true false]", g.Dropped(0), g.Dropped(1))
	}
	if len(g.Losses) != 1 || g.Losses[0].Client != 0 || g.Losses[0].Auction != -1 {
		t.Errorf("losses = %+v", g.Losses)
	}

	// Running again does not drop twice.
	a.FlightFinalPass(g, holdings{cheap(2): 1}, 8*time.Minute)
	if len(g.Losses) != 1 {
		t.Errorf("losses after rerun = %d", len(g.Losses))
	}
}

func TestFlightFinalPassRewritesTheMatchedClient(t *testing.T) {
	// Client 0 completes in tier 1 and is removed from the list; client 1 is
	// then reshaped. Only client 1's window may change.
	g := newGame(
		model.Client{Arrival: 1, Departure: 2, HotelValue: 10},
		model.Client{Arrival: 2, Departure: 5, HotelValue: 10},
	)
	New(nil, TieTypeOrder).FlightFinalPass(g, holdings{cheap(1): 1, cheap(2): 1}, 8*time.Minute)

	if c := g.Clients[0]; c.Arrival != 1 || c.Departure != 2 {
		t.Errorf("client 0 changed to %d-%d", c.Arrival, c.Departure)
	}
	if c := g.Clients[1]; c.Arrival != 2 || c.Departure != 3 {
		t.Errorf("client 1 = %d-%d, want 2-3", c.Arrival, c.Departure)
	}
}
