package bidding

import (
	"testing"

	"TripBroker/internal/model"
	"TripBroker/internal/state"
)

func ticketGame(ask float64) (*state.Game, model.AuctionID) {
	g := state.New()
	id, _ := model.EntertainmentAuction(model.Museum, 2)
	g.SetQuote(model.Quote{Auction: id, Ask: ask, Bid: ask - 5, Status: model.QuoteOpen})
	return g, id
}

func TestEntertainmentMargin(t *testing.T) {
	tests := []struct {
		last float64
		want int
	}{
		{0, 2},
		{0.5, 2},
		{1, 2},
		{40, 41},
		{40.9, 41},
	}
	for _, tt := range tests {
		if got := Margin(&state.Auction{LastBuyPrice: tt.last}); got != tt.want {
			t.Errorf("Margin(last=%v) = %d, want %d", tt.last, got, tt.want)
		}
	}
}

func TestEntertainmentBuy(t *testing.T) {
	e := NewEntertainment(nil, DefaultEntertainmentPolicy())
	g, id := ticketGame(50)
	a := g.Auction(id)
	a.Allocation = 1

	acts := e.Process(g, id)
	if len(acts) != 1 || acts[0].Kind != Submit || acts[0].Order.Quantity != 1 || acts[0].Order.Price != 52 {
		t.Fatalf("first buy = %v", acts)
	}
	if a.Allocation != 0 || a.Outstanding != 1 || a.LastBuyPrice != 52 {
		t.Fatalf("after submit: allocation=%d outstanding=%d last=%v", a.Allocation, a.Outstanding, a.LastBuyPrice)
	}
	a.Buy.ID = "t1"

	// Outstanding bid is re-priced with the ratchet margin.
	acts = e.Process(g, id)
	if len(acts) != 1 || acts[0].Kind != Replace || acts[0].BidID != "t1" || acts[0].Order.Price != 103 {
		t.Fatalf("re-price = %v", acts)
	}

	// New allocation is folded into the live bid.
	a.Allocation = 2
	acts = e.Process(g, id)
	if len(acts) != 1 || acts[0].Kind != Replace || acts[0].Order.Quantity != 3 {
		t.Fatalf("fold = %v", acts)
	}
	if a.Outstanding != 3 || a.Allocation != 0 {
		t.Errorf("outstanding=%d allocation=%d", a.Outstanding, a.Allocation)
	}
}

func TestEntertainmentBuySkipsExpensiveAsk(t *testing.T) {
	e := NewEntertainment(nil, DefaultEntertainmentPolicy())
	g, id := ticketGame(81)
	g.Auction(id).Allocation = 1
	if acts := e.Process(g, id); acts != nil {
		t.Errorf("bid above ceiling: %v", acts)
	}
	if g.Auction(id).Allocation != 1 {
		t.Error("allocation consumed without a bid")
	}
}

func TestEntertainmentSellLadder(t *testing.T) {
	p := DefaultEntertainmentPolicy()
	e := NewEntertainment(nil, p)
	g, id := ticketGame(50)
	a := g.Auction(id)
	a.SellPending = 2
	a.Reserved = 2

	acts := e.Sell(g)
	if len(acts) != 1 || acts[0].Kind != Submit || acts[0].Order.Quantity != -2 || acts[0].Order.Price != p.SellStart {
		t.Fatalf("offer = %v", acts)
	}
	if a.SellPending != 0 || a.SellOutstanding != 2 {
		t.Fatalf("pending=%d outstanding=%d", a.SellPending, a.SellOutstanding)
	}
	a.Sell.ID = "s1"

	prices := []float64{}
	for i := 0; i < 100; i++ {
		for _, act := range e.Sell(g) {
			if act.Kind != Replace || act.BidID != "s1" || act.Order.Quantity != -2 {
				t.Fatalf("ladder step = %v", act)
			}
			prices = append(prices, act.Order.Price)
		}
	}
	if len(prices) != 70 {
		t.Fatalf("ladder steps = %d, want 70", len(prices))
	}
	if prices[0] != 198 || prices[len(prices)-1] != p.SellFloor {
		t.Errorf("ladder runs %v..%v", prices[0], prices[len(prices)-1])
	}
}

func TestEntertainmentApplyUpdate(t *testing.T) {
	e := NewEntertainment(nil, DefaultEntertainmentPolicy())
	g, id := ticketGame(50)
	a := g.Auction(id)
	a.Outstanding = 3
	a.Buy = &state.BidRecord{ID: "t1", Quantity: 3, State: model.BidPending}
	a.SellOutstanding = 2
	a.Reserved = 2
	a.Sell = &state.BidRecord{ID: "s1", Quantity: -2, State: model.BidPending}

	if n := e.ApplyUpdate(g, model.BidUpdate{ID: "t1", Auction: id, Quantity: 3, Unfilled: 1, State: model.BidValid}); n != 2 {
		t.Errorf("first buy update credited %d", n)
	}
	// the same report again credits nothing
	if n := e.ApplyUpdate(g, model.BidUpdate{ID: "t1", Auction: id, Quantity: 3, Unfilled: 1, State: model.BidValid}); n != 0 {
		t.Errorf("repeated update credited %d", n)
	}
	if a.Outstanding != 1 {
		t.Errorf("outstanding = %d, want 1", a.Outstanding)
	}

	if n := e.ApplyUpdate(g, model.BidUpdate{ID: "s1", Auction: id, Quantity: -2, Unfilled: 0, State: model.BidValid}); n != 2 {
		t.Errorf("sell update credited %d", n)
	}
	if a.SellOutstanding != 0 || a.Reserved != 0 {
		t.Errorf("sell_outstanding=%d reserved=%d", a.SellOutstanding, a.Reserved)
	}

	if n := e.ApplyUpdate(g, model.BidUpdate{ID: "stale", Auction: id, Quantity: 3, State: model.BidValid}); n != 0 {
		t.Errorf("stale bid credited %d", n)
	}
}

func TestEntertainmentRollback(t *testing.T) {
	e := NewEntertainment(nil, DefaultEntertainmentPolicy())
	g, id := ticketGame(50)
	a := g.Auction(id)
	a.Allocation = 2
	a.SellPending = 1

	for _, act := range append(e.Process(g, id), e.Sell(g)...) {
		Rollback(g, act)
	}
	if a.Allocation != 2 || a.Outstanding != 0 || a.Buy != nil || a.LastBuyPrice != 0 {
		t.Errorf("buy rollback: allocation=%d outstanding=%d buy=%+v", a.Allocation, a.Outstanding, a.Buy)
	}
	if a.SellPending != 1 || a.SellOutstanding != 0 || a.Sell != nil {
		t.Errorf("sell rollback: pending=%d outstanding=%d sell=%+v", a.SellPending, a.SellOutstanding, a.Sell)
	}
}
