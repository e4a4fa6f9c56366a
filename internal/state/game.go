// Package state holds everything the agent knows about one running game.
//
// A Game is owned by the engine goroutine; nothing in this package locks.
package state

import (
	"slices"
	"time"

	"TripBroker/internal/demand"
	"TripBroker/internal/model"
)

// HotelMode is the game-wide hotel bidding urgency.
type HotelMode int

const (
	HotelNormal HotelMode = iota
	HotelFinal
)

func (m HotelMode) String() string {
	if m == HotelFinal {
		return "final"
	}
	return "normal"
}

// Holdings reports units acquired through cleared bids. It is satisfied by
// the market connection.
type Holdings interface {
	Own(id model.AuctionID) int
}

// BidRecord is the agent's view of its single active bid on one side of an auction.
type BidRecord struct {
	ID       string             `json:"id"`
	Price    float64            `json:"price"`
	Quantity int                `json:"quantity"`
	State    model.BidState     `json:"state"`
	Reason   model.RejectReason `json:"reason,omitempty"`
	// Filled counts units already credited from this bid's updates.
	Filled int `json:"filled"`
}

// Auction is the per-auction record of the arena.
type Auction struct {
	model.Auction
	Quote   model.Quote        `json:"quote"`
	History []model.PricePoint `json:"history"`

	// Allocation is the number of units still wanted (positive) that no
	// submitted bid covers yet.
	Allocation    int        `json:"allocation"`
	LastBuyPrice  float64    `json:"last_buy_price"`
	LastSellPrice float64    `json:"last_sell_price"`
	Buy           *BidRecord `json:"buy,omitempty"`
	Sell          *BidRecord `json:"sell,omitempty"`

	// Entertainment bookkeeping.
	Outstanding     int `json:"outstanding"`
	SellPending     int `json:"sell_pending"`
	SellOutstanding int `json:"sell_outstanding"`
	// Reserved units are earmarked for sale and hidden from allocation.
	Reserved int `json:"reserved"`
}

// HotelClosure records how a hotel auction ended for the agent.
type HotelClosure struct {
	Auction    model.AuctionID `json:"auction"`
	Allocation int             `json:"allocation"`
	Own        int             `json:"own"`
	BidPrice   float64         `json:"bid_price"`
	AskPrice   float64         `json:"ask_price"`
	At         time.Duration   `json:"at"`
}

// Loss records a client (or one night of a client) the agent gave up on.
type Loss struct {
	Client  int             `json:"client"`
	Auction model.AuctionID `json:"auction"` // -1 when the whole client is lost
	Reason  string          `json:"reason"`
	At      time.Duration   `json:"at"`
}

// Repair records a stay shrunk to keep a package feasible.
type Repair struct {
	Client        int           `json:"client"`
	FromArrival   int           `json:"from_arrival"`
	FromDeparture int           `json:"from_departure"`
	ToArrival     int           `json:"to_arrival"`
	ToDeparture   int           `json:"to_departure"`
	Cause         string        `json:"cause"`
	At            time.Duration `json:"at"`
}

// Game is the arena of auctions plus the client and mode state of one game.
type Game struct {
	Auctions [model.NumAuctions]*Auction
	Clients  []model.Client
	// Initial keeps the preferences as delivered at game start.
	Initial []model.Client

	HotelMode   HotelMode
	Demand      demand.Estimate
	DemandReady bool

	closed   []model.AuctionID
	isClosed [model.NumAuctions]bool
	Closures []HotelClosure

	// ClientEntertainment lists, per client, the ticket auctions chosen for
	// its nights at game start.
	ClientEntertainment [][]model.AuctionID
	InitialHotel        [model.NumHotels]int
	EntertainmentReady  bool
	HotelWatchStopped   bool

	Losses  []Loss
	Repairs []Repair
	dropped []bool

	Started bool
	Stopped bool
}

// New creates an empty arena.
func New() *Game {
	g := &Game{}
	for id := model.AuctionID(0); id < model.NumAuctions; id++ {
		g.Auctions[id] = &Auction{
			Auction: model.Lookup(id),
			Quote:   model.Quote{Auction: id},
		}
	}
	return g
}

// Start resets the arena for a new game with the given clients.
func (g *Game) Start(clients []model.Client) {
	*g = *New()
	g.Clients = slices.Clone(clients)
	g.Initial = slices.Clone(clients)
	g.ClientEntertainment = make([][]model.AuctionID, len(clients))
	g.dropped = make([]bool, len(clients))
	g.Started = true
}

// Auction returns the record for id.
func (g *Game) Auction(id model.AuctionID) *Auction { return g.Auctions[id] }

// Category returns the records of one category in id order.
func (g *Game) Category(c model.Category) []*Auction {
	ids := model.Auctions(c)
	out := make([]*Auction, len(ids))
	for i, id := range ids {
		out[i] = g.Auctions[id]
	}
	return out
}

// SetQuote stores the latest quote without touching the price history.
func (g *Game) SetQuote(q model.Quote) {
	if !q.Auction.Valid() {
		return
	}
	g.Auctions[q.Auction].Quote = q
}

// RecordQuote stores the quote and appends a price sample.
func (g *Game) RecordQuote(q model.Quote, at time.Duration) {
	if !q.Auction.Valid() {
		return
	}
	a := g.Auctions[q.Auction]
	a.Quote = q
	a.History = append(a.History, model.PricePoint{Ask: q.Ask, Bid: q.Bid, Elapsed: at})
}

// MarkHotelClosed records a hotel closure. It reports false when the
// auction was already marked, so closure handling runs once.
func (g *Game) MarkHotelClosed(id model.AuctionID) bool {
	if !id.Valid() || g.isClosed[id] {
		return false
	}
	g.isClosed[id] = true
	g.closed = append(g.closed, id)
	return true
}

// HotelClosed reports whether a closure was processed for id.
func (g *Game) HotelClosed(id model.AuctionID) bool { return id.Valid() && g.isClosed[id] }

// ClosedHotels returns the closed hotel auctions in closing order.
func (g *Game) ClosedHotels() []model.AuctionID { return slices.Clone(g.closed) }

// AllHotelsClosed reports whether every hotel auction has closed.
func (g *Game) AllHotelsClosed() bool { return len(g.closed) >= model.NumHotels }

// Available returns the units of id the agent owns and may assign to
// clients: owned units minus those reserved for sale.
func (g *Game) Available(h Holdings, id model.AuctionID) int {
	n := h.Own(id) - g.Auctions[id].Reserved
	if n < 0 {
		return 0
	}
	return n
}

// FlightPrices returns the ask series of a flight auction.
func (g *Game) FlightPrices(id model.AuctionID) []float64 {
	return model.Asks(g.Auctions[id].History)
}

// AddLoss records a permanent utility loss.
func (g *Game) AddLoss(l Loss) { g.Losses = append(g.Losses, l) }

// Drop gives up on a client for the rest of the game.
func (g *Game) Drop(client int, reason string, at time.Duration) {
	if g.Dropped(client) {
		return
	}
	g.dropped[client] = true
	g.AddLoss(Loss{Client: client, Auction: -1, Reason: reason, At: at})
}

// Dropped reports whether the client was given up on.
func (g *Game) Dropped(client int) bool {
	return client >= 0 && client < len(g.dropped) && g.dropped[client]
}

// Reshape rewrites a client's stay window and records the repair.
func (g *Game) Reshape(client, arrival, departure int, cause string, at time.Duration) {
	c := &g.Clients[client]
	if c.Arrival == arrival && c.Departure == departure {
		return
	}
	g.Repairs = append(g.Repairs, Repair{
		Client:        client,
		FromArrival:   c.Arrival,
		FromDeparture: c.Departure,
		ToArrival:     arrival,
		ToDeparture:   departure,
		Cause:         cause,
		At:            at,
	})
	c.Arrival = arrival
	c.Departure = departure
}
