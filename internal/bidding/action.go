// Package bidding turns allocation targets and quotes into bid actions.
//
// Bidders only mutate the game state and return the orders to send; the
// engine executes them against the market and calls Rollback when a submit
// fails.
package bidding

import (
	"fmt"

	"TripBroker/internal/model"
	"TripBroker/internal/state"
)

// ActionKind says how an order reaches the market.
type ActionKind int

const (
	// Submit places a new bid.
	Submit ActionKind = iota
	// Replace swaps the order of an existing bid, keeping its id.
	Replace
)

func (k ActionKind) String() string {
	if k == Replace {
		return "replace"
	}
	return "submit"
}

// Action is one order for the engine to execute.
type Action struct {
	Kind  ActionKind
	Order model.Order
	// BidID is the bid being replaced.
	BidID string
	// Previous is the last bid price before this action, restored on rollback.
	Previous float64
}

func (a Action) String() string {
	return fmt.Sprintf("%s %s qty=%d price=%.2f", a.Kind, a.Order.Auction, a.Order.Quantity, a.Order.Price)
}

// Record returns the bid record an action belongs to.
func Record(g *state.Game, a Action) *state.BidRecord {
	rec := g.Auction(a.Order.Auction)
	if a.Order.Sell() {
		return rec.Sell
	}
	return rec.Buy
}

// Rollback undoes the bookkeeping of a submit the market did not accept, so
// the next cycle bids for the same units again. Failed replaces leave the
// previous bid in place and need no rollback.
func Rollback(g *state.Game, a Action) {
	if a.Kind != Submit {
		return
	}
	rec := g.Auction(a.Order.Auction)
	qty := a.Order.Quantity
	switch rec.Category {
	case model.CategoryFlight:
		rec.Allocation += qty
		rec.Buy = nil
		rec.LastBuyPrice = a.Previous
	case model.CategoryHotel:
		rec.Buy = nil
		rec.LastBuyPrice = a.Previous
	case model.CategoryEntertainment:
		if a.Order.Sell() {
			rec.Sell = nil
			rec.SellPending -= qty
			rec.SellOutstanding = max(rec.SellOutstanding+qty, 0)
			rec.LastSellPrice = a.Previous
			return
		}
		rec.Buy = nil
		rec.Allocation += qty
		rec.Outstanding = max(rec.Outstanding-qty, 0)
		rec.LastBuyPrice = a.Previous
	}
}

// Track copies the market's view of a bid onto the matching record. It
// returns nil when the update is for a bid the agent no longer follows.
func Track(g *state.Game, u model.BidUpdate) *state.BidRecord {
	if !u.Auction.Valid() {
		return nil
	}
	a := g.Auction(u.Auction)
	for _, rec := range []*state.BidRecord{a.Buy, a.Sell} {
		if rec != nil && rec.ID != "" && rec.ID == u.ID {
			rec.State = u.State
			rec.Reason = u.Reason
			return rec
		}
	}
	return nil
}

func pending(id string, qty int, price float64) *state.BidRecord {
	return &state.BidRecord{ID: id, Quantity: qty, Price: price, State: model.BidPending}
}
