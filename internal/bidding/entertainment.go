package bidding

import (
	"go.uber.org/zap"

	"TripBroker/internal/model"
	"TripBroker/internal/state"
)

// EntertainmentPolicy holds the ticket price limits.
type EntertainmentPolicy struct {
	// Ceiling is the highest ask the agent buys at.
	Ceiling float64
	// Spare tickets are offered at SellStart and lowered by SellStep each
	// cycle until SellFloor.
	SellStart float64
	SellStep  float64
	SellFloor float64
}

// DefaultEntertainmentPolicy returns the standard ticket settings.
func DefaultEntertainmentPolicy() EntertainmentPolicy {
	return EntertainmentPolicy{Ceiling: 80, SellStart: 200, SellStep: 2, SellFloor: 60}
}

// Entertainment buys allocated tickets and sells spare ones.
type Entertainment struct {
	log    *zap.Logger
	policy EntertainmentPolicy
}

// NewEntertainment creates an entertainment bidder.
func NewEntertainment(log *zap.Logger, policy EntertainmentPolicy) *Entertainment {
	if log == nil {
		log = zap.NewNop()
	}
	return &Entertainment{log: log, policy: policy}
}

// Margin is the ticket buy margin: the last bid price plus one, at least 2.
func Margin(a *state.Auction) int {
	return max(int(a.LastBuyPrice)+1, 2)
}

// Process buys the allocation of one ticket auction, or re-prices the
// outstanding buy bid. Nothing is bid while the ask is above the ceiling.
func (e *Entertainment) Process(g *state.Game, id model.AuctionID) []Action {
	a := g.Auction(id)
	if !a.Quote.Open() {
		return nil
	}
	if a.Quote.Ask > e.policy.Ceiling {
		e.log.Debug("ticket ask above ceiling, skipping",
			zap.Stringer("auction", id), zap.Float64("ask", a.Quote.Ask))
		return nil
	}

	price := a.Quote.Ask + float64(Margin(a))
	act := Action{Previous: a.LastBuyPrice}

	switch {
	case a.Allocation > 0 && a.Buy != nil && a.Buy.ID != "" && a.Outstanding > 0:
		// Fold the new units into the live bid.
		act.Kind = Replace
		act.BidID = a.Buy.ID
		act.Order = model.Order{Auction: id, Quantity: a.Outstanding + a.Allocation, Price: price}
		a.Outstanding += a.Allocation
		a.Allocation = 0
		a.Buy.Quantity = act.Order.Quantity
		a.Buy.Price = price
		a.Buy.State = model.BidPending
		a.Buy.Filled = 0
	case a.Allocation > 0:
		act.Kind = Submit
		act.Order = model.Order{Auction: id, Quantity: a.Allocation, Price: price}
		a.Outstanding += a.Allocation
		a.Allocation = 0
		a.Buy = pending("", act.Order.Quantity, price)
	case a.Outstanding > 0 && a.Buy != nil && a.Buy.ID != "":
		act.Kind = Replace
		act.BidID = a.Buy.ID
		act.Order = model.Order{Auction: id, Quantity: a.Outstanding, Price: price}
		a.Buy.Quantity = a.Outstanding
		a.Buy.Price = price
		a.Buy.State = model.BidPending
		a.Buy.Filled = 0
	default:
		return nil
	}
	a.LastBuyPrice = price

	e.log.Debug("ticket buy",
		zap.Stringer("auction", id),
		zap.Stringer("kind", act.Kind),
		zap.Int("quantity", act.Order.Quantity),
		zap.Float64("ask", a.Quote.Ask),
		zap.Float64("price", price),
	)
	return []Action{act}
}

// ProcessAll runs Process over every ticket auction.
func (e *Entertainment) ProcessAll(g *state.Game) []Action {
	var actions []Action
	for _, id := range model.Auctions(model.CategoryEntertainment) {
		actions = append(actions, e.Process(g, id)...)
	}
	return actions
}

// Sell runs the sell ladder. Spare tickets not yet offered are put up at the
// start price; offered ones are lowered by one step per call until the floor.
func (e *Entertainment) Sell(g *state.Game) []Action {
	var actions []Action
	for _, a := range g.Category(model.CategoryEntertainment) {
		switch {
		case a.SellPending > 0:
			qty := a.SellPending
			act := Action{Previous: a.LastSellPrice}
			price := e.policy.SellStart
			if a.Sell != nil && a.Sell.ID != "" && a.SellOutstanding > 0 {
				act.Kind = Replace
				act.BidID = a.Sell.ID
				qty += a.SellOutstanding
				a.Sell.Quantity = -qty
				a.Sell.Price = price
				a.Sell.State = model.BidPending
				a.Sell.Filled = 0
			} else {
				act.Kind = Submit
				a.Sell = pending("", -qty, price)
			}
			act.Order = model.Order{Auction: a.ID, Quantity: -qty, Price: price}
			a.SellOutstanding = qty
			a.SellPending = 0
			a.LastSellPrice = price
			actions = append(actions, act)
			e.log.Info("offering spare tickets",
				zap.Stringer("auction", a.ID), zap.Int("quantity", qty), zap.Float64("price", price))

		case a.SellOutstanding > 0 && a.Sell != nil && a.Sell.ID != "" && a.LastSellPrice > e.policy.SellFloor:
			price := max(a.LastSellPrice-e.policy.SellStep, e.policy.SellFloor)
			actions = append(actions, Action{
				Kind:     Replace,
				BidID:    a.Sell.ID,
				Order:    model.Order{Auction: a.ID, Quantity: -a.SellOutstanding, Price: price},
				Previous: a.LastSellPrice,
			})
			a.Sell.Quantity = -a.SellOutstanding
			a.Sell.Price = price
			a.Sell.State = model.BidPending
			a.Sell.Filled = 0
			a.LastSellPrice = price
		}
	}
	return actions
}

// ApplyUpdate credits fills reported on a ticket bid: bought units leave
// Outstanding, sold units leave SellOutstanding and Reserved. It returns the
// number of units newly filled.
func (e *Entertainment) ApplyUpdate(g *state.Game, u model.BidUpdate) int {
	if !u.Auction.Valid() || u.Auction.Category() != model.CategoryEntertainment {
		return 0
	}
	rec := Track(g, u)
	if rec == nil || u.State != model.BidValid {
		return 0
	}
	filled := u.Filled()
	delta := filled - rec.Filled
	if delta <= 0 {
		return 0
	}
	rec.Filled = filled

	a := g.Auction(u.Auction)
	if u.Quantity < 0 {
		a.SellOutstanding = max(a.SellOutstanding-delta, 0)
		a.Reserved = max(a.Reserved-delta, 0)
		e.log.Info("tickets sold", zap.Stringer("auction", u.Auction), zap.Int("units", delta))
	} else {
		a.Outstanding = max(a.Outstanding-delta, 0)
		e.log.Info("tickets bought", zap.Stringer("auction", u.Auction), zap.Int("units", delta))
	}
	return delta
}
