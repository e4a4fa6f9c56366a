package bidding

import (
	"time"

	"go.uber.org/zap"

	"TripBroker/internal/allocation"
	"TripBroker/internal/model"
	"TripBroker/internal/predictor"
	"TripBroker/internal/state"
)

// HotelPolicy holds the hotel walk-away ceilings and final-mode timing.
type HotelPolicy struct {
	NormalCeiling float64
	FinalCeiling  float64
	// FinalWindow is the time left in a closing minute at which the watch
	// switches to final mode.
	FinalWindow time.Duration
	// StopThreshold is the game time left below which the watch stops; the
	// last hotel auction has closed by then.
	StopThreshold time.Duration
	// Final mode adds max(OffsetFloor, DemandFactor*demand) to the margin.
	OffsetFloor  int
	DemandFactor float64
	// ResetFinalOnClose drops back to normal mode on every hotel closure.
	ResetFinalOnClose bool
}

// DefaultHotelPolicy returns the standard hotel settings.
func DefaultHotelPolicy() HotelPolicy {
	return HotelPolicy{
		NormalCeiling: 400,
		FinalCeiling:  550,
		FinalWindow:   2 * time.Second,
		StopThreshold: 58 * time.Second,
		OffsetFloor:   100,
		DemandFactor:  4,
	}
}

// Ceiling returns the walk-away price for a mode.
func (p HotelPolicy) Ceiling(mode state.HotelMode) float64 {
	if mode == state.HotelFinal {
		return p.FinalCeiling
	}
	return p.NormalCeiling
}

// Hotel runs the hotel bidding state machine.
type Hotel struct {
	log    *zap.Logger
	policy HotelPolicy
	alloc  *allocation.Allocator
}

// NewHotel creates a hotel bidder. Closures with unfilled rooms are repaired
// through alloc.
func NewHotel(log *zap.Logger, policy HotelPolicy, alloc *allocation.Allocator) *Hotel {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hotel{log: log, policy: policy, alloc: alloc}
}

// Margin is the amount added to the ask price of a hotel bid.
//
// With fewer than three samples it is 1, or 10% of the last bid price
// (at least 2) once the agent has bid. Otherwise the ask at the next minute
// boundary is projected linearly and the margin is the distance from the
// last bid price to that projection, at least 1. Final mode adds the demand
// offset.
func (h *Hotel) Margin(g *state.Game, id model.AuctionID, now time.Duration) int {
	a := g.Auction(id)
	offset := 0
	if g.HotelMode == state.HotelFinal {
		offset = max(h.policy.OffsetFloor, int(h.policy.DemandFactor*g.Demand.Night(a.Day)))
	}

	last := int(a.LastBuyPrice)
	if len(a.History) < 3 {
		return fallbackMargin(a) + offset
	}
	p, err := predictor.NewHotel(a.History)
	if err != nil {
		h.log.Debug("hotel forecast unavailable", zap.Stringer("auction", id), zap.Error(err))
		return fallbackMargin(a) + offset
	}
	at := predictor.NextBoundary(now)
	predicted := p.Predict(at)
	margin := max(predicted-last, 1)

	h.log.Debug("hotel margin",
		zap.Stringer("auction", id),
		zap.Duration("predicted_for", at),
		zap.Int("predicted", predicted),
		zap.Int("last_bid", last),
		zap.Int("offset", offset),
		zap.Int("margin", margin+offset),
	)
	return margin + offset
}

func fallbackMargin(a *state.Auction) int {
	if len(a.History) == 0 {
		return 1
	}
	return max(int(a.LastBuyPrice*0.1), 2)
}

// Process decides the next bid for one hotel auction. An auction whose
// closure was applied and still carries allocation is handed to the
// reallocation repair instead. A quote reporting closed before the closure
// is applied is left alone.
func (h *Hotel) Process(g *state.Game, id model.AuctionID, now time.Duration) []Action {
	a := g.Auction(id)
	if a.Allocation < 1 {
		return nil
	}
	if g.HotelClosed(id) {
		h.log.Info("hotel closed with unfilled allocation",
			zap.Stringer("auction", id),
			zap.Int("allocation", a.Allocation),
			zap.Float64("bid", a.LastBuyPrice),
			zap.Float64("ask", a.Quote.Ask),
		)
		h.alloc.ReallocateHotel(g, id, now)
		return nil
	}
	if !a.Quote.Open() {
		return nil
	}

	ceiling := h.policy.Ceiling(g.HotelMode)
	if a.LastBuyPrice > ceiling {
		h.log.Debug("hotel price above ceiling, not bidding",
			zap.Stringer("auction", id),
			zap.Float64("last_bid", a.LastBuyPrice),
			zap.Float64("ceiling", ceiling),
		)
		return nil
	}

	margin := float64(h.Margin(g, id, now))
	ask, last := a.Quote.Ask, a.LastBuyPrice
	kind := Submit
	var price float64

	switch {
	case a.Buy == nil:
		price = ask + margin
		if price <= last {
			price = last + margin
		}
	case a.Buy.State == model.BidRejected && a.Buy.Reason == model.RejectPriceNotBeaten:
		kind = Replace
		price = ask + margin
		if price <= last {
			price = last + margin
		}
	case a.Buy.State == model.BidValid:
		kind = Replace
		price = max(ask+margin, last)
	default:
		// pending, or rejected for a reason a new price does not fix
		return nil
	}

	if price > ceiling {
		if last >= ceiling {
			h.log.Debug("hotel bid already at ceiling",
				zap.Stringer("auction", id), zap.Float64("ceiling", ceiling))
			return nil
		}
		price = ceiling
	}
	if kind == Replace && price == last && a.Buy.Quantity == a.Allocation {
		return nil
	}

	act := Action{
		Kind:     kind,
		Order:    model.Order{Auction: id, Quantity: a.Allocation, Price: price},
		Previous: last,
	}
	a.LastBuyPrice = price
	if kind == Submit {
		a.Buy = pending("", a.Allocation, price)
	} else {
		act.BidID = a.Buy.ID
		a.Buy.Price = price
		a.Buy.Quantity = a.Allocation
		a.Buy.State = model.BidPending
		a.Buy.Reason = model.RejectNone
	}

	h.log.Debug("hotel bid",
		zap.Stringer("auction", id),
		zap.Stringer("kind", kind),
		zap.Stringer("mode", g.HotelMode),
		zap.Int("quantity", a.Allocation),
		zap.Float64("ask", ask),
		zap.Float64("price", price),
	)
	return []Action{act}
}

// ProcessAll runs Process over every hotel auction not yet closed.
func (h *Hotel) ProcessAll(g *state.Game, now time.Duration) []Action {
	var actions []Action
	for _, id := range model.Auctions(model.CategoryHotel) {
		if g.HotelClosed(id) {
			continue
		}
		actions = append(actions, h.Process(g, id, now)...)
	}
	return actions
}

// Close applies a hotel closure once: the allocation drops by the units won,
// the result is recorded, and the auction is processed so an unfilled
// remainder is reallocated. A repeated closure returns nil.
func (h *Hotel) Close(g *state.Game, id model.AuctionID, own int, now time.Duration) []Action {
	if !g.MarkHotelClosed(id) {
		return nil
	}
	if h.policy.ResetFinalOnClose && g.HotelMode == state.HotelFinal {
		g.HotelMode = state.HotelNormal
		h.log.Info("hotel mode reset to normal", zap.Stringer("auction", id))
	}

	a := g.Auction(id)
	old := a.Allocation
	a.Allocation = old - own
	if old > 0 {
		g.Closures = append(g.Closures, state.HotelClosure{
			Auction:    id,
			Allocation: old,
			Own:        own,
			BidPrice:   a.LastBuyPrice,
			AskPrice:   a.Quote.Ask,
			At:         now,
		})
	}
	h.log.Info("hotel auction closed",
		zap.Stringer("auction", id),
		zap.Int("old_allocation", old),
		zap.Int("own", own),
		zap.Int("allocation", a.Allocation),
	)

	return h.Process(g, id, now)
}

// WatchTick is the periodic hotel deadline check. It reports stop once the
// last hotel auction has closed. When the current minute has FinalWindow or
// less left, it flips normal mode to final and returns bids for every hotel
// auction still open.
func (h *Hotel) WatchTick(g *state.Game, now, left time.Duration) (stop bool, actions []Action) {
	if left < h.policy.StopThreshold {
		return true, nil
	}
	window := (left % time.Minute).Truncate(time.Second)
	if window > h.policy.FinalWindow || g.HotelMode != state.HotelNormal {
		return false, nil
	}

	g.HotelMode = state.HotelFinal
	h.log.Info("hotel final mode",
		zap.Duration("game_left", left),
		zap.Duration("minute_left", window),
	)
	return false, h.ProcessAll(g, now)
}
