package allocation

import (
	"time"

	"go.uber.org/zap"

	"TripBroker/internal/model"
	"TripBroker/internal/predictor"
	"TripBroker/internal/state"
)

func flightCounts(g *state.Game, h state.Holdings) counts {
	var c counts
	for _, id := range model.Auctions(model.CategoryFlight) {
		c[id] = h.Own(id) + g.Auction(id).Allocation
	}
	return c
}

// FlightNormalPass adds flight allocations for clients whose owned hotel
// nights already anchor one or both ends of their stay. It never drops a
// client. It returns the number of units added.
func (a *Allocator) FlightNormalPass(g *state.Game, h state.Holdings) int {
	flights := flightCounts(g, h)
	hotels := hotelCounts(h)
	var add counts

	for i, c := range g.Clients {
		if g.Dropped(i) {
			continue
		}
		s := coverage(c, &hotels)
		if !s.hasFirst && !s.hasLast {
			continue
		}
		useFirst, useLast := s.hasFirst, s.hasLast
		if s.hasFirst && s.hasLast && !s.complete {
			useFirst, useLast = a.pickEnd(g, i, s)
		}
		if useFirst || s.complete {
			flights.take(model.MustFlight(model.Inbound, s.first), &add)
			hotels[model.MustHotel(s.tier, s.first)]--
		}
		if useLast || s.complete {
			flights.take(model.MustFlight(model.Outbound, s.last+1), &add)
			if s.last != s.first || !(useFirst || s.complete) {
				hotels[model.MustHotel(s.tier, s.last)]--
			}
		}
	}

	n := apply(g, &add)
	if n > 0 {
		a.log.Debug("flight allocations added", zap.Int("units", n), zap.Ints("delta", add[:model.NumFlights]))
	}
	return n
}

// pickEnd chooses which boundary flight to lock in for a client that owns
// both boundary nights without a contiguous stay: the one the predictor
// says to buy now, or the cheaper one when the forecasts agree.
func (a *Allocator) pickEnd(g *state.Game, client int, s stay) (first, last bool) {
	in := model.MustFlight(model.Inbound, s.first)
	out := model.MustFlight(model.Outbound, s.last+1)
	inBuy := a.buyNow(g, in)
	outBuy := a.buyNow(g, out)

	if inBuy == outBuy {
		first = g.Auction(in).Quote.Ask < g.Auction(out).Quote.Ask
		last = !first
	} else {
		first, last = inBuy, outBuy
	}
	a.log.Debug("split stay boundary chosen",
		zap.Int("client", client),
		zap.Bool("inbound_buy_now", inBuy),
		zap.Bool("outbound_buy_now", outBuy),
		zap.Bool("use_first", first),
	)
	return first, last
}

func (a *Allocator) buyNow(g *state.Game, id model.AuctionID) bool {
	p, err := predictor.NewFlight(g.FlightPrices(id))
	if err != nil {
		a.log.Debug("flight forecast unavailable", zap.Stringer("auction", id), zap.Error(err))
		return false
	}
	return p.ShouldBuy()
}

// FlightFinalPass runs once every hotel auction has closed. Clients are
// matched in three tiers against the final hotel holdings: complete stays,
// stays anchored on a boundary night (shrunk to the owned run from that
// anchor) and stays with only inner nights (shrunk to the latest owned run).
// Clients with no owned night are dropped. It returns the units added.
func (a *Allocator) FlightFinalPass(g *state.Game, h state.Holdings, now time.Duration) int {
	flights := flightCounts(g, h)
	hotels := hotelCounts(h)
	var add counts

	assign := func(client int, tier model.HotelTier, lo, hi int) {
		flights.take(model.MustFlight(model.Inbound, lo), &add)
		flights.take(model.MustFlight(model.Outbound, hi+1), &add)
		consume(&hotels, tier, lo, hi)
		g.Reshape(client, lo, hi+1, "final flight pass", now)
	}

	var pending []int
	for i := range g.Clients {
		if !g.Dropped(i) {
			pending = append(pending, i)
		}
	}

	// Tier 1: complete stays.
	rest := pending[:0]
	for _, i := range pending {
		c := g.Clients[i]
		tier := c.PreferredTier()
		if covered(&hotels, tier, c.FirstNight(), c.LastNight()) {
			assign(i, tier, c.FirstNight(), c.LastNight())
			continue
		}
		rest = append(rest, i)
	}
	pending = rest

	// Tier 2: a boundary night is owned.
	rest = nil
	for _, i := range pending {
		s := coverage(g.Clients[i], &hotels)
		if !s.hasFirst && !s.hasLast {
			rest = append(rest, i)
			continue
		}
		var lo, hi int
		if s.hasFirst {
			lo, hi = s.first, s.first
			for hi < s.last && hotels[model.MustHotel(s.tier, hi+1)] > 0 {
				hi++
			}
		} else {
			lo, hi = s.last, s.last
			for lo > s.first && hotels[model.MustHotel(s.tier, lo-1)] > 0 {
				lo--
			}
		}
		a.log.Info("stay shortened to owned run",
			zap.Int("client", i),
			zap.Int("from_first", s.first), zap.Int("from_last", s.last),
			zap.Int("to_first", lo), zap.Int("to_last", hi),
		)
		assign(i, s.tier, lo, hi)
	}
	pending = rest

	// Tier 3: only inner nights can still be owned.
	for _, i := range pending {
		c := g.Clients[i]
		tier := c.PreferredTier()
		hi := 0
		for n := c.LastNight(); n >= c.FirstNight(); n-- {
			if hotels[model.MustHotel(tier, n)] > 0 {
				hi = n
				break
			}
		}
		if hi == 0 {
			g.Drop(i, "no owned hotel night in stay", now)
			a.log.Warn("client dropped: no owned hotel night",
				zap.Int("client", i),
				zap.Int("arrival", c.Arrival),
				zap.Int("departure", c.Departure),
			)
			continue
		}
		lo := hi
		for lo > c.FirstNight() && hotels[model.MustHotel(tier, lo-1)] > 0 {
			lo--
		}
		a.log.Info("stay shrunk to inner nights",
			zap.Int("client", i), zap.Int("first", lo), zap.Int("last", hi))
		assign(i, tier, lo, hi)
	}

	n := apply(g, &add)
	if n > 0 {
		a.log.Debug("final flight allocations added", zap.Int("units", n), zap.Ints("delta", add[:model.NumFlights]))
	}
	return n
}
