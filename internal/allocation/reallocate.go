package allocation

import (
	"time"

	"go.uber.org/zap"

	"TripBroker/internal/model"
	"TripBroker/internal/state"
)

// MaxShift is the largest number of nights a stay is shortened by when its
// boundary night closes unfilled.
const MaxShift = 3

// Reallocation summarises one repair run over a closed hotel auction.
type Reallocation struct {
	Auction model.AuctionID
	Shifted []int // clients whose stay was shortened
	Lost    int   // allocation units given up
}

// ReallocateHotel repairs the plan after a hotel auction closed with
// allocation left over. Each client whose first or last night falls on the
// closed night has that boundary moved inward by 1 to 3 nights, onto a
// night whose auction is still open; the nights in between are
// de-allocated. Units no client can absorb are dropped. The closed
// auction's allocation is zero afterwards.
func (a *Allocator) ReallocateHotel(g *state.Game, id model.AuctionID, now time.Duration) Reallocation {
	rec := g.Auction(id)
	res := Reallocation{Auction: id}
	tier, night := rec.Tier, rec.Day

	for i, c := range g.Clients {
		if rec.Allocation <= 0 {
			break
		}
		if g.Dropped(i) || c.PreferredTier() != tier {
			continue
		}
		first, last := c.FirstNight(), c.LastNight()
		if (night != first && night != last) || last <= first {
			continue
		}

		shortened := false
		for shift := 1; shift <= MaxShift && !shortened; shift++ {
			shortened = a.shorten(g, i, tier, night, shift, now)
		}
		if shortened {
			res.Shifted = append(res.Shifted, i)
			continue
		}
		rec.Allocation--
		res.Lost++
		a.lose(g, i, id, "no open hotel night within shift range", now)
	}

	if rec.Allocation > 0 {
		// Nobody has this night on a boundary: a middle night is gone.
		for i, c := range g.Clients {
			if rec.Allocation <= 0 {
				break
			}
			if g.Dropped(i) || c.PreferredTier() != tier || night <= c.FirstNight() || night >= c.LastNight() {
				continue
			}
			rec.Allocation--
			res.Lost++
			a.lose(g, i, id, "middle night closed unfilled", now)
		}
		if rec.Allocation > 0 {
			a.log.Warn("dropping unmatched hotel allocation",
				zap.Stringer("auction", id), zap.Int("units", rec.Allocation))
			res.Lost += rec.Allocation
			rec.Allocation = 0
		}
	}

	a.log.Info("hotel reallocation done",
		zap.Stringer("auction", id),
		zap.Ints("shifted_clients", res.Shifted),
		zap.Int("lost_units", res.Lost),
	)
	return res
}

// shorten moves the client's boundary on night inward by shift nights when
// the new boundary night is still open. Allocation is released from the
// closed night up to (not including) the new boundary.
func (a *Allocator) shorten(g *state.Game, client int, tier model.HotelTier, night, shift int, now time.Duration) bool {
	c := g.Clients[client]
	first, last := c.FirstNight(), c.LastNight()
	if last-first < shift {
		return false
	}

	step := 1
	target := first + shift
	if night != first {
		step = -1
		target = last - shift
	}
	if !g.Auction(model.MustHotel(tier, target)).Quote.Open() {
		return false
	}

	for n := night; n != target; n += step {
		rec := g.Auction(model.MustHotel(tier, n))
		if rec.Allocation > 0 {
			rec.Allocation--
		} else {
			a.log.Warn("released night had no allocation",
				zap.Int("client", client), zap.Int("night", n))
		}
	}

	arrival, departure := c.Arrival, c.Departure
	if step > 0 {
		arrival += shift
	} else {
		departure -= shift
	}
	g.Reshape(client, arrival, departure, "hotel closed", now)
	a.log.Info("stay shortened after hotel closure",
		zap.Int("client", client),
		zap.Int("arrival", arrival),
		zap.Int("departure", departure),
	)
	return true
}
