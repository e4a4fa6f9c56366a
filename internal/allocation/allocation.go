// Package allocation turns client preferences and current holdings into
// per-auction allocation targets.
package allocation

import (
	"time"

	"go.uber.org/zap"

	"TripBroker/internal/model"
	"TripBroker/internal/state"
)

// Allocator runs the allocation passes over a game.
type Allocator struct {
	log *zap.Logger
	tie TiePolicy
}

// New returns an Allocator. A nil logger disables logging.
func New(log *zap.Logger, tie TiePolicy) *Allocator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Allocator{log: log, tie: tie}
}

// counts is a scratch copy of per-auction quantities consumed during a pass.
type counts [model.NumAuctions]int

func (c *counts) take(id model.AuctionID, add *counts) {
	if c[id] < 1 {
		add[id]++
	} else {
		c[id]--
	}
}

func hotelCounts(h state.Holdings) counts {
	var c counts
	for _, id := range model.Auctions(model.CategoryHotel) {
		c[id] = h.Own(id)
	}
	return c
}

func apply(g *state.Game, add *counts) int {
	total := 0
	for id, n := range add {
		if n != 0 {
			g.Auctions[id].Allocation += n
			total += n
		}
	}
	return total
}

// stay describes a client's hotel coverage in the owned counts.
type stay struct {
	tier        model.HotelTier
	first, last int
	hasFirst    bool
	hasLast     bool
	complete    bool
}

func coverage(c model.Client, hotels *counts) stay {
	s := stay{tier: c.PreferredTier(), first: c.FirstNight(), last: c.LastNight()}
	s.hasFirst = hotels[model.MustHotel(s.tier, s.first)] > 0
	s.hasLast = hotels[model.MustHotel(s.tier, s.last)] > 0
	s.complete = covered(hotels, s.tier, s.first, s.last)
	return s
}

func covered(hotels *counts, tier model.HotelTier, lo, hi int) bool {
	for n := lo; n <= hi; n++ {
		if hotels[model.MustHotel(tier, n)] < 1 {
			return false
		}
	}
	return true
}

func consume(hotels *counts, tier model.HotelTier, lo, hi int) {
	for n := lo; n <= hi; n++ {
		hotels[model.MustHotel(tier, n)]--
	}
}

// SetHotelAllocations allocates one hotel night per client night in the
// client's preferred tier. It runs once at game start.
func (a *Allocator) SetHotelAllocations(g *state.Game) {
	for _, c := range g.Clients {
		tier := c.PreferredTier()
		for n := c.FirstNight(); n <= c.LastNight(); n++ {
			g.Auction(model.MustHotel(tier, n)).Allocation++
		}
	}
	for i, id := range model.Auctions(model.CategoryHotel) {
		g.InitialHotel[i] = g.Auction(id).Allocation
	}
	a.log.Debug("hotel allocations set", zap.Ints("initial", g.InitialHotel[:]))
}

// lose records and logs a permanent loss for a client.
func (a *Allocator) lose(g *state.Game, client int, id model.AuctionID, reason string, now time.Duration) {
	g.AddLoss(state.Loss{Client: client, Auction: id, Reason: reason, At: now})
	a.log.Warn("client utility lost",
		zap.Int("client", client),
		zap.Stringer("auction", id),
		zap.String("reason", reason),
	)
}
