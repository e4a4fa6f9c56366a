package allocation

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"TripBroker/internal/model"
	"TripBroker/internal/state"
)

// TiePolicy decides what happens when a client scores two entertainment
// types equally.
type TiePolicy string

const (
	// TieTypeOrder ranks tied types in canonical type order.
	TieTypeOrder TiePolicy = "type_order"
	// TieSkip gives the client no entertainment at all.
	TieSkip TiePolicy = "skip"
)

// ParseTiePolicy validates a configured policy name.
func ParseTiePolicy(s string) (TiePolicy, error) {
	switch p := TiePolicy(s); p {
	case TieTypeOrder, TieSkip:
		return p, nil
	case "":
		return TieTypeOrder, nil
	default:
		return "", fmt.Errorf("unknown entertainment tie policy %q", s)
	}
}

// PreferredTypes ranks the ticket kinds by descending fun score. The second
// result reports whether two scores were equal.
func PreferredTypes(c model.Client) ([]model.EntertainmentType, bool) {
	types := slices.Clone(model.EntertainmentTypes[:])
	slices.SortStableFunc(types, func(x, y model.EntertainmentType) int {
		return c.Fun[y] - c.Fun[x]
	})
	tied := c.Fun[0] == c.Fun[1] || c.Fun[0] == c.Fun[2] || c.Fun[1] == c.Fun[2]
	return types, tied
}

func (a *Allocator) rankedTypes(client int, c model.Client) []model.EntertainmentType {
	types, tied := PreferredTypes(c)
	if tied {
		if a.tie == TieSkip {
			a.log.Error("equal entertainment preferences, client gets no tickets",
				zap.Int("client", client), zap.Ints("fun", c.Fun[:]))
			return nil
		}
		a.log.Warn("equal entertainment preferences, ranking by type order",
			zap.Int("client", client), zap.Ints("fun", c.Fun[:]))
	}
	if n := c.Nights(); n < len(types) {
		types = types[:n]
	}
	return types
}

// EntertainmentDeallocate assigns owned tickets to client nights at game
// start, picks a ticket auction for every remaining client night, and marks
// tickets no client wants for sale.
func (a *Allocator) EntertainmentDeallocate(g *state.Game, h state.Holdings) {
	var owned counts
	for _, id := range model.Auctions(model.CategoryEntertainment) {
		owned[id] = h.Own(id)
	}

	for i, c := range g.Clients {
		types := a.rankedTypes(i, c)
		var list []model.AuctionID
		satisfied := map[int]bool{}

		for n := c.FirstNight(); n <= c.LastNight() && len(types) > 0; n++ {
			for k, t := range types {
				id, _ := model.EntertainmentAuction(t, n)
				if owned[id] > 0 {
					owned[id]--
					list = append(list, id)
					satisfied[n] = true
					types = slices.Delete(types, k, k+1)
					break
				}
			}
		}
		for n := c.FirstNight(); n <= c.LastNight() && len(types) > 0; n++ {
			if satisfied[n] {
				continue
			}
			id, _ := model.EntertainmentAuction(types[0], n)
			list = append(list, id)
			types = types[1:]
		}
		g.ClientEntertainment[i] = list
	}

	for _, id := range model.Auctions(model.CategoryEntertainment) {
		rec := g.Auction(id)
		rec.Reserved = owned[id]
		rec.SellPending = owned[id]
		if owned[id] > 0 {
			a.log.Info("unneeded tickets marked for sale",
				zap.Stringer("auction", id), zap.Int("units", owned[id]))
		}
	}
}

func ticketFor(list []model.AuctionID, night int) (model.AuctionID, bool) {
	for _, id := range list {
		if id.Day() == night {
			return id, true
		}
	}
	return 0, false
}

// EntertainmentAllocate adds ticket allocations for clients whose hotel
// holdings confirm a complete stay or exactly one boundary night. It returns
// the number of units added.
func (a *Allocator) EntertainmentAllocate(g *state.Game, h state.Holdings) int {
	hotels := hotelCounts(h)
	var tickets, add counts
	for _, id := range model.Auctions(model.CategoryEntertainment) {
		rec := g.Auction(id)
		tickets[id] = g.Available(h, id) + rec.Allocation + rec.Outstanding
	}

	for i, c := range g.Clients {
		if g.Dropped(i) {
			continue
		}
		s := coverage(c, &hotels)
		if !s.hasFirst && !s.hasLast {
			continue
		}
		list := g.ClientEntertainment[i]
		switch {
		case s.complete:
			for n := s.first; n <= s.last; n++ {
				id, ok := ticketFor(list, n)
				if !ok {
					// fewer ticket kinds than nights
					continue
				}
				tickets.take(id, &add)
				hotels[model.MustHotel(s.tier, n)]--
			}
		case s.hasFirst != s.hasLast:
			n := s.first
			if s.hasLast {
				n = s.last
			}
			id, ok := ticketFor(list, n)
			if !ok {
				a.log.Debug("no ticket planned for anchored night, skipping client",
					zap.Int("client", i), zap.Int("night", n))
				continue
			}
			tickets.take(id, &add)
			hotels[model.MustHotel(s.tier, n)]--
		}
	}

	n := apply(g, &add)
	if n > 0 {
		a.log.Debug("entertainment allocations added", zap.Int("units", n))
	}
	return n
}
