package engine

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"TripBroker/internal/bidding"
	"TripBroker/internal/demand"
	"TripBroker/internal/journal"
	"TripBroker/internal/model"
	"TripBroker/internal/recorder"
	"TripBroker/internal/state"
)

// Handle applies one event to the game. It runs on the loop goroutine; tests
// call it directly.
func (a *Agent) Handle(ev Event) {
	switch ev.Kind {
	case EventGameStarted:
		a.gameStarted(ev.Clients)
		return
	case EventGameStopped:
		a.gameStopped()
		return
	}
	if !a.running() {
		a.log.Debug("event outside a running game", zap.Stringer("event", ev.Kind))
		return
	}

	switch ev.Kind {
	case EventQuote:
		a.quoteUpdated(ev.Quote)
	case EventCategoryQuotes:
		a.categoryQuotesUpdated(ev.Category)
	case EventBidUpdated:
		a.bidUpdated(ev.Update)
	case EventBidRejected:
		a.bidRejected(ev.Update)
	case EventBidError:
		a.log.Error("bid error",
			zap.String("bid", ev.Update.ID),
			zap.Stringer("auction", ev.Update.Auction),
			zap.Error(ev.Err),
		)
	case EventTransaction:
		a.transaction(ev.Transaction)
	case EventAuctionClosed:
		a.auctionClosed(ev.Auction)
	case EventHotelWatch:
		a.hotelWatch()
	case EventEntertainment:
		a.entertainmentCycle()
	}
}

func (a *Agent) running() bool { return a.g.Started && !a.g.Stopped }

func (a *Agent) now() time.Duration { return a.market.GameTime() }

func (a *Agent) gameStarted(clients []model.Client) {
	clients = a.validClients(clients)
	a.g.Start(clients)
	a.gameID = uuid.NewString()
	a.startedAt = time.Now()
	a.txCount, a.spent, a.earned = 0, 0, 0
	a.report = nil

	a.alloc.SetHotelAllocations(a.g)
	a.log.Info("game started",
		zap.String("game", a.gameID),
		zap.Int("clients", len(clients)),
		zap.Ints("hotel_allocation", a.g.InitialHotel[:]),
	)

	if a.journal != nil {
		if err := a.journal.Begin(a.gameID, clients); err != nil {
			a.log.Error("journal begin", zap.Error(err))
		}
	}
	if a.timers != nil {
		if err := a.timers.StartHotelWatch(); err != nil {
			a.log.Error("start hotel watch", zap.Error(err))
		}
	}
}

// validClients drops clients whose stay falls outside the game days.
func (a *Agent) validClients(clients []model.Client) []model.Client {
	valid := make([]model.Client, 0, len(clients))
	for _, c := range clients {
		if !c.Valid() {
			a.log.Warn("invalid client preference, skipping",
				zap.Int("client", c.ID),
				zap.Int("arrival", c.Arrival),
				zap.Int("departure", c.Departure),
			)
			continue
		}
		valid = append(valid, c)
	}
	return valid
}

func (a *Agent) gameStopped() {
	if !a.running() {
		return
	}
	a.g.Stopped = true
	if a.timers != nil && !a.g.HotelWatchStopped {
		a.timers.StopHotelWatch()
		a.g.HotelWatchStopped = true
	}
	a.finish()
}

func (a *Agent) quoteUpdated(q model.Quote) {
	if !q.Auction.Valid() {
		a.log.Warn("quote for unknown auction", zap.Int("auction", int(q.Auction)))
		return
	}
	now := a.now()
	a.g.RecordQuote(q, now)

	if q.Auction.Category() != model.CategoryHotel {
		return
	}
	// A closed quote can arrive before the market credits the rooms won;
	// the closure itself is applied on AuctionClosed.
	if q.Open() {
		a.execute(a.hotel.Process(a.g, q.Auction, now))
	}
}

func (a *Agent) categoryQuotesUpdated(c model.Category) {
	if c != model.CategoryFlight {
		return
	}
	now, left := a.now(), a.market.GameTimeLeft()

	if !a.g.DemandReady {
		first := a.g.Auction(model.MustFlight(model.Inbound, 1))
		if len(first.History) < a.cfg.DemandSamples {
			var in, out [4]float64
			for d := 0; d < 4; d++ {
				in[d] = firstAsk(a.g.Auction(model.MustFlight(model.Inbound, d+1)))
				out[d] = firstAsk(a.g.Auction(model.MustFlight(model.Outbound, d+2)))
			}
			a.g.Demand = demand.Compute(in, out)
			a.log.Info("demand estimated",
				zap.Float64s("flight", a.g.Demand.Flight[:]),
				zap.Float64s("hotel", a.g.Demand.Hotel[:]),
			)
		}
		a.g.DemandReady = true
	}

	var added int
	if a.g.AllHotelsClosed() {
		added = a.alloc.FlightFinalPass(a.g, a.market, now)
	} else {
		added = a.alloc.FlightNormalPass(a.g, a.market)
	}
	if added > 0 {
		a.log.Debug("flight allocation added", zap.Int("units", added))
	}
	a.execute(a.flight.Process(a.g, now, left))
}

// firstAsk is the opening ask of an auction, or its current ask when no
// sample was recorded.
func firstAsk(rec *state.Auction) float64 {
	if len(rec.History) == 0 {
		return rec.Quote.Ask
	}
	return rec.History[0].Ask
}

func (a *Agent) bidUpdated(u model.BidUpdate) {
	rec := bidding.Track(a.g, u)
	if rec == nil {
		a.log.Debug("update for untracked bid", zap.String("bid", u.ID), zap.Stringer("auction", u.Auction))
		return
	}
	if u.Auction.Category() == model.CategoryEntertainment {
		if n := a.ent.ApplyUpdate(a.g, u); n > 0 {
			a.log.Debug("tickets filled", zap.Stringer("auction", u.Auction), zap.Int("units", n))
		}
	}
}

func (a *Agent) bidRejected(u model.BidUpdate) {
	bidding.Track(a.g, u)
	fields := []zap.Field{
		zap.String("bid", u.ID),
		zap.Stringer("auction", u.Auction),
		zap.Float64("price", u.Price),
		zap.Stringer("reason", u.Reason),
	}
	switch {
	case u.Auction.Category() == model.CategoryHotel && u.Reason == model.RejectPriceNotBeaten:
		a.log.Debug("hotel bid below ask, re-bidding", fields...)
		a.execute(a.hotel.Process(a.g, u.Auction, a.now()))
	case u.Quantity < 0 && u.Reason == model.RejectActiveBidChanged:
		a.log.Debug("sell replaced while active", fields...)
	default:
		a.log.Warn("bid rejected", fields...)
	}
}

func (a *Agent) transaction(t model.Transaction) {
	a.txCount++
	if t.Quantity > 0 {
		a.spent += float64(t.Quantity) * t.Price
	} else {
		a.earned += float64(-t.Quantity) * t.Price
	}
	a.log.Info("transaction",
		zap.Stringer("auction", t.Auction),
		zap.Int("quantity", t.Quantity),
		zap.Float64("price", t.Price),
	)
	if err := a.rec.RecordTransaction(&recorder.TransactionEvent{
		GameID: a.gameID, Elapsed: a.now(), Transaction: t,
	}); err != nil {
		a.log.Error("record transaction", zap.Error(err))
	}
}

func (a *Agent) auctionClosed(id model.AuctionID) {
	if !id.Valid() {
		return
	}
	if id.Category() != model.CategoryHotel {
		a.log.Debug("auction closed", zap.Stringer("auction", id))
		return
	}
	a.closeHotel(id, a.now())
}

// closeHotel applies a hotel closure once; repeated notifications are
// ignored.
func (a *Agent) closeHotel(id model.AuctionID, now time.Duration) {
	if a.g.HotelClosed(id) {
		return
	}
	before := len(a.g.Closures)
	a.execute(a.hotel.Close(a.g, id, a.market.Own(id), now))
	if a.journal != nil && len(a.g.Closures) > before {
		if err := a.journal.Write(journal.KindClosure, now, a.g.Closures[len(a.g.Closures)-1]); err != nil {
			a.log.Error("journal closure", zap.Error(err))
		}
	}
}

func (a *Agent) hotelWatch() {
	if a.g.HotelWatchStopped {
		return
	}
	stop, actions := a.hotel.WatchTick(a.g, a.now(), a.market.GameTimeLeft())
	if stop {
		a.g.HotelWatchStopped = true
		if a.timers != nil {
			a.timers.StopHotelWatch()
		}
		a.log.Info("hotel watch stopped")
	}
	a.execute(actions)
}

// entertainmentCycle waits until every ticket auction is open, assigns the
// initial tickets once, then runs allocation, the sell ladder and buying.
func (a *Agent) entertainmentCycle() {
	if !a.g.EntertainmentReady {
		for _, rec := range a.g.Category(model.CategoryEntertainment) {
			if !rec.Quote.Open() {
				return
			}
		}
		a.alloc.EntertainmentDeallocate(a.g, a.market)
		a.g.EntertainmentReady = true
		a.log.Info("entertainment ready")
	}
	if n := a.alloc.EntertainmentAllocate(a.g, a.market); n > 0 {
		a.log.Debug("ticket allocation added", zap.Int("units", n))
	}
	a.execute(a.ent.Sell(a.g))
	a.execute(a.ent.ProcessAll(a.g))
}
