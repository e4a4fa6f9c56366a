package engine

import (
	"slices"

	"go.uber.org/zap"

	"TripBroker/internal/calculator"
	"TripBroker/internal/journal"
	"TripBroker/internal/model"
	"TripBroker/internal/notifier"
	"TripBroker/internal/state"
)

// Summary builds the end-of-game report from the current game.
func (a *Agent) Summary() *model.GameReport {
	g := a.g
	rep := &model.GameReport{
		GameID:       a.gameID,
		StartedAt:    a.startedAt,
		Length:       a.now(),
		FinalMode:    g.HotelMode.String(),
		Transactions: a.txCount,
		Spent:        a.spent,
		Earned:       a.earned,
		Losses:       len(g.Losses),
		Repairs:      len(g.Repairs),
	}

	for _, rec := range g.Category(model.CategoryFlight) {
		if rec.LastBuyPrice <= 0 {
			continue
		}
		rep.Flights = append(rep.Flights, flightResult(rec))
	}
	for _, c := range g.Closures {
		rep.Hotels = append(rep.Hotels, model.HotelResult{
			Auction:    c.Auction,
			Allocation: c.Allocation,
			Own:        c.Own,
			BidPrice:   c.BidPrice,
			AskPrice:   c.AskPrice,
			ClosedAt:   c.At,
		})
	}
	for i, c := range g.Clients {
		rep.Clients = append(rep.Clients, clientOutcome(g, i, c))
	}
	return rep
}

func flightResult(rec *state.Auction) model.FlightResult {
	res := model.FlightResult{Auction: rec.ID, Samples: len(rec.History), Paid: rec.LastBuyPrice}
	high, low, err := calculator.PriceRange(model.Asks(rec.History))
	if err != nil {
		return res
	}
	res.High, res.Low = high, low
	if pos, err := calculator.RangePosition(rec.LastBuyPrice, high, low); err == nil {
		res.Position = pos
	}
	return res
}

func clientOutcome(g *state.Game, i int, c model.Client) model.ClientOutcome {
	out := model.ClientOutcome{
		Client:    c.ID,
		Arrival:   c.Arrival,
		Departure: c.Departure,
		Tier:      c.PreferredTier().String(),
		Outcome:   model.OutcomeKept,
	}
	if i < len(g.Initial) {
		out.InitialArrival = g.Initial[i].Arrival
		out.InitialDeparture = g.Initial[i].Departure
	}
	switch {
	case g.Dropped(i):
		out.Outcome = model.OutcomeDropped
		idx := slices.IndexFunc(g.Losses, func(l state.Loss) bool { return l.Client == i && l.Auction < 0 })
		if idx >= 0 {
			out.Reason = g.Losses[idx].Reason
		}
	case out.Arrival != out.InitialArrival || out.Departure != out.InitialDeparture:
		out.Outcome = model.OutcomeReshaped
	}
	return out
}

// histories returns the price history of every auction for the journal.
func (a *Agent) histories() []journal.History {
	out := make([]journal.History, 0, model.NumAuctions)
	for _, rec := range a.g.Auctions {
		out = append(out, journal.History{
			Auction: rec.ID,
			Name:    rec.ID.String(),
			Points:  slices.Clone(rec.History),
		})
	}
	return out
}

// finish records the report everywhere it goes. The Telegram message is
// sent in the background and awaited when the loop exits.
func (a *Agent) finish() {
	rep := a.Summary()
	a.report = rep
	a.log.Info("game stopped",
		zap.String("game", rep.GameID),
		zap.Int("kept", rep.Count(model.OutcomeKept)),
		zap.Int("reshaped", rep.Count(model.OutcomeReshaped)),
		zap.Int("dropped", rep.Count(model.OutcomeDropped)),
		zap.Float64("hotel_win_ratio", rep.HotelWinRatio()),
		zap.Float64("spent", rep.Spent),
	)

	if err := a.rec.RecordGame(rep); err != nil {
		a.log.Error("record game", zap.Error(err))
	}

	if a.journal != nil {
		now := a.now()
		for _, l := range a.g.Losses {
			if err := a.journal.Write(journal.KindLoss, l.At, l); err != nil {
				a.log.Error("journal loss", zap.Error(err))
			}
		}
		for _, r := range a.g.Repairs {
			if err := a.journal.Write(journal.KindRepair, r.At, r); err != nil {
				a.log.Error("journal repair", zap.Error(err))
			}
		}
		if err := a.journal.Finish(now, a.histories(), rep); err != nil {
			a.log.Error("journal finish", zap.Error(err))
		}
	}

	if a.notifier != nil {
		text := notifier.FormatGameReport(rep)
		ctx := a.ctx
		a.bg.Add(1)
		go func() {
			defer a.bg.Done()
			if err := a.notifier.SendWithRetry(ctx, text, a.cfg.ReportRetries); err != nil {
				a.log.Error("send game report", zap.Error(err))
			}
		}()
	}
}

// Wait blocks until background report delivery has finished.
func (a *Agent) Wait() { a.bg.Wait() }
