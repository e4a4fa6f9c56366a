package bidding

import (
	"time"

	"go.uber.org/zap"

	"TripBroker/internal/model"
	"TripBroker/internal/predictor"
	"TripBroker/internal/state"
)

// FlightPolicy holds the flight deadline windows.
type FlightPolicy struct {
	// OpeningWindow is the game time during which flights are bought at once.
	OpeningWindow time.Duration
	// ClosingWindow is the time left below which flights are bought at once.
	ClosingWindow time.Duration
	// Horizon is the number of flight price samples in a game.
	Horizon int
}

// DefaultFlightPolicy returns the standard flight windows.
func DefaultFlightPolicy() FlightPolicy {
	return FlightPolicy{
		OpeningWindow: 2 * time.Minute,
		ClosingWindow: 10 * time.Second,
		Horizon:       predictor.FlightHorizon,
	}
}

// Flight buys flight allocations at the ask price, timed by the predictor.
type Flight struct {
	log    *zap.Logger
	policy FlightPolicy
}

// NewFlight creates a flight bidder.
func NewFlight(log *zap.Logger, policy FlightPolicy) *Flight {
	if log == nil {
		log = zap.NewNop()
	}
	if policy.Horizon <= 0 {
		policy.Horizon = predictor.FlightHorizon
	}
	return &Flight{log: log, policy: policy}
}

// Deadline reports whether the deadline override is active.
func (f *Flight) Deadline(elapsed, left time.Duration) bool {
	return elapsed < f.policy.OpeningWindow || left <= f.policy.ClosingWindow
}

// Process submits one bid per flight auction with a pending allocation. The
// allocation is cleared on submit; flights are never re-bid.
func (f *Flight) Process(g *state.Game, elapsed, left time.Duration) []Action {
	deadline := f.Deadline(elapsed, left)
	var actions []Action

	for _, a := range g.Category(model.CategoryFlight) {
		if a.Allocation <= 0 || a.Quote.Ask <= 0 {
			continue
		}
		if !deadline && !f.buyNow(a) {
			continue
		}

		act := Action{
			Kind:     Submit,
			Order:    model.Order{Auction: a.ID, Quantity: a.Allocation, Price: a.Quote.Ask},
			Previous: a.LastBuyPrice,
		}
		a.LastBuyPrice = a.Quote.Ask
		a.Buy = pending("", a.Allocation, a.Quote.Ask)
		a.Allocation = 0
		actions = append(actions, act)

		f.log.Info("flight bid",
			zap.Stringer("auction", a.ID),
			zap.Int("quantity", act.Order.Quantity),
			zap.Float64("price", act.Order.Price),
			zap.Bool("deadline", deadline),
		)
	}
	return actions
}

func (f *Flight) buyNow(a *state.Auction) bool {
	p, err := predictor.NewFlightWithHorizon(model.Asks(a.History), f.policy.Horizon)
	if err != nil {
		// Not enough history to forecast: do not wait on a guess.
		f.log.Debug("flight forecast unavailable, buying now",
			zap.Stringer("auction", a.ID), zap.Error(err))
		return true
	}
	buy := p.ShouldBuy()
	f.log.Debug("flight forecast",
		zap.Stringer("auction", a.ID),
		zap.Int("samples", len(a.History)),
		zap.Int("degree", p.Degree()),
		zap.Bool("buy_now", buy),
	)
	return buy
}
