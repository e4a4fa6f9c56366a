// Package engine runs the bidding agent: it serializes market notifications
// and timer ticks onto one goroutine, feeds them to the allocation and
// bidding logic and executes the resulting orders.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"TripBroker/internal/allocation"
	"TripBroker/internal/bidding"
	"TripBroker/internal/journal"
	"TripBroker/internal/market"
	"TripBroker/internal/model"
	"TripBroker/internal/recorder"
	"TripBroker/internal/state"
)

// ErrStopped is returned by requests made after the loop has exited.
var ErrStopped = errors.New("engine stopped")

// Config holds the bidding policies and loop settings.
type Config struct {
	Flight        bidding.FlightPolicy
	Hotel         bidding.HotelPolicy
	Entertainment bidding.EntertainmentPolicy
	TiePolicy     allocation.TiePolicy
	// DemandSamples is the flight history length below which a quote batch
	// still counts as the first one for demand estimation.
	DemandSamples int
	InboxSize     int
	// ReportRetries is passed to the notifier for the end-of-game report.
	ReportRetries int
}

// DefaultConfig returns the standard policies.
func DefaultConfig() Config {
	return Config{
		Flight:        bidding.DefaultFlightPolicy(),
		Hotel:         bidding.DefaultHotelPolicy(),
		Entertainment: bidding.DefaultEntertainmentPolicy(),
		TiePolicy:     allocation.TieTypeOrder,
		DemandSamples: 8,
		InboxSize:     1024,
		ReportRetries: 3,
	}
}

// Timers controls the periodic hotel watch.
type Timers interface {
	StartHotelWatch() error
	StopHotelWatch()
}

// Journal receives the per-game event log.
type Journal interface {
	Begin(gameID string, clients []model.Client) error
	Write(kind string, elapsed time.Duration, v any) error
	Finish(elapsed time.Duration, histories []journal.History, report *model.GameReport) error
}

// Notifier delivers the end-of-game report.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Deps are the collaborators of an Agent. Only Market is required.
type Deps struct {
	Market   market.Market
	Recorder recorder.Recorder
	Journal  Journal
	Notifier Notifier
	Log      *zap.Logger
}

// Agent is the bidding agent. It implements market.Handler; every entry
// point only enqueues, and Run applies events one at a time.
type Agent struct {
	cfg      Config
	log      *zap.Logger
	market   market.Market
	rec      recorder.Recorder
	journal  Journal
	notifier Notifier
	timers   Timers

	alloc  *allocation.Allocator
	flight *bidding.Flight
	hotel  *bidding.Hotel
	ent    *bidding.Entertainment

	g         *state.Game
	gameID    string
	startedAt time.Time
	txCount   int
	spent     float64
	earned    float64
	report    *model.GameReport

	ctx     context.Context
	inbox   chan Event
	snapReq chan snapshotReq
	done    chan struct{}
	bg      sync.WaitGroup
}

var _ market.Handler = (*Agent)(nil)

// New creates an Agent. A nil Recorder or Log falls back to a no-op.
func New(cfg Config, d Deps) *Agent {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	rec := d.Recorder
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = 1024
	}
	alloc := allocation.New(log.Named("allocation"), cfg.TiePolicy)
	return &Agent{
		cfg:      cfg,
		log:      log,
		market:   d.Market,
		rec:      rec,
		journal:  d.Journal,
		notifier: d.Notifier,
		alloc:    alloc,
		flight:   bidding.NewFlight(log.Named("flight"), cfg.Flight),
		hotel:    bidding.NewHotel(log.Named("hotel"), cfg.Hotel, alloc),
		ent:      bidding.NewEntertainment(log.Named("entertainment"), cfg.Entertainment),
		g:        state.New(),
		ctx:      context.Background(),
		inbox:    make(chan Event, cfg.InboxSize),
		snapReq:  make(chan snapshotReq),
		done:     make(chan struct{}),
	}
}

// SetTimers attaches the hotel watch control. It must be called before Run.
func (a *Agent) SetTimers(t Timers) { a.timers = t }

// Run applies queued events until ctx is done. Reports still being sent are
// awaited before it returns.
func (a *Agent) Run(ctx context.Context) error {
	a.ctx = ctx
	defer func() {
		close(a.done)
		a.bg.Wait()
	}()
	a.log.Info("agent loop started")

	for {
		select {
		case <-ctx.Done():
			a.log.Info("agent loop stopped")
			return ctx.Err()
		case ev := <-a.inbox:
			a.Handle(ev)
		case req := <-a.snapReq:
			req.Resp <- a.snapshot(req.History)
		}
	}
}

// post enqueues a market event. Market events are never dropped; the call
// blocks while the inbox is full.
func (a *Agent) post(ev Event) {
	select {
	case a.inbox <- ev:
	case <-a.done:
	}
}

// tick enqueues a timer event, skipping it when the loop is behind.
func (a *Agent) tick(ev Event) {
	select {
	case a.inbox <- ev:
	default:
		a.log.Debug("timer tick skipped, inbox full", zap.Stringer("event", ev.Kind))
	}
}

func (a *Agent) GameStarted(clients []model.Client) {
	a.post(Event{Kind: EventGameStarted, Clients: clients})
}
func (a *Agent) GameStopped()               { a.post(Event{Kind: EventGameStopped}) }
func (a *Agent) QuoteUpdated(q model.Quote) { a.post(Event{Kind: EventQuote, Quote: q}) }
func (a *Agent) CategoryQuotesUpdated(c model.Category) {
	a.post(Event{Kind: EventCategoryQuotes, Category: c})
}
func (a *Agent) BidUpdated(u model.BidUpdate)  { a.post(Event{Kind: EventBidUpdated, Update: u}) }
func (a *Agent) BidRejected(u model.BidUpdate) { a.post(Event{Kind: EventBidRejected, Update: u}) }
func (a *Agent) BidError(u model.BidUpdate, err error) {
	a.post(Event{Kind: EventBidError, Update: u, Err: err})
}
func (a *Agent) TransactionReceived(t model.Transaction) {
	a.post(Event{Kind: EventTransaction, Transaction: t})
}
func (a *Agent) AuctionClosed(id model.AuctionID) {
	a.post(Event{Kind: EventAuctionClosed, Auction: id})
}

// HotelWatchTick is the periodic hotel deadline check.
func (a *Agent) HotelWatchTick() { a.tick(Event{Kind: EventHotelWatch}) }

// EntertainmentTick is the periodic entertainment cycle.
func (a *Agent) EntertainmentTick() { a.tick(Event{Kind: EventEntertainment}) }
