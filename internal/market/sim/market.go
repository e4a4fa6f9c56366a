// Package sim is an in-process travel auction market for local runs and
// end-to-end tests. Prices follow the game's published dynamics closely
// enough to exercise every agent path; competitors are modelled as price
// pressure, not as agents.
package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"TripBroker/internal/market"
	"TripBroker/internal/model"
)

// Config tunes the simulated game.
type Config struct {
	Seed int64
	// Length is the game length in game time.
	Length time.Duration
	// Step is the game time advanced per tick.
	Step time.Duration
	// Speed is game time per wall-clock time; 60 plays a game in 9 seconds.
	Speed float64
	// FlightInterval is the time between flight price updates.
	FlightInterval time.Duration
}

// DefaultConfig returns a real-time game.
func DefaultConfig() Config {
	return Config{
		Seed:           1,
		Length:         9 * time.Minute,
		Step:           time.Second,
		Speed:          1,
		FlightInterval: 10 * time.Second,
	}
}

type bid struct {
	id       string
	order    model.Order
	unfilled int
	state    model.BidState
	reason   model.RejectReason
}

func (b *bid) update() model.BidUpdate {
	return model.BidUpdate{
		ID:       b.id,
		Auction:  b.order.Auction,
		Quantity: b.order.Quantity,
		Unfilled: b.unfilled,
		Price:    b.order.Price,
		State:    b.state,
		Reason:   b.reason,
	}
}

type auction struct {
	quote model.Quote
	own   int
	bids  []*bid
	// flights: final drift of the price walk
	drift float64
	// entertainment: mid price of the other traders
	mid float64
}

// Market is a simulated auction server. It implements market.Market; Run
// drives the game clock and delivers notifications to a market.Handler.
type Market struct {
	cfg Config
	log *zap.Logger
	rng *rand.Rand

	mu         sync.Mutex
	running    bool
	elapsed    time.Duration
	auctions   [model.NumAuctions]*auction
	bids       map[string]*bid
	clients    []model.Client
	closeOrder []model.AuctionID
	outbox     []func(market.Handler)
}

var _ market.Market = (*Market)(nil)

// New creates a simulated market. Zero fields of cfg take their defaults.
func New(cfg Config, log *zap.Logger) *Market {
	def := DefaultConfig()
	if cfg.Length <= 0 {
		cfg.Length = def.Length
	}
	if cfg.Step <= 0 {
		cfg.Step = def.Step
	}
	if cfg.Speed <= 0 {
		cfg.Speed = def.Speed
	}
	if cfg.FlightInterval <= 0 {
		cfg.FlightInterval = def.FlightInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Market{
		cfg:  cfg,
		log:  log,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
		bids: map[string]*bid{},
	}
}

// Run plays one game: it starts the game, advances the clock every
// Step/Speed of wall time and returns when the game ends or ctx is done.
func (m *Market) Run(ctx context.Context, h market.Handler) error {
	m.Start()
	m.Deliver(h)

	interval := time.Duration(float64(m.cfg.Step) / m.cfg.Speed)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done := m.Step()
			m.Deliver(h)
			if done {
				return nil
			}
		}
	}
}

// Deliver dispatches queued notifications outside the market lock, so a
// handler may call back into the market.
func (m *Market) Deliver(h market.Handler) {
	m.mu.Lock()
	pending := m.outbox
	m.outbox = nil
	m.mu.Unlock()

	for _, fn := range pending {
		fn(h)
	}
}

func (m *Market) emit(fn func(market.Handler)) { m.outbox = append(m.outbox, fn) }

func (m *Market) emitQuote(a *auction) {
	q := a.quote
	m.emit(func(h market.Handler) { h.QuoteUpdated(q) })
}

// Start sets up a new game: clients, endowment, opening prices and the hotel
// closing order.
func (m *Market) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.running = true
	m.elapsed = 0
	m.bids = map[string]*bid{}
	m.clients = m.generateClients()

	for id := model.AuctionID(0); id < model.NumAuctions; id++ {
		a := &auction{quote: model.Quote{Auction: id}}
		switch id.Category() {
		case model.CategoryFlight:
			a.quote.Ask = float64(250 + m.rng.Intn(151))
			a.quote.Status = model.QuoteOpen
			a.drift = float64(m.rng.Intn(41) - 10)
		case model.CategoryHotel:
			a.quote.Status = model.QuoteInitializing
		case model.CategoryEntertainment:
			a.mid = float64(60 + m.rng.Intn(61))
			a.quote.Ask, a.quote.Bid = a.mid+5, a.mid-5
			a.quote.Status = model.QuoteOpen
			a.own = m.rng.Intn(3)
		}
		m.auctions[id] = a
	}

	hotels := model.Auctions(model.CategoryHotel)
	m.closeOrder = make([]model.AuctionID, len(hotels))
	for i, j := range m.rng.Perm(len(hotels)) {
		m.closeOrder[i] = hotels[j]
	}

	clients := append([]model.Client(nil), m.clients...)
	m.emit(func(h market.Handler) { h.GameStarted(clients) })
	m.emitFlights()
	for _, id := range model.Auctions(model.CategoryEntertainment) {
		m.emitQuote(m.auctions[id])
	}
	m.log.Info("simulated game started", zap.Int64("seed", m.cfg.Seed))
}

func (m *Market) generateClients() []model.Client {
	clients := make([]model.Client, model.NumClients)
	for i := range clients {
		arrival := model.FirstDay + m.rng.Intn(model.LastDay-model.FirstDay)
		departure := arrival + 1 + m.rng.Intn(model.LastDay-arrival)
		fun := m.rng.Perm(201)
		clients[i] = model.Client{
			ID:         i,
			Arrival:    arrival,
			Departure:  departure,
			HotelValue: 50 + m.rng.Intn(101),
			Fun:        [3]int{fun[0], fun[1], fun[2]},
		}
	}
	return clients
}

// Step advances the game by one step and reports whether it ended.
func (m *Market) Step() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return true
	}

	m.elapsed += m.cfg.Step
	if m.elapsed%m.cfg.FlightInterval == 0 {
		m.stepFlights()
	}
	m.stepHotels()
	m.stepEntertainment()

	if m.elapsed >= m.cfg.Length {
		m.running = false
		for _, a := range m.auctions {
			a.quote.Status = model.QuoteClosed
		}
		m.emit(func(h market.Handler) { h.GameStopped() })
		m.log.Info("simulated game stopped")
		return true
	}
	return false
}

func (m *Market) stepFlights() {
	t := m.elapsed.Seconds() / m.cfg.Length.Seconds()
	for _, id := range model.Auctions(model.CategoryFlight) {
		a := m.auctions[id]
		x := 10 + t*(a.drift-10)
		var delta float64
		switch {
		case x > 0:
			delta = -10 + m.rng.Float64()*(x+10)
		case x < 0:
			delta = x + m.rng.Float64()*(10-x)
		default:
			delta = -10 + m.rng.Float64()*20
		}
		a.quote.Ask = math.Round(math.Min(math.Max(a.quote.Ask+delta, 150), 800))
		for _, b := range a.bids {
			m.matchFlight(a, b)
		}
	}
	m.emitFlights()
}

func (m *Market) emitFlights() {
	for _, id := range model.Auctions(model.CategoryFlight) {
		m.emitQuote(m.auctions[id])
	}
	m.emit(func(h market.Handler) { h.CategoryQuotesUpdated(model.CategoryFlight) })
}

func (m *Market) stepHotels() {
	for _, id := range model.Auctions(model.CategoryHotel) {
		a := m.auctions[id]
		switch a.quote.Status {
		case model.QuoteInitializing:
			a.quote.Status = model.QuoteOpen
			a.quote.Ask = float64(10 + m.rng.Intn(30))
			m.emitQuote(a)
		case model.QuoteOpen:
			if m.rng.Float64() < 0.3 {
				a.quote.Ask += float64(1 + m.rng.Intn(8))
				m.emitQuote(a)
			}
		}
	}

	if m.elapsed%time.Minute != 0 {
		return
	}
	minute := int(m.elapsed / time.Minute)
	if minute < 1 || minute > len(m.closeOrder) {
		return
	}
	m.closeHotel(m.closeOrder[minute-1])
}

// closeHotel clears a hotel auction: buy bids at or above the final ask win
// their units at the ask. The closed quote is announced before the closure
// itself.
func (m *Market) closeHotel(id model.AuctionID) {
	a := m.auctions[id]
	a.quote.Status = model.QuoteClosed
	m.emitQuote(a)

	for _, b := range a.bids {
		if b.state != model.BidValid || b.unfilled <= 0 || b.order.Price < a.quote.Ask {
			continue
		}
		m.fill(a, b, b.unfilled, a.quote.Ask)
	}
	m.emit(func(h market.Handler) { h.AuctionClosed(id) })
	m.log.Debug("hotel auction closed", zap.Stringer("auction", id), zap.Float64("price", a.quote.Ask), zap.Int("own", a.own))
}

func (m *Market) stepEntertainment() {
	for _, id := range model.Auctions(model.CategoryEntertainment) {
		a := m.auctions[id]
		a.mid = math.Min(math.Max(a.mid+float64(m.rng.Intn(7)-3), 20), 200)
		a.quote.Ask, a.quote.Bid = a.mid+5, a.mid-5
		for _, b := range a.bids {
			m.matchEntertainment(a, b)
		}
		if m.elapsed%(5*time.Second) == 0 {
			m.emitQuote(a)
		}
	}
}

func (m *Market) matchFlight(a *auction, b *bid) {
	if b.state == model.BidValid && b.unfilled > 0 && b.order.Price >= a.quote.Ask {
		m.fill(a, b, b.unfilled, a.quote.Ask)
	}
}

// matchEntertainment clears at most one unit per step against the other
// traders' best price.
func (m *Market) matchEntertainment(a *auction, b *bid) {
	if b.state != model.BidValid || b.unfilled == 0 {
		return
	}
	switch {
	case b.unfilled > 0 && b.order.Price >= a.quote.Ask:
		m.fill(a, b, 1, a.quote.Ask)
	case b.unfilled < 0 && b.order.Price <= a.quote.Bid && a.own > 0:
		m.fill(a, b, -1, a.quote.Bid)
	}
}

func (m *Market) fill(a *auction, b *bid, qty int, price float64) {
	b.unfilled -= qty
	a.own += qty
	u := b.update()
	tx := model.Transaction{Auction: b.order.Auction, Quantity: qty, Price: price}
	m.emit(func(h market.Handler) { h.BidUpdated(u) })
	m.emit(func(h market.Handler) { h.TransactionReceived(tx) })
}

// Quote returns the current quote of an auction.
func (m *Market) Quote(id model.AuctionID) model.Quote {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !id.Valid() || m.auctions[id] == nil {
		return model.Quote{Auction: id}
	}
	return m.auctions[id].quote
}

// Own returns the units of an auction the agent holds.
func (m *Market) Own(id model.AuctionID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !id.Valid() || m.auctions[id] == nil {
		return 0
	}
	return m.auctions[id].own
}

// GameTime returns the game time elapsed.
func (m *Market) GameTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsed
}

// GameTimeLeft returns the game time remaining.
func (m *Market) GameTimeLeft() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return max(m.cfg.Length-m.elapsed, 0)
}

// Clients returns the client preferences of the current game.
func (m *Market) Clients() []model.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Client(nil), m.clients...)
}

// SubmitBid places a bid. Rejections are reported through BidRejected; the
// returned error covers orders the market cannot take at all.
func (m *Market) SubmitBid(o model.Order) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, err := m.accept(o)
	if err != nil {
		return "", err
	}
	b := &bid{id: uuid.NewString(), order: o, unfilled: o.Quantity}
	m.bids[b.id] = b
	a.bids = append(a.bids, b)
	m.validate(a, b)
	return b.id, nil
}

// ReplaceBid swaps the order of a live bid, keeping its id. Units already
// filled stay filled; the new order starts unfilled.
func (m *Market) ReplaceBid(id string, o model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bids[id]
	if !ok {
		return fmt.Errorf("replace %s: %w", id, market.ErrUnknownBid)
	}
	if b.order.Auction != o.Auction {
		return fmt.Errorf("replace %s: bid is for auction %s, not %s", id, b.order.Auction, o.Auction)
	}
	a, err := m.accept(o)
	if err != nil {
		return err
	}
	b.order = o
	b.unfilled = o.Quantity
	b.reason = model.RejectNone
	m.validate(a, b)
	return nil
}

func (m *Market) accept(o model.Order) (*auction, error) {
	if !m.running {
		return nil, market.ErrGameNotRunning
	}
	if !o.Auction.Valid() {
		return nil, fmt.Errorf("auction %d: invalid id", int(o.Auction))
	}
	if o.Quantity == 0 || o.Price <= 0 {
		return nil, fmt.Errorf("auction %s: empty order", o.Auction)
	}
	a := m.auctions[o.Auction]
	if a.quote.Closed() {
		return nil, fmt.Errorf("auction %s: %w", o.Auction, market.ErrAuctionClosed)
	}
	return a, nil
}

// validate applies the per-category bid rules and queues the outcome.
func (m *Market) validate(a *auction, b *bid) {
	reject := func(r model.RejectReason) {
		b.state, b.reason = model.BidRejected, r
		u := b.update()
		m.emit(func(h market.Handler) { h.BidRejected(u) })
	}

	switch cat := b.order.Auction.Category(); {
	case b.order.Sell() && cat != model.CategoryEntertainment:
		reject(model.RejectSellNotAllowed)
		return
	case b.order.Sell() && -b.order.Quantity > a.own:
		reject(model.RejectSellNotAllowed)
		return
	case cat == model.CategoryHotel && b.order.Price <= a.quote.Ask:
		reject(model.RejectPriceNotBeaten)
		return
	}

	b.state = model.BidValid
	u := b.update()
	m.emit(func(h market.Handler) { h.BidUpdated(u) })

	switch b.order.Auction.Category() {
	case model.CategoryFlight:
		m.matchFlight(a, b)
	case model.CategoryEntertainment:
		m.matchEntertainment(a, b)
	}
}
