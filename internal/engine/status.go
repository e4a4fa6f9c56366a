package engine

import (
	"context"
	"slices"
	"time"

	"TripBroker/internal/model"
	"TripBroker/internal/state"
)

// AuctionStatus is the agent's view of one auction.
type AuctionStatus struct {
	ID              model.AuctionID    `json:"id"`
	Name            string             `json:"name"`
	Category        string             `json:"category"`
	Day             int                `json:"day"`
	Quote           model.Quote        `json:"quote"`
	Allocation      int                `json:"allocation"`
	LastBuyPrice    float64            `json:"last_buy_price"`
	LastSellPrice   float64            `json:"last_sell_price,omitempty"`
	Buy             *state.BidRecord   `json:"buy,omitempty"`
	Sell            *state.BidRecord   `json:"sell,omitempty"`
	Outstanding     int                `json:"outstanding,omitempty"`
	SellOutstanding int                `json:"sell_outstanding,omitempty"`
	Reserved        int                `json:"reserved,omitempty"`
	Closed          bool               `json:"closed"`
	Samples         int                `json:"samples"`
	History         []model.PricePoint `json:"history,omitempty"`
}

// Status is a point-in-time copy of the agent state.
type Status struct {
	GameID       string            `json:"game_id,omitempty"`
	Running      bool              `json:"running"`
	Elapsed      time.Duration     `json:"elapsed"`
	Left         time.Duration     `json:"left"`
	HotelMode    string            `json:"hotel_mode"`
	DemandReady  bool              `json:"demand_ready"`
	ClosedHotels []model.AuctionID `json:"closed_hotels"`
	Clients      []model.Client    `json:"clients"`
	Losses       []state.Loss      `json:"losses"`
	Repairs      []state.Repair    `json:"repairs"`
	Auctions     []AuctionStatus   `json:"auctions"`
	Report       *model.GameReport `json:"report,omitempty"`
}

type snapshotReq struct {
	History bool
	Resp    chan Status
}

// Snapshot returns the current state, read on the loop goroutine. With
// history set, every auction carries its price samples.
func (a *Agent) Snapshot(ctx context.Context, history bool) (Status, error) {
	req := snapshotReq{History: history, Resp: make(chan Status, 1)}
	select {
	case a.snapReq <- req:
	case <-a.done:
		return Status{}, ErrStopped
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
	select {
	case s := <-req.Resp:
		return s, nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

func (a *Agent) snapshot(history bool) Status {
	g := a.g
	s := Status{
		GameID:       a.gameID,
		Running:      a.running(),
		HotelMode:    g.HotelMode.String(),
		DemandReady:  g.DemandReady,
		ClosedHotels: g.ClosedHotels(),
		Clients:      slices.Clone(g.Clients),
		Losses:       slices.Clone(g.Losses),
		Repairs:      slices.Clone(g.Repairs),
		Report:       a.report,
	}
	if g.Started {
		s.Elapsed = a.market.GameTime()
		s.Left = a.market.GameTimeLeft()
	}
	for _, rec := range g.Auctions {
		as := AuctionStatus{
			ID:              rec.ID,
			Name:            rec.ID.String(),
			Category:        rec.Category.String(),
			Day:             rec.Day,
			Quote:           rec.Quote,
			Allocation:      rec.Allocation,
			LastBuyPrice:    rec.LastBuyPrice,
			LastSellPrice:   rec.LastSellPrice,
			Buy:             cloneRecord(rec.Buy),
			Sell:            cloneRecord(rec.Sell),
			Outstanding:     rec.Outstanding,
			SellOutstanding: rec.SellOutstanding,
			Reserved:        rec.Reserved,
			Closed:          g.HotelClosed(rec.ID),
			Samples:         len(rec.History),
		}
		if history {
			as.History = slices.Clone(rec.History)
		}
		s.Auctions = append(s.Auctions, as)
	}
	return s
}

func cloneRecord(r *state.BidRecord) *state.BidRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
