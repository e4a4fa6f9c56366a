// Package market defines the transport the agent trades through.
package market

import (
	"errors"
	"time"

	"TripBroker/internal/model"
)

var (
	// ErrGameNotRunning is returned for orders outside a running game.
	ErrGameNotRunning = errors.New("game not running")
	// ErrUnknownBid is returned when replacing a bid the market does not know.
	ErrUnknownBid = errors.New("unknown bid")
	// ErrAuctionClosed is returned for orders on a closed auction.
	ErrAuctionClosed = errors.New("auction closed")
)

// Market is the agent's connection to the auction server. Own counts units
// acquired through cleared bids, including the initial endowment.
type Market interface {
	Quote(id model.AuctionID) model.Quote
	Own(id model.AuctionID) int
	// SubmitBid places a new bid and returns its id.
	SubmitBid(o model.Order) (string, error)
	// ReplaceBid swaps the order of a live bid. The id stays the same.
	ReplaceBid(id string, o model.Order) error
	GameTime() time.Duration
	GameTimeLeft() time.Duration
}

// Handler receives market notifications. Implementations must not block
// the caller for long.
type Handler interface {
	GameStarted(clients []model.Client)
	GameStopped()
	QuoteUpdated(q model.Quote)
	// CategoryQuotesUpdated follows a batch of QuoteUpdated calls covering
	// every auction of the category.
	CategoryQuotesUpdated(c model.Category)
	BidUpdated(u model.BidUpdate)
	BidRejected(u model.BidUpdate)
	BidError(u model.BidUpdate, err error)
	TransactionReceived(t model.Transaction)
	AuctionClosed(id model.AuctionID)
}
