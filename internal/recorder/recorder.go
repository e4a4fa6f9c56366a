package recorder

import (
	"time"

	"TripBroker/internal/model"
)

// BidEvent records one order the agent sent to the market.
type BidEvent struct {
	GameID   string
	Auction  model.AuctionID
	Kind     string // "submit" or "replace"
	BidID    string
	Quantity int
	Price    float64
	Elapsed  time.Duration
	Err      string // empty when the market accepted the order
}

// TransactionEvent records units changing hands.
type TransactionEvent struct {
	GameID  string
	Elapsed time.Duration
	model.Transaction
}

// Recorder persists game history for later analysis.
type Recorder interface {
	RecordBid(evt *BidEvent) error
	RecordTransaction(evt *TransactionEvent) error
	// RecordGame stores the end-of-game report with its hotel closures and
	// client outcomes.
	RecordGame(report *model.GameReport) error
	Close() error
}
