package engine

import "TripBroker/internal/model"

// EventKind identifies what an Event carries.
type EventKind int

const (
	EventGameStarted EventKind = iota
	EventGameStopped
	EventQuote
	EventCategoryQuotes
	EventBidUpdated
	EventBidRejected
	EventBidError
	EventTransaction
	EventAuctionClosed
	EventHotelWatch
	EventEntertainment
)

var eventNames = [...]string{
	EventGameStarted:    "game_started",
	EventGameStopped:    "game_stopped",
	EventQuote:          "quote",
	EventCategoryQuotes: "category_quotes",
	EventBidUpdated:     "bid_updated",
	EventBidRejected:    "bid_rejected",
	EventBidError:       "bid_error",
	EventTransaction:    "transaction",
	EventAuctionClosed:  "auction_closed",
	EventHotelWatch:     "hotel_watch",
	EventEntertainment:  "entertainment",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is one market notification or timer tick. Only the fields of its
// Kind are set.
type Event struct {
	Kind        EventKind
	Clients     []model.Client
	Quote       model.Quote
	Category    model.Category
	Update      model.BidUpdate
	Err         error
	Transaction model.Transaction
	Auction     model.AuctionID
}
