package model

import "fmt"

// BidState is the processing state of a bid on the market side.
type BidState int

const (
	BidNone BidState = iota
	BidPending
	BidValid
	BidRejected
)

func (s BidState) String() string {
	switch s {
	case BidPending:
		return "pending"
	case BidValid:
		return "valid"
	case BidRejected:
		return "rejected"
	default:
		return "none"
	}
}

// RejectReason carries the market's numeric rejection code.
type RejectReason int

const (
	RejectNone             RejectReason = 0
	RejectSelfTransaction  RejectReason = 5
	RejectBuyNotAllowed    RejectReason = 7
	RejectSellNotAllowed   RejectReason = 8
	RejectPriceNotBeaten   RejectReason = 15
	RejectActiveBidChanged RejectReason = 20
	RejectBidNotImproved   RejectReason = 21
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "not rejected"
	case RejectSelfTransaction:
		return "self transaction"
	case RejectBuyNotAllowed:
		return "buy not allowed"
	case RejectSellNotAllowed:
		return "sell not allowed"
	case RejectPriceNotBeaten:
		return "price not beaten"
	case RejectActiveBidChanged:
		return "active bid changed"
	case RejectBidNotImproved:
		return "bid not improved"
	default:
		return fmt.Sprintf("reason %d", int(r))
	}
}

// Order is a single price point bid. A negative quantity sells.
type Order struct {
	Auction  AuctionID `json:"auction"`
	Quantity int       `json:"quantity"`
	Price    float64   `json:"price"`
}

// Sell reports whether the order offers units.
func (o Order) Sell() bool { return o.Quantity < 0 }

// BidUpdate is the market's report on a previously submitted bid.
// Unfilled is the signed quantity that has not transacted yet.
type BidUpdate struct {
	ID       string       `json:"id"`
	Auction  AuctionID    `json:"auction"`
	Quantity int          `json:"quantity"`
	Unfilled int          `json:"unfilled"`
	Price    float64      `json:"price"`
	State    BidState     `json:"state"`
	Reason   RejectReason `json:"reason,omitempty"`
}

// Filled returns the absolute number of units transacted so far.
func (u BidUpdate) Filled() int {
	return abs(u.Quantity) - abs(u.Unfilled)
}

// Transaction reports units changing hands. A negative quantity is a sale.
type Transaction struct {
	Auction  AuctionID `json:"auction"`
	Quantity int       `json:"quantity"`
	Price    float64   `json:"price"`
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
