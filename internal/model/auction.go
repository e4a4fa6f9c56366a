package model

import "fmt"

// Category is the market an auction belongs to.
type Category int

const (
	CategoryFlight Category = iota
	CategoryHotel
	CategoryEntertainment
)

func (c Category) String() string {
	switch c {
	case CategoryFlight:
		return "flight"
	case CategoryHotel:
		return "hotel"
	case CategoryEntertainment:
		return "entertainment"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Direction of a flight.
type Direction int

const (
	Inbound Direction = iota
	Outbound
)

func (d Direction) String() string {
	if d == Inbound {
		return "inflight"
	}
	return "outflight"
}

// HotelTier is the hotel quality level.
type HotelTier int

const (
	CheapHotel HotelTier = iota
	GoodHotel
)

func (t HotelTier) String() string {
	if t == GoodHotel {
		return "good_hotel"
	}
	return "cheap_hotel"
}

// EntertainmentType identifies one of the three ticket kinds.
type EntertainmentType int

const (
	AlligatorWrestling EntertainmentType = iota
	Amusement
	Museum
)

// EntertainmentTypes lists all ticket kinds in their canonical order.
var EntertainmentTypes = [...]EntertainmentType{AlligatorWrestling, Amusement, Museum}

func (e EntertainmentType) String() string {
	switch e {
	case AlligatorWrestling:
		return "alligator_wrestling"
	case Amusement:
		return "amusement"
	case Museum:
		return "museum"
	default:
		return fmt.Sprintf("entertainment(%d)", int(e))
	}
}

const (
	NumAuctions      = 28
	NumFlights       = 8
	NumHotels        = 8
	NumEntertainment = 12
	NumClients       = 8

	// FirstDay and LastDay bound arrival and departure days.
	FirstDay = 1
	LastDay  = 5
	// Nights is the number of hotel nights (days 1..4).
	Nights = 4
)

// AuctionID addresses one of the 28 auctions.
//
// Layout: inbound flights days 1-4, outbound flights days 2-5, cheap hotel
// nights 1-4, good hotel nights 1-4, then entertainment kinds x nights 1-4.
type AuctionID int

const (
	firstFlight        AuctionID = 0
	firstHotel         AuctionID = 8
	firstEntertainment AuctionID = 16
)

// Auction is the static description of an auction.
type Auction struct {
	ID        AuctionID
	Category  Category
	Day       int
	Direction Direction         // flights only
	Tier      HotelTier         // hotels only
	Event     EntertainmentType // entertainment only
}

var table = buildTable()

func buildTable() [NumAuctions]Auction {
	var t [NumAuctions]Auction
	for id := AuctionID(0); id < NumAuctions; id++ {
		a := Auction{ID: id}
		switch {
		case id < firstHotel:
			a.Category = CategoryFlight
			if id < 4 {
				a.Direction = Inbound
				a.Day = int(id) + 1
			} else {
				a.Direction = Outbound
				a.Day = int(id-4) + 2
			}
		case id < firstEntertainment:
			a.Category = CategoryHotel
			off := int(id - firstHotel)
			a.Tier = HotelTier(off / Nights)
			a.Day = off%Nights + 1
		default:
			a.Category = CategoryEntertainment
			off := int(id - firstEntertainment)
			a.Event = EntertainmentType(off / Nights)
			a.Day = off%Nights + 1
		}
		t[id] = a
	}
	return t
}

// Valid reports whether id addresses a known auction.
func (id AuctionID) Valid() bool { return id >= 0 && id < NumAuctions }

// Lookup returns the static description of an auction. It panics on an
// invalid id.
func Lookup(id AuctionID) Auction {
	if !id.Valid() {
		panic(fmt.Sprintf("model: invalid auction id %d", int(id)))
	}
	return table[id]
}

// Category is shorthand for Lookup(id).Category.
func (id AuctionID) Category() Category { return Lookup(id).Category }

// Day is shorthand for Lookup(id).Day.
func (id AuctionID) Day() int { return Lookup(id).Day }

func (id AuctionID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("auction(%d)", int(id))
	}
	a := table[id]
	switch a.Category {
	case CategoryFlight:
		return fmt.Sprintf("%s_d%d", a.Direction, a.Day)
	case CategoryHotel:
		return fmt.Sprintf("%s_d%d", a.Tier, a.Day)
	default:
		return fmt.Sprintf("%s_d%d", a.Event, a.Day)
	}
}

// FlightAuction returns the flight auction for a direction and day.
// Inbound flights exist for days 1-4, outbound for days 2-5.
func FlightAuction(dir Direction, day int) (AuctionID, bool) {
	switch dir {
	case Inbound:
		if day < 1 || day > 4 {
			return 0, false
		}
		return firstFlight + AuctionID(day-1), true
	case Outbound:
		if day < 2 || day > 5 {
			return 0, false
		}
		return firstFlight + 4 + AuctionID(day-2), true
	}
	return 0, false
}

// HotelAuction returns the hotel auction for a tier and night (1-4).
func HotelAuction(tier HotelTier, night int) (AuctionID, bool) {
	if night < 1 || night > Nights || (tier != CheapHotel && tier != GoodHotel) {
		return 0, false
	}
	return firstHotel + AuctionID(int(tier)*Nights+night-1), true
}

// EntertainmentAuction returns the ticket auction for a kind and night (1-4).
func EntertainmentAuction(kind EntertainmentType, night int) (AuctionID, bool) {
	if night < 1 || night > Nights || kind < AlligatorWrestling || kind > Museum {
		return 0, false
	}
	return firstEntertainment + AuctionID(int(kind)*Nights+night-1), true
}

// MustHotel is HotelAuction for callers that already validated the night.
func MustHotel(tier HotelTier, night int) AuctionID {
	id, ok := HotelAuction(tier, night)
	if !ok {
		panic(fmt.Sprintf("model: no %s auction for night %d", tier, night))
	}
	return id
}

// MustFlight is FlightAuction for callers that already validated the day.
func MustFlight(dir Direction, day int) AuctionID {
	id, ok := FlightAuction(dir, day)
	if !ok {
		panic(fmt.Sprintf("model: no %s auction for day %d", dir, day))
	}
	return id
}

// Auctions lists every auction of a category in id order.
func Auctions(c Category) []AuctionID {
	var lo, hi AuctionID
	switch c {
	case CategoryFlight:
		lo, hi = firstFlight, firstHotel
	case CategoryHotel:
		lo, hi = firstHotel, firstEntertainment
	case CategoryEntertainment:
		lo, hi = firstEntertainment, NumAuctions
	default:
		return nil
	}
	ids := make([]AuctionID, 0, hi-lo)
	for id := lo; id < hi; id++ {
		ids = append(ids, id)
	}
	return ids
}
