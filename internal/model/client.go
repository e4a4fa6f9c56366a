package model

// GoodHotelThreshold is the hotel value above which a client prefers the good hotel.
const GoodHotelThreshold = 70

// Client holds one travel client's preferences.
//
// Arrival and Departure are 1-based days; the client needs hotel nights
// Arrival..Departure-1. Fun is indexed by EntertainmentType.
type Client struct {
	ID         int    `json:"id"`
	Arrival    int    `json:"arrival"`
	Departure  int    `json:"departure"`
	HotelValue int    `json:"hotel_value"`
	Fun        [3]int `json:"fun"`
}

// FirstNight is the first hotel night of the stay.
func (c Client) FirstNight() int { return c.Arrival }

// LastNight is the last hotel night of the stay.
func (c Client) LastNight() int { return c.Departure - 1 }

// Nights returns the stay length in nights.
func (c Client) Nights() int { return c.Departure - c.Arrival }

// PreferredTier is the hotel the client is assigned to.
func (c Client) PreferredTier() HotelTier {
	if c.HotelValue > GoodHotelThreshold {
		return GoodHotel
	}
	return CheapHotel
}

// Valid checks the stay window.
func (c Client) Valid() bool {
	return c.Arrival >= FirstDay && c.Arrival < c.Departure && c.Departure <= LastDay
}
