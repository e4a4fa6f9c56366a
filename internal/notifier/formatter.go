package notifier

import (
	"fmt"
	"strings"

	"TripBroker/internal/model"
)

// FormatGameReport formats the end-of-game report into a Telegram message.
func FormatGameReport(r *model.GameReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✈️ <b>TripBroker game report</b> | %s\n", r.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("game: <code>%s</code> (%s, hotel mode %s)\n\n", r.GameID, r.Length.Round(1e9), r.FinalMode))

	// Clients
	b.WriteString("👥 <b>Clients:</b>\n")
	b.WriteString(fmt.Sprintf("  kept %d | reshaped %d | dropped %d\n",
		r.Count(model.OutcomeKept), r.Count(model.OutcomeReshaped), r.Count(model.OutcomeDropped)))
	for _, c := range r.Clients {
		if c.Outcome == model.OutcomeKept {
			continue
		}
		line := fmt.Sprintf("  #%d %s: d%d-d%d → d%d-d%d", c.Client, c.Outcome,
			c.InitialArrival, c.InitialDeparture, c.Arrival, c.Departure)
		if c.Reason != "" {
			line += " (" + c.Reason + ")"
		}
		b.WriteString(line + "\n")
	}

	// Hotels
	b.WriteString(fmt.Sprintf("\n🏨 <b>Hotels:</b> won %.0f%%\n", r.HotelWinRatio()*100))
	for _, h := range r.Hotels {
		mark := "✅"
		if !h.Won() {
			mark = "❌"
		}
		b.WriteString(fmt.Sprintf("  %s %s: %d/%d bid %.0f ask %.0f\n",
			mark, h.Auction, h.Own, h.Allocation, h.BidPrice, h.AskPrice))
	}

	// Flights
	if len(r.Flights) > 0 {
		b.WriteString("\n🛫 <b>Flights:</b>\n")
		for _, f := range r.Flights {
			b.WriteString(fmt.Sprintf("  %s: paid %.0f (range %.0f-%.0f, %.0f%%)\n",
				f.Auction, f.Paid, f.Low, f.High, f.Position*100))
		}
	}

	b.WriteString(fmt.Sprintf("\n💰 spent %.0f | earned %.0f | %d transactions\n", r.Spent, r.Earned, r.Transactions))
	if r.Losses > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ %d losses, %d repairs\n", r.Losses, r.Repairs))
	}
	return b.String()
}
