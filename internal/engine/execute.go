package engine

import (
	"go.uber.org/zap"

	"TripBroker/internal/bidding"
	"TripBroker/internal/journal"
	"TripBroker/internal/recorder"
)

// execute sends actions to the market in order. A submit the market refuses
// is rolled back so a later event retries it; a refused replace leaves the
// previous bid active.
func (a *Agent) execute(actions []bidding.Action) {
	if len(actions) == 0 {
		return
	}
	now := a.now()
	for _, act := range actions {
		evt := &recorder.BidEvent{
			GameID:   a.gameID,
			Auction:  act.Order.Auction,
			Kind:     act.Kind.String(),
			BidID:    act.BidID,
			Quantity: act.Order.Quantity,
			Price:    act.Order.Price,
			Elapsed:  now,
		}

		switch act.Kind {
		case bidding.Submit:
			id, err := a.market.SubmitBid(act.Order)
			if err != nil {
				a.log.Error("submit bid", zap.Stringer("action", act), zap.Error(err))
				bidding.Rollback(a.g, act)
				evt.Err = err.Error()
				break
			}
			if rec := bidding.Record(a.g, act); rec != nil {
				rec.ID = id
			}
			evt.BidID = id
			a.log.Debug("bid submitted", zap.String("bid", id), zap.Stringer("action", act))
		case bidding.Replace:
			if err := a.market.ReplaceBid(act.BidID, act.Order); err != nil {
				a.log.Error("replace bid", zap.Stringer("action", act), zap.Error(err))
				evt.Err = err.Error()
				break
			}
			a.log.Debug("bid replaced", zap.String("bid", act.BidID), zap.Stringer("action", act))
		}

		if err := a.rec.RecordBid(evt); err != nil {
			a.log.Error("record bid", zap.Error(err))
		}
		if a.journal != nil {
			if err := a.journal.Write(journal.KindBid, now, evt); err != nil {
				a.log.Error("journal bid", zap.Error(err))
			}
		}
	}
}
