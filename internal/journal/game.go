package journal

import (
	"encoding/json"
	"fmt"
	"time"

	"TripBroker/internal/model"
)

// Entry kinds.
const (
	KindStart   = "start"
	KindBid     = "bid"
	KindClosure = "closure"
	KindLoss    = "loss"
	KindRepair  = "repair"
	KindHistory = "history"
	KindReport  = "report"
)

// Entry is one line of a game journal.
type Entry struct {
	Kind    string          `json:"kind"`
	Elapsed time.Duration   `json:"elapsed"`
	Data    json.RawMessage `json:"data"`
}

// History is the full price history of one auction.
type History struct {
	Auction model.AuctionID    `json:"auction"`
	Name    string             `json:"name"`
	Points  []model.PricePoint `json:"points"`
}

// Start is written when a game begins.
type Start struct {
	GameID  string         `json:"game_id"`
	At      time.Time      `json:"at"`
	Clients []model.Client `json:"clients"`
}

// GameJournal writes one journal file per game.
type GameJournal struct {
	w *Writer
}

// NewGameJournal creates a journal writing one file per game under dir.
func NewGameJournal(dir string) *GameJournal {
	return &GameJournal{w: NewWriter(dir, "game")}
}

// Begin opens the file for gameID and writes the start entry.
func (j *GameJournal) Begin(gameID string, clients []model.Client) error {
	if err := j.w.Open(gameID); err != nil {
		return err
	}
	return j.Write(KindStart, 0, Start{GameID: gameID, At: time.Now(), Clients: clients})
}

// Write appends an entry of the given kind.
func (j *GameJournal) Write(kind string, elapsed time.Duration, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}
	return j.w.Write(Entry{Kind: kind, Elapsed: elapsed, Data: data})
}

// Finish writes the price histories and the report, then closes the file.
func (j *GameJournal) Finish(elapsed time.Duration, histories []History, report *model.GameReport) error {
	for _, h := range histories {
		if err := j.Write(KindHistory, elapsed, h); err != nil {
			return err
		}
	}
	if err := j.Write(KindReport, elapsed, report); err != nil {
		return err
	}
	return j.w.Close()
}

// Path returns the journal file of a game.
func (j *GameJournal) Path(gameID string) string { return j.w.Path(gameID) }

func (j *GameJournal) Close() error { return j.w.Close() }

// Read returns every entry of a journal file.
func Read(path string) ([]Entry, error) {
	var out []Entry
	err := ReadLines(path, func(line []byte) error {
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, err
}
