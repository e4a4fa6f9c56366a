package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"TripBroker/internal/model"
)

// SQLiteRecorder persists game history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the status tooling read while a game is being written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bids (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			game_id     TEXT NOT NULL,
			elapsed_ms  INTEGER NOT NULL,
			auction     INTEGER NOT NULL,
			kind        TEXT NOT NULL,
			bid_id      TEXT,
			quantity    INTEGER NOT NULL,
			price       REAL NOT NULL,
			error       TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			game_id     TEXT NOT NULL,
			elapsed_ms  INTEGER NOT NULL,
			auction     INTEGER NOT NULL,
			quantity    INTEGER NOT NULL,
			price       REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS game_summaries (
			game_id         TEXT PRIMARY KEY,
			timestamp       INTEGER NOT NULL,
			started_at      INTEGER NOT NULL,
			length_ms       INTEGER NOT NULL,
			final_mode      TEXT,
			transactions    INTEGER,
			spent           REAL,
			earned          REAL,
			losses          INTEGER,
			repairs         INTEGER,
			hotel_win_ratio REAL,
			kept            INTEGER,
			reshaped        INTEGER,
			dropped         INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS hotel_closures (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id     TEXT NOT NULL,
			auction     INTEGER NOT NULL,
			allocation  INTEGER NOT NULL,
			own         INTEGER NOT NULL,
			bid_price   REAL,
			ask_price   REAL,
			closed_ms   INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS client_outcomes (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id            TEXT NOT NULL,
			client             INTEGER NOT NULL,
			initial_arrival    INTEGER,
			initial_departure  INTEGER,
			arrival            INTEGER,
			departure          INTEGER,
			tier               TEXT,
			outcome            TEXT NOT NULL,
			reason             TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS flight_results (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id   TEXT NOT NULL,
			auction   INTEGER NOT NULL,
			samples   INTEGER,
			paid      REAL,
			low       REAL,
			high      REAL,
			position  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bids_game ON bids(game_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_game ON transactions(game_id)`,
		`CREATE INDEX IF NOT EXISTS idx_hotel_game ON hotel_closures(game_id)`,
		`CREATE INDEX IF NOT EXISTS idx_client_game ON client_outcomes(game_id)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordBid stores one order sent to the market.
func (r *SQLiteRecorder) RecordBid(evt *BidEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO bids (
		timestamp, game_id, elapsed_ms, auction, kind, bid_id, quantity, price, error
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(), evt.GameID, evt.Elapsed.Milliseconds(), int(evt.Auction),
		evt.Kind, evt.BidID, evt.Quantity, evt.Price, evt.Err,
	)
	if err != nil {
		return fmt.Errorf("insert bid: %w", err)
	}
	return nil
}

// RecordTransaction stores units bought or sold.
func (r *SQLiteRecorder) RecordTransaction(evt *TransactionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO transactions (
		timestamp, game_id, elapsed_ms, auction, quantity, price
	) VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(), evt.GameID, evt.Elapsed.Milliseconds(), int(evt.Auction),
		evt.Quantity, evt.Price,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// RecordGame stores the report and its detail rows in one transaction.
// Recording a game again replaces everything stored for it.
func (r *SQLiteRecorder) RecordGame(rep *model.GameReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"hotel_closures", "client_outcomes", "flight_results"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE game_id = ?", rep.GameID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO game_summaries (
		game_id, timestamp, started_at, length_ms, final_mode, transactions,
		spent, earned, losses, repairs, hotel_win_ratio, kept, reshaped, dropped
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.GameID, time.Now().Unix(), rep.StartedAt.Unix(), rep.Length.Milliseconds(),
		rep.FinalMode, rep.Transactions, rep.Spent, rep.Earned, rep.Losses, rep.Repairs,
		rep.HotelWinRatio(), rep.Count(model.OutcomeKept), rep.Count(model.OutcomeReshaped),
		rep.Count(model.OutcomeDropped),
	)
	if err != nil {
		return fmt.Errorf("insert game summary: %w", err)
	}

	for _, h := range rep.Hotels {
		if _, err := tx.Exec(`INSERT INTO hotel_closures (
			game_id, auction, allocation, own, bid_price, ask_price, closed_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rep.GameID, int(h.Auction), h.Allocation, h.Own, h.BidPrice, h.AskPrice,
			h.ClosedAt.Milliseconds(),
		); err != nil {
			return fmt.Errorf("insert hotel closure: %w", err)
		}
	}
	for _, c := range rep.Clients {
		if _, err := tx.Exec(`INSERT INTO client_outcomes (
			game_id, client, initial_arrival, initial_departure, arrival, departure,
			tier, outcome, reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rep.GameID, c.Client, c.InitialArrival, c.InitialDeparture, c.Arrival,
			c.Departure, c.Tier, string(c.Outcome), c.Reason,
		); err != nil {
			return fmt.Errorf("insert client outcome: %w", err)
		}
	}
	for _, f := range rep.Flights {
		if _, err := tx.Exec(`INSERT INTO flight_results (
			game_id, auction, samples, paid, low, high, position
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rep.GameID, int(f.Auction), f.Samples, f.Paid, f.Low, f.High, f.Position,
		); err != nil {
			return fmt.Errorf("insert flight result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
