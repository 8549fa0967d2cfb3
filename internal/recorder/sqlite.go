package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			direction TEXT NOT NULL,
			score     INTEGER,
			reasons   TEXT,
			approved  INTEGER,
			reasoning TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(timestamp)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			symbol     TEXT NOT NULL,
			underlying TEXT,
			side       TEXT NOT NULL,
			qty        INTEGER,
			price      REAL,
			reason     TEXT,
			order_id   TEXT,
			pnl        REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(timestamp)`,

		`CREATE TABLE IF NOT EXISTS scanner_picks (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			picks     TEXT,
			watchlist TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scanner_ts ON scanner_picks(timestamp)`,

		`CREATE TABLE IF NOT EXISTS daily_summaries (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			portfolio_value REAL,
			buying_power    REAL,
			cash            REAL,
			unrealized_pl   REAL,
			open_positions  INTEGER,
			trade_count     INTEGER,
			signal_count    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_ts ON daily_summaries(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSignal(rec *SignalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO signals
		(timestamp, symbol, direction, score, reasons, approved, reasoning)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.Symbol, string(rec.Direction), rec.Score,
		strings.Join(rec.Reasons, "; "), boolToInt(rec.Approved), rec.Reasoning,
	)
	return err
}

func (r *SQLiteRecorder) RecordTrade(rec *TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO trades
		(timestamp, symbol, underlying, side, qty, price, reason, order_id, pnl)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.Symbol, rec.Underlying, rec.Side,
		rec.Qty, rec.Price, rec.Reason, rec.OrderID, rec.PnL,
	)
	return err
}

func (r *SQLiteRecorder) RecordScan(rec *ScanRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO scanner_picks (timestamp, picks, watchlist)
		VALUES (?,?,?)`,
		time.Now().Unix(), strings.Join(rec.Picks, ","), strings.Join(rec.Watchlist, ","),
	)
	return err
}

func (r *SQLiteRecorder) RecordSummary(rec *SummaryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO daily_summaries
		(timestamp, portfolio_value, buying_power, cash, unrealized_pl,
		 open_positions, trade_count, signal_count)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.PortfolioValue, rec.BuyingPower, rec.Cash,
		rec.UnrealizedPL, rec.OpenPositions, rec.TradeCount, rec.SignalCount,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
