package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"StockSentinel/internal/logger"
	"StockSentinel/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists level snapshots to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logger.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *logger.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.Component("recorder")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS level_snapshots (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp            INTEGER NOT NULL,
			symbol               TEXT NOT NULL,
			source               TEXT,
			current_price        REAL,
			high                 REAL,
			low                  REAL,
			close                REAL,
			path                 TEXT,
			support_prices       TEXT,
			support_strengths    TEXT,
			resistance_prices    TEXT,
			resistance_strengths TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_levels_symbol_ts ON level_snapshots(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAnalysis(rec *AnalysisRecord) error {
	supPrices, supStrengths, err := encodeZones(rec.Support)
	if err != nil {
		return err
	}
	resPrices, resStrengths, err := encodeZones(rec.Resistance)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.Exec(`INSERT INTO level_snapshots
		(timestamp, symbol, source, current_price, high, low, close, path,
		 support_prices, support_strengths, resistance_prices, resistance_strengths)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.Timestamp.Unix(), rec.Symbol, rec.Source, rec.CurrentPrice,
		rec.High, rec.Low, rec.Close, rec.Path,
		supPrices, supStrengths, resPrices, resStrengths,
	)
	if err != nil {
		return fmt.Errorf("insert level snapshot %s: %w", rec.Symbol, err)
	}
	return nil
}

// History returns the latest snapshots for symbol, newest first. Sources are
// not stored, so returned zones carry prices and strengths only.
func (r *SQLiteRecorder) History(symbol string, limit int) ([]AnalysisRecord, error) {
	rows, err := r.db.Query(`SELECT timestamp, symbol, source, current_price, high, low, close, path,
		support_prices, support_strengths, resistance_prices, resistance_strengths
		FROM level_snapshots WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query history %s: %w", symbol, err)
	}
	defer rows.Close()

	var out []AnalysisRecord
	for rows.Next() {
		var (
			rec                    AnalysisRecord
			ts                     int64
			source                 sql.NullString
			supP, supS, resP, resS string
		)
		if err := rows.Scan(&ts, &rec.Symbol, &source, &rec.CurrentPrice, &rec.High, &rec.Low, &rec.Close,
			&rec.Path, &supP, &supS, &resP, &resS); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		rec.Timestamp = time.Unix(ts, 0)
		rec.Source = source.String
		if rec.Support, err = decodeZones(supP, supS); err != nil {
			return nil, err
		}
		if rec.Resistance, err = decodeZones(resP, resS); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Infof("closing sqlite recorder")
	return r.db.Close()
}

func encodeZones(zones []model.Cluster) (prices, strengths string, err error) {
	ps := make([]float64, len(zones))
	ss := make([]float64, len(zones))
	for i, z := range zones {
		ps[i] = z.Price
		ss[i] = z.Strength
	}
	pb, err := json.Marshal(ps)
	if err != nil {
		return "", "", fmt.Errorf("encode prices: %w", err)
	}
	sb, err := json.Marshal(ss)
	if err != nil {
		return "", "", fmt.Errorf("encode strengths: %w", err)
	}
	return string(pb), string(sb), nil
}

func decodeZones(prices, strengths string) ([]model.Cluster, error) {
	var ps, ss []float64
	if err := json.Unmarshal([]byte(prices), &ps); err != nil {
		return nil, fmt.Errorf("decode prices: %w", err)
	}
	if err := json.Unmarshal([]byte(strengths), &ss); err != nil {
		return nil, fmt.Errorf("decode strengths: %w", err)
	}
	if len(ps) != len(ss) {
		return nil, fmt.Errorf("stored %d prices but %d strengths", len(ps), len(ss))
	}
	zones := make([]model.Cluster, len(ps))
	for i := range ps {
		zones[i] = model.Cluster{Price: ps[i], Strength: ss[i]}
	}
	return zones, nil
}
