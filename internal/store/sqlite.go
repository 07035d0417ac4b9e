package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ff-scanner/internal/errors"
	"ff-scanner/internal/models"
)

// SQLiteStore implements ResultStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the scan-history database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, dbError("failed to open database", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, dbError("failed to initialize schema", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		tickers_scanned INTEGER NOT NULL,
		opportunities_found INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS opportunities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL,
		ticker TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		underlying_price REAL NOT NULL,
		opportunity_type TEXT NOT NULL,
		confidence_score REAL NOT NULL,
		forward_factor_pct REAL NOT NULL,
		forward_vol_pct REAL NOT NULL,
		near_term_dte INTEGER NOT NULL,
		next_term_dte INTEGER NOT NULL,
		near_term_iv REAL NOT NULL,
		next_term_iv REAL NOT NULL,
		near_liquidity_count INTEGER NOT NULL,
		next_liquidity_count INTEGER NOT NULL,
		primary_reason TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (scan_id) REFERENCES scans(id)
	);

	CREATE INDEX IF NOT EXISTS idx_opportunities_scan ON opportunities(scan_id);
	CREATE INDEX IF NOT EXISTS idx_opportunities_ticker ON opportunities(ticker);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// dbError tags a storage failure so callers can match errors.ErrDatabaseError
// without parsing messages.
func dbError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, errors.ErrDatabaseError, err)
}

// SaveScan writes the scan record and its opportunities in one transaction.
func (s *SQLiteStore) SaveScan(ctx context.Context, record ScanRecord, opportunities []models.OpportunitySummary) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, dbError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO scans (started_at, duration_ms, tickers_scanned, opportunities_found)
		VALUES (?, ?, ?, ?)`,
		record.StartedAt, record.Duration.Milliseconds(), record.Tickers, len(opportunities))
	if err != nil {
		return 0, dbError("failed to insert scan", err)
	}

	scanID, err := result.LastInsertId()
	if err != nil {
		return 0, dbError("failed to get scan id", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO opportunities (
			scan_id, ticker, timeframe, underlying_price, opportunity_type,
			confidence_score, forward_factor_pct, forward_vol_pct,
			near_term_dte, next_term_dte, near_term_iv, next_term_iv,
			near_liquidity_count, next_liquidity_count, primary_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, dbError("failed to prepare insert", err)
	}
	defer stmt.Close()

	for _, opp := range opportunities {
		if _, err := stmt.ExecContext(ctx,
			scanID, opp.Ticker, opp.Timeframe, opp.UnderlyingPrice, opp.OpportunityType,
			opp.ConfidenceScore, opp.ForwardFactorPct, opp.ForwardVolPct,
			opp.NearTermDTE, opp.NextTermDTE, opp.NearTermIV, opp.NextTermIV,
			opp.NearLiquidityCount, opp.NextLiquidityCount, opp.PrimaryReason,
		); err != nil {
			return 0, dbError(fmt.Sprintf("failed to insert opportunity for %s", opp.Ticker), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, dbError("failed to commit scan", err)
	}
	return scanID, nil
}

// RecentScans lists recent scan records, newest first.
func (s *SQLiteStore) RecentScans(ctx context.Context, limit int) ([]ScanRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, tickers_scanned, opportunities_found
		FROM scans ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, dbError("failed to query scans", err)
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var r ScanRecord
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.StartedAt, &durationMs, &r.Tickers, &r.Opportunities); err != nil {
			return nil, dbError("failed to scan row", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, r)
	}
	return records, rows.Err()
}

const opportunityColumns = `
	ticker, timeframe, underlying_price, opportunity_type,
	confidence_score, forward_factor_pct, forward_vol_pct,
	near_term_dte, next_term_dte, near_term_iv, next_term_iv,
	near_liquidity_count, next_liquidity_count, primary_reason`

func scanOpportunityRows(rows *sql.Rows) ([]models.OpportunitySummary, error) {
	var out []models.OpportunitySummary
	for rows.Next() {
		var o models.OpportunitySummary
		if err := rows.Scan(
			&o.Ticker, &o.Timeframe, &o.UnderlyingPrice, &o.OpportunityType,
			&o.ConfidenceScore, &o.ForwardFactorPct, &o.ForwardVolPct,
			&o.NearTermDTE, &o.NextTermDTE, &o.NearTermIV, &o.NextTermIV,
			&o.NearLiquidityCount, &o.NextLiquidityCount, &o.PrimaryReason,
		); err != nil {
			return nil, dbError("failed to scan row", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ScanOpportunities returns the opportunities of one scan, best first. An
// unknown scan ID is reported as errors.ErrDataNotFound; a scan that found
// nothing returns an empty slice.
func (s *SQLiteStore) ScanOpportunities(ctx context.Context, scanID int64) ([]models.OpportunitySummary, error) {
	var known int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM scans WHERE id = ?`, scanID).Scan(&known)
	if err != nil {
		return nil, dbError("failed to look up scan", err)
	}
	if known == 0 {
		return nil, fmt.Errorf("scan %d: %w", scanID, errors.ErrDataNotFound)
	}

	query := fmt.Sprintf(`SELECT %s FROM opportunities
		WHERE scan_id = ? ORDER BY confidence_score DESC, ticker, timeframe`,
		strings.TrimSpace(opportunityColumns))

	rows, err := s.db.QueryContext(ctx, query, scanID)
	if err != nil {
		return nil, dbError("failed to query opportunities", err)
	}
	defer rows.Close()
	return scanOpportunityRows(rows)
}

// TickerHistory returns recent opportunities for one ticker across scans.
func (s *SQLiteStore) TickerHistory(ctx context.Context, ticker string, limit int) ([]models.OpportunitySummary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`SELECT %s FROM opportunities
		WHERE ticker = ? ORDER BY scan_id DESC, confidence_score DESC LIMIT ?`,
		strings.TrimSpace(opportunityColumns))

	rows, err := s.db.QueryContext(ctx, query, strings.ToUpper(strings.TrimSpace(ticker)), limit)
	if err != nil {
		return nil, dbError("failed to query ticker history", err)
	}
	defer rows.Close()
	return scanOpportunityRows(rows)
}
