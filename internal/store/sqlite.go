// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"flagscan/internal/analysis"
	"flagscan/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	mu        sync.RWMutex
	syncTimes map[string]time.Time
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:        db,
		syncTimes: make(map[string]time.Time),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Bars table for historical daily OHLC data
	CREATE TABLE IF NOT EXISTS bars (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		date DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, date)
	);

	-- One row per detection+evaluation pass
	CREATE TABLE IF NOT EXISTS scan_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		run_at DATETIME NOT NULL,
		pole_bars INTEGER NOT NULL,
		pole_threshold REAL NOT NULL,
		flag_threshold REAL NOT NULL,
		consolidation_days INTEGER NOT NULL,
		horizon_days INTEGER NOT NULL,
		success_threshold REAL NOT NULL,
		bullish_valid INTEGER NOT NULL,
		bullish_successes INTEGER NOT NULL,
		bearish_valid INTEGER NOT NULL,
		bearish_successes INTEGER NOT NULL,
		bullish_rate REAL NOT NULL,
		bearish_rate REAL NOT NULL,
		total_gain REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Detected patterns per run
	CREATE TABLE IF NOT EXISTS pattern_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		pole_start DATETIME NOT NULL,
		flag_start DATETIME NOT NULL,
		flag_end DATETIME NOT NULL,
		pole_change REAL NOT NULL,
		consolidation_range REAL NOT NULL,
		direction TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES scan_runs(id)
	);

	-- Evaluated outcomes per run
	CREATE TABLE IF NOT EXISTS outcome_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		pole_start DATETIME NOT NULL,
		flag_start DATETIME NOT NULL,
		flag_end DATETIME NOT NULL,
		pole_change REAL NOT NULL,
		consolidation_range REAL NOT NULL,
		direction TEXT NOT NULL,
		forward_change REAL NOT NULL,
		success INTEGER NOT NULL,
		horizon_days INTEGER NOT NULL,
		success_threshold REAL NOT NULL,
		FOREIGN KEY (run_id) REFERENCES scan_runs(id)
	);

	-- Sync status table
	CREATE TABLE IF NOT EXISTS sync_status (
		data_type TEXT PRIMARY KEY,
		last_sync DATETIME NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Create indexes for performance
	CREATE INDEX IF NOT EXISTS idx_bars_symbol ON bars(symbol);
	CREATE INDEX IF NOT EXISTS idx_bars_date ON bars(date);
	CREATE INDEX IF NOT EXISTS idx_runs_symbol ON scan_runs(symbol);
	CREATE INDEX IF NOT EXISTS idx_runs_run_at ON scan_runs(run_at);
	CREATE INDEX IF NOT EXISTS idx_patterns_run ON pattern_records(run_id);
	CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcome_records(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Bars Methods
// ============================================================================

// SaveBars saves bars to the database.
func (s *SQLiteStore) SaveBars(ctx context.Context, symbol string, bars []models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO bars (symbol, date, open, high, low, close)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		_, err := stmt.ExecContext(ctx, symbol, b.Date, b.Open, b.High, b.Low, b.Close)
		if err != nil {
			return fmt.Errorf("failed to insert bar: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBars retrieves bars from the database in ascending date order.
func (s *SQLiteStore) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, open, high, low, close
		FROM bars
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query bars: %w", err)
	}
	defer rows.Close()

	var bars []models.PriceBar
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close); err != nil {
			return nil, fmt.Errorf("failed to scan bar: %w", err)
		}
		bars = append(bars, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bars: %w", err)
	}

	return bars, nil
}

// GetBarsFreshness returns the date of the most recent stored bar.
func (s *SQLiteStore) GetBarsFreshness(ctx context.Context, symbol string) (time.Time, error) {
	var date sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(date) FROM bars WHERE symbol = ?
	`, symbol).Scan(&date)
	if err != nil && err != sql.ErrNoRows {
		return time.Time{}, fmt.Errorf("failed to get bars freshness: %w", err)
	}
	if !date.Valid {
		return time.Time{}, nil
	}
	return date.Time, nil
}

// ============================================================================
// Scan Run Methods
// ============================================================================

// SaveScanRun persists a run with its patterns and outcomes in one
// transaction and returns the run ID.
func (s *SQLiteStore) SaveScanRun(ctx context.Context, run *ScanRun) (int64, error) {
	if run.Summary == nil {
		return 0, fmt.Errorf("scan run has no summary")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO scan_runs (symbol, run_at, pole_bars, pole_threshold, flag_threshold, consolidation_days,
			horizon_days, success_threshold, bullish_valid, bullish_successes, bearish_valid, bearish_successes,
			bullish_rate, bearish_rate, total_gain)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.Symbol, run.RunAt, run.PoleBars, run.PoleThreshold, run.FlagThreshold, run.ConsolidationDays,
		run.HorizonDays, run.SuccessThreshold,
		run.Summary.BullishValidCount, run.Summary.BullishSuccesses,
		run.Summary.BearishValidCount, run.Summary.BearishSuccesses,
		run.Summary.BullishSuccessRate, run.Summary.BearishSuccessRate, run.Summary.TotalGainPct)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	patternStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pattern_records (run_id, pole_start, flag_start, flag_end, pole_change, consolidation_range, direction)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare pattern statement: %w", err)
	}
	defer patternStmt.Close()

	for _, p := range run.Patterns {
		_, err := patternStmt.ExecContext(ctx, runID, p.PoleStart, p.FlagStart, p.FlagEnd,
			p.PoleChangePct, p.ConsolidationRangePct, string(p.Direction))
		if err != nil {
			return 0, fmt.Errorf("failed to insert pattern record: %w", err)
		}
	}

	outcomeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outcome_records (run_id, pole_start, flag_start, flag_end, pole_change, consolidation_range,
			direction, forward_change, success, horizon_days, success_threshold)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare outcome statement: %w", err)
	}
	defer outcomeStmt.Close()

	for _, o := range run.Summary.Records {
		success := 0
		if o.Success {
			success = 1
		}
		_, err := outcomeStmt.ExecContext(ctx, runID, o.Pattern.PoleStart, o.Pattern.FlagStart, o.Pattern.FlagEnd,
			o.Pattern.PoleChangePct, o.Pattern.ConsolidationRangePct, string(o.Pattern.Direction),
			o.ForwardChangePct, success, o.HorizonDays, o.SuccessThreshold)
		if err != nil {
			return 0, fmt.Errorf("failed to insert outcome record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	run.ID = runID
	return runID, nil
}

// GetScanRuns retrieves past runs without their detail rows.
func (s *SQLiteStore) GetScanRuns(ctx context.Context, filter RunFilter) ([]ScanRun, error) {
	query := `SELECT id, symbol, run_at, pole_bars, pole_threshold, flag_threshold, consolidation_days,
		horizon_days, success_threshold, bullish_valid, bullish_successes, bearish_valid, bearish_successes,
		bullish_rate, bearish_rate, total_gain FROM scan_runs WHERE 1=1`
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if !filter.StartDate.IsZero() {
		query += " AND run_at >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND run_at <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY run_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan runs: %w", err)
	}
	defer rows.Close()

	var runs []ScanRun
	for rows.Next() {
		var run ScanRun
		summary := &analysis.OutcomeSummary{}
		if err := rows.Scan(&run.ID, &run.Symbol, &run.RunAt, &run.PoleBars, &run.PoleThreshold,
			&run.FlagThreshold, &run.ConsolidationDays, &run.HorizonDays, &run.SuccessThreshold,
			&summary.BullishValidCount, &summary.BullishSuccesses,
			&summary.BearishValidCount, &summary.BearishSuccesses,
			&summary.BullishSuccessRate, &summary.BearishSuccessRate, &summary.TotalGainPct); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Summary = summary
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scan runs: %w", err)
	}

	return runs, nil
}

// GetRunPatterns retrieves the pattern records of a run.
func (s *SQLiteStore) GetRunPatterns(ctx context.Context, runID int64) ([]analysis.PatternRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pole_start, flag_start, flag_end, pole_change, consolidation_range, direction
		FROM pattern_records
		WHERE run_id = ?
		ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pattern records: %w", err)
	}
	defer rows.Close()

	var records []analysis.PatternRecord
	for rows.Next() {
		var p analysis.PatternRecord
		var direction string
		if err := rows.Scan(&p.PoleStart, &p.FlagStart, &p.FlagEnd,
			&p.PoleChangePct, &p.ConsolidationRangePct, &direction); err != nil {
			return nil, fmt.Errorf("failed to scan pattern record: %w", err)
		}
		p.Direction = analysis.Direction(direction)
		records = append(records, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pattern records: %w", err)
	}

	return records, nil
}

// GetRunOutcomes retrieves the outcome records of a run.
func (s *SQLiteStore) GetRunOutcomes(ctx context.Context, runID int64) ([]analysis.OutcomeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pole_start, flag_start, flag_end, pole_change, consolidation_range, direction,
			forward_change, success, horizon_days, success_threshold
		FROM outcome_records
		WHERE run_id = ?
		ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcome records: %w", err)
	}
	defer rows.Close()

	var records []analysis.OutcomeRecord
	for rows.Next() {
		var o analysis.OutcomeRecord
		var direction string
		var success int
		if err := rows.Scan(&o.Pattern.PoleStart, &o.Pattern.FlagStart, &o.Pattern.FlagEnd,
			&o.Pattern.PoleChangePct, &o.Pattern.ConsolidationRangePct, &direction,
			&o.ForwardChangePct, &success, &o.HorizonDays, &o.SuccessThreshold); err != nil {
			return nil, fmt.Errorf("failed to scan outcome record: %w", err)
		}
		o.Pattern.Direction = analysis.Direction(direction)
		o.Success = success != 0
		records = append(records, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outcome records: %w", err)
	}

	return records, nil
}

// ============================================================================
// Sync Methods
// ============================================================================

// GetLastSync returns the last sync time for a data type.
func (s *SQLiteStore) GetLastSync(dataType string) time.Time {
	s.mu.RLock()
	if t, ok := s.syncTimes[dataType]; ok {
		s.mu.RUnlock()
		return t
	}
	s.mu.RUnlock()

	var lastSync time.Time
	err := s.db.QueryRow(`
		SELECT last_sync FROM sync_status WHERE data_type = ?
	`, dataType).Scan(&lastSync)
	if err != nil {
		return time.Time{}
	}

	s.mu.Lock()
	s.syncTimes[dataType] = lastSync
	s.mu.Unlock()

	return lastSync
}

// SetLastSync sets the last sync time for a data type.
func (s *SQLiteStore) SetLastSync(dataType string, t time.Time) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO sync_status (data_type, last_sync, updated_at)
		VALUES (?, ?, ?)
	`, dataType, t, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set last sync: %w", err)
	}

	s.mu.Lock()
	s.syncTimes[dataType] = t
	s.mu.Unlock()

	return nil
}
