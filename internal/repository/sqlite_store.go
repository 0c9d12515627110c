package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"GoldLens/internal/domain/models"
	applogger "GoldLens/pkg/logger"
	"GoldLens/pkg/util"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists indicators, observations, signals, risk snapshots and
// gold price history to a single SQLite database. Uniqueness constraints on
// the natural keys back the check-then-insert idempotency at the usecase
// layer, so a racing duplicate write fails instead of double-inserting.
type SQLiteStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// WAL mode for concurrent reads while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// SetLogger injects a structured logger.
func (s *SQLiteStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *SQLiteStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS indicators (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			code   TEXT NOT NULL,
			name   TEXT NOT NULL,
			unit   TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1,
			UNIQUE(code)
		)`,

		`CREATE TABLE IF NOT EXISTS indicator_values (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			indicator_id INTEGER NOT NULL REFERENCES indicators(id),
			value        TEXT NOT NULL,
			date         TEXT NOT NULL,
			source       TEXT NOT NULL DEFAULT '',
			UNIQUE(indicator_id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_values_indicator_date
			ON indicator_values(indicator_id, date DESC)`,

		`CREATE TABLE IF NOT EXISTS signals (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			indicator_id   INTEGER NOT NULL REFERENCES indicators(id),
			indicator_code TEXT NOT NULL,
			type           TEXT NOT NULL,
			reason         TEXT NOT NULL,
			as_of_date     TEXT NOT NULL,
			confidence     TEXT NOT NULL,
			UNIQUE(indicator_id, as_of_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_indicator_date
			ON signals(indicator_id, as_of_date DESC)`,

		`CREATE TABLE IF NOT EXISTS risk_snapshots (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			level      TEXT NOT NULL,
			reason     TEXT NOT NULL,
			as_of_date TEXT NOT NULL,
			UNIQUE(as_of_date)
		)`,

		`CREATE TABLE IF NOT EXISTS gold_price_history (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			date   TEXT NOT NULL,
			price  TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			UNIQUE(date)
		)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if s.l != nil {
		s.l.Info("sqlite store initialized")
	}
	return nil
}

func (s *SQLiteStore) UpsertIndicator(ctx context.Context, ind *models.Indicator) (*models.Indicator, error) {
	// Name and unit are fixed at creation; only the active flag may change
	// on a later upsert.
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO indicators (code, name, unit, active) VALUES (?, ?, ?, ?)`,
		ind.Code, ind.Name, ind.Unit, boolToInt(ind.Active),
	)
	if err != nil {
		s.logErr("upsert_indicator", err, applogger.String("code", ind.Code))
		return nil, fmt.Errorf("upsert indicator: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		UPDATE indicators SET active = ? WHERE code = ?`,
		boolToInt(ind.Active), ind.Code,
	); err != nil {
		s.logErr("upsert_indicator", err, applogger.String("code", ind.Code))
		return nil, fmt.Errorf("upsert indicator: %w", err)
	}
	return s.IndicatorByCode(ctx, ind.Code)
}

func (s *SQLiteStore) IndicatorByCode(ctx context.Context, code string) (*models.Indicator, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, unit, active FROM indicators WHERE code = ?`, code)
	var ind models.Indicator
	var active int
	if err := row.Scan(&ind.ID, &ind.Code, &ind.Name, &ind.Unit, &active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logErr("indicator_by_code", err, applogger.String("code", code))
		return nil, fmt.Errorf("indicator by code: %w", err)
	}
	ind.Active = active != 0
	return &ind, nil
}

func (s *SQLiteStore) ActiveIndicators(ctx context.Context) ([]*models.Indicator, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, unit, active FROM indicators WHERE active = 1 ORDER BY code`)
	if err != nil {
		s.logErr("active_indicators", err)
		return nil, fmt.Errorf("active indicators: %w", err)
	}
	defer rows.Close()

	var out []*models.Indicator
	for rows.Next() {
		var ind models.Indicator
		var active int
		if err := rows.Scan(&ind.ID, &ind.Code, &ind.Name, &ind.Unit, &active); err != nil {
			return nil, fmt.Errorf("scan indicator: %w", err)
		}
		ind.Active = active != 0
		out = append(out, &ind)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) HasObservation(ctx context.Context, indicatorID int64, date time.Time) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM indicator_values WHERE indicator_id = ? AND date = ?`,
		indicatorID, date.UTC().Format(util.DateLayout))
}

func (s *SQLiteStore) StoreObservation(ctx context.Context, obs *models.Observation) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO indicator_values (indicator_id, value, date, source) VALUES (?, ?, ?, ?)`,
		obs.IndicatorID, obs.Value.String(), obs.Date.UTC().Format(util.DateLayout), obs.Source,
	)
	if err != nil {
		s.logErr("store_observation", err, applogger.Int("indicator_id", int(obs.IndicatorID)))
		return fmt.Errorf("store observation: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		obs.ID = id
	}
	return nil
}

func (s *SQLiteStore) RecentObservations(ctx context.Context, indicatorID int64, limit int) ([]*models.Observation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, indicator_id, value, date, source
		FROM indicator_values
		WHERE indicator_id = ?
		ORDER BY date DESC
		LIMIT ?`, indicatorID, limit)
	if err != nil {
		s.logErr("recent_observations", err, applogger.Int("indicator_id", int(indicatorID)))
		return nil, fmt.Errorf("recent observations: %w", err)
	}
	defer rows.Close()

	var out []*models.Observation
	for rows.Next() {
		obs, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, obs)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ObservationsSince(ctx context.Context, indicatorID int64, from time.Time) ([]*models.Observation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, indicator_id, value, date, source
		FROM indicator_values
		WHERE indicator_id = ? AND date >= ?
		ORDER BY date ASC`, indicatorID, from.UTC().Format(util.DateLayout))
	if err != nil {
		s.logErr("observations_since", err, applogger.Int("indicator_id", int(indicatorID)))
		return nil, fmt.Errorf("observations since: %w", err)
	}
	defer rows.Close()

	var out []*models.Observation
	for rows.Next() {
		obs, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, obs)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ObservationCount(ctx context.Context, indicatorID int64) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM indicator_values WHERE indicator_id = ?`, indicatorID).Scan(&n)
	if err != nil {
		s.logErr("observation_count", err, applogger.Int("indicator_id", int(indicatorID)))
		return 0, fmt.Errorf("observation count: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) HasSignal(ctx context.Context, indicatorID int64, asOf time.Time) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM signals WHERE indicator_id = ? AND as_of_date = ?`,
		indicatorID, asOf.UTC().Format(util.DateLayout))
}

func (s *SQLiteStore) StoreSignal(ctx context.Context, sig *models.Signal) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO signals (indicator_id, indicator_code, type, reason, as_of_date, confidence)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sig.IndicatorID, sig.IndicatorCode, string(sig.Type), sig.Reason,
		sig.AsOfDate.UTC().Format(util.DateLayout), sig.Confidence.String(),
	)
	if err != nil {
		s.logErr("store_signal", err, applogger.String("code", sig.IndicatorCode))
		return fmt.Errorf("store signal: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		sig.ID = id
	}
	return nil
}

func (s *SQLiteStore) LatestSignal(ctx context.Context, indicatorID int64) (*models.Signal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, indicator_id, indicator_code, type, reason, as_of_date, confidence
		FROM signals
		WHERE indicator_id = ?
		ORDER BY as_of_date DESC
		LIMIT 1`, indicatorID)
	sig, err := scanSignal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logErr("latest_signal", err, applogger.Int("indicator_id", int(indicatorID)))
		return nil, fmt.Errorf("latest signal: %w", err)
	}
	return sig, nil
}

func (s *SQLiteStore) LatestSignals(ctx context.Context) ([]*models.Signal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.indicator_id, s.indicator_code, s.type, s.reason, s.as_of_date, s.confidence
		FROM signals s
		JOIN (
			SELECT indicator_id, MAX(as_of_date) AS max_date
			FROM signals GROUP BY indicator_id
		) latest ON s.indicator_id = latest.indicator_id AND s.as_of_date = latest.max_date
		ORDER BY s.indicator_code`)
	if err != nil {
		s.logErr("latest_signals", err)
		return nil, fmt.Errorf("latest signals: %w", err)
	}
	defer rows.Close()

	var out []*models.Signal
	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) RecentSignals(ctx context.Context, indicatorID int64, limit int) ([]*models.Signal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, indicator_id, indicator_code, type, reason, as_of_date, confidence
		FROM signals
		WHERE indicator_id = ?
		ORDER BY as_of_date DESC
		LIMIT ?`, indicatorID, limit)
	if err != nil {
		s.logErr("recent_signals", err, applogger.Int("indicator_id", int(indicatorID)))
		return nil, fmt.Errorf("recent signals: %w", err)
	}
	defer rows.Close()

	var out []*models.Signal
	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) HasRiskSnapshot(ctx context.Context, asOf time.Time) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM risk_snapshots WHERE as_of_date = ?`,
		asOf.UTC().Format(util.DateLayout))
}

func (s *SQLiteStore) StoreRiskSnapshot(ctx context.Context, snap *models.RiskSnapshot) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO risk_snapshots (level, reason, as_of_date) VALUES (?, ?, ?)`,
		string(snap.Level), snap.Reason, snap.AsOfDate.UTC().Format(util.DateLayout),
	)
	if err != nil {
		s.logErr("store_risk_snapshot", err, applogger.String("level", string(snap.Level)))
		return fmt.Errorf("store risk snapshot: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		snap.ID = id
	}
	return nil
}

func (s *SQLiteStore) LatestRiskSnapshot(ctx context.Context) (*models.RiskSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, level, reason, as_of_date
		FROM risk_snapshots
		ORDER BY as_of_date DESC
		LIMIT 1`)
	var snap models.RiskSnapshot
	var level, date string
	if err := row.Scan(&snap.ID, &level, &snap.Reason, &date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logErr("latest_risk_snapshot", err)
		return nil, fmt.Errorf("latest risk snapshot: %w", err)
	}
	snap.Level = models.RiskLevel(level)
	d, err := util.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("parse risk date: %w", err)
	}
	snap.AsOfDate = d
	return &snap, nil
}

func (s *SQLiteStore) HasPricePoint(ctx context.Context, date time.Time) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM gold_price_history WHERE date = ?`,
		date.UTC().Format(util.DateLayout))
}

func (s *SQLiteStore) StorePricePoint(ctx context.Context, p *models.PricePoint) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO gold_price_history (date, price, source) VALUES (?, ?, ?)`,
		p.Date.UTC().Format(util.DateLayout), p.Price.String(), p.Source,
	)
	if err != nil {
		s.logErr("store_price_point", err)
		return fmt.Errorf("store price point: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		p.ID = id
	}
	return nil
}

func (s *SQLiteStore) PriceHistory(ctx context.Context, from time.Time, limit int) ([]*models.PricePoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, price, source
		FROM gold_price_history
		WHERE date >= ?
		ORDER BY date ASC
		LIMIT ?`, from.UTC().Format(util.DateLayout), limit)
	if err != nil {
		s.logErr("price_history", err)
		return nil, fmt.Errorf("price history: %w", err)
	}
	defer rows.Close()

	var out []*models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		var date, price string
		if err := rows.Scan(&p.ID, &date, &price, &p.Source); err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}
		d, err := util.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("parse price date: %w", err)
		}
		p.Date = d
		v, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parse price value: %w", err)
		}
		p.Price = v
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	if s.l != nil {
		s.l.Info("closing sqlite store")
	}
	return s.db.Close()
}

func (s *SQLiteStore) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) logErr(op string, err error, fields ...applogger.Field) {
	if s.l == nil {
		return
	}
	fields = append(fields, applogger.String("op", op), applogger.Error(err))
	s.l.Error("sqlite store error", fields...)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObservation(r rowScanner) (*models.Observation, error) {
	var obs models.Observation
	var value, date string
	if err := r.Scan(&obs.ID, &obs.IndicatorID, &value, &date, &obs.Source); err != nil {
		return nil, fmt.Errorf("scan observation: %w", err)
	}
	v, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("parse observation value: %w", err)
	}
	obs.Value = v
	d, err := util.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("parse observation date: %w", err)
	}
	obs.Date = d
	return &obs, nil
}

func scanSignal(r rowScanner) (*models.Signal, error) {
	var sig models.Signal
	var typ, date, conf string
	if err := r.Scan(&sig.ID, &sig.IndicatorID, &sig.IndicatorCode, &typ, &sig.Reason, &date, &conf); err != nil {
		return nil, err
	}
	sig.Type = models.SignalType(typ)
	d, err := util.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("parse signal date: %w", err)
	}
	sig.AsOfDate = d
	c, err := decimal.NewFromString(conf)
	if err != nil {
		return nil, fmt.Errorf("parse signal confidence: %w", err)
	}
	sig.Confidence = c
	return &sig, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
