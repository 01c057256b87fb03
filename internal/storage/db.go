package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/daverage/veristat/internal/history"
	"github.com/daverage/veristat/internal/metric"

	_ "github.com/mattn/go-sqlite3"
)

const (
	SchemaVersion = 1

	// timeLayout is fixed-width so lexicographic comparison of stored
	// timestamps matches chronological order.
	timeLayout = "2006-01-02 15:04:05.000000000"
)

// DB is the SQLite-backed truth metric store. It doubles as the real
// time-series source behind history.SeriesReader, so trends and forecasts
// can be computed from persisted data after a restart.
type DB struct {
	conn *sql.DB
}

// NewDB opens (or creates) the metric database and applies migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=10000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// migrate applies schema migrations incrementally via PRAGMA user_version.
func (db *DB) migrate() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var version int
	if err := tx.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}

	for version < SchemaVersion {
		version++
		switch version {
		case 1:
			if err := applySchemaV1(tx); err != nil {
				return fmt.Errorf("failed to apply schema v%d: %w", version, err)
			}
		default:
			return fmt.Errorf("unknown schema version: %d", version)
		}
	}

	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

func applySchemaV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS truth_metrics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts DATETIME NOT NULL,
			metric_type TEXT NOT NULL,
			value REAL NOT NULL,
			confidence REAL NOT NULL,
			agent_id TEXT NOT NULL,
			task_type TEXT NOT NULL,
			complexity TEXT NOT NULL,
			verification_method TEXT NOT NULL,
			is_valid INTEGER NOT NULL,
			validation_json TEXT NOT NULL DEFAULT '{}'
		);
		CREATE INDEX IF NOT EXISTS idx_truth_metrics_ts ON truth_metrics(ts);
		CREATE INDEX IF NOT EXISTS idx_truth_metrics_type_ts ON truth_metrics(metric_type, ts);
	`)
	return err
}

// Insert stores one metric synchronously. The engine's hot path goes
// through Writer instead; Insert exists for replay/backfill tooling.
func (db *DB) Insert(m metric.TruthMetric) error {
	validationJSON, err := json.Marshal(m.Validation)
	if err != nil {
		return fmt.Errorf("failed to encode validation: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO truth_metrics
			(ts, metric_type, value, confidence, agent_id, task_type, complexity, verification_method, is_valid, validation_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Timestamp.UTC().Format(timeLayout),
		string(m.MetricType), m.Value, m.Confidence, m.AgentID,
		m.Context.TaskType, m.Context.Complexity, string(m.Context.VerificationMethod),
		boolToInt(m.Validation.IsValid), string(validationJSON))
	if err != nil {
		return fmt.Errorf("failed to insert metric: %w", err)
	}
	return nil
}

// HistoricalValues implements history.SeriesReader over persisted rows.
// Each tracked name is a SQL projection of the raw metric columns.
func (db *DB) HistoricalValues(name string, since time.Time) ([]history.Point, error) {
	var query string
	switch name {
	case metric.SeriesOverallAccuracy:
		query = `SELECT ts, value FROM truth_metrics WHERE metric_type = 'accuracy' AND ts >= ? ORDER BY ts`
	case metric.SeriesHumanInterventionRate:
		query = `SELECT ts, CASE WHEN verification_method != 'automated' THEN 1.0 ELSE 0.0 END FROM truth_metrics WHERE ts >= ? ORDER BY ts`
	case metric.SeriesSystemReliability:
		query = `SELECT ts, CAST(is_valid AS REAL) FROM truth_metrics WHERE ts >= ? ORDER BY ts`
	case metric.SeriesEfficiency:
		query = `SELECT ts, value * confidence FROM truth_metrics WHERE ts >= ? ORDER BY ts`
	default:
		return nil, nil
	}

	rows, err := db.conn.Query(query, since.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query series %s: %w", name, err)
	}
	defer rows.Close()

	var out []history.Point
	for rows.Next() {
		var ts string
		var v float64
		if err := rows.Scan(&ts, &v); err != nil {
			continue
		}
		t, err := time.Parse(timeLayout, ts)
		if err != nil {
			continue
		}
		out = append(out, history.Point{Timestamp: t, Value: v})
	}
	return out, rows.Err()
}

// RecentMetrics loads raw metrics since the given time, oldest first, for
// restart backfill of the in-memory history.
func (db *DB) RecentMetrics(since time.Time, limit int) ([]metric.TruthMetric, error) {
	rows, err := db.conn.Query(`
		SELECT ts, metric_type, value, confidence, agent_id, task_type, complexity, verification_method, validation_json
		FROM truth_metrics WHERE ts >= ? ORDER BY ts LIMIT ?`,
		since.UTC().Format(timeLayout), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent metrics: %w", err)
	}
	defer rows.Close()

	var out []metric.TruthMetric
	for rows.Next() {
		var ts, mt, agent, taskType, complexity, method, validationJSON string
		var m metric.TruthMetric
		if err := rows.Scan(&ts, &mt, &m.Value, &m.Confidence, &agent, &taskType, &complexity, &method, &validationJSON); err != nil {
			continue
		}
		t, err := time.Parse(timeLayout, ts)
		if err != nil {
			continue
		}
		m.Timestamp = t
		m.MetricType = metric.Type(mt)
		m.AgentID = agent
		m.Context = metric.Context{
			TaskType:           taskType,
			Complexity:         complexity,
			VerificationMethod: metric.VerificationMethod(method),
		}
		if err := json.Unmarshal([]byte(validationJSON), &m.Validation); err != nil {
			m.Validation = metric.Validation{IsValid: true}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Count returns the number of stored metrics.
func (db *DB) Count() (int64, error) {
	var n int64
	err := db.conn.QueryRow("SELECT COUNT(*) FROM truth_metrics").Scan(&n)
	return n, err
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
