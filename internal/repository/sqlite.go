package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hqin77/lifepath/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// migrate runs database migrations. The UNIQUE(run_id, seq) constraint on
// nodes is what serializes concurrent appends to the same run.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			mode TEXT NOT NULL,
			horizon_preset TEXT NOT NULL,
			status TEXT NOT NULL,
			current_day INTEGER NOT NULL DEFAULT 0,
			baseline_metrics TEXT NOT NULL,
			latest_metrics TEXT NOT NULL,
			summary TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_owner ON runs(owner_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS nodes (
			node_id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			simulated_date DATETIME NOT NULL,
			action_type TEXT NOT NULL,
			action_label TEXT NOT NULL,
			action_details TEXT,
			story TEXT,
			changelog TEXT,
			metric_deltas TEXT NOT NULL,
			metrics_snapshot TEXT NOT NULL,
			next_options TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(run_id, seq),
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_run_seq ON nodes(run_id, seq)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateRun inserts a new run.
func (s *SQLiteStore) CreateRun(ctx context.Context, run *domain.Run) error {
	baseline, err := json.Marshal(run.BaselineMetrics)
	if err != nil {
		return fmt.Errorf("marshal baseline metrics: %w", err)
	}
	latest, err := json.Marshal(run.LatestMetrics)
	if err != nil {
		return fmt.Errorf("marshal latest metrics: %w", err)
	}
	var summary interface{}
	if run.Summary != nil {
		b, err := json.Marshal(run.Summary)
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
		summary = string(b)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, owner_id, title, mode, horizon_preset, status, current_day, baseline_metrics, latest_metrics, summary, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.OwnerID, run.Title, run.Mode, run.HorizonPreset, run.Status,
		run.CurrentDay, string(baseline), string(latest), summary, run.CreatedAt, run.UpdatedAt)
	return err
}

// GetRun retrieves a run by ID. Returns (nil, nil) if not found.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*domain.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, owner_id, title, mode, horizon_preset, status, current_day, baseline_metrics, latest_metrics, summary, created_at, updated_at
		 FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*domain.Run, error) {
	var run domain.Run
	var baseline, latest string
	var summary sql.NullString
	err := row.Scan(&run.RunID, &run.OwnerID, &run.Title, &run.Mode, &run.HorizonPreset,
		&run.Status, &run.CurrentDay, &baseline, &latest, &summary, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(baseline), &run.BaselineMetrics); err != nil {
		return nil, fmt.Errorf("unmarshal baseline metrics: %w", err)
	}
	if err := json.Unmarshal([]byte(latest), &run.LatestMetrics); err != nil {
		return nil, fmt.Errorf("unmarshal latest metrics: %w", err)
	}
	if summary.Valid && summary.String != "" {
		run.Summary = &domain.RunSummary{}
		if err := json.Unmarshal([]byte(summary.String), run.Summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
	}
	return &run, nil
}

// ListRuns retrieves an owner's runs, most recent first.
func (s *SQLiteStore) ListRuns(ctx context.Context, ownerID string, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, owner_id, title, mode, horizon_preset, status, current_day, baseline_metrics, latest_metrics, summary, created_at, updated_at
		 FROM runs WHERE owner_id = ? ORDER BY created_at DESC, run_id DESC LIMIT ?`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// UpdateRunTitle renames a run.
func (s *SQLiteStore) UpdateRunTitle(ctx context.Context, runID, title string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET title = ?, updated_at = ? WHERE run_id = ?`,
		title, time.Now().UTC(), runID)
	return err
}

// UpdateRunProgress advances the run cursor and latest metrics mirror.
func (s *SQLiteStore) UpdateRunProgress(ctx context.Context, runID string, currentDay int, latest domain.Metrics) error {
	b, err := json.Marshal(latest)
	if err != nil {
		return fmt.Errorf("marshal latest metrics: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE runs SET current_day = ?, latest_metrics = ?, updated_at = ? WHERE run_id = ?`,
		currentDay, string(b), time.Now().UTC(), runID)
	return err
}

// UpdateRunEnded flips the run to ended and stores the wrap-up summary.
func (s *SQLiteStore) UpdateRunEnded(ctx context.Context, runID string, summary *domain.RunSummary) error {
	b, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, summary = ?, updated_at = ? WHERE run_id = ?`,
		domain.RunStatusEnded, string(b), time.Now().UTC(), runID)
	return err
}

// CreateNode appends one timeline node.
func (s *SQLiteStore) CreateNode(ctx context.Context, node *domain.Node) error {
	return createNode(ctx, s.db, node)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func createNode(ctx context.Context, db execer, node *domain.Node) error {
	deltas, err := json.Marshal(node.MetricDeltas)
	if err != nil {
		return fmt.Errorf("marshal metric deltas: %w", err)
	}
	snapshot, err := json.Marshal(node.MetricsSnapshot)
	if err != nil {
		return fmt.Errorf("marshal metrics snapshot: %w", err)
	}
	changelog, err := json.Marshal(node.Changelog)
	if err != nil {
		return fmt.Errorf("marshal changelog: %w", err)
	}
	var options interface{}
	if len(node.NextOptions) > 0 {
		b, err := json.Marshal(node.NextOptions)
		if err != nil {
			return fmt.Errorf("marshal options: %w", err)
		}
		options = string(b)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO nodes (node_id, run_id, seq, simulated_date, action_type, action_label, action_details, story, changelog, metric_deltas, metrics_snapshot, next_options, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		node.NodeID, node.RunID, node.Seq, node.SimulatedDate, node.ActionType,
		node.ActionLabel, node.ActionDetails, node.Story, string(changelog),
		string(deltas), string(snapshot), options, node.CreatedAt)
	return err
}

// CreateNodes appends a batch of nodes in one transaction. Used by auto
// trajectory creation, which writes the whole timeline at once.
func (s *SQLiteStore) CreateNodes(ctx context.Context, nodes []domain.Node) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for i := range nodes {
		if err := createNode(ctx, tx, &nodes[i]); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// GetLatestNode retrieves the node with the highest seq for a run.
// Returns (nil, nil) if the run has no nodes.
func (s *SQLiteStore) GetLatestNode(ctx context.Context, runID string) (*domain.Node, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT node_id, run_id, seq, simulated_date, action_type, action_label, action_details, story, changelog, metric_deltas, metrics_snapshot, next_options, created_at
		 FROM nodes WHERE run_id = ? ORDER BY seq DESC LIMIT 1`, runID)
	node, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return node, nil
}

func scanNode(row rowScanner) (*domain.Node, error) {
	var node domain.Node
	var details, story, changelog, options sql.NullString
	var deltas, snapshot string
	err := row.Scan(&node.NodeID, &node.RunID, &node.Seq, &node.SimulatedDate,
		&node.ActionType, &node.ActionLabel, &details, &story, &changelog,
		&deltas, &snapshot, &options, &node.CreatedAt)
	if err != nil {
		return nil, err
	}
	node.ActionDetails = details.String
	node.Story = story.String
	if changelog.Valid && changelog.String != "" {
		if err := json.Unmarshal([]byte(changelog.String), &node.Changelog); err != nil {
			return nil, fmt.Errorf("unmarshal changelog: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(deltas), &node.MetricDeltas); err != nil {
		return nil, fmt.Errorf("unmarshal metric deltas: %w", err)
	}
	if err := json.Unmarshal([]byte(snapshot), &node.MetricsSnapshot); err != nil {
		return nil, fmt.Errorf("unmarshal metrics snapshot: %w", err)
	}
	if options.Valid && options.String != "" {
		if err := json.Unmarshal([]byte(options.String), &node.NextOptions); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
	}
	return &node, nil
}

// GetNodes retrieves a run's nodes in seq order. A limit <= 0 returns the
// whole timeline.
func (s *SQLiteStore) GetNodes(ctx context.Context, runID string, limit int) ([]domain.Node, error) {
	query := `SELECT node_id, run_id, seq, simulated_date, action_type, action_label, action_details, story, changelog, metric_deltas, metrics_snapshot, next_options, created_at
		 FROM nodes WHERE run_id = ? ORDER BY seq ASC`
	args := []interface{}{runID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []domain.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *node)
	}
	return nodes, rows.Err()
}
