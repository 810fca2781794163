package savers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/samuelfneumann/quadrl/experiment/tracker"
)

// DatabaseName is the name of the database file a SQLiteSaver creates
const DatabaseName = "episodes.db"

// SQLiteSaver saves the data of all Trackers to the table
// episodes(run_id, episode, metric, value) of a SQLite database.
// Several runs may share one database, each run's rows are tagged with
// its run ID.
type SQLiteSaver struct {
	db  *sql.DB
	run string
}

// NewSQLite returns a new SQLiteSaver using the database DatabaseName
// in dir. Rows are tagged with run.
func NewSQLite(dir, run string) (*SQLiteSaver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("newSQLite: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, DatabaseName))
	if err != nil {
		return nil, fmt.Errorf("newSQLite: %w", err)
	}
	if err := ensureEpisodeSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("newSQLite: %w", err)
	}
	return &SQLiteSaver{db: db, run: run}, nil
}

// Save inserts the data of all Trackers in a single transaction
func (s *SQLiteSaver) Save(trackers ...tracker.Tracker) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	for _, t := range trackers {
		for i, v := range t.Data() {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO episodes (run_id, episode, metric, value)
				VALUES (?, ?, ?, ?)
			`, s.run, i, t.Name(), v)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("save: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Load returns the values of metric saved for run, ordered by episode
func (s *SQLiteSaver) Load(ctx context.Context, run,
	metric string) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT value FROM episodes
		WHERE run_id = ? AND metric = ?
		ORDER BY episode ASC
	`, run, metric)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	defer rows.Close()

	var data []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		data = append(data, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return data, nil
}

// Close closes the database
func (s *SQLiteSaver) Close() error {
	return s.db.Close()
}

func ensureEpisodeSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS episodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			episode INTEGER NOT NULL,
			metric TEXT NOT NULL,
			value REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_episodes_run ON episodes(run_id, metric);
	`)
	return err
}
