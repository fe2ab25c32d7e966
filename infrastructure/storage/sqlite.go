package storage

import (
	"database/sql"
	"fmt"
	"time"

	"e2e_locators/domain/entities"
	"e2e_locators/domain/interfaces"

	_ "modernc.org/sqlite"
)

type reportDB struct {
	db    *sql.DB
	limit int
}

// NewReportDB - opens (or creates) a SQLite report store at path
func NewReportDB(path string, limit int) (interfaces.ReportStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	store := &reportDB{db: db, limit: limit}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *reportDB) migrate() error {
	query := `
	PRAGMA foreign_keys = ON;
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		engine TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS results (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		started_at INTEGER NOT NULL,
		duration INTEGER NOT NULL,
		PRIMARY KEY (run_id, position)
	);`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to run migration: %w", err)
	}
	return nil
}

// SaveReport - inserts the run and its results, then prunes runs beyond the limit
func (s *reportDB) SaveReport(report *entities.RunReport) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO runs (id, engine, started_at, finished_at) VALUES (?, ?, ?, ?)`,
		report.ID, report.Engine, report.StartedAt.UnixNano(), report.FinishedAt.UnixNano()); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM results WHERE run_id = ?`, report.ID); err != nil {
		return fmt.Errorf("failed to reset results: %w", err)
	}
	for i, res := range report.Results {
		if _, err := tx.Exec(`INSERT INTO results (run_id, position, name, status, error, started_at, duration) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			report.ID, i, res.Name, string(res.Status), res.Error, res.StartedAt.UnixNano(), int64(res.Duration)); err != nil {
			return fmt.Errorf("failed to insert result %q: %w", res.Name, err)
		}
	}
	if _, err := tx.Exec(`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY started_at DESC LIMIT ?)`, s.limit); err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM results WHERE run_id NOT IN (SELECT id FROM runs)`); err != nil {
		return fmt.Errorf("failed to prune results: %w", err)
	}
	return tx.Commit()
}

func (s *reportDB) LoadLatest() (*entities.RunReport, error) {
	reports, err := s.loadRuns(`SELECT id, engine, started_at, finished_at FROM runs ORDER BY started_at DESC LIMIT 1`)
	if err != nil || len(reports) == 0 {
		return nil, err
	}
	return &reports[0], nil
}

func (s *reportDB) LoadHistory() ([]entities.RunReport, error) {
	return s.loadRuns(`SELECT id, engine, started_at, finished_at FROM runs ORDER BY started_at ASC`)
}

func (s *reportDB) Close() error {
	return s.db.Close()
}

func (s *reportDB) loadRuns(query string) ([]entities.RunReport, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	reports := []entities.RunReport{}
	for rows.Next() {
		var (
			r                 entities.RunReport
			started, finished int64
		)
		if err := rows.Scan(&r.ID, &r.Engine, &started, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.Unix(0, started)
		r.FinishedAt = time.Unix(0, finished)
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range reports {
		results, err := s.loadResults(reports[i].ID)
		if err != nil {
			return nil, err
		}
		reports[i].Results = results
	}
	return reports, nil
}

func (s *reportDB) loadResults(runID string) ([]entities.ProcedureResult, error) {
	rows, err := s.db.Query(`SELECT name, status, error, started_at, duration FROM results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []entities.ProcedureResult
	for rows.Next() {
		var (
			res               entities.ProcedureResult
			status            string
			started, duration int64
		)
		if err := rows.Scan(&res.Name, &status, &res.Error, &started, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		res.Status = entities.ResultStatus(status)
		res.StartedAt = time.Unix(0, started)
		res.Duration = time.Duration(duration)
		results = append(results, res)
	}
	return results, rows.Err()
}
