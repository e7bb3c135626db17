package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// CreateRun inserts a new run row in state "running" and returns its id.
func (c *Catalog) CreateRun(runType RunType, config any) (int64, error) {
	var blob json.RawMessage
	if config != nil {
		b, err := json.Marshal(config)
		if err != nil {
			return 0, fmt.Errorf("catalog: marshal run config: %w", err)
		}
		blob = b
	}
	res, err := c.db.Exec(
		`INSERT INTO runs (run_type, config, started_at, status) VALUES (?, ?, strftime('%s','now'), ?)`,
		string(runType), []byte(blob), string(StatusRunning),
	)
	if err != nil {
		return 0, fmt.Errorf("catalog: create run: %w", err)
	}
	return res.LastInsertId()
}

// CompleteRun marks a run terminal. A non-nil cause marks it failed;
// otherwise it is marked completed. completed_at is set iff the status is
// terminal, so this is the only path that sets it.
func (c *Catalog) CompleteRun(runID int64, cause error) error {
	status := StatusCompleted
	var errText *string
	if cause != nil {
		status = StatusFailed
		msg := cause.Error()
		errText = &msg
	}
	_, err := c.db.Exec(
		`UPDATE runs SET completed_at = strftime('%s','now'), status = ?, error = ? WHERE id = ?`,
		string(status), errText, runID,
	)
	if err != nil {
		return fmt.Errorf("catalog: complete run %d: %w", runID, err)
	}
	return nil
}

// LatestRunID returns the id of the most recently started run of the given
// type, regardless of its outcome.
func (c *Catalog) LatestRunID(runType RunType) (int64, error) {
	var id int64
	row := c.db.QueryRow(`SELECT id FROM runs WHERE run_type = ? ORDER BY started_at DESC, id DESC LIMIT 1`, string(runType))
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("catalog: no %s run found", runType)
		}
		return 0, fmt.Errorf("catalog: latest %s run: %w", runType, err)
	}
	return id, nil
}

// GetRun fetches a run by id.
func (c *Catalog) GetRun(runID int64) (*Run, error) {
	row := c.db.QueryRow(`SELECT id, run_type, config, started_at, completed_at, status, error FROM runs WHERE id = ?`, runID)
	r := &Run{}
	var runType, status string
	var config []byte
	if err := row.Scan(&r.ID, &runType, &config, &r.StartedAt, &r.CompletedAt, &status, &r.Error); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("catalog: get run %d: %w", runID, err)
	}
	r.Type = RunType(runType)
	r.Status = RunStatus(status)
	if len(config) > 0 {
		r.Config = json.RawMessage(config)
	}
	return r, nil
}
