package catalog

import (
	"encoding/json"
	"fmt"
)

// InsertPlan inserts one proposed materialization row. Unlike extractions
// and labels, plans are append-only per run: re-running `plan` for the same
// labeling run with a fresh plan run id produces a new set of rows rather
// than updating existing ones, since a plan run is itself a distinct
// artifact reviewers diff against the previous one.
func (c *Catalog) InsertPlan(p *Plan) (int64, error) {
	tagsJSON, err := json.Marshal(p.Tags)
	if err != nil {
		return 0, fmt.Errorf("catalog: marshal plan tags for file %d: %w", p.FileID, err)
	}
	res, err := c.db.Exec(
		`INSERT INTO plans (
			file_id, label_id, operation, source_path, target_path,
			target_filename, tags, needs_review, plan_run_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, strftime('%s','now'))`,
		p.FileID, p.LabelID, string(p.Operation), p.SourcePath, p.TargetPath,
		p.TargetFilename, string(tagsJSON), p.NeedsReview, p.PlanRunID,
	)
	if err != nil {
		return 0, fmt.Errorf("catalog: insert plan for file %d: %w", p.FileID, err)
	}
	return res.LastInsertId()
}

// PlansByRun returns every plan row produced by a given plan run.
func (c *Catalog) PlansByRun(runID int64) ([]Plan, error) {
	rows, err := c.db.Query(
		`SELECT id, file_id, label_id, operation, source_path, target_path,
		        target_filename, tags, needs_review, plan_run_id, created_at
		 FROM plans WHERE plan_run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("catalog: plans for run %d: %w", runID, err)
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		var p Plan
		var op string
		var tagsJSON string
		if err := rows.Scan(&p.ID, &p.FileID, &p.LabelID, &op, &p.SourcePath, &p.TargetPath,
			&p.TargetFilename, &tagsJSON, &p.NeedsReview, &p.PlanRunID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan plan row: %w", err)
		}
		p.Operation = PlanOperation(op)
		if tagsJSON != "" {
			_ = json.Unmarshal([]byte(tagsJSON), &p.Tags)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// LabelsByRun returns all label rows produced by a given labeling run, the
// input the planner consumes.
func (c *Catalog) LabelsByRun(runID int64) ([]Label, error) {
	rows, err := c.db.Query(
		`SELECT id, file_id, doc_type, title, canonical_filename, suggested_tags,
		        target_group_path, date, issuer, source, confidence, explanation,
		        model_name, prompt_version, labeling_run_id, created_at
		 FROM labels WHERE labeling_run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("catalog: labels for run %d: %w", runID, err)
	}
	defer rows.Close()

	var labels []Label
	for rows.Next() {
		var l Label
		var tagsJSON string
		if err := rows.Scan(&l.ID, &l.FileID, &l.DocType, &l.Title, &l.CanonicalName, &tagsJSON,
			&l.TargetGroupPath, &l.Date, &l.Issuer, &l.Source, &l.Confidence, &l.Explanation,
			&l.ModelName, &l.PromptVersion, &l.LabelingRunID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan label row: %w", err)
		}
		if tagsJSON != "" {
			_ = json.Unmarshal([]byte(tagsJSON), &l.SuggestedTags)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}
