package catalog

import "fmt"

// Stats returns a whole-catalog summary used by the `stats` CLI command:
// row counts across every table plus a breakdown of runs by phase.
func (c *Catalog) Stats() (Stats, error) {
	var s Stats
	s.RunsByType = map[string]int{}

	if err := c.db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&s.TotalFiles); err != nil {
		return s, fmt.Errorf("catalog: stats total files: %w", err)
	}
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM extractions`).Scan(&s.TotalExtractions); err != nil {
		return s, fmt.Errorf("catalog: stats total extractions: %w", err)
	}
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM labels`).Scan(&s.TotalLabels); err != nil {
		return s, fmt.Errorf("catalog: stats total labels: %w", err)
	}
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM plans`).Scan(&s.TotalPlans); err != nil {
		return s, fmt.Errorf("catalog: stats total plans: %w", err)
	}
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&s.TotalRuns); err != nil {
		return s, fmt.Errorf("catalog: stats total runs: %w", err)
	}

	rows, err := c.db.Query(`SELECT run_type, COUNT(*) FROM runs GROUP BY run_type`)
	if err != nil {
		return s, fmt.Errorf("catalog: stats runs by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var runType string
		var n int
		if err := rows.Scan(&runType, &n); err != nil {
			return s, fmt.Errorf("catalog: scan runs by type: %w", err)
		}
		s.RunsByType[runType] = n
	}
	return s, rows.Err()
}
