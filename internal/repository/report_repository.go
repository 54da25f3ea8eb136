package repository

import (
	"database/sql"
	"time"

	"giftfeed/internal/model"
)

// ReportRepository serves the operational tooling over database/sql.
// Run-log writes never transition a record out of "running" on crash, so
// monitoring has to find the stuck ones itself.
type ReportRepository struct {
	DB *sql.DB
}

// StuckRuns returns run-log rows still marked running after maxAge.
func (r *ReportRepository) StuckRuns(maxAge time.Duration) ([]model.RunLog, error) {
	rows, err := r.DB.Query(`
		SELECT id, platform, created_at
		FROM sync_logs
		WHERE status = $1
		  AND created_at < now() - ($2 * interval '1 second')
		ORDER BY created_at
	`, model.RunStatusRunning, maxAge.Seconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stuck []model.RunLog
	for rows.Next() {
		var lg model.RunLog
		if err := rows.Scan(&lg.ID, &lg.Platform, &lg.CreatedAt); err != nil {
			return nil, err
		}
		lg.Status = model.RunStatusRunning
		stuck = append(stuck, lg)
	}
	return stuck, rows.Err()
}

// CategoryCounts reports how many products each category holds; used for
// post-sync verification.
func (r *ReportRepository) CategoryCounts() (map[string]int, error) {
	rows, err := r.DB.Query(`SELECT category, count(*) FROM products GROUP BY category ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[category] = n
	}
	return counts, rows.Err()
}
