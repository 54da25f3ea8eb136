package repository

import (
	"context"

	"giftfeed/internal/model"
)

type RunLogRepository struct {
	DB Execer
}

// Insert persists one run summary. Error message and http status are
// nullable in the schema; zero values map to NULL.
func (r *RunLogRepository) Insert(ctx context.Context, lg model.RunLog) error {
	var errMsg any
	if lg.ErrorMsg != "" {
		errMsg = lg.ErrorMsg
	}
	var httpStatus any
	if lg.HTTPStatus != 0 {
		httpStatus = lg.HTTPStatus
	}

	_, err := r.DB.Exec(ctx, `
		INSERT INTO sync_logs
			(id, platform, status, items_found, items_saved, error_message, http_status, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, lg.ID, lg.Platform, lg.Status, lg.ItemsFound, lg.ItemsSaved, errMsg, httpStatus, lg.DurationMS, lg.CreatedAt)
	return err
}

// Finish moves the record out of the running state. A run crashing before
// this call leaves the row stuck in running, which the healthcheck tooling
// treats as a failure after a timeout.
func (r *RunLogRepository) Finish(ctx context.Context, lg model.RunLog) error {
	var errMsg any
	if lg.ErrorMsg != "" {
		errMsg = lg.ErrorMsg
	}
	var httpStatus any
	if lg.HTTPStatus != 0 {
		httpStatus = lg.HTTPStatus
	}

	_, err := r.DB.Exec(ctx, `
		UPDATE sync_logs
		SET status = $2,
		    items_found = $3,
		    items_saved = $4,
		    error_message = $5,
		    http_status = $6,
		    duration_ms = $7
		WHERE id = $1
	`, lg.ID, lg.Status, lg.ItemsFound, lg.ItemsSaved, errMsg, httpStatus, lg.DurationMS)
	return err
}
