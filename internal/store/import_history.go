package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type ImportHistoryStore struct {
	db *sqlx.DB
}

var (
	TriggerTypeManual = "manual"
	TriggerTypeCLI    = "cli"
)

var (
	StatusInProgress = "in_progress"
	StatusSuccess    = "success"
	StatusFailure    = "failure"
	StatusPartial    = "partial"
)

func (ih *ImportHistoryStore) Insert(ctx context.Context, history *ImportHistory) error {
	query := `INSERT INTO import_history (
		source_file,
		trigger_type,
		status
	) VALUES (
		:source_file,
		:trigger_type,
		:status
	) RETURNING id, processed_at`

	rows, err := ih.db.NamedQueryContext(ctx, query, history)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&history.ID, &history.ProcessedAt); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (ih *ImportHistoryStore) Finish(ctx context.Context, history *ImportHistory) error {
	query := `UPDATE import_history SET
		status = $1,
		total_rows = $2,
		inserted_rows = $3,
		error_count = $4,
		errors = $5
	WHERE id = $6`

	_, err := ih.db.ExecContext(ctx, query,
		history.Status,
		history.TotalRows,
		history.InsertedRows,
		history.ErrorCount,
		pq.Array(history.Errors),
		history.ID)
	if err != nil {
		return fmt.Errorf("failed to finish import %d: %w", history.ID, err)
	}
	return nil
}

func (ih *ImportHistoryStore) GetLatest(ctx context.Context, limit int) ([]ImportHistory, error) {
	query := `SELECT
		id,
		source_file,
		trigger_type,
		status,
		total_rows,
		inserted_rows,
		error_count,
		errors,
		processed_at
	FROM import_history
	ORDER BY processed_at DESC
	LIMIT $1`

	rows, err := ih.db.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import history: %w", err)
	}
	defer rows.Close()

	var result []ImportHistory
	for rows.Next() {
		var h ImportHistory
		err := rows.Scan(&h.ID, &h.SourceFile, &h.TriggerType, &h.Status, &h.TotalRows, &h.InsertedRows, &h.ErrorCount, pq.Array(&h.Errors), &h.ProcessedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return result, nil
}
