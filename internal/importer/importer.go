// Package importer loads procedures from the CSV layout operators fill in
// from the import template.
package importer

import (
	"context"
	"fmt"

	"github.com/farxc/portal_tramites/internal/logger"
	"github.com/farxc/portal_tramites/internal/store"
	"github.com/google/uuid"
)

// Report summarizes one import run.
type Report struct {
	HistoryID int64    `json:"history_id,omitempty"`
	Status    string   `json:"status"`
	TotalRows int      `json:"total_rows"`
	Inserted  int64    `json:"inserted"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
}

type Importer struct {
	storage   *store.Storage
	appLogger *logger.Logger
}

func New(storage *store.Storage, appLogger *logger.Logger) *Importer {
	return &Importer{storage: storage, appLogger: appLogger}
}

// Prepare parses text against the current dependencias without writing anything.
func (im *Importer) Prepare(ctx context.Context, text string) (ParseResult, error) {
	units, err := im.storage.Dependencias.List(ctx, store.DependenciaFilter{})
	if err != nil {
		return ParseResult{}, fmt.Errorf("failed to load dependencias: %w", err)
	}
	return Parse(text, NewNameResolver(units)), nil
}

// Run records the attempt in import_history, parses text and inserts every
// valid row in one batch stamped with by. Parse problems leave the run
// partial; an insert error fails the whole batch.
func (im *Importer) Run(ctx context.Context, source, trigger, text string, by uuid.NullUUID) (*Report, error) {
	const component = "Importer"

	history := &store.ImportHistory{
		SourceFile:  source,
		TriggerType: trigger,
		Status:      store.StatusInProgress,
	}
	if err := im.storage.ImportHistory.Insert(ctx, history); err != nil {
		return nil, fmt.Errorf("failed to create import record: %w", err)
	}
	im.appLogger.Info(component, "Import started: id=%d source=%s trigger=%s", history.ID, source, trigger)

	report := &Report{HistoryID: history.ID, Errors: []string{}}

	parsed, err := im.Prepare(ctx, text)
	if err != nil {
		im.finish(ctx, history, report, store.StatusFailure)
		return report, err
	}

	report.TotalRows = parsed.TotalRows
	report.Skipped = parsed.Skipped
	if parsed.Errors != nil {
		report.Errors = parsed.Errors
	}

	if len(parsed.Rows) == 0 {
		im.appLogger.Warn(component, "No valid rows to import: id=%d total=%d skipped=%d", history.ID, parsed.TotalRows, parsed.Skipped)
		im.finish(ctx, history, report, store.StatusFailure)
		return report, nil
	}

	for i := range parsed.Rows {
		parsed.Rows[i].CreatedBy = by
		parsed.Rows[i].UpdatedBy = by
	}

	inserted, err := im.storage.Tramites.BulkInsert(ctx, parsed.Rows)
	if err != nil {
		im.appLogger.Error(component, "Batch insert failed: id=%d rows=%d error=%v", history.ID, len(parsed.Rows), err)
		report.Errors = append(report.Errors, err.Error())
		im.finish(ctx, history, report, store.StatusFailure)
		return report, err
	}
	report.Inserted = inserted

	status := store.StatusSuccess
	if len(report.Errors) > 0 || report.Skipped > 0 {
		status = store.StatusPartial
	}
	im.finish(ctx, history, report, status)

	im.appLogger.Info(component, "Import finished: id=%d status=%s inserted=%d skipped=%d errors=%d",
		history.ID, status, inserted, report.Skipped, len(report.Errors))
	return report, nil
}

func (im *Importer) finish(ctx context.Context, history *store.ImportHistory, report *Report, status string) {
	const component = "Importer"

	report.Status = status
	history.Status = status
	history.TotalRows = report.TotalRows
	history.InsertedRows = int(report.Inserted)
	history.ErrorCount = len(report.Errors)
	history.Errors = report.Errors

	if err := im.storage.ImportHistory.Finish(ctx, history); err != nil {
		im.appLogger.Error(component, "Failed to update final status: id=%d status=%s err=%v", history.ID, status, err)
	}
}
