package main

import (
	"context"
	"fmt"

	"github.com/nvale/scrapedeck/internal/formatter"
	"github.com/nvale/scrapedeck/internal/models"
	"github.com/nvale/scrapedeck/internal/repositories"
	"github.com/nvale/scrapedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList fetches and prints one page of history records.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	query := models.HistoryQuery{
		Page:     int(cmd.Int("page")),
		PageSize: int(cmd.Int("page-size")),
		Search:   cmd.String("search"),
		Status:   models.Status(cmd.String("status")),
		JobID:    cmd.String("job"),
	}

	page, err := r.history.List(ctx, query)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	var data []byte
	switch format := cmd.String("format"); format {
	case "json":
		data, err = formatter.ToJSON(page)
	case "csv":
		data, err = formatter.ToCSV(page.Records)
	case "markdown", "md":
		data, err = formatter.ToMarkdown(page)
	case "table", "":
		data, err = formatter.ToTable(page)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return err
	}

	return r.writePlain("%s", data)
}

// HistoryDelete deletes one or more history records by id.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.StringArgs("ids")
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one record id", shared.ErrMissingArgument)
	}

	var err error
	if len(ids) == 1 {
		err = r.history.Delete(ctx, ids[0])
	} else {
		err = r.history.DeleteMany(ctx, ids)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.logger.Info("deleted", "count", len(ids))
	return r.writePlain("Deleted %d record(s)\n", len(ids))
}

// HistoryClear deletes all history records after confirmation.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to clear all history", shared.ErrMissingArgument)
	}

	if err := r.history.Clear(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.writePlain("History cleared\n")
}

// HistoryExport saves the server's export blob to disk and records the export
// in the local archive.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	query := models.HistoryQuery{
		Page:     1,
		PageSize: 1000,
		Search:   cmd.String("search"),
		Status:   models.Status(cmd.String("status")),
	}

	blob, err := r.history.Export(ctx, query)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	path, err := formatter.WriteBlob(blob, cmd.String("output"))
	if err != nil {
		return err
	}
	r.writePlain("Exported to %s\n", path)

	if cmd.Bool("no-archive") {
		return nil
	}

	page, err := r.history.List(ctx, query)
	if err != nil {
		r.logger.Warn("export saved but archive listing failed", "error", err)
		return nil
	}

	repo, closeDB, err := r.openArchive()
	if err != nil {
		r.logger.Warn("export saved but archive unavailable", "error", err)
		return nil
	}
	defer closeDB()

	entry := &models.ExportEntry{Path: path, Search: query.Search, Status: query.Status}
	if err := repo.Save(entry, page.Records); err != nil {
		r.logger.Warn("failed to record export in archive", "error", err)
		return nil
	}

	r.writePlain("Archived %d new record(s) under export %s\n", entry.RecordCount, entry.ID)
	return nil
}

// HistoryExports lists past exports recorded in the local archive.
func (r *Runner) HistoryExports(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openArchive()
	if err != nil {
		return err
	}
	defer closeDB()

	entries, err := repo.List()
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return r.writePlain("No exports recorded\n")
	}

	for _, entry := range entries {
		line := fmt.Sprintf("%s  %s  %d record(s)", entry.CreatedAt.Format("2006-01-02 15:04"), entry.Path, entry.RecordCount)
		if entry.Search != "" {
			line = fmt.Sprintf("%s  search=%q", line, entry.Search)
		}
		if entry.Status != "" {
			line = fmt.Sprintf("%s  status=%s", line, entry.Status)
		}
		r.writePlain("%s\n", line)
	}
	return nil
}

// openArchive opens the local archive database and ensures its schema.
func (r *Runner) openArchive() (*repositories.ArchiveRepository, func() error, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := repositories.EnsureSchema(db); err != nil {
		db.Close()
		return nil, nil, err
	}

	return repositories.NewArchiveRepository(db), db.Close, nil
}
