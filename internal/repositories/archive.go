package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/nvale/scrapedeck/internal/models"
	"github.com/nvale/scrapedeck/internal/shared"
)

// ArchiveRepository persists export runs and the records they contained.
type ArchiveRepository struct {
	db *sql.DB
}

// NewArchiveRepository creates a new ArchiveRepository with the given database connection
func NewArchiveRepository(db *sql.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// Save stores an export entry together with its records in one transaction.
//
// Records already archived by an earlier export are skipped; the entry's
// RecordCount is set to the number of records newly archived. The entry's
// ID and CreatedAt are assigned here.
func (r *ArchiveRepository) Save(entry *models.ExportEntry, records []models.HistoryRecord) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	entry.ID = shared.GenerateID()
	entry.CreatedAt = time.Now()

	added := 0
	for _, rec := range records {
		result, err := tx.Exec(
			`INSERT OR IGNORE INTO archived_records (record_id, export_id, title, status, archived_at)
			 VALUES (?, ?, ?, ?, ?)`,
			rec.ID, entry.ID, rec.Title, string(rec.Status), entry.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to archive record %s: %w", rec.ID, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		added += int(rows)
	}
	entry.RecordCount = added

	var status any = string(entry.Status)
	if entry.Status == "" {
		status = nil
	}
	var search any = entry.Search
	if entry.Search == "" {
		search = nil
	}

	_, err = tx.Exec(
		`INSERT INTO exports (id, path, search, status, record_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Path, search, status, entry.RecordCount, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert export: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit export: %w", err)
	}

	return nil
}

// Get retrieves an export entry by ID
func (r *ArchiveRepository) Get(id string) (*models.ExportEntry, error) {
	row := r.db.QueryRow(
		`SELECT id, path, search, status, record_count, created_at FROM exports WHERE id = ?`, id,
	)

	entry, err := scanEntry(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("export not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan export: %w", err)
	}

	return entry, nil
}

// List retrieves export entries, newest first
func (r *ArchiveRepository) List() ([]*models.ExportEntry, error) {
	rows, err := r.db.Query(
		`SELECT id, path, search, status, record_count, created_at FROM exports ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	var entries []*models.ExportEntry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// ArchivedCount returns the number of distinct records ever archived
func (r *ArchiveRepository) ArchivedCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM archived_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count archived records: %w", err)
	}
	return count, nil
}

func scanEntry(scan func(...any) error) (*models.ExportEntry, error) {
	var (
		entry  models.ExportEntry
		search sql.NullString
		status sql.NullString
	)

	err := scan(&entry.ID, &entry.Path, &search, &status, &entry.RecordCount, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}

	entry.Search = search.String
	if status.Valid {
		entry.Status = models.Status(status.String)
	}

	return &entry, nil
}
