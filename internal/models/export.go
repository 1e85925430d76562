package models

import "time"

// ExportEntry records one saved history export: where the blob was written
// and which query produced it.
type ExportEntry struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Search      string    `json:"search,omitempty"`
	Status      Status    `json:"status,omitempty"`
	RecordCount int       `json:"record_count"`
	CreatedAt   time.Time `json:"created_at"`
}
