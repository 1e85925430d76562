// Package repositories implements SQLite persistence for the local export archive.
//
// Every history export written to disk is recorded as an [models.ExportEntry]
// row together with the records it contained. Records are deduplicated by
// record id across exports, so re-exporting an overlapping page only archives
// the records not seen before.
package repositories
