package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nvale/scrapedeck/internal/models"
	"github.com/nvale/scrapedeck/internal/shared"
)

// HistoryAPI defines the history operations consumed by the synchronizer
// and the CLI.
type HistoryAPI interface {
	// List fetches one page of history records with the authoritative total.
	List(ctx context.Context, query models.HistoryQuery) (*models.HistoryPage, error)

	// Get retrieves a single record, including its conflict data.
	Get(ctx context.Context, id string) (*models.HistoryRecord, error)

	// Delete removes one record by id.
	Delete(ctx context.Context, id string) error

	// DeleteMany removes the given records in one call.
	DeleteMany(ctx context.Context, ids []string) error

	// Clear removes all records.
	Clear(ctx context.Context) error

	// Export returns the server's raw export blob for the query.
	Export(ctx context.Context, query models.HistoryQuery) ([]byte, error)

	// Resolve submits one conflict resolution.
	Resolve(ctx context.Context, req models.ResolutionRequest) error

	// Retry resubmits a failed record using the resolution shape.
	Retry(ctx context.Context, req models.ResolutionRequest) error
}

// MetadataAPI defines the metadata lookups consumed by the wizard.
type MetadataAPI interface {
	// Search performs an explicit candidate search. When fuzzy is set the
	// server may substitute a simplified term, reported via EffectiveQuery.
	Search(ctx context.Context, query string, fuzzy bool) (*models.SearchResponse, error)

	// SeriesDetail fetches one series with its seasons and episodes.
	SeriesDetail(ctx context.Context, id int) (*models.Series, error)
}

// apiError is the server's error envelope.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// decodeError turns a non-2xx response body into a wrapped error, preferring
// the server's human-readable message when one is present.
func decodeError(status int, body []byte) error {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return fmt.Errorf("%w: %s (status %d)", shared.ErrAPIRequest, e.Message, status)
	}
	return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, status)
}
