// TMDB proxy endpoint client for metadata candidate search and series detail
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nvale/scrapedeck/internal/models"
	"github.com/nvale/scrapedeck/internal/shared"
	"golang.org/x/time/rate"
)

// searchRatePerSecond bounds how fast repeated searches hit the server's
// TMDB proxy, which itself is subject to upstream quotas.
const searchRatePerSecond = 4

// TMDBService implements [MetadataAPI] against the server's /api/tmdb
// proxy endpoints.
type TMDBService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ MetadataAPI = (*TMDBService)(nil)

// NewTMDBService creates a metadata client for the given server base URL.
func NewTMDBService(baseURL string, client *http.Client) *TMDBService {
	if client == nil {
		client = http.DefaultClient
	}
	return &TMDBService{
		baseURL:    baseURL,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(searchRatePerSecond), 1),
	}
}

func (s *TMDBService) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Search performs an explicit candidate search. The fuzzy flag lets the
// server fall back to simplified query terms when the original yields
// nothing; the substituted term comes back in EffectiveQuery.
func (s *TMDBService) Search(ctx context.Context, query string, fuzzy bool) (*models.SearchResponse, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("search rate limit: %w", err)
	}

	values := url.Values{}
	values.Set("query", query)
	if fuzzy {
		values.Set("fuzzy", "true")
	}

	var result models.SearchResponse
	if err := s.get(ctx, "/api/tmdb/search?"+values.Encode(), &result); err != nil {
		return nil, err
	}
	if result.Results == nil {
		result.Results = []models.SeriesCandidate{}
	}
	return &result, nil
}

// SeriesDetail fetches one series with seasons and nested episode lists.
func (s *TMDBService) SeriesDetail(ctx context.Context, id int) (*models.Series, error) {
	var series models.Series
	if err := s.get(ctx, "/api/tmdb/series/"+strconv.Itoa(id), &series); err != nil {
		return nil, err
	}
	if series.ID == 0 {
		return nil, fmt.Errorf("%w: id %d", shared.ErrSeriesNotFound, id)
	}
	return &series, nil
}
