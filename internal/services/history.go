// History endpoint client for the scraper server
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nvale/scrapedeck/internal/models"
	"github.com/nvale/scrapedeck/internal/shared"
)

// HistoryService implements [HistoryAPI] against the server's
// /api/history endpoints.
type HistoryService struct {
	baseURL    string
	httpClient *http.Client
}

var _ HistoryAPI = (*HistoryService)(nil)

// NewHistoryService creates a history client for the given server base URL.
func NewHistoryService(baseURL string, client *http.Client) *HistoryService {
	if client == nil {
		client = http.DefaultClient
	}
	return &HistoryService{baseURL: baseURL, httpClient: client}
}

func (s *HistoryService) request(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
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

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func historyQueryValues(query models.HistoryQuery) url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(query.Page))
	values.Set("page_size", strconv.Itoa(query.PageSize))
	if query.Search != "" {
		values.Set("search", query.Search)
	}
	if query.Status != "" {
		values.Set("status", string(query.Status))
	}
	if query.JobID != "" {
		values.Set("job_id", query.JobID)
	}
	return values
}

// List fetches one page of history records.
func (s *HistoryService) List(ctx context.Context, query models.HistoryQuery) (*models.HistoryPage, error) {
	var page models.HistoryPage
	path := "/api/history?" + historyQueryValues(query).Encode()
	if err := s.request(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	if page.Records == nil {
		page.Records = []models.HistoryRecord{}
	}
	return &page, nil
}

// Get retrieves one record with its conflict data.
func (s *HistoryService) Get(ctx context.Context, id string) (*models.HistoryRecord, error) {
	var rec models.HistoryRecord
	if err := s.request(ctx, http.MethodGet, "/api/history/"+url.PathEscape(id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes one record by id.
func (s *HistoryService) Delete(ctx context.Context, id string) error {
	return s.request(ctx, http.MethodDelete, "/api/history/"+url.PathEscape(id), nil, nil)
}

// DeleteMany removes the given records in one call.
func (s *HistoryService) DeleteMany(ctx context.Context, ids []string) error {
	payload := struct {
		IDs []string `json:"ids"`
	}{IDs: ids}
	return s.request(ctx, http.MethodPost, "/api/history/delete", payload, nil)
}

// Clear removes all history records.
func (s *HistoryService) Clear(ctx context.Context) error {
	return s.request(ctx, http.MethodDelete, "/api/history", nil, nil)
}

// Export returns the raw export blob for the query. The body is treated as
// opaque text and saved to disk by the caller.
func (s *HistoryService) Export(ctx context.Context, query models.HistoryQuery) ([]byte, error) {
	path := "/api/history/export?" + historyQueryValues(query).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp.StatusCode, data)
	}
	return data, nil
}

// Resolve submits one conflict resolution for a pending_action record.
func (s *HistoryService) Resolve(ctx context.Context, req models.ResolutionRequest) error {
	path := "/api/history/" + url.PathEscape(req.RecordID) + "/resolve"
	return s.request(ctx, http.MethodPost, path, req, nil)
}

// Retry resubmits a failed record. Same payload shape as Resolve, different
// endpoint because the server routes by record status.
func (s *HistoryService) Retry(ctx context.Context, req models.ResolutionRequest) error {
	path := "/api/history/" + url.PathEscape(req.RecordID) + "/retry"
	return s.request(ctx, http.MethodPost, path, req, nil)
}
