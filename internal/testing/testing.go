// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/nvale/scrapedeck/internal/models"
)

// MockHistoryAPI is a test double for services.HistoryAPI with per-method
// function hooks. Unset hooks return zero values.
type MockHistoryAPI struct {
	ListFn       func(ctx context.Context, query models.HistoryQuery) (*models.HistoryPage, error)
	GetFn        func(ctx context.Context, id string) (*models.HistoryRecord, error)
	DeleteFn     func(ctx context.Context, id string) error
	DeleteManyFn func(ctx context.Context, ids []string) error
	ClearFn      func(ctx context.Context) error
	ExportFn     func(ctx context.Context, query models.HistoryQuery) ([]byte, error)
	ResolveFn    func(ctx context.Context, req models.ResolutionRequest) error
	RetryFn      func(ctx context.Context, req models.ResolutionRequest) error
}

func (m *MockHistoryAPI) List(ctx context.Context, query models.HistoryQuery) (*models.HistoryPage, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, query)
	}
	return &models.HistoryPage{Records: []models.HistoryRecord{}}, nil
}

func (m *MockHistoryAPI) Get(ctx context.Context, id string) (*models.HistoryRecord, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return nil, nil
}

func (m *MockHistoryAPI) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *MockHistoryAPI) DeleteMany(ctx context.Context, ids []string) error {
	if m.DeleteManyFn != nil {
		return m.DeleteManyFn(ctx, ids)
	}
	return nil
}

func (m *MockHistoryAPI) Clear(ctx context.Context) error {
	if m.ClearFn != nil {
		return m.ClearFn(ctx)
	}
	return nil
}

func (m *MockHistoryAPI) Export(ctx context.Context, query models.HistoryQuery) ([]byte, error) {
	if m.ExportFn != nil {
		return m.ExportFn(ctx, query)
	}
	return nil, nil
}

func (m *MockHistoryAPI) Resolve(ctx context.Context, req models.ResolutionRequest) error {
	if m.ResolveFn != nil {
		return m.ResolveFn(ctx, req)
	}
	return nil
}

func (m *MockHistoryAPI) Retry(ctx context.Context, req models.ResolutionRequest) error {
	if m.RetryFn != nil {
		return m.RetryFn(ctx, req)
	}
	return nil
}

// MockMetadataAPI is a test double for services.MetadataAPI.
type MockMetadataAPI struct {
	SearchFn       func(ctx context.Context, query string, fuzzy bool) (*models.SearchResponse, error)
	SeriesDetailFn func(ctx context.Context, id int) (*models.Series, error)
}

func (m *MockMetadataAPI) Search(ctx context.Context, query string, fuzzy bool) (*models.SearchResponse, error) {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, query, fuzzy)
	}
	return &models.SearchResponse{Results: []models.SeriesCandidate{}}, nil
}

func (m *MockMetadataAPI) SeriesDetail(ctx context.Context, id int) (*models.Series, error) {
	if m.SeriesDetailFn != nil {
		return m.SeriesDetailFn(ctx, id)
	}
	return nil, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

var _ io.ReadCloser = (*FCloser)(nil)

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
