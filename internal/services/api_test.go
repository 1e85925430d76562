package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIService(t *testing.T) {
	t.Run("Get", func(t *testing.T) {
		t.Run("JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"status":"ok"}`))
			}))
			defer server.Close()

			svc := NewAPIService(server.URL, nil)
			resp, err := svc.Get(context.Background(), "/health")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if resp.StatusCode != http.StatusOK {
				t.Errorf("expected 200, got %d", resp.StatusCode)
			}
			if !resp.IsJSON {
				t.Error("expected response to be detected as JSON")
			}
		})

		t.Run("Non-JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("plain text export"))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Get(context.Background(), "/export")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("plain text must not be flagged as JSON")
			}
			if string(resp.Body) != "plain text export" {
				t.Errorf("body altered: %q", resp.Body)
			}
		})
	})

	t.Run("Post Sets Content Type", func(t *testing.T) {
		var gotContentType string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotContentType = r.Header.Get("Content-Type")
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		if _, err := NewAPIService(server.URL, nil).Post(context.Background(), "/api/history/delete", []byte(`{"ids":[]}`)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotContentType != "application/json" {
			t.Errorf("expected JSON content type, got %q", gotContentType)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		var gotMethod string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		if _, err := NewAPIService(server.URL, nil).Delete(context.Background(), "/api/history"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotMethod != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", gotMethod)
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		svc := NewAPIService("", nil)
		if svc.baseURL == "" {
			t.Error("expected default base URL")
		}
		if svc.httpClient == nil {
			t.Error("expected default HTTP client")
		}
	})
}
