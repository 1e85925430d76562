package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

)

func TestTMDBService(t *testing.T) {
	t.Run("Search", func(t *testing.T) {
		t.Run("Forwards Query And Fuzzy Flag", func(t *testing.T) {
			var gotQuery, gotFuzzy string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query().Get("query")
				gotFuzzy = r.URL.Query().Get("fuzzy")
				w.Write([]byte(`{"query":"Foo","total_results":1,"results":[{"id":100,"name":"Foo","media_type":"tv"}]}`))
			}))
			defer server.Close()

			resp, err := NewTMDBService(server.URL, nil).Search(context.Background(), "Foo", true)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if gotQuery != "Foo" || gotFuzzy != "true" {
				t.Errorf("query params not forwarded: query=%q fuzzy=%q", gotQuery, gotFuzzy)
			}
			if len(resp.Results) != 1 || resp.Results[0].ID != 100 {
				t.Error("expected one candidate with id 100")
			}
		})

		t.Run("Effective Query Preserved", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"query":"Foo","total_results":0,"results":[],"effective_query":"Foo Bar"}`))
			}))
			defer server.Close()

			resp, err := NewTMDBService(server.URL, nil).Search(context.Background(), "Foo", true)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.EffectiveQuery != "Foo Bar" {
				t.Errorf("expected effective query, got %q", resp.EffectiveQuery)
			}
		})

		t.Run("Empty Query Rejected Without Network Call", func(t *testing.T) {
			called := false
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))
			defer server.Close()

			if _, err := NewTMDBService(server.URL, nil).Search(context.Background(), "", false); err == nil {
				t.Error("expected error for empty query")
			}
			if called {
				t.Error("server must not be called for empty query")
			}
		})
	})

	t.Run("SeriesDetail", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/tmdb/series/42" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Write([]byte(`{"id":42,"name":"Example Show","seasons":[{"season_number":1,"name":"Season 1","episodes":[{"episode_number":1,"name":"Pilot"}]}]}`))
			}))
			defer server.Close()

			series, err := NewTMDBService(server.URL, nil).SeriesDetail(context.Background(), 42)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if series.Name != "Example Show" || len(series.Seasons) != 1 {
				t.Error("expected decoded series with one season")
			}
			if len(series.Seasons[0].Episodes) != 1 {
				t.Error("expected nested episode list")
			}
		})

		t.Run("Missing Series", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			if _, err := NewTMDBService(server.URL, nil).SeriesDetail(context.Background(), 7); err == nil {
				t.Error("expected error for empty series payload")
			}
		})

		t.Run("Server Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte(`{"error":"upstream","message":"TMDB unavailable"}`))
			}))
			defer server.Close()

			if _, err := NewTMDBService(server.URL, nil).SeriesDetail(context.Background(), 7); err == nil {
				t.Error("expected error for upstream failure")
			}
		})
	})
}
