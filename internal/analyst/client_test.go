package analyst

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/johan-st/datadeck/internal/dataset"
)

func TestAnalyze(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(Analysis{
			Text:     "Revenue is concentrated in the north region.",
			Chart:    &ChartSuggestion{Kind: "bar", Column: "region"},
			Insights: []string{"north leads"},
			Metrics:  []Metric{{Label: "Total", Value: "240.49"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", WithModel("fast"))
	got, err := c.Analyze(context.Background(), AnalyzeRequest{
		Summary:    "sales: 4 rows",
		Question:   "where is revenue concentrated?",
		SampleRows: []dataset.Row{{"region": "north"}},
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if gotPath != "/v1/analyze" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotPayload["model"] != "fast" {
		t.Errorf("model = %v", gotPayload["model"])
	}
	if got.Text == "" || got.Chart == nil || got.Chart.Column != "region" {
		t.Errorf("unexpected analysis: %+v", got)
	}
}

func TestAnalyzeErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"server error", http.StatusBadGateway, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "k")
			_, err := c.Analyze(context.Background(), AnalyzeRequest{Question: "q"})
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAnalyzeEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	if _, err := c.Analyze(context.Background(), AnalyzeRequest{Question: "q"}); err == nil {
		t.Error("expected error for empty analysis text")
	}
}

func TestCleaningSuggestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/suggestions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"suggestions":[{"action":"remove-nulls","column":"revenue","reason":"2 blank cells"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	got, err := c.CleaningSuggestions(context.Background(), "sales", nil)
	if err != nil {
		t.Fatalf("CleaningSuggestions: %v", err)
	}
	if len(got) != 1 || got[0].Action != "remove-nulls" || got[0].Column != "revenue" {
		t.Errorf("unexpected suggestions: %+v", got)
	}
}
