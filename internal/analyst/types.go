// Package analyst is the client for the external AI analysis service. The
// service turns a dataset summary plus a question into narrative text,
// chart suggestions, KPIs and insights; it also proposes cleaning actions.
// Nothing here mutates data: every failure is recoverable by the caller.
package analyst

import (
	"errors"

	"github.com/johan-st/datadeck/internal/dataset"
)

// AnalyzeRequest is the payload for an analysis call.
type AnalyzeRequest struct {
	Summary    string        `json:"summary"`
	Question   string        `json:"question"`
	SampleRows []dataset.Row `json:"sample_rows"`
}

// Analysis is the service's answer to a question.
type Analysis struct {
	Text     string           `json:"text"`
	Chart    *ChartSuggestion `json:"chart,omitempty"`
	Insights []string         `json:"insights,omitempty"`
	Metrics  []Metric         `json:"metrics,omitempty"`
}

// ChartSuggestion describes a chart the service thinks fits the question.
type ChartSuggestion struct {
	Kind   string `json:"kind"`
	Column string `json:"column"`
	Title  string `json:"title,omitempty"`
}

// Metric is one KPI the service extracted.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Suggestion is one proposed cleaning action.
type Suggestion struct {
	Action string `json:"action"`
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// Error taxonomy for the service boundary. Callers surface these as
// transient status errors and leave all data untouched.
var (
	ErrUnauthorized = errors.New("analyst: unauthorized")
	ErrRateLimited  = errors.New("analyst: rate limited")
	ErrUnavailable  = errors.New("analyst: service unavailable")
)
