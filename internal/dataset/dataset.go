// Package dataset holds the in-memory row store for imported tabular data
// and the mutation operations that act on it.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Row maps a column name to a scalar cell value (string, float64 or nil).
// The column set is fixed per dataset but not enforced per row.
type Row map[string]any

// Dataset is one imported table: its identity, canonical column order and
// the row store. Row order is import order; display sorting never touches it.
type Dataset struct {
	ID        string
	Name      string
	Columns   []string
	Store     *Store
	Summary   string
	SizeBytes int64
	CreatedAt time.Time
}

// New creates a dataset around the given columns and rows.
func New(name string, columns []string, rows []Row) *Dataset {
	d := &Dataset{
		ID:        uuid.NewString(),
		Name:      name,
		Columns:   append([]string(nil), columns...),
		Store:     NewStore(rows),
		CreatedAt: time.Now(),
	}
	d.Summary = d.Summarize()
	return d
}

// Summarize builds a short description of the dataset: dimensions and the
// inferred kind of each column. Used as context for the analyst service.
func (d *Dataset) Summarize() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d rows, %d columns.", d.Name, d.Store.Len(), len(d.Columns))
	for _, col := range d.Columns {
		kind := d.columnKind(col)
		fmt.Fprintf(&b, " %s (%s)", col, kind)
	}
	return b.String()
}

// columnKind reports "number", "text" or "empty" for a column by sampling
// the first non-nil values.
func (d *Dataset) columnKind(col string) string {
	const sample = 50
	seen := 0
	numeric := true
	for _, row := range d.Store.Rows() {
		v, ok := row[col]
		if !ok || v == nil {
			continue
		}
		if !IsNumeric(v) {
			numeric = false
		}
		seen++
		if seen >= sample {
			break
		}
	}
	if seen == 0 {
		return "empty"
	}
	if numeric {
		return "number"
	}
	return "text"
}

// Store is the authoritative ordered sequence of rows for one dataset.
// Mutations are copy-on-write: every writer swaps in a fresh slice and bumps
// the version, so a reader holding a snapshot never observes a partial
// change. The version feeds the query pipeline's memoization key.
type Store struct {
	mu      sync.RWMutex
	rows    []Row
	version uint64
}

// NewStore creates a store over the given rows.
func NewStore(rows []Row) *Store {
	if rows == nil {
		rows = []Row{}
	}
	return &Store{rows: rows, version: 1}
}

// Rows returns the current snapshot. Callers must treat it as immutable.
func (s *Store) Rows() []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows
}

// Len returns the row count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Version returns the mutation counter. It changes iff the rows changed.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// swap atomically replaces the row slice and bumps the version.
func (s *Store) swap(rows []Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
	s.version++
}

// IsNumeric reports whether a stored value is a number.
func IsNumeric(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64, int32:
		return true
	}
	return false
}

// Number coerces a value to a float64 the way the comparison operators need
// it: numbers pass through, numeric strings parse, everything else (nil,
// non-numeric text) becomes NaN so ordered comparisons fail closed.
func Number(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case int32:
		return float64(val)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return math.NaN()
		}
		return n
	default:
		return math.NaN()
	}
}

// Format renders a cell value for display and for string-normalized
// comparisons.
func Format(v any) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if math.IsNaN(val) {
			return "NaN"
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// IsNull reports whether a cell counts as missing for cleaning purposes.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	if f, ok := v.(float64); ok {
		return math.IsNaN(f)
	}
	return false
}
