package grid

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/johan-st/datadeck/internal/dataset"
)

// Direction is the tri-state sort direction.
type Direction int

const (
	DirNone Direction = iota
	DirAsc
	DirDesc
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirAsc:
		return "asc"
	case DirDesc:
		return "desc"
	default:
		return "none"
	}
}

// SortConfig is the current sort column and direction. A zero value means
// no sort.
type SortConfig struct {
	Column    string
	Direction Direction
}

// Toggle returns the config after a sort request on column: repeated
// requests on the same column cycle asc, desc, none; a different column
// always starts at asc.
func (s SortConfig) Toggle(column string) SortConfig {
	if s.Column != column {
		return SortConfig{Column: column, Direction: DirAsc}
	}
	switch s.Direction {
	case DirAsc:
		return SortConfig{Column: column, Direction: DirDesc}
	case DirDesc:
		return SortConfig{Column: column, Direction: DirNone}
	default:
		return SortConfig{Column: column, Direction: DirAsc}
	}
}

// ViewRow is one row of pipeline output: the row plus its position in the
// unfiltered store, which mutation operations need to map edits back.
type ViewRow struct {
	Pos int
	Row dataset.Row
}

// viewKey is the memoization key: the four inputs the view depends on.
type viewKey struct {
	storeVersion uint64
	filterRev    uint64
	search       string
	sort         SortConfig
}

// Pipeline computes the display order for a store: filter, then search,
// then sort. The result is cached per input tuple so high-frequency events
// (scrolling, cursor movement) never re-run the O(n log n) work.
type Pipeline struct {
	collator *collate.Collator
	key      viewKey
	cached   []ViewRow
	valid    bool
}

// NewPipeline creates a pipeline. String sort keys compare with an
// undetermined-locale collator rather than raw byte order.
func NewPipeline() *Pipeline {
	return &Pipeline{collator: collate.New(language.Und)}
}

// View returns the ordered, filtered view of the store. The input rows are
// never mutated; sorting reorders a fresh slice of ViewRows.
func (p *Pipeline) View(store *dataset.Store, filters *FilterSet, search string, sortCfg SortConfig) []ViewRow {
	key := viewKey{
		storeVersion: store.Version(),
		filterRev:    filters.Revision(),
		search:       search,
		sort:         sortCfg,
	}
	if p.valid && key == p.key {
		return p.cached
	}

	rows := store.Rows()
	out := make([]ViewRow, 0, len(rows))

	// Filter stage: keep rows satisfying every active filter.
	for pos, row := range rows {
		if filters.Match(row) {
			out = append(out, ViewRow{Pos: pos, Row: row})
		}
	}

	// Search stage: narrow the filtered set to rows where any field's
	// string form contains the search text, case-insensitively.
	if search != "" {
		needle := strings.ToLower(search)
		kept := out[:0]
		for _, vr := range out {
			if rowContains(vr.Row, needle) {
				kept = append(kept, vr)
			}
		}
		out = kept
	}

	// Sort stage: stable, so equal keys keep their filtered order.
	if sortCfg.Column != "" && sortCfg.Direction != DirNone {
		col := sortCfg.Column
		desc := sortCfg.Direction == DirDesc
		sort.SliceStable(out, func(i, j int) bool {
			if desc {
				return p.less(out[j].Row[col], out[i].Row[col])
			}
			return p.less(out[i].Row[col], out[j].Row[col])
		})
	}

	p.key = key
	p.cached = out
	p.valid = true
	return out
}

// Invalidate drops the cached view. Only needed when the caller replaces a
// store or filter set object wholesale and the version counters could
// collide.
func (p *Pipeline) Invalidate() {
	p.valid = false
	p.cached = nil
}

// less orders two cell values: numerically when both coerce to numbers,
// by collation otherwise.
func (p *Pipeline) less(a, b any) bool {
	an, bn := dataset.Number(a), dataset.Number(b)
	if an == an && bn == bn { // neither is NaN
		return an < bn
	}
	return p.collator.CompareString(dataset.Format(a), dataset.Format(b)) < 0
}

// rowContains reports whether any field of the row contains needle.
// needle must already be lowercased.
func rowContains(row dataset.Row, needle string) bool {
	for _, v := range row {
		if strings.Contains(strings.ToLower(dataset.Format(v)), needle) {
			return true
		}
	}
	return false
}
