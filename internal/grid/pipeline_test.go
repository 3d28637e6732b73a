package grid

import (
	"testing"

	"github.com/johan-st/datadeck/internal/dataset"
)

func testStore() *dataset.Store {
	return dataset.NewStore([]dataset.Row{
		{"name": "Ada", "dept": "eng", "salary": 120.0},
		{"name": "Grace", "dept": "eng", "salary": 130.0},
		{"name": "Linus", "dept": "ops", "salary": 90.0},
		{"name": "Margaret", "dept": "eng", "salary": 120.0},
		{"name": "Radia", "dept": "ops", "salary": 110.0},
	})
}

func names(rows []ViewRow) []string {
	out := make([]string, len(rows))
	for i, vr := range rows {
		out[i] = dataset.Format(vr.Row["name"])
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterOperators(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name:   "equals matches string form",
			filter: Filter{Column: "dept", Op: OpEquals, Value: "eng"},
			want:   []string{"Ada", "Grace", "Margaret"},
		},
		{
			name:   "equals numeric value against float cell",
			filter: Filter{Column: "salary", Op: OpEquals, Value: 120},
			want:   []string{"Ada", "Margaret"},
		},
		{
			name:   "contains is case-insensitive",
			filter: Filter{Column: "name", Op: OpContains, Value: "RA"},
			want:   []string{"Grace", "Radia"},
		},
		{
			name:   "gt numeric",
			filter: Filter{Column: "salary", Op: OpGT, Value: "115"},
			want:   []string{"Ada", "Grace", "Margaret"},
		},
		{
			name:   "lt numeric",
			filter: Filter{Column: "salary", Op: OpLT, Value: 100},
			want:   []string{"Linus"},
		},
		{
			name:   "gt with non-numeric bound excludes everything",
			filter: Filter{Column: "salary", Op: OpGT, Value: "lots"},
			want:   []string{},
		},
		{
			name:   "gt on text column excludes everything",
			filter: Filter{Column: "name", Op: OpGT, Value: 10},
			want:   []string{},
		},
		{
			name:   "between inclusive",
			filter: Filter{Column: "salary", Op: OpBetween, Value: 110, ValueEnd: 120},
			want:   []string{"Ada", "Margaret", "Radia"},
		},
		{
			name:   "between with bad bound excludes everything",
			filter: Filter{Column: "salary", Op: OpBetween, Value: 110, ValueEnd: "high"},
			want:   []string{},
		},
		{
			name:   "unknown operator keeps every row",
			filter: Filter{Column: "salary", Op: "regex", Value: ".*"},
			want:   []string{"Ada", "Grace", "Linus", "Margaret", "Radia"},
		},
		{
			name:   "missing column matches nothing",
			filter: Filter{Column: "ghost", Op: OpEquals, Value: ""},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline()
			fs := NewFilterSet()
			fs.Add(tt.filter)
			got := names(p.View(testStore(), fs, "", SortConfig{}))
			if !equalStrings(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterConjunctionIsOrderIndependent(t *testing.T) {
	a := Filter{Column: "dept", Op: OpEquals, Value: "eng"}
	b := Filter{Column: "salary", Op: OpGT, Value: 115}

	store := testStore()

	ab := NewFilterSet()
	ab.Add(a)
	ab.Add(b)
	ba := NewFilterSet()
	ba.Add(b)
	ba.Add(a)

	gotAB := names(NewPipeline().View(store, ab, "", SortConfig{}))
	gotBA := names(NewPipeline().View(store, ba, "", SortConfig{}))

	if !equalStrings(gotAB, gotBA) {
		t.Errorf("filter order changed result: %v vs %v", gotAB, gotBA)
	}
	want := []string{"Ada", "Grace", "Margaret"}
	if !equalStrings(gotAB, want) {
		t.Errorf("got %v, want %v", gotAB, want)
	}
}

func TestSearchNarrowsFilteredSet(t *testing.T) {
	p := NewPipeline()
	fs := NewFilterSet()
	fs.Add(Filter{Column: "dept", Op: OpEquals, Value: "eng"})

	got := names(p.View(testStore(), fs, "gra", SortConfig{}))
	want := []string{"Grace"}
	if !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// Search matches any field, not just the filtered column.
	got = names(p.View(testStore(), NewFilterSet(), "130", SortConfig{}))
	if !equalStrings(got, []string{"Grace"}) {
		t.Errorf("numeric field search: got %v", got)
	}
}

func TestSortNumericAndStable(t *testing.T) {
	p := NewPipeline()
	fs := NewFilterSet()

	got := names(p.View(testStore(), fs, "", SortConfig{Column: "salary", Direction: DirAsc}))
	want := []string{"Linus", "Radia", "Ada", "Margaret", "Grace"}
	if !equalStrings(got, want) {
		t.Errorf("asc: got %v, want %v", got, want)
	}

	// Ada and Margaret share a key; input order must survive the sort.
	got = names(p.View(testStore(), fs, "", SortConfig{Column: "salary", Direction: DirDesc}))
	want = []string{"Grace", "Ada", "Margaret", "Radia", "Linus"}
	if !equalStrings(got, want) {
		t.Errorf("desc: got %v, want %v", got, want)
	}

	// Direction none restores filtered order.
	got = names(p.View(testStore(), fs, "", SortConfig{Column: "salary", Direction: DirNone}))
	want = []string{"Ada", "Grace", "Linus", "Margaret", "Radia"}
	if !equalStrings(got, want) {
		t.Errorf("none: got %v, want %v", got, want)
	}
}

func TestSortStringsByCollation(t *testing.T) {
	store := dataset.NewStore([]dataset.Row{
		{"name": "banana"},
		{"name": "Apple"},
		{"name": "cherry"},
	})
	got := names(NewPipeline().View(store, NewFilterSet(), "", SortConfig{Column: "name", Direction: DirAsc}))
	want := []string{"Apple", "banana", "cherry"}
	if !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSortToggleCycle(t *testing.T) {
	var cfg SortConfig

	cfg = cfg.Toggle("a")
	if cfg.Direction != DirAsc {
		t.Fatalf("first toggle: got %v, want asc", cfg.Direction)
	}
	cfg = cfg.Toggle("a")
	if cfg.Direction != DirDesc {
		t.Fatalf("second toggle: got %v, want desc", cfg.Direction)
	}
	cfg = cfg.Toggle("a")
	if cfg.Direction != DirNone {
		t.Fatalf("third toggle: got %v, want none", cfg.Direction)
	}
	cfg = cfg.Toggle("a")
	if cfg.Direction != DirAsc {
		t.Fatalf("fourth toggle: got %v, want asc", cfg.Direction)
	}

	// Switching columns resets to asc regardless of prior state.
	cfg = SortConfig{Column: "a", Direction: DirDesc}
	cfg = cfg.Toggle("b")
	if cfg.Column != "b" || cfg.Direction != DirAsc {
		t.Fatalf("column switch: got %+v, want {b asc}", cfg)
	}
}

func TestViewIsMemoized(t *testing.T) {
	p := NewPipeline()
	store := testStore()
	fs := NewFilterSet()

	first := p.View(store, fs, "", SortConfig{})
	second := p.View(store, fs, "", SortConfig{})
	if len(first) == 0 || &first[0] != &second[0] {
		t.Error("identical inputs should return the cached slice")
	}

	// A store mutation invalidates the cache.
	if err := store.CommitEdit(0, "name", "Ada L."); err != nil {
		t.Fatalf("CommitEdit: %v", err)
	}
	third := p.View(store, fs, "", SortConfig{})
	if dataset.Format(third[0].Row["name"]) != "Ada L." {
		t.Error("view did not recompute after store mutation")
	}

	// A filter change invalidates the cache.
	fs.Add(Filter{Column: "dept", Op: OpEquals, Value: "ops"})
	fourth := p.View(store, fs, "", SortConfig{})
	if len(fourth) != 2 {
		t.Errorf("view did not recompute after filter change: %d rows", len(fourth))
	}
}

func TestViewRowCarriesStorePosition(t *testing.T) {
	p := NewPipeline()
	fs := NewFilterSet()
	fs.Add(Filter{Column: "dept", Op: OpEquals, Value: "ops"})

	view := p.View(testStore(), fs, "", SortConfig{Column: "salary", Direction: DirDesc})
	if len(view) != 2 {
		t.Fatalf("got %d rows, want 2", len(view))
	}
	// Radia (store pos 4) sorts above Linus (store pos 2).
	if view[0].Pos != 4 || view[1].Pos != 2 {
		t.Errorf("positions = %d,%d, want 4,2", view[0].Pos, view[1].Pos)
	}
}

func TestDrillDownBuildsEqualsFilter(t *testing.T) {
	f := DrillDown("dept", "ops")
	if f.Op != OpEquals || f.Column != "dept" || f.ID == "" {
		t.Fatalf("unexpected filter: %+v", f)
	}

	fs := NewFilterSet()
	fs.Add(Filter{Column: "salary", Op: OpGT, Value: 100})
	fs.Add(f)
	if len(fs.List()) != 2 {
		t.Fatal("drill-down must append, never replace")
	}

	got := names(NewPipeline().View(testStore(), fs, "", SortConfig{}))
	if !equalStrings(got, []string{"Radia"}) {
		t.Errorf("got %v, want [Radia]", got)
	}
}
