package dataset

import (
	"math"
	"testing"
)

func sampleRows() []Row {
	return []Row{
		{"a": 1.0, "b": "x"},
		{"a": 2.0, "b": "y"},
		{"a": 1.0, "b": "x"},
	}
}

func TestCoerceInput(t *testing.T) {
	tests := []struct {
		name    string
		current any
		raw     string
		want    any
	}{
		{"numeric target parses", 3.0, "42.5", 42.5},
		{"numeric target trims spaces", 3.0, " 7 ", 7.0},
		{"string target keeps raw", "hello", "42", "42"},
		{"nil target keeps raw", nil, "42", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceInput(tt.current, tt.raw)
			if got != tt.want {
				t.Errorf("CoerceInput(%v, %q) = %v, want %v", tt.current, tt.raw, got, tt.want)
			}
		})
	}

	// Unparseable input against a numeric target stores the NaN sentinel.
	got := CoerceInput(3.0, "not a number")
	f, ok := got.(float64)
	if !ok || !math.IsNaN(f) {
		t.Errorf("CoerceInput(3.0, junk) = %v, want NaN", got)
	}
}

func TestCommitEditCopyOnWrite(t *testing.T) {
	rows := sampleRows()
	next, err := CommitEdit(rows, 1, "b", "z")
	if err != nil {
		t.Fatalf("CommitEdit: %v", err)
	}

	if next[1]["b"] != "z" {
		t.Errorf("edited cell = %v, want z", next[1]["b"])
	}
	if rows[1]["b"] != "y" {
		t.Error("input rows were mutated")
	}

	// Untouched rows are the same map objects, not copies.
	rows[0]["b"] = "changed"
	if next[0]["b"] != "changed" {
		t.Error("untouched rows should be shared, not copied")
	}
}

func TestCommitEditOutOfRange(t *testing.T) {
	if _, err := CommitEdit(sampleRows(), 9, "b", "z"); err == nil {
		t.Error("expected error for out-of-range position")
	}
	if _, err := CommitEdit(sampleRows(), -1, "b", "z"); err == nil {
		t.Error("expected error for negative position")
	}
}

func TestStoreCommitEditIdempotent(t *testing.T) {
	store := NewStore(sampleRows())

	if err := store.CommitEdit(0, "b", "q"); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	once := store.Rows()
	if err := store.CommitEdit(0, "b", "q"); err != nil {
		t.Fatalf("second commit: %v", err)
	}
	twice := store.Rows()

	if len(once) != len(twice) {
		t.Fatal("row count changed")
	}
	for i := range once {
		for k := range once[i] {
			if Format(once[i][k]) != Format(twice[i][k]) {
				t.Errorf("row %d column %s: %v vs %v", i, k, once[i][k], twice[i][k])
			}
		}
	}
}

func TestStoreVersionBumpsOnMutation(t *testing.T) {
	store := NewStore(sampleRows())
	v := store.Version()

	if err := store.CommitEdit(0, "a", "5"); err != nil {
		t.Fatalf("CommitEdit: %v", err)
	}
	if store.Version() == v {
		t.Error("version unchanged after mutation")
	}
}

func TestEditorSessionLifecycle(t *testing.T) {
	store := NewStore(sampleRows())
	ed := NewEditor(store)

	sess, err := ed.Begin(0, "b")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if sess.Input != "x" {
		t.Errorf("seeded input = %q, want x", sess.Input)
	}

	// Cancel leaves the store untouched.
	sess.Input = "junk"
	ed.Cancel()
	if store.Rows()[0]["b"] != "x" {
		t.Error("cancel mutated the store")
	}
	if ed.Active() != nil {
		t.Error("session still active after cancel")
	}

	// Beginning a second edit commits the first.
	sess, err = ed.Begin(0, "b")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	sess.Input = "edited"
	if _, err := ed.Begin(1, "b"); err != nil {
		t.Fatalf("Begin second: %v", err)
	}
	if store.Rows()[0]["b"] != "edited" {
		t.Error("prior edit was not committed on blur")
	}

	if err := ed.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if ed.Active() != nil {
		t.Error("session still active after commit")
	}
}

func TestEditorNumericCoercion(t *testing.T) {
	store := NewStore(sampleRows())
	ed := NewEditor(store)

	sess, err := ed.Begin(0, "a")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	sess.Input = "99"
	if err := ed.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if got := store.Rows()[0]["a"]; got != 99.0 {
		t.Errorf("cell = %v (%T), want float64 99", got, got)
	}
}
