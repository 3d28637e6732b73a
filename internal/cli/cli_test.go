package cli

import (
	"io"
	"strings"
	"testing"

	"github.com/johan-st/datadeck/internal/dataset"
	"github.com/johan-st/datadeck/internal/session"
	"github.com/johan-st/datadeck/internal/testutil"
)

func newTestHandler(t *testing.T) (*Handler, *session.Store) {
	t.Helper()
	store, err := session.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewHandler(store, "test"), store
}

func seedDataset(t *testing.T, store *session.Store) *dataset.Dataset {
	t.Helper()
	d := dataset.New("orders", []string{"id", "region", "amount"}, []dataset.Row{
		{"id": float64(1), "region": "west", "amount": float64(120)},
		{"id": float64(2), "region": "east", "amount": float64(80)},
		{"id": float64(3), "region": "west", "amount": float64(200)},
	})
	if err := store.SaveDataset(d); err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}
	return d
}

func run(t *testing.T, h *Handler, args ...string) (string, string, error) {
	t.Helper()
	var err error
	stdout, stderr := testutil.CaptureOutput(func(out, errOut io.Writer) {
		err = h.Run(args, out, errOut)
	})
	return stdout, stderr, err
}

func TestList(t *testing.T) {
	h, store := newTestHandler(t)
	seedDataset(t, store)

	out, _, err := run(t, h, "ls")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if !strings.Contains(out, "orders") {
		t.Errorf("output missing dataset name:\n%s", out)
	}
	if !strings.Contains(out, "3") {
		t.Errorf("output missing row count:\n%s", out)
	}
}

func TestListEmpty(t *testing.T) {
	h, _ := newTestHandler(t)
	out, _, err := run(t, h, "ls")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if !strings.Contains(out, "No datasets") {
		t.Errorf("output = %q", out)
	}
}

func TestInfo(t *testing.T) {
	h, store := newTestHandler(t)
	seedDataset(t, store)

	out, _, err := run(t, h, "info", "orders")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if !strings.Contains(out, "id, region, amount") {
		t.Errorf("output missing columns:\n%s", out)
	}
}

func TestInfoUnknownDataset(t *testing.T) {
	h, _ := newTestHandler(t)
	_, errOut, err := run(t, h, "info", "nope")
	if err == nil {
		t.Error("expected error for unknown dataset")
	}
	if !strings.Contains(errOut, "not found") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestHeadLimit(t *testing.T) {
	h, store := newTestHandler(t)
	seedDataset(t, store)

	out, _, err := run(t, h, "head", "orders", "--limit=1")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 { // header + one row
		t.Errorf("got %d lines, want 2:\n%s", len(lines), out)
	}
}

func TestQueryFilterAndSort(t *testing.T) {
	h, store := newTestHandler(t)
	seedDataset(t, store)

	out, _, err := run(t, h, "query", "orders",
		"--filter=region equals west", "--sort=amount:desc")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if strings.Contains(out, "east") {
		t.Errorf("filtered row leaked:\n%s", out)
	}
	if !strings.Contains(out, "2 of 3 rows") {
		t.Errorf("missing count line:\n%s", out)
	}
	// amount 200 sorts before 120
	if strings.Index(out, "200") > strings.Index(out, "120") {
		t.Errorf("sort order wrong:\n%s", out)
	}
}

func TestQueryBadFilter(t *testing.T) {
	h, store := newTestHandler(t)
	seedDataset(t, store)

	_, errOut, err := run(t, h, "query", "orders", "--filter=region similar west")
	if err == nil {
		t.Error("expected error for bad operator")
	}
	if !strings.Contains(errOut, "unknown operator") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestCleanDeduplicate(t *testing.T) {
	h, store := newTestHandler(t)
	d := dataset.New("dup", []string{"a"}, []dataset.Row{
		{"a": "x"}, {"a": "x"}, {"a": "y"},
	})
	if err := store.SaveDataset(d); err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}

	out, _, err := run(t, h, "clean", "dup", "deduplicate")
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if !strings.Contains(out, "1 rows affected") {
		t.Errorf("output = %q", out)
	}

	// The cleaned dataset persisted.
	loaded, err := store.LoadDatasets()
	if err != nil {
		t.Fatalf("LoadDatasets: %v", err)
	}
	if got := loaded[0].Store.Len(); got != 2 {
		t.Errorf("rows after clean = %d, want 2", got)
	}
}

func TestCleanNeedsColumn(t *testing.T) {
	h, store := newTestHandler(t)
	seedDataset(t, store)

	_, errOut, err := run(t, h, "clean", "orders", "trim")
	if err == nil {
		t.Error("expected error without column")
	}
	if !strings.Contains(errOut, "needs a column") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestImportAndExport(t *testing.T) {
	h, _ := newTestHandler(t)

	path := testutil.WriteCSV(t, "cities.csv", "name,pop\noslo,700000\nbergen,290000\n")

	out, _, err := run(t, h, "import", path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported cities") {
		t.Errorf("output = %q", out)
	}

	out, _, err = run(t, h, "export", "cities")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(out, "name,pop\n") {
		t.Errorf("csv header missing:\n%s", out)
	}
	if !strings.Contains(out, "oslo,700000") {
		t.Errorf("csv row missing:\n%s", out)
	}
}

func TestExportGolden(t *testing.T) {
	h, _ := newTestHandler(t)

	if _, _, err := run(t, h, "import", testutil.TempCopy(t, "cities.csv")); err != nil {
		t.Fatalf("import: %v", err)
	}

	out, _, err := run(t, h, "export", "cities")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	testutil.Golden(t, "export_cities_csv", []byte(out))

	out, _, err = run(t, h, "export", "cities", "--format=json")
	if err != nil {
		t.Fatalf("export json: %v", err)
	}
	testutil.GoldenJSON(t, "export_cities_json", []byte(out))
}

func TestUnknownCommand(t *testing.T) {
	h, _ := newTestHandler(t)
	_, errOut, err := run(t, h, "frobnicate")
	if err == nil {
		t.Error("expected error for unknown command")
	}
	if !strings.Contains(errOut, "Unknown command") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestVersion(t *testing.T) {
	h, _ := newTestHandler(t)
	out, _, err := run(t, h, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "datadeck test") {
		t.Errorf("output = %q", out)
	}
}
