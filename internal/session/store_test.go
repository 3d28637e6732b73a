package session

import (
	"testing"

	"github.com/johan-st/datadeck/internal/dataset"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDatasetRoundTrip(t *testing.T) {
	store := testStore(t)

	d := dataset.New("sales", []string{"region", "units"}, []dataset.Row{
		{"region": "north", "units": 10.0},
		{"region": "south", "units": 3.0},
	})
	d.SizeBytes = 42

	if err := store.SaveDataset(d); err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}

	loaded, err := store.LoadDatasets()
	if err != nil {
		t.Fatalf("LoadDatasets: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("got %d datasets, want 1", len(loaded))
	}

	got := loaded[0]
	if got.ID != d.ID || got.Name != "sales" || got.SizeBytes != 42 {
		t.Errorf("identity mismatch: %+v", got)
	}
	if len(got.Columns) != 2 || got.Columns[0] != "region" {
		t.Errorf("columns = %v", got.Columns)
	}
	if got.Store.Len() != 2 {
		t.Fatalf("rows = %d, want 2", got.Store.Len())
	}
	row := got.Store.Rows()[0]
	if dataset.Format(row["region"]) != "north" || dataset.Number(row["units"]) != 10 {
		t.Errorf("row mismatch: %v", row)
	}

	// Saving again replaces rather than duplicates.
	if err := store.SaveDataset(d); err != nil {
		t.Fatalf("SaveDataset again: %v", err)
	}
	loaded, err = store.LoadDatasets()
	if err != nil {
		t.Fatalf("LoadDatasets: %v", err)
	}
	if len(loaded) != 1 {
		t.Errorf("got %d datasets after re-save, want 1", len(loaded))
	}
}

func TestCorruptRowsLoadAsEmpty(t *testing.T) {
	store := testStore(t)

	d := dataset.New("broken", []string{"a"}, []dataset.Row{{"a": 1.0}})
	if err := store.SaveDataset(d); err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}

	// Corrupt the serialized rows in place.
	if _, err := store.db.Exec(`UPDATE datasets SET rows = 'not json', columns = '[broken'`); err != nil {
		t.Fatalf("corrupt: %v", err)
	}

	loaded, err := store.LoadDatasets()
	if err != nil {
		t.Fatalf("LoadDatasets should not fail on corrupt blobs: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("got %d datasets, want 1", len(loaded))
	}
	if loaded[0].Store.Len() != 0 || len(loaded[0].Columns) != 0 {
		t.Errorf("corrupt state should load empty, got %d rows, %v columns",
			loaded[0].Store.Len(), loaded[0].Columns)
	}
}

func TestSessionLifecycle(t *testing.T) {
	store := testStore(t)

	sess, err := store.CreateSession("ds-1", "")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.ID == "" || sess.Name == "" {
		t.Errorf("session missing generated fields: %+v", sess)
	}

	if err := store.TouchSession(sess.ID); err != nil {
		t.Fatalf("TouchSession: %v", err)
	}

	sessions, err := store.ListSessions(10)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != sess.ID || sessions[0].DatasetID != "ds-1" {
		t.Errorf("unexpected sessions: %+v", sessions)
	}
}

func TestMessagesAndTiles(t *testing.T) {
	store := testStore(t)

	sess, err := store.CreateSession("ds-1", "analysis")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := store.RecordMessage(sess.ID, RoleUser, "what drives revenue?"); err != nil {
		t.Fatalf("RecordMessage: %v", err)
	}
	if err := store.RecordMessage(sess.ID, RoleAnalyst, "mostly the north region"); err != nil {
		t.Fatalf("RecordMessage: %v", err)
	}

	messages, err := store.ListMessages(sess.ID, 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(messages) != 2 || messages[0].Role != RoleUser || messages[1].Role != RoleAnalyst {
		t.Errorf("unexpected messages: %+v", messages)
	}

	tile := &Tile{SessionID: sess.ID, Title: "Revenue by region", ChartKind: "bar", Column: "region"}
	if err := store.SaveTile(tile); err != nil {
		t.Fatalf("SaveTile: %v", err)
	}
	if tile.ID == 0 {
		t.Error("tile id not assigned")
	}

	tiles, err := store.ListTiles(sess.ID)
	if err != nil {
		t.Fatalf("ListTiles: %v", err)
	}
	if len(tiles) != 1 || tiles[0].Column != "region" {
		t.Errorf("unexpected tiles: %+v", tiles)
	}

	if err := store.DeleteTile(tile.ID); err != nil {
		t.Fatalf("DeleteTile: %v", err)
	}
	tiles, err = store.ListTiles(sess.ID)
	if err != nil {
		t.Fatalf("ListTiles: %v", err)
	}
	if len(tiles) != 0 {
		t.Errorf("tile not deleted: %+v", tiles)
	}
}
