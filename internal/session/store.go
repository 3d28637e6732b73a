package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/johan-st/datadeck/internal/dataset"
)

// Store manages the workspace database.
type Store struct {
	db            *sql.DB
	nameGenerator *NameGenerator
}

// NewStore opens (or creates) the workspace database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "workspace.db")
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace database: %w", err)
	}

	store := &Store{
		db:            db,
		nameGenerator: NewNameGenerator(),
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate workspace database: %w", err)
	}

	return store, nil
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS datasets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		columns TEXT,
		rows TEXT,
		summary TEXT,
		size_bytes INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_datasets_name ON datasets(name);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		name TEXT,
		dataset_id TEXT REFERENCES datasets(id),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_active_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_dataset_id ON sessions(dataset_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_last_active_at ON sessions(last_active_at);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT REFERENCES sessions(id),
		role TEXT,
		content TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id);

	CREATE TABLE IF NOT EXISTS tiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT REFERENCES sessions(id),
		title TEXT,
		chart_kind TEXT,
		column_name TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_tiles_session_id ON tiles(session_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// GenerateSessionName generates a readable default session name.
func (s *Store) GenerateSessionName() string {
	return s.nameGenerator.Generate()
}

// SaveDataset persists a dataset, rows serialized as JSON. An existing
// dataset with the same id is replaced.
func (s *Store) SaveDataset(d *dataset.Dataset) error {
	columns, err := json.Marshal(d.Columns)
	if err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}
	rows, err := json.Marshal(d.Store.Rows())
	if err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO datasets (id, name, columns, rows, summary, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.Name, string(columns), string(rows), d.Summary, d.SizeBytes, d.CreatedAt)
	return err
}

// LoadDatasets loads all persisted datasets, newest first. Rows or columns
// that fail to deserialize load as empty collections rather than failing
// the whole call.
func (s *Store) LoadDatasets() ([]*dataset.Dataset, error) {
	rows, err := s.db.Query(`
		SELECT id, name, columns, rows, summary, size_bytes, created_at
		FROM datasets ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var datasets []*dataset.Dataset
	for rows.Next() {
		var id, name, summary string
		var columnsJSON, rowsJSON sql.NullString
		var sizeBytes int64
		var createdAt time.Time

		if err := rows.Scan(&id, &name, &columnsJSON, &rowsJSON, &summary, &sizeBytes, &createdAt); err != nil {
			return nil, err
		}

		var columns []string
		if columnsJSON.Valid {
			if err := json.Unmarshal([]byte(columnsJSON.String), &columns); err != nil {
				columns = nil
			}
		}
		var dataRows []dataset.Row
		if rowsJSON.Valid {
			if err := json.Unmarshal([]byte(rowsJSON.String), &dataRows); err != nil {
				dataRows = nil
			}
		}

		d := &dataset.Dataset{
			ID:        id,
			Name:      name,
			Columns:   columns,
			Store:     dataset.NewStore(dataRows),
			Summary:   summary,
			SizeBytes: sizeBytes,
			CreatedAt: createdAt,
		}
		datasets = append(datasets, d)
	}

	return datasets, rows.Err()
}

// DeleteDataset removes a dataset and its dependent sessions' rows.
func (s *Store) DeleteDataset(id string) error {
	_, err := s.db.Exec(`DELETE FROM datasets WHERE id = ?`, id)
	return err
}

// CreateSession creates a session record. A blank name gets a generated
// one.
func (s *Store) CreateSession(datasetID, name string) (*Session, error) {
	if name == "" {
		name = s.GenerateSessionName()
	}
	sess := &Session{
		ID:           uuid.NewString(),
		Name:         name,
		DatasetID:    datasetID,
		CreatedAt:    time.Now(),
		LastActiveAt: time.Now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO sessions (id, name, dataset_id, created_at, last_active_at)
		VALUES (?, ?, ?, ?, ?)
	`, sess.ID, sess.Name, sess.DatasetID, sess.CreatedAt, sess.LastActiveAt)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// TouchSession updates a session's last active time.
func (s *Store) TouchSession(sessionID string) error {
	_, err := s.db.Exec(`UPDATE sessions SET last_active_at = ? WHERE id = ?`, time.Now(), sessionID)
	return err
}

// ListSessions lists sessions, most recently active first.
func (s *Store) ListSessions(limit int) ([]*Session, error) {
	query := `
		SELECT id, name, dataset_id, created_at, last_active_at
		FROM sessions ORDER BY last_active_at DESC
	`
	args := make([]any, 0)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var sess Session
		var datasetID sql.NullString
		if err := rows.Scan(&sess.ID, &sess.Name, &datasetID, &sess.CreatedAt, &sess.LastActiveAt); err != nil {
			return nil, err
		}
		sess.DatasetID = datasetID.String
		sessions = append(sessions, &sess)
	}

	return sessions, rows.Err()
}

// RecordMessage appends a chat message to a session.
func (s *Store) RecordMessage(sessionID, role, content string) error {
	_, err := s.db.Exec(`
		INSERT INTO messages (session_id, role, content, created_at)
		VALUES (?, ?, ?, ?)
	`, sessionID, role, content, time.Now())
	return err
}

// ListMessages lists a session's chat history, oldest first.
func (s *Store) ListMessages(sessionID string, limit int) ([]*Message, error) {
	query := `
		SELECT id, session_id, role, content, created_at
		FROM messages WHERE session_id = ? ORDER BY created_at ASC, id ASC
	`
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}

	return messages, rows.Err()
}

// SaveTile pins a chart to the session's dashboard.
func (s *Store) SaveTile(t *Tile) error {
	res, err := s.db.Exec(`
		INSERT INTO tiles (session_id, title, chart_kind, column_name, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, t.SessionID, t.Title, t.ChartKind, t.Column, time.Now())
	if err != nil {
		return err
	}
	t.ID, _ = res.LastInsertId()
	return nil
}

// ListTiles lists a session's dashboard tiles, oldest first.
func (s *Store) ListTiles(sessionID string) ([]*Tile, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, title, chart_kind, column_name, created_at
		FROM tiles WHERE session_id = ? ORDER BY created_at ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiles []*Tile
	for rows.Next() {
		var t Tile
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Title, &t.ChartKind, &t.Column, &t.CreatedAt); err != nil {
			return nil, err
		}
		tiles = append(tiles, &t)
	}

	return tiles, rows.Err()
}

// DeleteTile removes a dashboard tile.
func (s *Store) DeleteTile(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tiles WHERE id = ?`, id)
	return err
}
