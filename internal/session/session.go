// Package session persists workspace state between runs: imported
// datasets, analysis sessions with their chat history, and dashboard
// tiles.
package session

import (
	"time"
)

// Session is one analysis session over a dataset.
type Session struct {
	ID           string
	Name         string
	DatasetID    string
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// Touch updates the last active time.
func (s *Session) Touch() {
	s.LastActiveAt = time.Now()
}

// Message is one chat exchange entry in a session.
type Message struct {
	ID        int64
	SessionID string
	Role      string // "user" or "analyst"
	Content   string
	CreatedAt time.Time
}

// Message roles.
const (
	RoleUser    = "user"
	RoleAnalyst = "analyst"
)

// Tile is one dashboard tile: a pinned chart over a session's dataset.
type Tile struct {
	ID        int64
	SessionID string
	Title     string
	ChartKind string
	Column    string
	CreatedAt time.Time
}
