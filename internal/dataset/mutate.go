package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CoerceInput converts raw edit input to the target cell's type. The target
// type is whatever the cell currently holds: a numeric cell coerces the
// input with a best-effort parse (NaN when it does not parse), anything
// else stores the raw string unchanged.
func CoerceInput(current any, raw string) any {
	if !IsNumeric(current) {
		return raw
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

// CommitEdit applies a single-cell edit and returns the resulting row
// sequence. Copy-on-write: exactly one row is replaced, every other row is
// the same object as in the input.
func CommitEdit(rows []Row, pos int, column, raw string) ([]Row, error) {
	if pos < 0 || pos >= len(rows) {
		return nil, fmt.Errorf("row %d out of range (have %d rows)", pos, len(rows))
	}

	next := make([]Row, len(rows))
	copy(next, rows)

	edited := make(Row, len(rows[pos]))
	for k, v := range rows[pos] {
		edited[k] = v
	}
	edited[column] = CoerceInput(rows[pos][column], raw)
	next[pos] = edited

	return next, nil
}

// CommitEdit applies a single-cell edit to the store.
func (s *Store) CommitEdit(pos int, column, raw string) error {
	next, err := CommitEdit(s.Rows(), pos, column, raw)
	if err != nil {
		return err
	}
	s.swap(next)
	return nil
}

// EditSession is one in-progress cell edit: the row's position in the
// unfiltered store, the target column and the input buffer.
type EditSession struct {
	Pos    int
	Column string
	Input  string
}

// Editor owns the at-most-one active edit session for a store. Beginning a
// new edit while one is active commits the prior one first (commit on
// blur); Cancel discards without touching the store.
type Editor struct {
	store  *Store
	active *EditSession
}

// NewEditor creates an editor for the store.
func NewEditor(store *Store) *Editor {
	return &Editor{store: store}
}

// Active returns the current session, or nil.
func (e *Editor) Active() *EditSession {
	return e.active
}

// Begin starts editing a cell, committing any prior session. The input
// buffer is seeded with the cell's current display value.
func (e *Editor) Begin(pos int, column string) (*EditSession, error) {
	if e.active != nil {
		if err := e.Commit(); err != nil {
			return nil, err
		}
	}
	rows := e.store.Rows()
	if pos < 0 || pos >= len(rows) {
		return nil, fmt.Errorf("row %d out of range (have %d rows)", pos, len(rows))
	}
	e.active = &EditSession{
		Pos:    pos,
		Column: column,
		Input:  Format(rows[pos][column]),
	}
	return e.active, nil
}

// Commit writes the active session's input to the store and clears the
// session. No-op when no session is active.
func (e *Editor) Commit() error {
	if e.active == nil {
		return nil
	}
	sess := e.active
	e.active = nil
	return e.store.CommitEdit(sess.Pos, sess.Column, sess.Input)
}

// Cancel discards the active session without mutating the store.
func (e *Editor) Cancel() {
	e.active = nil
}
