package dataset

import (
	"fmt"
	"strings"
)

// CleanAction identifies a bulk mutation applied across the whole store.
type CleanAction string

const (
	CleanRemoveNulls CleanAction = "remove-nulls"
	CleanDeduplicate CleanAction = "deduplicate"
	CleanTrim        CleanAction = "trim"
	CleanToNumber    CleanAction = "to-number"
)

// CleanActions lists the supported actions in menu order.
var CleanActions = []CleanAction{CleanRemoveNulls, CleanDeduplicate, CleanTrim, CleanToNumber}

// RemoveNulls drops every row whose value in column is missing or blank.
func RemoveNulls(rows []Row, column string) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if IsNull(row[column]) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// Deduplicate drops rows that are structurally identical to an earlier row
// across all of the given columns. First occurrence wins.
func Deduplicate(rows []Row, columns []string) []Row {
	seen := make(map[string]struct{}, len(rows))
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		key := rowKey(row, columns)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return out
}

// rowKey builds a comparison key from the row's values in column order.
// The separator cannot occur in cell data coming from the decoder.
func rowKey(row Row, columns []string) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = Format(row[col])
	}
	return strings.Join(parts, "\x00")
}

// Trim rewrites string values in column with surrounding whitespace
// removed. Rows without a change are kept as-is.
func Trim(rows []Row, column string) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		s, ok := row[column].(string)
		if !ok {
			out[i] = row
			continue
		}
		trimmed := strings.TrimSpace(s)
		if trimmed == s {
			out[i] = row
			continue
		}
		next := make(Row, len(row))
		for k, v := range row {
			next[k] = v
		}
		next[column] = trimmed
		out[i] = next
	}
	return out
}

// ToNumber converts parseable string values in column to numbers. Values
// that do not parse are left unchanged.
func ToNumber(rows []Row, column string) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		s, ok := row[column].(string)
		if !ok {
			out[i] = row
			continue
		}
		n := Number(s)
		if n != n { // NaN: not parseable
			out[i] = row
			continue
		}
		next := make(Row, len(row))
		for k, v := range row {
			next[k] = v
		}
		next[column] = n
		out[i] = next
	}
	return out
}

// Clean applies a bulk action to the dataset's store and refreshes the
// summary. It reports how many rows changed or were removed.
func (d *Dataset) Clean(action CleanAction, column string) (int, error) {
	changed, err := d.CleanStore(action, column)
	if changed > 0 {
		d.Summary = d.Summarize()
	}
	return changed, err
}

// CleanStore applies a bulk action to the row store only. The store swap is
// atomic, so readers see either the old rows or the fully cleaned rows, and
// no dataset metadata is written; callers off the update loop use this and
// refresh the summary where the model owns it.
func (d *Dataset) CleanStore(action CleanAction, column string) (int, error) {
	before := d.Store.Rows()
	var after []Row

	switch action {
	case CleanRemoveNulls:
		after = RemoveNulls(before, column)
	case CleanDeduplicate:
		after = Deduplicate(before, d.Columns)
	case CleanTrim:
		after = Trim(before, column)
	case CleanToNumber:
		after = ToNumber(before, column)
	default:
		return 0, fmt.Errorf("unknown cleaning action %q", action)
	}

	changed := 0
	if len(after) != len(before) {
		changed = len(before) - len(after)
	} else {
		for i := range after {
			if !sameRow(after[i], before[i]) {
				changed++
			}
		}
	}

	if changed > 0 {
		d.Store.swap(after)
	}
	return changed, nil
}

// sameRow reports whether two rows are the same object. Cleaning actions
// reuse row objects they did not touch, so identity is enough here.
func sameRow(a, b Row) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || Format(bv) != Format(v) {
			return false
		}
	}
	return true
}
