// Package ingest decodes delimited text files into datasets and discovers
// data files from configured sources.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/johan-st/datadeck/internal/dataset"
)

// Decode reads delimited text into a dataset. The first record is the
// header; blank header names become column_N and duplicates get a numeric
// suffix so every column stays addressable. Cells that parse as numbers are
// stored as float64, empty cells as nil, everything else as the raw string.
func Decode(r io.Reader, name string) (*dataset.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows tolerated; missing cells stay absent
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		base := h
		for n := 2; seen[h]; n++ {
			h = fmt.Sprintf("%s_%d", base, n)
		}
		seen[h] = true
		columns[i] = h
	}

	var rows []dataset.Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+2, err)
		}

		row := make(dataset.Row, len(columns))
		for i, col := range columns {
			if i >= len(record) {
				break
			}
			row[col] = typeCell(record[i])
		}
		rows = append(rows, row)
	}

	return dataset.New(name, columns, rows), nil
}

// DecodeFile decodes a file from disk, naming the dataset after the file.
func DecodeFile(path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	d, err := Decode(f, name)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if info, err := f.Stat(); err == nil {
		d.SizeBytes = info.Size()
	}
	return d, nil
}

// typeCell converts one raw field to its stored value.
func typeCell(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return n
	}
	return raw
}
