// Package table loads CSV files into in-memory tables.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Table is a fully materialized CSV file: a header and its data rows. All
// values are kept as strings; the pipeline does no type inference.
type Table struct {
	// Year is the label the table is keyed by, derived from the filename.
	Year string

	// Columns is the CSV header row.
	Columns []string

	// Rows holds the data rows, each with exactly len(Columns) fields.
	Rows [][]string
}

// RowCount returns the number of data rows (header excluded).
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// YearFromFilename derives the year label from a source filename: the token
// after the last underscore, with the extension stripped. "dados_2015.csv"
// yields "2015".
func YearFromFilename(filename string) string {
	base := filepath.Base(filename)
	if i := strings.LastIndex(base, "_"); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads the CSV file at path into a Table keyed by the year derived
// from its filename. The header row determines the field count; rows with a
// different number of fields are an error.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	return Read(f, YearFromFilename(path))
}

// Read parses CSV data from r into a Table with the given year label.
func Read(r io.Reader, year string) (*Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv %s: missing header row", year)
	}
	if err != nil {
		return nil, fmt.Errorf("csv %s: read header: %w", year, err)
	}

	t := &Table{Year: year, Columns: header}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv %s: row %d: %w", year, len(t.Rows)+2, err)
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}
