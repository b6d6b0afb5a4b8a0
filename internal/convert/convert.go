// Package convert encodes in-memory tables to Parquet.
package convert

import (
	"fmt"
	"strings"

	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/laranjao/datalake-etl/internal/table"
)

// Parquet encodes t into an in-memory Parquet file with SNAPPY compression.
// Every column is written as a UTF8 string; the pipeline does no type
// inference beyond what the CSV gives us.
func Parquet(t *table.Table) ([]byte, error) {
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("table %s has no columns", t.Year)
	}

	md := make([]string, len(t.Columns))
	for i, col := range columnNames(t.Columns) {
		md[i] = fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8", col)
	}

	bf := buffer.NewBufferFile()
	pw, err := writer.NewCSVWriter(md, bf, 4)
	if err != nil {
		return nil, fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i, rec := range t.Rows {
		// The writer buffers rows until flush, so each row gets its own slice.
		row := make([]*string, len(t.Columns))
		for j := range rec {
			v := rec[j]
			row[j] = &v
		}
		if err := pw.WriteString(row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("finalize parquet: %w", err)
	}
	if err := bf.Close(); err != nil {
		return nil, fmt.Errorf("close buffer: %w", err)
	}

	return bf.Bytes(), nil
}

// columnNames sanitizes CSV headers for use in the Parquet schema. The
// schema tag format is comma and equals delimited, so anything outside
// [A-Za-z0-9_] is replaced; duplicates and empty names get a positional
// suffix.
func columnNames(columns []string) []string {
	seen := make(map[string]bool, len(columns))
	out := make([]string, len(columns))
	for i, col := range columns {
		name := sanitize(col)
		if name == "" {
			name = fmt.Sprintf("col_%d", i)
		}
		for seen[name] {
			name = fmt.Sprintf("%s_%d", name, i)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
