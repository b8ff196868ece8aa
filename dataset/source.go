// Package dataset fetches raw listing rows from files or databases and turns
// them into canonical records.
package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/spektr-org/menulens/normalize"
)

// ErrNoHeader is returned for CSV input without a header row.
var ErrNoHeader = eris.New("dataset: missing csv header")

// Source yields raw rows keyed by column name.
type Source interface {
	Fetch(ctx context.Context) ([]normalize.RawRow, error)
}

// ============================================================================
// CSV
// ============================================================================

// CSVSource reads a delimited file. Delimiter 0 means ','.
type CSVSource struct {
	Path      string
	Delimiter rune
}

// Fetch reads and parses the whole file.
func (s CSVSource) Fetch(ctx context.Context) ([]normalize.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", s.Path)
	}
	defer f.Close()
	return ParseCSV(f, s.Delimiter)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV converts CSV into raw rows keyed by header names. Values stay
// strings; typing happens in the normalizer. Malformed rows are skipped.
func ParseCSV(r io.Reader, delimiter rune) ([]normalize.RawRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read csv")
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read csv header")
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	var rows []normalize.RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		row := make(normalize.RawRow, len(headers))
		for i, val := range record {
			if i >= len(headers) {
				break
			}
			if headers[i] == "" {
				continue
			}
			row[headers[i]] = val
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ============================================================================
// STATIC
// ============================================================================

// Rows is an in-memory Source.
type Rows []normalize.RawRow

func (r Rows) Fetch(ctx context.Context) ([]normalize.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r, nil
}
