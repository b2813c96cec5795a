package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
)

// DefaultMaxBytes bounds how much CSV input the loader will accept (50MB,
// matching the upload limit of the HTTP surface).
const DefaultMaxBytes = 50 << 20

// ReadCSV parses a CSV stream into a Table. The first record is the header.
// Reading stops with an error if the stream exceeds maxBytes (pass 0 for the
// default bound). Ragged records are rejected by the CSV reader itself.
func ReadCSV(r io.Reader, maxBytes int64) (*Table, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	limited := &limitedReader{r: r, remaining: maxBytes}
	cr := csv.NewReader(limited)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	var rows [][]Value
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		row := make([]Value, len(record))
		for i, raw := range record {
			row[i] = Parse(raw)
		}
		rows = append(rows, row)
	}

	return New(header, rows)
}

// WriteCSV renders the table back to CSV, header first. Missing cells are
// written as empty fields.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := 0; i < t.NumRows(); i++ {
		record := make([]string, t.NumColumns())
		for c, v := range t.Row(i) {
			record[c] = v.String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// limitedReader errors out instead of silently truncating when the bound is
// exceeded, so oversized input is rejected rather than partially parsed.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		return 0, fmt.Errorf("input exceeds size limit")
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, fmt.Errorf("input exceeds size limit")
	}
	return n, err
}
