// Package output writes call tables in tab-delimited format.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// NA marks a missing value.
const NA = "NA"

// TabWriter writes rows of a tab-delimited table.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer with the given columns.
func NewTabWriter(w io.Writer, columns ...string) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w), columns: columns}
}

// Columns returns the header columns.
func (tw *TabWriter) Columns() []string {
	return tw.columns
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// WriteRow writes one row. Empty values are written as NA.
func (tw *TabWriter) WriteRow(values ...string) error {
	for i, v := range values {
		if v == "" {
			values[i] = NA
		}
	}
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func itoa(n int) string { return strconv.Itoa(n) }

// float formats x with the shortest representation and at least one decimal.
func float(x float64) string {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
