// Package report writes sampled values as tab-separated text lines.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// TimeFormat is the layout of the leading timestamp column.
const TimeFormat = "15:04:05"

// TimeColumn is the header of the leading timestamp column.
const TimeColumn = "time"

// Writer writes the header, data rows and timestamp lines of a polling run.
// Every line is written with a single Write call so lines never interleave.
type Writer struct {
	out      io.Writer
	timezone *time.Location
}

// NewWriter creates a new line writer.
// If timezone is nil, it defaults to local time.
func NewWriter(out io.Writer, timezone *time.Location) *Writer {
	if timezone == nil {
		timezone = time.Local
	}
	return &Writer{
		out:      out,
		timezone: timezone,
	}
}

// Timestamp formats t as HH:MM:SS in the writer's timezone.
func (w *Writer) Timestamp(t time.Time) string {
	return t.In(w.timezone).Format(TimeFormat)
}

// WriteHeader writes "time" followed by the column names.
func (w *Writer) WriteHeader(columns []string) error {
	return w.writeLine(TimeColumn, columns)
}

// WriteRow writes the timestamp of t followed by the values.
func (w *Writer) WriteRow(t time.Time, values []string) error {
	return w.writeLine(w.Timestamp(t), values)
}

// WriteTimestamp writes a line holding only the timestamp of t.
func (w *Writer) WriteTimestamp(t time.Time) error {
	return w.writeLine(w.Timestamp(t), nil)
}

func (w *Writer) writeLine(first string, rest []string) error {
	var sb strings.Builder
	sb.WriteString(first)
	for _, field := range rest {
		sb.WriteByte('\t')
		sb.WriteString(field)
	}
	sb.WriteByte('\n')

	if _, err := io.WriteString(w.out, sb.String()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
