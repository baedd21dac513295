package output

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/sanskar800/zilow-scraper/internal/models"
)

// JSONWriter buffers records and flushes them as one JSON array.
type JSONWriter struct {
	w      *bufio.Writer
	pretty bool
	indent string
	items  []models.AgentRecord
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		pretty: pretty,
		indent: indent,
		items:  make([]models.AgentRecord, 0),
	}
}

// Write buffers a single record for array output.
func (w *JSONWriter) Write(record models.AgentRecord) error {
	w.items = append(w.items, record)
	return nil
}

// WriteAll buffers all records at once.
func (w *JSONWriter) WriteAll(records []models.AgentRecord) error {
	w.items = append(w.items, records...)
	return nil
}

// Flush writes the buffered records as a JSON array.
func (w *JSONWriter) Flush() error {
	var out []byte
	var err error

	if w.pretty {
		out, err = json.MarshalIndent(w.items, "", w.indent)
	} else {
		out, err = json.Marshal(w.items)
	}
	if err != nil {
		return err
	}

	if _, err := w.w.Write(out); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}
	return w.w.Flush()
}

// JSONLWriter writes newline-delimited JSON (JSONL).
type JSONLWriter struct {
	w *bufio.Writer
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{w: bufio.NewWriter(w)}
}

// Write writes a single record as a JSON line.
func (w *JSONLWriter) Write(record models.AgentRecord) error {
	out, err := json.Marshal(record)
	if err != nil {
		return err
	}

	if _, err := w.w.Write(out); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}
	return w.w.Flush()
}

// WriteAll writes multiple records as JSON lines.
func (w *JSONLWriter) WriteAll(records []models.AgentRecord) error {
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the buffer.
func (w *JSONLWriter) Flush() error {
	return w.w.Flush()
}
