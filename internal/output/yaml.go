package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/sanskar800/zilow-scraper/internal/models"
)

// YAMLWriter buffers records and flushes them as one YAML document.
type YAMLWriter struct {
	w     *bufio.Writer
	items []models.AgentRecord
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{
		w:     bufio.NewWriter(w),
		items: make([]models.AgentRecord, 0),
	}
}

// Write buffers a single record.
func (w *YAMLWriter) Write(record models.AgentRecord) error {
	w.items = append(w.items, record)
	return nil
}

// WriteAll buffers all records at once.
func (w *YAMLWriter) WriteAll(records []models.AgentRecord) error {
	w.items = append(w.items, records...)
	return nil
}

// Flush writes the buffered records as a YAML sequence.
func (w *YAMLWriter) Flush() error {
	enc := yaml.NewEncoder(w.w)
	enc.SetIndent(2)
	if err := enc.Encode(w.items); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return w.w.Flush()
}
