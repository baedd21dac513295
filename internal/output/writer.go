// Package output serializes crawl results and prints the run summary.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sanskar800/zilow-scraper/internal/models"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Writer handles result serialization.
type Writer interface {
	// Write outputs a single record.
	Write(record models.AgentRecord) error

	// WriteAll outputs the whole ordered collection.
	WriteAll(records []models.AgentRecord) error

	// Flush ensures all data is written.
	Flush() error
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format) (Writer, error) {
	switch format {
	case FormatJSON:
		return NewJSONWriter(w, true, "  "), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Summary renders a human-readable run summary line.
func Summary(records []models.AgentRecord, elapsed time.Duration) string {
	complete := 0
	for _, r := range records {
		if r.SalesLast12Months != nil || r.TotalSales != nil || r.PriceRange != nil {
			complete++
		}
	}
	return fmt.Sprintf("scraped %s agents (%s with detail stats) in %s",
		humanize.Comma(int64(len(records))),
		humanize.Comma(int64(complete)),
		elapsed.Round(time.Second))
}
