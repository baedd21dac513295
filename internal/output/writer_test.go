package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sanskar800/zilow-scraper/internal/models"
)

func sampleRecords() []models.AgentRecord {
	return []models.AgentRecord{
		{
			ListItem: models.ListItem{
				Name:        "Jane Smith",
				URL:         "https://www.zillow.com/profile/jane-smith",
				RatingStars: models.Ptr(4.9),
				ReviewCount: models.Ptr(120),
			},
			DetailRecord: models.DetailRecord{
				SalesLast12Months: models.Ptr(42),
				AveragePrice:      models.Ptr("$1.2M"),
			},
			ScrapeTime: models.Ptr(3.5),
		},
		{
			ListItem: models.ListItem{
				Name: "John Doe",
				URL:  "https://www.zillow.com/profile/john-doe",
			},
		},
	}
}

// --- NewWriter Tests ---

func TestNewWriter_KnownFormats(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatJSONL, FormatYAML} {
		var buf bytes.Buffer
		if _, err := NewWriter(&buf, format); err != nil {
			t.Errorf("NewWriter(%q) error = %v", format, err)
		}
	}
}

func TestNewWriter_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewWriter(&buf, Format("csv")); err == nil {
		t.Error("expected error for unknown format, got nil")
	}
}

// --- JSONWriter Tests ---

func TestJSONWriter_WriteAll_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf, true, "  ")

	records := sampleRecords()
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("WriteAll error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush error = %v", err)
	}

	var decoded []models.AgentRecord
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded %d records, want 2", len(decoded))
	}
	if decoded[0].Name != "Jane Smith" {
		t.Errorf("first record name = %q, want %q", decoded[0].Name, "Jane Smith")
	}
	if decoded[1].SalesLast12Months != nil {
		t.Error("missing detail field should decode as nil")
	}
}

func TestJSONWriter_OmitsMissingFields(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf, false, "")

	if err := w.Write(sampleRecords()[1]); err != nil {
		t.Fatalf("Write error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush error = %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	record := decoded[0]
	for _, key := range []string{"rating_stars", "review_count", "sales_last_12_months"} {
		if got, ok := record[key]; !ok || got != nil {
			t.Errorf("field %q = %v, want explicit null", key, got)
		}
	}
}

// --- JSONLWriter Tests ---

func TestJSONLWriter_OneRecordPerLine(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf)

	if err := w.WriteAll(sampleRecords()); err != nil {
		t.Fatalf("WriteAll error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for i, line := range lines {
		var record models.AgentRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

// --- Summary Tests ---

func TestSummary_CountsDetailedRecords(t *testing.T) {
	got := Summary(sampleRecords(), 95*time.Second)
	if !strings.Contains(got, "2 agents") {
		t.Errorf("summary %q missing total count", got)
	}
	if !strings.Contains(got, "1 with detail stats") {
		t.Errorf("summary %q missing detail count", got)
	}
	if !strings.Contains(got, "1m35s") {
		t.Errorf("summary %q missing elapsed time", got)
	}
}
