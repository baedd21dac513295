// Package extract recovers structured agent records from loaded pages.
//
// Extraction is tiered: the framework's embedded data blob is read first
// (schema-typed, stable), and DOM text heuristics fill in per field whenever
// the blob is absent or lacks that field. A page where neither tier applies
// still yields a record, with every field nil; misses are values, not errors.
package extract

import (
	"github.com/sanskar800/zilow-scraper/internal/browser"
	"github.com/sanskar800/zilow-scraper/internal/logger"
	"github.com/sanskar800/zilow-scraper/internal/models"
)

// DataAnchorID is the element id of the embedded framework data blob. Its
// attachment doubles as the "page rendered normally" signal for the
// challenge detector.
const DataAnchorID = "__NEXT_DATA__"

// DataAnchorSelector addresses the blob in selector form.
const DataAnchorSelector = "script#" + DataAnchorID

// List extracts agent stubs from a search-results page snapshot. The
// structured tier is authoritative when it yields entries; otherwise the
// DOM tier reconstructs entries from profile-link anchors.
func List(content browser.Content) []models.ListItem {
	if data, ok := parseEmbedded(content.HTML); ok {
		if items := structuredList(data, content.URL); len(items) > 0 {
			logger.Debug("list extracted from embedded data", "count", len(items))
			return items
		}
	}

	items := domList(content.HTML, content.URL)
	logger.Debug("list extracted from DOM heuristics", "count", len(items))
	return items
}

// Detail extracts an agent's extended stats from a profile page snapshot.
// Tier priority is per field: a structured value always wins, and the DOM
// tier only fills fields the blob left nil.
func Detail(content browser.Content) models.DetailRecord {
	var record models.DetailRecord
	if data, ok := parseEmbedded(content.HTML); ok {
		record = structuredDetail(data)
	}
	return fillMissing(record, domDetail(content.HTML))
}

// fillMissing overlays fallback onto primary, field by field, touching only
// nil fields.
func fillMissing(primary, fallback models.DetailRecord) models.DetailRecord {
	if primary.Badge == nil {
		primary.Badge = fallback.Badge
	}
	if primary.SalesLast12Months == nil {
		primary.SalesLast12Months = fallback.SalesLast12Months
	}
	if primary.TotalSales == nil {
		primary.TotalSales = fallback.TotalSales
	}
	if primary.AveragePrice == nil {
		primary.AveragePrice = fallback.AveragePrice
	}
	if primary.PriceRange == nil {
		primary.PriceRange = fallback.PriceRange
	}
	if primary.TeamMembersCount == nil {
		primary.TeamMembersCount = fallback.TeamMembersCount
	}
	return primary
}
