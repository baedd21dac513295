package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sanskar800/zilow-scraper/internal/models"
)

var (
	// Decimal star rating, constrained to [1,5] after parsing
	ratingRe = regexp.MustCompile(`\d+\.\d+`)

	// Parenthesized review count, e.g. "(214)"
	reviewsRe = regexp.MustCompile(`\((\d+)\)`)

	// Profile links look like /profile/<slug> on the target site
	profileHrefRe = regexp.MustCompile(`/profile/[^/?#\s]+`)

	// "$250K - $1.1M" or "$480,000 - $2,100,000" style spans
	priceRangeRe = regexp.MustCompile(`\$[\d,.]+[KM]?\s*-\s*\$[\d,.]+[KM]?`)

	digitsRe = regexp.MustCompile(`\d[\d,]*`)
)

// Detail-page label strings searched by the heuristic tier. Any label
// appearing inside a candidate value means the candidate is a label block,
// not a value, and is rejected.
var detailLabels = []string{
	"Sales last 12 months",
	"Total sales",
	"Average price",
	"Price range",
	"Team members",
}

// domList scans profile-link anchors and reconstructs list entries from
// their text. An entry is kept only when both a rating and a review count
// parse; duplicate hrefs within the page collapse to the first occurrence.
func domList(html, pageURL string) []models.ListItem {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var items []models.ListItem
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !profileHrefRe.MatchString(href) {
			return
		}

		link := canonicalURL(href, pageURL)
		if link == "" || seen[link] {
			return
		}

		text := strings.TrimSpace(a.Text())

		ratingMatch := ratingRe.FindString(text)
		rating, err := strconv.ParseFloat(ratingMatch, 64)
		if ratingMatch == "" || err != nil || rating < 1 || rating > 5 {
			return
		}

		reviewsMatch := reviewsRe.FindStringSubmatch(text)
		if reviewsMatch == nil {
			return
		}
		reviews, err := strconv.Atoi(reviewsMatch[1])
		if err != nil {
			return
		}

		name := deriveName(text, ratingMatch, reviewsMatch[0])
		if name == "" {
			return
		}

		seen[link] = true
		items = append(items, models.ListItem{
			Name:        name,
			URL:         link,
			RatingStars: &rating,
			ReviewCount: &reviews,
		})
	})

	return items
}

// deriveName recovers the agent name from an anchor's concatenated card
// text: strip the matched rating/review substrings and a leading team
// marker, split on separator punctuation, take the first segment of
// plausible length. Falls back to the first line of the first 100 chars.
func deriveName(text, ratingMatch, reviewsMatch string) string {
	cleaned := strings.Replace(text, ratingMatch, "", 1)
	cleaned = strings.Replace(cleaned, reviewsMatch, "", 1)
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimPrefix(cleaned, "Team ")

	for _, segment := range strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == '•' || r == '·' || r == '|' || r == ',' || r == '\n'
	}) {
		segment = strings.TrimSpace(segment)
		if len(segment) >= 3 {
			return segment
		}
	}

	// Fallback: first 100 characters, first line only
	if len(cleaned) > 100 {
		cleaned = cleaned[:100]
	}
	if idx := strings.IndexByte(cleaned, '\n'); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	return strings.TrimSpace(cleaned)
}

// domDetail recovers detail fields from page markup when the structured
// blob lacks them.
func domDetail(html string) models.DetailRecord {
	var record models.DetailRecord

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return record
	}

	if v := labeledValue(doc, "Sales last 12 months"); v != "" {
		if n, ok := parseInt(v); ok {
			record.SalesLast12Months = &n
		}
	}
	if v := labeledValue(doc, "Total sales"); v != "" {
		if n, ok := parseInt(v); ok {
			record.TotalSales = &n
		}
	}
	if v := labeledValue(doc, "Average price"); v != "" {
		record.AveragePrice = &v
	}
	if v := labeledValue(doc, "Price range"); v != "" {
		record.PriceRange = &v
	}

	record.Badge = badgeFromMarkup(doc)

	if v := labeledValue(doc, "Team members"); v != "" {
		if n, ok := parseInt(v); ok {
			record.TeamMembersCount = &n
		}
	}
	if record.TeamMembersCount == nil {
		if n, ok := countMemberCards(doc); ok {
			record.TeamMembersCount = &n
		}
	}

	return record
}

// labeledValue searches label-bearing elements for the given label and
// returns the adjacent value text, or "" when no acceptable candidate is
// found. A candidate is rejected when it is long, contains another known
// label (a whole label block, not a value), or carries markup artifacts.
func labeledValue(doc *goquery.Document, label string) string {
	var value string

	doc.Find("dt, dd, span, div, p, li, th, td").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		own := strings.TrimSpace(s.Text())
		if !strings.Contains(own, label) {
			return true
		}

		// Prefer the element's own text with the label removed; fall back
		// to the next sibling when the label element is bare.
		candidate := strings.TrimSpace(strings.Replace(own, label, "", 1))
		candidate = strings.Trim(candidate, ":")
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			candidate = strings.TrimSpace(s.Next().Text())
		}

		if acceptValue(candidate, label) {
			value = candidate
			return false
		}
		return true
	})

	return value
}

// acceptValue guards against grabbing a label block instead of a value.
func acceptValue(candidate, label string) bool {
	if candidate == "" || len(candidate) >= 30 {
		return false
	}
	for _, other := range detailLabels {
		if other == label {
			continue
		}
		if strings.Contains(candidate, other) {
			return false
		}
	}
	// Markup or script leakage means we grabbed the wrong node
	for _, artifact := range []string{"{", "}", "<", ">", "function", "=>"} {
		if strings.Contains(candidate, artifact) {
			return false
		}
	}
	return true
}

// badgeFromMarkup probes class-name patterns and heading proximity for a
// promotional badge.
func badgeFromMarkup(doc *goquery.Document) *models.BadgeType {
	var badge *models.BadgeType

	doc.Find(`[class*="badge"], [class*="Badge"], [class*="premier"], [class*="Premier"]`).
		EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if b := badgeFromText(s.Text()); b != nil {
				badge = b
				return false
			}
			return true
		})
	if badge != nil {
		return badge
	}

	// Badges also render as plain text next to the profile heading
	doc.Find("h1, h2").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		nearby := h.Parent().Text()
		if b := badgeFromText(nearby); b != nil {
			badge = b
			return false
		}
		return true
	})

	return badge
}

func badgeFromText(text string) *models.BadgeType {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "zillow pro"):
		return models.Ptr(models.BadgeZillowPro)
	case strings.Contains(lower, "premier agent"):
		return models.Ptr(models.BadgePremierAgent)
	case strings.Contains(lower, "top agent"):
		return models.Ptr(models.BadgeTopAgent)
	}
	return nil
}

// countMemberCards counts sibling team-member cards when no explicit count
// is labeled. A card qualifies only on the conjunction of plausible text
// length, a rating marker, a sales phrase, a price-range span and an image;
// counts outside [2,20] are treated as false positives from unrelated
// card-shaped elements.
func countMemberCards(doc *goquery.Document) (int, bool) {
	count := 0

	doc.Find("div, li, article").Each(func(_ int, s *goquery.Selection) {
		// Leaf-most card only, not every wrapping container
		if s.Find("div, li, article").FilterFunction(func(_ int, inner *goquery.Selection) bool {
			return isMemberCardText(strings.TrimSpace(inner.Text())) && inner.Find("img").Length() > 0
		}).Length() > 0 {
			return
		}

		text := strings.TrimSpace(s.Text())
		if !isMemberCardText(text) {
			return
		}
		if s.Find("img").Length() == 0 {
			return
		}
		count++
	})

	if count < 2 || count > 20 {
		return 0, false
	}
	return count, true
}

func isMemberCardText(text string) bool {
	if len(text) < 30 || len(text) > 500 {
		return false
	}
	lower := strings.ToLower(text)
	return ratingRe.MatchString(text) &&
		strings.Contains(lower, "sales last 12 months") &&
		priceRangeRe.MatchString(text)
}

// parseInt extracts the first integer in s, tolerating thousands commas.
func parseInt(s string) (int, bool) {
	match := digitsRe.FindString(s)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}
