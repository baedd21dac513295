// Package models defines the record types produced by the agent crawl.
package models

// BadgeType classifies the promotional badge shown on an agent profile.
type BadgeType string

const (
	BadgeNone         BadgeType = ""
	BadgePremierAgent BadgeType = "Premier Agent"
	BadgeTopAgent     BadgeType = "Top Agent"
	BadgeZillowPro    BadgeType = "Zillow Pro"
)

// ListItem is an agent stub discovered on a search-results page.
// Items are immutable once produced; URL is the unique key for the crawl.
type ListItem struct {
	Name        string   `json:"name" yaml:"name"`
	URL         string   `json:"url" yaml:"url"`
	RatingStars *float64 `json:"rating_stars" yaml:"rating_stars"`
	ReviewCount *int     `json:"review_count" yaml:"review_count"`
}

// DetailRecord holds the extended stats scraped from one agent's profile
// page. Every field is independently nullable: nil means the value could not
// be located this run, which is a valid result rather than an error.
type DetailRecord struct {
	Badge             *BadgeType `json:"badge" yaml:"badge"`
	SalesLast12Months *int       `json:"sales_last_12_months" yaml:"sales_last_12_months"`
	TotalSales        *int       `json:"total_sales" yaml:"total_sales"`
	AveragePrice      *string    `json:"average_price" yaml:"average_price"`
	PriceRange        *string    `json:"price_range" yaml:"price_range"`
	TeamMembersCount  *int       `json:"team_members_count" yaml:"team_members_count"`
}

// AgentRecord is the final output unit: the list stub merged with the detail
// stats and the wall-clock seconds spent on that agent's detail fetch.
// Constructed once both extractions complete, never mutated afterwards.
type AgentRecord struct {
	ListItem     `yaml:",inline"`
	DetailRecord `yaml:",inline"`
	ScrapeTime   *float64 `json:"scrape_time_seconds" yaml:"scrape_time_seconds"`
}

// Merge builds an AgentRecord from its constituent parts.
func Merge(item ListItem, detail DetailRecord, elapsedSeconds float64) AgentRecord {
	secs := elapsedSeconds
	return AgentRecord{
		ListItem:     item,
		DetailRecord: detail,
		ScrapeTime:   &secs,
	}
}

// Ptr returns a pointer to v. Convenience for building nullable fields.
func Ptr[T any](v T) *T { return &v }
