package extract

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sanskar800/zilow-scraper/internal/logger"
	"github.com/sanskar800/zilow-scraper/internal/models"
)

// nextData mirrors the slice of the embedded framework blob the crawl needs.
// Unknown keys are ignored; absent keys decode to nil and fall through to the
// DOM tier per field.
type nextData struct {
	Props struct {
		PageProps struct {
			// List pages
			ProResults *struct {
				Results struct {
					Professionals []professionalEntry `json:"professionals"`
				} `json:"results"`
			} `json:"proResults"`

			// Detail pages
			DisplayUser      *displayUser    `json:"displayUser"`
			PremierAgentInfo json.RawMessage `json:"premierAgentInfo"`
		} `json:"pageProps"`
	} `json:"props"`
}

type professionalEntry struct {
	FullName          string   `json:"fullName"`
	ProfileLink       string   `json:"profileLink"`
	ReviewStarsRating *float64 `json:"reviewStarsRating"`
	ReviewsCount      *int     `json:"reviewsCount"`
}

type displayUser struct {
	IsPremium bool        `json:"isPremium"`
	Stats     *agentStats `json:"stats"`

	TeamDisplayInformation *struct {
		TeamMembers []json.RawMessage `json:"teamMembers"`
	} `json:"teamDisplayInformation"`
}

type agentStats struct {
	SalesLastYear    *int     `json:"salesLastYear"`
	SalesAllTime     *int     `json:"salesAllTime"`
	AverageSalePrice *float64 `json:"averageSalePrice"`
	PriceRangeMin    *float64 `json:"salePriceRangeThreeYearMin"`
	PriceRangeMax    *float64 `json:"salePriceRangeThreeYearMax"`
}

// parseEmbedded locates the framework data blob by its anchor id and decodes
// it as a typed tree. Returns false when the blob is absent or unreadable.
func parseEmbedded(html string) (*nextData, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false
	}

	raw := doc.Find("script#" + DataAnchorID).First().Text()
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}

	var data nextData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		logger.Debug("embedded data blob unreadable", "error", err)
		return nil, false
	}
	return &data, true
}

// structuredList maps the blob's professional entries to list items.
// Entries without a name or profile link are skipped.
func structuredList(data *nextData, pageURL string) []models.ListItem {
	pro := data.Props.PageProps.ProResults
	if pro == nil {
		return nil
	}

	var items []models.ListItem
	for _, entry := range pro.Results.Professionals {
		name := strings.TrimSpace(entry.FullName)
		link := canonicalURL(entry.ProfileLink, pageURL)
		if name == "" || link == "" {
			continue
		}
		items = append(items, models.ListItem{
			Name:        name,
			URL:         link,
			RatingStars: entry.ReviewStarsRating,
			ReviewCount: entry.ReviewsCount,
		})
	}
	return items
}

// structuredDetail maps the blob's stats and flags to a detail record.
// Fields the blob lacks stay nil so the DOM tier can fill them.
func structuredDetail(data *nextData) models.DetailRecord {
	var record models.DetailRecord

	user := data.Props.PageProps.DisplayUser
	if user == nil {
		return record
	}

	// Structured badge signals always win over DOM heuristics: isPremium
	// first, then the premier-section presence flag.
	if user.IsPremium {
		record.Badge = models.Ptr(models.BadgeZillowPro)
	} else if len(data.Props.PageProps.PremierAgentInfo) > 0 &&
		string(data.Props.PageProps.PremierAgentInfo) != "null" {
		record.Badge = models.Ptr(models.BadgePremierAgent)
	}

	if stats := user.Stats; stats != nil {
		record.SalesLast12Months = stats.SalesLastYear
		record.TotalSales = stats.SalesAllTime
		if stats.AverageSalePrice != nil {
			record.AveragePrice = models.Ptr(FormatMoney(*stats.AverageSalePrice))
		}
		if stats.PriceRangeMin != nil && stats.PriceRangeMax != nil {
			record.PriceRange = models.Ptr(FormatPriceRange(*stats.PriceRangeMin, *stats.PriceRangeMax))
		}
	}

	if team := user.TeamDisplayInformation; team != nil {
		record.TeamMembersCount = models.Ptr(len(team.TeamMembers))
	}

	return record
}

// canonicalURL resolves href against the page URL and strips fragments, so
// the same profile always dedups to one key.
func canonicalURL(href, pageURL string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	link, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if !link.IsAbs() {
		base, err := url.Parse(pageURL)
		if err != nil {
			return ""
		}
		link = base.ResolveReference(link)
	}
	link.Fragment = ""
	return link.String()
}
