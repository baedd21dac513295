package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sanskar800/zilow-scraper/internal/browser"
	"github.com/sanskar800/zilow-scraper/internal/models"
)

const searchPageURL = "https://www.zillow.com/professionals/real-estate-agent-reviews/"

// pageWithBlob embeds a JSON blob in the framework's data anchor.
func pageWithBlob(blob, body string) browser.Content {
	return browser.Content{
		URL: searchPageURL,
		HTML: fmt.Sprintf(`<html><head>
<script id="__NEXT_DATA__" type="application/json">%s</script>
</head><body>%s</body></html>`, blob, body),
	}
}

func pageWithoutBlob(body string) browser.Content {
	return browser.Content{
		URL:  searchPageURL,
		HTML: "<html><body>" + body + "</body></html>",
	}
}

// --- List Tests ---

func TestList_StructuredTier(t *testing.T) {
	blob := `{"props":{"pageProps":{"proResults":{"results":{"professionals":[
		{"fullName":"Jane Smith","profileLink":"/profile/jane-smith/","reviewStarsRating":4.9,"reviewsCount":120},
		{"fullName":"","profileLink":"/profile/nameless/"},
		{"fullName":"John Doe","profileLink":"https://www.zillow.com/profile/john-doe"}
	]}}}}}`

	items := List(pageWithBlob(blob, ""))

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (nameless entry skipped)", len(items))
	}
	if items[0].Name != "Jane Smith" {
		t.Errorf("items[0].Name = %q, want %q", items[0].Name, "Jane Smith")
	}
	if items[0].URL != "https://www.zillow.com/profile/jane-smith/" {
		t.Errorf("items[0].URL = %q, relative link not resolved", items[0].URL)
	}
	if items[0].RatingStars == nil || *items[0].RatingStars != 4.9 {
		t.Errorf("items[0].RatingStars = %v, want 4.9", items[0].RatingStars)
	}
	if items[0].ReviewCount == nil || *items[0].ReviewCount != 120 {
		t.Errorf("items[0].ReviewCount = %v, want 120", items[0].ReviewCount)
	}
	if items[1].RatingStars != nil || items[1].ReviewCount != nil {
		t.Error("entry without ratings should keep nil rating fields")
	}
}

func TestList_DOMTierFallback(t *testing.T) {
	body := `<ul>
<li><a href="/profile/jane-smith/">Jane Smith • 4.9 (120) • Boston, MA</a></li>
<li><a href="/profile/jane-smith/">Jane Smith • 4.9 (120)</a></li>
<li><a href="/profile/no-reviews/">Sam Null • New agent</a></li>
<li><a href="/profile/bad-rating/">Overrated 9.9 (10)</a></li>
<li><a href="/about/">Not a profile 4.5 (9)</a></li>
<li><a href="/profile/team-rodriguez/">Team Rodriguez Group 4.8 (67)</a></li>
</ul>`

	items := List(pageWithoutBlob(body))

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Name != "Jane Smith" {
		t.Errorf("items[0].Name = %q, want %q", items[0].Name, "Jane Smith")
	}
	if items[0].URL != "https://www.zillow.com/profile/jane-smith/" {
		t.Errorf("items[0].URL = %q", items[0].URL)
	}
	if *items[0].RatingStars != 4.9 || *items[0].ReviewCount != 120 {
		t.Errorf("items[0] rating/reviews = %v/%v, want 4.9/120",
			*items[0].RatingStars, *items[0].ReviewCount)
	}
	if items[1].Name != "Rodriguez Group" {
		t.Errorf("items[1].Name = %q, want team marker stripped", items[1].Name)
	}
}

func TestList_StructuredWinsOverDOM(t *testing.T) {
	blob := `{"props":{"pageProps":{"proResults":{"results":{"professionals":[
		{"fullName":"Blob Agent","profileLink":"/profile/blob-agent/"}
	]}}}}}`
	body := `<a href="/profile/dom-agent/">DOM Agent 4.5 (30)</a>`

	items := List(pageWithBlob(blob, body))

	if len(items) != 1 || items[0].Name != "Blob Agent" {
		t.Fatalf("structured entries should shadow the DOM tier, got %+v", items)
	}
}

func TestList_EmptyPage(t *testing.T) {
	if items := List(pageWithoutBlob("<p>nothing here</p>")); len(items) != 0 {
		t.Errorf("got %d items from an empty page, want 0", len(items))
	}
}

// --- Detail Tests ---

func TestDetail_StructuredTier(t *testing.T) {
	blob := `{"props":{"pageProps":{
		"displayUser":{"isPremium":false,"stats":{
			"salesLastYear":42,"salesAllTime":512,
			"averageSalePrice":1200000,
			"salePriceRangeThreeYearMin":250000,"salePriceRangeThreeYearMax":1100000}},
		"premierAgentInfo":{"screenName":"jane"}}}}`

	record := Detail(pageWithBlob(blob, ""))

	if record.Badge == nil || *record.Badge != models.BadgePremierAgent {
		t.Errorf("Badge = %v, want Premier Agent from premier section presence", record.Badge)
	}
	if record.SalesLast12Months == nil || *record.SalesLast12Months != 42 {
		t.Errorf("SalesLast12Months = %v, want 42", record.SalesLast12Months)
	}
	if record.TotalSales == nil || *record.TotalSales != 512 {
		t.Errorf("TotalSales = %v, want 512", record.TotalSales)
	}
	if record.AveragePrice == nil || *record.AveragePrice != "$1.2M" {
		t.Errorf("AveragePrice = %v, want $1.2M", record.AveragePrice)
	}
	if record.PriceRange == nil || *record.PriceRange != "$250K - $1.1M" {
		t.Errorf("PriceRange = %v, want $250K - $1.1M", record.PriceRange)
	}
	if record.TeamMembersCount != nil {
		t.Errorf("TeamMembersCount = %v, want nil when the blob lacks team info", record.TeamMembersCount)
	}
}

func TestDetail_PremiumBadgeWinsOverDOM(t *testing.T) {
	blob := `{"props":{"pageProps":{
		"displayUser":{"isPremium":true},
		"premierAgentInfo":{"screenName":"jane"}}}}`
	body := `<span class="profile-badge">Top Agent</span>`

	record := Detail(pageWithBlob(blob, body))

	if record.Badge == nil || *record.Badge != models.BadgeZillowPro {
		t.Errorf("Badge = %v, want Zillow Pro (structured signal wins)", record.Badge)
	}
}

func TestDetail_DOMTier(t *testing.T) {
	body := `<dl>
<dt>Sales last 12 months</dt><dd>42</dd>
<dt>Total sales</dt><dd>1,024</dd>
<dt>Average price</dt><dd>$1.2M</dd>
<dt>Price range</dt><dd>$250K - $1.1M</dd>
</dl>
<span class="profile-badge">Top Agent</span>
<span>Team members: 6</span>`

	record := Detail(pageWithoutBlob(body))

	if record.SalesLast12Months == nil || *record.SalesLast12Months != 42 {
		t.Errorf("SalesLast12Months = %v, want 42", record.SalesLast12Months)
	}
	if record.TotalSales == nil || *record.TotalSales != 1024 {
		t.Errorf("TotalSales = %v, want 1024 with comma stripped", record.TotalSales)
	}
	if record.AveragePrice == nil || *record.AveragePrice != "$1.2M" {
		t.Errorf("AveragePrice = %v, want $1.2M", record.AveragePrice)
	}
	if record.PriceRange == nil || *record.PriceRange != "$250K - $1.1M" {
		t.Errorf("PriceRange = %v, want $250K - $1.1M", record.PriceRange)
	}
	if record.Badge == nil || *record.Badge != models.BadgeTopAgent {
		t.Errorf("Badge = %v, want Top Agent", record.Badge)
	}
	if record.TeamMembersCount == nil || *record.TeamMembersCount != 6 {
		t.Errorf("TeamMembersCount = %v, want 6", record.TeamMembersCount)
	}
}

func TestDetail_DOMFillsStructuredGaps(t *testing.T) {
	// Blob knows the stats but nothing about the team; the member cards in
	// the markup supply the count.
	blob := `{"props":{"pageProps":{"displayUser":{"stats":{"salesLastYear":42}}}}}`

	var cards strings.Builder
	cards.WriteString(`<div id="team">`)
	for i := 0; i < 4; i++ {
		fmt.Fprintf(&cards,
			`<li><img src="member%d.jpg"><p>Member %d 4.8 · 31 sales last 12 months · $200K - $900K</p></li>`,
			i, i)
	}
	cards.WriteString(`</div>`)

	record := Detail(pageWithBlob(blob, cards.String()))

	if record.SalesLast12Months == nil || *record.SalesLast12Months != 42 {
		t.Errorf("SalesLast12Months = %v, want 42 from the blob", record.SalesLast12Months)
	}
	if record.TeamMembersCount == nil || *record.TeamMembersCount != 4 {
		t.Errorf("TeamMembersCount = %v, want 4 counted member cards", record.TeamMembersCount)
	}
}

func TestDetail_BlankPageYieldsAllNil(t *testing.T) {
	record := Detail(pageWithoutBlob("<p>Pardon our interruption</p>"))

	if record != (models.DetailRecord{}) {
		t.Errorf("blank page should yield the zero record, got %+v", record)
	}
}

func TestDetail_MalformedBlobFallsToDOM(t *testing.T) {
	record := Detail(pageWithBlob(`{"props": truncated`,
		`<dt>Total sales</dt><dd>17</dd>`))

	if record.SalesLast12Months != nil {
		t.Errorf("SalesLast12Months = %v, want nil", record.SalesLast12Months)
	}
	if record.TotalSales == nil || *record.TotalSales != 17 {
		t.Errorf("TotalSales = %v, want 17 from the DOM tier", record.TotalSales)
	}
}

// --- Heuristic Guard Tests ---

func TestAcceptValue(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{"plain_number", "42", true},
		{"money", "$1.2M", true},
		{"empty", "", false},
		{"too_long", strings.Repeat("9", 30), false},
		{"label_block", "Total sales 512", false},
		{"script_leak", "function(){return 1}", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := acceptValue(tt.candidate, "Sales last 12 months"); got != tt.want {
				t.Errorf("acceptValue(%q) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestDeriveName(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		rating  string
		reviews string
		want    string
	}{
		{"bullet_separated", "Jane Smith • 4.9 (120) • Boston, MA", "4.9", "(120)", "Jane Smith"},
		{"team_prefix", "Team Rodriguez Group 4.8 (67)", "4.8", "(67)", "Rodriguez Group"},
		{"newline_separated", "John Doe\n5.0 (12)", "5.0", "(12)", "John Doe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveName(tt.text, tt.rating, tt.reviews); got != tt.want {
				t.Errorf("deriveName() = %q, want %q", got, tt.want)
			}
		})
	}
}
