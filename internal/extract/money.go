package extract

import (
	"fmt"
	"math"
)

// FormatMoney renders a raw dollar amount the way the site abbreviates it:
// $1.2M above a million, $650K above a thousand, plain dollars below that.
func FormatMoney(value float64) string {
	switch {
	case value >= 1_000_000:
		return fmt.Sprintf("$%.1fM", value/1_000_000)
	case value >= 1_000:
		return fmt.Sprintf("$%dK", int(math.Round(value/1_000)))
	default:
		return fmt.Sprintf("$%d", int(math.Round(value)))
	}
}

// FormatPriceRange renders a min/max pair as "$250K - $1.1M".
func FormatPriceRange(min, max float64) string {
	return FormatMoney(min) + " - " + FormatMoney(max)
}
