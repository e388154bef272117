// Package shipping maps a customer country to a flat delivery fee.
package shipping

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// DomesticFee applies to deliveries within Vietnam.
	DomesticFee = decimal.NewFromInt(30_000)
	// InternationalFee applies everywhere else, including an empty or
	// unrecognized country.
	InternationalFee = decimal.NewFromInt(50_000)
)

var domesticMarkers = []string{"viet nam", "vietnam", "việt nam", "vn"}

// Fee returns the flat shipping fee for a raw country string.
func Fee(country string) decimal.Decimal {
	normalized := strings.ToLower(strings.TrimSpace(country))
	for _, marker := range domesticMarkers {
		if strings.Contains(normalized, marker) {
			return DomesticFee
		}
	}
	return InternationalFee
}
