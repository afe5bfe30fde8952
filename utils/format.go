package utils

import (
	"fmt"
	"strings"
)

// FormatPriceBRL renders a price the way listings display it:
// "R$ 350.000,00" — dot thousands separator, comma decimals.
func FormatPriceBRL(price float64) string {
	if price < 0 {
		return "-" + FormatPriceBRL(-price)
	}

	cents := int64(price*100 + 0.5)
	whole := cents / 100
	frac := cents % 100

	digits := fmt.Sprintf("%d", whole)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	return fmt.Sprintf("R$ %s,%02d", strings.Join(groups, "."), frac)
}
