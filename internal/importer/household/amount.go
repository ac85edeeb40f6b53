package household

import (
	"strings"

	"github.com/MrJamesThe3rd/fynance/internal/currency"
)

// parseSignedAmount parses "Rp 1.250.000", "-50.000" or "(50.000)" into whole
// rupiah, keeping the sign.
func parseSignedAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)

	negative := strings.HasPrefix(s, "-") ||
		(strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"))

	amount, err := currency.ParseIDR(s)
	if err != nil {
		return 0, err
	}

	if negative {
		return -amount, nil
	}

	return amount, nil
}
