// Package currency formats and parses Indonesian Rupiah amounts.
//
// Amounts are whole rupiah held in an int64; IDR has no minor unit in everyday use.
package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const Symbol = "Rp"

// MaxAmount caps a single transaction at 100 billion rupiah.
const MaxAmount int64 = 100_000_000_000

var ErrInvalidAmount = errors.New("invalid amount")

var printer = message.NewPrinter(language.Indonesian)

// FormatNumber groups thousands the Indonesian way: 1250000 -> "1.250.000".
func FormatNumber(amount int64) string {
	return printer.Sprintf("%d", amount)
}

// FormatIDR renders an amount with the rupiah symbol: 1250000 -> "Rp 1.250.000".
func FormatIDR(amount int64) string {
	if amount < 0 {
		return "-" + Symbol + " " + FormatNumber(-amount)
	}

	return Symbol + " " + FormatNumber(amount)
}

// ParseIDR parses user input such as "Rp 1.250.000" or "12.500,75".
// Dots are thousand separators, a comma is the decimal separator, and the
// result is rounded to whole rupiah.
func ParseIDR(s string) (int64, error) {
	var b strings.Builder

	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}

	clean := strings.ReplaceAll(b.String(), ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	if clean == "" || clean == "." {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	return d.Round(0).IntPart(), nil
}
