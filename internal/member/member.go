// Package member renders the free-text "added by" identifier stored on
// transactions into something readable.
package member

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var title = cases.Title(language.Und, cases.NoLower)

var separators = strings.NewReplacer(".", " ", "_", " ")

// DisplayName turns an email, provider UID or display name into a label.
func DisplayName(addedBy string) string {
	if addedBy == "" {
		return "Unknown"
	}

	if local, _, ok := strings.Cut(addedBy, "@"); ok {
		return title.String(separators.Replace(local))
	}

	if len(addedBy) > 20 && isAlphanumeric(addedBy) {
		return "User"
	}

	return addedBy
}

// Initials returns at most two upper-case letters for an avatar.
func Initials(addedBy string) string {
	if addedBy == "" {
		return "U"
	}

	if local, _, ok := strings.Cut(addedBy, "@"); ok {
		words := strings.Fields(separators.Replace(local))
		if len(words) >= 2 {
			return strings.ToUpper(firstRune(words[0]) + firstRune(words[1]))
		}

		if len(words) == 1 {
			return strings.ToUpper(prefix(words[0], 2))
		}

		return "U"
	}

	return strings.ToUpper(prefix(addedBy, 2))
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}

	return true
}

func firstRune(s string) string {
	return prefix(s, 1)
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}

	return string(runes)
}
