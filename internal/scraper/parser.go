// internal/scraper/parser.go
package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var percentagePattern = regexp.MustCompile(`(\d+\.?\d*)`)

// normalizeText folds compatibility forms (full-width digits, non-breaking
// spaces) and trims the result.
func normalizeText(text string) string {
	return strings.TrimSpace(norm.NFKC.String(text))
}

func parseName(text string) (string, error) {
	return strings.Join(strings.Fields(normalizeText(text)), " "), nil
}

// parseCount keeps only the digits of text. No digits means 0.
func parseCount(text string) (int, error) {
	var digits strings.Builder
	for _, r := range normalizeText(text) {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, nil
	}

	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, fmt.Errorf("count %q: %w", text, err)
	}
	return n, nil
}

// parsePercentage takes the first number in text. No number means 0.
func parsePercentage(text string) (float64, error) {
	match := percentagePattern.FindString(normalizeText(text))
	if match == "" {
		return 0, nil
	}

	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("percentage %q: %w", text, err)
	}
	return v, nil
}
