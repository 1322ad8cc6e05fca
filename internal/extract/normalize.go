package extract

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Anything that is not a digit or a separator is stripped before parsing, so
// currency symbols and surrounding labels never reach the decimal parser.
var nonPriceChars = regexp.MustCompile(`[^\d.,]`)

var errEmptyCandidate = errors.New("no digits in candidate text")

// NormalizePrice converts raw price text such as "R$ 1.299,90" or "$1,299.90"
// into a fixed-point decimal. When both separators appear, the one occurring
// last is taken as the decimal separator and the other is dropped as a
// thousands separator. A lone comma is treated as the decimal separator.
func NormalizePrice(text string) (decimal.Decimal, error) {
	cleaned := nonPriceChars.ReplaceAllString(text, "")
	if cleaned == "" {
		return decimal.Decimal{}, &ParseError{Text: text, Err: errEmptyCandidate}
	}

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case hasComma:
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, &ParseError{Text: text, Err: err}
	}
	if price.IsNegative() {
		return decimal.Decimal{}, &ParseError{Text: text, Err: errors.New("negative price")}
	}
	return price, nil
}
