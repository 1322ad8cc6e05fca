package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/shopspring/decimal"
)

var (
	// ErrSelectorNotFound indicates the explicit selector matched no element.
	ErrSelectorNotFound = errors.New("extract: selector matched no element")
	// ErrNoPriceFound indicates no fallback candidate yielded a parseable price.
	ErrNoPriceFound = errors.New("extract: no price candidate found")
)

// ParseError reports candidate text that could not be converted to a price.
type ParseError struct {
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("extract: cannot parse price from %q: %v", e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extractor locates a monetary value inside raw page content. It performs no
// network I/O; callers supply the HTML.
type Extractor struct {
	fallbacks []cascadia.Selector
}

// New compiles the fallback selector priority list. The list is scanned in
// order when no explicit selector is given.
func New(fallbackSelectors []string) (*Extractor, error) {
	compiled := make([]cascadia.Selector, 0, len(fallbackSelectors))
	for _, raw := range fallbackSelectors {
		sel, err := cascadia.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("compile fallback selector %q: %w", raw, err)
		}
		compiled = append(compiled, sel)
	}
	return &Extractor{fallbacks: compiled}, nil
}

// Extract parses a price from html. With a non-empty selector the first
// matching element must hold the price; otherwise the fallback heuristics are
// scanned and the first candidate that parses wins.
func (e *Extractor) Extract(html string, selector string) (decimal.Decimal, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse html: %w", err)
	}

	if selector != "" {
		return e.extractWithSelector(doc, selector)
	}
	return e.extractWithFallbacks(doc)
}

func (e *Extractor) extractWithSelector(doc *goquery.Document, selector string) (decimal.Decimal, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("compile selector %q: %w", selector, err)
	}

	node := doc.FindMatcher(sel).First()
	if node.Length() == 0 {
		return decimal.Decimal{}, ErrSelectorNotFound
	}

	return NormalizePrice(strings.TrimSpace(node.Text()))
}

func (e *Extractor) extractWithFallbacks(doc *goquery.Document) (decimal.Decimal, error) {
	for _, sel := range e.fallbacks {
		node := doc.FindMatcher(sel).First()
		if node.Length() == 0 {
			continue
		}
		price, err := NormalizePrice(strings.TrimSpace(node.Text()))
		if err != nil {
			// Candidate text was not a price; try the next hint.
			continue
		}
		return price, nil
	}
	return decimal.Decimal{}, ErrNoPriceFound
}
