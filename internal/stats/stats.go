// Package stats derives word, character and page counts from document text.
package stats

import (
	"strings"
	"unicode/utf8"
)

// DefaultCharsPerPage is the page size used by Compute.
const DefaultCharsPerPage = 3000

// Statistics are derived from the visible text and never edited directly.
type Statistics struct {
	Words      int `json:"words"`
	Characters int `json:"characters"`
	Pages      int `json:"pages"`
}

// Calculator computes statistics with a configurable page size.
type Calculator struct {
	charsPerPage int
}

// NewCalculator creates a calculator. A non-positive page size selects
// DefaultCharsPerPage.
func NewCalculator(charsPerPage int) Calculator {
	if charsPerPage <= 0 {
		charsPerPage = DefaultCharsPerPage
	}

	return Calculator{charsPerPage: charsPerPage}
}

// CharsPerPage returns the configured page size.
func (c Calculator) CharsPerPage() int {
	if c.charsPerPage <= 0 {
		return DefaultCharsPerPage
	}

	return c.charsPerPage
}

// Compute counts whitespace-delimited words, runes, and pages of text.
// A document always has at least one page.
func (c Calculator) Compute(text string) Statistics {
	chars := utf8.RuneCountInString(text)
	per := c.CharsPerPage()

	return Statistics{
		Words:      len(strings.Fields(text)),
		Characters: chars,
		Pages:      max(1, (chars+per-1)/per),
	}
}

// Compute uses DefaultCharsPerPage.
func Compute(text string) Statistics {
	return Calculator{}.Compute(text)
}
