// internal/scraper/selectors.go - Selector fallback chains for the portal layout
package scraper

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// Strategy is one way of locating and parsing a value inside a container.
type Strategy[T any] struct {
	Name     string
	Selector string
	Parse    func(text string) (T, error)
}

// Chain is an ordered list of strategies tried until one matches an element.
type Chain[T any] []Strategy[T]

// Resolved describes the outcome of Chain.Resolve.
type Resolved[T any] struct {
	Value    T
	Strategy string
	Found    bool
}

// Resolve short-circuits at the first strategy whose selector matches an
// element in scope. A parse failure of that element is returned as an error;
// later strategies are not consulted.
func (c Chain[T]) Resolve(scope *goquery.Selection) (Resolved[T], error) {
	var res Resolved[T]
	for _, s := range c {
		el := scope.Find(s.Selector).First()
		if el.Length() == 0 {
			continue
		}

		res.Found = true
		res.Strategy = s.Name
		value, err := s.Parse(el.Text())
		if err != nil {
			return res, fmt.Errorf("%s: %w", s.Name, err)
		}
		res.Value = value
		return res, nil
	}
	return res, nil
}

// Layout groups every selector the extractor relies on.
type Layout struct {
	// StudentName locates the display name at page level.
	StudentName string
	// Containers are tried in order; the first that yields any element wins.
	Containers []string
	// SkipMarker identifies header/decoration containers.
	SkipMarker string

	Name       Chain[string]
	Attended   Chain[int]
	Conducted  Chain[int]
	Percentage Chain[float64]
}

const (
	fieldRow     = ".x-fieldset-body .x-column-inner"
	displaySpan  = ".x-form-display-field span"
	displayField = "div[id*='displayfield']"
)

// DefaultLayout targets the ExtJS attendance view of the student portal.
func DefaultLayout() Layout {
	return Layout{
		StudentName: "#studentName",
		Containers:  []string{".x-fieldset", "fieldset"},
		SkipMarker:  fieldRow + " .x-field " + displaySpan + "[style*='color:blue']",
		Name: Chain[string]{
			{Name: "sized display field", Selector: fieldRow + " " + displayField + "[style*='width: 150px'] " + displaySpan, Parse: parseName},
			{Name: "second column", Selector: fieldRow + " div:nth-child(2) " + displaySpan, Parse: parseName},
		},
		Attended: Chain[int]{
			{Name: "display field column 3", Selector: fieldRow + " " + displayField + ":nth-child(3) " + displaySpan, Parse: parseCount},
			{Name: "sized column 3", Selector: fieldRow + " div[style*='width: 200px']:nth-child(3) " + displaySpan, Parse: parseCount},
		},
		Conducted: Chain[int]{
			{Name: "display field column 4", Selector: fieldRow + " " + displayField + ":nth-child(4) " + displaySpan, Parse: parseCount},
			{Name: "sized column 4", Selector: fieldRow + " div[style*='width: 200px']:nth-child(4) " + displaySpan, Parse: parseCount},
		},
		Percentage: Chain[float64]{
			{Name: "coloured column 5", Selector: fieldRow + " " + displayField + ":nth-child(5) " + displaySpan + "[style*='color']", Parse: parsePercentage},
			{Name: "column 5", Selector: fieldRow + " div:nth-child(5) " + displaySpan, Parse: parsePercentage},
		},
	}
}
