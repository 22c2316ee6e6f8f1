// internal/scraper/parser_test.go
package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCount(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"18", 18, false},
		{" 18 classes ", 18, false},
		{"1,024", 1024, false},
		{"１８", 18, false}, // full-width digits
		{"", 0, false},
		{"N/A", 0, false},
		{"99999999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePercentage(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"90.00", 90},
		{"85.5 %", 85.5},
		{"Attendance: 72%", 72},
		{"100.", 100},
		{"-", 0},
		{"", 0},
		// First number wins, even when it is not the percentage.
		{"avg 60.0 / yours 75.5", 60},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePercentage(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseName(t *testing.T) {
	got, err := parseName("  Data  Structures\n")
	require.NoError(t, err)
	assert.Equal(t, "Data Structures", got)
}

func TestChain_ResolveShortCircuitsOnFirstMatch(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div><b>12</b><i>oops</i></div>`))
	require.NoError(t, err)

	calls := 0
	chain := Chain[int]{
		{Name: "missing", Selector: "u", Parse: func(string) (int, error) { calls++; return 1, nil }},
		{Name: "bold", Selector: "b", Parse: parseCount},
		{Name: "italic", Selector: "i", Parse: func(string) (int, error) { calls++; return 3, nil }},
	}

	res, err := chain.Resolve(doc.Selection)
	require.NoError(t, err)
	assert.Equal(t, Resolved[int]{Value: 12, Strategy: "bold", Found: true}, res)
	assert.Zero(t, calls)
}

func TestChain_ResolveNotFound(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div></div>`))
	require.NoError(t, err)

	res, err := Chain[string]{{Name: "name", Selector: "span", Parse: parseName}}.Resolve(doc.Selection)
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestChain_ParseErrorStopsTheChain(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div><b>99999999999999999999999</b><i>4</i></div>`))
	require.NoError(t, err)

	res, err := Chain[int]{
		{Name: "bold", Selector: "b", Parse: parseCount},
		{Name: "italic", Selector: "i", Parse: parseCount},
	}.Resolve(doc.Selection)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bold")
	assert.True(t, res.Found)
}
