// internal/scraper/driver_test.go
package scraper

import (
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/AttendScrapexter/internal/browser"
)

func TestDefaultLoginSelectors_StudentLinkMatchesNormalizedText(t *testing.T) {
	link := DefaultLoginSelectors().StudentLink
	require.True(t, browser.IsXPath(link))

	tests := []struct {
		name  string
		html  string
		match bool
	}{
		{"plain", `<a href="#">Student</a>`, true},
		{"padded", "<a href=\"#\">\n    Student\n  </a>", true},
		{"icon before text", "<a href=\"#\">\n  <i class=\"fa fa-user\"></i> Student</a>", true},
		{"other label", `<a href="#">Staff</a>`, false},
		{"longer label", `<a href="#">Student Login</a>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := htmlquery.Parse(strings.NewReader("<html><body>" + tt.html + "</body></html>"))
			require.NoError(t, err)

			node, err := htmlquery.Query(doc, link)
			require.NoError(t, err)
			if tt.match {
				require.NotNil(t, node)
				assert.Equal(t, "a", node.Data)
			} else {
				assert.Nil(t, node)
			}
		})
	}
}
