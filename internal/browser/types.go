// internal/browser/types.go
package browser

import (
	"context"
	"time"
)

// BrowserConfig defines how the shared Chrome process is launched
type BrowserConfig struct {
	Headless      bool          `yaml:"headless" json:"headless"`
	ExecPath      string        `yaml:"exec_path,omitempty" json:"exec_path,omitempty"`
	MaxConcurrent int           `yaml:"max_concurrent" json:"max_concurrent"`
	LaunchTimeout time.Duration `yaml:"launch_timeout" json:"launch_timeout"`

	// ContextTimeout bounds opening and closing one isolated browsing context.
	ContextTimeout time.Duration `yaml:"context_timeout" json:"context_timeout"`

	// ExtraFlags are passed to Chrome verbatim, e.g. {"lang": "en-US"}.
	ExtraFlags map[string]interface{} `yaml:"extra_flags,omitempty" json:"extra_flags,omitempty"`
}

// DefaultUserAgent is sent by every page unless PageOptions overrides it.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultBrowserConfig returns default browser configuration
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:       true,
		MaxConcurrent:  3,
		LaunchTimeout:  60 * time.Second,
		ContextTimeout: 15 * time.Second,
	}
}

// PageOptions configures a page before first navigation.
type PageOptions struct {
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
	// BlockResourceTypes lists resource types failed at the network layer
	// ("image", "media", "font", "stylesheet").
	BlockResourceTypes []string
}

// DefaultPageOptions matches a desktop browser with heavy assets blocked.
func DefaultPageOptions() PageOptions {
	return PageOptions{
		ViewportWidth:      1280,
		ViewportHeight:     720,
		UserAgent:          DefaultUserAgent,
		BlockResourceTypes: []string{"image", "media", "font"},
	}
}

// Page is a single tab inside a BrowsingContext. Every method is bounded by
// its timeout argument as well as by ctx. Selectors that start with "/" are
// XPath, everything else is CSS.
type Page interface {
	// Navigate loads url and returns once DOMContentLoaded fired.
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	// Click waits for the element to be visible and clicks it.
	Click(ctx context.Context, selector string, timeout time.Duration) error

	// ForceClick calls element.click() from script, ignoring overlays.
	ForceClick(ctx context.Context, selector string, timeout time.Duration) error

	// Fill replaces the value of an input.
	Fill(ctx context.Context, selector, value string, timeout time.Duration) error

	// WaitVisible blocks until the element is rendered and visible.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// HTML returns the outer HTML of the document element.
	HTML(ctx context.Context, timeout time.Duration) (string, error)
}

// BrowsingContext is an isolated cookie/storage partition of the shared
// browser. It hosts at most one page and must be closed by its owner.
type BrowsingContext interface {
	NewPage(ctx context.Context, opts PageOptions) (Page, error)
	Close() error
}

// PoolStats is a point-in-time view of the session pool
type PoolStats struct {
	Ready        bool `json:"browser_ready"`
	Capacity     int  `json:"capacity"`
	InUse        int  `json:"in_use"`
	OpenContexts int  `json:"open_contexts"`
}
