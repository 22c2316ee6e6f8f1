// internal/scraper/config_integration.go
package scraper

import (
	"fmt"
	"time"

	"github.com/valpere/AttendScrapexter/internal/browser"
	"github.com/valpere/AttendScrapexter/internal/config"
	"github.com/valpere/AttendScrapexter/internal/utils"
)

// Factory builds the browser pool and service from runtime configuration.
type Factory struct {
	cfg *config.Config
}

// NewFactory creates a new factory instance
func NewFactory(cfg *config.Config) (*Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return &Factory{cfg: cfg}, nil
}

// PoolConfig transforms the browser section into a SessionPool config.
func (f *Factory) PoolConfig() browser.BrowserConfig {
	pc := browser.DefaultBrowserConfig()
	pc.Headless = f.cfg.Browser.Headless
	pc.ExecPath = f.cfg.Browser.ExecPath
	pc.MaxConcurrent = f.cfg.Browser.MaxConcurrent
	// Closing a context must not outlast the slowest page operation.
	if a := f.cfg.Scraper.ActionTimeout; a > 0 && a < pc.ContextTimeout {
		pc.ContextTimeout = a
	}
	return pc
}

// PageOptions transforms viewport, user agent and blocking settings.
func (f *Factory) PageOptions() browser.PageOptions {
	po := browser.DefaultPageOptions()
	if f.cfg.Browser.ViewportWidth > 0 {
		po.ViewportWidth = f.cfg.Browser.ViewportWidth
	}
	if f.cfg.Browser.ViewportHeight > 0 {
		po.ViewportHeight = f.cfg.Browser.ViewportHeight
	}
	if f.cfg.Browser.UserAgent != "" {
		po.UserAgent = f.cfg.Browser.UserAgent
	}
	if f.cfg.Browser.BlockResources != nil {
		po.BlockResourceTypes = append([]string(nil), f.cfg.Browser.BlockResources...)
	}
	return po
}

// Timeouts transforms the scraper section into driver timeouts.
func (f *Factory) Timeouts() Timeouts {
	return Timeouts{
		Action: f.cfg.Scraper.ActionTimeout,
		Form:   f.cfg.Scraper.FormTimeout,
		Login:  f.cfg.Scraper.LoginTimeout,
		Data:   f.cfg.Scraper.DataTimeout,
		Settle: f.cfg.Scraper.SettleDelay,
	}
}

// NewPool creates an unstarted SessionPool.
func (f *Factory) NewPool(logger utils.Logger) *browser.SessionPool {
	return browser.NewSessionPool(f.PoolConfig(), logger)
}

// NewService creates a Service over b with every configured option applied.
func (f *Factory) NewService(b Browser, observer Observer, logger utils.Logger) *Service {
	po := f.PageOptions()
	return NewService(b, Options{
		PortalURL:   f.cfg.Scraper.PortalURL,
		Timeouts:    f.Timeouts(),
		PageOptions: &po,
		Observer:    observer,
		Logger:      logger,
	})
}

// WorstCaseDuration is the longest a single scrape can run once it holds a
// permit. Useful for sizing request timeouts.
func (f *Factory) WorstCaseDuration() time.Duration {
	t := f.Timeouts()
	// navigate, click, three form actions, snapshot
	return 6*t.Action + t.Form + t.Login + t.Data + t.Settle
}
