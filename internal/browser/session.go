// internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/chromedp"

	apperrors "github.com/valpere/AttendScrapexter/internal/errors"
	"github.com/valpere/AttendScrapexter/internal/utils"
)

var errNotRunning = fmt.Errorf("browser is not running")

// SessionPool owns the single Chrome process shared by all scrapes. Each
// request gets its own isolated BrowsingContext on top of it, and the
// ConcurrencyGate limits how many of those are active.
type SessionPool struct {
	cfg    BrowserConfig
	logger utils.Logger
	gate   *ConcurrencyGate

	mu            sync.RWMutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	started       bool
	stopped       bool

	openContexts atomic.Int64
}

// NewSessionPool creates a pool. Nothing is launched until Start.
func NewSessionPool(cfg BrowserConfig, logger utils.Logger) *SessionPool {
	defaults := DefaultBrowserConfig()
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = defaults.MaxConcurrent
	}
	if cfg.LaunchTimeout <= 0 {
		cfg.LaunchTimeout = defaults.LaunchTimeout
	}
	if cfg.ContextTimeout <= 0 {
		cfg.ContextTimeout = defaults.ContextTimeout
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &SessionPool{
		cfg:    cfg,
		logger: logger,
		gate:   NewConcurrencyGate(cfg.MaxConcurrent),
	}
}

// Start launches Chrome and waits until the first target is attached.
func (p *SessionPool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return apperrors.New(apperrors.KindLaunch, "start browser", fmt.Errorf("pool already stopped"))
	}
	if p.started {
		return nil
	}

	start := time.Now()
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(p.cfg)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(p.logger.Debugf),
		chromedp.WithErrorf(p.logger.Debugf),
	)

	launchCtx, cancel := context.WithTimeout(ctx, p.cfg.LaunchTimeout)
	defer cancel()

	// The first Run allocates the browser; tie it to browserCtx and abort
	// through browserCancel so the browser's lifetime is not the launch deadline.
	stop := context.AfterFunc(launchCtx, browserCancel)
	err := chromedp.Run(browserCtx)
	if !stop() {
		err = fmt.Errorf("launch aborted: %w", launchCtx.Err())
	}
	if err != nil {
		browserCancel()
		allocCancel()
		return apperrors.New(apperrors.KindLaunch, "start browser", err)
	}

	p.allocCancel = allocCancel
	p.browserCtx = browserCtx
	p.browserCancel = browserCancel
	p.started = true

	p.logger.WithFields(map[string]interface{}{
		"headless":       p.cfg.Headless,
		"max_concurrent": p.gate.Capacity(),
		"took":           time.Since(start).String(),
	}).Info("browser started")
	return nil
}

// Stop closes the browser. It is safe to call before Start, after a failed
// Start, and more than once.
func (p *SessionPool) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}
	p.stopped = true

	var err error
	if p.browserCtx != nil {
		err = chromedp.Cancel(p.browserCtx)
	}
	if p.browserCancel != nil {
		p.browserCancel()
	}
	if p.allocCancel != nil {
		p.allocCancel()
	}

	if p.started {
		p.logger.Infof("browser stopped (%d contexts were still open)", p.openContexts.Load())
	}
	if err != nil {
		return fmt.Errorf("stop browser: %w", err)
	}
	return nil
}

// IsReady reports whether the browser is running and accepting work.
func (p *SessionPool) IsReady() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.started && !p.stopped && p.browserCtx.Err() == nil
}

// Acquire takes a concurrency permit, blocking until one is free or ctx ends.
func (p *SessionPool) Acquire(ctx context.Context) (*Permit, error) {
	if !p.IsReady() {
		return nil, apperrors.New(apperrors.KindUnavailable, "acquire permit", errNotRunning)
	}
	permit, err := p.gate.Acquire(ctx)
	if err != nil {
		return nil, apperrors.New(apperrors.KindUnavailable, "acquire permit", err)
	}
	return permit, nil
}

// NewContext opens an isolated browser context with its own cookies and storage.
func (p *SessionPool) NewContext(ctx context.Context) (BrowsingContext, error) {
	p.mu.RLock()
	browserCtx := p.browserCtx
	ready := p.started && !p.stopped
	p.mu.RUnlock()

	if !ready || browserCtx.Err() != nil {
		return nil, apperrors.New(apperrors.KindUnavailable, "open browsing context", errNotRunning)
	}

	tabCtx, tabCancel := chromedp.NewContext(browserCtx, chromedp.WithNewBrowserContext())

	openCtx, cancel := context.WithTimeout(ctx, p.cfg.ContextTimeout)
	defer cancel()

	stop := context.AfterFunc(openCtx, tabCancel)
	err := chromedp.Run(tabCtx)
	if !stop() {
		err = fmt.Errorf("aborted: %w", openCtx.Err())
	}
	if err != nil {
		tabCancel()
		return nil, apperrors.New(apperrors.KindInternal, "open browsing context", err)
	}

	p.openContexts.Add(1)
	return &chromeContext{
		pool:   p,
		ctx:    tabCtx,
		cancel: tabCancel,
		logger: p.logger,
	}, nil
}

// OpenContexts returns the number of browsing contexts not yet closed.
func (p *SessionPool) OpenContexts() int {
	return int(p.openContexts.Load())
}

// Stats returns a snapshot for health and metrics.
func (p *SessionPool) Stats() PoolStats {
	// Contexts open after their permit is taken, so sampling them first
	// never shows more contexts than permits for a healthy scrape.
	open := p.OpenContexts()
	return PoolStats{
		Ready:        p.IsReady(),
		Capacity:     p.gate.Capacity(),
		InUse:        p.gate.InUse(),
		OpenContexts: open,
	}
}

func (p *SessionPool) contextClosed() {
	p.openContexts.Add(-1)
}

func allocatorOptions(cfg BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoSandbox, // Required for Docker environments
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-software-rasterizer", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("mute-audio", true),
	}

	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	for name, value := range cfg.ExtraFlags {
		opts = append(opts, chromedp.Flag(name, value))
	}
	return opts
}
