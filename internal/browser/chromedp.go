// internal/browser/chromedp.go
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/valpere/AttendScrapexter/internal/utils"
)

var resourceTypes = map[string]network.ResourceType{
	"image":      network.ResourceTypeImage,
	"media":      network.ResourceTypeMedia,
	"font":       network.ResourceTypeFont,
	"stylesheet": network.ResourceTypeStylesheet,
}

// chromeContext is a BrowsingContext backed by a chromedp tab living in its
// own Chrome browser context.
type chromeContext struct {
	pool   *SessionPool
	ctx    context.Context
	cancel context.CancelFunc
	logger utils.Logger

	pageOpened atomic.Bool
	closeOnce  sync.Once
	closeErr   error
}

// NewPage configures the context's tab. A context hosts a single page.
func (c *chromeContext) NewPage(ctx context.Context, opts PageOptions) (Page, error) {
	if !c.pageOpened.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("browsing context already hosts a page")
	}

	p := &chromePage{ctx: c.ctx, logger: c.logger}

	setupCtx, cancel := p.opContext(ctx, c.pool.cfg.ContextTimeout)
	defer cancel()

	width, height := opts.ViewportWidth, opts.ViewportHeight
	if width <= 0 || height <= 0 {
		def := DefaultPageOptions()
		width, height = def.ViewportWidth, def.ViewportHeight
	}

	actions := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
	}
	if opts.UserAgent != "" {
		actions = append(actions, emulation.SetUserAgentOverride(opts.UserAgent))
	}

	patterns, err := blockPatterns(opts.BlockResourceTypes)
	if err != nil {
		return nil, err
	}
	if len(patterns) > 0 {
		chromedp.ListenTarget(c.ctx, c.failBlockedRequest)
		actions = append(actions, fetch.Enable().WithPatterns(patterns))
	}

	if err := chromedp.Run(setupCtx, actions); err != nil {
		return nil, fmt.Errorf("configure page: %w", err)
	}
	return p, nil
}

// failBlockedRequest aborts every request paused by the fetch domain. Only
// blocked resource types are intercepted, so nothing else reaches here.
func (c *chromeContext) failBlockedRequest(ev interface{}) {
	paused, ok := ev.(*fetch.EventRequestPaused)
	if !ok {
		return
	}
	// Listener callbacks must not block; issue the command from a goroutine.
	go func() {
		target := chromedp.FromContext(c.ctx).Target
		if target == nil {
			return
		}
		execCtx := cdp.WithExecutor(c.ctx, target)
		if err := fetch.FailRequest(paused.RequestID, network.ErrorReasonBlockedByClient).Do(execCtx); err != nil {
			c.logger.Debugf("fail request %s: %v", paused.Request.URL, err)
		}
	}()
}

// Close disposes the tab and its browser context.
func (c *chromeContext) Close() error {
	c.closeOnce.Do(func() {
		// The open count drops only once Chrome confirmed the close, so a
		// context stuck past the timeout still shows up as open.
		done := make(chan error, 1)
		go func() {
			err := chromedp.Cancel(c.ctx)
			c.pool.contextClosed()
			done <- err
		}()

		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				c.closeErr = fmt.Errorf("close browsing context: %w", err)
			}
		case <-time.After(c.pool.cfg.ContextTimeout):
			c.closeErr = fmt.Errorf("close browsing context: timed out after %s", c.pool.cfg.ContextTimeout)
		}
		c.cancel()
	})
	return c.closeErr
}

// chromePage implements Page on a chromedp tab context.
type chromePage struct {
	ctx    context.Context
	logger utils.Logger
}

// opContext derives a context that carries the tab (so chromedp can run on
// it) but is cancelled by the caller's ctx or the timeout, whichever is first.
func (p *chromePage) opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithTimeout(p.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

func (p *chromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, cancel := p.opContext(ctx, timeout)
	defer cancel()
	return chromedp.Run(opCtx, actions...)
}

func (p *chromePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	opCtx, cancel := p.opContext(ctx, timeout)
	defer cancel()

	loaded := make(chan struct{}, 1)
	chromedp.ListenTarget(opCtx, func(ev interface{}) {
		if _, ok := ev.(*page.EventDomContentEventFired); ok {
			select {
			case loaded <- struct{}{}:
			default:
			}
		}
	})

	err := chromedp.Run(opCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var res page.NavigateReturns
		if err := cdp.Execute(ctx, page.CommandNavigate, page.Navigate(url), &res); err != nil {
			return err
		}
		if res.ErrorText != "" {
			return fmt.Errorf("page load error %s", res.ErrorText)
		}
		return nil
	}))
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}

	select {
	case <-loaded:
		return nil
	case <-opCtx.Done():
		return fmt.Errorf("navigate to %s: waiting for DOMContentLoaded: %w", url, opCtx.Err())
	}
}

func (p *chromePage) Click(ctx context.Context, selector string, timeout time.Duration) error {
	if err := p.run(ctx, timeout, chromedp.Click(selector, queryBy(selector), chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (p *chromePage) ForceClick(ctx context.Context, selector string, timeout time.Duration) error {
	var clicked bool
	err := p.run(ctx, timeout,
		chromedp.WaitReady(selector, queryBy(selector)),
		chromedp.Evaluate(forceClickScript(selector), &clicked),
	)
	if err != nil {
		return fmt.Errorf("force click %s: %w", selector, err)
	}
	if !clicked {
		return fmt.Errorf("force click %s: element disappeared", selector)
	}
	return nil
}

func (p *chromePage) Fill(ctx context.Context, selector, value string, timeout time.Duration) error {
	by := queryBy(selector)
	err := p.run(ctx, timeout,
		chromedp.WaitVisible(selector, by),
		chromedp.SetValue(selector, "", by),
		chromedp.SendKeys(selector, value, by),
	)
	if err != nil {
		return fmt.Errorf("fill %s: %w", selector, err)
	}
	return nil
}

func (p *chromePage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if err := p.run(ctx, timeout, chromedp.WaitVisible(selector, queryBy(selector))); err != nil {
		return fmt.Errorf("wait visible %s: %w", selector, err)
	}
	return nil
}

func (p *chromePage) HTML(ctx context.Context, timeout time.Duration) (string, error) {
	var html string
	if err := p.run(ctx, timeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

// IsXPath reports whether selector is treated as XPath rather than CSS.
func IsXPath(selector string) bool {
	return strings.HasPrefix(selector, "/")
}

func queryBy(selector string) chromedp.QueryOption {
	if IsXPath(selector) {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func forceClickScript(selector string) string {
	quoted, _ := json.Marshal(selector)
	lookup := fmt.Sprintf("document.querySelector(%s)", quoted)
	if IsXPath(selector) {
		lookup = fmt.Sprintf("document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue", quoted)
	}
	return fmt.Sprintf("(() => { const el = %s; if (!el) return false; el.click(); return true; })()", lookup)
}

func blockPatterns(types []string) ([]*fetch.RequestPattern, error) {
	patterns := make([]*fetch.RequestPattern, 0, len(types))
	for _, name := range types {
		rt, ok := resourceTypes[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unsupported resource type %q", name)
		}
		patterns = append(patterns, &fetch.RequestPattern{
			URLPattern:   "*",
			ResourceType: rt,
			RequestStage: fetch.RequestStageRequest,
		})
	}
	return patterns, nil
}
