// internal/scraper/scraper.go

// Package scraper drives the student portal through a headless browser and
// extracts per-course attendance from the rendered page.
package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/valpere/AttendScrapexter/internal/attendance"
	"github.com/valpere/AttendScrapexter/internal/browser"
	apperrors "github.com/valpere/AttendScrapexter/internal/errors"
	"github.com/valpere/AttendScrapexter/internal/utils"
)

// Scrape outcomes reported to the Observer.
const (
	OutcomeSuccess     = "success"
	OutcomeAuthFailed  = "auth_failed"
	OutcomeStructural  = "structural"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Browser is what the service needs from the session pool.
type Browser interface {
	Acquire(ctx context.Context) (*browser.Permit, error)
	NewContext(ctx context.Context) (browser.BrowsingContext, error)
	IsReady() bool
}

// Options configures a Service. Zero values select the portal defaults.
type Options struct {
	PortalURL   string
	Timeouts    Timeouts
	Selectors   *LoginSelectors
	Layout      *Layout
	PageOptions *browser.PageOptions
	Observer    Observer
	Logger      utils.Logger
}

// Service runs complete attendance scrapes against a shared browser.
type Service struct {
	browser   Browser
	driver    *Driver
	extractor *Extractor
	observer  Observer
	logger    utils.Logger
	snapshot  time.Duration
}

// NewService wires a driver and extractor on top of b.
func NewService(b Browser, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}

	selectors := DefaultLoginSelectors()
	if opts.Selectors != nil {
		selectors = *opts.Selectors
	}
	layout := DefaultLayout()
	if opts.Layout != nil {
		layout = *opts.Layout
	}
	pageOpts := browser.DefaultPageOptions()
	if opts.PageOptions != nil {
		pageOpts = *opts.PageOptions
	}
	if pageOpts.UserAgent == "" {
		pageOpts.UserAgent = browser.DefaultUserAgent
	}

	driver := NewDriver(opts.PortalURL, selectors, opts.Timeouts, pageOpts, opts.Observer, opts.Logger)
	return &Service{
		browser:   b,
		driver:    driver,
		extractor: NewExtractor(layout, opts.Logger),
		observer:  opts.Observer,
		logger:    opts.Logger,
		snapshot:  driver.timeouts.Action,
	}
}

// IsBrowserReady reports whether scrapes can currently be served.
func (s *Service) IsBrowserReady() bool {
	return s.browser.IsReady()
}

// ScrapeAttendance logs in as username and returns the attendance summary.
// On any failure the result is nil and the error carries an errors.Kind; no
// partial result is ever returned. The browsing context is closed and the
// permit released on every path.
func (s *Service) ScrapeAttendance(ctx context.Context, username, password string) (result *attendance.AttendanceResult, err error) {
	start := time.Now()
	log := s.logger.WithField("roll_number", username)

	defer func() {
		courses := 0
		if result != nil {
			courses = len(result.Courses)
		}
		took := time.Since(start)
		s.observer.ObserveScrape(outcomeOf(err), took, courses)
		if err != nil {
			log.Warnf("scrape failed after %s: %v", took.Round(time.Millisecond), err)
		} else {
			log.Infof("scrape finished in %s with %d courses", took.Round(time.Millisecond), courses)
		}
	}()

	if username == "" || password == "" {
		return nil, apperrors.New(apperrors.KindAuthentication, "validate credentials", fmt.Errorf("username and password are required"))
	}

	permit, err := s.browser.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer permit.Release()

	bctx, err := s.browser.NewContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := bctx.Close(); cerr != nil {
			log.Warnf("close browsing context: %v", cerr)
		}
	}()

	page, err := s.driver.OpenPage(ctx, bctx)
	if err != nil {
		return nil, err
	}
	if err := s.driver.Login(ctx, page, username, password); err != nil {
		return nil, err
	}
	if err := s.driver.AwaitData(ctx, page); err != nil {
		return nil, err
	}

	var html string
	err = s.driver.step(ctx, StepSnapshot, func() error {
		var err error
		html, err = page.HTML(ctx, s.snapshot)
		return err
	})
	if err != nil {
		return nil, apperrors.New(apperrors.KindInternal, StepSnapshot, err)
	}

	var extraction *Extraction
	err = s.driver.step(ctx, StepExtract, func() error {
		var err error
		extraction, err = s.extractor.ExtractHTML(html)
		return err
	})
	if err != nil {
		return nil, apperrors.New(apperrors.KindInternal, StepExtract, err)
	}

	for _, skip := range extraction.Skipped {
		s.observer.ObserveSkippedContainer(string(skip.Reason))
	}
	if extraction.ContainersSeen == 0 {
		log.Warnf("no attendance containers found on the page")
	}

	return attendance.Assemble(extraction.StudentName, username, extraction.Courses), nil
}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	switch apperrors.KindOf(err) {
	case apperrors.KindAuthentication:
		return OutcomeAuthFailed
	case apperrors.KindStructural:
		return OutcomeStructural
	case apperrors.KindUnavailable, apperrors.KindLaunch:
		return OutcomeUnavailable
	default:
		return OutcomeError
	}
}
