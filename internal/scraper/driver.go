// internal/scraper/driver.go - Portal navigation and login
package scraper

import (
	"context"
	"time"

	"github.com/valpere/AttendScrapexter/internal/browser"
	apperrors "github.com/valpere/AttendScrapexter/internal/errors"
	"github.com/valpere/AttendScrapexter/internal/utils"
)

// Step names reported to the Observer.
const (
	StepOpenPage   = "open_page"
	StepNavigate   = "navigate"
	StepOpenForm   = "open_login_form"
	StepSubmit     = "submit_credentials"
	StepAwaitLogin = "await_login"
	StepAwaitData  = "await_data"
	StepSnapshot   = "snapshot"
	StepExtract    = "extract"
)

// Timeouts bounds every wait in the login flow.
type Timeouts struct {
	Action time.Duration // navigation, clicks, fills, snapshot
	Form   time.Duration // login form to appear
	Login  time.Duration // post-login marker to appear
	Data   time.Duration // attendance widgets to render
	Settle time.Duration // pause after data appeared
}

// DefaultTimeouts returns the bounds used against the live portal.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Action: 30 * time.Second,
		Form:   15 * time.Second,
		Login:  30 * time.Second,
		Data:   20 * time.Second,
		Settle: 500 * time.Millisecond,
	}
}

// LoginSelectors are the portal's fixed element identifiers.
type LoginSelectors struct {
	StudentLink string
	LoginForm   string
	Username    string
	Password    string
	Submit      string
	LoggedIn    string
	DataReady   string
}

// DefaultLoginSelectors returns the identifiers of the MITS IMS portal.
func DefaultLoginSelectors() LoginSelectors {
	return LoginSelectors{
		StudentLink: "//*[text()[normalize-space(.)='Student']]",
		LoginForm:   "#studentForm",
		Username:    "#studentForm #inputStuId",
		Password:    "#studentForm #inputPassword",
		Submit:      "#studentForm #studentSubmitButton",
		LoggedIn:    "#studentName",
		DataReady:   ".x-fieldset",
	}
}

// Driver walks a page through the portal's login flow.
type Driver struct {
	portalURL string
	selectors LoginSelectors
	timeouts  Timeouts
	pageOpts  browser.PageOptions
	observer  Observer
	logger    utils.Logger
}

// NewDriver creates a driver. Zero timeouts fall back to DefaultTimeouts.
func NewDriver(portalURL string, selectors LoginSelectors, timeouts Timeouts, pageOpts browser.PageOptions, observer Observer, logger utils.Logger) *Driver {
	def := DefaultTimeouts()
	if timeouts.Action <= 0 {
		timeouts.Action = def.Action
	}
	if timeouts.Form <= 0 {
		timeouts.Form = def.Form
	}
	if timeouts.Login <= 0 {
		timeouts.Login = def.Login
	}
	if timeouts.Data <= 0 {
		timeouts.Data = def.Data
	}
	if timeouts.Settle < 0 {
		timeouts.Settle = 0
	}
	if observer == nil {
		observer = NopObserver{}
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &Driver{
		portalURL: portalURL,
		selectors: selectors,
		timeouts:  timeouts,
		pageOpts:  pageOpts,
		observer:  observer,
		logger:    logger,
	}
}

// OpenPage creates the context's page with the configured viewport, user
// agent and resource blocking.
func (d *Driver) OpenPage(ctx context.Context, bctx browser.BrowsingContext) (browser.Page, error) {
	var page browser.Page
	err := d.step(ctx, StepOpenPage, func() error {
		var err error
		page, err = bctx.NewPage(ctx, d.pageOpts)
		return err
	})
	if err != nil {
		return nil, apperrors.New(apperrors.KindInternal, StepOpenPage, err)
	}
	return page, nil
}

// Login navigates to the portal, submits the credentials and waits for the
// student name to become visible. A missing name after the bound is reported
// as an authentication failure: wrong credentials and a slow portal look the
// same from here.
func (d *Driver) Login(ctx context.Context, page browser.Page, username, password string) error {
	err := d.step(ctx, StepNavigate, func() error {
		return page.Navigate(ctx, d.portalURL, d.timeouts.Action)
	})
	if err != nil {
		return d.classify(ctx, apperrors.KindStructural, StepNavigate, err)
	}

	err = d.step(ctx, StepOpenForm, func() error {
		if err := page.Click(ctx, d.selectors.StudentLink, d.timeouts.Action); err != nil {
			return err
		}
		return page.WaitVisible(ctx, d.selectors.LoginForm, d.timeouts.Form)
	})
	if err != nil {
		return d.classify(ctx, apperrors.KindStructural, StepOpenForm, err)
	}

	err = d.step(ctx, StepSubmit, func() error {
		if err := page.Fill(ctx, d.selectors.Username, username, d.timeouts.Action); err != nil {
			return err
		}
		if err := page.Fill(ctx, d.selectors.Password, password, d.timeouts.Action); err != nil {
			return err
		}
		return page.ForceClick(ctx, d.selectors.Submit, d.timeouts.Action)
	})
	if err != nil {
		return d.classify(ctx, apperrors.KindStructural, StepSubmit, err)
	}

	err = d.step(ctx, StepAwaitLogin, func() error {
		return page.WaitVisible(ctx, d.selectors.LoggedIn, d.timeouts.Login)
	})
	if err != nil {
		return d.classify(ctx, apperrors.KindAuthentication, StepAwaitLogin, err)
	}
	return nil
}

// AwaitData waits for the attendance widgets. Timing out is not fatal: the
// page is extracted as-is. Only cancellation of ctx is returned.
func (d *Driver) AwaitData(ctx context.Context, page browser.Page) error {
	err := d.step(ctx, StepAwaitData, func() error {
		return page.WaitVisible(ctx, d.selectors.DataReady, d.timeouts.Data)
	})
	if ctx.Err() != nil {
		return apperrors.New(apperrors.KindInternal, StepAwaitData, ctx.Err())
	}
	if err != nil {
		d.observer.ObserveTransientTimeout(StepAwaitData)
		d.logger.Warnf("attendance data not visible after %s, extracting current page: %v", d.timeouts.Data, err)
		return nil
	}

	if d.timeouts.Settle > 0 {
		timer := time.NewTimer(d.timeouts.Settle)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return apperrors.New(apperrors.KindInternal, StepAwaitData, ctx.Err())
		}
	}
	return nil
}

func (d *Driver) step(ctx context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	took := time.Since(start)

	d.observer.ObserveStep(name, took, err)
	if err != nil {
		d.logger.Debugf("step %s failed after %s: %v", name, took, err)
	} else {
		d.logger.Debugf("step %s took %s", name, took)
	}
	return err
}

// classify tags err with kind unless the caller gave up, in which case the
// failure says nothing about the portal.
func (d *Driver) classify(ctx context.Context, kind apperrors.Kind, op string, err error) error {
	if ctx.Err() != nil {
		return apperrors.New(apperrors.KindInternal, op, ctx.Err())
	}
	return apperrors.New(kind, op, err)
}
