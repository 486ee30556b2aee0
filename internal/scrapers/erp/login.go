package erp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"resultsync-backend/internal/components/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

const (
	username_selector = `input[name="j_username"]`
	password_selector = `input[name="j_password"]`
	submit_selector   = `button[type="submit"]`

	report_authenticator_probe = "authenticator.probe"
	report_authenticator_login = "authenticator.login"
)

var (
	// ErrAuthenticationFailed is returned for every way in which a login can fail.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrSelectorNotFound means the login form no longer has the expected fields.
	ErrSelectorNotFound = errors.New("login form field not found")
)

// Credentials are the only inputs that a login depends on.
type Credentials struct {
	BaseUrl  string `validate:"required,url"`
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type BrowserOptions struct {
	Headless   bool
	NoSandbox  bool
	ChromePath string
	// bounds the whole browser session of a single attempt, defaults to 1 minute
	Timeout time.Duration
	// how long the page must have no requests in flight to count as idle, defaults to 500ms
	IdleWindow time.Duration
	// total login attempts, values below 1 mean a single attempt
	Attempts int
	// skips fetching the login page over plain http to check for the form fields first
	SkipProbe bool
}

// Authenticator logs into the portal with a real browser and hands back the
// cookies of the logged in context. Every call launches its own browser.
type Authenticator struct {
	opts  BrowserOptions
	probe *resty.Client
	tel   telemetry.API
}

func NewAuthenticator(opts BrowserOptions, tel telemetry.API) Authenticator {
	if opts.Timeout <= 0 {
		opts.Timeout = time.Minute
	}
	if opts.IdleWindow <= 0 {
		opts.IdleWindow = 500 * time.Millisecond
	}
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}

	probe := resty.New()
	probe.SetTimeout(30 * time.Second)

	return Authenticator{
		opts:  opts,
		probe: probe,
		tel:   telemetry.NewScopedAPI("erp_authenticator", tel),
	}
}

// Authenticate performs a credential login and returns the session cookies.
// All failures are wrapped with ErrAuthenticationFailed.
func (a Authenticator) Authenticate(ctx context.Context, creds Credentials) (Session, error) {
	ctx, span := tracer.Start(ctx, "authenticator:Authenticate")
	defer span.End()

	loginUrl, err := url.JoinPath(creds.BaseUrl, login_path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	if !a.opts.SkipProbe {
		err = a.probeForm(ctx, loginUrl)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "login form probe failed")
			a.tel.ReportBroken(report_authenticator_probe, err, loginUrl)
			return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(a.opts.Attempts-1)),
		ctx,
	)

	var session Session
	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		s, err := a.login(ctx, loginUrl, creds)
		if err != nil {
			a.tel.ReportWarning(report_authenticator_login, err, attempt)
			return err
		}
		session = s
		return nil
	}, policy)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		a.tel.ReportBroken(report_authenticator_login, err, loginUrl)
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	a.tel.ReportDebug("retrieved session cookies", session.Names())
	return session, nil
}

// probeForm fetches the login page without a browser to fail fast when the
// portal markup no longer contains the form fields.
func (a Authenticator) probeForm(ctx context.Context, loginUrl string) error {
	res, err := a.probe.R().
		SetContext(ctx).
		Get(loginUrl)
	if err != nil {
		return fmt.Errorf("fetch login page: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("fetch login page: %s", res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return fmt.Errorf("parse login page: %w", err)
	}
	for _, selector := range []string{username_selector, password_selector, submit_selector} {
		if doc.Find(selector).Length() == 0 {
			return fmt.Errorf("%w: %s", ErrSelectorNotFound, selector)
		}
	}
	return nil
}

func (a Authenticator) login(ctx context.Context, loginUrl string, creds Credentials) (Session, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("headless", a.opts.Headless))
	if a.opts.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if a.opts.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(a.opts.ChromePath))
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancelTimeout()
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	watcher := newIdleWatcher()
	chromedp.ListenTarget(browserCtx, watcher.handle)

	var cookies []*network.Cookie
	err := chromedp.Run(
		browserCtx,
		network.Enable(),
		chromedp.Navigate(loginUrl),
		chromedp.WaitVisible(username_selector, chromedp.ByQuery),
		chromedp.SendKeys(username_selector, creds.Username, chromedp.ByQuery),
		chromedp.SendKeys(password_selector, creds.Password, chromedp.ByQuery),
		chromedp.Click(submit_selector, chromedp.ByQuery),
		watcher.wait(a.opts.IdleWindow),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = storage.GetCookies().Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}

	session := make(Session, len(cookies))
	for _, c := range cookies {
		session[c.Name] = c.Value
	}
	return session, nil
}
