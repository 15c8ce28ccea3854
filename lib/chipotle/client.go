// Package chipotle automates the Chipotle ordering platform: it logs in
// through a real browser, drives the JSON ordering API with the bearer
// token the login hands out, and falls back to driving the web UI itself
// for the flows the API path cannot cover.
package chipotle

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"

	"chipotlebot/lib/browser"
	"chipotlebot/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("lib/chipotle")

const (
	defaultBaseURL       = "https://services.chipotle.com"
	defaultStorefrontURL = "https://chipotle.com"

	// static across the web client, observed unchanged for years
	subscriptionKey = "b4d9f36380184a3788857063bce25d6a"

	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/99.0.4844.0 Safari/537.36"

	typeDelay = 100 * time.Millisecond
)

type Options struct {
	Headless  bool
	UserAgent string

	// BaseURL and StorefrontURL exist so tests can point the client at a
	// stub; production callers leave them empty.
	BaseURL       string
	StorefrontURL string

	// Categories overrides the menu category lookup used by the UI
	// fallback. Defaults to the display-name heuristic.
	Categories CategoryResolver
}

// page is the browser surface the login, mirror and UI flows drive.
// *browser.Session is the real implementation; tests substitute fakes so
// the flows can run without a Chrome process.
type page interface {
	Close()
	Navigate(url string) error
	SetUserAgent(userAgent string) error
	Click(selector string) error
	ClickXPath(expr string) error
	WaitVisible(selector string, timeout time.Duration) error
	WaitVisibleXPath(expr string, timeout time.Duration) error
	TypeSlow(selector, text string, delay time.Duration) error
	Evaluate(expr string, out any) error
	OuterHTML() (string, error)
	Expect(match func(url, method string) bool, timeout time.Duration, trigger func() error) (*browser.NetworkResponse, error)
}

// Client owns one browser tab, one credential and one authenticated API
// client. It is a single logical flow: one caller, strictly sequential
// operations. It is not safe for concurrent use.
type Client struct {
	page          page
	userAgent     string
	baseURL       string
	storefrontURL string
	categories    CategoryResolver

	// set once by Login; empty before authentication
	token string
	http  *resty.Client
}

// New launches the browser context and opens the single page all UI
// operations run on. The returned client is unauthenticated until Login.
func New(ctx context.Context, opts Options) (*Client, error) {
	ctx, span := tracer.Start(ctx, "New")
	defer span.End()

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	storefrontURL := opts.StorefrontURL
	if storefrontURL == "" {
		storefrontURL = defaultStorefrontURL
	}
	categories := opts.Categories
	if categories == nil {
		categories = displayNameCategories{}
	}

	page, err := browser.NewSession(ctx, browser.Options{
		Headless:  opts.Headless,
		UserAgent: userAgent,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		page:          page,
		userAgent:     userAgent,
		baseURL:       baseURL,
		storefrontURL: storefrontURL,
		categories:    categories,
	}, nil
}

func (c *Client) Close() {
	if c.page != nil {
		c.page.Close()
	}
}

// Token returns the bearer token obtained by Login, or "" before it.
func (c *Client) Token() string {
	return c.token
}

// SetUserAgent updates both the stored default and the agent the live
// page reports.
func (c *Client) SetUserAgent(userAgent string) error {
	c.userAgent = userAgent
	return c.page.SetUserAgent(userAgent)
}

// api returns the authenticated REST client, or ErrNotAuthenticated if
// Login has not installed one yet.
func (c *Client) api() (*resty.Client, error) {
	if c.http == nil {
		return nil, ErrNotAuthenticated
	}
	return c.http, nil
}

// newAPIClient builds the authenticated REST client used by every
// catalog and order call after login.
func newAPIClient(baseURL, token, userAgent string) *resty.Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	jar, err := cookiejar.New(nil)
	if err == nil {
		client.SetCookieJar(jar)
	}
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", userAgent)
	client.SetHeader("Authorization", fmt.Sprintf("Bearer %s", token))
	client.SetHeader("Ocp-Apim-Subscription-Key", subscriptionKey)
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "chipotle/http")

	return client
}
