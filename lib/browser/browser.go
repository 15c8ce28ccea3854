// Package browser wraps chromedp with the handful of primitives the
// ordering flows need: navigation, clicks, slow typing, localStorage
// access and network response interception. One Session owns one tab.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

type Options struct {
	Headless  bool
	UserAgent string
	// window size defaults to 1167x821 when zero
	WindowWidth  int
	WindowHeight int
}

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	width := opts.WindowWidth
	height := opts.WindowHeight
	if width == 0 {
		width = 1167
	}
	if height == 0 {
		height = 821
	}

	out := append([]chromedp.ExecAllocatorOption{},
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.WindowSize(width, height),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if opts.Headless {
		out = append(out, chromedp.Headless)
	}
	if opts.UserAgent != "" {
		out = append(out, chromedp.UserAgent(opts.UserAgent))
	}
	return out
}

// Session is a single browser tab. It is not safe for concurrent use;
// callers serialize all operations on it.
type Session struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

func NewSession(ctx context.Context, opts Options) (*Session, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// forces the browser process to actually start so a failed launch
	// surfaces here instead of on the first navigation
	err := chromedp.Run(tabCtx, network.Enable())
	if err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return &Session{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}, nil
}

func (s *Session) Close() {
	s.cancelTab()
	s.cancelAlloc()
}

// Context returns the tab context. Exposed for callers that need to run
// raw chromedp actions.
func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) Navigate(url string) error {
	return chromedp.Run(s.ctx, chromedp.Navigate(url))
}

func (s *Session) SetUserAgent(userAgent string) error {
	return chromedp.Run(s.ctx,
		emulation.SetUserAgentOverride(userAgent),
	)
}

// WaitVisible blocks until the selector matches a visible node or the
// timeout elapses.
func (s *Session) WaitVisible(selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (s *Session) Click(selector string) error {
	return chromedp.Run(s.ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (s *Session) ClickXPath(expr string) error {
	return chromedp.Run(s.ctx, chromedp.Click(expr, chromedp.BySearch))
}

func (s *Session) WaitVisibleXPath(expr string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.WaitVisible(expr, chromedp.BySearch))
}

// TypeSlow types text into the node rune by rune with a fixed delay, the
// way a person would. The field is cleared first so retries do not
// append to a previous value.
func (s *Session) TypeSlow(selector, text string, delay time.Duration) error {
	err := chromedp.Run(s.ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
	if err != nil {
		return err
	}
	for _, r := range text {
		err = chromedp.Run(s.ctx, chromedp.SendKeys(selector, string(r), chromedp.ByQuery))
		if err != nil {
			return err
		}
		time.Sleep(delay)
	}
	return nil
}

// Evaluate runs a javascript expression in the page and unmarshals the
// result into out. Pass nil to discard the result.
func (s *Session) Evaluate(expr string, out any) error {
	if out == nil {
		return chromedp.Run(s.ctx, chromedp.Evaluate(expr, nil))
	}
	return chromedp.Run(s.ctx, chromedp.Evaluate(expr, out))
}

// OuterHTML returns the serialized html of the current document.
func (s *Session) OuterHTML() (string, error) {
	var html string
	err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}
