package chipotle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	signInButton      = `[data-button="sign-in"]`
	emailInput        = `[aria-label="Enter email address"]`
	passwordInput     = `[aria-label="Enter password"]`
	submitLoginButton = `.sign-in-button`
	twoFactorPrompt   = `[class*="two-step-verification-welcome-form"]`

	loginPath = "/auth/v2/customer/login"

	twoFactorWait     = 5 * time.Second
	loginResponseWait = 10 * time.Second
)

// Login drives the interactive sign-in flow and, on success, installs
// the authenticated API client used by all catalog and order calls.
//
// Each attempt first polls briefly for the two-step verification prompt;
// if it appears the login fails with ErrTwoFactorRequired and is never
// retried, since resolving it requires the account holder. Otherwise the
// form is submitted and the flow waits for the login network response.
// Attempts that observe no response are repeated up to maxAttempts
// (default 5) before giving up with LoginExhaustedError.
func (c *Client) Login(ctx context.Context, email, password string, maxAttempts int) error {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	if err := c.page.Navigate(c.storefrontURL); err != nil {
		return fmt.Errorf("open storefront: %w", err)
	}
	if err := c.page.Click(signInButton); err != nil {
		return &SelectorNotFoundError{Selector: signInButton, Cause: err}
	}
	if err := c.page.WaitVisible(emailInput, 15*time.Second); err != nil {
		return &SelectorNotFoundError{Selector: emailInput, Cause: err}
	}
	if err := c.page.TypeSlow(emailInput, email, typeDelay); err != nil {
		return &SelectorNotFoundError{Selector: emailInput, Cause: err}
	}
	if err := c.page.TypeSlow(passwordInput, password, typeDelay); err != nil {
		return &SelectorNotFoundError{Selector: passwordInput, Cause: err}
	}

	loginURL := c.baseURL + loginPath
	isLogin := func(url, method string) bool {
		return url == loginURL && method == "POST"
	}

	var res *loginResponse
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.page.WaitVisible(twoFactorPrompt, twoFactorWait); err == nil {
			return ErrTwoFactorRequired
		}

		captured, err := c.page.Expect(isLogin, loginResponseWait, func() error {
			return c.page.Click(submitLoginButton)
		})
		if err == nil {
			res = &loginResponse{status: captured.Status, body: captured.Body}
			break
		}
		slog.WarnContext(ctx, "no login response observed, retrying",
			"attempt", attempt, "max_attempts", maxAttempts)
	}
	if res == nil {
		return &LoginExhaustedError{Attempts: maxAttempts}
	}

	token, err := res.bearerToken()
	if err != nil {
		return err
	}

	c.token = token
	c.http = newAPIClient(c.baseURL, c.token, c.userAgent)
	slog.InfoContext(ctx, "authenticated", "email", email)
	return nil
}

type loginResponse struct {
	status int
	body   []byte
}

// bearerToken classifies the captured login response and extracts the
// credential from a 200 body.
func (r *loginResponse) bearerToken() (string, error) {
	if r.status != 200 {
		return "", &LoginRejectedError{Status: r.status}
	}

	var body struct {
		Jwt string `json:"jwt"`
	}
	if err := json.Unmarshal(r.body, &body); err != nil {
		return "", fmt.Errorf("parse login response: %w", err)
	}
	if body.Jwt == "" {
		return "", fmt.Errorf("login response carried no jwt")
	}
	return strings.TrimPrefix(body.Jwt, "Bearer "), nil
}
