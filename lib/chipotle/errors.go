package chipotle

import (
	"errors"
	"fmt"
)

// ErrTwoFactorRequired means the account challenged the login with a
// two-step verification prompt. Resolving it takes a human; the client
// never retries past it.
var ErrTwoFactorRequired = errors.New("two factor authentication required")

// ErrNotAuthenticated is returned by any API call made before Login has
// installed an authenticated client.
var ErrNotAuthenticated = errors.New("client is not authenticated, call Login first")

// ErrNoStoredState means the web app has not written its own state into
// localStorage yet. Navigating to the storefront at least once fixes it.
var ErrNoStoredState = errors.New("no web app state found in local storage")

// LoginExhaustedError is returned when no login response was observed
// after the configured number of submit attempts.
type LoginExhaustedError struct {
	Attempts int
}

func (e *LoginExhaustedError) Error() string {
	return fmt.Sprintf("failed login after %d attempts", e.Attempts)
}

// LoginRejectedError is a login response with a non-200 status.
type LoginRejectedError struct {
	Status int
}

func (e *LoginRejectedError) Error() string {
	return fmt.Sprintf("login failed with code %d", e.Status)
}

// StaleTokenError means a mutating order call presented a concurrency
// token older than the latest one the server issued. The caller must
// re-observe state before mutating again; the client never retries this
// on its own since that could duplicate the mutation.
type StaleTokenError struct {
	OrderID  string
	Endpoint string
}

func (e *StaleTokenError) Error() string {
	return fmt.Sprintf("stale concurrency token for order %s (%s)", e.OrderID, e.Endpoint)
}

// APIError is any non-success response from the ordering API outside the
// specifically classified cases.
type APIError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d on %s", e.Status, e.Endpoint)
}

// SelectorNotFoundError means UI automation could not locate an element
// it expected on the page. UI failures are terminal for that call.
type SelectorNotFoundError struct {
	Selector string
	Cause    error
}

func (e *SelectorNotFoundError) Error() string {
	return fmt.Sprintf("could not find element %q", e.Selector)
}

func (e *SelectorNotFoundError) Unwrap() error {
	return e.Cause
}

// InvalidTimeSlotError means the formatted pickup time matched no slot
// control displayed on the checkout page.
type InvalidTimeSlotError struct {
	Label string
}

func (e *InvalidTimeSlotError) Error() string {
	return fmt.Sprintf("no pickup slot labelled %q", e.Label)
}
