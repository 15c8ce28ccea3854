package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// NetworkResponse is a response captured off the wire while the page was
// driving its own requests.
type NetworkResponse struct {
	URL    string
	Status int
	Body   []byte
}

func (r *NetworkResponse) Text() string {
	return string(r.Body)
}

// responseTracker correlates the request, response and loading-finished
// events of the page's own traffic and reports the first request that
// satisfies the predicate once its body is complete.
type responseTracker struct {
	match func(url, method string) bool

	mu      sync.Mutex
	methods map[network.RequestID]string
	matched map[network.RequestID]capturedResponse
	done    chan network.RequestID
}

type capturedResponse struct {
	url    string
	status int
}

func newResponseTracker(match func(url, method string) bool) *responseTracker {
	return &responseTracker{
		match:   match,
		methods: map[network.RequestID]string{},
		matched: map[network.RequestID]capturedResponse{},
		done:    make(chan network.RequestID, 1),
	}
}

func (t *responseTracker) handle(ev any) {
	switch ev := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.mu.Lock()
		t.methods[ev.RequestID] = ev.Request.Method
		t.mu.Unlock()
	case *network.EventResponseReceived:
		t.mu.Lock()
		if t.match(ev.Response.URL, t.methods[ev.RequestID]) {
			t.matched[ev.RequestID] = capturedResponse{
				url:    ev.Response.URL,
				status: int(ev.Response.Status),
			}
		}
		t.mu.Unlock()
	case *network.EventLoadingFinished:
		t.mu.Lock()
		_, ok := t.matched[ev.RequestID]
		t.mu.Unlock()
		if ok {
			select {
			case t.done <- ev.RequestID:
			default:
			}
		}
	}
}

func (t *responseTracker) result(id network.RequestID) capturedResponse {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.matched[id]
}

// ResponseWatch is a live network listener. It is attached to the tab
// the moment WatchResponse returns, so a trigger fired afterwards cannot
// race its own response past the listener.
type ResponseWatch struct {
	session *Session
	ctx     context.Context
	cancel  context.CancelFunc
	tracker *responseTracker
}

// WatchResponse registers a listener for the first response whose
// request matches the predicate. The listener is registered
// synchronously before this returns; call Wait to block for the result.
func (s *Session) WatchResponse(match func(url, method string) bool, timeout time.Duration) *ResponseWatch {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	tracker := newResponseTracker(match)
	chromedp.ListenTarget(ctx, tracker.handle)
	return &ResponseWatch{session: s, ctx: ctx, cancel: cancel, tracker: tracker}
}

// Wait blocks until the watched response lands or the watch times out,
// then fetches its body.
func (w *ResponseWatch) Wait() (*NetworkResponse, error) {
	defer w.cancel()

	select {
	case <-w.ctx.Done():
		return nil, fmt.Errorf("waiting for network response: %w", w.ctx.Err())
	case id := <-w.tracker.done:
		captured := w.tracker.result(id)

		var body []byte
		err := chromedp.Run(w.session.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			body, err = network.GetResponseBody(id).Do(ctx)
			return err
		}))
		if err != nil {
			// some responses (204, redirects) have no body to fetch
			body = nil
		}
		return &NetworkResponse{URL: captured.url, Status: captured.status, Body: body}, nil
	}
}

// WaitResponse subscribes and waits in one step, for responses the page
// issues on its own.
func (s *Session) WaitResponse(match func(url, method string) bool, timeout time.Duration) (*NetworkResponse, error) {
	return s.WatchResponse(match, timeout).Wait()
}

// Expect registers the watcher, runs trigger, then waits for the
// matching response. Registration happens before the trigger fires, so
// the response cannot slip through between the two.
func (s *Session) Expect(match func(url, method string) bool, timeout time.Duration, trigger func() error) (*NetworkResponse, error) {
	watch := s.WatchResponse(match, timeout)
	if err := trigger(); err != nil {
		watch.cancel()
		return nil, err
	}
	return watch.Wait()
}
