package browser

import (
	"strings"
	"testing"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/require"
)

func submitMatch(url, method string) bool {
	return strings.Contains(url, "/submit") && method == "POST"
}

func TestResponseTrackerReportsCompletedMatch(t *testing.T) {
	tracker := newResponseTracker(submitMatch)
	id := network.RequestID("req-1")

	tracker.handle(&network.EventRequestWillBeSent{
		RequestID: id,
		Request:   &network.Request{URL: "https://api.test/order/submit", Method: "POST"},
	})
	tracker.handle(&network.EventResponseReceived{
		RequestID: id,
		Response:  &network.Response{URL: "https://api.test/order/submit", Status: 200},
	})

	// the body is not complete until loadingFinished fires
	select {
	case <-tracker.done:
		t.Fatal("tracker fired before loadingFinished")
	default:
	}

	tracker.handle(&network.EventLoadingFinished{RequestID: id})

	select {
	case got := <-tracker.done:
		require.Equal(t, id, got)
	default:
		t.Fatal("tracker did not fire after loadingFinished")
	}

	captured := tracker.result(id)
	require.Equal(t, "https://api.test/order/submit", captured.url)
	require.Equal(t, 200, captured.status)
}

func TestResponseTrackerIgnoresMismatches(t *testing.T) {
	tracker := newResponseTracker(submitMatch)

	// right path, wrong method
	tracker.handle(&network.EventRequestWillBeSent{
		RequestID: "req-1",
		Request:   &network.Request{URL: "https://api.test/order/submit", Method: "GET"},
	})
	tracker.handle(&network.EventResponseReceived{
		RequestID: "req-1",
		Response:  &network.Response{URL: "https://api.test/order/submit", Status: 200},
	})
	tracker.handle(&network.EventLoadingFinished{RequestID: "req-1"})

	// right method, wrong path
	tracker.handle(&network.EventRequestWillBeSent{
		RequestID: "req-2",
		Request:   &network.Request{URL: "https://api.test/menu", Method: "POST"},
	})
	tracker.handle(&network.EventResponseReceived{
		RequestID: "req-2",
		Response:  &network.Response{URL: "https://api.test/menu", Status: 200},
	})
	tracker.handle(&network.EventLoadingFinished{RequestID: "req-2"})

	select {
	case id := <-tracker.done:
		t.Fatalf("tracker fired for %s", id)
	default:
	}
}

func TestResponseTrackerKeepsFirstMatch(t *testing.T) {
	tracker := newResponseTracker(submitMatch)

	for i, id := range []network.RequestID{"req-1", "req-2"} {
		tracker.handle(&network.EventRequestWillBeSent{
			RequestID: id,
			Request:   &network.Request{URL: "https://api.test/order/submit", Method: "POST"},
		})
		tracker.handle(&network.EventResponseReceived{
			RequestID: id,
			Response:  &network.Response{URL: "https://api.test/order/submit", Status: int64(200 + i)},
		})
		tracker.handle(&network.EventLoadingFinished{RequestID: id})
	}

	got := <-tracker.done
	require.Equal(t, network.RequestID("req-1"), got)
	require.Equal(t, 200, tracker.result(got).status)
}
