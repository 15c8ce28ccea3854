package chipotle

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func testWallet() Wallet {
	return Wallet{
		TokenID:                99,
		TokenizedAccountNumber: "tok_4242",
		CardHolderName:         "Test User",
		PaymentMethod:          "VISA",
		BillingZip:             "98125",
		PaymentTypeID:          1,
		PaymentProviderID:      "FREEDOMPAY",
		LastFourAccountNumbers: "4242",
		ExpirationMonth:        "06",
		ExpirationYear:         "27",
	}
}

func TestSubmitOrder(t *testing.T) {
	var gotPath, gotEtag string
	var gotShape http.Header
	var gotBody map[string]any

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotEtag = r.Header.Get("If-Match")
		gotShape = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"orderId":"R1","orderStatus":"SUBMITTED"}`))
	})
	client := newTestClient(t, handler)

	shape := ShapeHeaders{
		"x-ep1cc1qk-a": "opaque-a",
		"x-ep1cc1qk-z": "opaque-z",
	}
	res, err := client.SubmitOrder(context.Background(), "R1", "T3", shape, testWallet(), "2024-01-01T12:00:00")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())

	// the live web client really does omit the slash before the id
	require.Equal(t, "/order/v2/onlineR1/submit", gotPath)
	require.Equal(t, "T3", gotEtag)
	require.Equal(t, "opaque-a", gotShape.Get("x-ep1cc1qk-a"))
	require.Equal(t, "opaque-z", gotShape.Get("x-ep1cc1qk-z"))

	payments := gotBody["payments"].([]any)
	require.Len(t, payments, 1)
	payment := payments[0].(map[string]any)
	require.Equal(t, "0627", payment["creditCardExpiration"])
	require.Equal(t, "tok_4242", payment["creditCardSingleUseToken"])
	require.Equal(t, "4242", payment["lastFourAccountNumbers"])
	require.Equal(t, "2024-01-01T12:00:00", gotBody["pickupDateTime"])
	require.Equal(t, true, gotBody["isAboveStorePayment"])
}

func TestSubmitOrderStaleToken(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPreconditionFailed)
	})
	client := newTestClient(t, handler)

	res, err := client.SubmitOrder(context.Background(), "R1", "T1", nil, testWallet(), "2024-01-01T12:00:00")

	var stale *StaleTokenError
	require.ErrorAs(t, err, &stale)
	// the response still comes back so the caller can dig into it
	require.NotNil(t, res)
	require.Equal(t, http.StatusPreconditionFailed, res.StatusCode())
}

func TestSubmitOrderRequiresLogin(t *testing.T) {
	client := &Client{}
	_, err := client.SubmitOrder(context.Background(), "R1", "T1", nil, testWallet(), "2024-01-01T12:00:00")
	require.ErrorIs(t, err, ErrNotAuthenticated)
}
