package chipotle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchRestaurants(t *testing.T) {
	var gotBody map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/restaurant/v3/restaurant", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[
			{"restaurantNumber":1234,"restaurantName":"Northgate","distance":0.4},
			{"restaurantNumber":5678,"restaurantName":"Lake City","distance":2.1}
		]}`)
	})
	client := newTestClient(t, handler)

	restaurants, err := client.SearchRestaurants(context.Background(), 47.717, -122.3, 80467)
	require.NoError(t, err)
	require.Len(t, restaurants, 2)
	require.Equal(t, int64(1234), restaurants[0].RestaurantNumber)
	require.Equal(t, "Northgate", restaurants[0].RestaurantName)

	// first page only, 10 stores, closest first
	require.Equal(t, float64(10), gotBody["pageSize"])
	require.Equal(t, float64(0), gotBody["pageIndex"])
	require.Equal(t, "distance", gotBody["orderBy"])
	require.Equal(t, false, gotBody["orderByDescending"])
	require.ElementsMatch(t, []any{"OPEN", "LAB"}, gotBody["restaurantStatuses"])
}

func TestGetMenu(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/menuinnovation/v1/restaurants/1234/onlinemenu", r.URL.Path)
		require.Equal(t, "web", r.URL.Query().Get("channelId"))
		require.Equal(t, "true", r.URL.Query().Get("includeUnavailableItems"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"restaurantId":1234,
			"entrees":[{"itemId":"CMG-101","itemName":"Chicken Burrito","isItemAvailable":false}],
			"sides":[{"itemId":"CMG-201","itemName":"Chips"}],
			"drinks":[{"itemId":"CMG-301","itemName":"Bottled Water"}]
		}`)
	})
	client := newTestClient(t, handler)

	menu, err := client.GetMenu(context.Background(), 1234)
	require.NoError(t, err)
	require.Equal(t, int64(1234), menu.RestaurantID)
	require.Len(t, menu.Entrees, 1)
	// unavailable items come through, filtering is the caller's job
	require.False(t, menu.Entrees[0].IsItemAvailable)
}

func TestGetPickupTimes(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sput/v1/pickuptimes/1234", r.URL.Path)
		require.Equal(t, "1", r.URL.Query().Get("itemCount"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `["2024-01-01T12:00:00","2024-01-01T12:15:00"]`)
	})
	client := newTestClient(t, handler)

	times, err := client.GetPickupTimes(context.Background(), 1234)
	require.NoError(t, err)
	require.Equal(t, []string{"2024-01-01T12:00:00", "2024-01-01T12:15:00"}, times)
}

func TestGetWallet(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/v3/wallet/wallet", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{
			"tokenId":99,
			"cardHolderName":"Test User",
			"paymentMethod":"VISA",
			"lastFourAccountNumbers":"4242",
			"expirationMonth":"06",
			"expirationYear":"27"
		}]`)
	})
	client := newTestClient(t, handler)

	wallet, err := client.GetWallet(context.Background())
	require.NoError(t, err)
	require.Len(t, wallet, 1)
	require.Equal(t, "4242", wallet[0].LastFourAccountNumbers)
}

func TestCatalogRequiresLogin(t *testing.T) {
	client := &Client{}
	ctx := context.Background()

	_, err := client.SearchRestaurants(ctx, 0, 0, 0)
	require.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = client.GetMenu(ctx, 1)
	require.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = client.GetPickupTimes(ctx, 1)
	require.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = client.GetWallet(ctx)
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestCatalogErrorCarriesEndpoint(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := client.GetMenu(context.Background(), 77)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusForbidden, apiErr.Status)
	require.Contains(t, apiErr.Endpoint, "/restaurants/77/")
}
