package chipotle

import (
	"context"
	"fmt"
)

// Stateless catalog reads. None of these mutate local state and none of
// them retry; a failed read is the caller's problem.

// SearchRestaurants looks up open stores around a coordinate, closest
// first. Only the first page (10 stores) is returned; paging past that
// is deliberately out of scope.
func (c *Client) SearchRestaurants(ctx context.Context, latitude, longitude float64, radiusMeters int) ([]Restaurant, error) {
	ctx, span := tracer.Start(ctx, "SearchRestaurants")
	defer span.End()

	api, err := c.api()
	if err != nil {
		return nil, err
	}

	var out searchRestaurantsResponse
	res, err := api.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"latitude":           latitude,
			"longitude":          longitude,
			"radius":             radiusMeters,
			"restaurantStatuses": []string{"OPEN", "LAB"},
			"conceptIds":         []string{"CMG"},
			"orderBy":            "distance",
			"orderByDescending":  false,
			"pageSize":           10,
			"pageIndex":          0,
			"embeds": map[string]any{
				"addressTypes":   []string{"MAIN"},
				"realHours":      true,
				"directions":     true,
				"onlineOrdering": true,
			},
		}).
		SetResult(&out).
		Post("/restaurant/v3/restaurant")
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, &APIError{Endpoint: "/restaurant/v3/restaurant", Status: res.StatusCode(), Body: res.String()}
	}
	return out.Data, nil
}

// GetMenu fetches a store's full online menu, unavailable items
// included. Filtering on availability is left to the caller.
func (c *Client) GetMenu(ctx context.Context, restaurantID int64) (*Menu, error) {
	ctx, span := tracer.Start(ctx, "GetMenu")
	defer span.End()

	api, err := c.api()
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("/menuinnovation/v1/restaurants/%d/onlinemenu", restaurantID)
	var out Menu
	res, err := api.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"channelId":               "web",
			"includeUnavailableItems": "true",
		}).
		SetResult(&out).
		Get(endpoint)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, &APIError{Endpoint: endpoint, Status: res.StatusCode(), Body: res.String()}
	}
	return &out, nil
}

// GetPickupTimes lists available pickup slots for a store as local-time
// strings of the form YYYY-MM-DDTHH:MM:SS.
func (c *Client) GetPickupTimes(ctx context.Context, restaurantID int64) ([]string, error) {
	ctx, span := tracer.Start(ctx, "GetPickupTimes")
	defer span.End()

	api, err := c.api()
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("/sput/v1/pickuptimes/%d", restaurantID)
	var out []string
	res, err := api.R().
		SetContext(ctx).
		SetQueryParam("itemCount", "1").
		SetResult(&out).
		Get(endpoint)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, &APIError{Endpoint: endpoint, Status: res.StatusCode(), Body: res.String()}
	}
	return out, nil
}

// GetWallet lists the saved payment methods on the account.
func (c *Client) GetWallet(ctx context.Context) ([]Wallet, error) {
	ctx, span := tracer.Start(ctx, "GetWallet")
	defer span.End()

	api, err := c.api()
	if err != nil {
		return nil, err
	}

	var out []Wallet
	res, err := api.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/transaction/v3/wallet/wallet")
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, &APIError{Endpoint: "/transaction/v3/wallet/wallet", Status: res.StatusCode(), Body: res.String()}
	}
	return out, nil
}
