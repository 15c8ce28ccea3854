package chipotle

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// The order service uses optimistic concurrency: every mutating call
// must present the most recently observed token in an If-Match header,
// and every response hands back a replacement in its etag header. A
// stale token is rejected with 412 and surfaced as StaleTokenError,
// never retried here, since a blind retry could append the same meal
// twice. Mutations are strictly sequential per order; the caller is the
// single writer and threads the token from one call into the next.

const utensilsMenuItemID = "CMG-6110"

// CreateOrder opens a new empty online order at the given store and
// returns the initial snapshot together with its concurrency token.
func (c *Client) CreateOrder(ctx context.Context, restaurantID int64) (*Order, string, error) {
	ctx, span := tracer.Start(ctx, "CreateOrder")
	defer span.End()

	api, err := c.api()
	if err != nil {
		return nil, "", err
	}

	var out struct {
		OrderID string `json:"orderId"`
		Order   Order  `json:"order"`
	}
	res, err := api.R().
		SetContext(ctx).
		SetQueryParam("embeds", "order").
		SetBody(map[string]any{
			"restaurantId": restaurantID,
			"orderType":    1,
			"orderSource":  "WebV2",
		}).
		SetResult(&out).
		Post("/order/v2/online")
	if err != nil {
		return nil, "", err
	}
	if res.IsError() {
		return nil, "", &APIError{Endpoint: "/order/v2/online", Status: res.StatusCode(), Body: res.String()}
	}
	return &out.Order, res.Header().Get("etag"), nil
}

// AddMeal appends one named meal (entrees plus side and drink line
// items) to the order with server-side price finalization, under the
// token discipline described above.
func (c *Client) AddMeal(ctx context.Context, orderID, etag, mealName string, entrees []OrderEntree, sides, drinks []OrderContent) (*MealResult, string, error) {
	ctx, span := tracer.Start(ctx, "AddMeal")
	defer span.End()

	endpoint := fmt.Sprintf("/order/v2/online/%s/meals", orderID)
	var out MealResult
	newTag, err := c.mutateOrder(ctx, endpoint, orderID, etag, map[string]any{
		"meal": map[string]any{
			"mealName": mealName,
			"entrees":  entrees,
			"sides":    sides,
			"drinks":   drinks,
		},
	}, &out)
	if err != nil {
		return nil, "", err
	}
	return &out, newTag, nil
}

// AddUtensils appends the fixed napkins-and-utensils non-food item.
func (c *Client) AddUtensils(ctx context.Context, orderID, etag string) (*UtensilResult, string, error) {
	ctx, span := tracer.Start(ctx, "AddUtensils")
	defer span.End()

	endpoint := fmt.Sprintf("/order/v2/online/%s/nonFoodItems", orderID)
	var out UtensilResult
	newTag, err := c.mutateOrder(ctx, endpoint, orderID, etag, map[string]any{
		"menuItemId": utensilsMenuItemID,
		"quantity":   1,
		"isUpSell":   false,
	}, &out)
	if err != nil {
		return nil, "", err
	}
	return &out, newTag, nil
}

// mutateOrder posts one mutation under the optimistic concurrency
// contract and returns the fresh token from the response.
func (c *Client) mutateOrder(ctx context.Context, endpoint, orderID, etag string, body, out any) (string, error) {
	api, err := c.api()
	if err != nil {
		return "", err
	}

	res, err := api.R().
		SetContext(ctx).
		SetHeader("If-Match", etag).
		SetQueryParams(map[string]string{
			"embeds":          "order",
			"finalizePricing": "true",
		}).
		SetBody(body).
		SetResult(out).
		Post(endpoint)
	if err != nil {
		return "", err
	}
	return orderResponseToken(res, orderID, endpoint)
}

func orderResponseToken(res *resty.Response, orderID, endpoint string) (string, error) {
	if res.StatusCode() == http.StatusPreconditionFailed {
		return "", &StaleTokenError{OrderID: orderID, Endpoint: endpoint}
	}
	if res.IsError() {
		return "", &APIError{Endpoint: endpoint, Status: res.StatusCode(), Body: res.String()}
	}
	return res.Header().Get("etag"), nil
}
