package chipotle

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// SubmitOrder finalizes an order over the REST path. The submission
// endpoint sits behind Shape bot protection, so the caller must supply a
// valid set of anti-bot headers obtained elsewhere; this client never
// fabricates them. The full response is returned so callers can inspect
// the status and body for their own error classification, alongside any
// error this client could classify itself.
func (c *Client) SubmitOrder(ctx context.Context, orderID, etag string, shape ShapeHeaders, wallet Wallet, pickupTime string) (*resty.Response, error) {
	ctx, span := tracer.Start(ctx, "SubmitOrder")
	defer span.End()

	api, err := c.api()
	if err != nil {
		return nil, err
	}

	// no slash before the order id: this is what the live web client
	// sends, even though every other order endpoint uses /online/{id}/
	endpoint := fmt.Sprintf("/order/v2/online%s/submit", orderID)

	req := api.R().
		SetContext(ctx).
		SetHeader("If-Match", etag).
		SetBody(map[string]any{
			"bagPickupLocationId": 1,
			"isAboveStorePayment": true,
			"payments": []map[string]any{
				{
					"cardHolderName":           wallet.CardHolderName,
					"creditCardSingleUseToken": wallet.TokenizedAccountNumber,
					"chipotleWalletId":         wallet.TokenID,
					"creditCardType":           wallet.PaymentMethod,
					"creditCardExpiration":     wallet.ExpirationMonth + wallet.ExpirationYear,
					"creditCardZipcode":        wallet.BillingZip,
					"paymentType":              wallet.PaymentTypeID,
					"paymentProviderId":        wallet.PaymentProviderID,
					"lastFourAccountNumbers":   wallet.LastFourAccountNumbers,
				},
			},
			"pickupDateTime": pickupTime,
		})
	for header, value := range shape {
		req.SetHeader(header, value)
	}

	res, err := req.Post(endpoint)
	if err != nil {
		return res, err
	}
	if res.StatusCode() == http.StatusPreconditionFailed {
		return res, &StaleTokenError{OrderID: orderID, Endpoint: endpoint}
	}
	return res, nil
}
