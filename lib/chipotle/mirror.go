package chipotle

import (
	"context"
	"encoding/json"
	"fmt"
)

// The web app persists its entire state tree under one localStorage key.
// Mirroring writes the client's view of {token, order} into that tree so
// the live page's own logic resumes operating on the same order, without
// disturbing any sibling state the app keeps there.
const storageKey = "cmg-vuex"

// MirrorToBrowser projects an order snapshot and its concurrency token
// into the page's stored state, replacing only order.pendingOrder.
// The page must have been navigated to the storefront at least once so
// the web app has initialized its own state; otherwise this fails with
// ErrNoStoredState.
func (c *Client) MirrorToBrowser(ctx context.Context, etag string, order *Order) error {
	ctx, span := tracer.Start(ctx, "MirrorToBrowser")
	defer span.End()

	var stored *string
	read := fmt.Sprintf("localStorage.getItem(%q)", storageKey)
	if err := c.page.Evaluate(read, &stored); err != nil {
		return fmt.Errorf("read stored state: %w", err)
	}
	if stored == nil || *stored == "" {
		return ErrNoStoredState
	}

	merged, err := mergePendingOrder([]byte(*stored), etag, order.Raw())
	if err != nil {
		return err
	}

	quoted, err := json.Marshal(string(merged))
	if err != nil {
		return err
	}
	write := fmt.Sprintf("localStorage.setItem(%q, %s)", storageKey, quoted)
	if err := c.page.Evaluate(write, nil); err != nil {
		return fmt.Errorf("write stored state: %w", err)
	}
	return nil
}

// mergePendingOrder performs the read-merge-write on the stored web app
// document: only order.pendingOrder is replaced, every other key in the
// document and inside its order node rides through untouched.
func mergePendingOrder(doc []byte, etag string, order json.RawMessage) ([]byte, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("parse stored state: %w", err)
	}

	orderNode := map[string]json.RawMessage{}
	if raw, ok := root["order"]; ok {
		if err := json.Unmarshal(raw, &orderNode); err != nil {
			return nil, fmt.Errorf("parse stored order state: %w", err)
		}
	}

	pending, err := json.Marshal(map[string]json.RawMessage{
		"etag":      mustJSON(etag),
		"order":     order,
		"discounts": json.RawMessage("[]"),
	})
	if err != nil {
		return nil, err
	}
	orderNode["pendingOrder"] = pending

	newOrderNode, err := json.Marshal(orderNode)
	if err != nil {
		return nil, err
	}
	root["order"] = newOrderNode

	return json.Marshal(root)
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
