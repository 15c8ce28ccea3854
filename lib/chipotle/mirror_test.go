package chipotle

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestMergePendingOrderPreservesSiblings(t *testing.T) {
	stored := []byte(`{
		"a": 1,
		"cart": {"items": ["chips"]},
		"order": {
			"pendingOrder": {"etag": "OLD", "order": {"orderId": "OLD"}, "discounts": ["x"]},
			"other": 2
		}
	}`)

	order := json.RawMessage(`{"orderId":"R1","restaurantId":42}`)
	merged, err := mergePendingOrder(stored, "T9", order)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(merged, &got))

	require.Equal(t, float64(1), got["a"])
	require.Empty(t, cmp.Diff(
		map[string]any{"items": []any{"chips"}},
		got["cart"],
	))

	orderNode := got["order"].(map[string]any)
	require.Equal(t, float64(2), orderNode["other"])

	require.Empty(t, cmp.Diff(
		map[string]any{
			"etag":      "T9",
			"order":     map[string]any{"orderId": "R1", "restaurantId": float64(42)},
			"discounts": []any{},
		},
		orderNode["pendingOrder"],
	))
}

func TestMergePendingOrderEmptyOrderNode(t *testing.T) {
	// a document without an order node gets one; nothing else appears
	merged, err := mergePendingOrder([]byte(`{"a":true}`), "T1", json.RawMessage(`{}`))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(merged, &got))
	require.Len(t, got, 2)
	require.Equal(t, true, got["a"])
	require.Contains(t, got["order"].(map[string]any), "pendingOrder")
}

func TestMergePendingOrderRejectsGarbage(t *testing.T) {
	_, err := mergePendingOrder([]byte(`not json`), "T1", json.RawMessage(`{}`))
	require.Error(t, err)

	_, err = mergePendingOrder([]byte(`{"order": 3}`), "T1", json.RawMessage(`{}`))
	require.Error(t, err)
}
