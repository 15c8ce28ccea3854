package chipotle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPickupSlotLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-01-01T00:05:00", "12:05am"},
		{"2024-01-01T13:30:00", "1:30pm"},
		{"2024-01-01T12:00:00", "12:00pm"},
		{"2024-01-01T09:07:00", "9:07am"},
		{"2024-01-01T11:59:00", "11:59am"},
		{"2024-01-01T23:45:00", "11:45pm"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			got, err := pickupSlotLabel(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestPickupSlotLabelRejectsOtherFormats(t *testing.T) {
	_, err := pickupSlotLabel("2024-01-01 13:30:00")
	require.Error(t, err)
	_, err = pickupSlotLabel("1:30pm")
	require.Error(t, err)
}

func TestDisplayNameCategories(t *testing.T) {
	entree := OrderEntree{MenuItemID: "CMG-101", MenuItemName: "Chicken Burrito"}

	t.Run("WidensAgainstPageGroups", func(t *testing.T) {
		page := `<html><body>
			<div data-qa-group-name="Lifestyle Bowls"></div>
			<div data-qa-group-name="Burritos"></div>
		</body></html>`
		category, err := displayNameCategories{}.Category(entree, page)
		require.NoError(t, err)
		require.Equal(t, "Burritos", category)
	})

	t.Run("FallsBackToHint", func(t *testing.T) {
		category, err := displayNameCategories{}.Category(entree, "<html></html>")
		require.NoError(t, err)
		require.Equal(t, "Burrito", category)
	})

	t.Run("SingleWordName", func(t *testing.T) {
		_, err := displayNameCategories{}.Category(OrderEntree{MenuItemName: "Quesadilla"}, "")
		require.Error(t, err)
	})
}

func TestItemSelector(t *testing.T) {
	require.Equal(t, `[data-qa-item-id="CMG-5101"]`, itemSelector("CMG-5101"))
}
