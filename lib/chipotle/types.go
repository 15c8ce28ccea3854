package chipotle

import "encoding/json"

// Data shapes exchanged with the ordering API. These are pass-through
// payloads: beyond the identifiers and price fields the client actually
// reads, the service owns their meaning.

type Restaurant struct {
	RestaurantNumber int64               `json:"restaurantNumber"`
	RestaurantName   string              `json:"restaurantName"`
	RestaurantStatus string              `json:"restaurantStatus"`
	Distance         float64             `json:"distance"`
	Addresses        []RestaurantAddress `json:"addresses"`
}

type RestaurantAddress struct {
	AddressType        string  `json:"addressType"`
	AddressLine1       string  `json:"addressLine1"`
	Locality           string  `json:"locality"`
	AdministrativeArea string  `json:"administrativeArea"`
	PostalCode         string  `json:"postalCode"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
}

type searchRestaurantsResponse struct {
	Data []Restaurant `json:"data"`
}

type MenuItem struct {
	ItemCategory    string  `json:"itemCategory"`
	ItemType        string  `json:"itemType"`
	ItemID          string  `json:"itemId"`
	ItemName        string  `json:"itemName"`
	UnitPrice       float64 `json:"unitPrice"`
	MaxQuantity     int     `json:"maxQuantity"`
	IsItemAvailable bool    `json:"isItemAvailable"`
}

type Entree struct {
	MenuItem
	PrimaryFillingName string `json:"primaryFillingName"`
	MaxContents        int    `json:"maxContents"`
	MaxCustomizations  int    `json:"maxCustomizations"`
}

type Menu struct {
	RestaurantID int64      `json:"restaurantId"`
	Entrees      []Entree   `json:"entrees"`
	Sides        []MenuItem `json:"sides"`
	Drinks       []MenuItem `json:"drinks"`
	NonFoodItems []MenuItem `json:"nonFoodItems"`
}

// Order is a read-mostly snapshot of the server-owned order resource.
// The raw response bytes are retained so mirroring into the web app's
// localStorage reproduces the exact structure the web UI expects.
type Order struct {
	OrderID                 string  `json:"orderId"`
	RestaurantID            int64   `json:"restaurantId"`
	IsOrderComplete         bool    `json:"isOrderComplete"`
	OrderType               int     `json:"orderType"`
	OrderStatus             string  `json:"orderStatus"`
	OrderSubTotalAmount     float64 `json:"orderSubTotalAmount"`
	OrderTaxAmount          float64 `json:"orderTaxAmount"`
	OrderTotalAmount        float64 `json:"orderTotalAmount"`
	TaxWasCalculated        bool    `json:"taxWasCalculated"`
	DiscountsWereCalculated bool    `json:"discountsWereCalculated"`
	Meals                   []Meal  `json:"meals"`

	raw json.RawMessage
}

func (o *Order) UnmarshalJSON(b []byte) error {
	type plain Order
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*o = Order(p)
	o.raw = append(json.RawMessage(nil), b...)
	return nil
}

// Raw returns the order document exactly as the service sent it.
func (o *Order) Raw() json.RawMessage {
	if o.raw != nil {
		return o.raw
	}
	b, _ := json.Marshal(*o)
	return b
}

type Meal struct {
	MealID          string  `json:"mealId"`
	MealName        string  `json:"mealName"`
	MealTotalAmount float64 `json:"mealTotalAmount"`
	IsMealAvailable bool    `json:"isMealAvailable"`
}

// OrderEntree describes an entree being added to an order, including its
// contents (fillings, toppings) and optional per-content customization.
type OrderEntree struct {
	MenuItemID   string         `json:"menuItemId"`
	MenuItemName string         `json:"menuItemName"`
	Quantity     int            `json:"quantity"`
	Contents     []OrderContent `json:"contents"`
}

type OrderContent struct {
	MenuItemID      string `json:"menuItemId"`
	MenuItemName    string `json:"menuItemName"`
	Quantity        int    `json:"quantity"`
	IsUpSell        bool   `json:"isUpSell"`
	CustomizationID *int   `json:"customizationId,omitempty"`
}

// MealResult is the service's answer to a meal append.
type MealResult struct {
	MealID         string          `json:"mealId"`
	SwappedEntrees json.RawMessage `json:"swappedEntrees"`
	Order          Order           `json:"order"`
}

// UtensilResult is the service's answer to a non-food item append.
type UtensilResult struct {
	NonFoodItemID string `json:"nonFoodItemId"`
	Order         Order  `json:"order"`
}

// Wallet is a saved payment method. Tokenized card data supplied by the
// account; read-only from this client's perspective.
type Wallet struct {
	TokenID                int64  `json:"tokenId"`
	TokenizedAccountNumber string `json:"tokenizedAccountNumber"`
	CardHolderName         string `json:"cardHolderName"`
	PaymentMethod          string `json:"paymentMethod"`
	BillingZip             string `json:"billingZip"`
	PaymentTypeID          int    `json:"paymentTypeId"`
	PaymentProviderID      string `json:"paymentProviderId"`
	LastFourAccountNumbers string `json:"lastFourAccountNumbers"`
	IsGiftCard             bool   `json:"isGiftCard"`
	ExpirationMonth        string `json:"expirationMonth"`
	ExpirationYear         string `json:"expirationYear"`
}

// ShapeHeaders are the opaque anti-bot header values the submission
// endpoint requires. This client cannot generate them; they are an
// external input.
type ShapeHeaders map[string]string
