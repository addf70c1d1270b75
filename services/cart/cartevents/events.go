package cartevents

import "time"

const (
	TopicName             = "cart"
	cartCreatedName       = TopicName + ".created"
	cartClearedName       = TopicName + ".cleared"
	checkoutRequestedName = TopicName + ".checkout.requested"
)

type CartCreated struct {
	CartUID string
}

func (e CartCreated) GetEventTypeName() string {
	return cartCreatedName
}

func (e CartCreated) GetAggregateName() string {
	return e.CartUID
}

type CartCleared struct {
	CartUID string
}

func (e CartCleared) GetEventTypeName() string {
	return cartClearedName
}

func (e CartCleared) GetAggregateName() string {
	return e.CartUID
}

// CheckoutRequested hands the cart over to the order builder.
type CheckoutRequested struct {
	CartUID     string
	RequestedAt time.Time
	Manifest    Manifest
}

func (e CheckoutRequested) GetEventTypeName() string {
	return checkoutRequestedName
}

func (e CheckoutRequested) GetAggregateName() string {
	return e.CartUID
}

// Manifest is everything an order builder needs from a cart; GrandTotal equals the cart total.
type Manifest struct {
	Lines      []ManifestLine `json:"lines"`
	ItemCount  int            `json:"itemCount"`
	GrandTotal int64          `json:"grandTotal"`
}

type ManifestLine struct {
	Name           string `json:"name"`
	SKU            string `json:"sku"`
	EffectivePrice int64  `json:"effectivePrice"`
	Quantity       int    `json:"quantity"`
	Subtotal       int64  `json:"subtotal"`
}
