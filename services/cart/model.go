package cart

import (
	"github.com/MarcGrol/storefront/services/pricing"
)

// LineItem is one product in the cart. ID is the catalog id and identifies the line.
type LineItem struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ListPrice     int64  `json:"listPrice"`
	SalePrice     int64  `json:"salePrice,omitempty"`
	Quantity      int    `json:"quantity"`
	SKU           string `json:"sku"`
	CategoryLabel string `json:"categoryLabel,omitempty"`
	ImageRef      string `json:"imageRef,omitempty"`
}

func (li LineItem) EffectivePrice() int64 {
	return pricing.EffectivePrice(li.ListPrice, li.SalePrice)
}

func (li LineItem) Subtotal() int64 {
	return li.EffectivePrice() * int64(li.Quantity)
}

// ItemSpec describes the product being added; it becomes a line item with quantity 1.
type ItemSpec struct {
	ID            string
	Name          string
	ListPrice     int64
	SalePrice     int64
	SKU           string
	CategoryLabel string
	ImageRef      string
}

func (spec ItemSpec) lineItem(quantity int) LineItem {
	return LineItem{
		ID:            spec.ID,
		Name:          spec.Name,
		ListPrice:     spec.ListPrice,
		SalePrice:     spec.SalePrice,
		Quantity:      quantity,
		SKU:           spec.SKU,
		CategoryLabel: spec.CategoryLabel,
		ImageRef:      spec.ImageRef,
	}
}

// Snapshot is a read-only projection of the cart. Total and ItemCount are always derived from Items.
type Snapshot struct {
	Items     []LineItem
	Total     int64
	ItemCount int
}
