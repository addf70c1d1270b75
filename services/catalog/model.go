package catalog

import (
	"time"

	"github.com/MarcGrol/storefront/services/pricing"
)

// CatalogRecord is a product as maintained by catalog administration. The query engine only reads it.
type CatalogRecord struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty" datastore:",noindex"`
	SKU          string    `json:"sku"`
	ListPrice    int64     `json:"price"`
	SalePrice    int64     `json:"salePrice,omitempty"`
	Stock        int       `json:"stock"`
	CategoryID   string    `json:"categoryId"`
	CategoryName string    `json:"categoryName,omitempty" datastore:",noindex"`
	Tags         []string  `json:"tags"`
	Images       []string  `json:"images" datastore:",noindex"`
	IsActive     bool      `json:"isActive"`
	IsFeatured   bool      `json:"isFeatured"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (r CatalogRecord) EffectivePrice() int64 {
	return pricing.EffectivePrice(r.ListPrice, r.SalePrice)
}

func (r CatalogRecord) Price() pricing.Price {
	return pricing.Resolve(r.ListPrice, r.SalePrice)
}

// FirstImage is the image shown in listings and in the cart.
func (r CatalogRecord) FirstImage() string {
	if len(r.Images) == 0 {
		return ""
	}
	return r.Images[0]
}

type PageInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"limit"`
	TotalItems int  `json:"total"`
	TotalPages int  `json:"pages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

type QueryResult struct {
	Items    []CatalogRecord
	PageInfo PageInfo
}
