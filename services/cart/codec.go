package cart

import (
	"encoding/json"
	"fmt"
)

// blobItem is the persisted shape of a line item.
type blobItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	SalePrice    int64  `json:"salePrice,omitempty"`
	Image        string `json:"image,omitempty"`
	Quantity     int    `json:"quantity"`
	CategoryName string `json:"categoryName,omitempty"`
	SKU          string `json:"sku"`
}

func encodeItems(items []LineItem) ([]byte, error) {
	blob := make([]blobItem, 0, len(items))
	for _, item := range items {
		blob = append(blob, blobItem{
			ID:           item.ID,
			Name:         item.Name,
			Price:        item.ListPrice,
			SalePrice:    item.SalePrice,
			Image:        item.ImageRef,
			Quantity:     item.Quantity,
			CategoryName: item.CategoryLabel,
			SKU:          item.SKU,
		})
	}
	data, err := json.Marshal(blob)
	if err != nil {
		return nil, fmt.Errorf("error encoding cart items: %w", err)
	}
	return data, nil
}

func decodeItems(data []byte) ([]LineItem, error) {
	blob := []blobItem{}
	err := json.Unmarshal(data, &blob)
	if err != nil {
		return nil, fmt.Errorf("error decoding cart items: %w", err)
	}
	items := make([]LineItem, 0, len(blob))
	for _, b := range blob {
		items = append(items, LineItem{
			ID:            b.ID,
			Name:          b.Name,
			ListPrice:     b.Price,
			SalePrice:     b.SalePrice,
			Quantity:      b.Quantity,
			SKU:           b.SKU,
			CategoryLabel: b.CategoryName,
			ImageRef:      b.Image,
		})
	}
	return items, nil
}
