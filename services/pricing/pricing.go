// Package pricing holds the single price resolution rule shared by catalog and cart.
package pricing

import "math"

// Price is the resolved view of a list price and an optional sale price.
type Price struct {
	List               int64 `json:"list"`
	Effective          int64 `json:"effective"`
	DiscountPercentage int   `json:"discountPercentage"`
	OnSale             bool  `json:"onSale"`
}

// EffectivePrice returns salePrice when 0 < salePrice < listPrice, listPrice otherwise.
// A salePrice of 0 means there is no sale.
func EffectivePrice(listPrice int64, salePrice int64) int64 {
	if salePrice > 0 && salePrice < listPrice {
		return salePrice
	}
	return listPrice
}

// DiscountPercentage rounds the relative discount to a whole percentage.
func DiscountPercentage(listPrice int64, effective int64) int {
	if listPrice <= 0 || effective >= listPrice {
		return 0
	}
	return int(math.Round(float64(listPrice-effective) / float64(listPrice) * 100))
}

func Resolve(listPrice int64, salePrice int64) Price {
	effective := EffectivePrice(listPrice, salePrice)
	return Price{
		List:               listPrice,
		Effective:          effective,
		DiscountPercentage: DiscountPercentage(listPrice, effective),
		OnSale:             effective < listPrice,
	}
}
