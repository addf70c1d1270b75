package cart

import "github.com/MarcGrol/storefront/services/cart/cartevents"

// BuildManifest derives the checkout manifest from a snapshot.
func BuildManifest(snapshot Snapshot) cartevents.Manifest {
	manifest := cartevents.Manifest{
		Lines:      make([]cartevents.ManifestLine, 0, len(snapshot.Items)),
		ItemCount:  snapshot.ItemCount,
		GrandTotal: snapshot.Total,
	}
	for _, item := range snapshot.Items {
		manifest.Lines = append(manifest.Lines, cartevents.ManifestLine{
			Name:           item.Name,
			SKU:            item.SKU,
			EffectivePrice: item.EffectivePrice(),
			Quantity:       item.Quantity,
			Subtotal:       item.Subtotal(),
		})
	}
	return manifest
}
