package cart

import (
	"context"

	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mypublisher"
	"github.com/MarcGrol/storefront/lib/mystore"
	"github.com/MarcGrol/storefront/lib/mytime"
	"github.com/MarcGrol/storefront/lib/myuuid"
	"github.com/MarcGrol/storefront/services/catalog"
)

// ProductFinder resolves the catalog product behind a cart line.
type ProductFinder interface {
	Get(c context.Context, productID string) (catalog.CatalogRecord, error)
}

type service struct {
	slotStore mystore.Store[CartSlot]
	products  ProductFinder
	publisher mypublisher.Publisher
	nower     mytime.Nower
	uuider    myuuid.UUIDer
	logger    mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(slotStore mystore.Store[CartSlot], products ProductFinder, nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger, pub mypublisher.Publisher) *service {
	return &service{
		slotStore: slotStore,
		products:  products,
		publisher: pub,
		nower:     nower,
		uuider:    uuider,
		logger:    logger,
	}
}
