package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/services/cart/cartevents"
	"github.com/MarcGrol/storefront/services/catalog"
)

func (s *service) CreateTopics(c context.Context) error {
	err := s.publisher.CreateTopic(c, cartevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %w", cartevents.TopicName, err)
	}
	return nil
}

func (s *service) createCart(c context.Context) (string, Snapshot, error) {
	cartUID := s.uuider.Create()
	now := s.nower.Now()

	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Creating new cart with uid %s", cartUID)

	err := s.slotStore.RunInTransaction(c, func(c context.Context) error {
		err := s.slotStore.Put(c, cartUID, CartSlot{
			UID:          cartUID,
			CreatedAt:    now,
			LastModified: now,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, cartevents.TopicName, cartevents.CartCreated{
			CartUID: cartUID,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
	if err != nil {
		return "", Snapshot{}, err
	}

	return cartUID, Snapshot{Items: []LineItem{}}, nil
}

func (s *service) getCart(c context.Context, cartUID string) (Snapshot, error) {
	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Fetch cart %s", cartUID)

	store, err := s.openCart(c, cartUID)
	if err != nil {
		return Snapshot{}, err
	}

	return store.Snapshot(), nil
}

// addItem adds one unit of the product, never beyond its stock.
func (s *service) addItem(c context.Context, cartUID string, productID string) (Snapshot, error) {
	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Add product %s to cart %s", productID, cartUID)

	product, err := s.products.Get(c, productID)
	if err != nil {
		return Snapshot{}, err
	}

	return s.mutate(c, cartUID, func(c context.Context, store *Store) error {
		current := store.Quantity(productID)
		if current+1 > product.Stock {
			if current > product.Stock {
				return store.SetQuantity(c, productID, product.Stock)
			}
			s.logger.Log(c, cartUID, mylog.SeverityInfo, "Product %s has no more stock (%d), not added", productID, product.Stock)
			return nil
		}
		return store.AddItem(c, itemSpecOf(product))
	})
}

// setQuantity clamps the requested quantity to the stock of the product. Zero stock removes the line.
// Products not in the cart are left alone. A line whose product left the catalog can only be lowered.
func (s *service) setQuantity(c context.Context, cartUID string, productID string, quantity int) (Snapshot, error) {
	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Set quantity of product %s in cart %s to %d", productID, cartUID, quantity)

	if quantity <= 0 {
		return s.removeItem(c, cartUID, productID)
	}

	current, err := s.openCart(c, cartUID)
	if err != nil {
		return Snapshot{}, err
	}
	currentQuantity := current.Quantity(productID)
	if currentQuantity == 0 {
		s.logger.Log(c, cartUID, mylog.SeverityInfo, "Product %s is not in cart %s, quantity unchanged", productID, cartUID)
		return current.Snapshot(), nil
	}

	limit, err := s.quantityLimit(c, productID, currentQuantity)
	if err != nil {
		return Snapshot{}, err
	}
	if quantity > limit {
		s.logger.Log(c, cartUID, mylog.SeverityInfo, "Clamping quantity of product %s from %d to %d", productID, quantity, limit)
		quantity = limit
	}

	return s.mutate(c, cartUID, func(c context.Context, store *Store) error {
		return store.SetQuantity(c, productID, quantity)
	})
}

// quantityLimit is the stock of the product, or the current quantity when the product is no longer offered.
func (s *service) quantityLimit(c context.Context, productID string, currentQuantity int) (int, error) {
	product, err := s.products.Get(c, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return currentQuantity, nil
		}
		return 0, err
	}
	return product.Stock, nil
}

func (s *service) removeItem(c context.Context, cartUID string, productID string) (Snapshot, error) {
	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Remove product %s from cart %s", productID, cartUID)

	return s.mutate(c, cartUID, func(c context.Context, store *Store) error {
		return store.RemoveItem(c, productID)
	})
}

func (s *service) clearCart(c context.Context, cartUID string) (Snapshot, error) {
	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Clear cart %s", cartUID)

	return s.mutate(c, cartUID, func(c context.Context, store *Store) error {
		err := store.Clear(c)
		if err != nil {
			return err
		}

		return s.publisher.Publish(c, cartevents.TopicName, cartevents.CartCleared{
			CartUID: cartUID,
		})
	})
}

func (s *service) checkout(c context.Context, cartUID string) (cartevents.Manifest, error) {
	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Checkout of cart %s requested", cartUID)

	var manifest cartevents.Manifest
	err := s.slotStore.RunInTransaction(c, func(c context.Context) error {
		store, err := s.openCart(c, cartUID)
		if err != nil {
			return err
		}

		snapshot := store.Snapshot()
		if len(snapshot.Items) == 0 {
			return myerrors.NewInvalidInputError(fmt.Errorf("cart %s is empty", cartUID))
		}
		manifest = BuildManifest(snapshot)

		err = s.publisher.Publish(c, cartevents.TopicName, cartevents.CheckoutRequested{
			CartUID:     cartUID,
			RequestedAt: s.nower.Now(),
			Manifest:    manifest,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
	if err != nil {
		return cartevents.Manifest{}, err
	}

	return manifest, nil
}

// mutate runs hydrate, change and write of one cart within a single transaction.
func (s *service) mutate(c context.Context, cartUID string, change func(c context.Context, store *Store) error) (Snapshot, error) {
	var snapshot Snapshot
	err := s.slotStore.RunInTransaction(c, func(c context.Context) error {
		store, err := s.openCart(c, cartUID)
		if err != nil {
			return err
		}

		err = change(c, store)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		snapshot = store.Snapshot()
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	return snapshot, nil
}

func (s *service) openCart(c context.Context, cartUID string) (*Store, error) {
	_, found, err := s.slotStore.Get(c, cartUID)
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}
	if !found {
		return nil, myerrors.NewNotFoundError(fmt.Errorf("cart with uid %s not found", cartUID))
	}

	store, err := NewStore(c, newStoreSlot(s.slotStore, cartUID, s.nower), s.logger)
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}
	return store, nil
}

func itemSpecOf(product catalog.CatalogRecord) ItemSpec {
	return ItemSpec{
		ID:            product.ID,
		Name:          product.Name,
		ListPrice:     product.ListPrice,
		SalePrice:     product.SalePrice,
		SKU:           product.SKU,
		CategoryLabel: product.CategoryName,
		ImageRef:      product.FirstImage(),
	}
}
