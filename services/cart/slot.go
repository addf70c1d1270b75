package cart

import (
	"context"
	"time"

	"github.com/MarcGrol/storefront/lib/mystore"
	"github.com/MarcGrol/storefront/lib/mytime"
)

// Slot is the durable key-value slot holding the encoded cart of one owner.
//
//go:generate mockgen -source=slot.go -package cart -destination slot_mock.go Slot
type Slot interface {
	Get(c context.Context) ([]byte, bool, error)
	Set(c context.Context, blob []byte) error
	Clear(c context.Context) error
}

// CartSlot is the persisted form of a cart, keyed by cart uid.
type CartSlot struct {
	UID          string
	Items        []byte `datastore:",noindex"`
	CreatedAt    time.Time
	LastModified time.Time
}

type storeSlot struct {
	store   mystore.Store[CartSlot]
	cartUID string
	nower   mytime.Nower
}

func newStoreSlot(store mystore.Store[CartSlot], cartUID string, nower mytime.Nower) *storeSlot {
	return &storeSlot{
		store:   store,
		cartUID: cartUID,
		nower:   nower,
	}
}

func (s *storeSlot) Get(c context.Context) ([]byte, bool, error) {
	slot, found, err := s.store.Get(c, s.cartUID)
	if err != nil || !found {
		return nil, false, err
	}
	if len(slot.Items) == 0 {
		return nil, false, nil
	}
	return slot.Items, true, nil
}

func (s *storeSlot) Set(c context.Context, blob []byte) error {
	return s.write(c, blob)
}

// Clear empties the slot but keeps the cart itself.
func (s *storeSlot) Clear(c context.Context) error {
	return s.write(c, nil)
}

func (s *storeSlot) write(c context.Context, blob []byte) error {
	slot, found, err := s.store.Get(c, s.cartUID)
	if err != nil {
		return err
	}
	now := s.nower.Now()
	if !found {
		slot = CartSlot{UID: s.cartUID, CreatedAt: now}
	}
	slot.Items = blob
	slot.LastModified = now
	return s.store.Put(c, s.cartUID, slot)
}
