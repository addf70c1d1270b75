package cart

import (
	"context"
	"fmt"

	"github.com/MarcGrol/storefront/lib/mylog"
)

// Store owns the state of one cart and writes it to its slot after every change.
// A Store has a single owner and is not safe for concurrent use.
type Store struct {
	slot   Slot
	logger mylog.Logger
	state  State
}

// NewStore hydrates the cart from slot. An unreadable blob is discarded and
// the cart starts empty; only a failing slot is reported.
func NewStore(c context.Context, slot Slot, logger mylog.Logger) (*Store, error) {
	s := &Store{
		slot:   slot,
		logger: logger,
	}

	blob, found, err := slot.Get(c)
	if err != nil {
		return nil, fmt.Errorf("error reading cart slot: %w", err)
	}
	if !found {
		return s, nil
	}

	items, err := decodeItems(blob)
	if err != nil {
		logger.Log(c, "", mylog.SeverityWarn, "Discarding unreadable cart (%d bytes): %s", len(blob), err)
		return s, nil
	}
	s.state = Reduce(s.state, Hydrate{Items: items})

	return s, nil
}

func (s *Store) AddItem(c context.Context, item ItemSpec) error {
	return s.dispatch(c, AddItem{Item: item})
}

func (s *Store) RemoveItem(c context.Context, id string) error {
	return s.dispatch(c, RemoveItem{ID: id})
}

func (s *Store) SetQuantity(c context.Context, id string, quantity int) error {
	return s.dispatch(c, SetQuantity{ID: id, Quantity: quantity})
}

func (s *Store) Clear(c context.Context) error {
	s.state = Reduce(s.state, Clear{})

	err := s.slot.Clear(c)
	if err != nil {
		return fmt.Errorf("error clearing cart slot: %w", err)
	}
	return nil
}

// Quantity returns the quantity of the line with id, 0 when absent.
func (s *Store) Quantity(id string) int {
	return s.state.Quantity(id)
}

func (s *Store) Snapshot() Snapshot {
	return s.state.Snapshot()
}

// dispatch applies the action in memory first, the write to the slot follows.
func (s *Store) dispatch(c context.Context, action Action) error {
	s.state = Reduce(s.state, action)

	blob, err := encodeItems(s.state.items)
	if err != nil {
		return err
	}
	err = s.slot.Set(c, blob)
	if err != nil {
		return fmt.Errorf("error writing cart slot: %w", err)
	}
	return nil
}
