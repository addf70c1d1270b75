package cart

// State holds the ordered line items of a cart. Reduce never modifies the State it is given.
type State struct {
	items []LineItem
}

func NewState(items ...LineItem) State {
	return Reduce(State{}, Hydrate{Items: items})
}

// Action is one of AddItem, RemoveItem, SetQuantity, Clear or Hydrate.
type Action interface {
	apply(s State) State
}

// AddItem increments the quantity of an existing line or appends a new line with quantity 1.
type AddItem struct {
	Item ItemSpec
}

// RemoveItem drops the line with ID. Unknown ids are ignored.
type RemoveItem struct {
	ID string
}

// SetQuantity replaces the quantity of the line with ID. A quantity of 0 or less removes the line.
type SetQuantity struct {
	ID       string
	Quantity int
}

type Clear struct{}

// Hydrate replaces the state with persisted items. Lines without id or with a
// non-positive quantity are dropped and lines with the same id are merged.
type Hydrate struct {
	Items []LineItem
}

func Reduce(s State, action Action) State {
	if action == nil {
		return s
	}
	return action.apply(s)
}

func (a AddItem) apply(s State) State {
	items := s.copyItems()
	idx := s.indexOf(a.Item.ID)
	if idx < 0 {
		return State{items: append(items, a.Item.lineItem(1))}
	}
	items[idx].Quantity++
	return State{items: items}
}

func (a RemoveItem) apply(s State) State {
	items := make([]LineItem, 0, len(s.items))
	for _, item := range s.items {
		if item.ID != a.ID {
			items = append(items, item)
		}
	}
	return State{items: items}
}

func (a SetQuantity) apply(s State) State {
	idx := s.indexOf(a.ID)
	if idx < 0 {
		return s
	}
	if a.Quantity <= 0 {
		return RemoveItem{ID: a.ID}.apply(s)
	}
	items := s.copyItems()
	items[idx].Quantity = a.Quantity
	return State{items: items}
}

func (a Clear) apply(s State) State {
	return State{}
}

func (a Hydrate) apply(s State) State {
	items := []LineItem{}
	positions := map[string]int{}
	for _, item := range a.Items {
		if item.ID == "" || item.Quantity <= 0 {
			continue
		}
		if idx, found := positions[item.ID]; found {
			items[idx].Quantity += item.Quantity
			continue
		}
		positions[item.ID] = len(items)
		items = append(items, item)
	}
	return State{items: items}
}

func (s State) Quantity(id string) int {
	idx := s.indexOf(id)
	if idx < 0 {
		return 0
	}
	return s.items[idx].Quantity
}

func (s State) Snapshot() Snapshot {
	snapshot := Snapshot{
		Items: s.copyItems(),
	}
	for _, item := range snapshot.Items {
		snapshot.Total += item.Subtotal()
		snapshot.ItemCount += item.Quantity
	}
	return snapshot
}

func (s State) indexOf(id string) int {
	for idx, item := range s.items {
		if item.ID == id {
			return idx
		}
	}
	return -1
}

func (s State) copyItems() []LineItem {
	items := make([]LineItem, len(s.items))
	copy(items, s.items)
	return items
}
