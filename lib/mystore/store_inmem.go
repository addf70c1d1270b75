package mystore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"
)

type InMemoryStore[T any] struct {
	sync.Mutex
	Items map[string]T
}

func NewInMemoryStore[T any](c context.Context) (*InMemoryStore[T], func(), error) {
	return &InMemoryStore[T]{
		Items: make(map[string]T),
	}, func() {}, nil
}

func (s *InMemoryStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	// Start transaction
	s.Lock()
	defer s.Unlock()

	ctx := context.WithValue(c, ctxTransactionKey{}, s)

	// Within this block everything is transactional, there is no rollback
	return f(ctx)
}

// lock is a no-op when c carries a transaction of this very store.
func (s *InMemoryStore[T]) lock(c context.Context) func() {
	if owner, ok := c.Value(ctxTransactionKey{}).(*InMemoryStore[T]); ok && owner == s {
		return func() {}
	}
	s.Lock()
	return s.Unlock
}

func (s *InMemoryStore[T]) Put(c context.Context, uid string, value T) error {
	defer s.lock(c)()

	s.Items[uid] = value

	return nil
}

func (s *InMemoryStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	defer s.lock(c)()

	result, exists := s.Items[uid]

	return result, exists, nil
}

func (s *InMemoryStore[T]) Delete(c context.Context, uid string) error {
	defer s.lock(c)()

	delete(s.Items, uid)

	return nil
}

func (s *InMemoryStore[T]) List(c context.Context) ([]T, error) {
	defer s.lock(c)()

	return s.sortedValues(), nil
}

func (s *InMemoryStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	defer s.lock(c)()

	result := []T{}
	for _, v := range s.sortedValues() {
		ok, err := matchesAll(v, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, v)
		}
	}

	if orderByField != "" {
		sort.SliceStable(result, func(i, j int) bool {
			return less(fieldOf(result[i], orderByField), fieldOf(result[j], orderByField))
		})
	}

	return result, nil
}

func (s *InMemoryStore[T]) Count(c context.Context, filters []Filter) (int, error) {
	defer s.lock(c)()

	count := 0
	for _, v := range s.Items {
		ok, err := matchesAll(v, filters)
		if err != nil {
			return 0, err
		}
		if ok {
			count++
		}
	}
	return count, nil
}

// sortedValues returns the items ordered by key, so in-memory listings are stable.
func (s *InMemoryStore[T]) sortedValues() []T {
	keys := make([]string, 0, len(s.Items))
	for k := range s.Items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]T, 0, len(keys))
	for _, k := range keys {
		result = append(result, s.Items[k])
	}
	return result
}

func matchesAll(value any, filters []Filter) (bool, error) {
	for _, f := range filters {
		field := fieldOf(value, f.Field)
		if !field.IsValid() {
			return false, fmt.Errorf("entity %T has no field %s", value, f.Field)
		}
		want := reflect.ValueOf(f.Value)

		switch f.Compare {
		case "=":
			if !reflect.DeepEqual(field.Interface(), f.Value) {
				return false, nil
			}
		case "<":
			if !less(field, want) {
				return false, nil
			}
		case "<=":
			if less(want, field) {
				return false, nil
			}
		case ">":
			if !less(want, field) {
				return false, nil
			}
		case ">=":
			if less(field, want) {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported compare operator %q", f.Compare)
		}
	}
	return true, nil
}

func fieldOf(value any, name string) reflect.Value {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}
	}
	return v.FieldByName(name)
}

func less(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return false
	}
	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() < b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return a.Uint() < b.Uint()
	case reflect.Float32, reflect.Float64:
		return a.Float() < b.Float()
	case reflect.String:
		return a.String() < b.String()
	case reflect.Bool:
		return !a.Bool() && b.Bool()
	}
	if t, ok := a.Interface().(time.Time); ok {
		if u, ok := b.Interface().(time.Time); ok {
			return t.Before(u)
		}
	}
	return false
}
