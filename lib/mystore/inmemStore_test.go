package mystore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Product struct {
	UID       string
	Category  string
	Price     int64
	Active    bool
	CreatedAt time.Time
}

var (
	now    = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	shirt  = Product{UID: "p1", Category: "shirts", Price: 150000, Active: true, CreatedAt: now}
	dress  = Product{UID: "p2", Category: "dresses", Price: 450000, Active: true, CreatedAt: now.Add(time.Hour)}
	hijab  = Product{UID: "p3", Category: "shirts", Price: 75000, Active: false, CreatedAt: now.Add(-time.Hour)}
	sample = []Product{shirt, dress, hijab}
)

func TestStore(t *testing.T) {
	c := context.TODO()
	ps, cleanup, err := NewInMemoryStore[Product](c)
	require.NoError(t, err)
	defer cleanup()

	t.Run("Get not found", func(t *testing.T) {
		_, found, err := ps.Get(c, shirt.UID)
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Put", func(t *testing.T) {
		for _, p := range sample {
			err = ps.Put(c, p.UID, p)
			assert.NoError(t, err)
		}
	})

	t.Run("Get found", func(t *testing.T) {
		p, found, err := ps.Get(c, shirt.UID)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, shirt, p)
	})

	t.Run("List is ordered by key", func(t *testing.T) {
		all, err := ps.List(c)
		assert.NoError(t, err)
		assert.Equal(t, []Product{shirt, dress, hijab}, all)
	})

	t.Run("Query with equality filters", func(t *testing.T) {
		got, err := ps.Query(c, []Filter{
			{Field: "Category", Compare: "=", Value: "shirts"},
			{Field: "Active", Compare: "=", Value: true},
		}, "")
		assert.NoError(t, err)
		assert.Equal(t, []Product{shirt}, got)
	})

	t.Run("Query with range filter and order", func(t *testing.T) {
		got, err := ps.Query(c, []Filter{{Field: "Price", Compare: ">=", Value: int64(100000)}}, "CreatedAt")
		assert.NoError(t, err)
		assert.Equal(t, []Product{shirt, dress}, got)
	})

	t.Run("Query on unknown field", func(t *testing.T) {
		_, err := ps.Query(c, []Filter{{Field: "Colour", Compare: "=", Value: "red"}}, "")
		assert.Error(t, err)
	})

	t.Run("Count", func(t *testing.T) {
		count, err := ps.Count(c, []Filter{{Field: "Category", Compare: "=", Value: "shirts"}})
		assert.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("Delete within transaction", func(t *testing.T) {
		err := ps.RunInTransaction(c, func(c context.Context) error {
			return ps.Delete(c, hijab.UID)
		})
		assert.NoError(t, err)

		_, found, err := ps.Get(c, hijab.UID)
		assert.NoError(t, err)
		assert.False(t, found)
	})
}
