package catalog

import (
	"context"

	"github.com/MarcGrol/storefront/lib/mystore"
)

// RepositoryFilter is the part of the criteria a repository evaluates itself.
type RepositoryFilter struct {
	ActiveOnly bool
	CategoryID string
	Slug       string
}

//go:generate mockgen -source=repository.go -package catalog -destination repository_mock.go ProductRepository
type ProductRepository interface {
	Fetch(c context.Context, filter RepositoryFilter) ([]CatalogRecord, error)
	Count(c context.Context, filter RepositoryFilter) (int, error)
	Get(c context.Context, productID string) (CatalogRecord, bool, error)
}

// StoreRepository reads catalog records from a mystore.Store. Only the active and category filters are pushed down.
type StoreRepository struct {
	store mystore.Store[CatalogRecord]
}

func NewStoreRepository(store mystore.Store[CatalogRecord]) *StoreRepository {
	return &StoreRepository{
		store: store,
	}
}

func (r *StoreRepository) Fetch(c context.Context, filter RepositoryFilter) ([]CatalogRecord, error) {
	return r.store.Query(c, filter.storeFilters(), "")
}

func (r *StoreRepository) Count(c context.Context, filter RepositoryFilter) (int, error) {
	return r.store.Count(c, filter.storeFilters())
}

func (r *StoreRepository) Get(c context.Context, productID string) (CatalogRecord, bool, error) {
	return r.store.Get(c, productID)
}

func (r *StoreRepository) Put(c context.Context, uid string, rec CatalogRecord) error {
	return r.store.Put(c, uid, rec)
}

func (f RepositoryFilter) storeFilters() []mystore.Filter {
	filters := []mystore.Filter{}
	if f.ActiveOnly {
		filters = append(filters, mystore.Filter{Field: "IsActive", Compare: "=", Value: true})
	}
	if f.CategoryID != "" {
		filters = append(filters, mystore.Filter{Field: "CategoryID", Compare: "=", Value: f.CategoryID})
	}
	if f.Slug != "" {
		filters = append(filters, mystore.Filter{Field: "Slug", Compare: "=", Value: f.Slug})
	}
	return filters
}
