package catalog

import "errors"

var (
	// ErrCatalogUnavailable marks a failing backing repository, as opposed to a query without matches.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrProductNotFound    = errors.New("product not found")
)
