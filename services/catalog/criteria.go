package catalog

import "strings"

type PriceBand string

const (
	PriceBandAll       PriceBand = "all"
	PriceBandUnder100k PriceBand = "under-100k"
	PriceBand100k300k  PriceBand = "100k-300k"
	PriceBand300k500k  PriceBand = "300k-500k"
	PriceBandOver500k  PriceBand = "over-500k"
)

type priceRange struct {
	min int64 // inclusive
	max int64 // exclusive, 0 means unbounded
}

var priceBands = map[PriceBand]priceRange{
	PriceBandUnder100k: {min: 0, max: 100000},
	PriceBand100k300k:  {min: 100000, max: 300000},
	PriceBand300k500k:  {min: 300000, max: 500000},
	PriceBandOver500k:  {min: 500000},
}

// Contains reports whether an effective price falls within the band. PriceBandAll contains every price.
func (b PriceBand) Contains(effectivePrice int64) bool {
	r, found := priceBands[b]
	if !found {
		return true
	}
	if effectivePrice < r.min {
		return false
	}
	return r.max == 0 || effectivePrice < r.max
}

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortName      SortKey = "name"
	SortFeatured  SortKey = "featured"
)

var knownSortKeys = map[SortKey]bool{
	SortNewest:    true,
	SortPriceLow:  true,
	SortPriceHigh: true,
	SortName:      true,
	SortFeatured:  true,
}

const (
	DefaultPageSize = 12
	MaxPageSize     = 50

	RelatedProductsLimit = 4

	categoryAll = "all"
)

type FilterCriteria struct {
	SearchTerm   string
	CategoryID   string
	PriceBand    PriceBand
	SortKey      SortKey
	IsActiveOnly bool
	Page         int
	PageSize     int
}

// NewFilterCriteria returns the criteria of an unfiltered first page of active products.
func NewFilterCriteria() FilterCriteria {
	return FilterCriteria{
		PriceBand:    PriceBandAll,
		SortKey:      SortNewest,
		IsActiveOnly: true,
		Page:         1,
		PageSize:     DefaultPageSize,
	}
}

// Normalize maps every out-of-range or unknown value onto the nearest valid one; it never fails.
func (fc FilterCriteria) Normalize(maxPageSize int) FilterCriteria {
	if maxPageSize < 1 || maxPageSize > MaxPageSize {
		maxPageSize = MaxPageSize
	}

	fc.SearchTerm = strings.TrimSpace(fc.SearchTerm)

	fc.CategoryID = strings.TrimSpace(fc.CategoryID)
	if strings.EqualFold(fc.CategoryID, categoryAll) {
		fc.CategoryID = ""
	}

	if _, found := priceBands[fc.PriceBand]; !found {
		fc.PriceBand = PriceBandAll
	}

	if !knownSortKeys[fc.SortKey] {
		fc.SortKey = SortNewest
	}

	if fc.Page < 1 {
		fc.Page = 1
	}

	switch {
	case fc.PageSize == 0:
		fc.PageSize = min(DefaultPageSize, maxPageSize)
	case fc.PageSize < 1:
		fc.PageSize = 1
	case fc.PageSize > maxPageSize:
		fc.PageSize = maxPageSize
	}

	return fc
}

// matches applies the filters in order: active-only, category, search term, price band.
func (fc FilterCriteria) matches(r CatalogRecord) bool {
	if fc.IsActiveOnly && !r.IsActive {
		return false
	}
	if fc.CategoryID != "" && r.CategoryID != fc.CategoryID {
		return false
	}
	if fc.SearchTerm != "" && !matchesSearchTerm(r, fc.SearchTerm) {
		return false
	}
	return fc.PriceBand.Contains(r.EffectivePrice())
}

func matchesSearchTerm(r CatalogRecord, term string) bool {
	lowered := strings.ToLower(term)
	for _, field := range []string{r.Name, r.SKU, r.Description} {
		if strings.Contains(strings.ToLower(field), lowered) {
			return true
		}
	}
	for _, tag := range r.Tags {
		if strings.EqualFold(tag, term) {
			return true
		}
	}
	return false
}

// isPushdownOnly reports whether the repository filter alone decides the result set.
func (fc FilterCriteria) isPushdownOnly() bool {
	return fc.SearchTerm == "" && fc.PriceBand == PriceBandAll
}

func (fc FilterCriteria) repositoryFilter() RepositoryFilter {
	return RepositoryFilter{
		ActiveOnly: fc.IsActiveOnly,
		CategoryID: fc.CategoryID,
	}
}
