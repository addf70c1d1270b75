package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/mylog"
)

// Engine filters, sorts and paginates the products of a repository. It holds no state between calls.
type Engine struct {
	repo        ProductRepository
	logger      mylog.Logger
	maxPageSize int
}

func NewEngine(repo ProductRepository, logger mylog.Logger, maxPageSize int) *Engine {
	return &Engine{
		repo:        repo,
		logger:      logger,
		maxPageSize: maxPageSize,
	}
}

func (e *Engine) Query(c context.Context, criteria FilterCriteria) (QueryResult, error) {
	criteria = criteria.Normalize(e.maxPageSize)
	filter := criteria.repositoryFilter()

	var (
		records []CatalogRecord
		count   int
	)
	g, gc := errgroup.WithContext(c)
	g.Go(func() error {
		var err error
		records, err = e.repo.Fetch(gc, filter)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = e.repo.Count(gc, filter)
		return err
	})
	err := g.Wait()
	if err != nil {
		return QueryResult{}, myerrors.NewUnavailableError(fmt.Errorf("%w: %w", ErrCatalogUnavailable, err))
	}

	matching := make([]CatalogRecord, 0, len(records))
	for _, r := range records {
		if criteria.matches(r) {
			matching = append(matching, r)
		}
	}

	// count only cross-checks the fetched snapshot; totals always come from the filtered records.
	if criteria.isPushdownOnly() && count != len(matching) {
		e.logger.Log(c, "", mylog.SeverityWarn, "Catalog changed during query: counted %d, fetched %d", count, len(matching))
	}

	sortRecords(matching, criteria.SortKey)
	result := paginate(matching, criteria.Page, criteria.PageSize)

	e.logger.Log(c, "", mylog.SeverityDebug, "Query %s: page %d of %d, %d matches", searchSummary(criteria), result.PageInfo.Page, result.PageInfo.TotalPages, result.PageInfo.TotalItems)

	return result, nil
}

func (e *Engine) Get(c context.Context, productID string) (CatalogRecord, error) {
	record, found, err := e.repo.Get(c, productID)
	if err != nil {
		return CatalogRecord{}, myerrors.NewUnavailableError(fmt.Errorf("%w: %w", ErrCatalogUnavailable, err))
	}
	if !found || !record.IsActive {
		return CatalogRecord{}, myerrors.NewNotFoundError(fmt.Errorf("%w: %s", ErrProductNotFound, productID))
	}
	return record, nil
}

// GetBySlug returns the active product with the given slug. Slugs are expected
// to be unique; should several records share one, the lowest id wins.
func (e *Engine) GetBySlug(c context.Context, slug string) (CatalogRecord, error) {
	if slug == "" {
		return CatalogRecord{}, myerrors.NewNotFoundError(fmt.Errorf("%w: empty slug", ErrProductNotFound))
	}

	records, err := e.repo.Fetch(c, RepositoryFilter{ActiveOnly: true, Slug: slug})
	if err != nil {
		return CatalogRecord{}, myerrors.NewUnavailableError(fmt.Errorf("%w: %w", ErrCatalogUnavailable, err))
	}

	var (
		found  bool
		result CatalogRecord
	)
	for _, r := range records {
		if r.Slug != slug || !r.IsActive {
			continue
		}
		if !found || r.ID < result.ID {
			result, found = r, true
		}
	}
	if !found {
		return CatalogRecord{}, myerrors.NewNotFoundError(fmt.Errorf("%w: slug %s", ErrProductNotFound, slug))
	}
	return result, nil
}

// Related returns at most limit other active products of the same category, newest first.
func (e *Engine) Related(c context.Context, product CatalogRecord, limit int) ([]CatalogRecord, error) {
	if product.CategoryID == "" || limit < 1 {
		return []CatalogRecord{}, nil
	}

	records, err := e.repo.Fetch(c, RepositoryFilter{ActiveOnly: true, CategoryID: product.CategoryID})
	if err != nil {
		return nil, myerrors.NewUnavailableError(fmt.Errorf("%w: %w", ErrCatalogUnavailable, err))
	}

	related := make([]CatalogRecord, 0, len(records))
	for _, r := range records {
		if r.ID != product.ID && r.IsActive && r.CategoryID == product.CategoryID {
			related = append(related, r)
		}
	}
	sortRecords(related, SortNewest)

	return related[:min(limit, len(related))], nil
}

func sortRecords(records []CatalogRecord, key SortKey) {
	compare := comparatorFor(key)
	sort.Slice(records, func(i, j int) bool {
		if diff := compare(records[i], records[j]); diff != 0 {
			return diff < 0
		}
		return records[i].ID < records[j].ID
	})
}

func comparatorFor(key SortKey) func(a, b CatalogRecord) int {
	switch key {
	case SortPriceLow:
		return func(a, b CatalogRecord) int {
			return compareInt64(a.EffectivePrice(), b.EffectivePrice())
		}
	case SortPriceHigh:
		return func(a, b CatalogRecord) int {
			return compareInt64(b.EffectivePrice(), a.EffectivePrice())
		}
	case SortName:
		// A collator is not safe for concurrent use, so every query gets its own.
		collator := collate.New(language.Indonesian, collate.Loose)
		return func(a, b CatalogRecord) int {
			return collator.CompareString(a.Name, b.Name)
		}
	case SortFeatured:
		return func(a, b CatalogRecord) int {
			if a.IsFeatured != b.IsFeatured {
				if a.IsFeatured {
					return -1
				}
				return 1
			}
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	default:
		return func(a, b CatalogRecord) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// paginate slices one page out of the sorted matches. Zero matches yield zero pages.
func paginate(records []CatalogRecord, page int, pageSize int) QueryResult {
	total := len(records)
	totalPages := (total + pageSize - 1) / pageSize

	// Past the last page the offset is not computed, (page-1)*pageSize could overflow.
	start := total
	if page <= totalPages {
		start = (page - 1) * pageSize
	}
	end := min(start+pageSize, total)

	items := make([]CatalogRecord, end-start)
	copy(items, records[start:end])

	return QueryResult{
		Items: items,
		PageInfo: PageInfo{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}
}

// searchSummary is used in log lines only.
func searchSummary(criteria FilterCriteria) string {
	parts := []string{string(criteria.SortKey), string(criteria.PriceBand)}
	if criteria.CategoryID != "" {
		parts = append(parts, "category="+criteria.CategoryID)
	}
	if criteria.SearchTerm != "" {
		parts = append(parts, "search="+criteria.SearchTerm)
	}
	return strings.Join(parts, ",")
}
