package catalog

import (
	"context"
	"net/http"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/myhttp"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/services/pricing"
)

type webService struct {
	engine *Engine
	logger mylog.Logger
}

func NewService(engine *Engine) *webService {
	return &webService{
		engine: engine,
		logger: mylog.New("catalog"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/products", s.productsPage()).Methods("GET")
	router.HandleFunc("/api/products/slug/{slug}", s.productBySlugPage()).Methods("GET")
	router.HandleFunc("/api/products/{productID}", s.productPage()).Methods("GET")
	router.HandleFunc("/api/products/{productID}/related", s.relatedProductsPage()).Methods("GET")
}

type productsRequest struct {
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	Search     string `form:"search"`
	CategoryID string `form:"categoryId"`
	IsActive   *bool  `form:"isActive"`
	SortBy     string `form:"sortBy"`
	PriceRange string `form:"priceRange"`
}

func (r productsRequest) criteria() FilterCriteria {
	criteria := NewFilterCriteria()
	criteria.Page = r.Page
	criteria.PageSize = r.Limit
	criteria.SearchTerm = r.Search
	criteria.CategoryID = r.CategoryID
	if r.IsActive != nil {
		criteria.IsActiveOnly = *r.IsActive
	}
	if r.SortBy != "" {
		criteria.SortKey = SortKey(r.SortBy)
	}
	if r.PriceRange != "" {
		criteria.PriceBand = PriceBand(r.PriceRange)
	}
	return criteria
}

type productView struct {
	CatalogRecord
	Pricing pricing.Price `json:"pricing"`
}

func newProductView(r CatalogRecord) productView {
	return productView{
		CatalogRecord: r,
		Pricing:       r.Price(),
	}
}

type productsResponse struct {
	Products   []productView `json:"products"`
	Pagination PageInfo      `json:"pagination"`
}

// productDetailResponse backs the product page: the product plus related products of its category.
type productDetailResponse struct {
	Product         productView   `json:"product"`
	RelatedProducts []productView `json:"relatedProducts"`
}

func newProductViews(records []CatalogRecord) []productView {
	views := make([]productView, 0, len(records))
	for _, record := range records {
		views = append(views, newProductView(record))
	}
	return views
}

func (s *webService) productsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		req := productsRequest{}
		err := formcodec.NewDecoder().Decode(&req, r.URL.Query())
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		result, err := s.engine.Query(c, req.criteria())
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, productsResponse{
			Products:   newProductViews(result.Items),
			Pagination: result.PageInfo,
		})
	}
}

func (s *webService) productPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		productID := mux.Vars(r)["productID"]

		record, err := s.engine.Get(c, productID)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, newProductView(record))
	}
}

func (s *webService) productBySlugPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		slug := mux.Vars(r)["slug"]

		record, err := s.engine.GetBySlug(c, slug)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		related, err := s.engine.Related(c, record, RelatedProductsLimit)
		if err != nil {
			s.logger.Log(c, record.ID, mylog.SeverityWarn, "Product %s shown without related products: %s", record.ID, err)
			related = []CatalogRecord{}
		}

		responseWriter.Write(c, w, http.StatusOK, productDetailResponse{
			Product:         newProductView(record),
			RelatedProducts: newProductViews(related),
		})
	}
}

func (s *webService) relatedProductsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		productID := mux.Vars(r)["productID"]

		record, err := s.engine.Get(c, productID)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		related, err := s.engine.Related(c, record, RelatedProductsLimit)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, newProductViews(related))
	}
}
