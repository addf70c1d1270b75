package cart

import (
	"context"
	"fmt"
	"net/http"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/myhttp"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mypublisher"
	"github.com/MarcGrol/storefront/lib/mystore"
	"github.com/MarcGrol/storefront/lib/mytime"
	"github.com/MarcGrol/storefront/lib/myuuid"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

func NewService(slotStore mystore.Store[CartSlot], products ProductFinder, nower mytime.Nower, uuider myuuid.UUIDer, pub mypublisher.Publisher) *webService {
	logger := mylog.New("cart")
	return &webService{
		service: newService(slotStore, products, nower, uuider, logger, pub),
		logger:  logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/cart", s.createCartPage()).Methods("POST")
	router.HandleFunc("/api/cart/{cartUID}", s.getCartPage()).Methods("GET")
	router.HandleFunc("/api/cart/{cartUID}", s.clearCartPage()).Methods("DELETE")
	router.HandleFunc("/api/cart/{cartUID}/items", s.addItemPage()).Methods("POST")
	router.HandleFunc("/api/cart/{cartUID}/items/{productID}", s.setQuantityPage()).Methods("PUT")
	router.HandleFunc("/api/cart/{cartUID}/items/{productID}", s.removeItemPage()).Methods("DELETE")
	router.HandleFunc("/api/cart/{cartUID}/checkout", s.checkoutPage()).Methods("POST")

	return s.service.CreateTopics(c)
}

type lineItemView struct {
	LineItem
	EffectivePrice int64 `json:"effectivePrice"`
	Subtotal       int64 `json:"subtotal"`
}

type cartView struct {
	UID       string         `json:"uid"`
	Items     []lineItemView `json:"items"`
	Total     int64          `json:"total"`
	ItemCount int            `json:"itemCount"`
}

func newCartView(cartUID string, snapshot Snapshot) cartView {
	view := cartView{
		UID:       cartUID,
		Items:     make([]lineItemView, 0, len(snapshot.Items)),
		Total:     snapshot.Total,
		ItemCount: snapshot.ItemCount,
	}
	for _, item := range snapshot.Items {
		view.Items = append(view.Items, lineItemView{
			LineItem:       item,
			EffectivePrice: item.EffectivePrice(),
			Subtotal:       item.Subtotal(),
		})
	}
	return view
}

type addItemRequest struct {
	ProductID string `form:"productId"`
}

type setQuantityRequest struct {
	Quantity *int `form:"quantity"`
}

func (s *webService) createCartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		cartUID, snapshot, err := s.service.createCart(c)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		w.Header().Set("Location", fmt.Sprintf("%s/api/cart/%s", myhttp.HostnameWithScheme(r), cartUID))
		responseWriter.Write(c, w, http.StatusCreated, newCartView(cartUID, snapshot))
	}
}

func (s *webService) getCartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		snapshot, err := s.service.getCart(c, cartUID)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, newCartView(cartUID, snapshot))
	}
}

func (s *webService) addItemPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		err := r.ParseForm()
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}
		req := addItemRequest{}
		err = formcodec.NewDecoder().Decode(&req, r.Form)
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}
		if req.ProductID == "" {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("missing productId")))
			return
		}

		snapshot, err := s.service.addItem(c, cartUID, req.ProductID)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, newCartView(cartUID, snapshot))
	}
}

func (s *webService) setQuantityPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]
		productID := mux.Vars(r)["productID"]

		err := r.ParseForm()
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}
		req := setQuantityRequest{}
		err = formcodec.NewDecoder().Decode(&req, r.Form)
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}
		if req.Quantity == nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("missing quantity")))
			return
		}

		snapshot, err := s.service.setQuantity(c, cartUID, productID, *req.Quantity)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, newCartView(cartUID, snapshot))
	}
}

func (s *webService) removeItemPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]
		productID := mux.Vars(r)["productID"]

		snapshot, err := s.service.removeItem(c, cartUID, productID)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, newCartView(cartUID, snapshot))
	}
}

func (s *webService) clearCartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		snapshot, err := s.service.clearCart(c, cartUID)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, newCartView(cartUID, snapshot))
	}
}

func (s *webService) checkoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		manifest, err := s.service.checkout(c, cartUID)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusAccepted, manifest)
	}
}
