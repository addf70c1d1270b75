package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mypublisher"
	"github.com/MarcGrol/storefront/lib/mystore"
	"github.com/MarcGrol/storefront/lib/mytime"
	"github.com/MarcGrol/storefront/lib/myuuid"
	"github.com/MarcGrol/storefront/services/cart/cartevents"
	"github.com/MarcGrol/storefront/services/catalog"
)

const cartUID = "cart-1"

var (
	gamisProduct = catalog.CatalogRecord{ID: "p1", Name: "Gamis Syari", SKU: "GMS-001", ListPrice: 100000, Stock: 3, CategoryID: "gamis", CategoryName: "Gamis", Images: []string{"/img/gamis.jpg"}, IsActive: true, CreatedAt: mytime.ExampleTime}
	hijabProduct = catalog.CatalogRecord{ID: "p2", Name: "Hijab Voal", SKU: "HJB-002", ListPrice: 50000, SalePrice: 30000, Stock: 10, CategoryID: "hijab", IsActive: true, CreatedAt: mytime.ExampleTime}
	soldOut      = catalog.CatalogRecord{ID: "p3", Name: "Mukena", SKU: "MKN-003", ListPrice: 225000, Stock: 0, CategoryID: "mukena", IsActive: true, CreatedAt: mytime.ExampleTime}
	inactive     = catalog.CatalogRecord{ID: "p4", Name: "Old stock", SKU: "OLD-004", ListPrice: 10000, Stock: 5, IsActive: false, CreatedAt: mytime.ExampleTime}
)

func TestCartService(t *testing.T) {

	t.Run("Create cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		// setup
		ctx, router, slotStore, _, uuider, publisher := setup(t, ctrl)

		// given
		uuider.EXPECT().Create().Return(cartUID)
		publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, cartevents.CartCreated{CartUID: cartUID})

		// when
		response := doRequest(t, router, http.MethodPost, "/api/cart", nil)

		// then
		assert.Equal(t, http.StatusCreated, response.Code)
		assert.Equal(t, "http://localhost:8888/api/cart/"+cartUID, response.Header().Get("Location"))
		got := decodeCart(t, response)
		assert.Equal(t, cartUID, got.UID)
		assert.Empty(t, got.Items)
		_, exists, _ := slotStore.Get(ctx, cartUID)
		assert.True(t, exists)
	})

	t.Run("Get unknown cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		_, router, _, _, _, _ := setup(t, ctrl)

		response := doRequest(t, router, http.MethodGet, "/api/cart/unknown", nil)

		assert.Equal(t, http.StatusNotFound, response.Code)
	})

	t.Run("Get cart with corrupted content", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, _ := setup(t, ctrl)
		slotStore.Put(ctx, cartUID, CartSlot{UID: cartUID, Items: []byte(`[{"id":`)})

		response := doRequest(t, router, http.MethodGet, "/api/cart/"+cartUID, nil)

		assert.Equal(t, http.StatusOK, response.Code)
		got := decodeCart(t, response)
		assert.Empty(t, got.Items)
		assert.Equal(t, int64(0), got.Total)
	})

	t.Run("Add item twice", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, _ := setup(t, ctrl)
		givenCart(ctx, slotStore)

		doRequest(t, router, http.MethodPost, "/api/cart/"+cartUID+"/items", url.Values{"productId": {"p2"}})
		response := doRequest(t, router, http.MethodPost, "/api/cart/"+cartUID+"/items", url.Values{"productId": {"p2"}})

		assert.Equal(t, http.StatusOK, response.Code)
		got := decodeCart(t, response)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 2, got.Items[0].Quantity)
		assert.Equal(t, int64(30000), got.Items[0].EffectivePrice)
		assert.Equal(t, int64(60000), got.Items[0].Subtotal)
		assert.Equal(t, int64(60000), got.Total)
		assert.Equal(t, 2, got.ItemCount)

		// persisted
		response = doRequest(t, router, http.MethodGet, "/api/cart/"+cartUID, nil)
		assert.Equal(t, int64(60000), decodeCart(t, response).Total)
	})

	t.Run("Add item copies catalog details", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, _ := setup(t, ctrl)
		givenCart(ctx, slotStore)

		response := doRequest(t, router, http.MethodPost, "/api/cart/"+cartUID+"/items", url.Values{"productId": {"p1"}})

		assert.Equal(t, http.StatusOK, response.Code)
		got := decodeCart(t, response)
		require.Len(t, got.Items, 1)
		assert.Equal(t, LineItem{ID: "p1", Name: "Gamis Syari", ListPrice: 100000, Quantity: 1, SKU: "GMS-001", CategoryLabel: "Gamis", ImageRef: "/img/gamis.jpg"}, got.Items[0].LineItem)
	})

	t.Run("Add item beyond stock", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, _ := setup(t, ctrl)
		givenCart(ctx, slotStore)

		var response *httptest.ResponseRecorder
		for i := 0; i < 5; i++ {
			response = doRequest(t, router, http.MethodPost, "/api/cart/"+cartUID+"/items", url.Values{"productId": {"p1"}})
		}

		assert.Equal(t, http.StatusOK, response.Code)
		got := decodeCart(t, response)
		require.Len(t, got.Items, 1)
		assert.Equal(t, gamisProduct.Stock, got.Items[0].Quantity)
	})

	t.Run("Add sold out item", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, _ := setup(t, ctrl)
		givenCart(ctx, slotStore)

		response := doRequest(t, router, http.MethodPost, "/api/cart/"+cartUID+"/items", url.Values{"productId": {"p3"}})

		assert.Equal(t, http.StatusOK, response.Code)
		assert.Empty(t, decodeCart(t, response).Items)
	})

	t.Run("Add unknown or inactive product", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, _ := setup(t, ctrl)
		givenCart(ctx, slotStore)

		for _, productID := range []string{"p9", "p4"} {
			response := doRequest(t, router, http.MethodPost, "/api/cart/"+cartUID+"/items", url.Values{"productId": {productID}})
			assert.Equal(t, http.StatusNotFound, response.Code, productID)
		}
	})

	t.Run("Add without product", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, _ := setup(t, ctrl)
		givenCart(ctx, slotStore)

		response := doRequest(t, router, http.MethodPost, "/api/cart/"+cartUID+"/items", url.Values{})

		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("Add to unknown cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		_, router, _, _, _, _ := setup(t, ctrl)

		response := doRequest(t, router, http.MethodPost, "/api/cart/unknown/items", url.Values{"productId": {"p1"}})

		assert.Equal(t, http.StatusNotFound, response.Code)
	})

	t.Run("Set quantity clamps to stock", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, _ := setup(t, ctrl)
		givenCart(ctx, slotStore, gamisProduct)

		response := doRequest(t, router, http.MethodPut, "/api/cart/"+cartUID+"/items/p1", url.Values{"quantity": {"10"}})

		assert.Equal(t, http.StatusOK, response.Code)
		got := decodeCart(t, response)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 3, got.Items[0].Quantity)
		assert.Equal(t, int64(300000), got.Total)
	})

	t.Run("Set quantity within stock", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, _ := setup(t, ctrl)
		givenCart(ctx, slotStore, gamisProduct, hijabProduct)

		response := doRequest(t, router, http.MethodPut, "/api/cart/"+cartUID+"/items/p2", url.Values{"quantity": {"4"}})

		assert.Equal(t, http.StatusOK, response.Code)
		got := decodeCart(t, response)
		assert.Equal(t, int64(100000+4*30000), got.Total)
		assert.Equal(t, 5, got.ItemCount)
	})

	t.Run("Set quantity on sold out product removes it", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, _ := setup(t, ctrl)
		givenCart(ctx, slotStore, soldOut, hijabProduct)

		response := doRequest(t, router, http.MethodPut, "/api/cart/"+cartUID+"/items/p3", url.Values{"quantity": {"2"}})

		assert.Equal(t, http.StatusOK, response.Code)
		assert.Equal(t, []string{"p2"}, viewIDs(decodeCart(t, response)))
	})

	t.Run("Set quantity of product not in cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, _ := setup(t, ctrl)
		givenCart(ctx, slotStore, gamisProduct)

		for _, productID := range []string{"p2", "p9", "p4"} {
			response := doRequest(t, router, http.MethodPut, "/api/cart/"+cartUID+"/items/"+productID, url.Values{"quantity": {"2"}})

			assert.Equal(t, http.StatusOK, response.Code, productID)
			got := decodeCart(t, response)
			assert.Equal(t, []string{"p1"}, viewIDs(got), productID)
			assert.Equal(t, int64(100000), got.Total, productID)
		}
	})

	t.Run("Set quantity of line whose product was deactivated", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, _ := setup(t, ctrl)
		givenCart(ctx, slotStore, inactive, inactive, inactive)

		response := doRequest(t, router, http.MethodPut, "/api/cart/"+cartUID+"/items/p4", url.Values{"quantity": {"2"}})
		assert.Equal(t, http.StatusOK, response.Code)
		got := decodeCart(t, response)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 2, got.Items[0].Quantity)

		response = doRequest(t, router, http.MethodPut, "/api/cart/"+cartUID+"/items/p4", url.Values{"quantity": {"5"}})
		assert.Equal(t, http.StatusOK, response.Code)
		got = decodeCart(t, response)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 2, got.Items[0].Quantity)
	})

	t.Run("Set quantity zero removes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, _ := setup(t, ctrl)
		givenCart(ctx, slotStore, gamisProduct, hijabProduct)

		response := doRequest(t, router, http.MethodPut, "/api/cart/"+cartUID+"/items/p1", url.Values{"quantity": {"0"}})

		assert.Equal(t, http.StatusOK, response.Code)
		assert.Equal(t, []string{"p2"}, viewIDs(decodeCart(t, response)))
	})

	t.Run("Set quantity invalid", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, _ := setup(t, ctrl)
		givenCart(ctx, slotStore, gamisProduct)

		for _, form := range []url.Values{{}, {"quantity": {"many"}}} {
			response := doRequest(t, router, http.MethodPut, "/api/cart/"+cartUID+"/items/p1", form)
			assert.Equal(t, http.StatusBadRequest, response.Code)
		}
	})

	t.Run("Remove item", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, _ := setup(t, ctrl)
		givenCart(ctx, slotStore, gamisProduct, hijabProduct)

		response := doRequest(t, router, http.MethodDelete, "/api/cart/"+cartUID+"/items/p2", nil)

		assert.Equal(t, http.StatusOK, response.Code)
		got := decodeCart(t, response)
		assert.Equal(t, []string{"p1"}, viewIDs(got))
		assert.Equal(t, int64(100000), got.Total)
	})

	t.Run("Clear cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, publisher := setup(t, ctrl)
		givenCart(ctx, slotStore, gamisProduct, hijabProduct)
		publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, cartevents.CartCleared{CartUID: cartUID})

		response := doRequest(t, router, http.MethodDelete, "/api/cart/"+cartUID, nil)

		assert.Equal(t, http.StatusOK, response.Code)
		got := decodeCart(t, response)
		assert.Empty(t, got.Items)
		assert.Equal(t, 0, got.ItemCount)

		response = doRequest(t, router, http.MethodGet, "/api/cart/"+cartUID, nil)
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Empty(t, decodeCart(t, response).Items)
	})

	t.Run("Checkout", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, publisher := setup(t, ctrl)
		givenCart(ctx, slotStore, gamisProduct, hijabProduct, hijabProduct)

		expected := cartevents.Manifest{
			Lines: []cartevents.ManifestLine{
				{Name: "Gamis Syari", SKU: "GMS-001", EffectivePrice: 100000, Quantity: 1, Subtotal: 100000},
				{Name: "Hijab Voal", SKU: "HJB-002", EffectivePrice: 30000, Quantity: 2, Subtotal: 60000},
			},
			ItemCount:  3,
			GrandTotal: 160000,
		}
		publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, cartevents.CheckoutRequested{
			CartUID:     cartUID,
			RequestedAt: mytime.ExampleTime,
			Manifest:    expected,
		})

		response := doRequest(t, router, http.MethodPost, "/api/cart/"+cartUID+"/checkout", nil)

		assert.Equal(t, http.StatusAccepted, response.Code)
		got := cartevents.Manifest{}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &got))
		assert.Equal(t, expected, got)
	})

	t.Run("Checkout of empty cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, _ := setup(t, ctrl)
		givenCart(ctx, slotStore)

		response := doRequest(t, router, http.MethodPost, "/api/cart/"+cartUID+"/checkout", nil)

		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("Checkout with failing publisher", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx, router, slotStore, _, _, publisher := setup(t, ctrl)
		givenCart(ctx, slotStore, gamisProduct)
		publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, gomock.Any()).Return(fmt.Errorf("outbox down"))

		response := doRequest(t, router, http.MethodPost, "/api/cart/"+cartUID+"/checkout", nil)

		assert.Equal(t, http.StatusInternalServerError, response.Code)
	})
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *mux.Router, mystore.Store[CartSlot], *mytime.MockNower, *myuuid.MockUUIDer, *mypublisher.MockPublisher) {
	c := context.TODO()

	productStore, _, err := mystore.NewInMemoryStore[catalog.CatalogRecord](c)
	require.NoError(t, err)
	for _, p := range []catalog.CatalogRecord{gamisProduct, hijabProduct, soldOut, inactive} {
		require.NoError(t, productStore.Put(c, p.ID, p))
	}
	engine := catalog.NewEngine(catalog.NewStoreRepository(productStore), mylog.New("catalog"), catalog.MaxPageSize)

	slotStore, _, err := mystore.NewInMemoryStore[CartSlot](c)
	require.NoError(t, err)

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
	uuider := myuuid.NewMockUUIDer(ctrl)
	publisher := mypublisher.NewMockPublisher(ctrl)
	publisher.EXPECT().CreateTopic(gomock.Any(), cartevents.TopicName).Return(nil)

	router := mux.NewRouter()
	sut := NewService(slotStore, engine, nower, uuider, publisher)
	require.NoError(t, sut.RegisterEndpoints(c, router))

	return c, router, slotStore, nower, uuider, publisher
}

// givenCart stores a cart holding one unit per listed product; repeated products add up.
func givenCart(c context.Context, slotStore mystore.Store[CartSlot], products ...catalog.CatalogRecord) {
	state := State{}
	for _, p := range products {
		state = Reduce(state, AddItem{Item: itemSpecOf(p)})
	}
	blob, _ := encodeItems(state.Snapshot().Items)
	slotStore.Put(c, cartUID, CartSlot{UID: cartUID, Items: blob, CreatedAt: mytime.ExampleTime, LastModified: mytime.ExampleTime})
}

func doRequest(t *testing.T, router *mux.Router, method string, path string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	request, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	request.Host = "localhost:8888"
	if form != nil {
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func decodeCart(t *testing.T, response *httptest.ResponseRecorder) cartView {
	view := cartView{}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &view))
	return view
}

func viewIDs(view cartView) []string {
	ids := []string{}
	for _, item := range view.Items {
		ids = append(ids, item.ID)
	}
	return ids
}
