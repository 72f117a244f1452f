package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"storefront-service/internal/auth"
	"storefront-service/internal/entity"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderService struct {
	order *entity.Order
	list  *entity.OrderList
	err   error

	gotUser   string
	gotKey    string
	gotReq    *entity.CreateOrderRequest
	gotStatus string
	gotPage   int
	gotLimit  int
}

func (f *fakeOrderService) CreateOrder(ctx context.Context, userID string, req *entity.CreateOrderRequest, key string) (*entity.Order, error) {
	f.gotUser, f.gotReq, f.gotKey = userID, req, key
	return f.order, f.err
}

func (f *fakeOrderService) GetOrder(ctx context.Context, userID, id string) (*entity.Order, error) {
	f.gotUser = userID
	if f.err != nil {
		return nil, f.err
	}
	if f.order == nil || f.order.ID != id {
		return nil, entity.ErrOrderNotFound
	}
	return f.order, nil
}

func (f *fakeOrderService) ListOrders(ctx context.Context, userID, status string, page, limit int) (*entity.OrderList, error) {
	f.gotUser, f.gotStatus, f.gotPage, f.gotLimit = userID, status, page, limit
	if f.list == nil {
		return &entity.OrderList{Page: page, Limit: limit}, f.err
	}
	return f.list, f.err
}

type fakeProductService struct {
	products []*entity.Product
	total    int
}

func (f *fakeProductService) FindProduct(ctx context.Context, id string) (*entity.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, entity.ErrProductNotFound
}

func (f *fakeProductService) ListProducts(ctx context.Context, page, limit int) ([]*entity.Product, int, error) {
	total := f.total
	if total == 0 {
		total = len(f.products)
	}
	return f.products, total, nil
}

type fakeCategoryService struct {
	categories []*entity.Category
	err        error
}

func (f *fakeCategoryService) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	return f.categories, f.err
}

type fakeUserService struct {
	user       *entity.User
	err        error
	loggedOut  string
	gotProfile *entity.UpdateProfileRequest
}

func (f *fakeUserService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, string, error) {
	return f.user, "signed-token", f.err
}

func (f *fakeUserService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.User, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.user, "signed-token", nil
}

func (f *fakeUserService) Logout(ctx context.Context, token string) error {
	f.loggedOut = token
	return nil
}

func (f *fakeUserService) GetProfile(ctx context.Context, id string) (*entity.User, error) {
	return f.user, f.err
}

func (f *fakeUserService) UpdateProfile(ctx context.Context, id string, req *entity.UpdateProfileRequest) (*entity.User, error) {
	f.gotProfile = req
	return f.user, f.err
}

var createdAt = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func sampleOrder() *entity.Order {
	return &entity.Order{
		ID:          "o-1",
		UserID:      "u1",
		OrderNumber: "ORD-20261018-0001",
		Items: []entity.OrderItem{
			{ProductID: "P1", ProductName: "Lamp", ProductThumbnail: "lamp.jpg", Price: decimal.RequireFromString("999.99"), Quantity: 1},
		},
		Subtotal:      decimal.RequireFromString("999.99"),
		Shipping:      decimal.NewFromInt(60),
		Discount:      decimal.Zero,
		Total:         decimal.RequireFromString("1059.99"),
		Status:        entity.OrderStatusPending,
		PaymentMethod: entity.PaymentCOD,
		ShippingInfo:  entity.ShippingInfo{RecipientName: "Somchai", RecipientPhone: "0812345678", City: "Bangkok", District: "Pathum Wan", Address: "99 Rama I", PostalCode: "10330"},
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

type testServer struct {
	echo       *echo.Echo
	orders     *fakeOrderService
	products   *fakeProductService
	categories *fakeCategoryService
	users      *fakeUserService
}

func newTestServer() *testServer {
	s := &testServer{
		echo:       echo.New(),
		orders:     &fakeOrderService{},
		products:   &fakeProductService{},
		categories: &fakeCategoryService{},
		users:      &fakeUserService{user: &entity.User{ID: "u1", Email: "buyer@example.com", Name: "Buyer", Phone: "0812345678", CreatedAt: createdAt, UpdatedAt: createdAt}},
	}
	s.echo.HTTPErrorHandler = ErrorHandler

	signedIn := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth.SetSession(c, "u1", "bearer-token")
			return next(c)
		}
	}
	RegisterRoutes(s.echo, NewOrderHandler(s.orders), NewProductHandler(s.products, s.categories), NewUserHandler(s.users), signedIn)
	return s
}

func (s *testServer) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

const orderBody = `{
	"items": [{"id": "P1", "quantity": 1}],
	"shippingInfo": {"recipientName": "Somchai", "recipientPhone": "0812345678", "city": "Bangkok", "district": "Pathum Wan", "address": "99 Rama I", "postalCode": "10330"},
	"paymentMethod": "cod"
}`

func TestCreateOrderHandler(t *testing.T) {
	s := newTestServer()
	s.orders.order = sampleOrder()

	rec := s.do(http.MethodPost, "/api/orders", orderBody, "Idempotency-Key", "abc-123")
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, "u1", s.orders.gotUser)
	assert.Equal(t, "abc-123", s.orders.gotKey)
	require.Len(t, s.orders.gotReq.Items, 1)
	assert.Equal(t, "P1", s.orders.gotReq.Items[0].ProductID)
	assert.Equal(t, entity.PaymentCOD, s.orders.gotReq.PaymentMethod)
	assert.Equal(t, "Bangkok", s.orders.gotReq.ShippingInfo.City)

	body := rec.Body.String()
	assert.Contains(t, body, `"subtotal":999.99`)
	assert.Contains(t, body, `"shipping":60`)
	assert.Contains(t, body, `"total":1059.99`)
	assert.Contains(t, body, `"trackingNumber":null`)
	assert.Contains(t, body, `"createdAt":"2026-10-18T09:30:00Z"`)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ORD-20261018-0001", resp["orderNumber"])
	assert.Equal(t, "u1", resp["userId"])
	assert.Equal(t, "pending", resp["status"])
	items := resp["items"].([]interface{})
	assert.Equal(t, map[string]interface{}{
		"id": "P1", "name": "Lamp", "price": 999.99, "quantity": float64(1), "thumbnail": "lamp.jpg",
	}, items[0])
}

func TestCreateOrderHandlerErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		code    int
		message string
	}{
		{"malformed body", `{"items": [`, nil, http.StatusBadRequest, "invalid request payload"},
		{"validation", orderBody, &entity.ValidationError{Fields: map[string]string{"items": "items is required"}}, http.StatusUnprocessableEntity, "validation failed"},
		{"out of stock", orderBody, entity.NewInsufficientStockError("P1", "Lamp"), http.StatusBadRequest, "product Lamp is out of stock"},
		{"unknown product", orderBody, entity.NewProductNotFoundError("P9"), http.StatusBadRequest, "product P9 does not exist"},
		{"duplicate submission", orderBody, entity.ErrDuplicateRequest, http.StatusConflict, entity.ErrDuplicateRequest.Error()},
		{"persistence", orderBody, entity.ErrPersistence, http.StatusInternalServerError, "order could not be created, please try again later"},
		{"unexpected", orderBody, errors.New("dial tcp 10.0.0.5:3306: refused"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			s.orders.err = tt.err

			rec := s.do(http.MethodPost, "/api/orders", tt.body)
			require.Equal(t, tt.code, rec.Code)

			resp := decodeEnvelope(t, rec)
			assert.Equal(t, tt.code, resp.StatusCode)
			assert.Equal(t, tt.message, resp.StatusMessage)
			assert.NotContains(t, rec.Body.String(), "10.0.0.5")
		})
	}
}

func TestValidationEnvelopeCarriesFields(t *testing.T) {
	s := newTestServer()
	s.orders.err = &entity.ValidationError{Fields: map[string]string{"shippingInfo.city": "city is required"}}

	rec := s.do(http.MethodPost, "/api/orders", orderBody)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, map[string]interface{}{"shippingInfo.city": "city is required"}, resp.Data)
}

func TestListOrdersHandler(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodGet, "/api/orders?page=-2&limit=500&status=shipped", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, s.orders.gotPage)
	assert.Equal(t, 100, s.orders.gotLimit)
	assert.Equal(t, "shipped", s.orders.gotStatus)
	assert.JSONEq(t, `{"orders":[],"total":0,"page":1,"limit":100}`, rec.Body.String())

	s.orders.list = &entity.OrderList{Orders: []*entity.Order{sampleOrder()}, Total: 11, Page: 2, Limit: 10}
	rec = s.do(http.MethodGet, "/api/orders?page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, s.orders.gotLimit)
	assert.JSONEq(t, `{
		"orders": [{"id":"o-1","orderNumber":"ORD-20261018-0001","total":1059.99,"status":"pending","createdAt":"2026-10-18T09:30:00Z"}],
		"total": 11, "page": 2, "limit": 10
	}`, rec.Body.String())
}

func TestListOrdersCapsHugePage(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodGet, "/api/orders?page=9223372036854775807&limit=100", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxPage, s.orders.gotPage)
	assert.Equal(t, 100, s.orders.gotLimit)
	assert.Positive(t, (s.orders.gotPage-1)*s.orders.gotLimit)
}

func TestGetOrderHandler(t *testing.T) {
	s := newTestServer()
	s.orders.order = sampleOrder()

	rec := s.do(http.MethodGet, "/api/orders/o-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"orderNumber":"ORD-20261018-0001"`)

	rec = s.do(http.MethodGet, "/api/orders/o-404", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "order not found", decodeEnvelope(t, rec).StatusMessage)
}

func TestProductHandlers(t *testing.T) {
	s := newTestServer()
	s.products.products = []*entity.Product{
		{
			ID:               "P1",
			Name:             "Lamp",
			ShortDescription: "Warm light",
			Price:            decimal.RequireFromString("500.50"),
			OriginalPrice:    decimal.NewNullDecimal(decimal.RequireFromString("650")),
			Images:           []string{"lamp-1.jpg"},
			CategoryID:       "cat_lighting",
			Stock:            3,
			SKU:              "LMP-001",
			Tags:             []string{"desk"},
			Specifications:   map[string]string{"Power": "8W"},
			Featured:         true,
			CreatedAt:        createdAt,
			UpdatedAt:        createdAt,
		},
		{ID: "P2", Name: "Mug", Price: decimal.NewFromInt(300), Stock: 1, CreatedAt: createdAt, UpdatedAt: createdAt},
	}

	rec := s.do(http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"price":500.5`)
	assert.Contains(t, body, `"originalPrice":650`)
	assert.Contains(t, body, `"originalPrice":null`)
	assert.Contains(t, body, `"images":[]`)
	assert.Contains(t, body, `"tags":["desk"]`)
	assert.Contains(t, body, `"total":2,"page":1,"limit":10,"hasMore":false`)
	assert.NotContains(t, body, "specifications")

	rec = s.do(http.MethodGet, "/api/products/P1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, float64(3), detail["stock"])
	assert.Equal(t, "Warm light", detail["shortDescription"])
	assert.Equal(t, "cat_lighting", detail["categoryId"])
	assert.Equal(t, "LMP-001", detail["sku"])
	assert.Equal(t, true, detail["featured"])
	assert.Equal(t, map[string]interface{}{"Power": "8W"}, detail["specifications"])

	rec = s.do(http.MethodGet, "/api/products/P2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"specifications":{}`)

	rec = s.do(http.MethodGet, "/api/products/P9", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product not found", decodeEnvelope(t, rec).StatusMessage)
}

func TestProductListHasMore(t *testing.T) {
	s := newTestServer()
	s.products.products = []*entity.Product{
		{ID: "P3", Name: "Desk", Price: decimal.NewFromInt(1200)},
		{ID: "P4", Name: "Chair", Price: decimal.NewFromInt(800)},
	}

	s.products.total = 5
	rec := s.do(http.MethodGet, "/api/products?page=2&limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":5,"page":2,"limit":2,"hasMore":true`)

	s.products.total = 4
	rec = s.do(http.MethodGet, "/api/products?page=2&limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hasMore":false`)
}

func TestListCategoriesHandler(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	s.categories.categories = []*entity.Category{
		{ID: "cat_lighting", Name: "Lighting", Slug: "lighting", Icon: "bulb", CreatedAt: createdAt},
	}
	rec = s.do(http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"cat_lighting","name":"Lighting","slug":"lighting","description":"","icon":"bulb"}]`, rec.Body.String())

	s.categories.err = errors.New("table missing")
	rec = s.do(http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeEnvelope(t, rec).StatusMessage)
}

func TestUserHandlers(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodPost, "/api/auth/register", `{"email":"buyer@example.com","password":"correct-horse","name":"Buyer","phone":"0812345678"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{
		"user": {"id":"u1","email":"buyer@example.com","name":"Buyer","phone":"0812345678","createdAt":"2026-10-18T09:30:00Z","updatedAt":"2026-10-18T09:30:00Z"},
		"token": "signed-token"
	}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/auth/login", `{"email":"buyer@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(http.MethodPost, "/api/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bearer-token", s.users.loggedOut)

	rec = s.do(http.MethodGet, "/api/user/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"buyer@example.com"`)

	rec = s.do(http.MethodPut, "/api/user/profile", `{"name":"New Name","phone":"0899999999"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "New Name", s.users.gotProfile.Name)
	assert.Contains(t, rec.Body.String(), `"message":"profile updated"`)

	s.users.err = entity.ErrInvalidCredentials
	rec = s.do(http.MethodPost, "/api/auth/login", `{"email":"buyer@example.com","password":"nope"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid email or password", decodeEnvelope(t, rec).StatusMessage)
}

func TestErrorHandlerRendersHTTPErrors(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.GET("/guarded", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication token is required")
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "redis: connection pool timeout")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"statusCode":401,"statusMessage":"authentication token is required","data":null}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "internal server error", decodeEnvelope(t, rec).StatusMessage)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decodeEnvelope(t, rec).StatusMessage)
}

func TestHealth(t *testing.T) {
	s := newTestServer()
	rec := s.do(http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
