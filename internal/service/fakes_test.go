package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"storefront-service/internal/config"
	"storefront-service/internal/entity"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

var testPricing = config.PricingConfig{
	FreeShippingThreshold: decimal.NewFromInt(1000),
	ShippingFee:           decimal.NewFromInt(60),
}

// memStore is an in-memory catalog and order store. CreateOrder applies the
// same conditional decrement rule as the SQL repository, under one lock.
type memStore struct {
	mu       sync.Mutex
	products map[string]*entity.Product
	orders   map[string]*entity.Order
	seq      map[string]int
	nextID   int
	failNext error
	now      func() time.Time
}

func newMemStore(products ...*entity.Product) *memStore {
	s := &memStore{
		products: map[string]*entity.Product{},
		orders:   map[string]*entity.Order{},
		seq:      map[string]int{},
		now:      func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) },
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *memStore) LoadProduct(ctx context.Context, id string) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, entity.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) HasSufficientStock(ctx context.Context, id string, quantity int) bool {
	p, err := s.LoadProduct(ctx, id)
	return err == nil && p.Stock >= quantity
}

func (s *memStore) stock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *memStore) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return nil, err
	}

	want := map[string]int{}
	for _, item := range order.Items {
		want[item.ProductID] += item.Quantity
	}
	for _, item := range order.Items {
		p, ok := s.products[item.ProductID]
		if !ok || p.Stock < want[item.ProductID] {
			return nil, entity.NewInsufficientStockError(item.ProductID, item.ProductName)
		}
	}
	for id, qty := range want {
		s.products[id].Stock -= qty
	}

	now := s.now()
	day := now.Format("20060102")
	s.seq[day]++
	s.nextID++

	created := *order
	created.ID = fmt.Sprintf("ord-%d", s.nextID)
	created.OrderNumber = fmt.Sprintf("ORD-%s-%04d", day, s.seq[day])
	created.CreatedAt = now
	created.UpdatedAt = now
	s.orders[created.ID] = &created
	return &created, nil
}

func (s *memStore) GetOrderByID(ctx context.Context, id, userID string) (*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.UserID != userID {
		return nil, entity.ErrOrderNotFound
	}
	return o, nil
}

func (s *memStore) ListOrdersByUser(ctx context.Context, userID, status string, page, limit int) (*entity.OrderList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := &entity.OrderList{Page: page, Limit: limit}
	for _, o := range s.orders {
		if o.UserID == userID && (status == "" || string(o.Status) == status) {
			list.Orders = append(list.Orders, o)
		}
	}
	sort.Slice(list.Orders, func(i, j int) bool { return list.Orders[i].OrderNumber > list.Orders[j].OrderNumber })
	list.Total = len(list.Orders)
	return list, nil
}

type recordingWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

type recordingCache struct {
	mu  sync.Mutex
	ids []string
}

func (c *recordingCache) InvalidateProducts(ctx context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, ids...)
	return nil
}

type memIdempotency struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (m *memIdempotency) Acquire(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys == nil {
		m.keys = map[string]bool{}
	}
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *memIdempotency) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

var errDiskFull = errors.New("disk full")

func product(id, name, price string, stock int) *entity.Product {
	return &entity.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Stock: stock}
}
