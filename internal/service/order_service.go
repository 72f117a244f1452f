package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"storefront-service/internal/entity"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/segmentio/kafka-go"
)

const publishTimeout = 2 * time.Second

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error)
	GetOrderByID(ctx context.Context, id, userID string) (*entity.Order, error)
	ListOrdersByUser(ctx context.Context, userID, status string, page, limit int) (*entity.OrderList, error)
}

type CacheInvalidator interface {
	InvalidateProducts(ctx context.Context, ids ...string) error
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type IdempotencyGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// OrderService is a service that provides order-related operations
type OrderService struct {
	orderRepo   OrderRepository
	pricing     *PricingService
	cache       CacheInvalidator
	kafkaWriter MessageWriter
	idempotency IdempotencyGuard
	validate    *validator.Validate
	now         func() time.Time
}

// NewOrderService creates a new instance of OrderService. cache, kafkaWriter
// and idempotency may be nil.
func NewOrderService(orderRepo OrderRepository, pricing *PricingService, cache CacheInvalidator, kafkaWriter MessageWriter, idempotency IdempotencyGuard) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		pricing:     pricing,
		cache:       cache,
		kafkaWriter: kafkaWriter,
		idempotency: idempotency,
		validate:    newValidator(),
		now:         time.Now,
	}
}

// CreateOrder validates the request, prices it and persists it atomically.
// Callers see either the committed order or one of:
// *entity.ValidationError, *entity.ProductError, entity.ErrDuplicateRequest,
// entity.ErrPersistence.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req *entity.CreateOrderRequest, idempotencyKey string) (order *entity.Order, err error) {
	if idempotencyKey != "" && s.idempotency != nil {
		key := fmt.Sprintf("%s:%s", userID, idempotencyKey)
		acquired, acquireErr := s.idempotency.Acquire(ctx, key)
		if acquireErr != nil {
			logger.Error().Err(acquireErr).Str("user_id", userID).Msg("Error claiming idempotency key")
			return nil, entity.ErrPersistence
		}
		if !acquired {
			return nil, entity.ErrDuplicateRequest
		}
		defer func() {
			if err != nil {
				if relErr := s.idempotency.Release(context.WithoutCancel(ctx), key); relErr != nil {
					logger.Warn().Err(relErr).Msg("Error releasing idempotency key")
				}
			}
		}()
	}

	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	items, err := s.pricing.PrepareLines(ctx, req.Items)
	if err != nil {
		var productErr *entity.ProductError
		if errors.As(err, &productErr) {
			logger.Warn().Str("user_id", userID).Msg(productErr.Error())
			return nil, err
		}
		logger.Error().Err(err).Str("user_id", userID).Msg("Error preparing order lines")
		return nil, entity.ErrPersistence
	}

	totals := s.pricing.ComputeTotals(items)

	createdOrder, err := s.orderRepo.CreateOrder(ctx, &entity.Order{
		UserID:        userID,
		Items:         items,
		Subtotal:      totals.Subtotal,
		Shipping:      totals.Shipping,
		Discount:      totals.Discount,
		Total:         totals.Total,
		Status:        entity.OrderStatusPending,
		PaymentMethod: req.PaymentMethod,
		ShippingInfo:  req.ShippingInfo,
	})
	if err != nil {
		// losing the stock race at the conditional decrement is a business rejection
		if errors.Is(err, entity.ErrInsufficientStock) {
			logger.Warn().Str("user_id", userID).Msg(err.Error())
			return nil, err
		}
		logger.Error().Err(err).Str("user_id", userID).Msg("Error creating order")
		return nil, entity.ErrPersistence
	}

	s.afterCommit(ctx, createdOrder)

	return createdOrder, nil
}

// afterCommit refreshes caches and notifies consumers. The order is already
// committed, so failures here are only logged.
func (s *OrderService) afterCommit(ctx context.Context, order *entity.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if s.cache != nil {
		ids := make([]string, len(order.Items))
		for i, item := range order.Items {
			ids[i] = item.ProductID
		}
		if err := s.cache.InvalidateProducts(ctx, ids...); err != nil {
			logger.Warn().Err(err).Msgf("Error invalidating product cache for order %s", order.ID)
		}
	}

	if s.kafkaWriter != nil {
		if err := s.publishOrderEvent(ctx, order, "created"); err != nil {
			logger.Error().Err(err).Msgf("Error publishing created event for order %s", order.ID)
		}
	}
}

func (s *OrderService) publishOrderEvent(ctx context.Context, order *entity.Order, eventType string) error {
	event := entity.OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		OccurredAt:  s.now(),
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, entity.OrderEventItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// order.created.<order id>
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order.%s.%s", eventType, order.ID)),
		Value: payload,
	}

	return s.kafkaWriter.WriteMessages(ctx, msg)
}

// GetOrder returns the order if it belongs to userID, else entity.ErrOrderNotFound.
func (s *OrderService) GetOrder(ctx context.Context, userID, id string) (*entity.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, id, userID)
	if err != nil {
		if !errors.Is(err, entity.ErrOrderNotFound) {
			logger.Error().Err(err).Msgf("Error getting order %s", id)
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID, status string, page, limit int) (*entity.OrderList, error) {
	list, err := s.orderRepo.ListOrdersByUser(ctx, userID, status, page, limit)
	if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("Error listing orders")
		return nil, err
	}
	return list, nil
}
