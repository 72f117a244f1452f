package api

import (
	"context"
	"net/http"
	"storefront-service/internal/auth"
	"storefront-service/internal/entity"

	"github.com/labstack/echo/v4"
)

const idempotencyHeader = "Idempotency-Key"

type OrderService interface {
	CreateOrder(ctx context.Context, userID string, req *entity.CreateOrderRequest, idempotencyKey string) (*entity.Order, error)
	GetOrder(ctx context.Context, userID, id string) (*entity.Order, error)
	ListOrders(ctx context.Context, userID, status string, page, limit int) (*entity.OrderList, error)
}

type OrderHandler struct {
	orderService OrderService
}

func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	req := entity.CreateOrderRequest{}
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request payload")
	}

	order, err := h.orderService.CreateOrder(c.Request().Context(), auth.UserID(c), &req, c.Request().Header.Get(idempotencyHeader))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newOrderResponse(order))
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	page, limit := paginationParams(c)

	list, err := h.orderService.ListOrders(c.Request().Context(), auth.UserID(c), c.QueryParam("status"), page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newOrderListResponse(list))
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return badRequest("order id is required")
	}

	order, err := h.orderService.GetOrder(c.Request().Context(), auth.UserID(c), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newOrderResponse(order))
}
