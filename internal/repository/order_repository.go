package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"storefront-service/internal/entity"
	"strings"
	"time"

	"github.com/google/uuid"
)

type OrderRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db, now: time.Now}
}

// CreateOrder persists the order header, its items and the stock decrements in
// one transaction. The order id, order number and timestamps are assigned here.
// A stock decrement that matches no row rolls everything back and returns an
// *entity.ProductError wrapping entity.ErrInsufficientStock.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	if len(order.Items) == 0 {
		return nil, errors.New("order has no items")
	}
	now := r.now()

	// Start a transaction
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	orderNumber, err := nextOrderNumber(ctx, tx, now)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	orderID := uuid.NewString()

	// Insert order
	orderQuery := `
		INSERT INTO orders (id, user_id, order_number, subtotal, shipping, discount, total, status, payment_method,
			recipient_name, recipient_phone, city, district, address, postal_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	info := order.ShippingInfo
	_, err = tx.ExecContext(ctx, orderQuery, orderID, order.UserID, orderNumber, order.Subtotal, order.Shipping, order.Discount,
		order.Total, string(order.Status), string(order.PaymentMethod), info.RecipientName, info.RecipientPhone, info.City,
		info.District, info.Address, info.PostalCode, now, now)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("insert order: %w", err)
	}

	// Insert order items with batch
	itemQuery := `
		INSERT INTO order_items (order_id, product_id, product_name, product_thumbnail, price, quantity, created_at)
		VALUES `
	var values []interface{}
	for _, item := range order.Items {
		itemQuery += "(?, ?, ?, ?, ?, ?, ?),"
		values = append(values, orderID, item.ProductID, item.ProductName, item.ProductThumbnail, item.Price, item.Quantity, now)
	}
	itemQuery = itemQuery[:len(itemQuery)-1]

	_, err = tx.ExecContext(ctx, itemQuery, values...)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("insert order items: %w", err)
	}

	// Decrement stock in product id order so concurrent orders lock rows in the same sequence
	items := make([]entity.OrderItem, len(order.Items))
	copy(items, order.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	stockQuery := `UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ? AND stock >= ?`
	for _, item := range items {
		res, err := tx.ExecContext(ctx, stockQuery, item.Quantity, now, item.ProductID, item.Quantity)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("decrement stock for product %s: %w", item.ProductID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("decrement stock for product %s: %w", item.ProductID, err)
		}
		if affected == 0 {
			tx.Rollback()
			return nil, entity.NewInsufficientStockError(item.ProductID, item.ProductName)
		}
	}

	// Commit the transaction
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}

	created := *order
	created.ID = orderID
	created.OrderNumber = orderNumber
	created.CreatedAt = now
	created.UpdatedAt = now
	created.Items = make([]entity.OrderItem, len(order.Items))
	for i, item := range order.Items {
		item.OrderID = orderID
		created.Items[i] = item
	}
	return &created, nil
}

// nextOrderNumber bumps the counter row for the order's calendar day. The upsert
// keeps that row locked until the surrounding transaction ends, so concurrent
// orders on the same day get distinct numbers and a rollback gives the number back.
func nextOrderNumber(ctx context.Context, tx *sql.Tx, now time.Time) (string, error) {
	day := now.Format("2006-01-02")

	upsert := `INSERT INTO order_sequences (seq_date, last_value) VALUES (?, 1) ON DUPLICATE KEY UPDATE last_value = last_value + 1`
	if _, err := tx.ExecContext(ctx, upsert, day); err != nil {
		return "", fmt.Errorf("allocate order number: %w", err)
	}

	var seq int
	if err := tx.QueryRowContext(ctx, `SELECT last_value FROM order_sequences WHERE seq_date = ?`, day).Scan(&seq); err != nil {
		return "", fmt.Errorf("read order number: %w", err)
	}

	return FormatOrderNumber(now, seq), nil
}

// FormatOrderNumber renders ORD-YYYYMMDD-NNNN.
func FormatOrderNumber(day time.Time, seq int) string {
	return fmt.Sprintf("ORD-%s-%04d", day.Format("20060102"), seq)
}

const orderColumns = `id, user_id, order_number, subtotal, shipping, discount, total, status, payment_method,
	recipient_name, recipient_phone, city, district, address, postal_code, tracking_number, created_at, updated_at`

func scanOrder(row rowScanner) (*entity.Order, error) {
	order := &entity.Order{}
	var status, payment string
	var tracking sql.NullString
	var createdAt, updatedAt sql.NullTime
	info := &order.ShippingInfo
	err := row.Scan(&order.ID, &order.UserID, &order.OrderNumber, &order.Subtotal, &order.Shipping, &order.Discount, &order.Total,
		&status, &payment, &info.RecipientName, &info.RecipientPhone, &info.City, &info.District, &info.Address,
		&info.PostalCode, &tracking, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	order.Status = entity.OrderStatus(status)
	order.PaymentMethod = entity.PaymentMethod(payment)
	order.TrackingNumber = tracking.String
	order.CreatedAt = createdAt.Time
	order.UpdatedAt = updatedAt.Time
	return order, nil
}

// GetOrderByID loads an order owned by userID together with its items.
func (r *OrderRepository) GetOrderByID(ctx context.Context, id, userID string) (*entity.Order, error) {
	orderQuery := `SELECT ` + orderColumns + ` FROM orders WHERE id = ? AND user_id = ?`
	order, err := scanOrder(r.db.QueryRowContext(ctx, orderQuery, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}

	itemQuery := `SELECT id, order_id, product_id, product_name, product_thumbnail, price, quantity FROM order_items WHERE order_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, itemQuery, id)
	if err != nil {
		return nil, fmt.Errorf("get order items %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		item := entity.OrderItem{}
		var thumbnail sql.NullString
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &thumbnail, &item.Price, &item.Quantity)
		if err != nil {
			return nil, err
		}
		item.ProductThumbnail = thumbnail.String
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

// ListOrdersByUser returns a page of the user's order headers, newest first.
// An empty status matches every status.
func (r *OrderRepository) ListOrdersByUser(ctx context.Context, userID, status string, page, limit int) (*entity.OrderList, error) {
	where := []string{"user_id = ?"}
	args := []interface{}{userID}
	if status != "" {
		where = append(where, "status = ?")
		args = append(args, status)
	}
	cond := strings.Join(where, " AND ")

	list := &entity.OrderList{Page: page, Limit: limit}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE `+cond, args...).Scan(&list.Total); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + cond + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		list.Orders = append(list.Orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}
