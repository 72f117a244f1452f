package entity

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrPersistence        = errors.New("order could not be created, please try again later")
	ErrOrderNotFound      = errors.New("order not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateRequest   = errors.New("request with this idempotency key was already submitted")
)

// ProductError is a business-rule rejection for a single order line.
// It unwraps to ErrProductNotFound or ErrInsufficientStock.
type ProductError struct {
	Err         error
	ProductID   string
	ProductName string
}

func (e *ProductError) Error() string {
	if errors.Is(e.Err, ErrInsufficientStock) {
		return fmt.Sprintf("product %s is out of stock", e.ProductName)
	}
	return fmt.Sprintf("product %s does not exist", e.ProductID)
}

func (e *ProductError) Unwrap() error {
	return e.Err
}

func NewProductNotFoundError(productID string) *ProductError {
	return &ProductError{Err: ErrProductNotFound, ProductID: productID}
}

func NewInsufficientStockError(productID, productName string) *ProductError {
	return &ProductError{Err: ErrInsufficientStock, ProductID: productID, ProductName: productName}
}

// ValidationError maps request fields to a message describing what is wrong.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}
