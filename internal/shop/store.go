// Package shop implements the storefront operations around the chatbot:
// accounts, products, carts and checkout, order administration and contact
// messages. Services return *usecase.Error values so the HTTP edge maps
// every failure the same way.
package shop

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"coffee-shop/internal/domain"
	"coffee-shop/internal/repository"
	"coffee-shop/internal/usecase"
)

type ProductStore interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	HasProducts(ctx context.Context) (bool, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) error
	SetProductStock(ctx context.Context, id string, inStock bool) (domain.Product, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u domain.User) error
	GetUser(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}

type CartStore interface {
	AddCartItem(ctx context.Context, userID, productID string, quantity int) (int, error)
	ListCart(ctx context.Context, userID string) ([]domain.CartLine, error)
}

type OrderStore interface {
	PlaceOrder(ctx context.Context, o domain.Order) error
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error)
	SetOrderStatus(ctx context.Context, id, status string) error
	ListProductStats(ctx context.Context) ([]domain.ProductStats, error)
}

type ContactStore interface {
	CreateContact(ctx context.Context, c domain.Contact) error
	ListContacts(ctx context.Context) ([]domain.Contact, error)
	SetContactStatus(ctx context.Context, id, status string) error
	DeleteContact(ctx context.Context, id string) error
}

// OrderPublisher announces placed orders.
type OrderPublisher interface {
	PublishOrder(ctx context.Context, o domain.Order) error
}

func newID() string {
	return uuid.NewString()
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// storeError maps repository sentinels onto usecase codes. reason prefixes
// the reason string, e.g. "order" gives "order_not_found".
func storeError(reason string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return usecase.NewError(usecase.ErrorNotFound, reason+"_not_found", err)
	case errors.Is(err, repository.ErrConflict):
		return usecase.NewError(usecase.ErrorConflict, reason+"_conflict", err)
	default:
		return usecase.NewError(usecase.ErrorInternal, "dynamodb_"+reason+"_error", err)
	}
}

func invalid(reason string) error {
	return usecase.NewError(usecase.ErrorInvalidInput, reason, nil)
}
