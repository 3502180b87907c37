package shop

import (
	"context"
	"errors"
	"sort"

	"coffee-shop/internal/domain"
	"coffee-shop/internal/repository"
)

const (
	unknownUserName  = "Unknown"
	popularProductsN = 10
)

// AdminOrder is an order with the name of the user who placed it.
type AdminOrder struct {
	domain.Order
	UserName string
}

type Stats struct {
	TotalOrders     int
	Revenue         float64
	PendingOrders   int
	CompletedOrders int
}

type PopularProduct struct {
	ProductID    string
	Name         string
	Image        string
	TimesOrdered int
	TotalRevenue float64
}

// Admin serves the admin dashboard.
type Admin struct {
	orders   OrderStore
	users    UserStore
	products ProductStore
}

func NewAdmin(orders OrderStore, users UserStore, products ProductStore) (*Admin, error) {
	if orders == nil || users == nil || products == nil {
		return nil, errors.New("shop: admin stores must not be nil")
	}
	return &Admin{orders: orders, users: users, products: products}, nil
}

// Orders lists every order, newest first.
func (a *Admin) Orders(ctx context.Context) ([]AdminOrder, error) {
	orders, err := a.orders.ListOrders(ctx)
	if err != nil {
		return nil, storeError("order", err)
	}
	names := make(map[string]string)
	out := make([]AdminOrder, 0, len(orders))
	for _, o := range orders {
		name, ok := names[o.UserID]
		if !ok {
			u, err := a.users.GetUser(ctx, o.UserID)
			switch {
			case err == nil:
				name = u.Name
			case errors.Is(err, repository.ErrNotFound):
				name = unknownUserName
			default:
				return nil, storeError("user", err)
			}
			names[o.UserID] = name
		}
		out = append(out, AdminOrder{Order: o, UserName: name})
	}
	return out, nil
}

func (a *Admin) CompleteOrder(ctx context.Context, id string) error {
	return a.setStatus(ctx, id, domain.OrderCompleted)
}

func (a *Admin) CancelOrder(ctx context.Context, id string) error {
	return a.setStatus(ctx, id, domain.OrderCancelled)
}

func (a *Admin) setStatus(ctx context.Context, id, status string) error {
	if id == "" {
		return invalid("order_id_required")
	}
	if err := a.orders.SetOrderStatus(ctx, id, status); err != nil {
		return storeError("order", err)
	}
	return nil
}

// Stats counts orders by status. Revenue sums every order regardless of status.
func (a *Admin) Stats(ctx context.Context) (Stats, error) {
	orders, err := a.orders.ListOrders(ctx)
	if err != nil {
		return Stats{}, storeError("order", err)
	}
	s := Stats{TotalOrders: len(orders)}
	for _, o := range orders {
		s.Revenue += o.TotalAmount
		switch o.Status {
		case domain.OrderPending:
			s.PendingOrders++
		case domain.OrderCompleted:
			s.CompletedOrders++
		}
	}
	s.Revenue = roundCents(s.Revenue)
	return s, nil
}

// PopularProducts returns the most ordered products by units sold. Products
// deleted since they were ordered are left out.
func (a *Admin) PopularProducts(ctx context.Context) ([]PopularProduct, error) {
	stats, err := a.orders.ListProductStats(ctx)
	if err != nil {
		return nil, storeError("stats", err)
	}
	products, err := a.products.ListProducts(ctx)
	if err != nil {
		return nil, storeError("product", err)
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TimesOrdered > stats[j].TimesOrdered
	})
	out := make([]PopularProduct, 0, popularProductsN)
	for _, s := range stats {
		if len(out) == popularProductsN {
			break
		}
		p, ok := byID[s.ProductID]
		if !ok {
			continue
		}
		out = append(out, PopularProduct{
			ProductID:    p.ID,
			Name:         p.Name,
			Image:        p.Image,
			TimesOrdered: s.TimesOrdered,
			TotalRevenue: roundCents(s.TotalRevenue),
		})
	}
	return out, nil
}
