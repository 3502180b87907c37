package shop

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"coffee-shop/internal/domain"
	"coffee-shop/internal/repository"
)

// CartView is a cart line joined with its product.
type CartView struct {
	ProductID   string
	Name        string
	Image       string
	Type        string
	Description string
	Price       float64
	Quantity    int
	Total       float64
}

type CheckoutItem struct {
	ProductID string
	Quantity  int
}

type CheckoutInput struct {
	UserID string
	Items  []CheckoutItem
}

// Orders handles carts, checkout and order history.
type Orders struct {
	products  ProductStore
	carts     CartStore
	orders    OrderStore
	publisher OrderPublisher
	now       func() time.Time
	newID     func() string
}

// NewOrders creates the order service. publisher may be nil when nobody
// listens for new orders.
func NewOrders(products ProductStore, carts CartStore, orders OrderStore, publisher OrderPublisher) (*Orders, error) {
	if products == nil {
		return nil, errors.New("shop: product store must not be nil")
	}
	if carts == nil {
		return nil, errors.New("shop: cart store must not be nil")
	}
	if orders == nil {
		return nil, errors.New("shop: order store must not be nil")
	}
	return &Orders{
		products:  products,
		carts:     carts,
		orders:    orders,
		publisher: publisher,
		now:       utcNow,
		newID:     newID,
	}, nil
}

// AddToCart adds quantity units of a product, 1 when quantity is zero, and
// returns the resulting line quantity.
func (o *Orders) AddToCart(ctx context.Context, userID, productID string, quantity int) (int, error) {
	userID, productID = strings.TrimSpace(userID), strings.TrimSpace(productID)
	if userID == "" || productID == "" {
		return 0, invalid("user_and_product_required")
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return 0, invalid("invalid_quantity")
	}
	if _, err := o.products.GetProduct(ctx, productID); err != nil {
		return 0, storeError("product", err)
	}
	q, err := o.carts.AddCartItem(ctx, userID, productID, quantity)
	if err != nil {
		return 0, storeError("cart", err)
	}
	return q, nil
}

// ViewCart lists the user's cart priced at checkout prices. Lines whose
// product no longer exists are skipped.
func (o *Orders) ViewCart(ctx context.Context, userID string) ([]CartView, error) {
	lines, err := o.carts.ListCart(ctx, userID)
	if err != nil {
		return nil, storeError("cart", err)
	}
	views := make([]CartView, 0, len(lines))
	for _, line := range lines {
		p, err := o.products.GetProduct(ctx, line.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, storeError("product", err)
		}
		price := p.UnitPrice()
		views = append(views, CartView{
			ProductID:   p.ID,
			Name:        p.Name,
			Image:       p.Image,
			Type:        p.Type,
			Description: p.Description,
			Price:       price,
			Quantity:    line.Quantity,
			Total:       roundCents(price * float64(line.Quantity)),
		})
	}
	return views, nil
}

// Checkout prices the requested items, stores the order and announces it.
// Repeated products are merged into one line.
func (o *Orders) Checkout(ctx context.Context, in CheckoutInput) (domain.Order, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return domain.Order{}, invalid("user_id_required")
	}
	if len(in.Items) == 0 {
		return domain.Order{}, invalid("cart_empty")
	}

	quantities := make(map[string]int, len(in.Items))
	var ids []string
	for _, it := range in.Items {
		id := strings.TrimSpace(it.ProductID)
		if id == "" {
			return domain.Order{}, invalid("product_id_required")
		}
		if it.Quantity <= 0 {
			return domain.Order{}, invalid("invalid_quantity")
		}
		if _, seen := quantities[id]; !seen {
			ids = append(ids, id)
		}
		quantities[id] += it.Quantity
	}
	if len(ids) > repository.MaxOrderProducts {
		return domain.Order{}, invalid("too_many_items")
	}

	order := domain.Order{
		ID:        o.newID(),
		UserID:    userID,
		Items:     make([]domain.OrderItem, 0, len(ids)),
		Status:    domain.OrderPending,
		Timestamp: o.now(),
	}
	var total float64
	for _, id := range ids {
		p, err := o.products.GetProduct(ctx, id)
		if err != nil {
			return domain.Order{}, storeError("product", err)
		}
		price := p.UnitPrice()
		q := quantities[id]
		subtotal := roundCents(price * float64(q))
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     price,
			Quantity:  q,
			Subtotal:  subtotal,
		})
		total += subtotal
	}
	order.TotalAmount = roundCents(total)

	if err := o.orders.PlaceOrder(ctx, order); err != nil {
		return domain.Order{}, storeError("order", err)
	}
	log.Info().Str("component", "orders").Str("order_id", order.ID).Str("user_id", userID).
		Float64("total", order.TotalAmount).Msg("order placed")

	if o.publisher != nil {
		if err := o.publisher.PublishOrder(ctx, order); err != nil {
			log.Warn().Err(err).Str("component", "orders").Str("order_id", order.ID).Msg("publish order notification")
		}
	}
	return order, nil
}

func (o *Orders) History(ctx context.Context, userID string) ([]domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalid("user_id_required")
	}
	orders, err := o.orders.ListUserOrders(ctx, userID)
	if err != nil {
		return nil, storeError("order", err)
	}
	return orders, nil
}
