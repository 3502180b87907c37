package shop

import (
	"context"
	"errors"
	"strings"
	"time"

	"coffee-shop/internal/domain"
)

type AddProductInput struct {
	Name          string
	Image         string
	Price         float64
	DiscountPrice *float64
	Type          string
	Description   string
	InStock       *bool
}

// Products manages the product catalog. Stock changes are not pushed to the
// chatbot snapshot; it picks them up on its next refresh.
type Products struct {
	store ProductStore
	now   func() time.Time
	newID func() string
}

func NewProducts(store ProductStore) (*Products, error) {
	if store == nil {
		return nil, errors.New("shop: product store must not be nil")
	}
	return &Products{store: store, now: utcNow, newID: newID}, nil
}

func (p *Products) List(ctx context.Context) ([]domain.Product, error) {
	products, err := p.store.ListProducts(ctx)
	if err != nil {
		return nil, storeError("product", err)
	}
	return products, nil
}

// Types returns the distinct non-empty product types in first-seen order.
func (p *Products) Types(ctx context.Context) ([]string, error) {
	products, err := p.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	types := []string{}
	for _, prod := range products {
		t := strings.TrimSpace(prod.Type)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}
	return types, nil
}

func (p *Products) Add(ctx context.Context, in AddProductInput) (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	image := strings.TrimSpace(in.Image)
	switch {
	case name == "" || image == "" || in.Price <= 0:
		return domain.Product{}, invalid("name_price_image_required")
	case in.DiscountPrice != nil && *in.DiscountPrice < 0:
		return domain.Product{}, invalid("invalid_discount_price")
	}

	inStock := true
	if in.InStock != nil {
		inStock = *in.InStock
	}
	prod := domain.Product{
		ID:            p.newID(),
		Name:          name,
		Image:         image,
		Price:         in.Price,
		DiscountPrice: in.DiscountPrice,
		Type:          strings.TrimSpace(in.Type),
		Description:   strings.TrimSpace(in.Description),
		InStock:       inStock,
		CreatedAt:     p.now(),
	}
	if err := p.store.CreateProduct(ctx, prod); err != nil {
		return domain.Product{}, storeError("product", err)
	}
	return prod, nil
}

func (p *Products) SetStock(ctx context.Context, id string, inStock bool) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, invalid("product_id_required")
	}
	prod, err := p.store.SetProductStock(ctx, id, inStock)
	if err != nil {
		return domain.Product{}, storeError("product", err)
	}
	return prod, nil
}
