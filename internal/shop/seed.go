package shop

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"coffee-shop/internal/domain"
)

//go:embed catalog.yml
var defaultCatalogYAML []byte

type catalogFile struct {
	Products []domain.Product `yaml:"products"`
}

// DefaultCatalog returns the built-in coffee menu.
func DefaultCatalog() ([]domain.Product, error) {
	return parseCatalog(defaultCatalogYAML)
}

func parseCatalog(raw []byte) ([]domain.Product, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("shop: parse catalog: %w", err)
	}
	for i, p := range f.Products {
		if p.Name == "" || p.Price <= 0 {
			return nil, fmt.Errorf("shop: parse catalog: entry %d needs a name and a positive price", i)
		}
	}
	return f.Products, nil
}

// Seed inserts products when the product table is empty and reports how
// many were written. Creation times are spaced so listings keep file order.
func (p *Products) Seed(ctx context.Context, products []domain.Product) (int, error) {
	has, err := p.store.HasProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("shop: seed: %w", err)
	}
	if has {
		return 0, nil
	}
	base := p.now()
	for i, prod := range products {
		prod.ID = p.newID()
		prod.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
		if err := p.store.CreateProduct(ctx, prod); err != nil {
			return i, fmt.Errorf("shop: seed %q: %w", prod.Name, err)
		}
	}
	log.Info().Str("component", "products").Int("count", len(products)).Msg("seeded product catalog")
	return len(products), nil
}
