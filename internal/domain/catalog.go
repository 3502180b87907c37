package domain

import "time"

// Product is a sellable item as stored in the product collection.
type Product struct {
	ID            string    `json:"productId" yaml:"-"`
	Name          string    `json:"name" yaml:"name"`
	Image         string    `json:"image" yaml:"image"`
	Price         float64   `json:"price" yaml:"price"`
	DiscountPrice *float64  `json:"discountPrice,omitempty" yaml:"discount_price,omitempty"`
	Type          string    `json:"type" yaml:"type"`
	Description   string    `json:"description" yaml:"description"`
	InStock       bool      `json:"inStock" yaml:"in_stock"`
	CreatedAt     time.Time `json:"createdAt" yaml:"-"`
}

// UnitPrice returns the price charged at checkout: the discount price when
// one is set, otherwise the list price.
func (p Product) UnitPrice() float64 {
	if p.DiscountPrice != nil && *p.DiscountPrice > 0 {
		return *p.DiscountPrice
	}
	return p.Price
}

// CatalogEntry is the chatbot's view of a product.
type CatalogEntry struct {
	Name        string
	Description string
	Category    string
	InStock     bool
}

// CatalogEntryFromProduct projects a stored product onto a catalog entry.
func CatalogEntryFromProduct(p Product) CatalogEntry {
	return CatalogEntry{
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Type,
		InStock:     p.InStock,
	}
}
