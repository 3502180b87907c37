package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"coffee-shop/internal/domain"
)

// FallbackAlternative is suggested when no catalog item is in stock. It need
// not be a catalog entry.
const FallbackAlternative = "Cappuccino"

// ErrCatalogNotLoaded is returned by catalog reads before the first load.
var ErrCatalogNotLoaded = errors.New("usecase: catalog not loaded")

// ProductLister is the product collaborator that seeds the catalog.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type catalogData struct {
	entries []domain.CatalogEntry
	byName  map[string]int // lower-cased name -> index into entries
}

func newCatalogData(entries []domain.CatalogEntry) *catalogData {
	d := &catalogData{
		entries: make([]domain.CatalogEntry, 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		key := strings.ToLower(strings.TrimSpace(e.Name))
		if key == "" {
			continue
		}
		if _, dup := d.byName[key]; dup {
			continue
		}
		d.byName[key] = len(d.entries)
		d.entries = append(d.entries, e)
	}
	return d
}

// Catalog is a read-only snapshot of the product catalog. Its contents change
// only through Refresh; stock flags may be stale in between.
type Catalog struct {
	source ProductLister
	data   atomic.Pointer[catalogData]
}

// NewCatalog creates an empty catalog backed by source. Call Refresh before use.
func NewCatalog(source ProductLister) (*Catalog, error) {
	if source == nil {
		return nil, errors.New("usecase: product lister must not be nil")
	}
	return &Catalog{source: source}, nil
}

// NewStaticCatalog creates a loaded catalog that cannot be refreshed.
func NewStaticCatalog(entries []domain.CatalogEntry) *Catalog {
	c := &Catalog{}
	c.data.Store(newCatalogData(entries))
	return c
}

// Refresh reloads the snapshot from the product collaborator. On error the
// previous snapshot stays in place.
func (c *Catalog) Refresh(ctx context.Context) error {
	if c.source == nil {
		return errors.New("usecase: catalog has no product source")
	}
	products, err := c.source.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("usecase: refresh catalog: %w", err)
	}
	entries := make([]domain.CatalogEntry, 0, len(products))
	for _, p := range products {
		entries = append(entries, domain.CatalogEntryFromProduct(p))
	}
	c.data.Store(newCatalogData(entries))
	return nil
}

func (c *Catalog) snapshot() (*catalogData, error) {
	d := c.data.Load()
	if d == nil {
		return nil, ErrCatalogNotLoaded
	}
	return d, nil
}

// Entries returns the catalog in enumeration order.
func (c *Catalog) Entries() ([]domain.CatalogEntry, error) {
	d, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	out := make([]domain.CatalogEntry, len(d.entries))
	copy(out, d.entries)
	return out, nil
}

// Names returns the display names in enumeration order.
func (c *Catalog) Names() ([]string, error) {
	d, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(d.entries))
	for i, e := range d.entries {
		names[i] = e.Name
	}
	return names, nil
}

// Lookup finds an entry by case-insensitive exact name.
func (c *Catalog) Lookup(name string) (domain.CatalogEntry, bool) {
	d, err := c.snapshot()
	if err != nil {
		return domain.CatalogEntry{}, false
	}
	i, ok := d.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return domain.CatalogEntry{}, false
	}
	return d.entries[i], true
}

// LookupStock reports whether name is in stock. Exact case-insensitive
// matches are tried first, then substring matches in either direction in
// enumeration order. Unknown names are reported out of stock.
func (c *Catalog) LookupStock(name string) bool {
	d, err := c.snapshot()
	if err != nil {
		return false
	}
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return false
	}
	if i, ok := d.byName[key]; ok {
		return d.entries[i].InStock
	}
	for _, e := range d.entries {
		entryKey := strings.ToLower(e.Name)
		if strings.Contains(entryKey, key) || strings.Contains(key, entryKey) {
			return e.InStock
		}
	}
	return false
}

// FindInStockAlternative returns the first in-stock entry whose name is not
// in exclude, or FallbackAlternative when there is none.
func (c *Catalog) FindInStockAlternative(exclude ...string) string {
	d, err := c.snapshot()
	if err != nil {
		return FallbackAlternative
	}
	for _, e := range d.entries {
		if !e.InStock || containsFold(exclude, e.Name) {
			continue
		}
		return e.Name
	}
	return FallbackAlternative
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
