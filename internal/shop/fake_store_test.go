package shop

import (
	"context"
	"sort"
	"sync"

	"coffee-shop/internal/domain"
	"coffee-shop/internal/repository"
)

// memStore is an in-memory stand-in for the DynamoDB repository.
type memStore struct {
	mu       sync.Mutex
	products map[string]domain.Product
	users    map[string]domain.User
	emails   map[string]string
	carts    map[string]map[string]int
	orders   map[string]domain.Order
	stats    map[string]domain.ProductStats
	contacts map[string]domain.Contact
	err      error
}

func newMemStore() *memStore {
	return &memStore{
		products: map[string]domain.Product{},
		users:    map[string]domain.User{},
		emails:   map[string]string{},
		carts:    map[string]map[string]int{},
		orders:   map[string]domain.Order{},
		stats:    map[string]domain.ProductStats{},
		contacts: map[string]domain.Contact{},
	}
}

func (m *memStore) ListProducts(context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) HasProducts(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products) > 0, m.err
}

func (m *memStore) GetProduct(_ context.Context, id string) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Product{}, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, repository.ErrNotFound
	}
	return p, nil
}

func (m *memStore) CreateProduct(_ context.Context, p domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.products[p.ID]; ok {
		return repository.ErrConflict
	}
	m.products[p.ID] = p
	return nil
}

func (m *memStore) SetProductStock(_ context.Context, id string, inStock bool) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, repository.ErrNotFound
	}
	p.InStock = inStock
	m.products[id] = p
	return p, nil
}

func (m *memStore) CreateUser(_ context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.emails[u.Email]; ok {
		return repository.ErrConflict
	}
	m.emails[u.Email] = u.ID
	m.users[u.ID] = u
	return nil
}

func (m *memStore) GetUser(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.emails[email]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return m.GetUser(ctx, id)
}

func (m *memStore) AddCartItem(_ context.Context, userID, productID string, quantity int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.carts[userID] == nil {
		m.carts[userID] = map[string]int{}
	}
	m.carts[userID][productID] += quantity
	return m.carts[userID][productID], nil
}

func (m *memStore) ListCart(_ context.Context, userID string) ([]domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var lines []domain.CartLine
	for pid, q := range m.carts[userID] {
		lines = append(lines, domain.CartLine{UserID: userID, ProductID: pid, Quantity: q})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}

func (m *memStore) PlaceOrder(_ context.Context, o domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.orders[o.ID] = o
	for _, it := range o.Items {
		s := m.stats[it.ProductID]
		s.ProductID = it.ProductID
		s.TimesOrdered += it.Quantity
		s.TotalRevenue += it.Subtotal
		m.stats[it.ProductID] = s
		delete(m.carts[o.UserID], it.ProductID)
	}
	return nil
}

func (m *memStore) ListOrders(context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (m *memStore) ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	all, err := m.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Order
	for _, o := range all {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memStore) SetOrderStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	m.orders[id] = o
	return nil
}

func (m *memStore) ListProductStats(context.Context) ([]domain.ProductStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ProductStats, 0, len(m.stats))
	for _, s := range m.stats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (m *memStore) CreateContact(_ context.Context, c domain.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts[c.ID] = c
	return nil
}

func (m *memStore) ListContacts(context.Context) ([]domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Contact, 0, len(m.contacts))
	for _, c := range m.contacts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (m *memStore) SetContactStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Status = status
	m.contacts[id] = c
	return nil
}

func (m *memStore) DeleteContact(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contacts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.contacts, id)
	return nil
}
