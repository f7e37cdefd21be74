package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	sferrors "github.com/abgdnv/storefront/internal/errors"
)

// InMemoryProductStore implements ProductStore using an in-memory map.
type InMemoryProductStore struct {
	mu       sync.RWMutex
	products map[int64]Product
	nextID   int64
}

// NewInMemoryProductStore creates a new instance of ProductStore
func NewInMemoryProductStore() *InMemoryProductStore {
	return &InMemoryProductStore{
		products: make(map[int64]Product),
		nextID:   1,
	}
}

// Put stores the product, assigning an ID and creation time if absent,
// and returns the stored copy.
func (s *InMemoryProductStore) Put(p Product) Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		p.ID = s.nextID
		s.nextID++
	} else if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
	if p.CreatedAt == nil {
		now := time.Now()
		p.CreatedAt = &now
	}
	s.products[p.ID] = p
	return p
}

// SetStock overwrites the stock of an existing product.
func (s *InMemoryProductStore) SetStock(id int64, stock int32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.products[id]; ok {
		p.Stock = stock
		s.products[id] = p
	}
}

// FindByID retrieves a product by its ID.
func (s *InMemoryProductStore) FindByID(_ context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, sferrors.ErrProductNotFound
	}
	return &p, nil
}

// FindByIDs retrieves products by IDs.
func (s *InMemoryProductStore) FindByIDs(_ context.Context, ids []int64) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			list = append(list, p)
		}
	}
	return list, nil
}

// List returns active, in-stock products matching the given criteria,
// together with the total number of matches before pagination.
func (s *InMemoryProductStore) List(_ context.Context, params ListProductsParams) ([]Product, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if !p.IsActive || p.Stock <= 0 {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(params.Search)) {
			continue
		}
		if params.Category != "" && p.Category != params.Category {
			continue
		}
		matches = append(matches, p)
	}

	desc := params.SortDir == "desc"
	sort.Slice(matches, func(i, j int) bool {
		cmp := compareProducts(matches[i], matches[j], params.SortBy)
		if cmp == 0 {
			// Ties always break on ID ascending, regardless of direction.
			return matches[i].ID < matches[j].ID
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})

	total := int64(len(matches))
	start := int(params.Offset)
	if start > len(matches) {
		start = len(matches)
	}
	end := start + int(params.Limit)
	if end > len(matches) {
		end = len(matches)
	}
	return matches[start:end], total, nil
}

// compareProducts orders two products by the given sort key and reports
// -1, 0 or 1 like strings.Compare.
func compareProducts(a, b Product, sortBy string) int {
	switch sortBy {
	case "price":
		switch {
		case a.Price < b.Price:
			return -1
		case a.Price > b.Price:
			return 1
		}
	case "created_at":
		switch {
		case a.CreatedAt.Before(*b.CreatedAt):
			return -1
		case a.CreatedAt.After(*b.CreatedAt):
			return 1
		}
	default:
		return strings.Compare(a.Name, b.Name)
	}
	return 0
}

// Categories returns the distinct non-empty categories of active products, sorted ascending.
func (s *InMemoryProductStore) Categories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, p := range s.products {
		if p.IsActive && p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// FindLatestActive returns up to limit active, in-stock products, newest first.
func (s *InMemoryProductStore) FindLatestActive(_ context.Context, limit int32) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if p.IsActive && p.Stock > 0 {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(*list[j].CreatedAt) {
			return list[i].CreatedAt.After(*list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	if int(limit) < len(list) {
		list = list[:limit]
	}
	return list, nil
}

// InMemoryCartStore implements CartStore using an in-memory map.
type InMemoryCartStore struct {
	mu     sync.RWMutex
	items  map[int64]CartItem
	nextID int64
}

// NewInMemoryCartStore creates a new instance of CartStore
func NewInMemoryCartStore() *InMemoryCartStore {
	return &InMemoryCartStore{
		items:  make(map[int64]CartItem),
		nextID: 1,
	}
}

// FindItemByID retrieves a cart line by its ID.
func (s *InMemoryCartStore) FindItemByID(_ context.Context, id int64) (*CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, sferrors.ErrCartItemNotFound
	}
	return &item, nil
}

// FindBySessionAndProduct retrieves the line for the given session and product.
func (s *InMemoryCartStore) FindBySessionAndProduct(_ context.Context, sessionID string, productID int64) (*CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.SessionID == sessionID && item.ProductID == productID {
			return &item, nil
		}
	}
	return nil, sferrors.ErrCartItemNotFound
}

// FindBySession returns all lines of the given session in insertion order.
func (s *InMemoryCartStore) FindBySession(_ context.Context, sessionID string) ([]CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]CartItem, 0)
	for _, item := range s.items {
		if item.SessionID == sessionID {
			list = append(list, item)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// Create adds a new cart line.
func (s *InMemoryCartStore) Create(_ context.Context, params CreateCartItemParams) (*CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	item := CartItem{
		ID:        s.nextID,
		SessionID: params.SessionID,
		ProductID: params.ProductID,
		Quantity:  params.Quantity,
		Price:     params.Price,
		CreatedAt: &now,
	}
	s.nextID++
	s.items[item.ID] = item
	return &item, nil
}

// UpdateQuantity overwrites the quantity of an existing line.
func (s *InMemoryCartStore) UpdateQuantity(_ context.Context, id int64, quantity int32) (*CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, sferrors.ErrCartItemNotFound
	}
	item.Quantity = quantity
	s.items[id] = item
	return &item, nil
}

// Delete removes a cart line by its ID.
func (s *InMemoryCartStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return sferrors.ErrCartItemNotFound
	}
	delete(s.items, id)
	return nil
}
