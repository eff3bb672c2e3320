package orders

import (
	"context"
	"sync"
	"time"

	"storefront_back_end/internal/models"
)

// MemoryStore garde les commandes en mémoire (mode dev, tests)
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[string]*models.Order), now: time.Now}
}

func (s *MemoryStore) CreateIfAbsent(ctx context.Context, order *models.Order) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.ID]; ok {
		return false, nil
	}
	s.orders[order.ID] = order.Clone()
	return true, nil
}

func (s *MemoryStore) PatchMerge(ctx context.Context, id string, patch models.OrderPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	patch.Apply(order)
	order.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return order.Clone(), nil
}

// Len retourne le nombre de commandes stockées
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// MemoryProducts est le catalogue en mémoire utilisé avec MemoryStore
type MemoryProducts struct {
	mu        sync.Mutex
	products  map[string]*models.Product
	Movements []models.StockMovement
	Alerts    []models.StockAlert
}

func NewMemoryProducts(products ...models.Product) *MemoryProducts {
	m := &MemoryProducts{products: make(map[string]*models.Product, len(products))}
	for i := range products {
		p := products[i]
		m.products[p.ID] = &p
	}
	return m
}

func (m *MemoryProducts) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	cp.ImageURLs = append([]string(nil), p.ImageURLs...)
	return &cp, nil
}

func (m *MemoryProducts) SetStock(ctx context.Context, id string, stock int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return ErrProductNotFound
	}
	p.Stock = stock
	p.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryProducts) RecordMovement(ctx context.Context, movement models.StockMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Movements = append(m.Movements, movement)
	return nil
}

func (m *MemoryProducts) RaiseAlert(ctx context.Context, alert models.StockAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Alerts = append(m.Alerts, alert)
	return nil
}

// Stock retourne le stock courant d'un produit (-1 s'il est inconnu)
func (m *MemoryProducts) Stock(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		return p.Stock
	}
	return -1
}
