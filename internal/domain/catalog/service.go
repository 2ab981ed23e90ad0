package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/example/retail-backoffice/internal/infrastructure/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service owns the authoritative product list
type Service struct {
	mu       sync.RWMutex
	repo     store.Repository[Product]
	products []Product
	logger   *zap.Logger
}

// NewService loads the catalog once; the in-memory copy is authoritative afterwards
func NewService(ctx context.Context, repo store.Repository[Product], logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	products, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return &Service{
		repo:     repo,
		products: products,
		logger:   logger.Named("catalog"),
	}, nil
}

func (s *Service) Create(ctx context.Context, np NewProduct) (*Product, error) {
	if err := validate(np.Name, np.Price); err != nil {
		return nil, err
	}
	status, err := ParseStatus(np.Status)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := strings.TrimSpace(np.ID)
	if id == "" {
		id = uuid.New().String()
	} else if s.indexOf(id) >= 0 {
		return nil, ErrProductExists
	}

	now := time.Now()
	p := Product{
		ID:          id,
		Name:        strings.TrimSpace(np.Name),
		Description: np.Description,
		CategoryID:  np.CategoryID,
		Price:       np.Price,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	next := append(s.snapshot(), p)
	if err := s.repo.Save(ctx, next); err != nil {
		return nil, err
	}
	s.products = next

	s.logger.Info("product created", zap.String("product_id", p.ID), zap.String("name", p.Name))
	return &p, nil
}

func (s *Service) Update(ctx context.Context, productID string, u ProductUpdate) (*Product, error) {
	if err := validate(u.Name, u.Price); err != nil {
		return nil, err
	}
	status, err := ParseStatus(u.Status)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(productID)
	if idx < 0 {
		return nil, ErrProductNotFound
	}

	next := s.snapshot()
	p := next[idx]
	p.Name = strings.TrimSpace(u.Name)
	p.Description = u.Description
	p.CategoryID = u.CategoryID
	p.Price = u.Price
	p.Status = status
	p.UpdatedAt = time.Now()
	next[idx] = p

	if err := s.repo.Save(ctx, next); err != nil {
		return nil, err
	}
	s.products = next
	return &p, nil
}

func (s *Service) Delete(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(productID)
	if idx < 0 {
		return ErrProductNotFound
	}

	next := make([]Product, 0, len(s.products)-1)
	next = append(next, s.products[:idx]...)
	next = append(next, s.products[idx+1:]...)
	if err := s.repo.Save(ctx, next); err != nil {
		return err
	}
	s.products = next

	s.logger.Info("product deleted", zap.String("product_id", productID))
	return nil
}

// GetProduct returns ErrProductNotFound when the product is not in the catalog
func (s *Service) GetProduct(ctx context.Context, productID string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(productID)
	if idx < 0 {
		return nil, ErrProductNotFound
	}
	p := s.products[idx]
	return &p, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(), nil
}

func (s *Service) indexOf(productID string) int {
	for i := range s.products {
		if s.products[i].ID == productID {
			return i
		}
	}
	return -1
}

func (s *Service) snapshot() []Product {
	return append(make([]Product, 0, len(s.products)+1), s.products...)
}
