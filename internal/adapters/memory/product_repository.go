package memory

import (
	"context"
	"sort"

	"fyndak-auction-service/internal/domain/product"
	"fyndak-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

type productRepo struct {
	store *Store
}

func (r *productRepo) Create(ctx context.Context, p *product.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.products[p.ID] = copyProduct(p)
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.products[id]
	if !ok {
		return nil, shared.ErrProductNotFound
	}
	return copyProduct(p), nil
}

func (r *productRepo) List(ctx context.Context, status *product.Status, page, pageSize int) ([]*product.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var products []*product.Product
	for _, p := range r.store.products {
		if status != nil && p.Status != *status {
			continue
		}
		products = append(products, copyProduct(p))
	}

	// newest first, matching the SQL adapter
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})

	start := (page - 1) * pageSize
	if start >= len(products) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(products) {
		end = len(products)
	}
	return products[start:end], nil
}

func (r *productRepo) Update(ctx context.Context, p *product.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.products[p.ID]; !ok {
		return shared.ErrProductNotFound
	}
	r.store.products[p.ID] = copyProduct(p)
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.products[id]; !ok {
		return shared.ErrProductNotFound
	}
	delete(r.store.products, id)
	return nil
}
