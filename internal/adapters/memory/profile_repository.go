package memory

import (
	"context"

	"fyndak-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

type profileRepo struct {
	store *Store
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*shared.Profile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.profiles[id]
	if !ok {
		return nil, shared.ErrProfileNotFound
	}
	return copyProfile(p), nil
}

func (r *profileRepo) Create(ctx context.Context, profile *shared.Profile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.profiles[profile.ID] = copyProfile(profile)
	return nil
}

func (r *profileRepo) Update(ctx context.Context, profile *shared.Profile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.profiles[profile.ID]; !ok {
		return shared.ErrProfileNotFound
	}
	r.store.profiles[profile.ID] = copyProfile(profile)
	return nil
}
