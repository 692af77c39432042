package app

import (
	"context"

	"fyndak-auction-service/internal/domain/shared"
	"fyndak-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
)

// requireProfile resolves the caller's profile; a missing or nil identity is
// treated as an unauthenticated request.
func requireProfile(ctx context.Context, repo outbound.ProfileRepository, id uuid.UUID) (*shared.Profile, error) {
	if id == uuid.Nil {
		return nil, shared.ErrUnauthenticated
	}

	profile, err := repo.GetByID(ctx, id)
	if err != nil {
		if err == shared.ErrProfileNotFound {
			return nil, shared.ErrUnauthenticated
		}
		return nil, err
	}

	return profile, nil
}

// requireAdmin resolves the caller's profile and verifies the admin flag.
// Admin elevation is never self-assignable through this service.
func requireAdmin(ctx context.Context, repo outbound.ProfileRepository, id uuid.UUID) (*shared.Profile, error) {
	profile, err := requireProfile(ctx, repo, id)
	if err != nil {
		return nil, err
	}

	if !profile.IsAdmin {
		return nil, shared.ErrNotAdmin
	}

	return profile, nil
}
