package library

import (
	"context"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ResourceFilter narrows resource listings
type ResourceFilter struct {
	shared.Filter
	SubCategory2ID *uuid.UUID
	SubCategory1ID *uuid.UUID
	ParentID       *uuid.UUID
	CategoryID     *uuid.UUID
	Tag            string
	// FavoritesOf restricts results to resources favorited by this user
	FavoritesOf *uuid.UUID
}

// ResourceRepository persists library resources
type ResourceRepository interface {
	Create(ctx context.Context, r *Resource) error
	Update(ctx context.Context, r *Resource) error
	// Delete removes the resource and its favorites
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Resource, error)
	FindAll(ctx context.Context, filter ResourceFilter) ([]*Resource, int64, error)
}

// FavoriteRepository persists user favorites
type FavoriteRepository interface {
	// Upsert inserts or replaces the row keyed by (UserID, ResourceID)
	Upsert(ctx context.Context, f *UserFavorite) error
	Delete(ctx context.Context, userID, resourceID uuid.UUID) error
	Find(ctx context.Context, userID, resourceID uuid.UUID) (*UserFavorite, error)
	// FindByUser returns favorites with their Resource loaded
	FindByUser(ctx context.Context, userID uuid.UUID, status *FavoriteStatus) ([]*UserFavorite, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
