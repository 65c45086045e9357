package document

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists document metadata
type Repository interface {
	Create(ctx context.Context, d *Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)
	FindByOwner(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID) ([]*Document, error)
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByOwners removes rows and returns them so their files can be removed afterwards
	DeleteByOwners(ctx context.Context, ownerType OwnerType, ownerIDs []uuid.UUID) ([]*Document, error)
	// DeleteByProject removes every row of the project, whatever the owner
	DeleteByProject(ctx context.Context, projectID uuid.UUID) ([]*Document, error)
}
