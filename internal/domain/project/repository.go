package project

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectRepository persists projects
type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	// Update writes editable fields; budget_spent is never written here
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	// FindAccessible returns projects created by userID or shared with them; all when userID is nil
	FindAccessible(ctx context.Context, userID *uuid.UUID) ([]*Project, error)
	// AdjustBudgetSpent applies budget_spent = budget_spent + delta in the database
	AdjustBudgetSpent(ctx context.Context, projectID uuid.UUID, delta decimal.Decimal) error
	// SetBudgetSpent overwrites the aggregate; reserved for recalculation
	SetBudgetSpent(ctx context.Context, projectID uuid.UUID, value decimal.Decimal) error
}

// SpaceRepository persists spaces
type SpaceRepository interface {
	Create(ctx context.Context, s *Space) error
	Update(ctx context.Context, s *Space) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Space, error)
	// FindByProject returns spaces with PrescriptionCount filled
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]*Space, error)
	DeleteByProject(ctx context.Context, projectID uuid.UUID) error
}

// ClientRepository persists ProjectClient memberships
type ClientRepository interface {
	Add(ctx context.Context, c *ProjectClient) error
	Remove(ctx context.Context, projectID, userID uuid.UUID) error
	Exists(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]*ProjectClient, error)
	DeleteByProject(ctx context.Context, projectID uuid.UUID) error
}
