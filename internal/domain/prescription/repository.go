package prescription

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Filter narrows prescription listings within a project
type Filter struct {
	SpaceID    *uuid.UUID
	Unassigned bool
	Status     *Status
}

// PrescriptionRepository persists prescriptions
type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	Update(ctx context.Context, p *Prescription) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	// FindByIDForUpdate locks the row for the rest of the transaction where supported
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Prescription, error)
	FindByProject(ctx context.Context, projectID uuid.UUID, filter Filter) ([]*Prescription, error)
	FindIDsByProject(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
	CountBySpace(ctx context.Context, spaceID uuid.UUID) (int64, error)
	// SumTotals returns the sum of total_price over the project's prescriptions
	SumTotals(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error)
	DeleteByProject(ctx context.Context, projectID uuid.UUID) error
}

// ApprovalRepository persists approvals
type ApprovalRepository interface {
	// Upsert inserts or overwrites the row keyed by (PrescriptionID, UserID)
	Upsert(ctx context.Context, a *Approval) error
	Find(ctx context.Context, prescriptionID, userID uuid.UUID) (*Approval, error)
	FindByPrescription(ctx context.Context, prescriptionID uuid.UUID) ([]*Approval, error)
	DeleteByPrescriptions(ctx context.Context, prescriptionIDs []uuid.UUID) error
}

// CommentRepository persists comments
type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	FindByPrescription(ctx context.Context, prescriptionID uuid.UUID) ([]*Comment, error)
	DeleteByPrescriptions(ctx context.Context, prescriptionIDs []uuid.UUID) error
}
