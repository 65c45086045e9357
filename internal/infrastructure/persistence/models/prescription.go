package models

import (
	"time"

	"github.com/atelier/backend/internal/domain/prescription"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PrescriptionModel is the persistence model for prescriptions.
type PrescriptionModel struct {
	OwnedAggregateModel
	ProjectID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	SpaceID     *uuid.UUID          `gorm:"type:uuid;index"`
	CategoryID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	ResourceID  *uuid.UUID          `gorm:"type:uuid;index"`
	Name        string              `gorm:"type:varchar(200);not null"`
	Description string              `gorm:"type:text"`
	Brand       string              `gorm:"type:varchar(200)"`
	Reference   string              `gorm:"type:varchar(200)"`
	Supplier    string              `gorm:"type:varchar(200)"`
	ProductURL  string              `gorm:"column:product_url;type:varchar(1000)"`
	Quantity    int                 `gorm:"not null;default:1"`
	UnitPrice   *decimal.Decimal    `gorm:"type:decimal(12,2)"`
	TotalPrice  *decimal.Decimal    `gorm:"type:decimal(14,2)"`
	Status      prescription.Status `gorm:"type:varchar(20);not null;default:'EN_COURS';index"`
	Notes       string              `gorm:"type:text"`
	ValidatedAt *time.Time
	OrderedAt   *time.Time
	DeliveredAt *time.Time
}

// TableName returns the table name for GORM
func (PrescriptionModel) TableName() string {
	return "prescriptions"
}

// ToDomain converts the persistence model to a domain Prescription.
func (m *PrescriptionModel) ToDomain() *prescription.Prescription {
	return &prescription.Prescription{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		ProjectID:          m.ProjectID,
		SpaceID:            m.SpaceID,
		CategoryID:         m.CategoryID,
		ResourceID:         m.ResourceID,
		Name:               m.Name,
		Description:        m.Description,
		Brand:              m.Brand,
		Reference:          m.Reference,
		Supplier:           m.Supplier,
		ProductURL:         m.ProductURL,
		Quantity:           m.Quantity,
		UnitPrice:          m.UnitPrice,
		TotalPrice:         m.TotalPrice,
		Status:             m.Status,
		Notes:              m.Notes,
		ValidatedAt:        m.ValidatedAt,
		OrderedAt:          m.OrderedAt,
		DeliveredAt:        m.DeliveredAt,
	}
}

// PrescriptionModelFromDomain creates a persistence model from a domain Prescription.
func PrescriptionModelFromDomain(p *prescription.Prescription) *PrescriptionModel {
	m := &PrescriptionModel{
		ProjectID:   p.ProjectID,
		SpaceID:     p.SpaceID,
		CategoryID:  p.CategoryID,
		ResourceID:  p.ResourceID,
		Name:        p.Name,
		Description: p.Description,
		Brand:       p.Brand,
		Reference:   p.Reference,
		Supplier:    p.Supplier,
		ProductURL:  p.ProductURL,
		Quantity:    p.Quantity,
		UnitPrice:   p.UnitPrice,
		TotalPrice:  p.TotalPrice,
		Status:      p.Status,
		Notes:       p.Notes,
		ValidatedAt: p.ValidatedAt,
		OrderedAt:   p.OrderedAt,
		DeliveredAt: p.DeliveredAt,
	}
	m.FromDomainOwnedAggregateRoot(p.OwnedAggregateRoot)
	return m
}

// ApprovalModel is unique per (prescription_id, user_id).
type ApprovalModel struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	PrescriptionID uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_approval_prescription_user,priority:1"`
	UserID         uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_approval_prescription_user,priority:2"`
	Status         prescription.ApprovalStatus `gorm:"type:varchar(20);not null"`
	Comment        string                      `gorm:"type:text"`
	CreatedAt      time.Time                   `gorm:"not null"`
	UpdatedAt      time.Time                   `gorm:"not null"`

	UserName string `gorm:"->;-:migration"`
}

// TableName returns the table name for GORM
func (ApprovalModel) TableName() string {
	return "prescription_approvals"
}

// ToDomain converts the row
func (m *ApprovalModel) ToDomain() *prescription.Approval {
	return &prescription.Approval{
		ID:             m.ID,
		PrescriptionID: m.PrescriptionID,
		UserID:         m.UserID,
		Status:         m.Status,
		Comment:        m.Comment,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		UserName:       m.UserName,
	}
}

// ApprovalModelFromDomain maps the row
func ApprovalModelFromDomain(a *prescription.Approval) *ApprovalModel {
	return &ApprovalModel{
		ID:             a.ID,
		PrescriptionID: a.PrescriptionID,
		UserID:         a.UserID,
		Status:         a.Status,
		Comment:        a.Comment,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// CommentModel is an append-only comment row.
type CommentModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	PrescriptionID uuid.UUID `gorm:"type:uuid;not null;index"`
	Content        string    `gorm:"type:text;not null"`
	CreatedBy      uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt      time.Time `gorm:"not null"`

	AuthorName string `gorm:"->;-:migration"`
}

// TableName returns the table name for GORM
func (CommentModel) TableName() string {
	return "prescription_comments"
}

// ToDomain converts the row
func (m *CommentModel) ToDomain() *prescription.Comment {
	return &prescription.Comment{
		ID:             m.ID,
		PrescriptionID: m.PrescriptionID,
		Content:        m.Content,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
		AuthorName:     m.AuthorName,
	}
}

// CommentModelFromDomain maps the row
func CommentModelFromDomain(c *prescription.Comment) *CommentModel {
	return &CommentModel{
		ID:             c.ID,
		PrescriptionID: c.PrescriptionID,
		Content:        c.Content,
		CreatedBy:      c.CreatedBy,
		CreatedAt:      c.CreatedAt,
	}
}
