package models

import (
	"time"

	"github.com/atelier/backend/internal/domain/document"
	"github.com/google/uuid"
)

// DocumentModel stores metadata of files attached to projects, spaces and prescriptions.
type DocumentModel struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey"`
	OwnerType   document.OwnerType `gorm:"type:varchar(20);not null;index:idx_document_owner,priority:1"`
	OwnerID     uuid.UUID          `gorm:"type:uuid;not null;index:idx_document_owner,priority:2"`
	ProjectID   uuid.UUID          `gorm:"type:uuid;not null;index"`
	Category    document.Category  `gorm:"type:varchar(30);not null;default:'AUTRE'"`
	FileName    string             `gorm:"type:varchar(255);not null"`
	StoragePath string             `gorm:"type:varchar(500);not null;uniqueIndex"`
	ContentType string             `gorm:"type:varchar(150);not null"`
	Size        int64              `gorm:"not null"`
	UploadedBy  uuid.UUID          `gorm:"type:uuid;not null"`
	CreatedAt   time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the row
func (m *DocumentModel) ToDomain() *document.Document {
	return &document.Document{
		ID:          m.ID,
		OwnerType:   m.OwnerType,
		OwnerID:     m.OwnerID,
		ProjectID:   m.ProjectID,
		Category:    m.Category,
		FileName:    m.FileName,
		StoragePath: m.StoragePath,
		ContentType: m.ContentType,
		Size:        m.Size,
		UploadedBy:  m.UploadedBy,
		CreatedAt:   m.CreatedAt,
	}
}

// DocumentModelFromDomain maps the row
func DocumentModelFromDomain(d *document.Document) *DocumentModel {
	return &DocumentModel{
		ID:          d.ID,
		OwnerType:   d.OwnerType,
		OwnerID:     d.OwnerID,
		ProjectID:   d.ProjectID,
		Category:    d.Category,
		FileName:    d.FileName,
		StoragePath: d.StoragePath,
		ContentType: d.ContentType,
		Size:        d.Size,
		UploadedBy:  d.UploadedBy,
		CreatedAt:   d.CreatedAt,
	}
}

// All lists every model, in dependency order, for AutoMigrate in tests and sqlite setups
func All() []any {
	return []any{
		&UserModel{},
		&ParentCategoryModel{},
		&SubCategory1Model{},
		&SubCategory2Model{},
		&PrescriptionCategoryModel{},
		&ResourceModel{},
		&UserFavoriteModel{},
		&ProjectModel{},
		&SpaceModel{},
		&ProjectClientModel{},
		&PrescriptionModel{},
		&ApprovalModel{},
		&CommentModel{},
		&DocumentModel{},
	}
}
