package persistence

import (
	"context"

	"github.com/atelier/backend/internal/domain/document"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentRepository implements document.Repository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// Create inserts document metadata
func (r *GormDocumentRepository) Create(ctx context.Context, d *document.Document) error {
	return translateError(r.db.WithContext(ctx).Create(models.DocumentModelFromDomain(d)).Error, "Document")
}

// FindByID finds a document by ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var m models.DocumentModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Document")
	}
	return m.ToDomain(), nil
}

// FindByOwner lists the documents of one owner, newest first
func (r *GormDocumentRepository) FindByOwner(ctx context.Context, ownerType document.OwnerType, ownerID uuid.UUID) ([]*document.Document, error) {
	return r.find(r.db.WithContext(ctx).Where("owner_type = ? AND owner_id = ?", ownerType, ownerID))
}

// FindByProject lists every document of the project, newest first
func (r *GormDocumentRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]*document.Document, error) {
	return r.find(r.db.WithContext(ctx).Where("project_id = ?", projectID))
}

func (r *GormDocumentRepository) find(q *gorm.DB) ([]*document.Document, error) {
	var rows []models.DocumentModel
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDocuments(rows), nil
}

// Delete removes a document row
func (r *GormDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DocumentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Document")
	}
	return nil
}

// DeleteByOwners removes the rows of the given owners and returns them
func (r *GormDocumentRepository) DeleteByOwners(ctx context.Context, ownerType document.OwnerType, ownerIDs []uuid.UUID) ([]*document.Document, error) {
	if len(ownerIDs) == 0 {
		return []*document.Document{}, nil
	}
	return r.deleteReturning(r.db.WithContext(ctx).Where("owner_type = ? AND owner_id IN ?", ownerType, ownerIDs))
}

// DeleteByProject removes every row of the project and returns them
func (r *GormDocumentRepository) DeleteByProject(ctx context.Context, projectID uuid.UUID) ([]*document.Document, error) {
	return r.deleteReturning(r.db.WithContext(ctx).Where("project_id = ?", projectID))
}

func (r *GormDocumentRepository) deleteReturning(q *gorm.DB) ([]*document.Document, error) {
	q = q.Session(&gorm.Session{})
	var rows []models.DocumentModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*document.Document{}, nil
	}
	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	if err := r.db.WithContext(q.Statement.Context).Where("id IN ?", ids).Delete(&models.DocumentModel{}).Error; err != nil {
		return nil, err
	}
	return toDocuments(rows), nil
}

func toDocuments(rows []models.DocumentModel) []*document.Document {
	out := make([]*document.Document, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var _ document.Repository = (*GormDocumentRepository)(nil)
