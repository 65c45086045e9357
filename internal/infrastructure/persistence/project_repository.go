package persistence

import (
	"context"

	"github.com/atelier/backend/internal/domain/project"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormProjectRepository implements project.ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create inserts a project
func (r *GormProjectRepository) Create(ctx context.Context, p *project.Project) error {
	return translateError(r.db.WithContext(ctx).Create(models.ProjectModelFromDomain(p)).Error, "Project")
}

// Update writes the editable columns. budget_spent is owned by AdjustBudgetSpent.
func (r *GormProjectRepository) Update(ctx context.Context, p *project.Project) error {
	m := models.ProjectModelFromDomain(p)
	result := r.db.WithContext(ctx).Model(m).
		Select("*").
		Omit("id", "budget_spent", "created_by", "created_at").
		Updates(m)
	if result.Error != nil {
		return translateError(result.Error, "Project")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Project")
	}
	return nil
}

// Delete removes the project row only; dependents are removed by the caller's transaction
func (r *GormProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProjectModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "Project")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Project")
	}
	return nil
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	var m models.ProjectModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Project")
	}
	return m.ToDomain(), nil
}

// FindAccessible lists projects the user created or was invited to
func (r *GormProjectRepository) FindAccessible(ctx context.Context, userID *uuid.UUID) ([]*project.Project, error) {
	q := r.db.WithContext(ctx).Model(&models.ProjectModel{})
	if userID != nil {
		q = q.Where("created_by = ? OR id IN (?)", *userID,
			r.db.Model(&models.ProjectClientModel{}).Select("project_id").Where("user_id = ?", *userID))
	}
	var rows []models.ProjectModel
	if err := q.Order("updated_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*project.Project, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// AdjustBudgetSpent applies a relative update so concurrent writers never lose increments
func (r *GormProjectRepository) AdjustBudgetSpent(ctx context.Context, projectID uuid.UUID, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.ProjectModel{}).
		Where("id = ?", projectID).
		Update("budget_spent", gorm.Expr("budget_spent + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Project")
	}
	return nil
}

// SetBudgetSpent overwrites the aggregate with a recomputed value
func (r *GormProjectRepository) SetBudgetSpent(ctx context.Context, projectID uuid.UUID, value decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&models.ProjectModel{}).
		Where("id = ?", projectID).
		Update("budget_spent", value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Project")
	}
	return nil
}

// GormSpaceRepository implements project.SpaceRepository using GORM
type GormSpaceRepository struct {
	db *gorm.DB
}

// NewGormSpaceRepository creates a new GormSpaceRepository
func NewGormSpaceRepository(db *gorm.DB) *GormSpaceRepository {
	return &GormSpaceRepository{db: db}
}

// Create inserts a space
func (r *GormSpaceRepository) Create(ctx context.Context, s *project.Space) error {
	return translateError(r.db.WithContext(ctx).Create(models.SpaceModelFromDomain(s)).Error, "Space")
}

// Update saves a space
func (r *GormSpaceRepository) Update(ctx context.Context, s *project.Space) error {
	result := r.db.WithContext(ctx).Save(models.SpaceModelFromDomain(s))
	if result.Error != nil {
		return translateError(result.Error, "Space")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Space")
	}
	return nil
}

// Delete removes a space
func (r *GormSpaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SpaceModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "Space")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Space")
	}
	return nil
}

// FindByID finds a space by ID
func (r *GormSpaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*project.Space, error) {
	var m models.SpaceModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Space")
	}
	return m.ToDomain(), nil
}

// FindByProject lists the project's spaces with their prescription counts
func (r *GormSpaceRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]*project.Space, error) {
	var rows []models.SpaceModel
	err := r.db.WithContext(ctx).Model(&models.SpaceModel{}).
		Select("spaces.*, (SELECT COUNT(*) FROM prescriptions WHERE prescriptions.space_id = spaces.id) AS prescription_count").
		Where("spaces.project_id = ?", projectID).
		Order("spaces.created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*project.Space, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// DeleteByProject removes every space of the project
func (r *GormSpaceRepository) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.SpaceModel{}).Error
}

// GormClientRepository implements project.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// Add inserts a membership; an existing one yields ALREADY_EXISTS
func (r *GormClientRepository) Add(ctx context.Context, c *project.ProjectClient) error {
	return translateError(r.db.WithContext(ctx).Create(models.ProjectClientModelFromDomain(c)).Error, "Project client")
}

// Remove deletes a membership
func (r *GormClientRepository) Remove(ctx context.Context, projectID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectClientModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Project client")
	}
	return nil
}

// Exists reports whether the user is a client of the project
func (r *GormClientRepository) Exists(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProjectClientModel{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

// FindByProject lists memberships with user names
func (r *GormClientRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]*project.ProjectClient, error) {
	var rows []models.ProjectClientModel
	err := r.db.WithContext(ctx).Model(&models.ProjectClientModel{}).
		Select("project_clients.*, users.name AS user_name, users.email AS user_email").
		Joins("JOIN users ON users.id = project_clients.user_id").
		Where("project_clients.project_id = ?", projectID).
		Order("users.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*project.ProjectClient, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// DeleteByProject removes every membership of the project
func (r *GormClientRepository) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.ProjectClientModel{}).Error
}

var (
	_ project.ProjectRepository = (*GormProjectRepository)(nil)
	_ project.SpaceRepository   = (*GormSpaceRepository)(nil)
	_ project.ClientRepository  = (*GormClientRepository)(nil)
)
