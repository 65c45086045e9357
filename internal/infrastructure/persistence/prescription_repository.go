package persistence

import (
	"context"

	"github.com/atelier/backend/internal/domain/prescription"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPrescriptionRepository implements prescription.PrescriptionRepository using GORM
type GormPrescriptionRepository struct {
	db *gorm.DB
}

// NewGormPrescriptionRepository creates a new GormPrescriptionRepository
func NewGormPrescriptionRepository(db *gorm.DB) *GormPrescriptionRepository {
	return &GormPrescriptionRepository{db: db}
}

// Create inserts a prescription
func (r *GormPrescriptionRepository) Create(ctx context.Context, p *prescription.Prescription) error {
	return translateError(r.db.WithContext(ctx).Create(models.PrescriptionModelFromDomain(p)).Error, "Prescription")
}

// Update saves every column of the prescription
func (r *GormPrescriptionRepository) Update(ctx context.Context, p *prescription.Prescription) error {
	result := r.db.WithContext(ctx).Save(models.PrescriptionModelFromDomain(p))
	if result.Error != nil {
		return translateError(result.Error, "Prescription")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Prescription")
	}
	return nil
}

// Delete removes a prescription row
func (r *GormPrescriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PrescriptionModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "Prescription")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Prescription")
	}
	return nil
}

// FindByID finds a prescription by ID
func (r *GormPrescriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	var m models.PrescriptionModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Prescription")
	}
	return m.ToDomain(), nil
}

// FindByIDForUpdate takes a row lock on PostgreSQL; sqlite serializes writers already
func (r *GormPrescriptionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	q := r.db.WithContext(ctx)
	if isPostgres(r.db) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var m models.PrescriptionModel
	if err := q.First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Prescription")
	}
	return m.ToDomain(), nil
}

// FindByProject lists a project's prescriptions, oldest first
func (r *GormPrescriptionRepository) FindByProject(ctx context.Context, projectID uuid.UUID, filter prescription.Filter) ([]*prescription.Prescription, error) {
	q := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	switch {
	case filter.SpaceID != nil:
		q = q.Where("space_id = ?", *filter.SpaceID)
	case filter.Unassigned:
		q = q.Where("space_id IS NULL")
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	var rows []models.PrescriptionModel
	if err := q.Order("created_at ASC").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*prescription.Prescription, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindIDsByProject returns only the IDs of a project's prescriptions
func (r *GormPrescriptionRepository) FindIDsByProject(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.PrescriptionModel{}).
		Where("project_id = ?", projectID).
		Pluck("id", &ids).Error
	return ids, err
}

// CountBySpace counts prescriptions assigned to a space
func (r *GormPrescriptionRepository) CountBySpace(ctx context.Context, spaceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PrescriptionModel{}).Where("space_id = ?", spaceID).Count(&count).Error
	return count, err
}

// SumTotals adds up total_price over the project, whatever the status
func (r *GormPrescriptionRepository) SumTotals(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&models.PrescriptionModel{}).
		Select("SUM(total_price)").
		Where("project_id = ?", projectID).
		Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal.Round(2), nil
}

// DeleteByProject removes every prescription of the project
func (r *GormPrescriptionRepository) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.PrescriptionModel{}).Error
}

// GormApprovalRepository implements prescription.ApprovalRepository using GORM
type GormApprovalRepository struct {
	db *gorm.DB
}

// NewGormApprovalRepository creates a new GormApprovalRepository
func NewGormApprovalRepository(db *gorm.DB) *GormApprovalRepository {
	return &GormApprovalRepository{db: db}
}

// Upsert creates the approval or overwrites status and comment of the existing one
func (r *GormApprovalRepository) Upsert(ctx context.Context, a *prescription.Approval) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "prescription_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "comment", "updated_at"}),
		}).
		Create(models.ApprovalModelFromDomain(a)).Error
	return translateError(err, "Approval")
}

// Find loads the approval of one user
func (r *GormApprovalRepository) Find(ctx context.Context, prescriptionID, userID uuid.UUID) (*prescription.Approval, error) {
	var m models.ApprovalModel
	err := r.db.WithContext(ctx).
		Where("prescription_id = ? AND user_id = ?", prescriptionID, userID).
		First(&m).Error
	if err != nil {
		return nil, translateError(err, "Approval")
	}
	return m.ToDomain(), nil
}

// FindByPrescription lists approvals with the approver names
func (r *GormApprovalRepository) FindByPrescription(ctx context.Context, prescriptionID uuid.UUID) ([]*prescription.Approval, error) {
	var rows []models.ApprovalModel
	err := r.db.WithContext(ctx).Model(&models.ApprovalModel{}).
		Select("prescription_approvals.*, users.name AS user_name").
		Joins("LEFT JOIN users ON users.id = prescription_approvals.user_id").
		Where("prescription_approvals.prescription_id = ?", prescriptionID).
		Order("prescription_approvals.updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*prescription.Approval, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// DeleteByPrescriptions removes approvals of the given prescriptions
func (r *GormApprovalRepository) DeleteByPrescriptions(ctx context.Context, prescriptionIDs []uuid.UUID) error {
	if len(prescriptionIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("prescription_id IN ?", prescriptionIDs).Delete(&models.ApprovalModel{}).Error
}

// GormCommentRepository implements prescription.CommentRepository using GORM
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Create appends a comment
func (r *GormCommentRepository) Create(ctx context.Context, c *prescription.Comment) error {
	return translateError(r.db.WithContext(ctx).Create(models.CommentModelFromDomain(c)).Error, "Comment")
}

// FindByPrescription lists comments oldest first with author names
func (r *GormCommentRepository) FindByPrescription(ctx context.Context, prescriptionID uuid.UUID) ([]*prescription.Comment, error) {
	var rows []models.CommentModel
	err := r.db.WithContext(ctx).Model(&models.CommentModel{}).
		Select("prescription_comments.*, users.name AS author_name").
		Joins("LEFT JOIN users ON users.id = prescription_comments.created_by").
		Where("prescription_comments.prescription_id = ?", prescriptionID).
		Order("prescription_comments.created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*prescription.Comment, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// DeleteByPrescriptions removes comments of the given prescriptions
func (r *GormCommentRepository) DeleteByPrescriptions(ctx context.Context, prescriptionIDs []uuid.UUID) error {
	if len(prescriptionIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("prescription_id IN ?", prescriptionIDs).Delete(&models.CommentModel{}).Error
}

var (
	_ prescription.PrescriptionRepository = (*GormPrescriptionRepository)(nil)
	_ prescription.ApprovalRepository     = (*GormApprovalRepository)(nil)
	_ prescription.CommentRepository      = (*GormCommentRepository)(nil)
)
