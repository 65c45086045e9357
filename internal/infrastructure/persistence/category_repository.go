package persistence

import (
	"context"

	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormHierarchyRepository implements catalog.HierarchyRepository using GORM
type GormHierarchyRepository struct {
	db *gorm.DB
}

// NewGormHierarchyRepository creates a new GormHierarchyRepository
func NewGormHierarchyRepository(db *gorm.DB) *GormHierarchyRepository {
	return &GormHierarchyRepository{db: db}
}

func byDisplayOrder(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC").Order("name ASC")
}

// Tree loads the three levels ordered by display order at every level
func (r *GormHierarchyRepository) Tree(ctx context.Context) ([]*catalog.ParentCategory, error) {
	var rows []models.ParentCategoryModel
	err := r.db.WithContext(ctx).
		Preload("SubCategories", byDisplayOrder).
		Preload("SubCategories.SubCategories", byDisplayOrder).
		Scopes(byDisplayOrder).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	tree := make([]*catalog.ParentCategory, len(rows))
	for i := range rows {
		tree[i] = rows[i].ToDomain()
	}
	catalog.SortTree(tree)
	return tree, nil
}

// FindParentByID loads a parent with its direct sub-categories
func (r *GormHierarchyRepository) FindParentByID(ctx context.Context, id uuid.UUID) (*catalog.ParentCategory, error) {
	var m models.ParentCategoryModel
	if err := r.db.WithContext(ctx).Preload("SubCategories", byDisplayOrder).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Parent category")
	}
	return m.ToDomain(), nil
}

// FindSubCategory1ByID loads a sub-category with its leaves
func (r *GormHierarchyRepository) FindSubCategory1ByID(ctx context.Context, id uuid.UUID) (*catalog.SubCategory1, error) {
	var m models.SubCategory1Model
	if err := r.db.WithContext(ctx).Preload("SubCategories", byDisplayOrder).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Sub-category")
	}
	return m.ToDomain(), nil
}

// FindLeaf loads a SubCategory2 with its ancestors
func (r *GormHierarchyRepository) FindLeaf(ctx context.Context, sub2ID uuid.UUID) (*catalog.Leaf, error) {
	db := r.db.WithContext(ctx)
	var sub2 models.SubCategory2Model
	if err := db.First(&sub2, "id = ?", sub2ID).Error; err != nil {
		return nil, translateError(err, "Sub-category")
	}
	var sub1 models.SubCategory1Model
	if err := db.First(&sub1, "id = ?", sub2.SubCategory1ID).Error; err != nil {
		return nil, translateError(err, "Sub-category")
	}
	var parent models.ParentCategoryModel
	if err := db.First(&parent, "id = ?", sub1.ParentID).Error; err != nil {
		return nil, translateError(err, "Parent category")
	}
	return &catalog.Leaf{
		Parent: *parent.ToDomain(),
		Sub1:   *sub1.ToDomain(),
		Sub2:   *sub2.ToDomain(),
	}, nil
}

// ExistsParentByName compares names case-insensitively
func (r *GormHierarchyRepository) ExistsParentByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ParentCategoryModel{}).
		Where("LOWER(name) = LOWER(?)", name).
		Count(&count).Error
	return count > 0, err
}

// CreateParent inserts the parent row only
func (r *GormHierarchyRepository) CreateParent(ctx context.Context, parent *catalog.ParentCategory) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(models.ParentCategoryModelFromDomain(parent)).Error
	return translateError(err, "Category")
}

// CreateSubCategory1 inserts a second-level row
func (r *GormHierarchyRepository) CreateSubCategory1(ctx context.Context, sub *catalog.SubCategory1) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(models.SubCategory1ModelFromDomain(sub)).Error
	return translateError(err, "Sub-category")
}

// CreateSubCategory2 inserts a leaf row
func (r *GormHierarchyRepository) CreateSubCategory2(ctx context.Context, sub *catalog.SubCategory2) error {
	err := r.db.WithContext(ctx).Create(models.SubCategory2ModelFromDomain(sub)).Error
	return translateError(err, "Sub-category")
}

// NextParentOrder returns the highest parent display order plus one
func (r *GormHierarchyRepository) NextParentOrder(ctx context.Context) (int, error) {
	var highest int
	err := r.db.WithContext(ctx).Model(&models.ParentCategoryModel{}).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&highest).Error
	return highest + 1, err
}

// ReplaceAll swaps the whole hierarchy in one transaction
func (r *GormHierarchyRepository) ReplaceAll(ctx context.Context, tree []*catalog.ParentCategory) (catalog.RelinkReport, error) {
	var report catalog.RelinkReport
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ResourceModel{}).
			Where("sub_category_2_id IS NOT NULL").
			Update("sub_category_2_id", nil).Error; err != nil {
			return err
		}
		// leaf-to-root
		for _, m := range []any{&models.SubCategory2Model{}, &models.SubCategory1Model{}, &models.ParentCategoryModel{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return err
			}
		}

		for _, p := range tree {
			if err := tx.Omit(clause.Associations).Create(models.ParentCategoryModelFromDomain(p)).Error; err != nil {
				return translateError(err, "Category")
			}
			for _, s1 := range p.SubCategories {
				if err := tx.Omit(clause.Associations).Create(models.SubCategory1ModelFromDomain(s1)).Error; err != nil {
					return translateError(err, "Sub-category")
				}
				for _, s2 := range s1.SubCategories {
					if err := tx.Create(models.SubCategory2ModelFromDomain(s2)).Error; err != nil {
						return translateError(err, "Sub-category")
					}
				}
			}
		}

		var err error
		report, err = relinkResources(tx, catalog.NewPathIndex(tree))
		return err
	})
	return report, err
}

// relinkResources restores leaf links from the stored breadcrumbs
func relinkResources(tx *gorm.DB, idx *catalog.PathIndex) (catalog.RelinkReport, error) {
	var report catalog.RelinkReport
	var rows []models.ResourceModel
	if err := tx.Select("id", "category_path").Find(&rows).Error; err != nil {
		return report, err
	}
	for _, row := range rows {
		path := row.CategoryPath
		if len(path) != 3 {
			continue
		}
		leaf, ok := idx.Resolve(path[0], path[1], path[2])
		if !ok {
			report.Unresolved = append(report.Unresolved, row.ID)
			continue
		}
		if err := tx.Model(&models.ResourceModel{}).Where("id = ?", row.ID).
			Updates(map[string]any{
				"sub_category_2_id": leaf.Sub2.ID,
				"category_path":     models.StringList(leaf.Path()),
			}).Error; err != nil {
			return report, err
		}
		report.Relinked++
	}
	return report, nil
}

// Counts reports the row count of each level
func (r *GormHierarchyRepository) Counts(ctx context.Context) (catalog.TaxonomyCounts, error) {
	var c catalog.TaxonomyCounts
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.ParentCategoryModel{}).Count(&c.Parents).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.SubCategory1Model{}).Count(&c.SubCategories1).Error; err != nil {
		return c, err
	}
	err := db.Model(&models.SubCategory2Model{}).Count(&c.SubCategories2).Error
	return c, err
}

// GormPrescriptionCategoryRepository implements catalog.PrescriptionCategoryRepository
type GormPrescriptionCategoryRepository struct {
	db *gorm.DB
}

// NewGormPrescriptionCategoryRepository creates a new GormPrescriptionCategoryRepository
func NewGormPrescriptionCategoryRepository(db *gorm.DB) *GormPrescriptionCategoryRepository {
	return &GormPrescriptionCategoryRepository{db: db}
}

// FindAll returns every category ordered by name
func (r *GormPrescriptionCategoryRepository) FindAll(ctx context.Context) ([]*catalog.PrescriptionCategory, error) {
	var rows []models.PrescriptionCategoryModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*catalog.PrescriptionCategory, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindByID finds a category by ID
func (r *GormPrescriptionCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.PrescriptionCategory, error) {
	var m models.PrescriptionCategoryModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Category")
	}
	return m.ToDomain(), nil
}

// FindBySlug finds a category by slug
func (r *GormPrescriptionCategoryRepository) FindBySlug(ctx context.Context, slug string) (*catalog.PrescriptionCategory, error) {
	var m models.PrescriptionCategoryModel
	if err := r.db.WithContext(ctx).First(&m, "slug = ?", slug).Error; err != nil {
		return nil, translateError(err, "Category")
	}
	return m.ToDomain(), nil
}

// ExistsBySlug checks whether the slug is taken
func (r *GormPrescriptionCategoryRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PrescriptionCategoryModel{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// Create inserts a category
func (r *GormPrescriptionCategoryRepository) Create(ctx context.Context, c *catalog.PrescriptionCategory) error {
	return translateError(r.db.WithContext(ctx).Create(models.PrescriptionCategoryModelFromDomain(c)).Error, "Category")
}

var (
	_ catalog.HierarchyRepository            = (*GormHierarchyRepository)(nil)
	_ catalog.PrescriptionCategoryRepository = (*GormPrescriptionCategoryRepository)(nil)
)
