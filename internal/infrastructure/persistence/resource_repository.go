package persistence

import (
	"context"
	"strings"

	"github.com/atelier/backend/internal/domain/library"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/textnorm"
	"github.com/atelier/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormResourceRepository implements library.ResourceRepository using GORM
type GormResourceRepository struct {
	db *gorm.DB
}

// NewGormResourceRepository creates a new GormResourceRepository
func NewGormResourceRepository(db *gorm.DB) *GormResourceRepository {
	return &GormResourceRepository{db: db}
}

// Create inserts a resource
func (r *GormResourceRepository) Create(ctx context.Context, res *library.Resource) error {
	return translateError(r.db.WithContext(ctx).Create(models.ResourceModelFromDomain(res)).Error, "Resource")
}

// Update saves every column of the resource
func (r *GormResourceRepository) Update(ctx context.Context, res *library.Resource) error {
	result := r.db.WithContext(ctx).Save(models.ResourceModelFromDomain(res))
	if result.Error != nil {
		return translateError(result.Error, "Resource")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Resource")
	}
	return nil
}

// Delete removes the resource and its favorites in one transaction
func (r *GormResourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resource_id = ?", id).Delete(&models.UserFavoriteModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ResourceModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError("Resource")
		}
		return nil
	})
}

// FindByID finds a resource by ID
func (r *GormResourceRepository) FindByID(ctx context.Context, id uuid.UUID) (*library.Resource, error) {
	var m models.ResourceModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Resource")
	}
	return m.ToDomain(), nil
}

// FindAll returns one page of resources and the total matching count
func (r *GormResourceRepository) FindAll(ctx context.Context, filter library.ResourceFilter) ([]*library.Resource, int64, error) {
	page := filter.Filter.Normalize()
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ResourceModel{}), filter).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(page.OrderBy, ResourceSortFields, "name")
	dir := "ASC"
	if page.OrderDir != "" {
		dir = ValidateSortOrder(page.OrderDir)
	}

	var rows []models.ResourceModel
	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: orderBy}, Desc: dir == "DESC"}).
		Order("id").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]*library.Resource, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

func (r *GormResourceRepository) applyFilter(q *gorm.DB, f library.ResourceFilter) *gorm.DB {
	if key := textnorm.Key(f.Search); key != "" {
		q = q.Where(`search_key LIKE ? ESCAPE '\'`, "%"+escapeLike(key)+"%")
	}
	switch {
	case f.SubCategory2ID != nil:
		q = q.Where("sub_category_2_id = ?", *f.SubCategory2ID)
	case f.SubCategory1ID != nil:
		q = q.Where("sub_category_2_id IN (?)",
			r.db.Model(&models.SubCategory2Model{}).Select("id").Where("sub_category_1_id = ?", *f.SubCategory1ID))
	case f.ParentID != nil:
		q = q.Where("sub_category_2_id IN (?)",
			r.db.Table("sub_categories_2 AS s2").
				Select("s2.id").
				Joins("JOIN sub_categories_1 AS s1 ON s1.id = s2.sub_category_1_id").
				Where("s1.parent_id = ?", *f.ParentID))
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if tag := strings.TrimSpace(f.Tag); tag != "" {
		if isPostgres(r.db) {
			q = q.Where("EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE LOWER(t) = LOWER(?))", tag)
		} else {
			// array literal elements are always double-quoted
			q = q.Where(`LOWER(tags) LIKE ? ESCAPE '\'`, `%"`+escapeLike(strings.ToLower(tag))+`"%`)
		}
	}
	if f.FavoritesOf != nil {
		q = q.Where("id IN (?)",
			r.db.Model(&models.UserFavoriteModel{}).Select("resource_id").Where("user_id = ?", *f.FavoritesOf))
	}
	return q
}

// escapeLike neutralizes LIKE wildcards in user input
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// GormFavoriteRepository implements library.FavoriteRepository using GORM
type GormFavoriteRepository struct {
	db *gorm.DB
}

// NewGormFavoriteRepository creates a new GormFavoriteRepository
func NewGormFavoriteRepository(db *gorm.DB) *GormFavoriteRepository {
	return &GormFavoriteRepository{db: db}
}

// Upsert inserts the favorite or replaces status and notes of the existing row
func (r *GormFavoriteRepository) Upsert(ctx context.Context, f *library.UserFavorite) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "resource_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "notes", "updated_at"}),
		}).
		Create(models.UserFavoriteModelFromDomain(f)).Error
	return translateError(err, "Favorite")
}

// Delete removes a favorite
func (r *GormFavoriteRepository) Delete(ctx context.Context, userID, resourceID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND resource_id = ?", userID, resourceID).
		Delete(&models.UserFavoriteModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Favorite")
	}
	return nil
}

// Find loads one favorite
func (r *GormFavoriteRepository) Find(ctx context.Context, userID, resourceID uuid.UUID) (*library.UserFavorite, error) {
	var m models.UserFavoriteModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND resource_id = ?", userID, resourceID).
		First(&m).Error
	if err != nil {
		return nil, translateError(err, "Favorite")
	}
	return m.ToDomain(), nil
}

// FindByUser returns the user's favorites, most recently changed first
func (r *GormFavoriteRepository) FindByUser(ctx context.Context, userID uuid.UUID, status *library.FavoriteStatus) ([]*library.UserFavorite, error) {
	q := r.db.WithContext(ctx).Preload("Resource").Where("user_id = ?", userID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var rows []models.UserFavoriteModel
	if err := q.Order("updated_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*library.UserFavorite, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// CountByUser counts the user's favorites
func (r *GormFavoriteRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserFavoriteModel{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

var (
	_ library.ResourceRepository = (*GormResourceRepository)(nil)
	_ library.FavoriteRepository = (*GormFavoriteRepository)(nil)
)
