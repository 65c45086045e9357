package library

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/domain/library"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/textnorm"
	"github.com/atelier/backend/internal/infrastructure/csvimport"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResourceService manages the shared library and per-user favorites
type ResourceService struct {
	resources  library.ResourceRepository
	favorites  library.FavoriteRepository
	hierarchy  catalog.HierarchyRepository
	categories catalog.PrescriptionCategoryRepository
	logger     *zap.Logger
}

// NewResourceService creates a new ResourceService
func NewResourceService(
	resources library.ResourceRepository,
	favorites library.FavoriteRepository,
	hierarchy catalog.HierarchyRepository,
	categories catalog.PrescriptionCategoryRepository,
	logger *zap.Logger,
) *ResourceService {
	return &ResourceService{
		resources:  resources,
		favorites:  favorites,
		hierarchy:  hierarchy,
		categories: categories,
		logger:     logger,
	}
}

// List returns a page of resources ordered by name
func (s *ResourceService) List(ctx context.Context, userID uuid.UUID, in ListResourcesInput) (shared.Paginated[ResourceResponse], error) {
	filter := library.ResourceFilter{
		Filter: shared.Filter{
			Page:     in.Page,
			PageSize: in.PageSize,
			OrderBy:  "name",
			OrderDir: "asc",
			Search:   strings.TrimSpace(in.Search),
		}.Normalize(),
		SubCategory2ID: in.SubCategory2ID,
		SubCategory1ID: in.SubCategory1ID,
		ParentID:       in.ParentID,
		CategoryID:     in.CategoryID,
		Tag:            strings.TrimSpace(in.Tag),
	}
	if in.FavoritesOnly {
		filter.FavoritesOf = &userID
	}

	list, total, err := s.resources.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ResourceResponse]{}, err
	}
	items := make([]ResourceResponse, 0, len(list))
	for _, r := range list {
		items = append(items, ToResourceResponse(r))
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns one resource
func (s *ResourceService) Get(ctx context.Context, id uuid.UUID) (*ResourceResponse, error) {
	r, err := s.resources.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToResourceResponse(r)
	return &resp, nil
}

// Create adds a resource. The breadcrumb is derived from the leaf when one is given.
func (s *ResourceService) Create(ctx context.Context, createdBy uuid.UUID, in CreateResourceInput) (*ResourceResponse, error) {
	if err := s.requireCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	r, err := library.NewResource(createdBy, in.CategoryID, library.ResourceDetails{
		Name:          in.Name,
		Description:   in.Description,
		Brand:         in.Brand,
		Reference:     in.Reference,
		ImageURL:      in.ImageURL,
		ProductURL:    in.ProductURL,
		Price:         in.Price,
		PricePro:      in.PricePro,
		Supplier:      in.Supplier,
		CountryOrigin: in.CountryOrigin,
		Tags:          in.Tags,
	})
	if err != nil {
		return nil, err
	}
	if in.SubCategory2ID != nil {
		if err := s.linkLeaf(ctx, r, *in.SubCategory2ID); err != nil {
			return nil, err
		}
	}
	if err := s.resources.Create(ctx, r); err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("Resource created", zap.String("resource_id", r.ID.String()))
	resp := ToResourceResponse(r)
	return &resp, nil
}

// Update applies a partial update
func (s *ResourceService) Update(ctx context.Context, id uuid.UUID, in UpdateResourceInput) (*ResourceResponse, error) {
	r, err := s.resources.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.Update(in.apply(r)); err != nil {
		return nil, err
	}
	if in.CategoryID != nil && *in.CategoryID != r.CategoryID {
		if err := s.requireCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		if err := r.SetCategory(*in.CategoryID); err != nil {
			return nil, err
		}
	}
	switch {
	case in.ClearSubCategory2:
		r.UnlinkLeaf()
	case in.SubCategory2ID != nil:
		if err := s.linkLeaf(ctx, r, *in.SubCategory2ID); err != nil {
			return nil, err
		}
	}
	if err := s.resources.Update(ctx, r); err != nil {
		return nil, err
	}
	resp := ToResourceResponse(r)
	return &resp, nil
}

// Delete removes the resource; its favorites go with it
func (s *ResourceService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.resources.Delete(ctx, id); err != nil {
		return err
	}
	logger.Enrich(ctx, s.logger).Info("Resource deleted", zap.String("resource_id", id.String()))
	return nil
}

func (s *ResourceService) requireCategory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return shared.NewValidationError("categoryId is required")
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewValidationError("categoryId does not reference a known category")
		}
		return err
	}
	return nil
}

func (s *ResourceService) linkLeaf(ctx context.Context, r *library.Resource, sub2ID uuid.UUID) error {
	leaf, err := s.hierarchy.FindLeaf(ctx, sub2ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewValidationError("subCategory2Id does not reference a known sub-category")
		}
		return err
	}
	r.LinkLeaf(leaf.Sub2.ID, leaf.Path())
	return nil
}

// ImportCSV creates one resource per decodable row. Rows with an unknown
// category path or category are skipped with a warning; the batch never aborts
// on a single row.
func (s *ResourceService) ImportCSV(ctx context.Context, createdBy uuid.UUID, r io.Reader) (result *ImportResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "resource", "ImportCSV")
	defer func() { telemetry.EndSpan(span, err) }()

	rows, warnings, err := csvimport.ReadResources(r)
	if err != nil {
		return nil, shared.WrapDomainError(shared.CodeValidation, err.Error(), err)
	}

	tree, err := s.hierarchy.Tree(ctx)
	if err != nil {
		return nil, err
	}
	index := catalog.NewPathIndex(tree)
	bySlug, err := s.categoriesBySlug(ctx)
	if err != nil {
		return nil, err
	}

	result = &ImportResult{Warnings: warnings}
	for _, row := range rows {
		if w := s.importRow(ctx, createdBy, row, index, bySlug); w != nil {
			result.Warnings = append(result.Warnings, w)
			continue
		}
		result.Imported++
	}
	result.Skipped = len(result.Warnings)
	if result.Warnings == nil {
		result.Warnings = []*csvimport.RowError{}
	}

	logger.Enrich(ctx, s.logger).Info("Library CSV imported",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *ResourceService) importRow(
	ctx context.Context,
	createdBy uuid.UUID,
	row csvimport.ResourceRow,
	index *catalog.PathIndex,
	bySlug map[string]uuid.UUID,
) *csvimport.RowError {
	var leaf *catalog.Leaf
	if row.Parent != "" || row.Sub1 != "" || row.Sub2 != "" {
		if !row.HasPath() {
			return &csvimport.RowError{Line: row.Line, Column: csvimport.ColSub2, Message: "incomplete category path"}
		}
		l, ok := index.Resolve(row.Parent, row.Sub1, row.Sub2)
		if !ok {
			return &csvimport.RowError{Line: row.Line, Column: csvimport.ColSub2,
				Message: "unknown category path " + row.Parent + " > " + row.Sub1 + " > " + row.Sub2}
		}
		leaf = &l
	}

	categoryName := row.Category
	if categoryName == "" {
		categoryName = row.Parent
	}
	categoryID, ok := bySlug[textnorm.Slug(categoryName)]
	if !ok {
		return &csvimport.RowError{Line: row.Line, Column: csvimport.ColCategory, Message: "unknown category " + categoryName}
	}

	res, err := library.NewResource(createdBy, categoryID, library.ResourceDetails{
		Name:          row.Name,
		Description:   row.Description,
		Brand:         row.Brand,
		Reference:     row.Reference,
		ImageURL:      row.ImageURL,
		ProductURL:    row.ProductURL,
		Price:         row.Price,
		PricePro:      row.PricePro,
		Supplier:      row.Supplier,
		CountryOrigin: row.CountryOrigin,
		Tags:          row.Tags,
	})
	if err != nil {
		return &csvimport.RowError{Line: row.Line, Message: err.Error()}
	}
	if leaf != nil {
		res.LinkLeaf(leaf.Sub2.ID, leaf.Path())
	}
	if err := s.resources.Create(ctx, res); err != nil {
		logger.Enrich(ctx, s.logger).Warn("Failed to import resource row", zap.Int("line", row.Line), zap.Error(err))
		return &csvimport.RowError{Line: row.Line, Message: "could not be saved"}
	}
	return nil
}

func (s *ResourceService) categoriesBySlug(ctx context.Context) (map[string]uuid.UUID, error) {
	list, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]uuid.UUID, len(list))
	for _, c := range list {
		out[c.Slug] = c.ID
	}
	return out, nil
}

// SetFavorite creates or replaces the caller's favorite on a resource
func (s *ResourceService) SetFavorite(ctx context.Context, userID, resourceID uuid.UUID, status library.FavoriteStatus, notes string) (*FavoriteResponse, error) {
	res, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	fav, err := library.NewUserFavorite(userID, resourceID, status, notes)
	if err != nil {
		return nil, err
	}
	if err := s.favorites.Upsert(ctx, fav); err != nil {
		return nil, err
	}
	fav.Resource = res
	resp := ToFavoriteResponse(fav)
	return &resp, nil
}

// RemoveFavorite deletes the caller's favorite
func (s *ResourceService) RemoveFavorite(ctx context.Context, userID, resourceID uuid.UUID) error {
	return s.favorites.Delete(ctx, userID, resourceID)
}

// ListFavorites returns the caller's favorites, optionally by status
func (s *ResourceService) ListFavorites(ctx context.Context, userID uuid.UUID, status *library.FavoriteStatus) ([]FavoriteResponse, error) {
	if status != nil && !status.IsValid() {
		return nil, shared.NewValidationError("Status must be one of PAS_OK, OK, J_ADORE")
	}
	list, err := s.favorites.FindByUser(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	out := make([]FavoriteResponse, 0, len(list))
	for _, f := range list {
		out = append(out, ToFavoriteResponse(f))
	}
	return out, nil
}
