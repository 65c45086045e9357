package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/textnorm"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// defaultColors is cycled over the parents of the seed taxonomy
var defaultColors = []string{"#8C6D4F", "#E0B04A", "#7A8C6E", "#B5656B", "#4F7A8C"}

// CategoryService handles the category hierarchy and the coarse prescription categories
type CategoryService struct {
	hierarchy  catalog.HierarchyRepository
	categories catalog.PrescriptionCategoryRepository
	logger     *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	hierarchy catalog.HierarchyRepository,
	categories catalog.PrescriptionCategoryRepository,
	logger *zap.Logger,
) *CategoryService {
	return &CategoryService{
		hierarchy:  hierarchy,
		categories: categories,
		logger:     logger,
	}
}

// Tree returns every parent ordered by display order, each level nested and ordered
func (s *CategoryService) Tree(ctx context.Context) ([]ParentNode, error) {
	tree, err := s.hierarchy.Tree(ctx)
	if err != nil {
		return nil, err
	}
	catalog.SortTree(tree)

	nodes := make([]ParentNode, 0, len(tree))
	for _, p := range tree {
		nodes = append(nodes, ToParentNode(p))
	}
	return nodes, nil
}

// ImportTaxonomy replaces the hierarchy with the fixed taxonomy and makes sure a
// prescription category exists for each parent. User-created prescription
// categories are kept.
func (s *CategoryService) ImportTaxonomy(ctx context.Context) (result *ImportResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "category", "ImportTaxonomy")
	defer func() { telemetry.EndSpan(span, err) }()

	seed := catalog.DefaultTaxonomy()
	tree, err := catalog.BuildTree(seed)
	if err != nil {
		return nil, err
	}

	report, err := s.hierarchy.ReplaceAll(ctx, tree)
	if err != nil {
		return nil, err
	}
	created, err := s.ensurePrescriptionCategories(ctx, seed)
	if err != nil {
		return nil, err
	}
	counts, err := s.hierarchy.Counts(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.Enrich(ctx, s.logger)
	if len(report.Unresolved) > 0 {
		log.Warn("Resources lost their sub-category in taxonomy import",
			zap.Int("count", len(report.Unresolved)),
			zap.Stringers("resource_ids", report.Unresolved),
		)
	}
	log.Info("Taxonomy imported",
		zap.Int64("parents", counts.Parents),
		zap.Int64("sub_categories_1", counts.SubCategories1),
		zap.Int64("sub_categories_2", counts.SubCategories2),
		zap.Int("resources_relinked", report.Relinked),
	)
	return &ImportResult{
		TaxonomyCounts:    counts,
		ResourcesRelinked: report.Relinked,
		ResourcesUnlinked: report.Unresolved,
		CategoriesCreated: created,
		ExpectedLeafCount: catalog.CountSeedLeaves(seed),
	}, nil
}

func (s *CategoryService) ensurePrescriptionCategories(ctx context.Context, seed []catalog.TaxonomyNode) (int, error) {
	created := 0
	for i, node := range seed {
		exists, err := s.categories.ExistsBySlug(ctx, textnorm.Slug(node.Name))
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		c, err := catalog.NewPrescriptionCategory(node.Name, defaultColors[i%len(defaultColors)])
		if err != nil {
			return created, err
		}
		if err := s.categories.Create(ctx, c); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// CreateParent appends a parent category after the last one
func (s *CategoryService) CreateParent(ctx context.Context, name string) (*ParentNode, error) {
	exists, err := s.parentNameTaken(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, catalog.ErrDuplicateCategory
	}
	order, err := s.hierarchy.NextParentOrder(ctx)
	if err != nil {
		return nil, err
	}
	parent, err := catalog.NewParentCategory(name, order)
	if err != nil {
		return nil, err
	}
	if err := s.hierarchy.CreateParent(ctx, parent); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, catalog.ErrDuplicateCategory
		}
		return nil, err
	}
	node := ToParentNode(parent)
	return &node, nil
}

// parentNameTaken matches ignoring case and accents
func (s *CategoryService) parentNameTaken(ctx context.Context, name string) (bool, error) {
	exists, err := s.hierarchy.ExistsParentByName(ctx, strings.TrimSpace(name))
	if err != nil || exists {
		return exists, err
	}
	tree, err := s.hierarchy.Tree(ctx)
	if err != nil {
		return false, err
	}
	key := textnorm.Key(name)
	for _, p := range tree {
		if textnorm.Key(p.Name) == key {
			return true, nil
		}
	}
	return false, nil
}

// CreateSubCategory1 appends a sub-category to parentID
func (s *CategoryService) CreateSubCategory1(ctx context.Context, parentID uuid.UUID, name string) (*Sub1Node, error) {
	parent, err := s.hierarchy.FindParentByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	sub, err := parent.AddSubCategory(name)
	if err != nil {
		return nil, err
	}
	if err := s.hierarchy.CreateSubCategory1(ctx, sub); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, catalog.ErrDuplicateSubCategory
		}
		return nil, err
	}
	node := ToSub1Node(sub)
	return &node, nil
}

// CreateSubCategory2 appends a leaf to sub1ID
func (s *CategoryService) CreateSubCategory2(ctx context.Context, sub1ID uuid.UUID, name string) (*Sub2Node, error) {
	sub1, err := s.hierarchy.FindSubCategory1ByID(ctx, sub1ID)
	if err != nil {
		return nil, err
	}
	leaf, err := sub1.AddSubCategory(name)
	if err != nil {
		return nil, err
	}
	if err := s.hierarchy.CreateSubCategory2(ctx, leaf); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, catalog.ErrDuplicateSubCategory
		}
		return nil, err
	}
	node := ToSub2Node(leaf)
	return &node, nil
}

// ListPrescriptionCategories returns every coarse category ordered by name
func (s *CategoryService) ListPrescriptionCategories(ctx context.Context) ([]PrescriptionCategoryResponse, error) {
	list, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PrescriptionCategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, ToPrescriptionCategoryResponse(c))
	}
	return out, nil
}

// CreatePrescriptionCategory adds a coarse category; names are unique by slug
func (s *CategoryService) CreatePrescriptionCategory(ctx context.Context, name, color string) (*PrescriptionCategoryResponse, error) {
	c, err := catalog.NewPrescriptionCategory(name, color)
	if err != nil {
		return nil, err
	}
	exists, err := s.categories.ExistsBySlug(ctx, c.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, catalog.ErrDuplicateCategory
	}
	if err := s.categories.Create(ctx, c); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, catalog.ErrDuplicateCategory
		}
		return nil, err
	}
	resp := ToPrescriptionCategoryResponse(c)
	return &resp, nil
}
