package catalog

import (
	"context"

	"github.com/google/uuid"
)

// TaxonomyCounts reports the size of each hierarchy level
type TaxonomyCounts struct {
	Parents        int64 `json:"parents"`
	SubCategories1 int64 `json:"subCategories1"`
	SubCategories2 int64 `json:"subCategories2"`
}

// RelinkReport tells how resource leaf links fared across a hierarchy swap
type RelinkReport struct {
	Relinked int
	// Unresolved lists resources whose stored breadcrumb has no leaf in the new tree
	Unresolved []uuid.UUID
}

// HierarchyRepository persists the three category levels
type HierarchyRepository interface {
	// Tree loads every level ordered by display order
	Tree(ctx context.Context) ([]*ParentCategory, error)

	// FindParentByID loads a parent with its direct sub-categories
	FindParentByID(ctx context.Context, id uuid.UUID) (*ParentCategory, error)
	// FindSubCategory1ByID loads a sub-category with its leaves
	FindSubCategory1ByID(ctx context.Context, id uuid.UUID) (*SubCategory1, error)
	// FindLeaf loads a SubCategory2 with its ancestors
	FindLeaf(ctx context.Context, sub2ID uuid.UUID) (*Leaf, error)

	ExistsParentByName(ctx context.Context, name string) (bool, error)

	CreateParent(ctx context.Context, parent *ParentCategory) error
	CreateSubCategory1(ctx context.Context, sub *SubCategory1) error
	CreateSubCategory2(ctx context.Context, sub *SubCategory2) error

	NextParentOrder(ctx context.Context) (int, error)

	// ReplaceAll deletes all levels leaf-to-root and inserts the given tree, atomically.
	// Resource leaf links are cleared, then restored from each resource's category path
	// when it resolves in the new tree. Resources left unlinked are reported.
	ReplaceAll(ctx context.Context, tree []*ParentCategory) (RelinkReport, error)

	Counts(ctx context.Context) (TaxonomyCounts, error)
}

// PrescriptionCategoryRepository persists the coarse category tags
type PrescriptionCategoryRepository interface {
	FindAll(ctx context.Context) ([]*PrescriptionCategory, error)
	FindByID(ctx context.Context, id uuid.UUID) (*PrescriptionCategory, error)
	FindBySlug(ctx context.Context, slug string) (*PrescriptionCategory, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, category *PrescriptionCategory) error
}
