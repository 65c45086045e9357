package catalog

import (
	"context"
	"testing"

	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockHierarchyRepository struct {
	mock.Mock
}

func (m *MockHierarchyRepository) Tree(ctx context.Context) ([]*catalog.ParentCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.ParentCategory), args.Error(1)
}

func (m *MockHierarchyRepository) FindParentByID(ctx context.Context, id uuid.UUID) (*catalog.ParentCategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ParentCategory), args.Error(1)
}

func (m *MockHierarchyRepository) FindSubCategory1ByID(ctx context.Context, id uuid.UUID) (*catalog.SubCategory1, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.SubCategory1), args.Error(1)
}

func (m *MockHierarchyRepository) FindLeaf(ctx context.Context, sub2ID uuid.UUID) (*catalog.Leaf, error) {
	args := m.Called(ctx, sub2ID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Leaf), args.Error(1)
}

func (m *MockHierarchyRepository) ExistsParentByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockHierarchyRepository) CreateParent(ctx context.Context, parent *catalog.ParentCategory) error {
	return m.Called(ctx, parent).Error(0)
}

func (m *MockHierarchyRepository) CreateSubCategory1(ctx context.Context, sub *catalog.SubCategory1) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *MockHierarchyRepository) CreateSubCategory2(ctx context.Context, sub *catalog.SubCategory2) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *MockHierarchyRepository) NextParentOrder(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockHierarchyRepository) ReplaceAll(ctx context.Context, tree []*catalog.ParentCategory) (catalog.RelinkReport, error) {
	args := m.Called(ctx, tree)
	return args.Get(0).(catalog.RelinkReport), args.Error(1)
}

func (m *MockHierarchyRepository) Counts(ctx context.Context) (catalog.TaxonomyCounts, error) {
	args := m.Called(ctx)
	return args.Get(0).(catalog.TaxonomyCounts), args.Error(1)
}

type MockPrescriptionCategoryRepository struct {
	mock.Mock
}

func (m *MockPrescriptionCategoryRepository) FindAll(ctx context.Context) ([]*catalog.PrescriptionCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.PrescriptionCategory), args.Error(1)
}

func (m *MockPrescriptionCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.PrescriptionCategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.PrescriptionCategory), args.Error(1)
}

func (m *MockPrescriptionCategoryRepository) FindBySlug(ctx context.Context, slug string) (*catalog.PrescriptionCategory, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.PrescriptionCategory), args.Error(1)
}

func (m *MockPrescriptionCategoryRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockPrescriptionCategoryRepository) Create(ctx context.Context, c *catalog.PrescriptionCategory) error {
	return m.Called(ctx, c).Error(0)
}

func newTestService() (*CategoryService, *MockHierarchyRepository, *MockPrescriptionCategoryRepository) {
	h := new(MockHierarchyRepository)
	c := new(MockPrescriptionCategoryRepository)
	return NewCategoryService(h, c, zap.NewNop()), h, c
}

func TestCategoryService_Tree_OrdersEveryLevel(t *testing.T) {
	ctx := context.Background()
	svc, h, _ := newTestService()

	var tree []*catalog.ParentCategory
	for _, order := range []int{2, 1} {
		p, err := catalog.NewParentCategory("Parent "+string(rune('A'+order)), order)
		require.NoError(t, err)
		for _, o := range []int{3, 1} {
			s, err := catalog.NewSubCategory1(p.ID, "Sub "+string(rune('A'+o)), o)
			require.NoError(t, err)
			for _, lo := range []int{2, 1} {
				l, err := catalog.NewSubCategory2(s.ID, "Leaf "+string(rune('A'+lo)), lo)
				require.NoError(t, err)
				s.SubCategories = append(s.SubCategories, l)
			}
			p.SubCategories = append(p.SubCategories, s)
		}
		tree = append(tree, p)
	}
	h.On("Tree", ctx).Return(tree, nil)

	nodes, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	for i, p := range nodes {
		assert.Equal(t, i+1, p.DisplayOrder)
		require.Len(t, p.SubCategories, 2)
		assert.Less(t, p.SubCategories[0].DisplayOrder, p.SubCategories[1].DisplayOrder)
		for _, s := range p.SubCategories {
			require.Len(t, s.SubCategories, 2)
			assert.Less(t, s.SubCategories[0].DisplayOrder, s.SubCategories[1].DisplayOrder)
		}
	}
}

func TestCategoryService_ImportTaxonomy(t *testing.T) {
	ctx := context.Background()
	svc, h, c := newTestService()
	stale := uuid.New()

	h.On("ReplaceAll", mock.Anything, mock.MatchedBy(func(tree []*catalog.ParentCategory) bool {
		counts := catalog.CountTree(tree)
		return counts.Parents == 5 && counts.SubCategories2 == 45
	})).Return(catalog.RelinkReport{Relinked: 3, Unresolved: []uuid.UUID{stale}}, nil)
	c.On("ExistsBySlug", mock.Anything, "mobilier").Return(true, nil)
	c.On("ExistsBySlug", mock.Anything, mock.Anything).Return(false, nil)
	c.On("Create", mock.Anything, mock.AnythingOfType("*catalog.PrescriptionCategory")).Return(nil)
	h.On("Counts", mock.Anything).Return(catalog.TaxonomyCounts{Parents: 5, SubCategories1: 14, SubCategories2: 45}, nil)

	result, err := svc.ImportTaxonomy(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Parents)
	assert.Equal(t, int64(45), result.SubCategories2)
	assert.Equal(t, 45, result.ExpectedLeafCount)
	assert.Equal(t, 3, result.ResourcesRelinked)
	assert.Equal(t, []uuid.UUID{stale}, result.ResourcesUnlinked)
	assert.Equal(t, 4, result.CategoriesCreated)
	c.AssertNumberOfCalls(t, "Create", 4)
}

func TestCategoryService_CreateParent(t *testing.T) {
	ctx := context.Background()

	t.Run("appends after the last parent", func(t *testing.T) {
		svc, h, _ := newTestService()
		h.On("ExistsParentByName", ctx, "Extérieur").Return(false, nil)
		h.On("Tree", ctx).Return([]*catalog.ParentCategory{}, nil)
		h.On("NextParentOrder", ctx).Return(6, nil)
		h.On("CreateParent", ctx, mock.AnythingOfType("*catalog.ParentCategory")).Return(nil)

		node, err := svc.CreateParent(ctx, "Extérieur")
		require.NoError(t, err)
		assert.Equal(t, 6, node.DisplayOrder)
		assert.Empty(t, node.SubCategories)
	})

	t.Run("rejects an accent-insensitive duplicate", func(t *testing.T) {
		svc, h, _ := newTestService()
		existing, err := catalog.NewParentCategory("Revêtements", 3)
		require.NoError(t, err)
		h.On("ExistsParentByName", ctx, "revetements").Return(false, nil)
		h.On("Tree", ctx).Return([]*catalog.ParentCategory{existing}, nil)

		_, err = svc.CreateParent(ctx, "revetements")
		assert.ErrorIs(t, err, shared.ErrValidation)
		h.AssertNotCalled(t, "CreateParent", mock.Anything, mock.Anything)
	})
}

func TestCategoryService_CreateSubCategory1(t *testing.T) {
	ctx := context.Background()
	parent, err := catalog.NewParentCategory("Mobilier", 1)
	require.NoError(t, err)
	_, err = parent.AddSubCategory("Assises")
	require.NoError(t, err)

	t.Run("uses max plus one", func(t *testing.T) {
		svc, h, _ := newTestService()
		h.On("FindParentByID", ctx, parent.ID).Return(parent, nil).Once()
		h.On("CreateSubCategory1", ctx, mock.AnythingOfType("*catalog.SubCategory1")).Return(nil)

		node, err := svc.CreateSubCategory1(ctx, parent.ID, "Tables")
		require.NoError(t, err)
		assert.Equal(t, 2, node.DisplayOrder)
		assert.Equal(t, parent.ID, node.ParentID)
	})

	t.Run("duplicate under the same parent", func(t *testing.T) {
		svc, h, _ := newTestService()
		h.On("FindParentByID", ctx, parent.ID).Return(parent, nil)

		_, err := svc.CreateSubCategory1(ctx, parent.ID, "ASSISES")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("missing parent", func(t *testing.T) {
		svc, h, _ := newTestService()
		missing := uuid.New()
		h.On("FindParentByID", ctx, missing).Return(nil, shared.NewNotFoundError("Parent category"))

		_, err := svc.CreateSubCategory1(ctx, missing, "Tables")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCategoryService_CreateSubCategory2_DatabaseDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, h, _ := newTestService()
	sub, err := catalog.NewSubCategory1(uuid.New(), "Sols", 1)
	require.NoError(t, err)
	h.On("FindSubCategory1ByID", ctx, sub.ID).Return(sub, nil)
	h.On("CreateSubCategory2", ctx, mock.Anything).
		Return(shared.WrapDomainError(shared.CodeAlreadyExists, "Sub-category already exists", nil))

	_, err = svc.CreateSubCategory2(ctx, sub.ID, "Parquet")
	assert.ErrorIs(t, err, catalog.ErrDuplicateSubCategory)
}

func TestCategoryService_CreatePrescriptionCategory(t *testing.T) {
	ctx := context.Background()
	svc, _, c := newTestService()
	c.On("ExistsBySlug", ctx, "eclairage").Return(false, nil).Once()
	c.On("Create", ctx, mock.AnythingOfType("*catalog.PrescriptionCategory")).Return(nil)

	resp, err := svc.CreatePrescriptionCategory(ctx, "Éclairage", "#aabbcc")
	require.NoError(t, err)
	assert.Equal(t, "eclairage", resp.Slug)
	assert.Equal(t, "#AABBCC", resp.Color)

	c.On("ExistsBySlug", ctx, "eclairage").Return(true, nil)
	_, err = svc.CreatePrescriptionCategory(ctx, "eclairage", "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}
