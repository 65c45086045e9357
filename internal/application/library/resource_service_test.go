package library

import (
	"context"
	"strings"
	"testing"

	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/domain/library"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockResourceRepository struct {
	mock.Mock
}

func (m *MockResourceRepository) Create(ctx context.Context, r *library.Resource) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockResourceRepository) Update(ctx context.Context, r *library.Resource) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockResourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockResourceRepository) FindByID(ctx context.Context, id uuid.UUID) (*library.Resource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*library.Resource), args.Error(1)
}

func (m *MockResourceRepository) FindAll(ctx context.Context, filter library.ResourceFilter) ([]*library.Resource, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*library.Resource), args.Get(1).(int64), args.Error(2)
}

type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) Upsert(ctx context.Context, f *library.UserFavorite) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFavoriteRepository) Delete(ctx context.Context, userID, resourceID uuid.UUID) error {
	return m.Called(ctx, userID, resourceID).Error(0)
}

func (m *MockFavoriteRepository) Find(ctx context.Context, userID, resourceID uuid.UUID) (*library.UserFavorite, error) {
	args := m.Called(ctx, userID, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*library.UserFavorite), args.Error(1)
}

func (m *MockFavoriteRepository) FindByUser(ctx context.Context, userID uuid.UUID, status *library.FavoriteStatus) ([]*library.UserFavorite, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*library.UserFavorite), args.Error(1)
}

func (m *MockFavoriteRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// stubHierarchy serves a fixed tree
type stubHierarchy struct {
	catalog.HierarchyRepository
	tree []*catalog.ParentCategory
}

func (s *stubHierarchy) Tree(context.Context) ([]*catalog.ParentCategory, error) {
	return s.tree, nil
}

func (s *stubHierarchy) FindLeaf(_ context.Context, id uuid.UUID) (*catalog.Leaf, error) {
	for _, p := range s.tree {
		for _, s1 := range p.SubCategories {
			for _, s2 := range s1.SubCategories {
				if s2.ID == id {
					return &catalog.Leaf{Parent: *p, Sub1: *s1, Sub2: *s2}, nil
				}
			}
		}
	}
	return nil, shared.NewNotFoundError("Sub-category")
}

// stubCategories serves a fixed set of prescription categories
type stubCategories struct {
	catalog.PrescriptionCategoryRepository
	list []*catalog.PrescriptionCategory
}

func (s *stubCategories) FindAll(context.Context) ([]*catalog.PrescriptionCategory, error) {
	return s.list, nil
}

func (s *stubCategories) FindByID(_ context.Context, id uuid.UUID) (*catalog.PrescriptionCategory, error) {
	for _, c := range s.list {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, shared.NewNotFoundError("Category")
}

type fixture struct {
	svc       *ResourceService
	resources *MockResourceRepository
	favorites *MockFavoriteRepository
	tree      []*catalog.ParentCategory
	mobilier  *catalog.PrescriptionCategory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tree, err := catalog.BuildTree(catalog.DefaultTaxonomy())
	require.NoError(t, err)
	mobilier, err := catalog.NewPrescriptionCategory("Mobilier", "")
	require.NoError(t, err)
	luminaires, err := catalog.NewPrescriptionCategory("Luminaires", "")
	require.NoError(t, err)

	f := &fixture{
		resources: new(MockResourceRepository),
		favorites: new(MockFavoriteRepository),
		tree:      tree,
		mobilier:  mobilier,
	}
	f.svc = NewResourceService(
		f.resources,
		f.favorites,
		&stubHierarchy{tree: tree},
		&stubCategories{list: []*catalog.PrescriptionCategory{mobilier, luminaires}},
		zap.NewNop(),
	)
	return f
}

func (f *fixture) canapes() *catalog.SubCategory2 {
	return f.tree[0].SubCategories[0].SubCategories[0]
}

func TestResourceService_Create_LinksLeaf(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.resources.On("Create", ctx, mock.AnythingOfType("*library.Resource")).Return(nil)

	price := decimal.RequireFromString("1299.999")
	leafID := f.canapes().ID
	resp, err := f.svc.Create(ctx, uuid.New(), CreateResourceInput{
		Name:           "Canapé Oslo",
		Brand:          "Nordic",
		Price:          &price,
		Tags:           []string{"Velours", "velours", " salon "},
		CategoryID:     f.mobilier.ID,
		SubCategory2ID: &leafID,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Mobilier", "Assises", "Canapés"}, resp.CategoryPath)
	assert.Equal(t, leafID, *resp.SubCategory2ID)
	assert.Equal(t, "1300", resp.Price.String())
	assert.Len(t, resp.Tags, 2)
}

func TestResourceService_Create_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Create(ctx, uuid.New(), CreateResourceInput{Name: "Lampe", CategoryID: uuid.New()})
	assert.ErrorIs(t, err, shared.ErrValidation, "unknown category")

	unknownLeaf := uuid.New()
	_, err = f.svc.Create(ctx, uuid.New(), CreateResourceInput{
		Name: "Lampe", CategoryID: f.mobilier.ID, SubCategory2ID: &unknownLeaf,
	})
	assert.ErrorIs(t, err, shared.ErrValidation, "unknown leaf")

	_, err = f.svc.Create(ctx, uuid.New(), CreateResourceInput{Name: " ", CategoryID: f.mobilier.ID})
	assert.ErrorIs(t, err, shared.ErrValidation, "blank name")

	f.resources.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestResourceService_Update_Partial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	existing, err := library.NewResource(uuid.New(), f.mobilier.ID, library.ResourceDetails{
		Name: "Fauteuil", Brand: "Atelier", Reference: "F-01",
	})
	require.NoError(t, err)
	existing.LinkLeaf(f.canapes().ID, []string{"a", "b", "c"})
	f.resources.On("FindByID", ctx, existing.ID).Return(existing, nil)
	f.resources.On("Update", ctx, existing).Return(nil)

	newName := "Fauteuil Club"
	resp, err := f.svc.Update(ctx, existing.ID, UpdateResourceInput{Name: &newName, ClearSubCategory2: true})

	require.NoError(t, err)
	assert.Equal(t, "Fauteuil Club", resp.Name)
	assert.Equal(t, "Atelier", resp.Brand)
	assert.Equal(t, "F-01", resp.Reference)
	assert.Nil(t, resp.SubCategory2ID)
	assert.Empty(t, resp.CategoryPath)
}

func TestResourceService_List_FavoritesOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := uuid.New()

	f.resources.On("FindAll", ctx, mock.MatchedBy(func(filter library.ResourceFilter) bool {
		return filter.FavoritesOf != nil && *filter.FavoritesOf == userID &&
			filter.OrderBy == "name" && filter.Page == 1 && filter.PageSize == 20 && filter.Search == "oslo"
	})).Return([]*library.Resource{}, int64(0), nil)

	page, err := f.svc.List(ctx, userID, ListResourcesInput{Search: " oslo ", FavoritesOnly: true})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	f.resources.AssertExpectations(t)
}

func TestResourceService_ImportCSV(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	var created []*library.Resource
	f.resources.On("Create", mock.Anything, mock.AnythingOfType("*library.Resource")).
		Run(func(args mock.Arguments) { created = append(created, args.Get(1).(*library.Resource)) }).
		Return(nil)

	csv := strings.Join([]string{
		"name,brand,price,category,parent,sub_category_1,sub_category_2,tags",
		"Canapé Oslo,Nordic,\"1 299,00\",,mobilier,ASSISES,canapes,velours|salon",
		"Lustre Aria,Lumen,450,Luminaires,,,,",
		"Table Inconnue,,,,Mobilier,Tables,Tables pliantes,",
		"Sans catégorie,,,,,,,",
		"Prix faux,,abc,Mobilier,,,,",
	}, "\n")

	result, err := f.svc.ImportCSV(ctx, uuid.New(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 3, result.Skipped)
	require.Len(t, created, 2)

	assert.Equal(t, []string{"Mobilier", "Assises", "Canapés"}, created[0].CategoryPath)
	assert.Equal(t, f.mobilier.ID, created[0].CategoryID)
	assert.Equal(t, "1299", created[0].Price.String())
	assert.Nil(t, created[1].SubCategory2ID)

	var lines []int
	for _, w := range result.Warnings {
		lines = append(lines, w.Line)
	}
	assert.ElementsMatch(t, []int{4, 5, 6}, lines)
}

func TestResourceService_ImportCSV_MissingNameColumn(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ImportCSV(context.Background(), uuid.New(), strings.NewReader("brand\nNordic\n"))
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestResourceService_SetFavorite_Upserts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := uuid.New()
	res, err := library.NewResource(uuid.New(), f.mobilier.ID, library.ResourceDetails{Name: "Tabouret"})
	require.NoError(t, err)

	f.resources.On("FindByID", ctx, res.ID).Return(res, nil)
	f.favorites.On("Upsert", ctx, mock.AnythingOfType("*library.UserFavorite")).Return(nil).Twice()

	_, err = f.svc.SetFavorite(ctx, userID, res.ID, library.FavoriteOK, "")
	require.NoError(t, err)
	resp, err := f.svc.SetFavorite(ctx, userID, res.ID, library.FavoriteJAdore, "coup de coeur")
	require.NoError(t, err)

	assert.Equal(t, library.FavoriteJAdore, resp.Status)
	require.NotNil(t, resp.Resource)
	assert.Equal(t, "Tabouret", resp.Resource.Name)
	f.favorites.AssertExpectations(t)
}

func TestResourceService_SetFavorite_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	missing := uuid.New()
	f.resources.On("FindByID", ctx, missing).Return(nil, shared.NewNotFoundError("Resource"))

	_, err := f.svc.SetFavorite(ctx, uuid.New(), missing, library.FavoriteOK, "")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	bad := library.FavoriteStatus("MEH")
	_, err = f.svc.ListFavorites(ctx, uuid.New(), &bad)
	assert.ErrorIs(t, err, shared.ErrValidation)
}
