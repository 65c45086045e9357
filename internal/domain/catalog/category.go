package catalog

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/textnorm"
	"github.com/google/uuid"
)

// ParentCategory is the root level of the resource classification
type ParentCategory struct {
	shared.BaseEntity
	Name          string
	DisplayOrder  int
	SubCategories []*SubCategory1
}

// SubCategory1 is the middle level, owned by a ParentCategory
type SubCategory1 struct {
	shared.BaseEntity
	Name          string
	ParentID      uuid.UUID
	DisplayOrder  int
	SubCategories []*SubCategory2
}

// SubCategory2 is the leaf level that library resources attach to
type SubCategory2 struct {
	shared.BaseEntity
	Name           string
	SubCategory1ID uuid.UUID
	DisplayOrder   int
}

// NewParentCategory creates a parent category at the given position
func NewParentCategory(name string, displayOrder int) (*ParentCategory, error) {
	name, err := validateCategoryName(name)
	if err != nil {
		return nil, err
	}
	return &ParentCategory{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         name,
		DisplayOrder: displayOrder,
	}, nil
}

// NewSubCategory1 creates a first-level sub-category under parentID
func NewSubCategory1(parentID uuid.UUID, name string, displayOrder int) (*SubCategory1, error) {
	if parentID == uuid.Nil {
		return nil, shared.NewValidationError("Parent category is required")
	}
	name, err := validateCategoryName(name)
	if err != nil {
		return nil, err
	}
	return &SubCategory1{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         name,
		ParentID:     parentID,
		DisplayOrder: displayOrder,
	}, nil
}

// NewSubCategory2 creates a leaf category under sub1ID
func NewSubCategory2(sub1ID uuid.UUID, name string, displayOrder int) (*SubCategory2, error) {
	if sub1ID == uuid.Nil {
		return nil, shared.NewValidationError("Sub-category is required")
	}
	name, err := validateCategoryName(name)
	if err != nil {
		return nil, err
	}
	return &SubCategory2{
		BaseEntity:     shared.NewBaseEntity(),
		Name:           name,
		SubCategory1ID: sub1ID,
		DisplayOrder:   displayOrder,
	}, nil
}

// AddSubCategory appends a child after the highest display order within p.
// SubCategories must be loaded.
func (p *ParentCategory) AddSubCategory(name string) (*SubCategory1, error) {
	if p.hasChildNamed(name) {
		return nil, ErrDuplicateSubCategory
	}
	sub, err := NewSubCategory1(p.ID, name, p.nextOrder())
	if err != nil {
		return nil, err
	}
	p.SubCategories = append(p.SubCategories, sub)
	return sub, nil
}

// AddSubCategory appends a leaf after the highest display order within s.
// SubCategories must be loaded.
func (s *SubCategory1) AddSubCategory(name string) (*SubCategory2, error) {
	key := textnorm.Key(name)
	for _, c := range s.SubCategories {
		if textnorm.Key(c.Name) == key {
			return nil, ErrDuplicateSubCategory
		}
	}
	leaf, err := NewSubCategory2(s.ID, name, s.nextOrder())
	if err != nil {
		return nil, err
	}
	s.SubCategories = append(s.SubCategories, leaf)
	return leaf, nil
}

func (p *ParentCategory) nextOrder() int {
	highest := 0
	for _, c := range p.SubCategories {
		if c.DisplayOrder > highest {
			highest = c.DisplayOrder
		}
	}
	return highest + 1
}

func (s *SubCategory1) nextOrder() int {
	highest := 0
	for _, c := range s.SubCategories {
		if c.DisplayOrder > highest {
			highest = c.DisplayOrder
		}
	}
	return highest + 1
}

func (p *ParentCategory) hasChildNamed(name string) bool {
	key := textnorm.Key(name)
	for _, c := range p.SubCategories {
		if textnorm.Key(c.Name) == key {
			return true
		}
	}
	return false
}

// LeafCount returns the number of SubCategory2 under p
func (p *ParentCategory) LeafCount() int {
	n := 0
	for _, s := range p.SubCategories {
		n += len(s.SubCategories)
	}
	return n
}

// SortTree orders every level by DisplayOrder ascending, ties broken by name.
func SortTree(parents []*ParentCategory) {
	sort.SliceStable(parents, func(i, j int) bool {
		return lessByOrder(parents[i].DisplayOrder, parents[j].DisplayOrder, parents[i].Name, parents[j].Name)
	})
	for _, p := range parents {
		subs := p.SubCategories
		sort.SliceStable(subs, func(i, j int) bool {
			return lessByOrder(subs[i].DisplayOrder, subs[j].DisplayOrder, subs[i].Name, subs[j].Name)
		})
		for _, s := range subs {
			leaves := s.SubCategories
			sort.SliceStable(leaves, func(i, j int) bool {
				return lessByOrder(leaves[i].DisplayOrder, leaves[j].DisplayOrder, leaves[i].Name, leaves[j].Name)
			})
		}
	}
}

func lessByOrder(a, b int, nameA, nameB string) bool {
	if a != b {
		return a < b
	}
	return nameA < nameB
}

// Leaf is a SubCategory2 together with its ancestors
type Leaf struct {
	Parent ParentCategory
	Sub1   SubCategory1
	Sub2   SubCategory2
}

// Path returns the human-readable breadcrumb from root to leaf
func (l Leaf) Path() []string {
	return []string{l.Parent.Name, l.Sub1.Name, l.Sub2.Name}
}

// PathIndex resolves "parent / sub1 / sub2" names to leaves, ignoring case and accents.
type PathIndex struct {
	leaves map[string]Leaf
}

// NewPathIndex indexes every leaf of the tree
func NewPathIndex(tree []*ParentCategory) *PathIndex {
	idx := &PathIndex{leaves: make(map[string]Leaf)}
	for _, p := range tree {
		for _, s := range p.SubCategories {
			for _, l := range s.SubCategories {
				idx.leaves[pathKey(p.Name, s.Name, l.Name)] = Leaf{Parent: *p, Sub1: *s, Sub2: *l}
			}
		}
	}
	return idx
}

// Resolve finds the leaf with the given names
func (idx *PathIndex) Resolve(parent, sub1, sub2 string) (Leaf, bool) {
	leaf, ok := idx.leaves[pathKey(parent, sub1, sub2)]
	return leaf, ok
}

// Len returns the number of indexed leaves
func (idx *PathIndex) Len() int {
	return len(idx.leaves)
}

func pathKey(parts ...string) string {
	keys := make([]string, len(parts))
	for i, p := range parts {
		keys[i] = textnorm.Key(p)
	}
	return strings.Join(keys, "/")
}

func validateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", shared.NewValidationError("Category name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 100 {
		return "", shared.NewValidationError("Category name cannot exceed 100 characters")
	}
	return name, nil
}

// ErrDuplicateSubCategory is returned when a name is reused under the same owner
var ErrDuplicateSubCategory = shared.NewValidationError("A sub-category with this name already exists under the same parent")

// ErrDuplicateCategory is returned when a parent or prescription category name is reused
var ErrDuplicateCategory = shared.NewValidationError("A category with this name already exists")
