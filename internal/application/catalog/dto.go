package catalog

import (
	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/google/uuid"
)

// ParentNode is a parent category with its nested levels
type ParentNode struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	DisplayOrder  int        `json:"displayOrder"`
	SubCategories []Sub1Node `json:"subCategories"`
}

// Sub1Node is a first-level sub-category with its leaves
type Sub1Node struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	ParentID      uuid.UUID  `json:"parentId"`
	DisplayOrder  int        `json:"displayOrder"`
	SubCategories []Sub2Node `json:"subCategories"`
}

// Sub2Node is a leaf category
type Sub2Node struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	SubCategory1ID uuid.UUID `json:"subCategory1Id"`
	DisplayOrder   int       `json:"displayOrder"`
}

// PrescriptionCategoryResponse is the API view of a coarse category
type PrescriptionCategoryResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Slug  string    `json:"slug"`
	Color string    `json:"color,omitempty"`
}

// ImportResult summarizes a taxonomy import
type ImportResult struct {
	catalog.TaxonomyCounts
	ResourcesRelinked int         `json:"resourcesRelinked"`
	ResourcesUnlinked []uuid.UUID `json:"resourcesUnlinked,omitempty"`
	CategoriesCreated int         `json:"prescriptionCategoriesCreated"`
	ExpectedLeafCount int         `json:"expectedSubCategories2"`
}

// ToParentNode converts a loaded parent
func ToParentNode(p *catalog.ParentCategory) ParentNode {
	node := ParentNode{
		ID:            p.ID,
		Name:          p.Name,
		DisplayOrder:  p.DisplayOrder,
		SubCategories: make([]Sub1Node, 0, len(p.SubCategories)),
	}
	for _, s := range p.SubCategories {
		node.SubCategories = append(node.SubCategories, ToSub1Node(s))
	}
	return node
}

// ToSub1Node converts a loaded first-level sub-category
func ToSub1Node(s *catalog.SubCategory1) Sub1Node {
	node := Sub1Node{
		ID:            s.ID,
		Name:          s.Name,
		ParentID:      s.ParentID,
		DisplayOrder:  s.DisplayOrder,
		SubCategories: make([]Sub2Node, 0, len(s.SubCategories)),
	}
	for _, l := range s.SubCategories {
		node.SubCategories = append(node.SubCategories, ToSub2Node(l))
	}
	return node
}

// ToSub2Node converts a leaf
func ToSub2Node(l *catalog.SubCategory2) Sub2Node {
	return Sub2Node{
		ID:             l.ID,
		Name:           l.Name,
		SubCategory1ID: l.SubCategory1ID,
		DisplayOrder:   l.DisplayOrder,
	}
}

// ToPrescriptionCategoryResponse converts a coarse category
func ToPrescriptionCategoryResponse(c *catalog.PrescriptionCategory) PrescriptionCategoryResponse {
	return PrescriptionCategoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug, Color: c.Color}
}
