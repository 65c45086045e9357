package models

import (
	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/google/uuid"
)

// ParentCategoryModel is the first level of the hierarchy.
type ParentCategoryModel struct {
	BaseModel
	Name          string              `gorm:"type:varchar(100);not null;uniqueIndex"`
	DisplayOrder  int                 `gorm:"not null;default:0"`
	SubCategories []SubCategory1Model `gorm:"foreignKey:ParentID"`
}

// TableName returns the table name for GORM
func (ParentCategoryModel) TableName() string {
	return "parent_categories"
}

// ToDomain converts the model and any loaded children
func (m *ParentCategoryModel) ToDomain() *catalog.ParentCategory {
	p := &catalog.ParentCategory{
		BaseEntity:    m.BaseModel.ToDomain(),
		Name:          m.Name,
		DisplayOrder:  m.DisplayOrder,
		SubCategories: make([]*catalog.SubCategory1, 0, len(m.SubCategories)),
	}
	for i := range m.SubCategories {
		p.SubCategories = append(p.SubCategories, m.SubCategories[i].ToDomain())
	}
	return p
}

// ParentCategoryModelFromDomain maps the parent row only; children are written separately
func ParentCategoryModelFromDomain(p *catalog.ParentCategory) *ParentCategoryModel {
	m := &ParentCategoryModel{Name: p.Name, DisplayOrder: p.DisplayOrder}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// SubCategory1Model is the second level; names are unique per parent.
type SubCategory1Model struct {
	BaseModel
	Name          string              `gorm:"type:varchar(100);not null;uniqueIndex:idx_sub1_parent_name,priority:2"`
	ParentID      uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_sub1_parent_name,priority:1"`
	DisplayOrder  int                 `gorm:"not null;default:0"`
	SubCategories []SubCategory2Model `gorm:"foreignKey:SubCategory1ID"`
}

// TableName returns the table name for GORM
func (SubCategory1Model) TableName() string {
	return "sub_categories_1"
}

// ToDomain converts the model and any loaded leaves
func (m *SubCategory1Model) ToDomain() *catalog.SubCategory1 {
	s := &catalog.SubCategory1{
		BaseEntity:    m.BaseModel.ToDomain(),
		Name:          m.Name,
		ParentID:      m.ParentID,
		DisplayOrder:  m.DisplayOrder,
		SubCategories: make([]*catalog.SubCategory2, 0, len(m.SubCategories)),
	}
	for i := range m.SubCategories {
		s.SubCategories = append(s.SubCategories, m.SubCategories[i].ToDomain())
	}
	return s
}

// SubCategory1ModelFromDomain maps the row only
func SubCategory1ModelFromDomain(s *catalog.SubCategory1) *SubCategory1Model {
	m := &SubCategory1Model{Name: s.Name, ParentID: s.ParentID, DisplayOrder: s.DisplayOrder}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// SubCategory2Model is the leaf level; names are unique per SubCategory1.
type SubCategory2Model struct {
	BaseModel
	Name           string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_sub2_sub1_name,priority:2"`
	SubCategory1ID uuid.UUID `gorm:"column:sub_category_1_id;type:uuid;not null;uniqueIndex:idx_sub2_sub1_name,priority:1"`
	DisplayOrder   int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SubCategory2Model) TableName() string {
	return "sub_categories_2"
}

// ToDomain converts the model
func (m *SubCategory2Model) ToDomain() *catalog.SubCategory2 {
	return &catalog.SubCategory2{
		BaseEntity:     m.BaseModel.ToDomain(),
		Name:           m.Name,
		SubCategory1ID: m.SubCategory1ID,
		DisplayOrder:   m.DisplayOrder,
	}
}

// SubCategory2ModelFromDomain maps the row
func SubCategory2ModelFromDomain(s *catalog.SubCategory2) *SubCategory2Model {
	m := &SubCategory2Model{Name: s.Name, SubCategory1ID: s.SubCategory1ID, DisplayOrder: s.DisplayOrder}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// PrescriptionCategoryModel is the coarse category tag of resources and prescriptions.
type PrescriptionCategoryModel struct {
	BaseModel
	Name  string `gorm:"type:varchar(100);not null"`
	Slug  string `gorm:"type:varchar(120);not null;uniqueIndex"`
	Color string `gorm:"type:varchar(7)"`
}

// TableName returns the table name for GORM
func (PrescriptionCategoryModel) TableName() string {
	return "prescription_categories"
}

// ToDomain converts the model
func (m *PrescriptionCategoryModel) ToDomain() *catalog.PrescriptionCategory {
	return &catalog.PrescriptionCategory{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Slug:       m.Slug,
		Color:      m.Color,
	}
}

// PrescriptionCategoryModelFromDomain maps the row
func PrescriptionCategoryModelFromDomain(c *catalog.PrescriptionCategory) *PrescriptionCategoryModel {
	m := &PrescriptionCategoryModel{Name: c.Name, Slug: c.Slug, Color: c.Color}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
