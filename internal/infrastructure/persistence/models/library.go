package models

import (
	"time"

	"github.com/atelier/backend/internal/domain/library"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ResourceModel is the persistence model for library resources.
type ResourceModel struct {
	OwnedAggregateModel
	Name           string           `gorm:"type:varchar(200);not null"`
	Description    string           `gorm:"type:text"`
	Brand          string           `gorm:"type:varchar(200)"`
	Reference      string           `gorm:"type:varchar(200)"`
	ImageURL       string           `gorm:"column:image_url;type:varchar(1000)"`
	ProductURL     string           `gorm:"column:product_url;type:varchar(1000)"`
	Price          *decimal.Decimal `gorm:"type:decimal(12,2)"`
	PricePro       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Supplier       string           `gorm:"type:varchar(200)"`
	CountryOrigin  string           `gorm:"type:varchar(100)"`
	Tags           StringList
	CategoryPath   StringList
	SubCategory2ID *uuid.UUID `gorm:"column:sub_category_2_id;type:uuid;index"`
	CategoryID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	SearchKey      string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ResourceModel) TableName() string {
	return "resources"
}

// ToDomain converts the persistence model to a domain Resource.
func (m *ResourceModel) ToDomain() *library.Resource {
	return &library.Resource{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		Name:               m.Name,
		Description:        m.Description,
		Brand:              m.Brand,
		Reference:          m.Reference,
		ImageURL:           m.ImageURL,
		ProductURL:         m.ProductURL,
		Price:              m.Price,
		PricePro:           m.PricePro,
		Supplier:           m.Supplier,
		CountryOrigin:      m.CountryOrigin,
		Tags:               m.Tags.Strings(),
		CategoryPath:       m.CategoryPath.Strings(),
		SubCategory2ID:     m.SubCategory2ID,
		CategoryID:         m.CategoryID,
		SearchKey:          m.SearchKey,
	}
}

// ResourceModelFromDomain creates a persistence model from a domain Resource.
func ResourceModelFromDomain(r *library.Resource) *ResourceModel {
	m := &ResourceModel{
		Name:           r.Name,
		Description:    r.Description,
		Brand:          r.Brand,
		Reference:      r.Reference,
		ImageURL:       r.ImageURL,
		ProductURL:     r.ProductURL,
		Price:          r.Price,
		PricePro:       r.PricePro,
		Supplier:       r.Supplier,
		CountryOrigin:  r.CountryOrigin,
		Tags:           StringList(r.Tags),
		CategoryPath:   StringList(r.CategoryPath),
		SubCategory2ID: r.SubCategory2ID,
		CategoryID:     r.CategoryID,
		SearchKey:      r.SearchKey,
	}
	m.FromDomainOwnedAggregateRoot(r.OwnedAggregateRoot)
	return m
}

// UserFavoriteModel is keyed by (user_id, resource_id).
type UserFavoriteModel struct {
	UserID     uuid.UUID              `gorm:"type:uuid;primaryKey"`
	ResourceID uuid.UUID              `gorm:"type:uuid;primaryKey;index"`
	Status     library.FavoriteStatus `gorm:"type:varchar(20);not null"`
	Notes      string                 `gorm:"type:text"`
	CreatedAt  time.Time              `gorm:"not null"`
	UpdatedAt  time.Time              `gorm:"not null"`

	Resource *ResourceModel `gorm:"foreignKey:ResourceID"`
}

// TableName returns the table name for GORM
func (UserFavoriteModel) TableName() string {
	return "user_favorites"
}

// ToDomain converts the row and its resource when preloaded
func (m *UserFavoriteModel) ToDomain() *library.UserFavorite {
	f := &library.UserFavorite{
		UserID:     m.UserID,
		ResourceID: m.ResourceID,
		Status:     m.Status,
		Notes:      m.Notes,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.Resource != nil {
		f.Resource = m.Resource.ToDomain()
	}
	return f
}

// UserFavoriteModelFromDomain maps the row
func UserFavoriteModelFromDomain(f *library.UserFavorite) *UserFavoriteModel {
	return &UserFavoriteModel{
		UserID:     f.UserID,
		ResourceID: f.ResourceID,
		Status:     f.Status,
		Notes:      f.Notes,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}
