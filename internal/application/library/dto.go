package library

import (
	"time"

	"github.com/atelier/backend/internal/domain/library"
	"github.com/atelier/backend/internal/infrastructure/csvimport"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateResourceInput carries a new library entry
type CreateResourceInput struct {
	Name           string
	Description    string
	Brand          string
	Reference      string
	ImageURL       string
	ProductURL     string
	Price          *decimal.Decimal
	PricePro       *decimal.Decimal
	Supplier       string
	CountryOrigin  string
	Tags           []string
	CategoryID     uuid.UUID
	SubCategory2ID *uuid.UUID
}

// UpdateResourceInput has PATCH semantics: nil fields are left unchanged.
// ClearSubCategory2 detaches the resource from the hierarchy.
type UpdateResourceInput struct {
	Name              *string
	Description       *string
	Brand             *string
	Reference         *string
	ImageURL          *string
	ProductURL        *string
	Price             *decimal.Decimal
	PricePro          *decimal.Decimal
	Supplier          *string
	CountryOrigin     *string
	Tags              []string
	CategoryID        *uuid.UUID
	SubCategory2ID    *uuid.UUID
	ClearSubCategory2 bool
}

// ListResourcesInput filters the library listing
type ListResourcesInput struct {
	SubCategory2ID *uuid.UUID
	SubCategory1ID *uuid.UUID
	ParentID       *uuid.UUID
	CategoryID     *uuid.UUID
	Search         string
	Tag            string
	FavoritesOnly  bool
	Page           int
	PageSize       int
}

// ResourceResponse is the API view of a library entry
type ResourceResponse struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	Brand          string           `json:"brand,omitempty"`
	Reference      string           `json:"reference,omitempty"`
	ImageURL       string           `json:"imageUrl,omitempty"`
	ProductURL     string           `json:"productUrl,omitempty"`
	Price          *decimal.Decimal `json:"price"`
	PricePro       *decimal.Decimal `json:"pricePro"`
	Supplier       string           `json:"supplier,omitempty"`
	CountryOrigin  string           `json:"countryOrigin,omitempty"`
	Tags           []string         `json:"tags"`
	CategoryPath   []string         `json:"categoryPath"`
	SubCategory2ID *uuid.UUID       `json:"subCategory2Id"`
	CategoryID     uuid.UUID        `json:"categoryId"`
	CreatedBy      uuid.UUID        `json:"createdBy"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// FavoriteResponse is a favorite with its resource
type FavoriteResponse struct {
	ResourceID uuid.UUID              `json:"resourceId"`
	Status     library.FavoriteStatus `json:"status"`
	Notes      string                 `json:"notes,omitempty"`
	UpdatedAt  time.Time              `json:"updatedAt"`
	Resource   *ResourceResponse      `json:"resource,omitempty"`
}

// ImportResult summarizes a CSV import
type ImportResult struct {
	Imported int                   `json:"imported"`
	Skipped  int                   `json:"skipped"`
	Warnings []*csvimport.RowError `json:"warnings"`
}

// ToResourceResponse converts a domain resource
func ToResourceResponse(r *library.Resource) ResourceResponse {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	path := r.CategoryPath
	if path == nil {
		path = []string{}
	}
	return ResourceResponse{
		ID:             r.ID,
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
		Tags:           tags,
		CategoryPath:   path,
		SubCategory2ID: r.SubCategory2ID,
		CategoryID:     r.CategoryID,
		CreatedBy:      r.CreatedBy,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// ToFavoriteResponse converts a favorite; the resource is included when loaded
func ToFavoriteResponse(f *library.UserFavorite) FavoriteResponse {
	resp := FavoriteResponse{
		ResourceID: f.ResourceID,
		Status:     f.Status,
		Notes:      f.Notes,
		UpdatedAt:  f.UpdatedAt,
	}
	if f.Resource != nil {
		r := ToResourceResponse(f.Resource)
		resp.Resource = &r
	}
	return resp
}

func (in UpdateResourceInput) apply(r *library.Resource) library.ResourceDetails {
	d := library.ResourceDetails{
		Name:          r.Name,
		Description:   r.Description,
		Brand:         r.Brand,
		Reference:     r.Reference,
		ImageURL:      r.ImageURL,
		ProductURL:    r.ProductURL,
		Price:         r.Price,
		PricePro:      r.PricePro,
		Supplier:      r.Supplier,
		CountryOrigin: r.CountryOrigin,
		Tags:          r.Tags,
	}
	setString(&d.Name, in.Name)
	setString(&d.Description, in.Description)
	setString(&d.Brand, in.Brand)
	setString(&d.Reference, in.Reference)
	setString(&d.ImageURL, in.ImageURL)
	setString(&d.ProductURL, in.ProductURL)
	setString(&d.Supplier, in.Supplier)
	setString(&d.CountryOrigin, in.CountryOrigin)
	if in.Price != nil {
		d.Price = in.Price
	}
	if in.PricePro != nil {
		d.PricePro = in.PricePro
	}
	if in.Tags != nil {
		d.Tags = in.Tags
	}
	return d
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
