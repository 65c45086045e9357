package library

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/textnorm"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Resource is a reusable product entry of the agency library
type Resource struct {
	shared.OwnedAggregateRoot
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
	CategoryPath   []string
	SubCategory2ID *uuid.UUID
	CategoryID     uuid.UUID
	SearchKey      string
}

// ResourceDetails carries the descriptive fields of a resource
type ResourceDetails struct {
	Name          string
	Description   string
	Brand         string
	Reference     string
	ImageURL      string
	ProductURL    string
	Price         *decimal.Decimal
	PricePro      *decimal.Decimal
	Supplier      string
	CountryOrigin string
	Tags          []string
}

// NewResource creates a library resource in the given coarse category
func NewResource(createdBy, categoryID uuid.UUID, details ResourceDetails) (*Resource, error) {
	if categoryID == uuid.Nil {
		return nil, shared.NewValidationError("Category is required")
	}
	r := &Resource{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(createdBy),
		CategoryID:         categoryID,
		Tags:               []string{},
		CategoryPath:       []string{},
	}
	if err := r.apply(details); err != nil {
		return nil, err
	}
	return r, nil
}

// Update replaces the descriptive fields
func (r *Resource) Update(details ResourceDetails) error {
	if err := r.apply(details); err != nil {
		return err
	}
	r.Touch()
	r.IncrementVersion()
	return nil
}

func (r *Resource) apply(d ResourceDetails) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewValidationError("Resource name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewValidationError("Resource name cannot exceed 200 characters")
	}
	if err := validatePrice("price", d.Price); err != nil {
		return err
	}
	if err := validatePrice("pricePro", d.PricePro); err != nil {
		return err
	}
	if err := validateURL("imageUrl", d.ImageURL); err != nil {
		return err
	}
	if err := validateURL("productUrl", d.ProductURL); err != nil {
		return err
	}

	r.Name = name
	r.Description = strings.TrimSpace(d.Description)
	r.Brand = strings.TrimSpace(d.Brand)
	r.Reference = strings.TrimSpace(d.Reference)
	r.ImageURL = strings.TrimSpace(d.ImageURL)
	r.ProductURL = strings.TrimSpace(d.ProductURL)
	r.Price = roundPrice(d.Price)
	r.PricePro = roundPrice(d.PricePro)
	r.Supplier = strings.TrimSpace(d.Supplier)
	r.CountryOrigin = strings.TrimSpace(d.CountryOrigin)
	r.Tags = NormalizeTags(d.Tags)
	r.SearchKey = textnorm.SearchKey(r.Name, r.Brand, r.Reference)
	return nil
}

// SetCategory changes the coarse category
func (r *Resource) SetCategory(categoryID uuid.UUID) error {
	if categoryID == uuid.Nil {
		return shared.NewValidationError("Category is required")
	}
	r.CategoryID = categoryID
	return nil
}

// LinkLeaf attaches the resource to a SubCategory2 and records its breadcrumb
func (r *Resource) LinkLeaf(sub2ID uuid.UUID, path []string) {
	id := sub2ID
	r.SubCategory2ID = &id
	r.CategoryPath = append([]string(nil), path...)
}

// UnlinkLeaf detaches the resource from the strict hierarchy
func (r *Resource) UnlinkLeaf() {
	r.SubCategory2ID = nil
	r.CategoryPath = []string{}
}

// SuggestedUnitPrice prefers the professional price over the public one
func (r *Resource) SuggestedUnitPrice() *decimal.Decimal {
	if r.PricePro != nil {
		return r.PricePro
	}
	return r.Price
}

// NormalizeTags trims, drops blanks and de-duplicates tags (case-insensitive), keeping first spelling
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := textnorm.Key(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

func validatePrice(field string, p *decimal.Decimal) error {
	if p != nil && p.IsNegative() {
		return shared.NewValidationError(field + " cannot be negative")
	}
	return nil
}

func roundPrice(p *decimal.Decimal) *decimal.Decimal {
	if p == nil {
		return nil
	}
	v := p.Round(2)
	return &v
}

func validateURL(field, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https" && !strings.HasPrefix(raw, "/")) {
		return shared.NewValidationError(field + " must be an http(s) URL")
	}
	return nil
}
