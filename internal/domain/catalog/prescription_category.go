package catalog

import (
	"regexp"
	"strings"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/textnorm"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// PrescriptionCategory is the coarse tag set shared by resources and prescriptions
type PrescriptionCategory struct {
	shared.BaseEntity
	Name  string
	Slug  string
	Color string
}

// NewPrescriptionCategory creates a category; color is optional ("#rrggbb")
func NewPrescriptionCategory(name, color string) (*PrescriptionCategory, error) {
	name, err := validateCategoryName(name)
	if err != nil {
		return nil, err
	}
	slug := textnorm.Slug(name)
	if slug == "" {
		return nil, shared.NewValidationError("Category name must contain letters or digits")
	}
	color = strings.TrimSpace(color)
	if color != "" && !colorPattern.MatchString(color) {
		return nil, shared.NewValidationError("Color must be a hex value like #A1B2C3")
	}
	return &PrescriptionCategory{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Slug:       slug,
		Color:      strings.ToUpper(color),
	}, nil
}
