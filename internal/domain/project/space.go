package project

import (
	"strings"
	"unicode/utf8"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SpaceType is the kind of room
type SpaceType string

const (
	SpaceSalon        SpaceType = "SALON"
	SpaceCuisine      SpaceType = "CUISINE"
	SpaceChambre      SpaceType = "CHAMBRE"
	SpaceSalleDeBain  SpaceType = "SALLE_DE_BAIN"
	SpaceBureau       SpaceType = "BUREAU"
	SpaceEntree       SpaceType = "ENTREE"
	SpaceSalleAManger SpaceType = "SALLE_A_MANGER"
	SpaceExterieur    SpaceType = "EXTERIEUR"
	SpaceAutre        SpaceType = "AUTRE"
)

// SpaceTypes lists the accepted values
var SpaceTypes = []SpaceType{
	SpaceSalon, SpaceCuisine, SpaceChambre, SpaceSalleDeBain, SpaceBureau,
	SpaceEntree, SpaceSalleAManger, SpaceExterieur, SpaceAutre,
}

// IsValid reports whether t is a known space type
func (t SpaceType) IsValid() bool {
	for _, v := range SpaceTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Space is a room of a project
type Space struct {
	shared.BaseEntity
	ProjectID   uuid.UUID
	Name        string
	Type        SpaceType
	SurfaceM2   *decimal.Decimal
	Description string

	// PrescriptionCount is filled by listings only
	PrescriptionCount int64
}

// NewSpace creates a room inside projectID
func NewSpace(projectID uuid.UUID, name string, typ SpaceType, surface *decimal.Decimal, description string) (*Space, error) {
	if projectID == uuid.Nil {
		return nil, shared.NewValidationError("Project is required")
	}
	s := &Space{
		BaseEntity: shared.NewBaseEntity(),
		ProjectID:  projectID,
	}
	if err := s.Update(name, typ, surface, description); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces the editable fields
func (s *Space) Update(name string, typ SpaceType, surface *decimal.Decimal, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("Space name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 100 {
		return shared.NewValidationError("Space name cannot exceed 100 characters")
	}
	if typ == "" {
		typ = SpaceAutre
	}
	if !typ.IsValid() {
		return shared.NewValidationError("Unknown space type " + string(typ))
	}
	if surface != nil {
		if !surface.IsPositive() {
			return shared.NewValidationError("Surface must be positive")
		}
		v := surface.Round(2)
		surface = &v
	}
	s.Name = name
	s.Type = typ
	s.SurfaceM2 = surface
	s.Description = strings.TrimSpace(description)
	s.Touch()
	return nil
}

// ErrSpaceNotEmpty is returned when deleting a space that still holds prescriptions
var ErrSpaceNotEmpty = shared.NewValidationError("Space still contains prescriptions; move or delete them first")
