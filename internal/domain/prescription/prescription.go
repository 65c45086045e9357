package prescription

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Prescription is a priced product selection attached to a project, optionally in a space
type Prescription struct {
	shared.OwnedAggregateRoot
	ProjectID   uuid.UUID
	SpaceID     *uuid.UUID
	CategoryID  uuid.UUID
	ResourceID  *uuid.UUID
	Name        string
	Description string
	Brand       string
	Reference   string
	Supplier    string
	ProductURL  string
	Quantity    int
	UnitPrice   *decimal.Decimal
	TotalPrice  *decimal.Decimal
	Status      Status
	Notes       string
	ValidatedAt *time.Time
	OrderedAt   *time.Time
	DeliveredAt *time.Time
}

// Details carries the descriptive fields of a prescription
type Details struct {
	Name        string
	Description string
	Brand       string
	Reference   string
	Supplier    string
	ProductURL  string
	Notes       string
}

// Pricing is the quantity and price input. TotalPrice is used only when UnitPrice is nil.
type Pricing struct {
	Quantity   int
	UnitPrice  *decimal.Decimal
	TotalPrice *decimal.Decimal
}

// NewPrescription creates an EN_COURS prescription with a computed total
func NewPrescription(createdBy, projectID, categoryID uuid.UUID, spaceID *uuid.UUID, d Details, pricing Pricing) (*Prescription, error) {
	if projectID == uuid.Nil {
		return nil, shared.NewValidationError("Project is required")
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewValidationError("Category is required")
	}
	p := &Prescription{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(createdBy),
		ProjectID:          projectID,
		SpaceID:            spaceID,
		CategoryID:         categoryID,
		Status:             StatusEnCours,
	}
	if err := p.applyDetails(d); err != nil {
		return nil, err
	}
	if err := p.applyPricing(pricing); err != nil {
		return nil, err
	}
	return p, nil
}

// Total returns TotalPrice, or zero when unset
func (p *Prescription) Total() decimal.Decimal {
	if p.TotalPrice == nil {
		return decimal.Zero
	}
	return *p.TotalPrice
}

// UpdateDetails replaces the descriptive fields
func (p *Prescription) UpdateDetails(d Details) error {
	if err := p.applyDetails(d); err != nil {
		return err
	}
	p.Touch()
	return nil
}

// Reprice applies new pricing and returns newTotal - oldTotal
func (p *Prescription) Reprice(pricing Pricing) (decimal.Decimal, error) {
	old := p.Total()
	if err := p.applyPricing(pricing); err != nil {
		return decimal.Zero, err
	}
	p.Touch()
	return p.Total().Sub(old), nil
}

// MoveToSpace assigns the prescription to a space of the same project, or unassigns it with nil
func (p *Prescription) MoveToSpace(spaceID *uuid.UUID) {
	p.SpaceID = spaceID
	p.Touch()
}

// SetCategory changes the coarse category
func (p *Prescription) SetCategory(categoryID uuid.UUID) error {
	if categoryID == uuid.Nil {
		return shared.NewValidationError("Category is required")
	}
	p.CategoryID = categoryID
	return nil
}

// ChangeStatus moves along the workflow and stamps the matching milestone date
func (p *Prescription) ChangeStatus(next Status, at time.Time) error {
	if err := p.Status.ValidateTransition(next); err != nil {
		return err
	}
	if next == p.Status {
		return nil
	}
	switch next {
	case StatusValide:
		p.ValidatedAt = &at
	case StatusCommande:
		p.OrderedAt = &at
	case StatusLivre:
		p.DeliveredAt = &at
	}
	p.Status = next
	p.Touch()
	p.IncrementVersion()
	return nil
}

func (p *Prescription) applyDetails(d Details) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewValidationError("Prescription name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewValidationError("Prescription name cannot exceed 200 characters")
	}
	p.Name = name
	p.Description = strings.TrimSpace(d.Description)
	p.Brand = strings.TrimSpace(d.Brand)
	p.Reference = strings.TrimSpace(d.Reference)
	p.Supplier = strings.TrimSpace(d.Supplier)
	p.ProductURL = strings.TrimSpace(d.ProductURL)
	p.Notes = strings.TrimSpace(d.Notes)
	return nil
}

func (p *Prescription) applyPricing(pr Pricing) error {
	if pr.Quantity < 1 {
		return shared.NewValidationError("Quantity must be at least 1")
	}
	if pr.UnitPrice != nil && pr.UnitPrice.IsNegative() {
		return shared.NewValidationError("Unit price cannot be negative")
	}
	if pr.TotalPrice != nil && pr.TotalPrice.IsNegative() {
		return shared.NewValidationError("Total price cannot be negative")
	}
	p.Quantity = pr.Quantity
	p.UnitPrice = nil
	p.TotalPrice = nil
	switch {
	case pr.UnitPrice != nil:
		unit := pr.UnitPrice.Round(2)
		total := unit.Mul(decimal.NewFromInt(int64(pr.Quantity))).Round(2)
		p.UnitPrice = &unit
		p.TotalPrice = &total
	case pr.TotalPrice != nil:
		total := pr.TotalPrice.Round(2)
		p.TotalPrice = &total
	}
	return nil
}

// CurrentPricing returns the pricing that reproduces the stored values
func (p *Prescription) CurrentPricing() Pricing {
	return Pricing{Quantity: p.Quantity, UnitPrice: p.UnitPrice, TotalPrice: p.TotalPrice}
}
