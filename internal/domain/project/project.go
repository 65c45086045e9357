package project

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status of a project
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusArchived Status = "ARCHIVED"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusArchived
}

// Project is a client engagement. BudgetSpent is a running aggregate maintained by
// relative database updates and is never set from request payloads.
type Project struct {
	shared.OwnedAggregateRoot
	Name               string
	Description        string
	ClientName         string
	Status             Status
	BudgetTotal        decimal.Decimal
	BudgetSpent        decimal.Decimal
	ProgressPercentage int
	StartDate          *time.Time
	EndDate            *time.Time
	Address            valueobject.Address
	DeliveryAddress    valueobject.Address
	DeliveryContact    string
	BillingAddress     valueobject.Address
	BillingEmail       string
}

// Details carries the editable fields of a project
type Details struct {
	Name               string
	Description        string
	ClientName         string
	BudgetTotal        decimal.Decimal
	ProgressPercentage int
	StartDate          *time.Time
	EndDate            *time.Time
	Address            valueobject.Address
	DeliveryAddress    valueobject.Address
	DeliveryContact    string
	BillingAddress     valueobject.Address
	BillingEmail       string
}

// NewProject creates an active project owned by createdBy
func NewProject(createdBy uuid.UUID, d Details) (*Project, error) {
	if createdBy == uuid.Nil {
		return nil, shared.NewValidationError("Creator is required")
	}
	p := &Project{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(createdBy),
		Status:             StatusActive,
		BudgetSpent:        decimal.Zero,
	}
	if err := p.apply(d); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the editable fields; BudgetSpent is untouched
func (p *Project) Update(d Details) error {
	if err := p.apply(d); err != nil {
		return err
	}
	p.Touch()
	p.IncrementVersion()
	return nil
}

// SetStatus archives or re-activates the project
func (p *Project) SetStatus(s Status) error {
	if !s.IsValid() {
		return shared.NewValidationError("Status must be ACTIVE or ARCHIVED")
	}
	p.Status = s
	p.Touch()
	return nil
}

// BudgetRemaining is BudgetTotal minus BudgetSpent (may be negative)
func (p *Project) BudgetRemaining() decimal.Decimal {
	return p.BudgetTotal.Sub(p.BudgetSpent)
}

func (p *Project) apply(d Details) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewValidationError("Project name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewValidationError("Project name cannot exceed 200 characters")
	}
	clientName := strings.TrimSpace(d.ClientName)
	if clientName == "" {
		return shared.NewValidationError("Client name cannot be empty")
	}
	if d.BudgetTotal.IsNegative() {
		return shared.NewValidationError("Budget cannot be negative")
	}
	if d.ProgressPercentage < 0 || d.ProgressPercentage > 100 {
		return shared.NewValidationError("Progress must be between 0 and 100")
	}
	if d.StartDate != nil && d.EndDate != nil && d.EndDate.Before(*d.StartDate) {
		return shared.NewValidationError("End date must not be before start date")
	}
	for label, addr := range map[string]valueobject.Address{
		"address":         d.Address,
		"deliveryAddress": d.DeliveryAddress,
		"billingAddress":  d.BillingAddress,
	} {
		if err := addr.Validate(); err != nil {
			return shared.NewValidationError(label + ": " + err.Error())
		}
	}

	p.Name = name
	p.Description = strings.TrimSpace(d.Description)
	p.ClientName = clientName
	p.BudgetTotal = d.BudgetTotal.Round(2)
	p.ProgressPercentage = d.ProgressPercentage
	p.StartDate = d.StartDate
	p.EndDate = d.EndDate
	p.Address = d.Address
	p.DeliveryAddress = d.DeliveryAddress
	p.DeliveryContact = strings.TrimSpace(d.DeliveryContact)
	p.BillingAddress = d.BillingAddress
	p.BillingEmail = strings.ToLower(strings.TrimSpace(d.BillingEmail))
	return nil
}
