package project

import (
	"time"

	"github.com/atelier/backend/internal/domain/project"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectInput carries the editable fields of a new project
type ProjectInput struct {
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

// UpdateProjectInput has PATCH semantics: nil fields are left unchanged
type UpdateProjectInput struct {
	Name               *string
	Description        *string
	ClientName         *string
	Status             *project.Status
	BudgetTotal        *decimal.Decimal
	ProgressPercentage *int
	StartDate          *time.Time
	EndDate            *time.Time
	Address            *valueobject.Address
	DeliveryAddress    *valueobject.Address
	DeliveryContact    *string
	BillingAddress     *valueobject.Address
	BillingEmail       *string
}

// SpaceInput carries the editable fields of a space
type SpaceInput struct {
	Name        string
	Type        project.SpaceType
	SurfaceM2   *decimal.Decimal
	Description string
}

// UpdateSpaceInput has PATCH semantics. ClearSurface removes the surface.
type UpdateSpaceInput struct {
	Name         *string
	Type         *project.SpaceType
	SurfaceM2    *decimal.Decimal
	ClearSurface bool
	Description  *string
}

// ProjectResponse is the API view of a project
type ProjectResponse struct {
	ID                 uuid.UUID           `json:"id"`
	Name               string              `json:"name"`
	Description        string              `json:"description,omitempty"`
	ClientName         string              `json:"clientName"`
	Status             project.Status      `json:"status"`
	BudgetTotal        decimal.Decimal     `json:"budgetTotal"`
	BudgetSpent        decimal.Decimal     `json:"budgetSpent"`
	BudgetRemaining    decimal.Decimal     `json:"budgetRemaining"`
	ProgressPercentage int                 `json:"progressPercentage"`
	StartDate          *time.Time          `json:"startDate"`
	EndDate            *time.Time          `json:"endDate"`
	Address            valueobject.Address `json:"address"`
	DeliveryAddress    valueobject.Address `json:"deliveryAddress"`
	DeliveryContact    string              `json:"deliveryContact,omitempty"`
	BillingAddress     valueobject.Address `json:"billingAddress"`
	BillingEmail       string              `json:"billingEmail,omitempty"`
	CreatedBy          uuid.UUID           `json:"createdBy"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
	Access             string              `json:"access,omitempty"`
}

// SpaceResponse is the API view of a space
type SpaceResponse struct {
	ID                uuid.UUID         `json:"id"`
	ProjectID         uuid.UUID         `json:"projectId"`
	Name              string            `json:"name"`
	Type              project.SpaceType `json:"type"`
	SurfaceM2         *decimal.Decimal  `json:"surfaceM2"`
	Description       string            `json:"description,omitempty"`
	PrescriptionCount int64             `json:"prescriptionCount"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// ClientResponse is a project membership
type ClientResponse struct {
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToProjectResponse converts a domain project
func ToProjectResponse(p *project.Project, level project.AccessLevel) ProjectResponse {
	return ProjectResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		ClientName:         p.ClientName,
		Status:             p.Status,
		BudgetTotal:        p.BudgetTotal,
		BudgetSpent:        p.BudgetSpent,
		BudgetRemaining:    p.BudgetRemaining(),
		ProgressPercentage: p.ProgressPercentage,
		StartDate:          p.StartDate,
		EndDate:            p.EndDate,
		Address:            p.Address,
		DeliveryAddress:    p.DeliveryAddress,
		DeliveryContact:    p.DeliveryContact,
		BillingAddress:     p.BillingAddress,
		BillingEmail:       p.BillingEmail,
		CreatedBy:          p.CreatedBy,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
		Access:             accessName(level),
	}
}

// ToSpaceResponse converts a domain space
func ToSpaceResponse(s *project.Space) SpaceResponse {
	return SpaceResponse{
		ID:                s.ID,
		ProjectID:         s.ProjectID,
		Name:              s.Name,
		Type:              s.Type,
		SurfaceM2:         s.SurfaceM2,
		Description:       s.Description,
		PrescriptionCount: s.PrescriptionCount,
		CreatedAt:         s.CreatedAt,
	}
}

// ToClientResponse converts a membership
func ToClientResponse(c *project.ProjectClient) ClientResponse {
	return ClientResponse{UserID: c.UserID, Name: c.UserName, Email: c.UserEmail, CreatedAt: c.CreatedAt}
}

func accessName(level project.AccessLevel) string {
	switch level {
	case project.AccessOwner:
		return "owner"
	case project.AccessMember:
		return "member"
	default:
		return ""
	}
}

func (in ProjectInput) details() (project.Details, error) {
	d := project.Details{
		Name:               in.Name,
		Description:        in.Description,
		ClientName:         in.ClientName,
		BudgetTotal:        in.BudgetTotal,
		ProgressPercentage: in.ProgressPercentage,
		StartDate:          in.StartDate,
		EndDate:            in.EndDate,
		DeliveryContact:    in.DeliveryContact,
		BillingEmail:       in.BillingEmail,
	}
	var err error
	if d.Address, err = normalizeAddress("address", in.Address); err != nil {
		return d, err
	}
	if d.DeliveryAddress, err = normalizeAddress("deliveryAddress", in.DeliveryAddress); err != nil {
		return d, err
	}
	d.BillingAddress, err = normalizeAddress("billingAddress", in.BillingAddress)
	return d, err
}

func (in UpdateProjectInput) merge(p *project.Project) ProjectInput {
	out := ProjectInput{
		Name:               p.Name,
		Description:        p.Description,
		ClientName:         p.ClientName,
		BudgetTotal:        p.BudgetTotal,
		ProgressPercentage: p.ProgressPercentage,
		StartDate:          p.StartDate,
		EndDate:            p.EndDate,
		Address:            p.Address,
		DeliveryAddress:    p.DeliveryAddress,
		DeliveryContact:    p.DeliveryContact,
		BillingAddress:     p.BillingAddress,
		BillingEmail:       p.BillingEmail,
	}
	if in.Name != nil {
		out.Name = *in.Name
	}
	if in.Description != nil {
		out.Description = *in.Description
	}
	if in.ClientName != nil {
		out.ClientName = *in.ClientName
	}
	if in.BudgetTotal != nil {
		out.BudgetTotal = *in.BudgetTotal
	}
	if in.ProgressPercentage != nil {
		out.ProgressPercentage = *in.ProgressPercentage
	}
	if in.StartDate != nil {
		out.StartDate = in.StartDate
	}
	if in.EndDate != nil {
		out.EndDate = in.EndDate
	}
	if in.Address != nil {
		out.Address = *in.Address
	}
	if in.DeliveryAddress != nil {
		out.DeliveryAddress = *in.DeliveryAddress
	}
	if in.DeliveryContact != nil {
		out.DeliveryContact = *in.DeliveryContact
	}
	if in.BillingAddress != nil {
		out.BillingAddress = *in.BillingAddress
	}
	if in.BillingEmail != nil {
		out.BillingEmail = *in.BillingEmail
	}
	return out
}

func normalizeAddress(label string, a valueobject.Address) (valueobject.Address, error) {
	addr, err := valueobject.NewAddress(a.Street, a.PostalCode, a.City, a.Country)
	if err != nil {
		return addr, shared.NewValidationError(label + ": " + err.Error())
	}
	return addr, nil
}
