package prescription

import (
	"time"

	"github.com/atelier/backend/internal/domain/library"
	"github.com/atelier/backend/internal/domain/prescription"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePrescriptionInput carries a new line item. Fields left empty are
// cloned from ResourceID when it is set.
type CreatePrescriptionInput struct {
	SpaceID     *uuid.UUID
	CategoryID  *uuid.UUID
	ResourceID  *uuid.UUID
	Name        string
	Description string
	Brand       string
	Reference   string
	Supplier    string
	ProductURL  string
	Notes       string
	Quantity    int
	UnitPrice   *decimal.Decimal
	TotalPrice  *decimal.Decimal
}

// UpdatePrescriptionInput has PATCH semantics: nil fields are left unchanged.
// ClearSpace unassigns the prescription from its space.
type UpdatePrescriptionInput struct {
	SpaceID     *uuid.UUID
	ClearSpace  bool
	CategoryID  *uuid.UUID
	Name        *string
	Description *string
	Brand       *string
	Reference   *string
	Supplier    *string
	ProductURL  *string
	Notes       *string
	Quantity    *int
	UnitPrice   *decimal.Decimal
	TotalPrice  *decimal.Decimal
	Status      *prescription.Status
}

// IsEmpty reports whether the input changes nothing
func (in UpdatePrescriptionInput) IsEmpty() bool {
	return in == UpdatePrescriptionInput{}
}

// PrescriptionResponse is the API view of a prescription
type PrescriptionResponse struct {
	ID          uuid.UUID           `json:"id"`
	ProjectID   uuid.UUID           `json:"projectId"`
	SpaceID     *uuid.UUID          `json:"spaceId"`
	CategoryID  uuid.UUID           `json:"categoryId"`
	ResourceID  *uuid.UUID          `json:"resourceId,omitempty"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Brand       string              `json:"brand,omitempty"`
	Reference   string              `json:"reference,omitempty"`
	Supplier    string              `json:"supplier,omitempty"`
	ProductURL  string              `json:"productUrl,omitempty"`
	Quantity    int                 `json:"quantity"`
	UnitPrice   *decimal.Decimal    `json:"unitPrice"`
	TotalPrice  *decimal.Decimal    `json:"totalPrice"`
	Status      prescription.Status `json:"status"`
	Notes       string              `json:"notes,omitempty"`
	ValidatedAt *time.Time          `json:"validatedAt"`
	OrderedAt   *time.Time          `json:"orderedAt"`
	DeliveredAt *time.Time          `json:"deliveredAt"`
	CreatedBy   uuid.UUID           `json:"createdBy"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// ApprovalResponse is one client's decision
type ApprovalResponse struct {
	PrescriptionID uuid.UUID                   `json:"prescriptionId"`
	UserID         uuid.UUID                   `json:"userId"`
	UserName       string                      `json:"userName,omitempty"`
	Status         prescription.ApprovalStatus `json:"status"`
	Comment        string                      `json:"comment,omitempty"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
}

// CommentResponse is one message of a prescription thread
type CommentResponse struct {
	ID         uuid.UUID `json:"id"`
	Content    string    `json:"content"`
	CreatedBy  uuid.UUID `json:"createdBy"`
	AuthorName string    `json:"authorName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BudgetReport is the outcome of a budget recalculation
type BudgetReport struct {
	ProjectID    uuid.UUID       `json:"projectId"`
	Previous     decimal.Decimal `json:"previous"`
	Recalculated decimal.Decimal `json:"recalculated"`
	Drift        decimal.Decimal `json:"drift"`
	Corrected    bool            `json:"corrected"`
}

// ToPrescriptionResponse converts a domain prescription
func ToPrescriptionResponse(p *prescription.Prescription) PrescriptionResponse {
	return PrescriptionResponse{
		ID:          p.ID,
		ProjectID:   p.ProjectID,
		SpaceID:     p.SpaceID,
		CategoryID:  p.CategoryID,
		ResourceID:  p.ResourceID,
		Name:        p.Name,
		Description: p.Description,
		Brand:       p.Brand,
		Reference:   p.Reference,
		Supplier:    p.Supplier,
		ProductURL:  p.ProductURL,
		Quantity:    p.Quantity,
		UnitPrice:   p.UnitPrice,
		TotalPrice:  p.TotalPrice,
		Status:      p.Status,
		Notes:       p.Notes,
		ValidatedAt: p.ValidatedAt,
		OrderedAt:   p.OrderedAt,
		DeliveredAt: p.DeliveredAt,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToApprovalResponse converts an approval row
func ToApprovalResponse(a *prescription.Approval) ApprovalResponse {
	return ApprovalResponse{
		PrescriptionID: a.PrescriptionID,
		UserID:         a.UserID,
		UserName:       a.UserName,
		Status:         a.Status,
		Comment:        a.Comment,
		UpdatedAt:      a.UpdatedAt,
	}
}

// ToCommentResponse converts a comment
func ToCommentResponse(c *prescription.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		Content:    c.Content,
		CreatedBy:  c.CreatedBy,
		AuthorName: c.AuthorName,
		CreatedAt:  c.CreatedAt,
	}
}

// withResource fills blank fields from a library resource. The professional
// price wins over the public one.
func (in CreatePrescriptionInput) withResource(r *library.Resource) CreatePrescriptionInput {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&in.Name, r.Name)
	fill(&in.Brand, r.Brand)
	fill(&in.Reference, r.Reference)
	fill(&in.Supplier, r.Supplier)
	fill(&in.ProductURL, r.ProductURL)
	if in.UnitPrice == nil && in.TotalPrice == nil {
		switch {
		case r.PricePro != nil:
			in.UnitPrice = r.PricePro
		case r.Price != nil:
			in.UnitPrice = r.Price
		}
	}
	if in.CategoryID == nil && r.CategoryID != uuid.Nil {
		id := r.CategoryID
		in.CategoryID = &id
	}
	return in
}

func (in CreatePrescriptionInput) details() prescription.Details {
	return prescription.Details{
		Name:        in.Name,
		Description: in.Description,
		Brand:       in.Brand,
		Reference:   in.Reference,
		Supplier:    in.Supplier,
		ProductURL:  in.ProductURL,
		Notes:       in.Notes,
	}
}

func (in CreatePrescriptionInput) pricing() prescription.Pricing {
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	return prescription.Pricing{Quantity: qty, UnitPrice: in.UnitPrice, TotalPrice: in.TotalPrice}
}

// mergeDetails overlays the set fields on the current values
func (in UpdatePrescriptionInput) mergeDetails(p *prescription.Prescription) (prescription.Details, bool) {
	d := prescription.Details{
		Name:        p.Name,
		Description: p.Description,
		Brand:       p.Brand,
		Reference:   p.Reference,
		Supplier:    p.Supplier,
		ProductURL:  p.ProductURL,
		Notes:       p.Notes,
	}
	changed := false
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
			changed = true
		}
	}
	set(&d.Name, in.Name)
	set(&d.Description, in.Description)
	set(&d.Brand, in.Brand)
	set(&d.Reference, in.Reference)
	set(&d.Supplier, in.Supplier)
	set(&d.ProductURL, in.ProductURL)
	set(&d.Notes, in.Notes)
	return d, changed
}

// mergePricing returns the pricing to apply, or false when none of the price
// fields is set. A total without a unit price is an explicit total and drops
// the stored unit price.
func (in UpdatePrescriptionInput) mergePricing(p *prescription.Prescription) (prescription.Pricing, bool) {
	if in.Quantity == nil && in.UnitPrice == nil && in.TotalPrice == nil {
		return prescription.Pricing{}, false
	}
	pr := p.CurrentPricing()
	if in.Quantity != nil {
		pr.Quantity = *in.Quantity
	}
	switch {
	case in.UnitPrice != nil:
		pr.UnitPrice = in.UnitPrice
		pr.TotalPrice = nil
	case in.TotalPrice != nil:
		pr.UnitPrice = nil
		pr.TotalPrice = in.TotalPrice
	}
	return pr, true
}
