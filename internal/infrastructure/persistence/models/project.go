package models

import (
	"time"

	"github.com/atelier/backend/internal/domain/project"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddressColumns is an embedded postal address
type AddressColumns struct {
	Street     string `gorm:"type:varchar(300)"`
	PostalCode string `gorm:"type:varchar(20)"`
	City       string `gorm:"type:varchar(120)"`
	Country    string `gorm:"type:varchar(120)"`
}

func addressColumns(a valueobject.Address) AddressColumns {
	return AddressColumns{Street: a.Street, PostalCode: a.PostalCode, City: a.City, Country: a.Country}
}

func (c AddressColumns) toDomain() valueobject.Address {
	return valueobject.Address{Street: c.Street, PostalCode: c.PostalCode, City: c.City, Country: c.Country}
}

// ProjectModel is the persistence model for projects.
type ProjectModel struct {
	OwnedAggregateModel
	Name               string          `gorm:"type:varchar(200);not null"`
	Description        string          `gorm:"type:text"`
	ClientName         string          `gorm:"type:varchar(200);not null"`
	Status             project.Status  `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	BudgetTotal        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	BudgetSpent        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	ProgressPercentage int             `gorm:"not null;default:0"`
	StartDate          *time.Time
	EndDate            *time.Time
	Address            AddressColumns `gorm:"embedded;embeddedPrefix:address_"`
	DeliveryAddress    AddressColumns `gorm:"embedded;embeddedPrefix:delivery_"`
	DeliveryContact    string         `gorm:"type:varchar(200)"`
	BillingAddress     AddressColumns `gorm:"embedded;embeddedPrefix:billing_"`
	BillingEmail       string         `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project.
func (m *ProjectModel) ToDomain() *project.Project {
	return &project.Project{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		Name:               m.Name,
		Description:        m.Description,
		ClientName:         m.ClientName,
		Status:             m.Status,
		BudgetTotal:        m.BudgetTotal,
		BudgetSpent:        m.BudgetSpent,
		ProgressPercentage: m.ProgressPercentage,
		StartDate:          m.StartDate,
		EndDate:            m.EndDate,
		Address:            m.Address.toDomain(),
		DeliveryAddress:    m.DeliveryAddress.toDomain(),
		DeliveryContact:    m.DeliveryContact,
		BillingAddress:     m.BillingAddress.toDomain(),
		BillingEmail:       m.BillingEmail,
	}
}

// ProjectModelFromDomain creates a persistence model from a domain Project.
func ProjectModelFromDomain(p *project.Project) *ProjectModel {
	m := &ProjectModel{
		Name:               p.Name,
		Description:        p.Description,
		ClientName:         p.ClientName,
		Status:             p.Status,
		BudgetTotal:        p.BudgetTotal,
		BudgetSpent:        p.BudgetSpent,
		ProgressPercentage: p.ProgressPercentage,
		StartDate:          p.StartDate,
		EndDate:            p.EndDate,
		Address:            addressColumns(p.Address),
		DeliveryAddress:    addressColumns(p.DeliveryAddress),
		DeliveryContact:    p.DeliveryContact,
		BillingAddress:     addressColumns(p.BillingAddress),
		BillingEmail:       p.BillingEmail,
	}
	m.FromDomainOwnedAggregateRoot(p.OwnedAggregateRoot)
	return m
}

// SpaceModel is the persistence model for rooms.
type SpaceModel struct {
	BaseModel
	ProjectID   uuid.UUID         `gorm:"type:uuid;not null;index"`
	Name        string            `gorm:"type:varchar(100);not null"`
	Type        project.SpaceType `gorm:"type:varchar(30);not null;default:'AUTRE'"`
	SurfaceM2   *decimal.Decimal  `gorm:"column:surface_m2;type:decimal(10,2)"`
	Description string            `gorm:"type:text"`

	PrescriptionCount int64 `gorm:"->;-:migration"`
}

// TableName returns the table name for GORM
func (SpaceModel) TableName() string {
	return "spaces"
}

// ToDomain converts the model
func (m *SpaceModel) ToDomain() *project.Space {
	return &project.Space{
		BaseEntity:        m.BaseModel.ToDomain(),
		ProjectID:         m.ProjectID,
		Name:              m.Name,
		Type:              m.Type,
		SurfaceM2:         m.SurfaceM2,
		Description:       m.Description,
		PrescriptionCount: m.PrescriptionCount,
	}
}

// SpaceModelFromDomain maps the row
func SpaceModelFromDomain(s *project.Space) *SpaceModel {
	m := &SpaceModel{
		ProjectID:   s.ProjectID,
		Name:        s.Name,
		Type:        s.Type,
		SurfaceM2:   s.SurfaceM2,
		Description: s.Description,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// ProjectClientModel links a client user to a project.
type ProjectClientModel struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"not null"`

	UserName  string `gorm:"->;-:migration"`
	UserEmail string `gorm:"->;-:migration"`
}

// TableName returns the table name for GORM
func (ProjectClientModel) TableName() string {
	return "project_clients"
}

// ToDomain converts the row
func (m *ProjectClientModel) ToDomain() *project.ProjectClient {
	return &project.ProjectClient{
		ProjectID: m.ProjectID,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
		UserName:  m.UserName,
		UserEmail: m.UserEmail,
	}
}

// ProjectClientModelFromDomain maps the row
func ProjectClientModelFromDomain(c *project.ProjectClient) *ProjectClientModel {
	return &ProjectClientModel{ProjectID: c.ProjectID, UserID: c.UserID, CreatedAt: c.CreatedAt}
}
