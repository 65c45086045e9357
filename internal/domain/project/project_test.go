package project

import (
	"testing"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() Details {
	return Details{
		Name:        "Appartement Haussmann",
		ClientName:  "Famille Durand",
		BudgetTotal: decimal.NewFromInt(50000),
	}
}

func TestNewProject(t *testing.T) {
	owner := uuid.New()
	p, err := NewProject(owner, validDetails())
	require.NoError(t, err)

	assert.Equal(t, StatusActive, p.Status)
	assert.True(t, p.BudgetSpent.IsZero())
	assert.True(t, p.IsOwnedBy(owner))
	assert.Equal(t, "50000", p.BudgetRemaining().String())
}

func TestNewProject_Validation(t *testing.T) {
	start := time.Now()
	end := start.Add(-time.Hour)

	tests := []struct {
		name   string
		mutate func(d *Details)
	}{
		{"empty name", func(d *Details) { d.Name = "" }},
		{"empty client", func(d *Details) { d.ClientName = " " }},
		{"negative budget", func(d *Details) { d.BudgetTotal = decimal.NewFromInt(-1) }},
		{"progress above 100", func(d *Details) { d.ProgressPercentage = 101 }},
		{"end before start", func(d *Details) { d.StartDate, d.EndDate = &start, &end }},
		{"incomplete address", func(d *Details) { d.BillingAddress = valueobject.Address{PostalCode: "75001"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDetails()
			tt.mutate(&d)
			_, err := NewProject(uuid.New(), d)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestProject_UpdateKeepsBudgetSpent(t *testing.T) {
	p, err := NewProject(uuid.New(), validDetails())
	require.NoError(t, err)
	p.BudgetSpent = decimal.NewFromInt(1200)

	d := validDetails()
	d.BudgetTotal = decimal.NewFromInt(1000)
	require.NoError(t, p.Update(d))

	assert.Equal(t, "1200", p.BudgetSpent.String())
	assert.Equal(t, "-200", p.BudgetRemaining().String())
}

func TestAccess(t *testing.T) {
	owner := uuid.New()
	p, _ := NewProject(owner, validDetails())
	client := uuid.New()

	assert.Equal(t, AccessOwner, Access(p, Viewer{UserID: owner}, false))
	assert.Equal(t, AccessOwner, Access(p, Viewer{UserID: uuid.New(), IsAdmin: true}, false))
	assert.Equal(t, AccessMember, Access(p, Viewer{UserID: client}, true))
	assert.Equal(t, AccessNone, Access(p, Viewer{UserID: client}, false))

	assert.NoError(t, AccessOwner.Require(AccessMember))
	assert.ErrorIs(t, AccessMember.Require(AccessOwner), shared.ErrForbidden)
	assert.ErrorIs(t, AccessNone.Require(AccessMember), shared.ErrForbidden)
}

func TestNewSpace(t *testing.T) {
	surface := decimal.RequireFromString("23.456")
	s, err := NewSpace(uuid.New(), "Salon principal", SpaceSalon, &surface, "")
	require.NoError(t, err)
	assert.Equal(t, "23.46", s.SurfaceM2.String())

	s, err = NewSpace(uuid.New(), "Cellier", "", nil, "")
	require.NoError(t, err)
	assert.Equal(t, SpaceAutre, s.Type)

	_, err = NewSpace(uuid.New(), "Grenier", SpaceType("GRENIER"), nil, "")
	assert.ErrorIs(t, err, shared.ErrValidation)

	zero := decimal.Zero
	_, err = NewSpace(uuid.New(), "Grenier", SpaceAutre, &zero, "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}
