package library

import (
	"testing"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestNewResource(t *testing.T) {
	userID := uuid.New()
	categoryID := uuid.New()

	r, err := NewResource(userID, categoryID, ResourceDetails{
		Name:     "  Canapé Oslo ",
		Brand:    "HAY",
		Price:    price("1299.999"),
		PricePro: price("1040"),
		Tags:     []string{"velours", " Velours ", "", "vert"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Canapé Oslo", r.Name)
	assert.Equal(t, "1300", r.Price.String())
	assert.Equal(t, []string{"velours", "vert"}, r.Tags)
	assert.Equal(t, "canape oslo hay", r.SearchKey)
	assert.True(t, r.IsOwnedBy(userID))
	assert.Equal(t, "1040", r.SuggestedUnitPrice().String())
	assert.Empty(t, r.CategoryPath)
	assert.Nil(t, r.SubCategory2ID)
}

func TestNewResource_Validation(t *testing.T) {
	tests := []struct {
		name       string
		categoryID uuid.UUID
		details    ResourceDetails
	}{
		{"missing category", uuid.Nil, ResourceDetails{Name: "Chaise"}},
		{"empty name", uuid.New(), ResourceDetails{Name: " "}},
		{"negative price", uuid.New(), ResourceDetails{Name: "Chaise", Price: price("-1")}},
		{"bad url", uuid.New(), ResourceDetails{Name: "Chaise", ProductURL: "ftp://x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResource(uuid.New(), tt.categoryID, tt.details)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestResource_LinkLeaf(t *testing.T) {
	r, err := NewResource(uuid.New(), uuid.New(), ResourceDetails{Name: "Suspension Aim"})
	require.NoError(t, err)

	leafID := uuid.New()
	r.LinkLeaf(leafID, []string{"Luminaires", "Suspensions", "Suspensions simples"})
	require.NotNil(t, r.SubCategory2ID)
	assert.Equal(t, leafID, *r.SubCategory2ID)
	assert.Len(t, r.CategoryPath, 3)

	r.UnlinkLeaf()
	assert.Nil(t, r.SubCategory2ID)
	assert.Empty(t, r.CategoryPath)
}

func TestNewUserFavorite(t *testing.T) {
	f, err := NewUserFavorite(uuid.New(), uuid.New(), FavoriteJAdore, " à tester ")
	require.NoError(t, err)
	assert.Equal(t, "à tester", f.Notes)

	_, err = NewUserFavorite(uuid.New(), uuid.New(), FavoriteStatus("MEH"), "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}
