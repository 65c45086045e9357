package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"asc", "ASC"},
		{" ASC ", "ASC"},
		{"desc", "DESC"},
		{"", "DESC"},
		{"; DROP TABLE resources", "DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSortOrder(tt.in))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "created_at", ValidateSortField("createdAt", ResourceSortFields, "name"))
	assert.Equal(t, "price", ValidateSortField("price", ResourceSortFields, "name"))
	assert.Equal(t, "name", ValidateSortField("search_key", ResourceSortFields, "name"))
	assert.Equal(t, "name", ValidateSortField("", ResourceSortFields, "name"))
}
