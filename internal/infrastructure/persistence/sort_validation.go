package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns defaultField if the input is empty or not allowed.
func ValidateSortField(sortField string, allowedFields map[string]string, defaultField string) string {
	if column, ok := allowedFields[strings.TrimSpace(sortField)]; ok {
		return column
	}
	return defaultField
}

// ResourceSortFields maps accepted sort keys (API or column spelling) to columns
var ResourceSortFields = map[string]string{
	"name":       "name",
	"brand":      "brand",
	"price":      "price",
	"createdAt":  "created_at",
	"created_at": "created_at",
	"updatedAt":  "updated_at",
	"updated_at": "updated_at",
}
