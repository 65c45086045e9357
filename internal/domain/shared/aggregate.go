package shared

import (
	"github.com/google/uuid"
)

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Version int
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// OwnedAggregateRoot is an aggregate root that records the user who created it.
// Ownership checks compare the session user against CreatedBy.
type OwnedAggregateRoot struct {
	BaseAggregateRoot
	CreatedBy uuid.UUID
}

// NewOwnedAggregateRoot creates a new aggregate root owned by the given user
func NewOwnedAggregateRoot(createdBy uuid.UUID) OwnedAggregateRoot {
	return OwnedAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		CreatedBy:         createdBy,
	}
}

// IsOwnedBy reports whether userID created the aggregate
func (o *OwnedAggregateRoot) IsOwnedBy(userID uuid.UUID) bool {
	return o.CreatedBy != uuid.Nil && o.CreatedBy == userID
}
