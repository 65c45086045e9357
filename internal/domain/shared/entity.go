package shared

import (
	"time"

	"github.com/google/uuid"
)

// Timestamp returns the current time in UTC at microsecond precision, the
// resolution Postgres keeps, so a stamped value survives a round trip unchanged.
func Timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// BaseEntity carries the identity and audit stamps of a stored record
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity stamps a fresh record with a random ID
func NewBaseEntity() BaseEntity {
	now := Timestamp()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch records a modification. UpdatedAt never moves backwards or before CreatedAt.
func (e *BaseEntity) Touch() {
	now := Timestamp()
	if now.Before(e.UpdatedAt) {
		return
	}
	if now.Before(e.CreatedAt) {
		now = e.CreatedAt
	}
	e.UpdatedAt = now
}
