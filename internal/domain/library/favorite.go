package library

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// FavoriteStatus is how much a user likes a resource
type FavoriteStatus string

const (
	FavoriteNotOK  FavoriteStatus = "PAS_OK"
	FavoriteOK     FavoriteStatus = "OK"
	FavoriteJAdore FavoriteStatus = "J_ADORE"
)

// IsValid reports whether s is a known status
func (s FavoriteStatus) IsValid() bool {
	switch s {
	case FavoriteNotOK, FavoriteOK, FavoriteJAdore:
		return true
	}
	return false
}

// UserFavorite is unique per (UserID, ResourceID); writes replace the previous row
type UserFavorite struct {
	UserID     uuid.UUID
	ResourceID uuid.UUID
	Status     FavoriteStatus
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Resource *Resource
}

// NewUserFavorite validates and builds a favorite row
func NewUserFavorite(userID, resourceID uuid.UUID, status FavoriteStatus, notes string) (*UserFavorite, error) {
	if userID == uuid.Nil || resourceID == uuid.Nil {
		return nil, shared.NewValidationError("User and resource are required")
	}
	if !status.IsValid() {
		return nil, shared.NewValidationError("Status must be one of PAS_OK, OK, J_ADORE")
	}
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > 2000 {
		return nil, shared.NewValidationError("Notes cannot exceed 2000 characters")
	}
	now := shared.Timestamp()
	return &UserFavorite{
		UserID:     userID,
		ResourceID: resourceID,
		Status:     status,
		Notes:      notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
