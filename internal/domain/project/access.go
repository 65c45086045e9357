package project

import (
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProjectClient grants a client user access to a project
type ProjectClient struct {
	ProjectID uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time

	// UserName and UserEmail are filled by listings only
	UserName  string
	UserEmail string
}

// AccessLevel is what a user may do on a project
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	// AccessMember can read, comment and approve
	AccessMember
	// AccessOwner can do everything
	AccessOwner
)

// Viewer identifies the session user for access decisions
type Viewer struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// Access computes the level of v on p given whether a ProjectClient row exists
func Access(p *Project, v Viewer, isMember bool) AccessLevel {
	switch {
	case v.IsAdmin || p.IsOwnedBy(v.UserID):
		return AccessOwner
	case isMember:
		return AccessMember
	default:
		return AccessNone
	}
}

// Require returns ErrForbidden unless level is at least min
func (l AccessLevel) Require(min AccessLevel) error {
	if l >= min {
		return nil
	}
	if l == AccessNone {
		return shared.NewForbiddenError("You do not have access to this project")
	}
	return shared.NewForbiddenError("Only the project owner can perform this action")
}
