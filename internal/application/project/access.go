package project

import (
	"context"

	"github.com/atelier/backend/internal/domain/project"
	"github.com/google/uuid"
)

// AccessChecker resolves what a session user may do on a project.
// Every service that touches project data calls it before reading or writing.
type AccessChecker struct {
	projects project.ProjectRepository
	clients  project.ClientRepository
}

// NewAccessChecker creates a new AccessChecker
func NewAccessChecker(projects project.ProjectRepository, clients project.ClientRepository) *AccessChecker {
	return &AccessChecker{projects: projects, clients: clients}
}

// Require loads the project and fails with a forbidden error when the viewer's
// level is below min. A missing project is a not-found error.
func (a *AccessChecker) Require(ctx context.Context, projectID uuid.UUID, v project.Viewer, min project.AccessLevel) (*project.Project, project.AccessLevel, error) {
	p, err := a.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, project.AccessNone, err
	}
	level, err := a.Level(ctx, p, v)
	if err != nil {
		return nil, project.AccessNone, err
	}
	if err := level.Require(min); err != nil {
		return nil, level, err
	}
	return p, level, nil
}

// Level computes the viewer's level on an already loaded project
func (a *AccessChecker) Level(ctx context.Context, p *project.Project, v project.Viewer) (project.AccessLevel, error) {
	if level := project.Access(p, v, false); level == project.AccessOwner {
		return level, nil
	}
	member, err := a.clients.Exists(ctx, p.ID, v.UserID)
	if err != nil {
		return project.AccessNone, err
	}
	return project.Access(p, v, member), nil
}

// IsClient reports whether the viewer holds a ProjectClient row on projectID
func (a *AccessChecker) IsClient(ctx context.Context, projectID uuid.UUID, v project.Viewer) (bool, error) {
	return a.clients.Exists(ctx, projectID, v.UserID)
}
