package project

import (
	"context"
	"errors"
	"slices"

	"github.com/atelier/backend/internal/domain/document"
	"github.com/atelier/backend/internal/domain/identity"
	"github.com/atelier/backend/internal/domain/project"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProjectService manages projects, their spaces and client memberships
type ProjectService struct {
	txScope  TransactionScope
	projects project.ProjectRepository
	spaces   project.SpaceRepository
	clients  project.ClientRepository
	users    identity.UserRepository
	access   *AccessChecker
	store    ObjectDeleter
	metrics  *telemetry.BusinessMetrics
	logger   *zap.Logger
}

// ProjectServiceDeps bundles the collaborators of ProjectService
type ProjectServiceDeps struct {
	TxScope  TransactionScope
	Projects project.ProjectRepository
	Spaces   project.SpaceRepository
	Clients  project.ClientRepository
	Users    identity.UserRepository
	Access   *AccessChecker
	Store    ObjectDeleter
	Metrics  *telemetry.BusinessMetrics
	Logger   *zap.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(deps ProjectServiceDeps) *ProjectService {
	return &ProjectService{
		txScope:  deps.TxScope,
		projects: deps.Projects,
		spaces:   deps.Spaces,
		clients:  deps.Clients,
		users:    deps.Users,
		access:   deps.Access,
		store:    deps.Store,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
}

// Create creates a project owned by the viewer
func (s *ProjectService) Create(ctx context.Context, v project.Viewer, in ProjectInput) (*ProjectResponse, error) {
	details, err := in.details()
	if err != nil {
		return nil, err
	}
	p, err := project.NewProject(v.UserID, details)
	if err != nil {
		return nil, err
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.Enrich(ctx, s.logger).Info("Project created", zap.String("project_id", p.ID.String()))
	resp := ToProjectResponse(p, project.AccessOwner)
	return &resp, nil
}

// Get returns a project the viewer owns or is a client of
func (s *ProjectService) Get(ctx context.Context, v project.Viewer, id uuid.UUID) (*ProjectResponse, error) {
	p, level, err := s.access.Require(ctx, id, v, project.AccessMember)
	if err != nil {
		return nil, err
	}
	resp := ToProjectResponse(p, level)
	return &resp, nil
}

// ListAccessible returns the projects the viewer created or was invited to; all of them for an admin
func (s *ProjectService) ListAccessible(ctx context.Context, v project.Viewer) ([]ProjectResponse, error) {
	var scope *uuid.UUID
	if !v.IsAdmin {
		scope = &v.UserID
	}
	list, err := s.projects.FindAccessible(ctx, scope)
	if err != nil {
		return nil, err
	}
	out := make([]ProjectResponse, 0, len(list))
	for _, p := range list {
		level := project.Access(p, v, true)
		out = append(out, ToProjectResponse(p, level))
	}
	return out, nil
}

// Update applies a partial update; budgetSpent is not part of it
func (s *ProjectService) Update(ctx context.Context, v project.Viewer, id uuid.UUID, in UpdateProjectInput) (*ProjectResponse, error) {
	p, _, err := s.access.Require(ctx, id, v, project.AccessOwner)
	if err != nil {
		return nil, err
	}
	details, err := in.merge(p).details()
	if err != nil {
		return nil, err
	}
	if err := p.Update(details); err != nil {
		return nil, err
	}
	if in.Status != nil {
		if err := p.SetStatus(*in.Status); err != nil {
			return nil, err
		}
	}
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := ToProjectResponse(p, project.AccessOwner)
	return &resp, nil
}

// Delete removes the project and everything under it in one transaction.
// Stored files are removed afterwards, best-effort.
func (s *ProjectService) Delete(ctx context.Context, v project.Viewer, id uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "Delete")
	defer func() { telemetry.EndSpan(span, err) }()

	if _, _, err := s.access.Require(ctx, id, v, project.AccessOwner); err != nil {
		return err
	}

	var removed []*document.Document
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ids, err := repos.Prescriptions().FindIDsByProject(ctx, id)
		if err != nil {
			return err
		}
		if err := repos.Approvals().DeleteByPrescriptions(ctx, ids); err != nil {
			return err
		}
		if err := repos.Comments().DeleteByPrescriptions(ctx, ids); err != nil {
			return err
		}
		if removed, err = repos.Documents().DeleteByProject(ctx, id); err != nil {
			return err
		}
		if err := repos.Prescriptions().DeleteByProject(ctx, id); err != nil {
			return err
		}
		if err := repos.Spaces().DeleteByProject(ctx, id); err != nil {
			return err
		}
		if err := repos.Clients().DeleteByProject(ctx, id); err != nil {
			return err
		}
		return repos.Projects().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	failed := PurgeObjects(ctx, s.store, removed, s.metrics, s.logger)
	logger.Enrich(ctx, s.logger).Info("Project deleted",
		zap.String("project_id", id.String()),
		zap.Int("documents", len(removed)),
		zap.Int("orphaned_files", failed),
	)
	return nil
}

// ListClients returns the client memberships of a project
func (s *ProjectService) ListClients(ctx context.Context, v project.Viewer, projectID uuid.UUID) ([]ClientResponse, error) {
	if _, _, err := s.access.Require(ctx, projectID, v, project.AccessMember); err != nil {
		return nil, err
	}
	list, err := s.clients.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]ClientResponse, 0, len(list))
	for _, c := range list {
		out = append(out, ToClientResponse(c))
	}
	return out, nil
}

// AddClient grants a CLIENT user access to the project. Adding an existing member is a no-op.
func (s *ProjectService) AddClient(ctx context.Context, v project.Viewer, projectID uuid.UUID, email string) (*ClientResponse, error) {
	if _, _, err := s.access.Require(ctx, projectID, v, project.AccessOwner); err != nil {
		return nil, err
	}
	user, err := s.users.FindByEmail(ctx, identity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("User")
		}
		return nil, err
	}
	if user.Role != identity.RoleClient {
		return nil, shared.NewValidationError("Only users with the CLIENT role can be added to a project")
	}

	member := &project.ProjectClient{ProjectID: projectID, UserID: user.ID}
	exists, err := s.clients.Exists(ctx, projectID, user.ID)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := s.clients.Add(ctx, member); err != nil && !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}
		logger.Enrich(ctx, s.logger).Info("Client added to project",
			zap.String("project_id", projectID.String()),
			zap.String("client_id", user.ID.String()),
		)
	}

	list, err := s.clients.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if i := slices.IndexFunc(list, func(c *project.ProjectClient) bool { return c.UserID == user.ID }); i >= 0 {
		member = list[i]
	}
	resp := ToClientResponse(member)
	resp.Name, resp.Email = user.Name, user.Email
	return &resp, nil
}

// RemoveClient revokes a membership
func (s *ProjectService) RemoveClient(ctx context.Context, v project.Viewer, projectID, userID uuid.UUID) error {
	if _, _, err := s.access.Require(ctx, projectID, v, project.AccessOwner); err != nil {
		return err
	}
	return s.clients.Remove(ctx, projectID, userID)
}
