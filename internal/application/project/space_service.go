package project

import (
	"context"

	"github.com/atelier/backend/internal/domain/document"
	"github.com/atelier/backend/internal/domain/project"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateSpace adds a room to a project
func (s *ProjectService) CreateSpace(ctx context.Context, v project.Viewer, projectID uuid.UUID, in SpaceInput) (*SpaceResponse, error) {
	if _, _, err := s.access.Require(ctx, projectID, v, project.AccessOwner); err != nil {
		return nil, err
	}
	space, err := project.NewSpace(projectID, in.Name, in.Type, in.SurfaceM2, in.Description)
	if err != nil {
		return nil, err
	}
	if err := s.spaces.Create(ctx, space); err != nil {
		return nil, err
	}
	resp := ToSpaceResponse(space)
	return &resp, nil
}

// ListSpaces returns the rooms of a project with their prescription counts
func (s *ProjectService) ListSpaces(ctx context.Context, v project.Viewer, projectID uuid.UUID) ([]SpaceResponse, error) {
	if _, _, err := s.access.Require(ctx, projectID, v, project.AccessMember); err != nil {
		return nil, err
	}
	list, err := s.spaces.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]SpaceResponse, 0, len(list))
	for _, sp := range list {
		out = append(out, ToSpaceResponse(sp))
	}
	return out, nil
}

// UpdateSpace applies a partial update to a room
func (s *ProjectService) UpdateSpace(ctx context.Context, v project.Viewer, spaceID uuid.UUID, in UpdateSpaceInput) (*SpaceResponse, error) {
	space, err := s.spaces.FindByID(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.access.Require(ctx, space.ProjectID, v, project.AccessOwner); err != nil {
		return nil, err
	}

	name, typ, surface, description := space.Name, space.Type, space.SurfaceM2, space.Description
	if in.Name != nil {
		name = *in.Name
	}
	if in.Type != nil {
		typ = *in.Type
	}
	if in.SurfaceM2 != nil {
		surface = in.SurfaceM2
	}
	if in.ClearSurface {
		surface = nil
	}
	if in.Description != nil {
		description = *in.Description
	}
	if err := space.Update(name, typ, surface, description); err != nil {
		return nil, err
	}
	if err := s.spaces.Update(ctx, space); err != nil {
		return nil, err
	}
	resp := ToSpaceResponse(space)
	return &resp, nil
}

// DeleteSpace removes an empty room. The emptiness check and the delete share
// one transaction, so a prescription added concurrently blocks the delete.
func (s *ProjectService) DeleteSpace(ctx context.Context, v project.Viewer, spaceID uuid.UUID) error {
	space, err := s.spaces.FindByID(ctx, spaceID)
	if err != nil {
		return err
	}
	if _, _, err := s.access.Require(ctx, space.ProjectID, v, project.AccessOwner); err != nil {
		return err
	}

	var removed []*document.Document
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		n, err := repos.Prescriptions().CountBySpace(ctx, spaceID)
		if err != nil {
			return err
		}
		if n > 0 {
			return project.ErrSpaceNotEmpty
		}
		if removed, err = repos.Documents().DeleteByOwners(ctx, document.OwnerSpace, []uuid.UUID{spaceID}); err != nil {
			return err
		}
		return repos.Spaces().Delete(ctx, spaceID)
	})
	if err != nil {
		return err
	}

	PurgeObjects(ctx, s.store, removed, s.metrics, s.logger)
	logger.Enrich(ctx, s.logger).Info("Space deleted", zap.String("space_id", spaceID.String()))
	return nil
}
