package project

import (
	"context"

	"github.com/atelier/backend/internal/domain/document"
	"github.com/atelier/backend/internal/domain/prescription"
	"github.com/atelier/backend/internal/domain/project"
)

// TransactionScope runs a unit of work against repositories that share one
// database transaction. A returned error rolls the whole unit back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories a project-scoped unit of
// work may touch. Every repository returned shares the same transaction.
//
// Budget bookkeeping goes through Projects().AdjustBudgetSpent in the same
// unit as the prescription write it accounts for.
type TransactionalRepositories interface {
	Projects() project.ProjectRepository
	Spaces() project.SpaceRepository
	Clients() project.ClientRepository
	Prescriptions() prescription.PrescriptionRepository
	Approvals() prescription.ApprovalRepository
	Comments() prescription.CommentRepository
	Documents() document.Repository
}

// NoOpTransactionScope calls fn directly with the repositories it was built
// with. Used by tests and by callers that do not need atomicity.
type NoOpTransactionScope struct {
	Repos Repositories
}

// Repositories is a plain bundle of repositories
type Repositories struct {
	ProjectRepo      project.ProjectRepository
	SpaceRepo        project.SpaceRepository
	ClientRepo       project.ClientRepository
	PrescriptionRepo prescription.PrescriptionRepository
	ApprovalRepo     prescription.ApprovalRepository
	CommentRepo      prescription.CommentRepository
	DocumentRepo     document.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{Repos: repos}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.Repos)
}

func (r Repositories) Projects() project.ProjectRepository                { return r.ProjectRepo }
func (r Repositories) Spaces() project.SpaceRepository                    { return r.SpaceRepo }
func (r Repositories) Clients() project.ClientRepository                  { return r.ClientRepo }
func (r Repositories) Prescriptions() prescription.PrescriptionRepository { return r.PrescriptionRepo }
func (r Repositories) Approvals() prescription.ApprovalRepository         { return r.ApprovalRepo }
func (r Repositories) Comments() prescription.CommentRepository           { return r.CommentRepo }
func (r Repositories) Documents() document.Repository                     { return r.DocumentRepo }

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = Repositories{}
)
