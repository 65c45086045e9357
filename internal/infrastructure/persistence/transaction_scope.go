package persistence

import (
	"context"

	appproject "github.com/atelier/backend/internal/application/project"
	"github.com/atelier/backend/internal/domain/document"
	"github.com/atelier/backend/internal/domain/prescription"
	"github.com/atelier/backend/internal/domain/project"
	"gorm.io/gorm"
)

// GormTransactionScope implements the project TransactionScope with a GORM transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside one transaction; an error from fn rolls back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appproject.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Projects() project.ProjectRepository {
	return NewGormProjectRepository(r.tx)
}

func (r *gormTransactionalRepositories) Spaces() project.SpaceRepository {
	return NewGormSpaceRepository(r.tx)
}

func (r *gormTransactionalRepositories) Clients() project.ClientRepository {
	return NewGormClientRepository(r.tx)
}

func (r *gormTransactionalRepositories) Prescriptions() prescription.PrescriptionRepository {
	return NewGormPrescriptionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Approvals() prescription.ApprovalRepository {
	return NewGormApprovalRepository(r.tx)
}

func (r *gormTransactionalRepositories) Comments() prescription.CommentRepository {
	return NewGormCommentRepository(r.tx)
}

func (r *gormTransactionalRepositories) Documents() document.Repository {
	return NewGormDocumentRepository(r.tx)
}

var (
	_ appproject.TransactionScope          = (*GormTransactionScope)(nil)
	_ appproject.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
