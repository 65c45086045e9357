package prescription

import (
	"context"
	"errors"
	"time"

	appproject "github.com/atelier/backend/internal/application/project"
	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/domain/document"
	"github.com/atelier/backend/internal/domain/library"
	"github.com/atelier/backend/internal/domain/prescription"
	"github.com/atelier/backend/internal/domain/project"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/atelier/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PrescriptionService manages prescriptions and keeps Project.BudgetSpent in
// step with them. Every write that changes a total adjusts the budget inside
// the same transaction.
type PrescriptionService struct {
	txScope       appproject.TransactionScope
	prescriptions prescription.PrescriptionRepository
	approvals     prescription.ApprovalRepository
	comments      prescription.CommentRepository
	spaces        project.SpaceRepository
	resources     library.ResourceRepository
	categories    catalog.PrescriptionCategoryRepository
	access        *appproject.AccessChecker
	store         appproject.ObjectDeleter
	metrics       *telemetry.BusinessMetrics
	logger        *zap.Logger
	now           func() time.Time
}

// Deps bundles the collaborators of PrescriptionService
type Deps struct {
	TxScope       appproject.TransactionScope
	Prescriptions prescription.PrescriptionRepository
	Approvals     prescription.ApprovalRepository
	Comments      prescription.CommentRepository
	Spaces        project.SpaceRepository
	Resources     library.ResourceRepository
	Categories    catalog.PrescriptionCategoryRepository
	Access        *appproject.AccessChecker
	Store         appproject.ObjectDeleter
	Metrics       *telemetry.BusinessMetrics
	Logger        *zap.Logger
}

// NewPrescriptionService creates a new PrescriptionService
func NewPrescriptionService(deps Deps) *PrescriptionService {
	return &PrescriptionService{
		txScope:       deps.TxScope,
		prescriptions: deps.Prescriptions,
		approvals:     deps.Approvals,
		comments:      deps.Comments,
		spaces:        deps.Spaces,
		resources:     deps.Resources,
		categories:    deps.Categories,
		access:        deps.Access,
		store:         deps.Store,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
		now:           time.Now,
	}
}

// Create inserts a prescription and adds its total to the project budget
func (s *PrescriptionService) Create(ctx context.Context, v project.Viewer, projectID uuid.UUID, in CreatePrescriptionInput) (resp *PrescriptionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "prescription", "Create")
	defer func() { telemetry.EndSpan(span, err) }()

	if _, _, err := s.access.Require(ctx, projectID, v, project.AccessOwner); err != nil {
		return nil, err
	}
	if in.ResourceID != nil {
		r, err := s.resources.FindByID(ctx, *in.ResourceID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewValidationError("Library resource does not exist")
			}
			return nil, err
		}
		in = in.withResource(r)
	}
	if in.CategoryID == nil {
		return nil, shared.NewValidationError("Category is required")
	}
	if err := s.requireCategory(ctx, *in.CategoryID); err != nil {
		return nil, err
	}
	if err := s.requireSpace(ctx, projectID, in.SpaceID); err != nil {
		return nil, err
	}

	p, err := prescription.NewPrescription(v.UserID, projectID, *in.CategoryID, in.SpaceID, in.details(), in.pricing())
	if err != nil {
		return nil, err
	}
	p.ResourceID = in.ResourceID

	err = s.txScope.Execute(ctx, func(repos appproject.TransactionalRepositories) error {
		if err := repos.Prescriptions().Create(ctx, p); err != nil {
			return err
		}
		return repos.Projects().AdjustBudgetSpent(ctx, projectID, p.Total())
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPrescriptionWrite(ctx, "create", p.Total())
	logger.Enrich(ctx, s.logger).Info("Prescription created",
		zap.String("prescription_id", p.ID.String()),
		zap.String("project_id", projectID.String()),
		zap.String("total", p.Total().StringFixed(2)),
	)
	out := ToPrescriptionResponse(p)
	return &out, nil
}

// Get returns a prescription to the project owner or a member
func (s *PrescriptionService) Get(ctx context.Context, v project.Viewer, id uuid.UUID) (*PrescriptionResponse, error) {
	p, _, err := s.load(ctx, v, id, project.AccessMember)
	if err != nil {
		return nil, err
	}
	out := ToPrescriptionResponse(p)
	return &out, nil
}

// List returns the project's prescriptions matching filter
func (s *PrescriptionService) List(ctx context.Context, v project.Viewer, projectID uuid.UUID, filter prescription.Filter) ([]PrescriptionResponse, error) {
	if _, _, err := s.access.Require(ctx, projectID, v, project.AccessMember); err != nil {
		return nil, err
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, shared.NewValidationError("Unknown status " + string(*filter.Status))
	}
	list, err := s.prescriptions.FindByProject(ctx, projectID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]PrescriptionResponse, 0, len(list))
	for _, p := range list {
		out = append(out, ToPrescriptionResponse(p))
	}
	return out, nil
}

// Update applies a partial update. The row is re-read under lock so the
// budget delta is computed against the stored total.
func (s *PrescriptionService) Update(ctx context.Context, v project.Viewer, id uuid.UUID, in UpdatePrescriptionInput) (resp *PrescriptionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "prescription", "Update")
	defer func() { telemetry.EndSpan(span, err) }()

	current, _, err := s.load(ctx, v, id, project.AccessOwner)
	if err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		if err := s.requireCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}
	if in.SpaceID != nil && !in.ClearSpace {
		if err := s.requireSpace(ctx, current.ProjectID, in.SpaceID); err != nil {
			return nil, err
		}
	}

	var (
		updated *prescription.Prescription
		delta   decimal.Decimal
	)
	err = s.txScope.Execute(ctx, func(repos appproject.TransactionalRepositories) error {
		p, err := repos.Prescriptions().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if delta, err = s.apply(p, in); err != nil {
			return err
		}
		if err := repos.Prescriptions().Update(ctx, p); err != nil {
			return err
		}
		if err := repos.Projects().AdjustBudgetSpent(ctx, p.ProjectID, delta); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPrescriptionWrite(ctx, "update", delta)
	logger.Enrich(ctx, s.logger).Info("Prescription updated",
		zap.String("prescription_id", id.String()),
		zap.String("budget_delta", delta.StringFixed(2)),
	)
	out := ToPrescriptionResponse(updated)
	return &out, nil
}

func (s *PrescriptionService) apply(p *prescription.Prescription, in UpdatePrescriptionInput) (decimal.Decimal, error) {
	if d, changed := in.mergeDetails(p); changed {
		if err := p.UpdateDetails(d); err != nil {
			return decimal.Zero, err
		}
	}
	delta := decimal.Zero
	if pricing, changed := in.mergePricing(p); changed {
		var err error
		if delta, err = p.Reprice(pricing); err != nil {
			return decimal.Zero, err
		}
	}
	switch {
	case in.ClearSpace:
		p.MoveToSpace(nil)
	case in.SpaceID != nil:
		p.MoveToSpace(in.SpaceID)
	}
	if in.CategoryID != nil {
		if err := p.SetCategory(*in.CategoryID); err != nil {
			return decimal.Zero, err
		}
	}
	if in.Status != nil {
		if err := p.ChangeStatus(*in.Status, s.now()); err != nil {
			return decimal.Zero, err
		}
	}
	return delta, nil
}

// Delete removes the prescription with its documents, approvals and comments
// and takes its total off the project budget. Stored files go afterwards.
func (s *PrescriptionService) Delete(ctx context.Context, v project.Viewer, id uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "prescription", "Delete")
	defer func() { telemetry.EndSpan(span, err) }()

	if _, _, err := s.load(ctx, v, id, project.AccessOwner); err != nil {
		return err
	}

	var (
		removed []*document.Document
		total   decimal.Decimal
	)
	err = s.txScope.Execute(ctx, func(repos appproject.TransactionalRepositories) error {
		p, err := repos.Prescriptions().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		total = p.Total()
		if removed, err = repos.Documents().DeleteByOwners(ctx, document.OwnerPrescription, []uuid.UUID{id}); err != nil {
			return err
		}
		ids := []uuid.UUID{id}
		if err := repos.Approvals().DeleteByPrescriptions(ctx, ids); err != nil {
			return err
		}
		if err := repos.Comments().DeleteByPrescriptions(ctx, ids); err != nil {
			return err
		}
		if err := repos.Prescriptions().Delete(ctx, id); err != nil {
			return err
		}
		return repos.Projects().AdjustBudgetSpent(ctx, p.ProjectID, total.Neg())
	})
	if err != nil {
		return err
	}

	failed := appproject.PurgeObjects(ctx, s.store, removed, s.metrics, s.logger)
	s.metrics.RecordPrescriptionWrite(ctx, "delete", total.Neg())
	logger.Enrich(ctx, s.logger).Info("Prescription deleted",
		zap.String("prescription_id", id.String()),
		zap.Int("documents", len(removed)),
		zap.Int("orphaned_files", failed),
	)
	return nil
}

// RecalculateBudget recomputes BudgetSpent from the stored totals and
// overwrites it when it drifted
func (s *PrescriptionService) RecalculateBudget(ctx context.Context, v project.Viewer, projectID uuid.UUID) (report *BudgetReport, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "prescription", "RecalculateBudget")
	defer func() { telemetry.EndSpan(span, err) }()

	if _, _, err := s.access.Require(ctx, projectID, v, project.AccessOwner); err != nil {
		return nil, err
	}
	return s.ReconcileBudget(ctx, projectID)
}

// ReconcileBudget is RecalculateBudget without the access check, for
// background jobs
func (s *PrescriptionService) ReconcileBudget(ctx context.Context, projectID uuid.UUID) (*BudgetReport, error) {
	report := &BudgetReport{ProjectID: projectID}
	err := s.txScope.Execute(ctx, func(repos appproject.TransactionalRepositories) error {
		p, err := repos.Projects().FindByID(ctx, projectID)
		if err != nil {
			return err
		}
		sum, err := repos.Prescriptions().SumTotals(ctx, projectID)
		if err != nil {
			return err
		}
		report.Previous = p.BudgetSpent
		report.Recalculated = sum
		report.Drift = p.BudgetSpent.Sub(sum)
		if report.Drift.IsZero() {
			return nil
		}
		report.Corrected = true
		return repos.Projects().SetBudgetSpent(ctx, projectID, sum)
	})
	if err != nil {
		return nil, err
	}

	if report.Corrected {
		logger.Enrich(ctx, s.logger).Warn("Project budget drift corrected",
			zap.String("project_id", projectID.String()),
			zap.String("previous", report.Previous.StringFixed(2)),
			zap.String("recalculated", report.Recalculated.StringFixed(2)),
		)
	}
	return report, nil
}

// load fetches a prescription and checks the viewer's level on its project
func (s *PrescriptionService) load(ctx context.Context, v project.Viewer, id uuid.UUID, min project.AccessLevel) (*prescription.Prescription, project.AccessLevel, error) {
	p, err := s.prescriptions.FindByID(ctx, id)
	if err != nil {
		return nil, project.AccessNone, err
	}
	_, level, err := s.access.Require(ctx, p.ProjectID, v, min)
	if err != nil {
		return nil, level, err
	}
	return p, level, nil
}

func (s *PrescriptionService) requireCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewValidationError("Category does not exist")
		}
		return err
	}
	return nil
}

func (s *PrescriptionService) requireSpace(ctx context.Context, projectID uuid.UUID, spaceID *uuid.UUID) error {
	if spaceID == nil {
		return nil
	}
	space, err := s.spaces.FindByID(ctx, *spaceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewValidationError("Space does not exist")
		}
		return err
	}
	if space.ProjectID != projectID {
		return shared.NewValidationError("Space belongs to another project")
	}
	return nil
}
