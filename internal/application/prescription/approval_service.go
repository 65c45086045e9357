package prescription

import (
	"context"

	"github.com/atelier/backend/internal/domain/prescription"
	"github.com/atelier/backend/internal/domain/project"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SetApproval records the viewer's decision, overwriting any previous one.
// Only users invited as clients of the project may approve.
func (s *PrescriptionService) SetApproval(ctx context.Context, v project.Viewer, prescriptionID uuid.UUID, status prescription.ApprovalStatus, comment string) (*ApprovalResponse, error) {
	p, err := s.prescriptions.FindByID(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}
	isClient, err := s.access.IsClient(ctx, p.ProjectID, v)
	if err != nil {
		return nil, err
	}
	if !isClient {
		return nil, shared.NewForbiddenError("Only clients of the project can approve prescriptions")
	}

	a, err := prescription.NewApproval(prescriptionID, v.UserID, status, comment)
	if err != nil {
		return nil, err
	}
	if err := s.approvals.Upsert(ctx, a); err != nil {
		return nil, err
	}
	logger.Enrich(ctx, s.logger).Info("Prescription approval set",
		zap.String("prescription_id", prescriptionID.String()),
		zap.String("status", string(status)),
	)

	stored, err := s.approvals.Find(ctx, prescriptionID, v.UserID)
	if err != nil {
		return nil, err
	}
	resp := ToApprovalResponse(stored)
	return &resp, nil
}

// ListApprovals returns at most one decision per client
func (s *PrescriptionService) ListApprovals(ctx context.Context, v project.Viewer, prescriptionID uuid.UUID) ([]ApprovalResponse, error) {
	if _, _, err := s.load(ctx, v, prescriptionID, project.AccessMember); err != nil {
		return nil, err
	}
	list, err := s.approvals.FindByPrescription(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}
	out := make([]ApprovalResponse, 0, len(list))
	for _, a := range list {
		out = append(out, ToApprovalResponse(a))
	}
	return out, nil
}

// AddComment appends a message to the prescription thread
func (s *PrescriptionService) AddComment(ctx context.Context, v project.Viewer, prescriptionID uuid.UUID, content string) (*CommentResponse, error) {
	if _, _, err := s.load(ctx, v, prescriptionID, project.AccessMember); err != nil {
		return nil, err
	}
	c, err := prescription.NewComment(prescriptionID, v.UserID, content)
	if err != nil {
		return nil, err
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCommentResponse(c)
	return &resp, nil
}

// ListComments returns the thread oldest first
func (s *PrescriptionService) ListComments(ctx context.Context, v project.Viewer, prescriptionID uuid.UUID) ([]CommentResponse, error) {
	if _, _, err := s.load(ctx, v, prescriptionID, project.AccessMember); err != nil {
		return nil, err
	}
	list, err := s.comments.FindByPrescription(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}
	out := make([]CommentResponse, 0, len(list))
	for _, c := range list {
		out = append(out, ToCommentResponse(c))
	}
	return out, nil
}
